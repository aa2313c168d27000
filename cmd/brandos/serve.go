package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BAWSA3/brandos/internal/config"
	"github.com/BAWSA3/brandos/internal/observability"
	"github.com/BAWSA3/brandos/internal/server"
	"github.com/BAWSA3/brandos/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes report creation, retrieval, and streaming endpoints.`,
	RunE:  runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveVerbose    bool
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var fileCfg config.Config
	if serveConfigPath != "" {
		loaded, err := config.Load(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = *loaded
	}
	fileCfg.ApplyEnv()

	var overrides config.Config
	if cmd.Flags().Changed("port") {
		overrides.Port = servePort
	}
	overrides.Verbose = serveVerbose
	cfg := overrides.MergeWithDefaults(fileCfg)
	if cfg.Port == 0 {
		cfg.Port = servePort
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	app, err := assemble(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	srv := server.New(server.Config{
		Port:      cfg.Port,
		RateLimit: ratelimit.DefaultConfig(),
	}, app.conductor, app.db, logger)

	return srv.Start()
}
