package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BAWSA3/brandos/internal/config"
	"github.com/BAWSA3/brandos/internal/observability"
	"github.com/BAWSA3/brandos/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <handle>",
	Short: "Generate a brand report for a handle",
	Long: `Fetches public signals for the handle from all configured sources, builds the
voice fingerprint, runs the analysis agents, and prints the unified report.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeConfigPath string
	analyzeAPIKey     string
	analyzeTimeline   string
	analyzeUseBrowser bool
	analyzeVerbose    bool
	analyzeJSON       bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeTimeline, "timeline-url", "", "Base URL of the handle's timeline instance")
	analyzeCmd.Flags().BoolVar(&analyzeUseBrowser, "use-browser", false, "Use headless browser for script-heavy profiles (requires Chrome)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the report as JSON instead of formatted output")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	handle, err := types.ParseHandle(args[0])
	if err != nil {
		return fmt.Errorf("invalid handle %q: %w", args[0], err)
	}

	var fileCfg config.Config
	if analyzeConfigPath != "" {
		loaded, err := config.Load(analyzeConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = *loaded
	}
	fileCfg.ApplyEnv()

	// Explicit flags win; everything else falls back to env/file values.
	var overrides config.Config
	if cmd.Flags().Changed("api-key") {
		overrides.GeminiAPIKey = analyzeAPIKey
	}
	if cmd.Flags().Changed("timeline-url") {
		overrides.TimelineBaseURL = analyzeTimeline
	}
	if cmd.Flags().Changed("use-browser") {
		overrides.UseBrowser = analyzeUseBrowser
	}
	overrides.Verbose = analyzeVerbose
	cfg := overrides.MergeWithDefaults(fileCfg)

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

	report, err := app.conductor.Analyze(ctx, handle)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	printer := observability.NewPrinter(os.Stdout)
	if cfg.Verbose {
		printer.PrintFingerprint(&report.Fingerprint)
	}
	printer.PrintReport(report)
	return nil
}
