// Package main provides the entry point for the brand intelligence CLI
// and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brandos",
	Short: "Brand intelligence report generator",
	Long:  "brandos analyzes a public social-media handle across sources, fingerprints its voice, and produces a scored brand report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
