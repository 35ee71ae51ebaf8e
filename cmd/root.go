// Package cmd wires the reviewpulse CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ablackman/reviewpulse/internal/config"
)

var (
	cfgPath    string
	dbOverride string
)

var rootCmd = &cobra.Command{
	Use:   "reviewpulse",
	Short: "Product review sentiment dashboard backend",
	Long: `reviewpulse ingests product-review files (CSV, JSON, XLSX), classifies
each review's sentiment through an OpenAI-compatible chat model, and serves
stats, trends and summaries for the dashboard UI.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "directory containing the optional .env config file")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "path to the SQLite database (overrides DB_PATH)")
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if dbOverride != "" {
		cfg.DBPath = dbOverride
	}
	return cfg, nil
}
