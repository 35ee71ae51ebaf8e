package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ablackman/reviewpulse/internal/report"
	"github.com/ablackman/reviewpulse/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print aggregate metrics for the stored reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()

		metrics, err := report.Build(cmd.Context(), s)
		if err != nil {
			return err
		}
		fmt.Print(report.BuildMarkdown(metrics))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
