package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ablackman/reviewpulse/internal/analyze"
	"github.com/ablackman/reviewpulse/internal/llm"
	"github.com/ablackman/reviewpulse/internal/store"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Generate a prose summary over the full review set",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.AIAPIKey == "" {
			return fmt.Errorf("AI_API_KEY is required for summarize")
		}

		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()

		summarizer := &analyze.Summarizer{
			Store:  s,
			Client: llm.NewHTTPClient(cfg.AIAPIKey, cfg.AIBaseURL),
			Model:  cfg.AIModel,
		}
		summary, err := summarizer.Summarize(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
