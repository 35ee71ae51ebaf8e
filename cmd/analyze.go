package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ablackman/reviewpulse/internal/analyze"
	"github.com/ablackman/reviewpulse/internal/config"
	"github.com/ablackman/reviewpulse/internal/llm"
	"github.com/ablackman/reviewpulse/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify the sentiment of all unanalyzed reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.AIAPIKey == "" {
			return fmt.Errorf("AI_API_KEY is required for analyze")
		}
		log := config.NewLogger(cfg)
		defer log.Sync()

		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()

		runner := &analyze.Runner{
			Store: s,
			Classifier: &analyze.Classifier{
				Client: llm.NewHTTPClient(cfg.AIAPIKey, cfg.AIBaseURL),
				Model:  cfg.AIModel,
			},
			Log:        log,
			BatchLimit: cfg.AnalyzeBatchLimit,
		}

		report, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}
		for _, item := range report.Items {
			if item.Status == analyze.ItemSkipped {
				fmt.Printf("analyze_skip review=%s reason=%s\n", item.ReviewID, item.Reason)
			}
		}
		fmt.Printf("analyze_done processed=%d classified=%d skipped=%d\n",
			report.Processed, report.Classified(), report.Processed-report.Classified())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
