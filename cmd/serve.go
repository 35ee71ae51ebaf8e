package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ablackman/reviewpulse/internal/config"
	"github.com/ablackman/reviewpulse/internal/llm"
	"github.com/ablackman/reviewpulse/internal/server"
	"github.com/ablackman/reviewpulse/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := config.NewLogger(cfg)
		defer log.Sync()

		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()

		client := llm.NewHTTPClient(cfg.AIAPIKey, cfg.AIBaseURL)
		srv := server.New(cfg, s, client, log)

		addr := ":" + cfg.ServerPort
		log.Infow("serving", "addr", addr, "db", cfg.DBPath, "model", cfg.AIModel)
		return srv.Start(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
