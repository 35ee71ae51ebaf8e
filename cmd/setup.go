package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ablackman/reviewpulse/internal/store"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Drop and recreate the reviews table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := store.Reset(cfg.DBPath); err != nil {
			return err
		}
		fmt.Printf("setup_done db=%s\n", cfg.DBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
