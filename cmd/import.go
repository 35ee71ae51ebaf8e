package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ablackman/reviewpulse/internal/ingest"
	"github.com/ablackman/reviewpulse/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import reviews from a CSV, JSON or XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()

		reviews, err := ingest.Load(path, f)
		if err != nil {
			return err
		}

		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()

		inserted, err := s.InsertBatch(cmd.Context(), reviews)
		if err != nil {
			return err
		}
		fmt.Printf("import_done file=%s inserted=%d db=%s\n", path, inserted, cfg.DBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
