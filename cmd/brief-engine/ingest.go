// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion sweep across all sources",
	Long: `Ingest fetches candidates from every configured source producer (feeds,
trending boards, official-site listings), derives a URL-based identity for
each, and stores only items not seen before. Source failures are reported
and skipped; the sweep continues with the remaining producers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		producers, err := ingest.DefaultProducers(cfg.Ingest)
		if err != nil {
			return err
		}

		summary, err := ingest.Sweep(cmd.Context(), producers, st, cfg.Ingest, os.Stdout)
		if err != nil {
			return err
		}
		if summary.Stored == 0 && len(summary.ProducerErrors) == len(producers) {
			return fmt.Errorf("every producer failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
