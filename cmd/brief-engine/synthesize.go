// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/internal/pipeline"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Rebuild the briefing report for a date",
	Long: `Synthesize selects the records ingested in the date's window, classifies
them into sections, and generates the markdown briefing with sentiment
scores. Any existing report for the date is replaced. Without an oracle API
key the report is a deterministic listing of the collected items.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dateFlag, _ := cmd.Flags().GetString("date")
		date, err := parseDateArg(dateFlag)
		if err != nil {
			return err
		}

		cfg := loadConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := buildOracle(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		var orc pipeline.Oracle
		if client != nil {
			defer client.Close()
			orc = client
		}

		o := pipeline.New(st, orc, nil, cfg, os.Stdout)
		rep, count, err := o.RunSynthesis(cmd.Context(), date)
		if err != nil {
			return err
		}

		fmt.Printf("report for %s saved (%d records, %d bytes", types.DateKey(date), count, len(rep.Markdown))
		if rep.MacroScore != nil && rep.TechScore != nil {
			fmt.Printf(", macro=%d tech=%d", *rep.MacroScore, *rep.TechScore)
		}
		fmt.Println(")")
		return nil
	},
}

func init() {
	synthesizeCmd.Flags().String("date", "", "report date YYYY-MM-DD (default: today)")

	rootCmd.AddCommand(synthesizeCmd)
}
