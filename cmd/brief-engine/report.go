// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Print a stored briefing report",
	Long: `Report prints the stored briefing for the given date (default: today).
With --list it prints the most recent report dates and scores instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		listN, _ := cmd.Flags().GetInt("list")

		cfg := loadConfig()
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if listN > 0 {
			reports, err := st.ListReports(cmd.Context(), listN)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(reports)
			}
			for _, rep := range reports {
				fmt.Printf("%s  %s  %d bytes\n", types.DateKey(rep.Date), formatScores(rep), len(rep.Markdown))
			}
			return nil
		}

		var dateArg string
		if len(args) == 1 {
			dateArg = args[0]
		}
		date, err := parseDateArg(dateArg)
		if err != nil {
			return err
		}

		rep, err := st.GetReport(cmd.Context(), date)
		if err != nil {
			return err
		}
		if rep == nil {
			return fmt.Errorf("no report for %s", types.DateKey(date))
		}

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(rep)
		}
		fmt.Println(rep.Markdown)
		return nil
	},
}

func formatScores(rep types.Report) string {
	if rep.MacroScore == nil || rep.TechScore == nil {
		return "macro=-- tech=--"
	}
	return fmt.Sprintf("macro=%d tech=%d", *rep.MacroScore, *rep.TechScore)
}

func init() {
	reportCmd.Flags().Bool("json", false, "output as JSON")
	reportCmd.Flags().Int("list", 0, "list the N most recent reports instead")

	rootCmd.AddCommand(reportCmd)
}
