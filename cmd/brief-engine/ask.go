// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/internal/advisor"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the advisory panel a question",
	Long: `Ask poses a free-form question to one or more advisory personas and prints
each answer. Requires an oracle API key. Use --personas to pick up to four
voices; run with no arguments to list the roster.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, p := range advisor.Personas() {
				fmt.Printf("%-14s %s %s (%s)\n", p.ID, p.AvatarHint, p.Name, p.Title)
			}
			return nil
		}

		personasFlag, _ := cmd.Flags().GetString("personas")
		var ids []string
		for _, id := range strings.Split(personasFlag, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}

		cfg := loadConfig()
		client, err := buildOracle(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("ask requires an oracle API key (.secrets/oracle-api-key)")
		}
		defer client.Close()

		question := strings.Join(args, " ")
		answers, err := advisor.New(client).Ask(cmd.Context(), question, ids)
		if err != nil {
			return err
		}

		for i, a := range answers {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s %s, %s\n", a.AvatarHint, a.Name, a.Title)
			if a.Err != "" {
				fmt.Printf("  (unavailable: %s)\n", a.Err)
				continue
			}
			fmt.Println(a.Text)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().String("personas", "buffett", "comma-separated persona ids (max 4)")

	rootCmd.AddCommand(askCmd)
}
