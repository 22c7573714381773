// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the brief-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/brief-engine/internal/oracle"
	"github.com/pdiddy/brief-engine/internal/secrets"
	"github.com/pdiddy/brief-engine/internal/store"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the brief-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "brief-engine",
	Short: "Daily market and technology briefing pipeline",
	Long: `brief-engine collects news from feeds, trending boards, and official-site
listings, deduplicates by origin URL, classifies items into a fixed section
catalog, and synthesizes one markdown briefing per calendar date with macro
and tech sentiment scores.

Each pipeline stage is a subcommand: ingest, synthesize, report, ask, and
serve (the scheduled daemon with HTTP triggers).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./brief-engine.yaml or ~/.config/brief-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("brief-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "brief-engine"))
		}
	}

	viper.SetEnvPrefix("BRIEF_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("ingest.timeout", "20s")
	viper.SetDefault("ingest.user_agent", "brief-engine/"+version)
	viper.SetDefault("ingest.concurrency", 4)
	viper.SetDefault("synthesis.model", "gemini-2.0-flash")
	viper.SetDefault("synthesis.timeout", "60s")
	viper.SetDefault("synthesis.window_lookback", "6h")
	viper.SetDefault("synthesis.max_records", 200)
	viper.SetDefault("schedule.ingest_at", []string{"04:00", "12:00"})
	viper.SetDefault("schedule.synthesize_at", "06:00")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the pipeline configuration from viper.
func loadConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		Ingest: types.IngestConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("ingest.timeout"),
				UserAgent: viper.GetString("ingest.user_agent"),
			},
			SourcesFile: viper.GetString("ingest.sources_file"),
			Concurrency: viper.GetInt("ingest.concurrency"),
		},
		Synthesis: types.SynthesisConfig{
			AIConfig: types.AIConfig{
				Model:   viper.GetString("synthesis.model"),
				APIKey:  oracleAPIKey(),
				Timeout: viper.GetDuration("synthesis.timeout"),
			},
			WindowLookback: viper.GetDuration("synthesis.window_lookback"),
			MaxRecords:     viper.GetInt("synthesis.max_records"),
		},
		Schedule: types.ScheduleConfig{
			IngestAt:     viper.GetStringSlice("schedule.ingest_at"),
			SynthesizeAt: viper.GetString("schedule.synthesize_at"),
		},
	}
}

// oracleAPIKey resolves the oracle key: explicit config wins, then the
// secrets directory.
func oracleAPIKey() string {
	if key := viper.GetString("synthesis.api_key"); key != "" {
		return key
	}
	return loadedSecrets["oracle-api-key"]
}

// openStore opens the record and report store from config.
func openStore(cfg types.PipelineConfig) (*store.Store, error) {
	return store.Open(cfg.Store)
}

// buildOracle creates the Gemini client, or returns nil when no API key is
// configured so the pipeline runs on its deterministic fallbacks.
func buildOracle(ctx context.Context, cfg types.PipelineConfig) (*oracle.Client, error) {
	if cfg.Synthesis.APIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: no oracle API key configured, using fallback classification and rendering")
		return nil, nil
	}
	return oracle.NewClient(ctx, cfg.Synthesis.AIConfig)
}

// parseDateArg parses a YYYY-MM-DD argument, defaulting to today.
func parseDateArg(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", s)
	}
	return d, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
