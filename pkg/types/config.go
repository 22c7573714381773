// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "brief-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call the generative oracle.
type AIConfig struct {
	// Model is the oracle model identifier (e.g. "gemini-1.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the oracle API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single oracle call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StoreConfig holds settings for the record and report store.
type StoreConfig struct {
	// DataDir is the directory holding the SQLite database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// IngestConfig holds settings for the ingestion sweep.
type IngestConfig struct {
	HTTPConfig `yaml:",inline"`

	// SourcesFile is an optional YAML file overriding the built-in feed
	// catalog.
	SourcesFile string `json:"sources_file,omitempty" yaml:"sources_file,omitempty"`

	// Concurrency bounds how many producers fetch at once (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// SynthesisConfig holds settings for classification and report generation.
type SynthesisConfig struct {
	AIConfig `yaml:",inline"`

	// WindowLookback extends the candidate window before the start of the
	// target day (default 6h, giving a 30-hour window over the 24h day).
	WindowLookback time.Duration `json:"window_lookback" yaml:"window_lookback"`

	// MaxRecords caps the candidate window (default 200).
	MaxRecords int `json:"max_records" yaml:"max_records"`
}

// ScheduleConfig holds the daily trigger times for the serve daemon,
// formatted "HH:MM" on the host clock.
type ScheduleConfig struct {
	// IngestAt lists the daily ingestion sweep times (default 04:00, 12:00).
	IngestAt []string `json:"ingest_at" yaml:"ingest_at"`

	// SynthesizeAt is the daily report generation time (default 06:00).
	SynthesizeAt string `json:"synthesize_at" yaml:"synthesize_at"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Store     StoreConfig     `json:"store" yaml:"store"`
	Ingest    IngestConfig    `json:"ingest" yaml:"ingest"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`
	Schedule  ScheduleConfig  `json:"schedule" yaml:"schedule"`
}
