// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Report is the daily briefing artifact. At most one exists per calendar
// date; a rerun for the same date replaces it wholesale.
type Report struct {
	// Date is the calendar date the report covers (key, local midnight).
	Date time.Time `json:"date" yaml:"date"`

	// Markdown is the narrative body.
	Markdown string `json:"markdown" yaml:"markdown"`

	// MacroScore is the 0-100 macro-environment reading. Nil means the
	// report was produced on the no-data path and carries no scores,
	// which is distinct from the degraded-mode default of 70.
	MacroScore *int `json:"macro_score,omitempty" yaml:"macro_score,omitempty"`

	// TechScore is the 0-100 technology reading. Nil as for MacroScore.
	TechScore *int `json:"tech_score,omitempty" yaml:"tech_score,omitempty"`

	// CreatedAt is when the report was generated.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// DateKey formats a report date as its storage key.
func DateKey(d time.Time) string {
	return d.Format("2006-01-02")
}
