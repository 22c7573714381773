// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model for the briefing pipeline:
// ingested records, the fixed section catalog, daily reports, and the
// configuration structs for each stage.
package types

import "time"

// ProcessStatus indicates whether a record has been through section
// classification.
type ProcessStatus int

const (
	StatusUnprocessed ProcessStatus = 0
	StatusProcessed   ProcessStatus = 1
)

// MaxSectionTags bounds the per-record tag history. Tags are ordered most
// recent classification first; the write-back step truncates to this length.
const MaxSectionTags = 5

// CandidateRecord is the uniform output of a source producer. It carries
// no identity: the ingestor derives one from the origin URL.
type CandidateRecord struct {
	// Source is the producer's platform tag (e.g. "gov", "weibo", "hackernews").
	Source string `json:"source" yaml:"source"`

	// Title is the headline. Candidates with a blank title are rejected.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical origin link, the sole dedup key. Candidates
	// with a blank URL are rejected.
	URL string `json:"url" yaml:"url"`

	// Excerpt is an optional body snippet.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`

	// Author is optional.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// AuthoredAt is when the source published the item. Zero means
	// unknown; the ingestor substitutes the ingestion time.
	AuthoredAt time.Time `json:"authored_at,omitempty" yaml:"authored_at,omitempty"`

	// Tags are free-form labels supplied by the producer. A tag matching
	// a section key acts as a classification hint in the fallback path.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// HintSection is the producer's own guess at the record's section.
	// It is appended to Tags on ingest, never trusted directly.
	HintSection string `json:"hint_section,omitempty" yaml:"hint_section,omitempty"`
}

// Record is an ingested item as persisted by the store. Exactly one Record
// exists per identity; only the classifier mutates Tags and Status.
type Record struct {
	// Identity is the stable hash of the canonical origin URL.
	Identity string `json:"identity" yaml:"identity"`

	// Source is the producer's platform tag.
	Source string `json:"source" yaml:"source"`

	// Title is the headline.
	Title string `json:"title" yaml:"title"`

	// Excerpt is an optional body snippet.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`

	// URL is the origin link in canonical form.
	URL string `json:"url" yaml:"url"`

	// Author is optional.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// AuthoredAt is the source's publication time, or the ingestion time
	// when the source supplied none.
	AuthoredAt time.Time `json:"authored_at" yaml:"authored_at"`

	// IngestedAt is when the record was first stored. The synthesis
	// window selects on this field.
	IngestedAt time.Time `json:"ingested_at" yaml:"ingested_at"`

	// Tags is the bounded classification history, most recent first.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Status tracks whether the record has been classified.
	Status ProcessStatus `json:"status" yaml:"status"`
}

// HintSection returns the first tag that names a known section, or "" when
// the record carries no usable hint.
func (r Record) HintSection() string {
	for _, t := range r.Tags {
		if _, ok := SectionByKey(t); ok {
			return t
		}
	}
	return ""
}
