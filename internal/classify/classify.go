// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns records to briefing sections. The primary path
// asks the generative oracle to map record identities onto the section
// catalog; when the oracle is unavailable or returns garbage, the caller
// falls back to a deterministic source-tag table. Either way every record
// in the window ends up in exactly one section.
package classify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// Oracle abstracts the generative API so tests can supply a mock.
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Assignment maps section keys to ordered record identities. Order within
// a section is the oracle's order, or ingestion order in the fallback.
type Assignment map[string][]string

// Total returns the number of identities assigned across all sections.
// A zero total signals that the primary path produced nothing usable.
func (a Assignment) Total() int {
	n := 0
	for _, ids := range a {
		n += len(ids)
	}
	return n
}

const classifySystemPrompt = "You are a financial news triage assistant. Reply with JSON only."

// Classify submits the record list to the oracle and parses the response
// into an Assignment. Oracle failures and malformed responses are soft:
// they are logged to w and yield an empty assignment, never an error that
// aborts the run.
func Classify(ctx context.Context, oracle Oracle, records []types.Record, w io.Writer) Assignment {
	empty := make(Assignment)
	if len(records) == 0 {
		return empty
	}

	response, err := oracle.Complete(ctx, classifySystemPrompt, buildPrompt(records))
	if err != nil {
		fmt.Fprintf(w, "warning: classification oracle failed: %v\n", err)
		return empty
	}

	assignment, err := parseAssignment(response, records)
	if err != nil {
		fmt.Fprintf(w, "warning: unusable classification response: %v\n", err)
		return empty
	}
	return assignment
}

// buildPrompt renders the section catalog and the compact "identity | title"
// record list the oracle classifies against.
func buildPrompt(records []types.Record) string {
	var b strings.Builder

	b.WriteString("Assign every news item below to one of these sections.\n\nSections:\n")
	for _, s := range types.Sections {
		fmt.Fprintf(&b, "  %s: %s\n", s.Key, s.Guidance)
	}

	b.WriteString("\nNews items (format: ID | title):\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%s | %s\n", r.Identity, r.Title)
	}

	b.WriteString("\nReturn a JSON object mapping section key to a list of IDs, ")
	b.WriteString(`for example {"policy": ["id1"], "market": ["id2", "id3"]}. `)
	b.WriteString("Use an empty list for sections with no matching items. JSON only, no prose.\n")
	return b.String()
}

// FallbackAssign deterministically assigns every record to one section:
// the source-tag table decides, a pre-existing section tag on the record
// overrides the table, and unmapped sources land in the catch-all.
// Ingestion order is preserved within each section.
func FallbackAssign(records []types.Record) Assignment {
	assignment := make(Assignment)
	for _, r := range records {
		section := sourceSection(r.Source)
		if hint := r.HintSection(); hint != "" {
			section = hint
		}
		assignment[section] = append(assignment[section], r.Identity)
	}
	return assignment
}

// sourceSections maps producer platform tags onto sections for the
// fallback path.
var sourceSections = map[string]string{
	"gov":        "policy",
	"ndrc":       "policy",
	"stats":      "economy",
	"xinhua":     "global",
	"reuters":    "global",
	"sina":       "market",
	"stcn":       "market",
	"caixin":     "market",
	"36kr":       "vc",
	"hackernews": "tech",
	"weibo":      "consumer",
	"baidu":      "consumer",
}

func sourceSection(source string) string {
	if s, ok := sourceSections[source]; ok {
		return s
	}
	return types.CatchAllSection
}

// MergeTags prepends the newly assigned section onto a record's tag list,
// deduplicating and truncating to the bounded history length. Most recent
// classification comes first.
func MergeTags(existing []string, section string) []string {
	merged := make([]string, 0, len(existing)+1)
	merged = append(merged, section)
	for _, t := range existing {
		if t != section {
			merged = append(merged, t)
		}
	}
	if len(merged) > types.MaxSectionTags {
		merged = merged[:types.MaxSectionTags]
	}
	return merged
}

// WriteBack computes the merged tag list for every assigned record. The
// result feeds the store's single-transaction tag update.
func WriteBack(assignment Assignment, records []types.Record) map[string][]string {
	byID := make(map[string]types.Record, len(records))
	for _, r := range records {
		byID[r.Identity] = r
	}

	updated := make(map[string][]string)
	for section, ids := range assignment {
		for _, id := range ids {
			rec, ok := byID[id]
			if !ok {
				continue
			}
			base := rec.Tags
			if prev, ok := updated[id]; ok {
				base = prev
			}
			updated[id] = MergeTags(base, section)
		}
	}
	return updated
}
