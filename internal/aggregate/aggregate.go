// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate shapes a classification result into the per-section
// digest that synthesis consumes. It resolves identities back to records,
// caps each section, and guarantees every catalog section is present even
// when empty so the rendered report always has the same skeleton.
package aggregate

import (
	"github.com/pdiddy/brief-engine/internal/classify"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// MaxPerSection caps how many items one section contributes to the
// synthesis prompt.
const MaxPerSection = 20

// Item is one record reduced to what synthesis needs.
type Item struct {
	Identity string `json:"identity"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Source   string `json:"source"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// Digest groups items by section key. Every catalog section has an entry;
// sections with nothing assigned map to an empty slice.
type Digest map[string][]Item

// Total returns the number of items across all sections.
func (d Digest) Total() int {
	n := 0
	for _, items := range d {
		n += len(items)
	}
	return n
}

// Build resolves an assignment against the record set. Identities that do
// not resolve are skipped, and each section is truncated to MaxPerSection
// in assignment order.
func Build(assignment classify.Assignment, records []types.Record) Digest {
	byID := make(map[string]types.Record, len(records))
	for _, r := range records {
		byID[r.Identity] = r
	}

	digest := make(Digest, len(types.Sections))
	for _, section := range types.Sections {
		items := []Item{}
		for _, id := range assignment[section.Key] {
			rec, ok := byID[id]
			if !ok {
				continue
			}
			items = append(items, Item{
				Identity: rec.Identity,
				Title:    rec.Title,
				URL:      rec.URL,
				Source:   rec.Source,
				Excerpt:  rec.Excerpt,
			})
			if len(items) >= MaxPerSection {
				break
			}
		}
		digest[section.Key] = items
	}
	return digest
}
