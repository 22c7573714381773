// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/pdiddy/brief-engine/internal/aggregate"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// NoDataNarrative is the body of a report generated for a day with no
// records in the synthesis window.
const NoDataNarrative = "No items were collected in this reporting window. " +
	"Check source health if this persists across consecutive days."

// RenderNoData produces the report document for an empty window.
func RenderNoData(date time.Time) string {
	var b strings.Builder
	md := markdown.NewMarkdown(&b)

	md.H1(reportTitle(date))
	md.PlainText("")
	md.Note(NoDataNarrative)

	if err := md.Build(); err != nil {
		// strings.Builder writes cannot fail; keep the document anyway.
		return "# " + reportTitle(date) + "\n\n" + NoDataNarrative + "\n"
	}
	return b.String()
}

// RenderFallback produces a deterministic briefing from the digest alone,
// used when the synthesis oracle is unavailable. Items are listed per
// section as plain links with no prose.
func RenderFallback(digest aggregate.Digest, date time.Time) string {
	var b strings.Builder
	md := markdown.NewMarkdown(&b)

	md.H1(reportTitle(date))
	md.PlainText("")
	md.Warning("Generated without narrative synthesis. Items below are listed as collected.")
	md.PlainText("")

	for _, section := range types.Sections {
		md.H2(section.Label)
		items := digest[section.Key]
		if len(items) == 0 {
			md.PlainText("Quiet today.")
			md.PlainText("")
			continue
		}

		lines := make([]string, len(items))
		for i, item := range items {
			url := item.URL
			if url == "" {
				url = "#"
			}
			lines[i] = fmt.Sprintf("%s (%s)", markdown.Link(item.Title, url), item.Source)
		}
		md.BulletList(lines...)
		md.PlainText("")
	}

	if err := md.Build(); err != nil {
		return "# " + reportTitle(date) + "\n"
	}
	return b.String()
}

func reportTitle(date time.Time) string {
	return "Daily Briefing " + types.DateKey(date)
}
