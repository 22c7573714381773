// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/brief-engine/internal/aggregate"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// synthSystemPrompt frames the oracle as the briefing's editorial voice.
const synthSystemPrompt = `You are the chief editor of a daily macro and technology briefing read by
fund managers before the market opens. You write in tight, factual prose:
no hedging filler, no exclamation marks, every claim traceable to a listed
item. You always cite items with markdown links.`

// scoresLinePrefix marks the machine-readable sentiment line the oracle
// appends after the briefing body.
const scoresLinePrefix = "SCORES:"

// personaFraming is a fixed block of investor perspectives embedded in
// every synthesis request. It shapes the register of the prose only; the
// oracle is never asked to answer as any of these voices.
const personaFraming = `Write as if the briefing will be read aloud to a panel of seasoned
investors, and let their sensibilities shape the emphasis:
- Warren Buffett and Charlie Munger: price versus value, durable moats,
  skepticism of narratives not backed by cash flow.
- Li Ka-shing: cycle awareness, liquidity, leaving a margin of safety.
- Ren Zhengfei: long-horizon R&D, supply-chain resilience, surviving
  winters.
- Zhang Lei: compounding, founders with deep time horizons.
- Elon Musk and Jensen Huang: first-principles technology shifts, compute
  and energy as the substrate of everything.
- Lei Jun: consumer demand signals, price-performance, speed to market.
These perspectives are stylistic framing only; do not address or quote the
panel in the briefing.`

// buildPrompt renders the per-section digest into the synthesis request.
// Sections appear in catalog order; empty sections are listed so the
// oracle knows they were covered and found quiet.
func buildPrompt(digest aggregate.Digest, date time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write the daily briefing for %s.\n\n", types.DateKey(date))
	b.WriteString(personaFraming)
	b.WriteString("\n\n")
	b.WriteString("Structure the briefing with one H2 heading per section below, in this order.\n")
	b.WriteString("Under each heading, synthesize the items into 2-4 short paragraphs or bullets,\n")
	b.WriteString("linking each referenced item as [title](url). For a section with no items,\n")
	b.WriteString("write a single line noting it was quiet today.\n\n")

	for _, section := range types.Sections {
		fmt.Fprintf(&b, "## %s (%s)\n", section.Label, section.Key)
		items := digest[section.Key]
		if len(items) == 0 {
			b.WriteString("(no items)\n\n")
			continue
		}
		for _, item := range items {
			fmt.Fprintf(&b, "- %s | %s | %s\n", item.Title, item.Source, item.URL)
			if item.Excerpt != "" {
				fmt.Fprintf(&b, "  %s\n", item.Excerpt)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("After the briefing body, end with exactly one line in this form:\n")
	b.WriteString("SCORES: macro=<0-100 integer> tech=<0-100 integer>\n")
	b.WriteString("where macro scores overall macro-economic sentiment and tech scores\n")
	b.WriteString("technology-sector sentiment, 0 bleakest and 100 most bullish.\n")
	return b.String()
}
