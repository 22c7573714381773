// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/brief-engine/internal/aggregate"
	"github.com/pdiddy/brief-engine/pkg/types"
)

type stubOracle struct {
	response string
	err      error
	lastUser string
}

func (o *stubOracle) Complete(_ context.Context, _, user string) (string, error) {
	o.lastUser = user
	return o.response, o.err
}

func testDigest() aggregate.Digest {
	digest := make(aggregate.Digest)
	for _, key := range types.SectionKeys() {
		digest[key] = []aggregate.Item{}
	}
	digest["policy"] = []aggregate.Item{
		{Identity: "a", Title: "Fiscal package announced", URL: "https://example.com/a", Source: "gov"},
	}
	digest["tech"] = []aggregate.Item{
		{Identity: "b", Title: "Chip fab breaks ground", URL: "https://example.com/b", Source: "36kr", Excerpt: "Construction starts next month."},
	}
	return digest
}

func testDate() time.Time {
	return time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
}

func TestSynthesizeParsesScores(t *testing.T) {
	oracle := &stubOracle{response: "## Macro Policy\n\nA fiscal package landed.\n\nSCORES: macro=82 tech=61\n"}

	res := Synthesize(context.Background(), oracle, testDigest(), testDate(), &bytes.Buffer{})
	if res.Degraded {
		t.Fatal("Degraded set on successful synthesis")
	}
	if res.MacroScore == nil || *res.MacroScore != 82 {
		t.Errorf("MacroScore = %v, want 82", res.MacroScore)
	}
	if res.TechScore == nil || *res.TechScore != 61 {
		t.Errorf("TechScore = %v, want 61", res.TechScore)
	}
	if strings.Contains(res.Markdown, "SCORES:") {
		t.Error("scores line left in body")
	}
	if !strings.Contains(res.Markdown, "A fiscal package landed.") {
		t.Errorf("body lost content:\n%s", res.Markdown)
	}
}

func TestSynthesizePromptContents(t *testing.T) {
	oracle := &stubOracle{response: "body\n\nSCORES: macro=70 tech=70"}
	Synthesize(context.Background(), oracle, testDigest(), testDate(), &bytes.Buffer{})

	prompt := oracle.lastUser
	if !strings.Contains(prompt, "2026-08-24") {
		t.Error("prompt missing the report date")
	}
	if !strings.Contains(prompt, "Fiscal package announced | gov | https://example.com/a") {
		t.Errorf("prompt missing item line:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Construction starts next month.") {
		t.Error("prompt missing item excerpt")
	}
	for _, s := range types.Sections {
		if !strings.Contains(prompt, s.Label) {
			t.Errorf("prompt missing section %q", s.Label)
		}
	}
	if !strings.Contains(prompt, "(no items)") {
		t.Error("prompt does not mark empty sections")
	}

	// The investor framing block rides along on every request.
	for _, name := range []string{"Warren Buffett", "Charlie Munger", "Li Ka-shing", "Ren Zhengfei", "Zhang Lei", "Elon Musk", "Jensen Huang", "Lei Jun"} {
		if !strings.Contains(prompt, name) {
			t.Errorf("prompt missing investor perspective %q", name)
		}
	}
	if !strings.Contains(prompt, "stylistic framing only") {
		t.Error("prompt missing the framing caveat")
	}
}

func TestSynthesizeFallbackOnOracleFailure(t *testing.T) {
	tests := []struct {
		name   string
		oracle *stubOracle
	}{
		{"error", &stubOracle{err: fmt.Errorf("deadline exceeded")}},
		{"empty response", &stubOracle{response: "   \n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			res := Synthesize(context.Background(), tt.oracle, testDigest(), testDate(), &buf)
			if !res.Degraded {
				t.Fatal("Degraded not set")
			}
			if res.MacroScore == nil || *res.MacroScore != 70 {
				t.Errorf("MacroScore = %v, want neutral 70", res.MacroScore)
			}
			if res.TechScore == nil || *res.TechScore != 70 {
				t.Errorf("TechScore = %v, want neutral 70", res.TechScore)
			}
			if !strings.Contains(res.Markdown, "without narrative synthesis") {
				t.Errorf("fallback missing degraded banner:\n%s", res.Markdown)
			}
			if !strings.Contains(res.Markdown, "[Fiscal package announced](https://example.com/a)") {
				t.Errorf("fallback missing item link:\n%s", res.Markdown)
			}
			if !strings.Contains(buf.String(), "warning: synthesis oracle failed") {
				t.Errorf("missing warning in output: %q", buf.String())
			}
		})
	}
}

func TestSynthesizeEmptyDigest(t *testing.T) {
	oracle := &stubOracle{response: "should not be called"}
	res := Synthesize(context.Background(), oracle, make(aggregate.Digest), testDate(), &bytes.Buffer{})

	if oracle.lastUser != "" {
		t.Error("oracle called for an empty window")
	}
	if res.MacroScore != nil || res.TechScore != nil {
		t.Error("no-data document carries scores")
	}
	if !strings.Contains(res.Markdown, NoDataNarrative) {
		t.Errorf("missing no-data narrative:\n%s", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "Daily Briefing 2026-08-24") {
		t.Errorf("missing title:\n%s", res.Markdown)
	}
}

func TestParseScores(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantBody  string
		wantMacro int
		wantTech  int
	}{
		{"well formed", "body text\n\nSCORES: macro=55 tech=80", "body text", 55, 80},
		{"extra spacing", "body\nSCORES:  macro = 10  tech = 20", "body", 10, 20},
		{"missing line", "body only, no scores", "body only, no scores", 70, 70},
		{"clamped high", "body\nSCORES: macro=150 tech=101", "body", 100, 100},
		{"zero is valid", "body\nSCORES: macro=0 tech=0", "body", 0, 0},
		{"garbage values", "body\nSCORES: macro=high tech=low", "body\nSCORES: macro=high tech=low", 70, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, macro, tech := ParseScores(tt.in)
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if macro != tt.wantMacro || tech != tt.wantTech {
				t.Errorf("scores = %d/%d, want %d/%d", macro, tech, tt.wantMacro, tt.wantTech)
			}
		})
	}
}

func TestRenderFallbackQuietSections(t *testing.T) {
	out := RenderFallback(testDigest(), testDate())
	if !strings.Contains(out, "Quiet today.") {
		t.Errorf("fallback missing quiet-section marker:\n%s", out)
	}
	for _, s := range types.Sections {
		if !strings.Contains(out, s.Label) {
			t.Errorf("fallback missing section %q", s.Label)
		}
	}
}
