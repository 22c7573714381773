// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth turns an aggregated digest into the day's briefing
// document. The primary path asks the generative oracle for prose and a
// trailing sentiment-score line; when the oracle fails, a deterministic
// markdown rendering of the digest stands in so the day still gets a
// report.
package synth

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/brief-engine/internal/aggregate"
)

// Oracle abstracts the generative API so tests can supply a mock.
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Result is one synthesized briefing. Scores are nil only for a no-data
// document; a degraded fallback carries the neutral default scores.
type Result struct {
	Markdown   string
	MacroScore *int
	TechScore  *int

	// Degraded marks a fallback rendering produced after an oracle
	// failure.
	Degraded bool
}

// defaultScore stands in when the oracle writes a briefing but omits or
// mangles the scores line.
const defaultScore = 70

// Synthesize produces the briefing for the given date. An oracle failure
// is soft: it is logged to w and yields the deterministic fallback
// document instead of an error.
func Synthesize(ctx context.Context, oracle Oracle, digest aggregate.Digest, date time.Time, w io.Writer) Result {
	if digest.Total() == 0 {
		return Result{Markdown: RenderNoData(date)}
	}

	response, err := oracle.Complete(ctx, synthSystemPrompt, buildPrompt(digest, date))
	if err != nil || strings.TrimSpace(response) == "" {
		if err == nil {
			err = fmt.Errorf("empty response")
		}
		fmt.Fprintf(w, "warning: synthesis oracle failed, rendering fallback: %v\n", err)
		return DegradedResult(digest, date)
	}

	body, macro, tech := ParseScores(response)
	return Result{Markdown: body, MacroScore: &macro, TechScore: &tech}
}

// DegradedResult builds the deterministic briefing used when the oracle
// cannot. It carries the neutral default scores so readers can tell it
// apart from a no-data day.
func DegradedResult(digest aggregate.Digest, date time.Time) Result {
	macro, tech := defaultScore, defaultScore
	return Result{
		Markdown:   RenderFallback(digest, date),
		MacroScore: &macro,
		TechScore:  &tech,
		Degraded:   true,
	}
}

// scoresPattern matches the trailing machine-readable line, e.g.
// "SCORES: macro=72 tech=65".
var scoresPattern = regexp.MustCompile(`(?m)^\s*SCORES:\s*macro\s*=\s*(\d+)\s+tech\s*=\s*(\d+)\s*$`)

// ParseScores strips the scores line from a briefing body and returns the
// two sentiment scores, clamped to [0, 100]. A missing or unparsable line
// leaves the body untouched and yields the default score for both.
func ParseScores(response string) (body string, macro, tech int) {
	macro, tech = defaultScore, defaultScore

	m := scoresPattern.FindStringSubmatch(response)
	if m == nil {
		return strings.TrimSpace(response), macro, tech
	}

	if v, err := strconv.Atoi(m[1]); err == nil {
		macro = clampScore(v)
	}
	if v, err := strconv.Atoi(m[2]); err == nil {
		tech = clampScore(v)
	}

	body = strings.TrimSpace(scoresPattern.ReplaceAllString(response, ""))
	return body, macro, tech
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
