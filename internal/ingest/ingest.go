// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest runs the deduplicating ingestion sweep. Source producers
// yield candidate records; the sweep filters out blanks, derives a
// URL-based identity for each candidate, and stores only identities the
// store has never seen. A producer failure never aborts the sweep.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// Producer yields candidate records from one source. Implementations
// (feeds, trending boards, site listings) live in this package; the sweep
// treats them uniformly and isolates their failures.
type Producer interface {
	Name() string
	Produce(ctx context.Context) ([]types.CandidateRecord, error)
}

// RecordInserter is the slice of the store the sweep needs.
type RecordInserter interface {
	InsertRecord(ctx context.Context, rec types.Record) (bool, error)
}

// SweepSummary holds counts from one ingestion sweep.
type SweepSummary struct {
	Stored         int
	Duplicates     int
	Invalid        int
	ProducerErrors []string
}

// Total returns the number of candidates examined.
func (s SweepSummary) Total() int {
	return s.Stored + s.Duplicates + s.Invalid
}

// Sweep fetches from all producers concurrently, then stores the valid,
// previously unseen candidates. Producer failures are logged to w and
// contribute zero records; a store write failure aborts the sweep and is
// returned to the caller.
func Sweep(ctx context.Context, producers []Producer, st RecordInserter, cfg types.IngestConfig, w io.Writer) (SweepSummary, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	type produced struct {
		name       string
		candidates []types.CandidateRecord
		err        error
	}

	// Results keep producer order so reruns examine candidates in a
	// stable sequence.
	results := make([]produced, len(producers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range producers {
		g.Go(func() error {
			candidates, err := p.Produce(gctx)
			mu.Lock()
			results[i] = produced{name: p.Name(), candidates: candidates, err: err}
			mu.Unlock()
			// Producer errors are isolated, not propagated.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SweepSummary{}, err
	}

	var summary SweepSummary
	now := time.Now()

	for _, res := range results {
		if res.err != nil {
			msg := fmt.Sprintf("%s: %v", res.name, res.err)
			summary.ProducerErrors = append(summary.ProducerErrors, msg)
			fmt.Fprintf(w, "warning: producer %s failed: %v\n", res.name, res.err)
			continue
		}

		stored := 0
		for _, cand := range res.candidates {
			rec, ok := buildRecord(cand, now)
			if !ok {
				summary.Invalid++
				continue
			}

			inserted, err := st.InsertRecord(ctx, rec)
			if err != nil {
				return summary, fmt.Errorf("storing record from %s: %w", res.name, err)
			}
			if inserted {
				stored++
				summary.Stored++
			} else {
				summary.Duplicates++
			}
		}
		fmt.Fprintf(w, "swept %s (%d new of %d)\n", res.name, stored, len(res.candidates))
	}

	fmt.Fprintf(w, "\nstored: %d, duplicates: %d, invalid: %d, failed producers: %d\n",
		summary.Stored, summary.Duplicates, summary.Invalid, len(summary.ProducerErrors))

	return summary, nil
}

// buildRecord validates a candidate and converts it into a Record. The
// second return is false for candidates that must be silently skipped.
func buildRecord(cand types.CandidateRecord, now time.Time) (types.Record, bool) {
	if strings.TrimSpace(cand.Title) == "" || strings.TrimSpace(cand.URL) == "" {
		return types.Record{}, false
	}

	canonical, err := CanonicalURL(cand.URL)
	if err != nil {
		return types.Record{}, false
	}

	authoredAt := cand.AuthoredAt
	if authoredAt.IsZero() {
		authoredAt = now
	}

	tags := append([]string(nil), cand.Tags...)
	if cand.HintSection != "" && !containsTag(tags, cand.HintSection) {
		tags = append(tags, cand.HintSection)
	}

	return types.Record{
		Identity:   Identity(canonical),
		Source:     cand.Source,
		Title:      strings.TrimSpace(cand.Title),
		Excerpt:    cand.Excerpt,
		URL:        canonical,
		Author:     cand.Author,
		AuthoredAt: authoredAt,
		IngestedAt: now,
		Tags:       tags,
		Status:     types.StatusUnprocessed,
	}, true
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
