// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/brief-engine/internal/ingest"
	"github.com/pdiddy/brief-engine/internal/synth"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// memStore is an in-memory Store for orchestrator tests.
type memStore struct {
	mu      sync.Mutex
	records map[string]types.Record
	reports map[string]types.Report
	saves   int
	deletes int
}

func newMemStore() *memStore {
	return &memStore{
		records: make(map[string]types.Record),
		reports: make(map[string]types.Report),
	}
}

func (m *memStore) InsertRecord(_ context.Context, rec types.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.Identity]; ok {
		return false, nil
	}
	m.records[rec.Identity] = rec
	return true, nil
}

func (m *memStore) Window(_ context.Context, from, to time.Time, limit int) ([]types.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Record
	for _, rec := range m.records {
		if !rec.IngestedAt.Before(from) && rec.IngestedAt.Before(to) {
			out = append(out, rec)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) UpdateTags(_ context.Context, tags map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for identity, list := range tags {
		rec, ok := m.records[identity]
		if !ok {
			continue
		}
		rec.Tags = list
		rec.Status = types.StatusProcessed
		m.records[identity] = rec
	}
	return nil
}

func (m *memStore) GetReport(_ context.Context, date time.Time) (*types.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[types.DateKey(date)]
	if !ok {
		return nil, nil
	}
	return &rep, nil
}

func (m *memStore) DeleteReport(_ context.Context, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.reports, types.DateKey(date))
	return nil
}

func (m *memStore) SaveReport(_ context.Context, rep types.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[types.DateKey(rep.Date)]; ok {
		return fmt.Errorf("report for %s already exists", types.DateKey(rep.Date))
	}
	m.saves++
	m.reports[types.DateKey(rep.Date)] = rep
	return nil
}

type scriptedOracle struct {
	classifyResponse string
	classifyErr      error
	synthResponse    string
	synthErr         error
}

func (o *scriptedOracle) Complete(_ context.Context, _, user string) (string, error) {
	// The synthesis prompt asks for a briefing; the classification prompt
	// asks for a JSON mapping.
	if strings.Contains(user, "daily briefing") {
		return o.synthResponse, o.synthErr
	}
	return o.classifyResponse, o.classifyErr
}

func testDate() time.Time {
	return time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
}

func seedRecords(st *memStore, date time.Time) {
	recs := []types.Record{
		{Identity: "pol1", Source: "gov", Title: "Fiscal measures announced", URL: "https://example.com/pol1"},
		{Identity: "tec1", Source: "hackernews", Title: "Model release shakes benchmarks", URL: "https://example.com/tec1"},
		{Identity: "mkt1", Source: "sina", Title: "Index closes higher", URL: "https://example.com/mkt1"},
	}
	for i, rec := range recs {
		rec.IngestedAt = date.Add(time.Duration(i+1) * time.Hour)
		rec.Status = types.StatusUnprocessed
		st.records[rec.Identity] = rec
	}
}

func TestRunSynthesisHappyPath(t *testing.T) {
	st := newMemStore()
	seedRecords(st, testDate())

	oracle := &scriptedOracle{
		classifyResponse: `{"policy": ["pol1"], "tech": ["tec1"], "market": ["mkt1"]}`,
		synthResponse:    "## Macro Policy\n\nFiscal measures landed.\n\nSCORES: macro=75 tech=68",
	}
	o := New(st, oracle, nil, types.PipelineConfig{}, &bytes.Buffer{})

	rep, count, err := o.RunSynthesis(context.Background(), testDate())
	require.NoError(t, err)

	assert.Equal(t, 3, count)
	assert.Contains(t, rep.Markdown, "Fiscal measures landed.")
	require.NotNil(t, rep.MacroScore)
	assert.Equal(t, 75, *rep.MacroScore)
	require.NotNil(t, rep.TechScore)
	assert.Equal(t, 68, *rep.TechScore)

	// Classifications were written back.
	assert.Equal(t, []string{"policy"}, st.records["pol1"].Tags)
	assert.Equal(t, types.StatusProcessed, st.records["pol1"].Status)

	stored, err := st.GetReport(context.Background(), testDate())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, rep.Markdown, stored.Markdown)
}

func TestRunSynthesisRebuildReplacesReport(t *testing.T) {
	st := newMemStore()
	seedRecords(st, testDate())
	oracle := &scriptedOracle{
		classifyResponse: `{"policy": ["pol1", "tec1", "mkt1"]}`,
		synthResponse:    "first version\n\nSCORES: macro=50 tech=50",
	}
	o := New(st, oracle, nil, types.PipelineConfig{}, &bytes.Buffer{})

	_, _, err := o.RunSynthesis(context.Background(), testDate())
	require.NoError(t, err)

	oracle.synthResponse = "second version\n\nSCORES: macro=60 tech=60"
	rep, _, err := o.RunSynthesis(context.Background(), testDate())
	require.NoError(t, err)

	assert.Contains(t, rep.Markdown, "second version")
	assert.Equal(t, 2, st.deletes)
	assert.Equal(t, 2, st.saves)
	assert.Len(t, st.reports, 1)
}

func TestRunSynthesisNoData(t *testing.T) {
	st := newMemStore()
	oracle := &scriptedOracle{}
	o := New(st, oracle, nil, types.PipelineConfig{}, &bytes.Buffer{})

	rep, count, err := o.RunSynthesis(context.Background(), testDate())
	require.NoError(t, err)

	assert.Zero(t, count)
	assert.Nil(t, rep.MacroScore)
	assert.Nil(t, rep.TechScore)
	assert.Contains(t, rep.Markdown, synth.NoDataNarrative)
}

func TestRunSynthesisOracleFailureFallsBack(t *testing.T) {
	st := newMemStore()
	seedRecords(st, testDate())
	oracle := &scriptedOracle{
		classifyErr: fmt.Errorf("quota exhausted"),
		synthErr:    fmt.Errorf("quota exhausted"),
	}

	var buf bytes.Buffer
	o := New(st, oracle, nil, types.PipelineConfig{}, &buf)

	rep, _, err := o.RunSynthesis(context.Background(), testDate())
	require.NoError(t, err)

	// Source-table classification still wrote tags back.
	assert.Equal(t, []string{"policy"}, st.records["pol1"].Tags)
	assert.Equal(t, []string{"tech"}, st.records["tec1"].Tags)
	assert.Equal(t, []string{"market"}, st.records["mkt1"].Tags)

	// Deterministic document with neutral scores.
	require.NotNil(t, rep.MacroScore)
	assert.Equal(t, 70, *rep.MacroScore)
	require.NotNil(t, rep.TechScore)
	assert.Equal(t, 70, *rep.TechScore)
	assert.Contains(t, rep.Markdown, "[Fiscal measures announced](https://example.com/pol1)")
	assert.Contains(t, buf.String(), "classifying by source table")
}

func TestRunSynthesisNilOracle(t *testing.T) {
	st := newMemStore()
	seedRecords(st, testDate())
	o := New(st, nil, nil, types.PipelineConfig{}, &bytes.Buffer{})

	rep, _, err := o.RunSynthesis(context.Background(), testDate())
	require.NoError(t, err)
	require.NotNil(t, rep.MacroScore)
	assert.Equal(t, 70, *rep.MacroScore)
	assert.Contains(t, rep.Markdown, "without narrative synthesis")
}

func TestWindowBoundsUseLookback(t *testing.T) {
	st := newMemStore()
	date := testDate()

	st.records["in"] = types.Record{
		Identity: "in", Source: "gov", Title: "Inside the lookback margin",
		URL: "https://example.com/in", IngestedAt: date.Add(-5 * time.Hour),
	}
	st.records["out"] = types.Record{
		Identity: "out", Source: "gov", Title: "Outside the lookback margin",
		URL: "https://example.com/out", IngestedAt: date.Add(-7 * time.Hour),
	}

	o := New(st, nil, nil, types.PipelineConfig{}, &bytes.Buffer{})
	records, err := o.windowRecords(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "in", records[0].Identity)
}

type blockingProducer struct {
	release chan struct{}
}

func (p *blockingProducer) Name() string { return "test/blocking" }

func (p *blockingProducer) Produce(ctx context.Context) ([]types.CandidateRecord, error) {
	select {
	case <-p.release:
	case <-ctx.Done():
	}
	return nil, nil
}

func TestTriggerIngestSingleFlight(t *testing.T) {
	st := newMemStore()
	producer := &blockingProducer{release: make(chan struct{})}
	o := New(st, nil, []ingest.Producer{producer}, types.PipelineConfig{}, &bytes.Buffer{})

	assert.Equal(t, TriggerStarted, o.TriggerIngest(context.Background()))
	assert.Equal(t, TriggerAlreadyRunning, o.TriggerIngest(context.Background()))

	close(producer.release)

	// The background run marks itself finished and a new trigger starts.
	require.Eventually(t, func() bool {
		return o.TriggerIngest(context.Background()) == TriggerStarted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTriggerSynthesisReportsWindowCount(t *testing.T) {
	st := newMemStore()
	seedRecords(st, testDate())
	oracle := &scriptedOracle{
		classifyResponse: `{"policy": ["pol1"], "tech": ["tec1"], "market": ["mkt1"]}`,
		synthResponse:    "body\n\nSCORES: macro=70 tech=70",
	}
	o := New(st, oracle, nil, types.PipelineConfig{}, &bytes.Buffer{})

	assert.Equal(t, TriggerStarted, o.TriggerSynthesis(context.Background(), testDate()))

	require.Eventually(t, func() bool {
		return !o.Status()[TaskSynthesis].Running
	}, 2*time.Second, 10*time.Millisecond)

	// The status count is the number of window records covered, not a
	// byte length of the rendered report.
	info := o.Status()[TaskSynthesis]
	assert.Equal(t, 3, info.LastCount)
	assert.Empty(t, info.LastError)
}

func TestRunIngestThroughOrchestrator(t *testing.T) {
	st := newMemStore()
	producers := []ingest.Producer{staticProducer{}}
	o := New(st, nil, producers, types.PipelineConfig{}, &bytes.Buffer{})

	summary, err := o.RunIngest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stored)
	assert.Len(t, st.records, 1)
}

type staticProducer struct{}

func (staticProducer) Name() string { return "test/static" }

func (staticProducer) Produce(context.Context) ([]types.CandidateRecord, error) {
	return []types.CandidateRecord{{
		Source: "gov",
		Title:  "A story long enough to keep",
		URL:    "https://example.com/story",
	}}, nil
}
