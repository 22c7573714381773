// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the briefing stages end to end: the
// ingestion sweep, and the classify-aggregate-synthesize run that rebuilds
// one day's report. It owns the single-flight run state used by the serve
// daemon and its HTTP triggers.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/brief-engine/internal/aggregate"
	"github.com/pdiddy/brief-engine/internal/classify"
	"github.com/pdiddy/brief-engine/internal/ingest"
	"github.com/pdiddy/brief-engine/internal/synth"
	"github.com/pdiddy/brief-engine/pkg/types"
)

// Store is the slice of the persistence layer the orchestrator needs.
type Store interface {
	InsertRecord(ctx context.Context, rec types.Record) (bool, error)
	Window(ctx context.Context, from, to time.Time, limit int) ([]types.Record, error)
	UpdateTags(ctx context.Context, tags map[string][]string) error
	DeleteReport(ctx context.Context, date time.Time) error
	SaveReport(ctx context.Context, rep types.Report) error
}

// Oracle is the completion interface shared by the classify and synth
// stages. A nil oracle switches both stages to their deterministic
// fallbacks.
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const (
	defaultWindowLookback = 6 * time.Hour
	defaultMaxRecords     = 200
)

// Trigger outcomes returned by the TriggerX methods.
const (
	TriggerStarted        = "started"
	TriggerAlreadyRunning = "already_running"
)

// Orchestrator wires the stages together over one store and one oracle.
type Orchestrator struct {
	store     Store
	oracle    Oracle
	producers []ingest.Producer
	cfg       types.PipelineConfig
	out       io.Writer
	state     *RunState
}

// New builds an orchestrator. oracle may be nil, in which case reports are
// always produced by the deterministic fallback path.
func New(st Store, oracle Oracle, producers []ingest.Producer, cfg types.PipelineConfig, out io.Writer) *Orchestrator {
	return &Orchestrator{
		store:     st,
		oracle:    oracle,
		producers: producers,
		cfg:       cfg,
		out:       out,
		state:     NewRunState(),
	}
}

// Status returns the run-state snapshot for the serve daemon.
func (o *Orchestrator) Status() map[string]RunInfo {
	return o.state.Snapshot()
}

// RunIngest executes one ingestion sweep across all producers.
func (o *Orchestrator) RunIngest(ctx context.Context) (ingest.SweepSummary, error) {
	return ingest.Sweep(ctx, o.producers, o.store, o.cfg.Ingest, o.out)
}

// RunSynthesis rebuilds the report for the given date from scratch: any
// existing report is deleted first, so a rerun reflects records ingested
// since the previous one. It returns the persisted report along with the
// number of window records it covered.
func (o *Orchestrator) RunSynthesis(ctx context.Context, date time.Time) (types.Report, int, error) {
	if err := o.store.DeleteReport(ctx, date); err != nil {
		return types.Report{}, 0, fmt.Errorf("clearing previous report: %w", err)
	}

	records, err := o.windowRecords(ctx, date)
	if err != nil {
		return types.Report{}, 0, err
	}
	fmt.Fprintf(o.out, "synthesis window for %s holds %d records\n", types.DateKey(date), len(records))

	assignment := o.classifyRecords(ctx, records)

	if err := o.store.UpdateTags(ctx, classify.WriteBack(assignment, records)); err != nil {
		return types.Report{}, 0, fmt.Errorf("writing classifications back: %w", err)
	}

	digest := aggregate.Build(assignment, records)
	result := o.synthesize(ctx, digest, date)

	rep := types.Report{
		Date:       date,
		Markdown:   result.Markdown,
		MacroScore: result.MacroScore,
		TechScore:  result.TechScore,
		CreatedAt:  time.Now(),
	}
	if err := o.store.SaveReport(ctx, rep); err != nil {
		return types.Report{}, 0, fmt.Errorf("saving report: %w", err)
	}
	return rep, len(records), nil
}

func (o *Orchestrator) windowRecords(ctx context.Context, date time.Time) ([]types.Record, error) {
	lookback := o.cfg.Synthesis.WindowLookback
	if lookback <= 0 {
		lookback = defaultWindowLookback
	}
	maxRecords := o.cfg.Synthesis.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	records, err := o.store.Window(ctx, startOfDay.Add(-lookback), startOfDay.Add(24*time.Hour), maxRecords)
	if err != nil {
		return nil, fmt.Errorf("selecting synthesis window: %w", err)
	}
	return records, nil
}

// classifyRecords runs the oracle classification and falls back to the
// source table when the oracle yields nothing usable.
func (o *Orchestrator) classifyRecords(ctx context.Context, records []types.Record) classify.Assignment {
	if len(records) == 0 {
		return classify.Assignment{}
	}

	if o.oracle != nil {
		if assignment := classify.Classify(ctx, o.oracle, records, o.out); assignment.Total() > 0 {
			return assignment
		}
	}
	fmt.Fprintln(o.out, "classifying by source table")
	return classify.FallbackAssign(records)
}

func (o *Orchestrator) synthesize(ctx context.Context, digest aggregate.Digest, date time.Time) synth.Result {
	if o.oracle == nil {
		if digest.Total() == 0 {
			return synth.Result{Markdown: synth.RenderNoData(date)}
		}
		return synth.DegradedResult(digest, date)
	}
	return synth.Synthesize(ctx, o.oracle, digest, date, o.out)
}

// TriggerIngest starts a background sweep unless one is in flight. It
// returns immediately with the trigger outcome.
func (o *Orchestrator) TriggerIngest(ctx context.Context) string {
	if !o.state.TryStart(TaskIngest) {
		return TriggerAlreadyRunning
	}
	go func() {
		summary, err := o.RunIngest(ctx)
		o.state.Finish(TaskIngest, summary.Stored, err)
	}()
	return TriggerStarted
}

// TriggerSynthesis starts a background report rebuild for the date unless
// one is in flight.
func (o *Orchestrator) TriggerSynthesis(ctx context.Context, date time.Time) string {
	if !o.state.TryStart(TaskSynthesis) {
		return TriggerAlreadyRunning
	}
	go func() {
		_, count, err := o.RunSynthesis(ctx, date)
		o.state.Finish(TaskSynthesis, count, err)
	}()
	return TriggerStarted
}
