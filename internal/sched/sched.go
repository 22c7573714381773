// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sched runs jobs at fixed wall-clock times each day. It is the
// serve daemon's clock: ingestion sweeps in the early morning and at noon,
// report synthesis once the morning sweep has landed.
package sched

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Job is one scheduled entry: a name for logging, a daily wall-clock time,
// and the work to run.
type Job struct {
	Name string
	At   TimeOfDay
	Run  func(ctx context.Context)
}

// TimeOfDay is a wall-clock trigger time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM" on a 24-hour clock.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("time %q is not HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("time %q has a bad hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time %q has a bad minute", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// next returns the first occurrence of the trigger time strictly after now,
// in now's location.
func (t TimeOfDay) next(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// Scheduler fires each job once per day at its configured time.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New builds a scheduler over the given jobs.
func New(jobs []Job, logger *slog.Logger) *Scheduler {
	return &Scheduler{jobs: jobs, logger: logger, now: time.Now}
}

// Run blocks, firing jobs at their trigger times, until the context is
// canceled. Jobs run inline in the scheduler goroutine; long work should
// hand off internally (the pipeline triggers already do).
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	for _, job := range s.jobs {
		s.logger.Info("scheduled job", "name", job.Name, "at", job.At.String())
	}

	for {
		job, fireAt := s.nextJob()
		wait := fireAt.Sub(s.now())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.logger.Info("firing job", "name", job.Name)
		job.Run(ctx)
	}
}

// nextJob picks the job with the earliest upcoming trigger.
func (s *Scheduler) nextJob() (Job, time.Time) {
	now := s.now()

	type upcoming struct {
		job Job
		at  time.Time
	}
	all := make([]upcoming, len(s.jobs))
	for i, job := range s.jobs {
		all[i] = upcoming{job: job, at: job.At.next(now)}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	return all[0].job, all[0].at
}
