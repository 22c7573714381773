// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"sync"
	"time"
)

// Task names used by the run-state tracker.
const (
	TaskIngest    = "ingest"
	TaskSynthesis = "synthesis"
)

// RunInfo is the externally visible state of one background task.
type RunInfo struct {
	Running   bool      `json:"running"`
	LastRun   time.Time `json:"last_run,omitzero"`
	LastCount int       `json:"last_count"`
	LastError string    `json:"last_error,omitempty"`
}

// RunState tracks which background tasks are in flight and how their last
// run ended. It enforces single-flight per task name.
type RunState struct {
	mu    sync.Mutex
	tasks map[string]RunInfo
}

// NewRunState builds an empty tracker.
func NewRunState() *RunState {
	return &RunState{tasks: make(map[string]RunInfo)}
}

// TryStart marks the task running. It reports false when the task is
// already in flight, in which case the caller must not run.
func (s *RunState) TryStart(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.tasks[name]
	if info.Running {
		return false
	}
	info.Running = true
	s.tasks[name] = info
	return true
}

// Finish records the outcome of a run started with TryStart.
func (s *RunState) Finish(name string, count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := s.tasks[name]
	info.Running = false
	info.LastRun = time.Now()
	info.LastCount = count
	info.LastError = ""
	if err != nil {
		info.LastError = err.Error()
	}
	s.tasks[name] = info
}

// Snapshot returns a copy of the current state for all known tasks.
func (s *RunState) Snapshot() map[string]RunInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]RunInfo, len(s.tasks))
	for name, info := range s.tasks {
		out[name] = info
	}
	return out
}
