// Package status keeps the keyed run-status table. One entry per run; the
// run's tracker is the entry's only writer, pollers get snapshot copies.
// There is no cross-run contention: entries live in a lock-free concurrent
// map and never share state.
package status

import (
	"time"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/loadscope/loadreport/tracker"
)

// Run is one submitted run.
type Run struct {
	ID          string
	Filename    string
	SubmittedAt time.Time

	tracker *tracker.Tracker
}

// Tracker returns the run's tracker, for the goroutine executing the run.
func (r *Run) Tracker() *tracker.Tracker { return r.tracker }

// Snapshot is what pollers receive.
type Snapshot struct {
	ID          string
	Filename    string
	SubmittedAt time.Time
	Progress    tracker.Progress
}

// Store is the concurrency-safe run table. Terminal entries are retained
// until deleted explicitly or swept by age; polling a finished run must
// keep working until its owner lets it go.
type Store struct {
	runs    *haxmap.Map[string, *Run]
	created *atomic.Uint64
	swept   *atomic.Uint64
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		runs:    haxmap.New[string, *Run](),
		created: atomic.NewUint64(0),
		swept:   atomic.NewUint64(0),
	}
}

// Create inserts a queued run and returns it. totalStages is the custom
// stage count, 0 for the default plan.
func (s *Store) Create(filename string, totalStages int) *Run {
	run := &Run{
		ID:          uuid.NewString(),
		Filename:    filename,
		SubmittedAt: time.Now(),
		tracker:     tracker.New(totalStages),
	}
	s.runs.Set(run.ID, run)
	s.created.Inc()
	return run
}

// Get returns a snapshot of one run.
func (s *Store) Get(id string) (Snapshot, bool) {
	run, ok := s.runs.Get(id)
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		ID:          run.ID,
		Filename:    run.Filename,
		SubmittedAt: run.SubmittedAt,
		Progress:    run.tracker.Snapshot(),
	}, true
}

// Delete removes a run regardless of state.
func (s *Store) Delete(id string) {
	s.runs.Del(id)
}

// Sweep removes terminal runs whose terminal transition is older than
// maxAge and returns how many were removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	s.runs.ForEach(func(id string, run *Run) bool {
		p := run.tracker.Snapshot()
		if p.Terminal() && p.FinishedAt.Before(cutoff) {
			s.runs.Del(id)
			removed++
		}
		return true
	})
	s.swept.Add(uint64(removed))
	return removed
}

// Len returns the number of live entries.
func (s *Store) Len() int { return int(s.runs.Len()) }

// Created returns how many runs were ever submitted.
func (s *Store) Created() uint64 { return s.created.Load() }
