// Package tracker derives live run progress from the text a running load
// generator writes to its combined output.
package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const (
	// defaultTotalStages is assumed when the run has no custom stage plan.
	defaultTotalStages = 5
	// diagnosticLines is how much output tail travels with a failure.
	diagnosticLines = 10
	// SentinelExitCode means the run completed but crossed thresholds.
	SentinelExitCode = 99
)

// Progress is the live state of one run. It is created queued, mutated only
// by the owning Tracker while the run is active, and immutable once Status
// is completed or failed.
type Progress struct {
	CurrentVUs        int
	TargetVUs         int
	ProgressPercent   int
	RunningTime       string
	StageIndex        int
	TotalStages       int
	PhaseLabel        string
	Status            Status
	ThresholdsCrossed bool
	ReportFile        string
	Diagnostic        string
	FinishedAt        time.Time
}

// Terminal reports whether the run has reached a final status.
func (p Progress) Terminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed
}

// Tracker is the single writer of one run's Progress. Consume is called
// synchronously per output line; Snapshot may be called concurrently by
// pollers. Terminal fields are written last, so a snapshot never shows
// "completed" without the fields needed to act on it.
type Tracker struct {
	mu       sync.Mutex
	progress Progress
	tail     *ring
	log      *logrus.Entry
}

// New returns a queued Tracker. totalStages is the custom stage count;
// pass 0 to assume the default plan.
func New(totalStages int) *Tracker {
	if totalStages <= 0 {
		totalStages = defaultTotalStages
	}
	return &Tracker{
		progress: Progress{
			Status:      StatusQueued,
			StageIndex:  1,
			TotalStages: totalStages,
			PhaseLabel:  "Initializing",
		},
		tail: newRing(diagnosticLines),
		log:  logrus.WithField("component", "tracker"),
	}
}

// Start marks the run as running.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress.Status = StatusRunning
}

// Consume applies one output line to the run state. Matchers fire
// independently; several can update state from the same line.
func (t *Tracker) Consume(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.progress.Terminal() {
		return
	}

	t.tail.push(line)

	pairMatched := false
	if current, target, ok := matchVUsPair(line); ok {
		t.progress.CurrentVUs = current
		t.progress.TargetVUs = target
		pairMatched = true
	}
	if !pairMatched {
		if current, ok := matchVUsSingle(line); ok {
			t.progress.CurrentVUs = current
		}
	}
	if percent, ok := matchPercent(line); ok {
		t.progress.ProgressPercent = percent
	}
	if duration, ok := matchRunningTime(line); ok {
		t.progress.RunningTime = duration
		t.progress.PhaseLabel = fmt.Sprintf("Running for %s", duration)
	}
	switch matchPhase(line) {
	case PhaseRampUp:
		// Increments on every matching line, not only on the first
		// occurrence per stage; repeated phrasing from the generator can
		// over-count. Kept as-is: dashboards are calibrated against it.
		t.progress.StageIndex++
		t.progress.PhaseLabel = fmt.Sprintf("Stage %d/%d: Ramping up",
			t.progress.StageIndex, t.progress.TotalStages)
	case PhaseRampDown:
		t.progress.PhaseLabel = fmt.Sprintf("Stage %d/%d: Ramping down",
			t.progress.StageIndex, t.progress.TotalStages)
	case PhaseSteady:
		t.progress.PhaseLabel = fmt.Sprintf("Stage %d/%d: Steady state",
			t.progress.StageIndex, t.progress.TotalStages)
	}
}

// SetReportFile records the generated report's name. Must be called before
// Complete so pollers never see a completed run without its report.
func (t *Tracker) SetReportFile(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.progress.Terminal() {
		return
	}
	t.progress.ReportFile = name
}

// Complete marks the run completed. thresholdsCrossed is set when the
// process exited with the sentinel code.
func (t *Tracker) Complete(thresholdsCrossed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.progress.Terminal() {
		return
	}
	t.progress.ThresholdsCrossed = thresholdsCrossed
	t.progress.FinishedAt = time.Now()
	t.progress.Status = StatusCompleted
	t.log.WithField("thresholds_crossed", thresholdsCrossed).Info("run completed")
}

// Fail marks the run failed, attaching the reason and the buffered output
// tail as diagnostic.
func (t *Tracker) Fail(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.progress.Terminal() {
		return
	}
	t.progress.Diagnostic = reason
	if tail := t.tail.String(); tail != "" {
		t.progress.Diagnostic = reason + "\nlast output:\n" + tail
	}
	t.progress.FinishedAt = time.Now()
	t.progress.Status = StatusFailed
	t.log.WithField("reason", reason).Warn("run failed")
}

// FinishExit maps a process exit code to a terminal decision: 0 and the
// sentinel both complete (the sentinel with the thresholds-crossed
// warning); anything else fails with diagnostics.
func (t *Tracker) FinishExit(exitCode int) {
	switch exitCode {
	case 0:
		t.Complete(false)
	case SentinelExitCode:
		t.Complete(true)
	default:
		t.Fail(fmt.Sprintf("load process exited with code %d", exitCode))
	}
}

// Snapshot returns a copy of the current progress.
func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}
