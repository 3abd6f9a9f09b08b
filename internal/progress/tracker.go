// Package progress implements C10: a per-scan step state machine
// (pending -> in_progress -> completed/failed/skipped) with timing.
// Grounded on backend/fix_progress_tracker.py, transliterated
// field-for-field; the module-level registry keyed by scanId becomes a
// small mutex-guarded Go map instead of Python's bare global dict.
package progress

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "progress")

// StepStatus is the closed per-step status enum.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepSkipped    StepStatus = "skipped"
)

// TrackerStatus is the closed overall-status enum.
type TrackerStatus string

const (
	StatusInitializing TrackerStatus = "initializing"
	StatusInProgress   TrackerStatus = "in_progress"
	StatusCompleted    TrackerStatus = "completed"
	StatusFailed       TrackerStatus = "failed"
)

// Step is one tracked unit of work.
type Step struct {
	ID          int
	Name        string
	Description string
	Status      StepStatus
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	Details     string
	Error       string
}

// Tracker tracks progress of a single scan/fix operation.
type Tracker struct {
	mu         sync.Mutex
	ScanID     string
	TotalSteps int
	Steps      []*Step
	StartTime  time.Time
	Status     TrackerStatus
	Error      string
	current    int
}

// New creates a tracker for scanId expecting totalSteps steps.
func New(scanID string, totalSteps int) *Tracker {
	return &Tracker{
		ScanID:     scanID,
		TotalSteps: totalSteps,
		StartTime:  time.Now(),
		Status:     StatusInitializing,
	}
}

// AddStep registers a new step and returns its 1-based id.
func (t *Tracker) AddStep(name, description string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	step := &Step{ID: len(t.Steps) + 1, Name: name, Description: description, Status: StepPending}
	t.Steps = append(t.Steps, step)
	return step.ID
}

// StartStep marks a step as started.
func (t *Tracker) StartStep(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	step := t.step(id)
	if step == nil {
		return
	}
	step.Status = StepInProgress
	step.StartTime = time.Now()
	t.current = id
	t.Status = StatusInProgress
	log.WithFields(logrus.Fields{"scanId": t.ScanID, "step": id, "name": step.Name}).Debug("step started")
}

// CompleteStep marks a step as completed.
func (t *Tracker) CompleteStep(id int, details string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	step := t.step(id)
	if step == nil {
		return
	}
	step.Status = StepCompleted
	step.EndTime = time.Now()
	if !step.StartTime.IsZero() {
		step.Duration = step.EndTime.Sub(step.StartTime)
	}
	if details != "" {
		step.Details = details
	}
	log.WithFields(logrus.Fields{"scanId": t.ScanID, "step": id, "duration": step.Duration}).Debug("step completed")
}

// FailStep marks a step as failed.
func (t *Tracker) FailStep(id int, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	step := t.step(id)
	if step == nil {
		return
	}
	step.Status = StepFailed
	step.EndTime = time.Now()
	step.Error = errMsg
	if !step.StartTime.IsZero() {
		step.Duration = step.EndTime.Sub(step.StartTime)
	}
	log.WithFields(logrus.Fields{"scanId": t.ScanID, "step": id}).WithError(nil).Warn("step failed: " + errMsg)
}

// SkipStep marks a step as skipped with a reason.
func (t *Tracker) SkipStep(id int, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	step := t.step(id)
	if step == nil {
		return
	}
	step.Status = StepSkipped
	step.Details = reason
}

// CompleteAll marks the whole operation as completed.
func (t *Tracker) CompleteAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = StatusCompleted
}

// FailAll marks the whole operation as failed.
func (t *Tracker) FailAll(errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = StatusFailed
	t.Error = errMsg
}

func (t *Tracker) step(id int) *Step {
	if id <= 0 || id > len(t.Steps) {
		return nil
	}
	return t.Steps[id-1]
}

// Snapshot is the JSON-serializable progress view, matching get_progress.
type Snapshot struct {
	ScanID         string    `json:"scanId"`
	Status         TrackerStatus `json:"status"`
	CurrentStep    int       `json:"currentStep"`
	TotalSteps     int       `json:"totalSteps"`
	CompletedSteps int       `json:"completedSteps"`
	FailedSteps    int       `json:"failedSteps"`
	Progress       int       `json:"progress"`
	Steps          []*Step   `json:"steps"`
	StartTime      time.Time `json:"startTime"`
	Error          string    `json:"error,omitempty"`
}

// Progress returns the current progress snapshot.
func (t *Tracker) Progress() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	completed, failed := 0, 0
	for _, s := range t.Steps {
		switch s.Status {
		case StepCompleted:
			completed++
		case StepFailed:
			failed++
		}
	}
	pct := 0
	if len(t.Steps) > 0 {
		pct = int((float64(completed) / float64(len(t.Steps))) * 100)
	}
	return Snapshot{
		ScanID: t.ScanID, Status: t.Status, CurrentStep: t.current,
		TotalSteps: len(t.Steps), CompletedSteps: completed, FailedSteps: failed,
		Progress: pct, Steps: t.Steps, StartTime: t.StartTime, Error: t.Error,
	}
}

// Registry holds active trackers keyed by scanId, replacing the
// reference implementation's module-level dict with a mutex-guarded
// map safe for the "many scans in parallel" concurrency model of
// spec §5.
type Registry struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
}

// NewRegistry creates an empty tracker registry.
func NewRegistry() *Registry {
	return &Registry{trackers: map[string]*Tracker{}}
}

// Create registers and returns a new tracker for scanId.
func (r *Registry) Create(scanID string, totalSteps int) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := New(scanID, totalSteps)
	r.trackers[scanID] = t
	return t
}

// Get returns the tracker for scanId, if any.
func (r *Registry) Get(scanID string) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trackers[scanID]
	return t, ok
}

// Remove deletes the tracker for scanId.
func (r *Registry) Remove(scanID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, scanID)
}
