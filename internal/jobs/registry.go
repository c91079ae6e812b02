package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors returned by the Registry.
var (
	// ErrJobNotFound is returned when no job exists for the given ID.
	ErrJobNotFound = errors.New("job not found")

	// ErrStatusMismatch is returned when a compare-and-set transition finds
	// the job in a different state than expected.
	ErrStatusMismatch = errors.New("job status mismatch")

	// ErrInvalidTransition is returned for edges the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid job transition")

	// ErrReportRequired is returned when entering a state that needs a report
	// without supplying one.
	ErrReportRequired = errors.New("report body required")
)

// TransitionError reports a failed compare-and-set and the state the job
// was actually in.
type TransitionError struct {
	ID       uuid.UUID
	Expected Status
	Current  Status
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("job %s: expected status %q, found %q", e.ID, e.Expected, e.Current)
}

// Unwrap allows errors.Is(err, ErrStatusMismatch).
func (e *TransitionError) Unwrap() error {
	return ErrStatusMismatch
}

// Observer is notified after every successful state change. It is called
// outside the registry lock.
type Observer func(job Job)

// Registry is an in-memory table of report jobs guarded by a single mutex.
type Registry struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*Job
	retention time.Duration
	now       func() time.Time
	observer  Observer
	logger    *slog.Logger
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithObserver registers a callback invoked after each create and transition.
func WithObserver(o Observer) RegistryOption {
	return func(r *Registry) { r.observer = o }
}

// NewRegistry creates an empty registry. Jobs that are no longer running are
// evicted by Sweep once their last update is older than retention.
func NewRegistry(retention time.Duration, logger *slog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		jobs:      make(map[uuid.UUID]*Job),
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new job in the running state and returns a copy of it.
func (r *Registry) Create() Job {
	now := r.now().UTC()
	job := &Job{
		ID:        uuid.New(),
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	snapshot := *job
	r.mu.Unlock()

	r.logger.Debug("report job created", "job_id", job.ID)
	r.notify(snapshot)
	return snapshot
}

// Get returns a copy of the job with the given ID.
func (r *Registry) Get(id uuid.UUID) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// Transition atomically moves a job from expected to next. The report body
// is stored when next carries one (ready, sending, sent); passing an empty
// report keeps the existing body. errMsg is recorded when entering error.
func (r *Registry) Transition(id uuid.UUID, expected, next Status, report, errMsg string) (Job, error) {
	if !CanTransition(expected, next) {
		return Job{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, expected, next)
	}

	r.mu.Lock()
	job, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return Job{}, ErrJobNotFound
	}
	if job.Status != expected {
		current := job.Status
		r.mu.Unlock()
		return Job{}, &TransitionError{ID: id, Expected: expected, Current: current}
	}

	if next.HasReport() {
		if report != "" {
			job.Report = report
		}
		if job.Report == "" {
			r.mu.Unlock()
			return Job{}, fmt.Errorf("%w: entering %s", ErrReportRequired, next)
		}
	} else {
		job.Report = ""
	}
	if next == StatusError {
		job.Error = errMsg
	}
	job.Status = next
	job.UpdatedAt = r.now().UTC()
	snapshot := *job
	r.mu.Unlock()

	r.logger.Debug("report job transitioned",
		"job_id", id,
		"from", expected,
		"to", next)
	r.notify(snapshot)
	return snapshot, nil
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Sweep evicts jobs that are not running and whose last update is older
// than the retention window. It returns the number of evicted jobs.
func (r *Registry) Sweep() int {
	cutoff := r.now().UTC().Add(-r.retention)

	r.mu.Lock()
	evicted := 0
	for id, job := range r.jobs {
		if job.Status == StatusRunning || job.Status == StatusSending {
			continue
		}
		if job.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			evicted++
		}
	}
	remaining := len(r.jobs)
	r.mu.Unlock()

	if evicted > 0 {
		r.logger.Info("evicted expired report jobs",
			"evicted", evicted,
			"remaining", remaining)
	}
	return evicted
}

// RunJanitor calls Sweep every interval until ctx is cancelled.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) notify(job Job) {
	if r.observer != nil {
		r.observer(job)
	}
}
