package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a report job.
type Status string

// Possible job status values.
const (
	// StatusRunning means the report is being produced in the background.
	StatusRunning Status = "running"
	// StatusReady means the report is available and can be emailed.
	StatusReady Status = "ready"
	// StatusSending means an email dispatch currently holds the job.
	StatusSending Status = "sending"
	// StatusSent means the report was emailed. Terminal.
	StatusSent Status = "sent"
	// StatusError means report generation failed. Terminal.
	StatusError Status = "error"
)

// transitions lists the legal edges of the job state machine.
var transitions = map[Status][]Status{
	StatusRunning: {StatusReady, StatusError},
	StatusReady:   {StatusSending},
	StatusSending: {StatusSent, StatusReady},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusReady, StatusSending, StatusSent, StatusError:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusError
}

// HasReport reports whether a job in state s carries a report body.
func (s Status) HasReport() bool {
	return s == StatusReady || s == StatusSending || s == StatusSent
}

// Public returns the status reported to clients. The sending lease is an
// internal state; to a poller the report is still ready.
func (s Status) Public() Status {
	if s == StatusSending {
		return StatusReady
	}
	return s
}

// CanTransition reports whether from→to is a legal edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Job is a snapshot of a report job. Values returned by the Registry are
// copies; mutating them has no effect on the stored job.
type Job struct {
	ID        uuid.UUID `json:"id"`
	Status    Status    `json:"status"`
	Report    string    `json:"-"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
