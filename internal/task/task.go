package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskTypeReportGeneration identifies ReportTask.
const TaskTypeReportGeneration = "report_generation"

// Task is a unit of background work.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Execute runs the task. ctx is cancelled when the runner stops.
	Execute(ctx context.Context) error
}

// Canceler is implemented by tasks that must record something when they are
// discarded without running, for example because the runner stopped while
// they were still queued.
type Canceler interface {
	Cancel(reason error)
}
