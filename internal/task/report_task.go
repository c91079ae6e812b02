package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/generation"
	"github.com/phrazzld/roadmap-api/internal/jobs"
	"github.com/phrazzld/roadmap-api/internal/metrics"
	"github.com/phrazzld/roadmap-api/internal/prompt"
	"github.com/phrazzld/roadmap-api/internal/redact"
)

// Common errors
var (
	ErrNilJobUpdater = errors.New("job updater cannot be nil")
	ErrNilResearcher = errors.New("researcher cannot be nil")
	ErrNilRenderer   = errors.New("renderer cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
	ErrNilRoadmap    = errors.New("roadmap cannot be nil")
	ErrEmptyJobID    = errors.New("job ID cannot be empty")
)

// JobUpdater moves a report job between states. *jobs.Registry satisfies it.
type JobUpdater interface {
	Transition(id uuid.UUID, expected, next jobs.Status, report, errMsg string) (jobs.Job, error)
}

// Renderer converts the Markdown research report to HTML.
type Renderer interface {
	HTML(markdown string) (string, error)
}

// ReportTask produces the market intelligence report for one job. It ends
// with the job in ready or error; it never retries.
type ReportTask struct {
	id            uuid.UUID
	jobID         uuid.UUID
	roadmap       *domain.Roadmap
	resumeSnippet string
	location      string

	jobs       JobUpdater
	researcher generation.MarketResearcher
	renderer   Renderer
	metrics    *metrics.Collector
	logger     *slog.Logger
	now        func() time.Time
}

// NewReportTask creates a report task for an existing running job.
func NewReportTask(
	jobID uuid.UUID,
	roadmap *domain.Roadmap,
	resumeSnippet string,
	location string,
	updater JobUpdater,
	researcher generation.MarketResearcher,
	renderer Renderer,
	collector *metrics.Collector,
	logger *slog.Logger,
) (*ReportTask, error) {
	if updater == nil {
		return nil, ErrNilJobUpdater
	}
	if researcher == nil {
		return nil, ErrNilResearcher
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if roadmap == nil {
		return nil, ErrNilRoadmap
	}
	if jobID == uuid.Nil {
		return nil, ErrEmptyJobID
	}

	return &ReportTask{
		id:            uuid.New(),
		jobID:         jobID,
		roadmap:       roadmap,
		resumeSnippet: resumeSnippet,
		location:      location,
		jobs:          updater,
		researcher:    researcher,
		renderer:      renderer,
		metrics:       collector,
		logger:        logger.With("task_type", TaskTypeReportGeneration, "job_id", jobID),
		now:           time.Now,
	}, nil
}

// ID returns the task's unique identifier
func (t *ReportTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ReportTask) Type() string {
	return TaskTypeReportGeneration
}

// JobID returns the job this task reports on.
func (t *ReportTask) JobID() uuid.UUID {
	return t.jobID
}

// Execute builds the research prompt, calls the research API, renders the
// answer and stores it on the job. Every failure marks the job as error.
func (t *ReportTask) Execute(ctx context.Context) (err error) {
	start := t.now()
	t.logger.Info("generating market intelligence report")

	// A panicking collaborator must not leave the job running forever.
	defer func() {
		if p := recover(); p != nil {
			err = t.fail(fmt.Errorf("report generation panicked: %v", p))
		}
	}()

	if err := ctx.Err(); err != nil {
		return t.fail(fmt.Errorf("report generation cancelled: %w", err))
	}

	researchPrompt, err := prompt.Research(t.roadmap, t.resumeSnippet, t.location)
	if err != nil {
		return t.fail(fmt.Errorf("failed to build research prompt: %w", err))
	}

	markdown, err := t.researcher.Research(ctx, researchPrompt)
	if err != nil {
		return t.fail(err)
	}
	if markdown == "" {
		return t.fail(generation.ErrEmptyResponse)
	}

	html, err := t.renderer.HTML(markdown)
	if err != nil {
		return t.fail(fmt.Errorf("failed to render report: %w", err))
	}

	if _, err := t.jobs.Transition(t.jobID, jobs.StatusRunning, jobs.StatusReady, html, ""); err != nil {
		t.logger.Error("failed to store report", "error", err)
		return fmt.Errorf("failed to store report: %w", err)
	}

	elapsed := t.now().Sub(start)
	t.metrics.ReportGenerated(elapsed)
	t.logger.Info("market intelligence report ready",
		"duration", elapsed,
		"report_bytes", len(html))
	return nil
}

// Cancel marks the job as error when the task is discarded before running.
func (t *ReportTask) Cancel(reason error) {
	_ = t.fail(fmt.Errorf("report generation cancelled: %w", reason))
}

func (t *ReportTask) fail(cause error) error {
	msg := redact.Error(cause)
	if _, err := t.jobs.Transition(t.jobID, jobs.StatusRunning, jobs.StatusError, "", msg); err != nil {
		t.logger.Error("failed to mark job as error",
			"error", err,
			"cause", msg)
		return errors.Join(cause, err)
	}
	t.logger.Error("market intelligence report failed", "error", msg)
	return cause
}

// ReportTaskFactory creates ReportTask instances sharing one set of
// collaborators.
type ReportTaskFactory struct {
	jobs       JobUpdater
	researcher generation.MarketResearcher
	renderer   Renderer
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// NewReportTaskFactory creates a new factory for ReportTasks
func NewReportTaskFactory(
	updater JobUpdater,
	researcher generation.MarketResearcher,
	renderer Renderer,
	collector *metrics.Collector,
	logger *slog.Logger,
) *ReportTaskFactory {
	return &ReportTaskFactory{
		jobs:       updater,
		researcher: researcher,
		renderer:   renderer,
		metrics:    collector,
		logger:     logger.With("component", "report_task_factory"),
	}
}

// CreateTask creates a ReportTask for the specified job
func (f *ReportTaskFactory) CreateTask(
	jobID uuid.UUID,
	roadmap *domain.Roadmap,
	resumeSnippet string,
	location string,
) (Task, error) {
	task, err := NewReportTask(
		jobID,
		roadmap,
		resumeSnippet,
		location,
		f.jobs,
		f.researcher,
		f.renderer,
		f.metrics,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
