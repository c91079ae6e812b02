package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/generation"
	"github.com/phrazzld/roadmap-api/internal/jobs"
	"github.com/phrazzld/roadmap-api/internal/metrics"
	"github.com/phrazzld/roadmap-api/internal/platform/logger"
	"github.com/phrazzld/roadmap-api/internal/prompt"
	"github.com/phrazzld/roadmap-api/internal/task"
)

// UsageLimiter gates roadmap generation by a daily quota.
type UsageLimiter interface {
	TryConsume(ctx context.Context) (bool, error)
}

// TextExtractor turns an uploaded résumé into plain text. It returns "" when
// nothing usable could be extracted.
type TextExtractor interface {
	Extract(filename string, data []byte) string
}

// JobStore creates and updates report jobs. *jobs.Registry satisfies it.
type JobStore interface {
	Create() jobs.Job
	Get(id uuid.UUID) (jobs.Job, error)
	Transition(id uuid.UUID, expected, next jobs.Status, report, errMsg string) (jobs.Job, error)
}

// ReportTaskFactory builds the background task that produces a report.
type ReportTaskFactory interface {
	CreateTask(jobID uuid.UUID, roadmap *domain.Roadmap, resumeSnippet, location string) (task.Task, error)
}

// TaskRunner accepts background tasks without blocking.
type TaskRunner interface {
	Submit(t task.Task) error
}

// ResumeUpload is an uploaded résumé file. Size is the size declared by the
// client and is checked before Data is parsed.
type ResumeUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

// GenerateInput is a roadmap request.
type GenerateInput struct {
	Goal     string
	Location string
	Resume   *ResumeUpload
}

// GenerateResult is a generated roadmap and the job producing its report.
type GenerateResult struct {
	// Roadmap is the validated roadmap serialized as indented JSON.
	Roadmap string
	Parsed  *domain.Roadmap
	JobID   uuid.UUID
}

// RoadmapService generates career roadmaps.
type RoadmapService struct {
	rules     domain.InputRules
	limiter   UsageLimiter
	extractor TextExtractor
	completer generation.RoadmapCompleter
	jobs      JobStore
	factory   ReportTaskFactory
	runner    TaskRunner
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewRoadmapService creates a RoadmapService. collector may be nil.
func NewRoadmapService(
	rules domain.InputRules,
	limiter UsageLimiter,
	extractor TextExtractor,
	completer generation.RoadmapCompleter,
	store JobStore,
	factory ReportTaskFactory,
	runner TaskRunner,
	collector *metrics.Collector,
	log *slog.Logger,
) (*RoadmapService, error) {
	switch {
	case limiter == nil:
		return nil, errors.New("limiter cannot be nil")
	case extractor == nil:
		return nil, errors.New("extractor cannot be nil")
	case completer == nil:
		return nil, errors.New("completer cannot be nil")
	case store == nil:
		return nil, errors.New("job store cannot be nil")
	case factory == nil:
		return nil, errors.New("task factory cannot be nil")
	case runner == nil:
		return nil, errors.New("task runner cannot be nil")
	case log == nil:
		return nil, errors.New("logger cannot be nil")
	}

	return &RoadmapService{
		rules:     rules,
		limiter:   limiter,
		extractor: extractor,
		completer: completer,
		jobs:      store,
		factory:   factory,
		runner:    runner,
		metrics:   collector,
		logger:    log.With("component", "roadmap_service"),
	}, nil
}

// Generate validates the request, consumes one unit of the daily quota,
// asks the language model for a roadmap and queues the market intelligence
// report. It returns as soon as the roadmap is validated; the report is
// produced in the background and tracked by the returned job ID.
func (s *RoadmapService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	goal, location, snippet, err := s.validate(in)
	if err != nil {
		s.metrics.RoadmapRequest(metrics.OutcomeInvalidInput)
		return nil, err
	}

	allowed, err := s.limiter.TryConsume(ctx)
	if err != nil {
		s.metrics.RoadmapRequest(metrics.OutcomeInternalError)
		return nil, fmt.Errorf("failed to check usage limit: %w", err)
	}
	if !allowed {
		s.metrics.RoadmapRequest(metrics.OutcomeQuotaExceeded)
		log.Warn("daily roadmap quota exhausted")
		return nil, ErrQuotaExceeded
	}

	roadmapPrompt, err := prompt.Roadmap(goal, location, snippet)
	if err != nil {
		s.metrics.RoadmapRequest(metrics.OutcomeInternalError)
		return nil, err
	}

	raw, err := s.completer.CompleteRoadmap(ctx, roadmapPrompt)
	if err == nil && raw == "" {
		err = generation.ErrEmptyResponse
	}
	if err != nil {
		s.metrics.RoadmapRequest(metrics.OutcomeUpstreamError)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	roadmap, err := domain.ParseRoadmap(raw)
	if err != nil {
		s.metrics.RoadmapRequest(metrics.OutcomeInvalidRoadmap)
		log.Warn("language model returned an unusable roadmap", "error", err)
		return nil, err
	}
	roadmapJSON, err := roadmap.JSON()
	if err != nil {
		s.metrics.RoadmapRequest(metrics.OutcomeInternalError)
		return nil, err
	}

	job := s.jobs.Create()
	s.enqueueReport(log, job.ID, roadmap, snippet, location)

	s.metrics.RoadmapRequest(metrics.OutcomeSuccess)
	log.Info("roadmap generated", "job_id", job.ID)
	return &GenerateResult{
		Roadmap: roadmapJSON,
		Parsed:  roadmap,
		JobID:   job.ID,
	}, nil
}

// validate checks all client input before any quota or upstream spend.
func (s *RoadmapService) validate(in GenerateInput) (goal, location, snippet string, err error) {
	if goal, err = s.rules.ValidateGoal(in.Goal); err != nil {
		return "", "", "", err
	}
	if location, err = s.rules.ValidateLocation(in.Location); err != nil {
		return "", "", "", err
	}
	if in.Resume == nil {
		return goal, location, "", nil
	}

	if _, err = s.rules.ValidateResumeFile(in.Resume.Filename, in.Resume.Size); err != nil {
		return "", "", "", err
	}
	text := s.extractor.Extract(in.Resume.Filename, in.Resume.Data)
	if err = s.rules.ValidateResumeText(text); err != nil {
		return "", "", "", err
	}
	return goal, location, s.rules.Snippet(text), nil
}

// enqueueReport hands the report to the runner. A rejected submission marks
// the job as error; the roadmap is still returned to the caller.
func (s *RoadmapService) enqueueReport(log *slog.Logger, jobID uuid.UUID, roadmap *domain.Roadmap, snippet, location string) {
	t, err := s.factory.CreateTask(jobID, roadmap, snippet, location)
	if err == nil {
		err = s.runner.Submit(t)
	}
	if err == nil {
		return
	}

	log.Error("failed to queue report generation", "job_id", jobID, "error", err)
	if _, tErr := s.jobs.Transition(jobID, jobs.StatusRunning, jobs.StatusError, "", "report could not be queued"); tErr != nil {
		log.Error("failed to mark job as error", "job_id", jobID, "error", tErr)
	}
}
