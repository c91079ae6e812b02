package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/jobs"
	"github.com/phrazzld/roadmap-api/internal/metrics"
	"github.com/phrazzld/roadmap-api/internal/platform/logger"
	"github.com/phrazzld/roadmap-api/internal/redact"
)

// ReportSubject is the subject line of report emails.
const ReportSubject = "Your Custom Career Intelligence Report is Ready!"

// Mailer delivers an HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ReportService exposes report status and email dispatch.
type ReportService struct {
	jobs     JobStore
	mailer   Mailer
	validate *validator.Validate
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewReportService creates a ReportService. collector may be nil.
func NewReportService(store JobStore, mailer Mailer, collector *metrics.Collector, log *slog.Logger) (*ReportService, error) {
	switch {
	case store == nil:
		return nil, errors.New("job store cannot be nil")
	case mailer == nil:
		return nil, errors.New("mailer cannot be nil")
	case log == nil:
		return nil, errors.New("logger cannot be nil")
	}
	return &ReportService{
		jobs:     store,
		mailer:   mailer,
		validate: validator.New(),
		metrics:  collector,
		logger:   log.With("component", "report_service"),
	}, nil
}

// Status returns a snapshot of the job.
func (s *ReportService) Status(_ context.Context, id uuid.UUID) (jobs.Job, error) {
	job, err := s.jobs.Get(id)
	if errors.Is(err, jobs.ErrJobNotFound) {
		return jobs.Job{}, ErrReportNotFound
	}
	return job, err
}

// Dispatch emails a ready report. The job moves to sending for the duration
// of the delivery, so concurrent dispatches of the same job send at most one
// email. A delivery failure returns the job to ready.
func (s *ReportService) Dispatch(ctx context.Context, id uuid.UUID, email string) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With("job_id", id)

	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.NewValidationError("email", "must be a valid email address", nil)
	}

	job, err := s.jobs.Transition(id, jobs.StatusReady, jobs.StatusSending, "", "")
	if err != nil {
		return dispatchRejection(err)
	}

	if err := s.mailer.Send(ctx, email, ReportSubject, job.Report); err != nil {
		s.metrics.EmailResult(metrics.EmailFailed)
		log.Error("report email failed",
			"recipient", redact.Email(email),
			"error", redact.Error(err))
		if _, tErr := s.jobs.Transition(id, jobs.StatusSending, jobs.StatusReady, "", ""); tErr != nil {
			log.Error("failed to release report after email failure", "error", tErr)
		}
		return fmt.Errorf("%w: %w", ErrEmailFailed, err)
	}

	if _, err := s.jobs.Transition(id, jobs.StatusSending, jobs.StatusSent, "", ""); err != nil {
		// The email went out; only the bookkeeping failed.
		log.Error("failed to mark report as sent", "error", err)
		return err
	}
	s.metrics.EmailResult(metrics.EmailSent)
	log.Info("report emailed", "recipient", redact.Email(email))
	return nil
}

// dispatchRejection maps a failed ready→sending claim to the reason the
// client can act on.
func dispatchRejection(err error) error {
	if errors.Is(err, jobs.ErrJobNotFound) {
		return ErrReportNotFound
	}

	var te *jobs.TransitionError
	if !errors.As(err, &te) {
		return err
	}
	switch te.Current {
	case jobs.StatusSent:
		return ErrReportAlreadySent
	case jobs.StatusError:
		return ErrReportFailed
	default:
		return ErrReportNotReady
	}
}
