package service

import "errors"

// Common service errors. The API layer maps each to an HTTP status with
// errors.Is.
var (
	// ErrQuotaExceeded means the daily roadmap quota is used up. Maps to 429.
	ErrQuotaExceeded = errors.New("daily request limit reached")

	// ErrUpstream wraps failures of the language model collaborators on the
	// synchronous roadmap path. Maps to 500.
	ErrUpstream = errors.New("upstream service failure")

	// ErrReportNotFound means no job exists for the given ID. Maps to 404.
	ErrReportNotFound = errors.New("report not found")

	// ErrReportNotReady means the report is still being generated or another
	// dispatch currently holds it. Maps to 400.
	ErrReportNotReady = errors.New("report not ready")

	// ErrReportAlreadySent means the report was already emailed. Maps to 400.
	ErrReportAlreadySent = errors.New("report already sent")

	// ErrReportFailed means report generation ended in error. Maps to 400.
	ErrReportFailed = errors.New("report generation failed")

	// ErrEmailFailed means the email could not be delivered; the report is
	// ready to be dispatched again. Maps to 500.
	ErrEmailFailed = errors.New("failed to send email")
)
