package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/api/shared"
	"github.com/phrazzld/roadmap-api/internal/jobs"
)

// ReportManager exposes report status and email dispatch.
type ReportManager interface {
	Status(ctx context.Context, id uuid.UUID) (jobs.Job, error)
	Dispatch(ctx context.Context, id uuid.UUID, email string) error
}

// ReportHandler handles report status and dispatch requests.
type ReportHandler struct {
	reports ReportManager
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports ReportManager) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ReportStatus handles GET /report_status?id=.
func (h *ReportHandler) ReportStatus(w http.ResponseWriter, r *http.Request) {
	// An id that does not parse cannot name a job.
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, "Report not found", err)
		return
	}

	job, err := h.reports.Status(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReportStatusResponse{Status: string(job.Status.Public())})
}

// SendReport handles POST /send_report with a JSON body {id, email}.
func (h *ReportHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	var req SendReportRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	// Validated as a uuid above.
	id := uuid.MustParse(req.ID)
	if err := h.reports.Dispatch(r.Context(), id, req.Email); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SendReportResponse{Status: string(jobs.StatusSent)})
}
