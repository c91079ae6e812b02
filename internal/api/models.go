package api

// GenerateRoadmapResponse is returned by POST /generate_prompt. Roadmap is
// the roadmap as an indented JSON string.
type GenerateRoadmapResponse struct {
	Roadmap string `json:"roadmap"`
	JobID   string `json:"job_id"`
}

// ReportStatusResponse is returned by GET /report_status.
type ReportStatusResponse struct {
	Status string `json:"status"`
}

// SendReportRequest is the body of POST /send_report.
type SendReportRequest struct {
	ID    string `json:"id" validate:"required,uuid"`
	Email string `json:"email" validate:"required,email"`
}

// SendReportResponse is returned by POST /send_report on success.
type SendReportResponse struct {
	Status string `json:"status"`
}
