package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/phrazzld/roadmap-api/internal/api/shared"
	"github.com/phrazzld/roadmap-api/internal/service"
)

// multipartOverhead is allowed on top of the résumé size for the form
// fields and part headers.
const multipartOverhead = 64 << 10

// RoadmapGenerator produces a roadmap and queues its report.
type RoadmapGenerator interface {
	Generate(ctx context.Context, in service.GenerateInput) (*service.GenerateResult, error)
}

// RoadmapHandler handles roadmap generation requests.
type RoadmapHandler struct {
	generator      RoadmapGenerator
	maxResumeBytes int64
}

// NewRoadmapHandler creates a RoadmapHandler. maxResumeBytes bounds the
// uploaded résumé.
func NewRoadmapHandler(generator RoadmapGenerator, maxResumeBytes int64) *RoadmapHandler {
	return &RoadmapHandler{generator: generator, maxResumeBytes: maxResumeBytes}
}

// GenerateRoadmap handles POST /generate_prompt: a multipart form with goal,
// location and an optional resume file.
func (h *RoadmapHandler) GenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxResumeBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxResumeBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Resume too large", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid form submission", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	in := service.GenerateInput{
		Goal:     r.FormValue("goal"),
		Location: r.FormValue("location"),
	}
	if strings.TrimSpace(in.Goal) == "" || strings.TrimSpace(in.Location) == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Goal and location are required")
		return
	}

	resume, err := h.readResume(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read resume", err)
		return
	}
	in.Resume = resume

	result, err := h.generator.Generate(r.Context(), in)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerateRoadmapResponse{
		Roadmap: result.Roadmap,
		JobID:   result.JobID.String(),
	})
}

// readResume returns nil when no file was uploaded. Oversized files are read
// only up to one byte past the limit; the service rejects them by Size.
func (h *RoadmapHandler) readResume(r *http.Request) (*service.ResumeUpload, error) {
	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(io.LimitReader(file, h.maxResumeBytes+1))
	if err != nil {
		return nil, err
	}
	size := header.Size
	if int64(len(data)) > size {
		size = int64(len(data))
	}
	return &service.ResumeUpload{
		Filename: header.Filename,
		Size:     size,
		Data:     data,
	}, nil
}
