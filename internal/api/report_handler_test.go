package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/jobs"
	"github.com/phrazzld/roadmap-api/internal/service"
	"github.com/phrazzld/roadmap-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReports struct {
	statusFn   func(ctx context.Context, id uuid.UUID) (jobs.Job, error)
	dispatchFn func(ctx context.Context, id uuid.UUID, email string) error
}

func (f *fakeReports) Status(ctx context.Context, id uuid.UUID) (jobs.Job, error) {
	return f.statusFn(ctx, id)
}

func (f *fakeReports) Dispatch(ctx context.Context, id uuid.UUID, email string) error {
	return f.dispatchFn(ctx, id, email)
}

func TestReportStatus(t *testing.T) {
	t.Parallel()

	known := uuid.New()
	dispatching := uuid.New()
	h := NewReportHandler(&fakeReports{statusFn: func(_ context.Context, id uuid.UUID) (jobs.Job, error) {
		switch id {
		case known:
			return jobs.Job{ID: id, Status: jobs.StatusReady, Report: "<p>secret</p>"}, nil
		case dispatching:
			return jobs.Job{ID: id, Status: jobs.StatusSending, Report: "<p>secret</p>"}, nil
		}
		return jobs.Job{}, service.ErrReportNotFound
	}})

	t.Run("known job", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ReportStatus(rec, httptest.NewRequest(http.MethodGet, "/report_status?id="+known.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("dispatch in flight reads as ready", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ReportStatus(rec, httptest.NewRequest(http.MethodGet, "/report_status?id="+dispatching.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
	})

	t.Run("unknown job", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ReportStatus(rec, httptest.NewRequest(http.MethodGet, "/report_status?id="+uuid.NewString(), nil))
		testutils.AssertErrorResponse(t, rec, http.StatusNotFound, "Report not found")
	})

	t.Run("malformed id is unknown", func(t *testing.T) {
		for _, target := range []string{"/report_status", "/report_status?id=abc"} {
			rec := httptest.NewRecorder()
			h.ReportStatus(rec, httptest.NewRequest(http.MethodGet, target, nil))
			testutils.AssertErrorResponse(t, rec, http.StatusNotFound, "Report not found")
		}
	})
}

func TestSendReport(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		name        string
		body        any
		dispatchErr error
		wantStatus  int
		wantMsg     string
	}{
		{name: "sent", body: SendReportRequest{ID: id.String(), Email: "jane@example.com"}, wantStatus: http.StatusOK},
		{name: "bad email", body: SendReportRequest{ID: id.String(), Email: "jane"}, wantStatus: http.StatusBadRequest, wantMsg: "Invalid email"},
		{name: "bad id", body: SendReportRequest{ID: "123", Email: "jane@example.com"}, wantStatus: http.StatusBadRequest, wantMsg: "Invalid id"},
		{name: "unknown field", body: map[string]string{"id": id.String(), "email": "jane@example.com", "cc": "x"}, wantStatus: http.StatusBadRequest, wantMsg: "Invalid request format"},
		{name: "not found", body: SendReportRequest{ID: id.String(), Email: "jane@example.com"}, dispatchErr: service.ErrReportNotFound, wantStatus: http.StatusNotFound, wantMsg: "Report not found"},
		{name: "not ready", body: SendReportRequest{ID: id.String(), Email: "jane@example.com"}, dispatchErr: service.ErrReportNotReady, wantStatus: http.StatusBadRequest, wantMsg: "not ready"},
		{name: "already sent", body: SendReportRequest{ID: id.String(), Email: "jane@example.com"}, dispatchErr: service.ErrReportAlreadySent, wantStatus: http.StatusBadRequest, wantMsg: "already been sent"},
		{name: "email failure", body: SendReportRequest{ID: id.String(), Email: "jane@example.com"}, dispatchErr: service.ErrEmailFailed, wantStatus: http.StatusInternalServerError, wantMsg: "Failed to send email"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var dispatched []string
			h := NewReportHandler(&fakeReports{dispatchFn: func(_ context.Context, got uuid.UUID, email string) error {
				dispatched = append(dispatched, got.String()+" "+email)
				return tc.dispatchErr
			}})

			rec := httptest.NewRecorder()
			h.SendReport(rec, testutils.NewJSONRequest(t, http.MethodPost, "/send_report", tc.body))

			if tc.wantStatus == http.StatusOK {
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
				assert.JSONEq(t, `{"status":"sent"}`, rec.Body.String())
				assert.Equal(t, []string{id.String() + " jane@example.com"}, dispatched)
				return
			}
			testutils.AssertErrorResponse(t, rec, tc.wantStatus, tc.wantMsg)
		})
	}
}

func TestSendReport_MalformedJSON(t *testing.T) {
	t.Parallel()

	h := NewReportHandler(&fakeReports{})
	req := httptest.NewRequest(http.MethodPost, "/send_report", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	h.SendReport(rec, req)
	testutils.AssertErrorResponse(t, rec, http.StatusBadRequest, "Invalid request format")
}
