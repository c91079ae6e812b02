package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/phrazzld/roadmap-api/internal/generation"
	"github.com/phrazzld/roadmap-api/internal/metrics"
	"github.com/phrazzld/roadmap-api/internal/testutils"
	"github.com/phrazzld/roadmap-api/internal/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	err  error

	// When set, Send signals started and then waits for release.
	started chan struct{}
	release chan struct{}
}

func (m *recordingMailer) Send(_ context.Context, to, subject, html string) error {
	if m.release != nil {
		m.started <- struct{}{}
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject+"|"+html)
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", ShutdownTimeoutSeconds: 1},
		Usage: config.UsageConfig{
			DailyLimit: 2,
			Timezone:   "America/Phoenix",
			Backend:    "file",
			FilePath:   filepath.Join(t.TempDir(), "usage.json"),
		},
		Roadmap: config.RoadmapConfig{
			MinGoalLength:     10,
			MaxResumeBytes:    500 * 1024,
			MaxResumeChars:    10000,
			SnippetChars:      3000,
			AllowedExtensions: []string{"pdf", "docx", "txt"},
		},
		Task:      config.TaskConfig{WorkerCount: 2, QueueSize: 10},
		Jobs:      config.JobsConfig{RetentionMinutes: 60, SweepIntervalMinutes: 1},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 600, Burst: 100},
	}
}

func newTestApp(t *testing.T, researcher generation.MarketResearcher, mailer *recordingMailer) (*application, http.Handler) {
	t.Helper()

	cfg := testConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collector := metrics.NewCollector()

	limiter, closeLimiter, err := newUsageLimiter(context.Background(), cfg, logger, collector.QuotaRejected)
	require.NoError(t, err)

	completer := generation.CompleterFunc(func(context.Context, string) (string, error) {
		return testutils.FencedJSON(testutils.SampleRoadmapJSON(t)), nil
	})

	app, err := buildApplication(cfg, logger, collector, collaborators{
		completer:  completer,
		researcher: researcher,
		mailer:     mailer,
		limiter:    limiter,
	})
	require.NoError(t, err)
	app.closers = append(app.closers, closeLimiter)
	t.Cleanup(app.cleanup)

	return app, app.setupRouter()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func generate(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	return serve(h, testutils.NewMultipartRequest(t, http.MethodPost, "/generate_prompt",
		map[string]string{"goal": "Lead a cloud security team", "location": "Tucson, AZ"}))
}

func waitForStatus(t *testing.T, h http.Handler, jobID, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/report_status?id="+jobID, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		var body map[string]string
		return json.Unmarshal(rec.Body.Bytes(), &body) == nil && body["status"] == want
	}, 3*time.Second, 10*time.Millisecond, "job %s never reached %s", jobID, want)
}

func TestRoadmapToEmailFlow(t *testing.T) {
	t.Parallel()

	researcher := generation.ResearcherFunc(func(_ context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, "Tucson, AZ") {
			return "", errors.New("location missing from prompt")
		}
		return "# Market Report\n\n- [ ] Network with local CISOs", nil
	})
	mailer := &recordingMailer{}
	_, h := newTestApp(t, researcher, mailer)

	rec := generate(t, h)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := testutils.DecodeJSON(t, rec)
	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Contains(t, body["roadmap"], "Lead a cloud security team")
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	waitForStatus(t, h, jobID, "ready")

	send := func() *httptest.ResponseRecorder {
		return serve(h, testutils.NewJSONRequest(t, http.MethodPost, "/send_report",
			map[string]string{"id": jobID, "email": "jane@example.com"}))
	}

	rec = send()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"sent"}`, rec.Body.String())
	waitForStatus(t, h, jobID, "sent")

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0], "jane@example.com|Your Custom Career Intelligence Report is Ready!|")
	assert.Contains(t, mailer.sent[0], "<h1>Market Report</h1>")

	rec = send()
	testutils.AssertErrorResponse(t, rec, http.StatusBadRequest, "already been sent")
	assert.Len(t, mailer.sent, 1)
}

func TestReportFailureIsVisibleToPollers(t *testing.T) {
	t.Parallel()

	researcher := generation.ResearcherFunc(func(context.Context, string) (string, error) {
		return "", &generation.APIError{Provider: "perplexity", StatusCode: 429, Message: "rate limited", Err: generation.ErrResearchFailed}
	})
	_, h := newTestApp(t, researcher, &recordingMailer{})

	rec := generate(t, h)
	require.Equal(t, http.StatusOK, rec.Code)
	jobID := testutils.DecodeJSON(t, rec)["job_id"].(string)

	waitForStatus(t, h, jobID, "error")

	rec = serve(h, testutils.NewJSONRequest(t, http.MethodPost, "/send_report",
		map[string]string{"id": jobID, "email": "jane@example.com"}))
	testutils.AssertErrorResponse(t, rec, http.StatusBadRequest, "Report generation failed")
}

func TestStatusDuringDispatchReadsReady(t *testing.T) {
	t.Parallel()

	mailer := &recordingMailer{started: make(chan struct{}, 1), release: make(chan struct{})}
	_, h := newTestApp(t, generation.ResearcherFunc(func(context.Context, string) (string, error) {
		return "# Market Report", nil
	}), mailer)

	rec := generate(t, h)
	require.Equal(t, http.StatusOK, rec.Code)
	jobID := testutils.DecodeJSON(t, rec)["job_id"].(string)
	waitForStatus(t, h, jobID, "ready")

	first := testutils.NewJSONRequest(t, http.MethodPost, "/send_report",
		map[string]string{"id": jobID, "email": "jane@example.com"})
	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- serve(h, first) }()
	<-mailer.started

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/report_status?id="+jobID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

	rec = serve(h, testutils.NewJSONRequest(t, http.MethodPost, "/send_report",
		map[string]string{"id": jobID, "email": "jane@example.com"}))
	testutils.AssertErrorResponse(t, rec, http.StatusBadRequest, "not ready")

	close(mailer.release)
	rec = <-done
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	waitForStatus(t, h, jobID, "sent")
}

func TestPanickingReportTaskEndsInError(t *testing.T) {
	t.Parallel()

	researcher := generation.ResearcherFunc(func(context.Context, string) (string, error) {
		panic("research client exploded")
	})
	_, h := newTestApp(t, researcher, &recordingMailer{})

	rec := generate(t, h)
	require.Equal(t, http.StatusOK, rec.Code)
	jobID := testutils.DecodeJSON(t, rec)["job_id"].(string)

	waitForStatus(t, h, jobID, "error")
}

func TestDailyQuota(t *testing.T) {
	t.Parallel()

	researcher := generation.ResearcherFunc(func(context.Context, string) (string, error) { return "# ok", nil })
	app, h := newTestApp(t, researcher, &recordingMailer{})

	for i := 0; i < 2; i++ {
		rec := generate(t, h)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := generate(t, h)
	testutils.AssertErrorResponse(t, rec, http.StatusTooManyRequests, "Daily request limit reached")

	snap, err := app.limiter.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Count, "a rejected request does not change the counter")
	assert.Equal(t, 2, app.registry.Len(), "no job is created for a rejected request")

	metricsRec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "usage_quota_rejections_total 1")
	assert.Contains(t, metricsRec.Body.String(), `roadmap_requests_total{outcome="quota_exceeded"} 1`)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	_, h := newTestApp(t, generation.ResearcherFunc(func(context.Context, string) (string, error) { return "# ok", nil }), &recordingMailer{})
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCleanupFailsQueuedJobs(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	researcher := generation.ResearcherFunc(func(ctx context.Context, _ string) (string, error) {
		select {
		case <-release:
			return "# late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
	app, h := newTestApp(t, researcher, &recordingMailer{})

	rec := generate(t, h)
	require.Equal(t, http.StatusOK, rec.Code)
	jobID := testutils.DecodeJSON(t, rec)["job_id"].(string)

	app.cleanup()
	close(release)

	waitForStatus(t, h, jobID, "error")
}

func TestNewUsageLimiter_FileBackend(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	limiter, closeFn, err := newUsageLimiter(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	defer closeFn()

	ok, err := limiter.TryConsume(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := limiter.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
	assert.Equal(t, time.Now().In(mustLoad(t, "America/Phoenix")).Format(usage.DateLayout), rec.Date)

	cfg.Usage.Timezone = "Nowhere/Special"
	_, _, err = newUsageLimiter(context.Background(), cfg, slog.Default(), nil)
	assert.Error(t, err)
}

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}
