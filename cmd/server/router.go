package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/roadmap-api/internal/api"
	apiMiddleware "github.com/phrazzld/roadmap-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	roadmapHandler := api.NewRoadmapHandler(app.roadmapService, app.config.Roadmap.MaxResumeBytes)
	reportHandler := api.NewReportHandler(app.reportService)
	throttle := apiMiddleware.NewClientRateLimiter(
		app.config.RateLimit.RequestsPerMinute,
		app.config.RateLimit.Burst,
	)

	r.Group(func(r chi.Router) {
		r.Use(throttle.Handler)
		r.Post("/generate_prompt", roadmapHandler.GenerateRoadmap)
		r.Post("/send_report", reportHandler.SendReport)
	})
	r.Get("/report_status", reportHandler.ReportStatus)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}
