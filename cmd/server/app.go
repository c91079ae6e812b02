package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/generation"
	"github.com/phrazzld/roadmap-api/internal/jobs"
	"github.com/phrazzld/roadmap-api/internal/mail"
	"github.com/phrazzld/roadmap-api/internal/metrics"
	"github.com/phrazzld/roadmap-api/internal/platform/gemini"
	"github.com/phrazzld/roadmap-api/internal/platform/perplexity"
	"github.com/phrazzld/roadmap-api/internal/platform/postgres"
	"github.com/phrazzld/roadmap-api/internal/render"
	"github.com/phrazzld/roadmap-api/internal/resume"
	"github.com/phrazzld/roadmap-api/internal/service"
	"github.com/phrazzld/roadmap-api/internal/task"
	"github.com/phrazzld/roadmap-api/internal/usage"
)

// collaborators are the external systems the application talks to. Tests
// replace them with fakes.
type collaborators struct {
	completer  generation.RoadmapCompleter
	researcher generation.MarketResearcher
	mailer     service.Mailer
	limiter    *usage.Limiter
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	metrics  *metrics.Collector
	registry *jobs.Registry
	limiter  *usage.Limiter

	roadmapService *service.RoadmapService
	reportService  *service.ReportService

	taskRunner *task.TaskRunner

	stopJanitor context.CancelFunc
	closers     []func()
}

// newApplication creates the production collaborators and wires the
// application around them.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*application, error) {
	collector := metrics.NewCollector()

	var closers []func()
	fail := func(err error) (*application, error) {
		for _, c := range closers {
			c()
		}
		return nil, err
	}

	if migrate && cfg.Usage.Backend == "postgres" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return fail(err)
		}
	}

	limiter, closeLimiter, err := newUsageLimiter(ctx, cfg, logger, collector.QuotaRejected)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeLimiter)

	completer, err := gemini.NewCompleter(ctx, cfg.LLM, logger.With("component", "gemini"))
	if err != nil {
		return fail(fmt.Errorf("failed to initialize roadmap completer: %w", err))
	}
	logger.Info("roadmap completer initialized", "model", cfg.LLM.ModelName)

	researcher, err := perplexity.NewClient(cfg.Research, logger.With("component", "perplexity"))
	if err != nil {
		return fail(fmt.Errorf("failed to initialize market researcher: %w", err))
	}
	logger.Info("market researcher initialized", "model", cfg.Research.Model)

	mailer, err := mail.NewSender(cfg.Mail, logger)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize mail sender: %w", err))
	}

	app, err := buildApplication(cfg, logger, collector, collaborators{
		completer:  completer,
		researcher: researcher,
		mailer:     mailer,
		limiter:    limiter,
	})
	if err != nil {
		return fail(err)
	}
	app.closers = append(app.closers, closers...)
	return app, nil
}

// buildApplication wires services, the job registry and the task runner
// around the given collaborators and starts the background workers.
func buildApplication(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector, c collaborators) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: collector,
		limiter: c.limiter,
	}

	app.registry = jobs.NewRegistry(
		time.Duration(cfg.Jobs.RetentionMinutes)*time.Minute,
		logger,
		jobs.WithObserver(func(job jobs.Job) { collector.JobStatus(string(job.Status)) }),
	)
	collector.TrackJobs(app.registry.Len)

	app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)

	factory := task.NewReportTaskFactory(app.registry, c.researcher, render.New(), collector, logger)

	rules := domain.InputRules{
		MinGoalLength:     cfg.Roadmap.MinGoalLength,
		MaxResumeBytes:    cfg.Roadmap.MaxResumeBytes,
		MaxResumeChars:    cfg.Roadmap.MaxResumeChars,
		SnippetChars:      cfg.Roadmap.SnippetChars,
		AllowedExtensions: cfg.Roadmap.AllowedExtensions,
	}

	var err error
	app.roadmapService, err = service.NewRoadmapService(
		rules,
		c.limiter,
		resume.NewExtractor(logger),
		c.completer,
		app.registry,
		factory,
		app.taskRunner,
		collector,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create roadmap service: %w", err)
	}

	app.reportService, err = service.NewReportService(app.registry, c.mailer, collector, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create report service: %w", err)
	}

	app.taskRunner.Start()

	janitorCtx, cancel := context.WithCancel(context.Background())
	app.stopJanitor = cancel
	go app.registry.RunJanitor(janitorCtx, time.Duration(cfg.Jobs.SweepIntervalMinutes)*time.Minute)

	return app, nil
}

// newUsageLimiter builds the limiter over the configured backend. The
// returned func releases the backend's resources.
func newUsageLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger, onReject func()) (*usage.Limiter, func(), error) {
	loc, err := time.LoadLocation(cfg.Usage.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid usage timezone %q: %w", cfg.Usage.Timezone, err)
	}

	var (
		counter usage.Counter
		closeFn = func() {}
	)
	switch cfg.Usage.Backend {
	case "postgres":
		var db *sql.DB
		db, err = postgres.Open(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, nil, err
		}
		counter = postgres.NewUsageCounter(db, logger)
		closeFn = func() { _ = db.Close() }
	default:
		counter = usage.NewFileCounter(cfg.Usage.FilePath, logger)
	}

	opts := []usage.Option{}
	if onReject != nil {
		opts = append(opts, usage.WithRejectHook(onReject))
	}
	limiter, err := usage.NewLimiter(counter, cfg.Usage.DailyLimit, loc, logger, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.Info("usage limiter initialized",
		"backend", cfg.Usage.Backend,
		"daily_limit", cfg.Usage.DailyLimit,
		"timezone", cfg.Usage.Timezone)
	return limiter, closeFn, nil
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return postgres.Migrate(ctx, db, "up", logger)
}

// cleanup stops background work and releases resources. Queued report jobs
// end in error.
func (app *application) cleanup() {
	if app.stopJanitor != nil {
		app.stopJanitor()
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	for _, c := range app.closers {
		c()
	}
	app.logger.Info("application resources released")
}
