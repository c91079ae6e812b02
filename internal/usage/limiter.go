package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrStorage wraps persistence failures surfaced by TryConsume.
var ErrStorage = errors.New("usage counter storage failure")

// Limiter gates roadmap generations against a daily limit. Days roll over
// at midnight in the configured location.
type Limiter struct {
	mu       sync.Mutex
	counter  Counter
	limit    int
	location *time.Location
	now      func() time.Time
	onReject func()
	logger   *slog.Logger
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithRejectHook registers a callback invoked each time a request is denied.
func WithRejectHook(fn func()) Option {
	return func(l *Limiter) { l.onReject = fn }
}

// NewLimiter creates a limiter allowing limit consumptions per day in loc.
func NewLimiter(counter Counter, limit int, loc *time.Location, logger *slog.Logger, opts ...Option) (*Limiter, error) {
	if counter == nil {
		return nil, errors.New("usage counter cannot be nil")
	}
	if limit < 1 {
		return nil, fmt.Errorf("daily limit must be positive, got %d", limit)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &Limiter{
		counter:  counter,
		limit:    limit,
		location: loc,
		now:      time.Now,
		logger:   logger.With("component", "usage_limiter"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Limit returns the configured daily limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Today returns the current day key in the limiter's location.
func (l *Limiter) Today() string {
	return l.now().In(l.location).Format(DateLayout)
}

// TryConsume reports whether another generation is allowed today and, if
// so, records it. A denial never mutates the stored counter.
func (l *Limiter) TryConsume(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := l.Today()
	rec, ok, err := l.counter.Consume(ctx, day, l.limit)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to persist usage counter",
			slog.String("date", day),
			slog.String("error", err.Error()))
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if !ok {
		l.logger.InfoContext(ctx, "daily usage limit reached",
			slog.String("date", day),
			slog.Int("count", rec.Count),
			slog.Int("limit", l.limit))
		if l.onReject != nil {
			l.onReject()
		}
		return false, nil
	}

	l.logger.DebugContext(ctx, "usage consumed",
		slog.String("date", rec.Date),
		slog.Int("count", rec.Count),
		slog.Int("limit", l.limit))
	return true, nil
}

// Snapshot returns today's counter without consuming.
func (l *Limiter) Snapshot(ctx context.Context) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.counter.Peek(ctx, l.Today())
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return rec, nil
}
