package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/roadmap-api/internal/usage"
)

// consumeQuery increments the single counter row in one statement. When the
// stored day is today and the count has reached the limit, the WHERE clause
// suppresses the update and no row is returned.
const consumeQuery = `
	INSERT INTO usage_counter (id, day, count, updated_at)
	VALUES (1, $1::date, 1, NOW())
	ON CONFLICT (id) DO UPDATE
	SET day = EXCLUDED.day,
	    count = CASE WHEN usage_counter.day = EXCLUDED.day THEN usage_counter.count + 1 ELSE 1 END,
	    updated_at = NOW()
	WHERE usage_counter.day <> EXCLUDED.day OR usage_counter.count < $2
	RETURNING to_char(day, 'YYYY-MM-DD'), count
`

const peekQuery = `
	SELECT to_char(day, 'YYYY-MM-DD'), count
	FROM usage_counter
	WHERE id = 1
`

// UsageCounter is a usage.Counter stored in a single PostgreSQL row. It is
// safe across processes sharing the database.
type UsageCounter struct {
	db     DBTX
	logger *slog.Logger
}

var _ usage.Counter = (*UsageCounter)(nil)

// NewUsageCounter creates a counter using db.
func NewUsageCounter(db DBTX, logger *slog.Logger) *UsageCounter {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageCounter{
		db:     db,
		logger: logger.With(slog.String("component", "usage_counter_store")),
	}
}

// Consume implements usage.Counter.
func (c *UsageCounter) Consume(ctx context.Context, day string, limit int) (usage.Record, bool, error) {
	var rec usage.Record
	err := c.db.QueryRowContext(ctx, consumeQuery, day, limit).Scan(&rec.Date, &rec.Count)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return usage.Record{}, false, fmt.Errorf("failed to consume usage: %w", MapError(err))
	}

	current, err := c.Peek(ctx, day)
	if err != nil {
		return usage.Record{}, false, err
	}
	return current, false, nil
}

// Peek implements usage.Counter.
func (c *UsageCounter) Peek(ctx context.Context, day string) (usage.Record, error) {
	var rec usage.Record
	err := c.db.QueryRowContext(ctx, peekQuery).Scan(&rec.Date, &rec.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return usage.Record{Date: day}, nil
	}
	if err != nil {
		return usage.Record{}, fmt.Errorf("failed to read usage: %w", MapError(err))
	}
	if rec.Date != day {
		return usage.Record{Date: day}, nil
	}
	return rec, nil
}
