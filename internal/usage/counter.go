package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DateLayout is the day key stored alongside the count.
const DateLayout = "2006-01-02"

// Record is the persisted counter state.
type Record struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Counter persists the daily counter.
//
// Consume increments the counter for day if it is below limit, resetting it
// to 1 when the stored day differs. It returns the resulting record and
// whether the increment happened. Peek returns the stored record for day,
// with a zero count when nothing is stored for that day.
type Counter interface {
	Consume(ctx context.Context, day string, limit int) (Record, bool, error)
	Peek(ctx context.Context, day string) (Record, error)
}

// FileCounter stores the counter as a JSON document at Path. It is not safe
// for concurrent use by itself; the Limiter serializes access.
type FileCounter struct {
	Path   string
	logger *slog.Logger
}

// NewFileCounter returns a counter persisted at path.
func NewFileCounter(path string, logger *slog.Logger) *FileCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileCounter{Path: path, logger: logger.With("component", "usage_file_counter")}
}

// Consume implements Counter.
func (f *FileCounter) Consume(ctx context.Context, day string, limit int) (Record, bool, error) {
	current := f.read(ctx, day)

	switch {
	case current.Date != day:
		current = Record{Date: day, Count: 1}
	case current.Count < limit:
		current.Count++
	default:
		return current, false, nil
	}

	if err := f.write(current); err != nil {
		return current, false, err
	}
	return current, true, nil
}

// Peek implements Counter.
func (f *FileCounter) Peek(ctx context.Context, day string) (Record, error) {
	current := f.read(ctx, day)
	if current.Date != day {
		return Record{Date: day}, nil
	}
	return current, nil
}

// read never fails: a missing or corrupt file counts as zero for today.
func (f *FileCounter) read(ctx context.Context, day string) Record {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.WarnContext(ctx, "usage file unreadable, starting from zero",
				slog.String("path", f.Path),
				slog.String("error", err.Error()))
		}
		return Record{Date: day}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil || rec.Count < 0 {
		f.logger.WarnContext(ctx, "usage file corrupt, starting from zero",
			slog.String("path", f.Path))
		return Record{Date: day}
	}
	return rec
}

func (f *FileCounter) write(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode usage record: %w", err)
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".usage-*.json")
	if err != nil {
		return fmt.Errorf("failed to create usage temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write usage temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close usage temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace usage file: %w", err)
	}
	return nil
}
