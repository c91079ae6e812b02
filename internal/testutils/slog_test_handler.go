package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is a captured log record flattened to a map.
type LogEntry map[string]any

// TestSlogHandler records every log record in memory.
type TestSlogHandler struct {
	mu      sync.Mutex
	entries []LogEntry
	attrs   []slog.Attr
	parent  *TestSlogHandler
}

// NewTestSlogHandler creates an empty handler.
func NewTestSlogHandler() *TestSlogHandler {
	return &TestSlogHandler{}
}

// NewTestLogger returns a logger writing to a new TestSlogHandler.
func NewTestLogger() (*slog.Logger, *TestSlogHandler) {
	h := NewTestSlogHandler()
	return slog.New(h), h
}

func (h *TestSlogHandler) root() *TestSlogHandler {
	if h.parent != nil {
		return h.parent
	}
	return h
}

// Enabled implements slog.Handler.
func (h *TestSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *TestSlogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		"level":   r.Level.String(),
		"message": r.Message,
	}
	for _, a := range h.attrs {
		entry[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	root := h.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.entries = append(root.entries, entry)
	return nil
}

// WithAttrs implements slog.Handler. Attributes are kept; entries are
// recorded on the original handler.
func (h *TestSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &TestSlogHandler{attrs: merged, parent: h.root()}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *TestSlogHandler) WithGroup(string) slog.Handler {
	return h
}

// Entries returns a copy of the captured records.
func (h *TestSlogHandler) Entries() []LogEntry {
	root := h.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	out := make([]LogEntry, len(root.entries))
	copy(out, root.entries)
	return out
}

// Find returns the first entry with the given message.
func (h *TestSlogHandler) Find(message string) (LogEntry, bool) {
	for _, e := range h.Entries() {
		if e["message"] == message {
			return e, true
		}
	}
	return nil, false
}
