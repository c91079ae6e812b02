package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// mockTask is a Task with a pluggable Execute.
type mockTask struct {
	id        uuid.UUID
	executeFn func(ctx context.Context) error

	mu        sync.Mutex
	cancelled []error
}

func newMockTask(fn func(ctx context.Context) error) *mockTask {
	if fn == nil {
		fn = func(context.Context) error { return nil }
	}
	return &mockTask{id: uuid.New(), executeFn: fn}
}

func (t *mockTask) ID() uuid.UUID { return t.id }

func (t *mockTask) Type() string { return "mock" }

func (t *mockTask) Execute(ctx context.Context) error { return t.executeFn(ctx) }

func (t *mockTask) Cancel(reason error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = append(t.cancelled, reason)
}

func (t *mockTask) cancelReasons() []error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]error(nil), t.cancelled...)
}
