package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/roadmap-api/internal/domain"
	"github.com/phrazzld/roadmap-api/internal/task"
	"github.com/stretchr/testify/mock"
)

// MockLimiter mocks the UsageLimiter interface
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) TryConsume(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockExtractor mocks the TextExtractor interface
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(filename string, data []byte) string {
	args := m.Called(filename, data)
	return args.String(0)
}

// MockCompleter mocks generation.RoadmapCompleter
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) CompleteRoadmap(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockTaskFactory mocks the ReportTaskFactory interface
type MockTaskFactory struct {
	mock.Mock
}

func (m *MockTaskFactory) CreateTask(
	jobID uuid.UUID,
	roadmap *domain.Roadmap,
	resumeSnippet, location string,
) (task.Task, error) {
	args := m.Called(jobID, roadmap, resumeSnippet, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(task.Task), args.Error(1)
}

// MockTaskRunner mocks the TaskRunner interface
type MockTaskRunner struct {
	mock.Mock
}

func (m *MockTaskRunner) Submit(t task.Task) error {
	args := m.Called(t)
	return args.Error(0)
}

// MockMailer mocks the Mailer interface
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}

// stubTask is a task.Task that does nothing.
type stubTask struct {
	id uuid.UUID
}

func (t stubTask) ID() uuid.UUID                  { return t.id }
func (t stubTask) Type() string                   { return "stub" }
func (t stubTask) Execute(context.Context) error { return nil }
