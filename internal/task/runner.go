package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRunnerStopped is passed to Canceler tasks discarded by Stop.
var ErrRunnerStopped = errors.New("task runner stopped")

// TaskRunnerConfig holds configuration for the task runner.
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize determines the buffer size of the in-memory queue.
	QueueSize int

	// TaskTimeout bounds a single execution. Zero means no limit beyond
	// the runner's own lifetime.
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner manages background task processing. Stopping it cancels the
// context shared by every running task.
type TaskRunner struct {
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewTaskRunner creates a runner. Call Start to launch the workers.
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	logger = logger.With("component", "task_runner")

	ctx, cancel := context.WithCancel(context.Background())
	return &TaskRunner{
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler replaces the handler called when a task fails. It must be
// called before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit queues a task without blocking. It returns ErrQueueFull when the
// queue is at capacity and ErrQueueClosed after Stop.
func (r *TaskRunner) Submit(task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		r.logger.Warn("task submission rejected",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
		return err
	}
	return nil
}

// QueueLength returns the number of tasks waiting for a worker.
func (r *TaskRunner) QueueLength() int {
	return r.queue.Len()
}

// Start launches the worker goroutines. Subsequent calls do nothing.
func (r *TaskRunner) Start() {
	r.startOnce.Do(func() {
		r.logger.Info("starting task runner",
			"worker_count", r.config.WorkerCount,
			"queue_size", cap(r.queue.tasks))
		for i := 0; i < r.config.WorkerCount; i++ {
			r.wg.Add(1)
			go r.worker(i)
		}
	})
}

// Stop closes the queue, cancels running tasks and waits for the workers to
// exit. Tasks still queued are discarded; those implementing Canceler are
// told why.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.logger.Info("stopping task runner")
		r.queue.Close()
		r.cancelFunc()
		r.wg.Wait()

		discarded := 0
		for task := range r.queue.GetChannel() {
			discarded++
			if c, ok := task.(Canceler); ok {
				c.Cancel(ErrRunnerStopped)
			}
		}
		r.logger.Info("task runner stopped", "discarded_tasks", discarded)
	})
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)
	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.queue.GetChannel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			if r.ctx.Err() != nil {
				if c, ok := task.(Canceler); ok {
					c.Cancel(ErrRunnerStopped)
				}
				continue
			}
			r.processTask(task, id)
		}
	}
}

func (r *TaskRunner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	ctx := r.ctx
	if r.config.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.TaskTimeout)
		defer cancel()
	}

	logger.Info("processing task")
	start := time.Now()

	if err := r.execute(ctx, task); err != nil {
		r.errHandler(task, err)
		return
	}
	logger.Info("task completed successfully", "duration", time.Since(start))
}

// execute converts a panicking task into an error so one bad task cannot
// take a worker down.
func (r *TaskRunner) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task.Execute(ctx)
}
