package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRunnerStarted is returned when Start is called twice.
var ErrRunnerStarted = errors.New("task runner already started")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// TaskTimeout bounds a single task execution. Zero means no limit.
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		TaskTimeout: 2 * time.Minute,
	}
}

// RecoveryFunc rebuilds the tasks left unfinished by a previous run.
type RecoveryFunc func(ctx context.Context) ([]Task, error)

// TaskRunner manages background task processing
type TaskRunner struct {
	queue    *TaskQueue
	pool     *WorkerPool
	recovery RecoveryFunc
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{
		WorkerCount: config.WorkerCount,
		TaskTimeout: config.TaskTimeout,
	}, logger)

	return &TaskRunner{
		queue:  queue,
		pool:   pool,
		logger: logger,
	}
}

// SetErrorHandler allows setting a custom error handler function.
// It must be called before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// SetRecovery installs the hook Start uses to re-enqueue unfinished work.
func (r *TaskRunner) SetRecovery(fn RecoveryFunc) {
	r.recovery = fn
}

// Submit adds a new task to the queue without blocking.
func (r *TaskRunner) Submit(_ context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}
	return nil
}

// Start recovers unfinished tasks and launches the workers. The workers run
// until ctx is cancelled or Stop is called.
func (r *TaskRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrRunnerStarted
	}

	if err := r.recover(ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.started = true
	r.pool.Start(workerCtx)

	return nil
}

// Stop closes the queue, cancels in-flight tasks and waits for the workers
// to return. Tasks still queued are dropped; recovery picks them up at the
// next start.
func (r *TaskRunner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	r.queue.Close()
	if cancel != nil {
		cancel()
	}
	r.pool.Wait()
	r.logger.Info("task runner stopped", "dropped", r.queue.Len())
}

// Run starts the runner and blocks until ctx is cancelled, then stops it.
func (r *TaskRunner) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	r.Stop()
	return nil
}

func (r *TaskRunner) recover(ctx context.Context) error {
	if r.recovery == nil {
		return nil
	}

	tasks, err := r.recovery(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("recovering unfinished tasks", "count", len(tasks))

	for _, task := range tasks {
		if err := r.queue.Enqueue(task); err != nil {
			r.logger.Error("failed to requeue task",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		}
	}
	return nil
}
