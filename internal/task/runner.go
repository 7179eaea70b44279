package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Common errors returned by the Runner.
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// RunnerConfig holds configuration for the task runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// MaxRetries bounds how many times a failing task is re-executed
	// before it is dropped
	MaxRetries int

	// RetryBaseDelay is the delay before the first retry; each further
	// retry doubles it. If zero, defaults to 100ms.
	RetryBaseDelay time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:    2,
		QueueSize:      100,
		MaxRetries:     5,
		RetryBaseDelay: 100 * time.Millisecond,
	}
}

// Runner manages background task processing with retry. Tasks live only
// in memory: the durable state is whatever the task writes, so a task
// lost to a crash is recovered by the next command on the same entity,
// not by a task store.
type Runner struct {
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)

	mu     sync.Mutex
	closed bool
}

// NewRunner creates a new Runner. If logger is nil, the default logger
// is used.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 1
	}
	if config.RetryBaseDelay == 0 {
		config.RetryBaseDelay = 100 * time.Millisecond
	}

	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With(slog.String("component", "task_runner")),
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler sets the handler called when a task exhausts its
// retries or fails permanently.
func (r *Runner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit adds a task to the queue without blocking. Returns
// ErrQueueFull when the buffer is at capacity and ErrQueueClosed after
// Stop.
func (r *Runner) Submit(task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrQueueClosed
	}

	select {
	case r.taskChan <- task:
		r.logger.Debug("task enqueued",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"queue_len", len(r.taskChan),
			"queue_cap", cap(r.taskChan))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(r.taskChan))
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Stop closes the queue, drains in-flight work, and waits for the
// workers to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.taskChan)
	r.mu.Unlock()

	r.wg.Wait()
	r.cancelFunc()
}

// worker processes tasks from the queue until it is closed.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for task := range r.taskChan {
		r.processTask(task, id)
	}

	r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

// processTask executes a task, retrying transient failures with
// exponential backoff.
func (r *Runner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	var err error
	for attempt := 0; ; attempt++ {
		err = task.Execute(r.ctx)
		if err == nil {
			logger.Debug("task completed", "attempts", attempt+1)
			return
		}

		if errors.Is(err, ErrPermanent) {
			logger.Warn("task failed permanently", "error", err, "attempts", attempt+1)
			break
		}

		if attempt+1 >= r.config.MaxRetries {
			logger.Error("task exhausted retries", "error", err, "attempts", attempt+1)
			break
		}

		delay := r.config.RetryBaseDelay << uint(attempt)
		logger.Debug("retrying task", "error", err, "attempt", attempt+1, "delay", delay)

		select {
		case <-r.ctx.Done():
			logger.Warn("runner stopped before task could be retried", "error", err)
			return
		case <-time.After(delay):
		}
	}

	if r.errHandler != nil {
		r.errHandler(task, err)
	}
}
