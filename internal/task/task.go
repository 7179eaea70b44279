package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrPermanent marks a task failure that retrying cannot fix. Tasks
// wrap it (or return it via fmt.Errorf with %w) to stop the runner from
// requeueing them.
var ErrPermanent = errors.New("permanent task failure")

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// FuncTask adapts a closure into a Task. The practice service uses it
// to enqueue session persistence work without a dedicated task type per
// command.
type FuncTask struct {
	id       uuid.UUID
	taskType string
	fn       func(ctx context.Context) error
}

// NewFuncTask creates a Task that executes fn.
func NewFuncTask(taskType string, fn func(ctx context.Context) error) *FuncTask {
	return &FuncTask{
		id:       uuid.New(),
		taskType: taskType,
		fn:       fn,
	}
}

// ID implements Task.ID.
func (t *FuncTask) ID() uuid.UUID { return t.id }

// Type implements Task.Type.
func (t *FuncTask) Type() string { return t.taskType }

// Execute implements Task.Execute.
func (t *FuncTask) Execute(ctx context.Context) error { return t.fn(ctx) }
