package convert

import "context"

// ProgressFunc receives streamed progress for one task.
type ProgressFunc func(progress float64, phase string)

// Task is the caller's awaitable handle for one submitted conversion.
// It resolves exactly once: with the worker's result, the worker's error,
// a timeout, or a destroy/crash rejection.
type Task struct {
	ID string

	done   chan struct{}
	result *Result
	err    error
}

func newTask(id string) *Task {
	return &Task{ID: id, done: make(chan struct{})}
}

// resolve is called exactly once, by whichever owner removed the task from
// the pending set (or by Submit itself for tasks rejected up front).
func (t *Task) resolve(result *Result, err error) {
	t.result = result
	t.err = err
	close(t.done)
}

// Done is closed once the task has resolved.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task resolves or ctx is cancelled.
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
