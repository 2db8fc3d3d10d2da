package conversation

import (
	"context"

	"github.com/diogo/dstchat/internal/models"
)

// Task is the handle for one submission. It resolves exactly once, when the
// reply (or the error message standing in for it) has been appended, or
// with ErrSuperseded when the history was reset before the reply landed.
type Task struct {
	submitted models.Message
	done      chan struct{}

	// written once before done is closed
	reply models.Message
	cause error
}

func newTask(submitted models.Message) *Task {
	return &Task{submitted: submitted, done: make(chan struct{})}
}

func resolvedTask(msg models.Message) *Task {
	t := newTask(msg)
	t.resolve(msg, nil)
	return t
}

func (t *Task) resolve(reply models.Message, cause error) {
	t.reply = reply
	t.cause = cause
	close(t.done)
}

// Submitted returns the message that was appended by AddMessage
func (t *Task) Submitted() models.Message {
	return t.submitted.Clone()
}

// Done is closed once the task has resolved
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task resolves or ctx ends. The only errors it returns
// come from ctx; a failed synthesis still resolves with the error message
// that was appended to the history.
func (t *Task) Wait(ctx context.Context) (models.Message, error) {
	select {
	case <-t.done:
		return t.reply.Clone(), nil
	case <-ctx.Done():
		return models.Message{}, ctx.Err()
	}
}

// Result returns the reply without blocking; ok is false while pending
func (t *Task) Result() (msg models.Message, ok bool) {
	select {
	case <-t.done:
		return t.reply.Clone(), true
	default:
		return models.Message{}, false
	}
}

// Failed reports whether the task resolved through the error path
func (t *Task) Failed() bool {
	select {
	case <-t.done:
		return t.cause != nil
	default:
		return false
	}
}

// Cause returns the synthesis failure or ErrSuperseded, or nil
func (t *Task) Cause() error {
	select {
	case <-t.done:
		return t.cause
	default:
		return nil
	}
}
