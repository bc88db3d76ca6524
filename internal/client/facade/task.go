package facade

import (
	"context"

	"github.com/iudanet/medicnote/internal/models"
)

// Task is the best-effort direct remote write that follows a local write.
// Its outcome never changes the local result; the queue entry covers retries.
type Task struct {
	err      error
	queueErr error
	entry    *models.MutationEntry
	done     chan struct{}
}

func newTask(entry *models.MutationEntry, queueErr error) *Task {
	return &Task{
		entry:    entry,
		queueErr: queueErr,
		done:     make(chan struct{}),
	}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Done is closed once the direct write has finished
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the direct write finishes or ctx is done
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the direct write outcome, nil while it is still running
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// QueueErr reports a failed enqueue. The change is still recovered from the
// unsynced local record by the next reconcile pass.
func (t *Task) QueueErr() error {
	return t.queueErr
}

// Entry is the queued mutation, nil if the enqueue failed
func (t *Task) Entry() *models.MutationEntry {
	return t.entry
}
