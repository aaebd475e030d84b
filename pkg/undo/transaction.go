package undo

import (
	"context"

	"github.com/aretw0/pathflow/pkg/domain"
)

// Transaction is an open group of edits and deferred change events.
type Transaction struct {
	recorder    *Recorder
	description string
	edits       []Edit
	events      []domain.ChangeEvent
	finished    bool
}

// Description returns the label the transaction was opened with.
func (t *Transaction) Description() string {
	return t.description
}

// AddEdit appends a reversible edit.
func (t *Transaction) AddEdit(e Edit) error {
	if t.finished {
		return domain.Violation("", "", domain.ErrTransactionFinished)
	}
	t.edits = append(t.edits, e)
	return nil
}

// AddEvent queues an event until Finish.
func (t *Transaction) AddEvent(ev domain.ChangeEvent) error {
	if t.finished {
		return domain.Violation("", "", domain.ErrTransactionFinished)
	}
	t.events = append(t.events, ev)
	return nil
}

// Len returns the number of edits and queued events.
func (t *Transaction) Len() (edits, events int) {
	return len(t.edits), len(t.events)
}

// Finished reports whether Finish or Abort was called.
func (t *Transaction) Finished() bool {
	return t.finished
}

// Finish commits the edits as one history entry and dispatches the queued events.
// A transaction without edits leaves the history untouched.
func (t *Transaction) Finish(ctx context.Context) error {
	if t.finished {
		return domain.Violation("", "", domain.ErrTransactionFinished)
	}
	t.finished = true
	t.recorder.commit(ctx, t)
	return nil
}

// Abort reverts the edits added so far, last first, and drops the queued events.
// The history is left untouched and nothing is announced.
func (t *Transaction) Abort(ctx context.Context) error {
	if t.finished {
		return domain.Violation("", "", domain.ErrTransactionFinished)
	}
	t.finished = true
	return t.recorder.rollback(ctx, t)
}
