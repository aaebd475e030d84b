package undo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/pathflow/internal/logging"
	"github.com/aretw0/pathflow/pkg/domain"
)

// Notifier announces committed change events.
type Notifier interface {
	Notify(ctx context.Context, events []domain.ChangeEvent)
}

// entry is one atomic history item.
type entry struct {
	description string
	edits       []Edit
	events      []domain.ChangeEvent
}

// Recorder owns the undo/redo history.
// Transactions are opened and finished on the event-processing goroutine; the
// mutex only protects readers such as metrics and HTTP status handlers.
type Recorder struct {
	mu       sync.Mutex
	undo     []*entry
	redo     []*entry
	limit    int
	notifier Notifier
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	opened    int
	committed int
	aborted   int
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLimit bounds the undo stack. Zero means unbounded.
func WithLimit(limit int) Option {
	return func(r *Recorder) {
		r.limit = limit
	}
}

// WithNotifier sets where committed events are announced.
func WithNotifier(n Notifier) Option {
	return func(r *Recorder) {
		r.notifier = n
	}
}

// WithLifecycleHooks registers the OnCommit hook.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Recorder) {
		r.hooks = hooks
	}
}

// WithLogger configures a logger for the Recorder.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder creates an empty history.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open starts a transaction. The caller must Finish it exactly once.
func (r *Recorder) Open(description string) *Transaction {
	r.mu.Lock()
	r.opened++
	r.mu.Unlock()

	r.logger.Debug("transaction opened", "description", description)
	return &Transaction{recorder: r, description: description}
}

// Opened returns how many transactions were opened.
func (r *Recorder) Opened() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened
}

// Committed returns how many transactions were finished.
func (r *Recorder) Committed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}

// Aborted returns how many transactions were rolled back.
func (r *Recorder) Aborted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted
}

// Depth returns the number of undoable entries.
func (r *Recorder) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.undo)
}

// CanUndo reports whether Undo has something to revert.
func (r *Recorder) CanUndo() bool {
	return r.Depth() > 0
}

// CanRedo reports whether Redo has something to reapply.
func (r *Recorder) CanRedo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.redo) > 0
}

// Descriptions returns the undo stack descriptions, most recent last.
func (r *Recorder) Descriptions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.undo))
	for _, e := range r.undo {
		out = append(out, e.description)
	}
	return out
}

// commit pushes a finished transaction and announces its events.
func (r *Recorder) commit(ctx context.Context, t *Transaction) {
	r.mu.Lock()
	r.committed++
	if len(t.edits) > 0 {
		r.undo = append(r.undo, &entry{
			description: t.description,
			edits:       t.edits,
			events:      t.events,
		})
		r.redo = nil
		if r.limit > 0 && len(r.undo) > r.limit {
			r.undo = r.undo[len(r.undo)-r.limit:]
		}
	}
	r.mu.Unlock()

	r.logger.Debug("transaction finished",
		"description", t.description,
		"edits", len(t.edits),
		"events", len(t.events),
	)

	if r.hooks.OnCommit != nil {
		r.hooks.OnCommit(ctx, &domain.CommitEvent{
			Timestamp:   time.Now(),
			Description: t.description,
			Edits:       len(t.edits),
			Events:      len(t.events),
		})
	}

	r.announce(ctx, t.events)
}

// rollback reverts an aborted transaction. Every edit is attempted even when
// an earlier one fails.
func (r *Recorder) rollback(ctx context.Context, t *Transaction) error {
	r.mu.Lock()
	r.aborted++
	r.mu.Unlock()

	var errs []error
	for i := len(t.edits) - 1; i >= 0; i-- {
		if err := t.edits[i].Undo(); err != nil {
			errs = append(errs, err)
		}
	}

	r.logger.Debug("transaction aborted",
		"description", t.description,
		"edits", len(t.edits),
		"dropped_events", len(t.events),
	)
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("rollback '%s' failed: %w", t.description, err)
	}
	return nil
}

func (r *Recorder) announce(ctx context.Context, events []domain.ChangeEvent) {
	if len(events) == 0 || r.notifier == nil {
		return
	}
	r.notifier.Notify(ctx, events)
}

// Undo reverts the most recent entry, last edit first, and re-announces its events.
func (r *Recorder) Undo(ctx context.Context) error {
	r.mu.Lock()
	if len(r.undo) == 0 {
		r.mu.Unlock()
		return domain.ErrNothingToUndo
	}
	e := r.undo[len(r.undo)-1]
	r.mu.Unlock()

	for i := len(e.edits) - 1; i >= 0; i-- {
		if err := e.edits[i].Undo(); err != nil {
			// put the entry back in its committed state before reporting
			for _, done := range e.edits[i+1:] {
				if rerr := done.Redo(); rerr != nil {
					err = errors.Join(err, rerr)
				}
			}
			return fmt.Errorf("undo '%s' failed: %w", e.description, err)
		}
	}

	r.mu.Lock()
	r.undo = r.undo[:len(r.undo)-1]
	r.redo = append(r.redo, e)
	r.mu.Unlock()

	r.logger.Info("undone", "description", e.description)
	r.announce(ctx, e.events)
	return nil
}

// Redo reapplies the most recently undone entry in its original order.
func (r *Recorder) Redo(ctx context.Context) error {
	r.mu.Lock()
	if len(r.redo) == 0 {
		r.mu.Unlock()
		return domain.ErrNothingToRedo
	}
	e := r.redo[len(r.redo)-1]
	r.mu.Unlock()

	for i, edit := range e.edits {
		if err := edit.Redo(); err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := e.edits[j].Undo(); uerr != nil {
					err = errors.Join(err, uerr)
				}
			}
			return fmt.Errorf("redo '%s' failed: %w", e.description, err)
		}
	}

	r.mu.Lock()
	r.redo = r.redo[:len(r.redo)-1]
	r.undo = append(r.undo, e)
	r.mu.Unlock()

	r.logger.Info("redone", "description", e.description)
	r.announce(ctx, e.events)
	return nil
}
