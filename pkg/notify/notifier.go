// Package notify announces model-change events to in-process listeners and
// out-of-process publishers, decoupled from any specific view.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/pathflow/internal/logging"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/ports"
)

// Listener receives every announced event.
type Listener func(ctx context.Context, ev domain.ChangeEvent)

// Notifier is a publish mechanism for committed model changes.
type Notifier struct {
	mu         sync.RWMutex
	listeners  map[int]Listener
	nextID     int
	publishers []ports.ChangePublisher
	logger     *slog.Logger
}

// Option configures the Notifier.
type Option func(*Notifier)

// WithPublisher adds an external sink (e.g. Redis).
func WithPublisher(p ports.ChangePublisher) Option {
	return func(n *Notifier) {
		n.publishers = append(n.publishers, p)
	}
}

// WithLogger configures a logger for the Notifier.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// New creates a Notifier without listeners.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		listeners: make(map[int]Listener),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers a listener and returns the function that removes it.
func (n *Notifier) Subscribe(l Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.listeners[id] = l

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// Notify delivers events to listeners in subscription order, then to publishers.
// Publisher failures are logged: the transaction is already committed.
func (n *Notifier) Notify(ctx context.Context, events []domain.ChangeEvent) {
	n.mu.RLock()
	ids := make([]int, 0, len(n.listeners))
	for id := range n.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, n.listeners[id])
	}
	publishers := n.publishers
	n.mu.RUnlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(ctx, ev)
		}
	}

	for _, p := range publishers {
		if err := p.Publish(ctx, events); err != nil {
			n.logger.Warn("failed to publish change events", "count", len(events), "err", err)
		}
	}
}
