package pathflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/pathflow/internal/commands"
	"github.com/aretw0/pathflow/internal/logging"
	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/adapters/memory"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/notify"
	"github.com/aretw0/pathflow/pkg/observability"
	"github.com/aretw0/pathflow/pkg/ports"
	"github.com/aretw0/pathflow/pkg/undo"
)

// Session is the high-level entry point for the pathflow library.
// It wires one editable model to the command flows, the undo history and the
// change notifier, and exposes the host-facing API.
type Session struct {
	harness  *runtime.Harness
	history  *undo.Recorder
	notifier *notify.Notifier
	env      *runtime.Env

	interaction ports.InteractionManager
	dialogs     ports.DialogPresenter
	publishers  []ports.ChangePublisher
	hooks       []domain.LifecycleHooks
	gridUnit    float64
	undoLimit   int
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithLifecycleHooks registers observability hooks. Repeated calls accumulate.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = append(s.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithInteraction sets the mouse-mode manager of the host canvas.
func WithInteraction(m ports.InteractionManager) Option {
	return func(s *Session) {
		s.interaction = m
	}
}

// WithDialogPresenter sets the host dialog presenter.
func WithDialogPresenter(p ports.DialogPresenter) Option {
	return func(s *Session) {
		s.dialogs = p
	}
}

// WithPublisher fans committed change events out, after the in-process listeners.
func WithPublisher(p ports.ChangePublisher) Option {
	return func(s *Session) {
		s.publishers = append(s.publishers, p)
	}
}

// WithGridUnit sets the click snapping unit (default 10).
func WithGridUnit(unit float64) Option {
	return func(s *Session) {
		s.gridUnit = unit
	}
}

// WithUndoLimit bounds the undo history. Zero keeps every entry.
func WithUndoLimit(limit int) Option {
	return func(s *Session) {
		s.undoLimit = limit
	}
}

// New creates a session over model with the built-in commands registered.
// A model that also resolves canvas clicks to groups enables group picking.
func New(model ports.Model, opts ...Option) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}

	s := &Session{
		gridUnit: 10,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interaction == nil {
		s.interaction = memory.NewInteraction()
	}
	if s.dialogs == nil {
		s.dialogs = memory.NewDialogs()
	}

	notifierOpts := []notify.Option{notify.WithLogger(s.logger)}
	for _, p := range s.publishers {
		notifierOpts = append(notifierOpts, notify.WithPublisher(p))
	}
	s.notifier = notify.New(notifierOpts...)

	hooks := observability.Combine(s.hooks...)
	s.history = undo.NewRecorder(
		undo.WithLimit(s.undoLimit),
		undo.WithNotifier(s.notifier),
		undo.WithLifecycleHooks(hooks),
		undo.WithLogger(s.logger),
	)

	s.env = &runtime.Env{
		Model:    model,
		Undo:     s.history,
		Mouse:    s.interaction,
		GridUnit: s.gridUnit,
		Logger:   s.logger,
	}
	if resolver, ok := model.(ports.SelectionResolver); ok {
		s.env.Selection = resolver
	}

	registry := runtime.NewRegistry()
	if err := commands.Register(registry); err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}

	s.harness = runtime.NewHarness(s.env, registry,
		runtime.WithDialogPresenter(s.dialogs),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithLogger(s.logger),
	)
	return s, nil
}

// Harness returns the flow harness driving the commands.
func (s *Session) Harness() *runtime.Harness {
	return s.harness
}

// History returns the undo history.
func (s *Session) History() *undo.Recorder {
	return s.history
}

// Subscribe registers a change listener and returns the function that removes it.
func (s *Session) Subscribe(l notify.Listener) func() {
	return s.notifier.Subscribe(l)
}

// Start runs the named command.
func (s *Session) Start(ctx context.Context, name string) (domain.CommandResult, error) {
	return s.harness.Start(ctx, name)
}

// StartPopup runs the named command from a context menu.
func (s *Session) StartPopup(ctx context.Context, name string, sel domain.Selection, params domain.PopupParams) (domain.CommandResult, error) {
	return s.harness.StartPopup(ctx, name, sel, params)
}

// DeliverDialog resumes the command waiting on a dialog.
func (s *Session) DeliverDialog(ctx context.Context, result domain.DialogResult) (domain.CommandResult, error) {
	return s.harness.DeliverDialog(ctx, result)
}

// DeliverClick resumes the command waiting on a canvas click.
func (s *Session) DeliverClick(ctx context.Context, p domain.Point) (domain.CommandResult, error) {
	return s.harness.DeliverClick(ctx, p)
}

// Abandon drops the suspended command, if any.
func (s *Session) Abandon(ctx context.Context) bool {
	return s.harness.Abandon(ctx)
}

// Undo reverts the most recent committed command.
func (s *Session) Undo(ctx context.Context) error {
	return s.history.Undo(ctx)
}

// Redo reapplies the most recently undone command.
func (s *Session) Redo(ctx context.Context) error {
	return s.history.Redo(ctx)
}

// Enabled lists the commands available for the selection.
func (s *Session) Enabled(sel domain.Selection) []string {
	return s.harness.Enabled(sel)
}
