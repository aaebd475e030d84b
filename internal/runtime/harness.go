package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/pathflow/internal/logging"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/ports"
	"github.com/google/uuid"
)

// ErrNotAvailable is returned when a command cannot be invoked in the current context.
var ErrNotAvailable = errors.New("command not available")

// Harness drives flows from their first step to the next suspension point or
// terminal state, and routes dialog answers and clicks back into the suspended
// state. It holds at most one pending suspension.
//
// The harness is not safe for concurrent use: hosts call it from a single
// event-processing goroutine (or serialize calls, as the HTTP adapter does).
type Harness struct {
	env      *Env
	registry *Registry
	dialogs  ports.DialogPresenter
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	pending       *domain.CommandResult
	pendingFlow   Flow
	invocation    string
	modeInstalled bool
}

// HarnessOption configures the Harness.
type HarnessOption func(*Harness)

// WithDialogPresenter sets where dialog suspensions are shown.
func WithDialogPresenter(p ports.DialogPresenter) HarnessOption {
	return func(h *Harness) {
		h.dialogs = p
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) HarnessOption {
	return func(h *Harness) {
		h.hooks = hooks
	}
}

// WithLogger sets a structured logger for the harness.
func WithLogger(logger *slog.Logger) HarnessOption {
	return func(h *Harness) {
		h.logger = logger
	}
}

// NewHarness creates a harness over the registered flows.
func NewHarness(env *Env, registry *Registry, opts ...HarnessOption) *Harness {
	h := &Harness{
		env:      env,
		registry: registry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Env returns the context object shared by the flows.
func (h *Harness) Env() *Env {
	return h.env
}

// Registry returns the flow registry.
func (h *Harness) Registry() *Registry {
	return h.registry
}

// Pending returns the suspended result, if any.
func (h *Harness) Pending() (domain.CommandResult, bool) {
	if h.pending == nil {
		return domain.CommandResult{}, false
	}
	return *h.pending, true
}

// ActiveFlow returns the name of the suspended flow, if any.
func (h *Harness) ActiveFlow() (string, bool) {
	if h.pendingFlow == nil {
		return "", false
	}
	return h.pendingFlow.Name(), true
}

// Flows returns the registered command names.
func (h *Harness) Flows() []string {
	return h.registry.Names()
}

// Invocation returns the id of the most recently started invocation.
func (h *Harness) Invocation() string {
	return h.invocation
}

// Start runs a fresh invocation of the named flow. A previously suspended flow
// is discarded; it never reached its commit step so nothing needs rolling back.
func (h *Harness) Start(ctx context.Context, name string) (domain.CommandResult, error) {
	flow, err := h.registry.Get(name)
	if err != nil {
		return domain.CommandResult{}, err
	}

	st, err := initialState(h.env, flow)
	if err != nil {
		return domain.CommandResult{}, err
	}
	return h.begin(ctx, flow, st)
}

// StartWith runs the named flow from a preloaded state (popup invocation or
// headless replay with all parameters known).
func (h *Harness) StartWith(ctx context.Context, name string, st domain.StepState) (domain.CommandResult, error) {
	flow, err := h.registry.Get(name)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if st == nil {
		return domain.CommandResult{}, domain.Violation(name, "", domain.ErrMalformedResult)
	}
	if st.FlowName() != name {
		return domain.CommandResult{}, domain.Violation(name, st.CurrentStep(), domain.ErrForeignState)
	}
	return h.begin(ctx, flow, st)
}

// StartPopup runs the named flow for a context-menu invocation on the element
// described by params.
func (h *Harness) StartPopup(ctx context.Context, name string, sel domain.Selection, params domain.PopupParams) (domain.CommandResult, error) {
	flow, err := h.registry.Get(name)
	if err != nil {
		return domain.CommandResult{}, err
	}
	init, ok := flow.(PopupInitializer)
	if !ok {
		return domain.CommandResult{}, fmt.Errorf("flow '%s' has no context-menu entry: %w", name, ErrNotAvailable)
	}
	if v, ok := flow.(PopupValidator); ok && !v.IsValidForPopup(h.env, sel, params) {
		return domain.CommandResult{}, fmt.Errorf("flow '%s' on %+v: %w", name, params, ErrNotAvailable)
	}
	return h.StartWith(ctx, name, init.PopupState(h.env, params))
}

func (h *Harness) begin(ctx context.Context, flow Flow, st domain.StepState) (domain.CommandResult, error) {
	h.discard(ctx, "superseded")

	h.invocation = uuid.NewString()
	h.logger.Info("flow started", "flow", flow.Name(), "invocation", h.invocation, "step", st.CurrentStep())
	h.emit(ctx, h.hooks.OnFlowStart, flow, st.CurrentStep(), domain.ProgressKeepProcessing, nil)

	return h.drive(ctx, flow, domain.Continue(st))
}

// DeliverDialog resumes the flow suspended on a dialog.
func (h *Harness) DeliverDialog(ctx context.Context, result domain.DialogResult) (domain.CommandResult, error) {
	pending, flow, err := h.take(ctx, domain.ProgressHaveDialog)
	if err != nil {
		return domain.CommandResult{}, err
	}

	st, ok := pending.State.(domain.DialogCapable)
	if !ok {
		return h.abort(ctx, flow, pending.State, domain.Violation(flow.Name(), pending.State.CurrentStep(), domain.ErrCapabilityMismatch))
	}

	st.AcceptDialog(result)
	h.logger.Debug("dialog delivered", "flow", flow.Name(), "invocation", h.invocation, "has_results", result.HasResults())
	h.emit(ctx, h.hooks.OnResume, flow, st.CurrentStep(), domain.ProgressHaveDialog, nil)

	return h.drive(ctx, flow, domain.Continue(st))
}

// DeliverClick resumes the flow suspended on a mouse mode. The raw point is
// snapped to the grid and the mode is released before the state sees it.
func (h *Harness) DeliverClick(ctx context.Context, raw domain.Point) (domain.CommandResult, error) {
	pending, flow, err := h.take(ctx, domain.ProgressInstallMouseMode)
	if err != nil {
		return domain.CommandResult{}, err
	}

	st, ok := pending.State.(domain.ClickCapable)
	if !ok {
		return h.abort(ctx, flow, pending.State, domain.Violation(flow.Name(), pending.State.CurrentStep(), domain.ErrCapabilityMismatch))
	}

	h.releaseMode(ctx)

	p := raw.Snap(h.env.GridUnit)
	st.AcceptClick(p)
	h.logger.Debug("click delivered", "flow", flow.Name(), "invocation", h.invocation, "x", p.X, "y", p.Y)
	h.emit(ctx, h.hooks.OnResume, flow, st.CurrentStep(), domain.ProgressInstallMouseMode, nil)

	return h.drive(ctx, flow, domain.Continue(st))
}

// Abandon drops the suspended flow without running any more of its steps.
// It reports whether something was pending.
func (h *Harness) Abandon(ctx context.Context) bool {
	return h.discard(ctx, "abandoned")
}

// Enabled lists the commands that may currently be invoked for the selection.
func (h *Harness) Enabled(sel domain.Selection) []string {
	var mode domain.ModeName
	active := false
	if h.env.Mouse != nil {
		var m domain.MouseMode
		m, active = h.env.Mouse.Active()
		mode = m.Name
	}

	var out []string
	for _, f := range h.registry.Flows() {
		switch c := f.(type) {
		case ReverseEnabler:
			if c.IsReverseEnabled(mode, active) {
				out = append(out, f.Name())
			}
		case Enabler:
			if c.IsEnabled(h.env, sel) {
				out = append(out, f.Name())
			}
		}
	}
	return out
}

// PopupCommands lists the commands valid for the context menu of an element.
func (h *Harness) PopupCommands(sel domain.Selection, params domain.PopupParams) []string {
	var out []string
	for _, f := range h.registry.Flows() {
		if v, ok := f.(PopupValidator); ok && v.IsValidForPopup(h.env, sel, params) {
			out = append(out, f.Name())
		}
	}
	return out
}

// drive loops until the result stops asking for another immediate iteration.
func (h *Harness) drive(ctx context.Context, flow Flow, res domain.CommandResult) (domain.CommandResult, error) {
	for {
		switch {
		case res.Progress == domain.ProgressKeepProcessing:
			step := res.State.CurrentStep()
			next, err := Advance(ctx, h.env, flow, &res)
			if err != nil {
				return h.abort(ctx, flow, res.State, err)
			}
			h.emit(ctx, h.hooks.OnStep, flow, step, next.Progress, nil)
			res = next

		case res.Progress.Suspends():
			return h.suspend(ctx, flow, res)

		case res.Progress.Terminal():
			h.logger.Info("flow finished", "flow", flow.Name(), "invocation", h.invocation, "progress", res.Progress.String())
			h.emit(ctx, h.hooks.OnFinish, flow, "", res.Progress, nil)
			return res, nil

		default:
			return h.abort(ctx, flow, res.State, domain.Violation(flow.Name(), "", domain.ErrMalformedResult))
		}
	}
}

// suspend installs exactly one listener for the suspension and remembers the state.
func (h *Harness) suspend(ctx context.Context, flow Flow, res domain.CommandResult) (domain.CommandResult, error) {
	step := res.State.CurrentStep()

	switch res.Progress {
	case domain.ProgressHaveDialog:
		if _, ok := res.State.(domain.DialogCapable); !ok {
			return h.abort(ctx, flow, res.State, domain.Violation(flow.Name(), step, domain.ErrCapabilityMismatch))
		}
		if h.dialogs != nil {
			if err := h.dialogs.Present(ctx, *res.Dialog); err != nil {
				return h.abort(ctx, flow, res.State, err)
			}
		}

	case domain.ProgressInstallMouseMode:
		if _, ok := res.State.(domain.ClickCapable); !ok {
			return h.abort(ctx, flow, res.State, domain.Violation(flow.Name(), step, domain.ErrCapabilityMismatch))
		}
		if h.env.Mouse != nil {
			if err := h.env.Mouse.Install(ctx, *res.Mode); err != nil {
				return h.abort(ctx, flow, res.State, err)
			}
			h.modeInstalled = true
		}
	}

	h.pending = &res
	h.pendingFlow = flow

	h.logger.Debug("flow suspended", "flow", flow.Name(), "invocation", h.invocation, "progress", res.Progress.String(), "next_step", step)
	h.emit(ctx, h.hooks.OnSuspend, flow, step, res.Progress, nil)
	return res, nil
}

// take claims the pending suspension. The slot is cleared before resuming so a
// second resume of the same suspension is rejected.
func (h *Harness) take(ctx context.Context, want domain.Progress) (domain.CommandResult, Flow, error) {
	if h.pending == nil {
		return domain.CommandResult{}, nil, domain.Violation("", "", domain.ErrNoPendingResume)
	}

	pending, flow := *h.pending, h.pendingFlow
	h.pending, h.pendingFlow = nil, nil

	if pending.Progress != want {
		_, err := h.abort(ctx, flow, pending.State, domain.Violation(flow.Name(), pending.State.CurrentStep(), domain.ErrCapabilityMismatch))
		return domain.CommandResult{}, nil, err
	}
	return pending, flow, nil
}

// abort ends the invocation after an error. A commit step that fails rolls its
// transaction back, so the model is left as the last finished transaction made it.
func (h *Harness) abort(ctx context.Context, flow Flow, st domain.StepState, err error) (domain.CommandResult, error) {
	h.pending, h.pendingFlow = nil, nil
	h.releaseMode(ctx)

	var step domain.StepID
	if st != nil {
		step = st.CurrentStep()
	}
	h.logger.Error("flow aborted", "flow", flow.Name(), "invocation", h.invocation, "step", step, "err", err)
	h.emit(ctx, h.hooks.OnAbort, flow, step, domain.ProgressUserCancel, err)
	return domain.CommandResult{}, err
}

func (h *Harness) discard(ctx context.Context, reason string) bool {
	if h.pending == nil {
		return false
	}
	flow, st := h.pendingFlow, h.pending.State
	h.pending, h.pendingFlow = nil, nil
	h.releaseMode(ctx)

	h.logger.Info("suspended flow discarded", "flow", flow.Name(), "invocation", h.invocation, "reason", reason)
	h.emit(ctx, h.hooks.OnAbort, flow, st.CurrentStep(), domain.ProgressUserCancel, nil)
	return true
}

func (h *Harness) releaseMode(ctx context.Context) {
	if !h.modeInstalled || h.env.Mouse == nil {
		return
	}
	h.modeInstalled = false
	if err := h.env.Mouse.Reset(ctx); err != nil {
		h.logger.Warn("failed to release interaction mode", "err", err)
	}
}

func (h *Harness) emit(ctx context.Context, hook func(context.Context, *domain.FlowEvent), flow Flow, step domain.StepID, p domain.Progress, err error) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.FlowEvent{
		Timestamp:    time.Now(),
		InvocationID: h.invocation,
		Flow:         flow.Name(),
		Step:         step,
		Progress:     p,
		Err:          err,
	})
}
