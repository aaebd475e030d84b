package runtime

import (
	"context"

	"github.com/aretw0/pathflow/pkg/domain"
)

// Flow is the control flow of one user command. It knows which step function
// to run for the current step of a state it owns.
type Flow interface {
	Name() string

	// Steps declares the step graph; it is validated at registration.
	Steps() []domain.StepInfo

	// Dispatch runs the state's current step. Unknown steps are contract violations.
	Dispatch(ctx context.Context, env *Env, st domain.StepState) (domain.CommandResult, error)
}

// Initializer is implemented by flows that can start from a fresh user action.
type Initializer interface {
	InitialState(env *Env) domain.StepState
}

// Enabler reports whether the command may currently be invoked. It must not mutate anything.
type Enabler interface {
	IsEnabled(env *Env, sel domain.Selection) bool
}

// PopupValidator reports whether the command belongs in the context menu of an element.
type PopupValidator interface {
	IsValidForPopup(env *Env, sel domain.Selection, params domain.PopupParams) bool
}

// PopupInitializer is implemented by flows that can be started from a context menu.
type PopupInitializer interface {
	PopupState(env *Env, params domain.PopupParams) domain.StepState
}

// ReverseEnabler is implemented by cancel-style commands, enabled exactly when a
// complementary mode is active.
type ReverseEnabler interface {
	IsReverseEnabled(mode domain.ModeName, active bool) bool
}

// Advance runs one step. With a nil prior it asks the flow for an initial state;
// otherwise it resumes the state carried by prior.
func Advance(ctx context.Context, env *Env, flow Flow, prior *domain.CommandResult) (domain.CommandResult, error) {
	var st domain.StepState
	if prior == nil {
		var err error
		st, err = initialState(env, flow)
		if err != nil {
			return domain.CommandResult{}, err
		}
	} else {
		if prior.State == nil {
			return domain.CommandResult{}, domain.Violation(flow.Name(), "", domain.ErrMalformedResult)
		}
		if prior.Progress.Terminal() {
			return domain.CommandResult{}, domain.Violation(flow.Name(), prior.State.CurrentStep(), domain.ErrNoPendingResume)
		}
		st = prior.State
	}

	if st.FlowName() != flow.Name() {
		return domain.CommandResult{}, domain.Violation(flow.Name(), st.CurrentStep(), domain.ErrForeignState)
	}

	step := st.CurrentStep()
	res, err := flow.Dispatch(ctx, env, st)
	if err != nil {
		return domain.CommandResult{}, err
	}
	if err := res.Validate(); err != nil {
		return domain.CommandResult{}, domain.Violation(flow.Name(), step, err)
	}
	return res, nil
}

func initialState(env *Env, flow Flow) (domain.StepState, error) {
	init, ok := flow.(Initializer)
	if !ok {
		return nil, domain.Violation(flow.Name(), "", domain.ErrNoPriorResult)
	}
	return init.InitialState(env), nil
}
