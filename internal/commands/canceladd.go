package commands

import (
	"context"
	"fmt"

	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
)

// CancelAddCancel is the only step of cancel_add.
const CancelAddCancel domain.StepID = "cancel"

// CancelAddState has no payload.
type CancelAddState struct {
	domain.StepBase
}

func (s *CancelAddState) cancel(ctx context.Context, env *runtime.Env) (domain.CommandResult, error) {
	if env.Mouse != nil {
		if err := env.Mouse.Reset(ctx); err != nil {
			return domain.CommandResult{}, fmt.Errorf("failed to reset interaction modes: %w", err)
		}
	}
	return domain.Finish(s), nil
}

// CancelAddFlow discards the installed add mode. Starting it also discards the
// suspended add flow, whose commit step never runs.
type CancelAddFlow struct{}

func (CancelAddFlow) Name() string { return FlowCancelAdd }

func (CancelAddFlow) Steps() []domain.StepInfo {
	return []domain.StepInfo{
		{ID: CancelAddCancel, Kind: domain.StepFinal, Entry: true},
	}
}

func (CancelAddFlow) InitialState(env *runtime.Env) domain.StepState {
	return &CancelAddState{StepBase: domain.NewStepBase(FlowCancelAdd, CancelAddCancel)}
}

func (CancelAddFlow) IsReverseEnabled(mode domain.ModeName, active bool) bool {
	return active && mode.IsAddMode()
}

func (CancelAddFlow) Dispatch(ctx context.Context, env *runtime.Env, st domain.StepState) (domain.CommandResult, error) {
	s, ok := st.(*CancelAddState)
	if !ok {
		return domain.CommandResult{}, foreignState(FlowCancelAdd, st)
	}

	switch s.CurrentStep() {
	case CancelAddCancel:
		return s.cancel(ctx, env)
	default:
		return domain.CommandResult{}, unknownStep(FlowCancelAdd, st)
	}
}
