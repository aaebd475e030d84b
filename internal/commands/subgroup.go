package commands

import (
	"context"
	"fmt"

	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
)

// AddToSubGroupAdd is the only step of add_to_subgroup.
const AddToSubGroupAdd domain.StepID = "add"

// SubGroupState carries the node and subgroup picked from a context menu.
type SubGroupState struct {
	domain.StepBase

	params    domain.PopupParams
	hasParams bool
}

// NewSubGroupPopupState builds the state for a context-menu invocation.
func NewSubGroupPopupState(params domain.PopupParams) *SubGroupState {
	s := &SubGroupState{StepBase: domain.NewStepBase(FlowAddToSubGroup, AddToSubGroupAdd)}
	s.SetPopupParams(params)
	return s
}

// SetPopupParams stores the element the menu was opened on.
func (s *SubGroupState) SetPopupParams(params domain.PopupParams) {
	s.params = params
	s.hasParams = true
}

func (s *SubGroupState) add(ctx context.Context, env *runtime.Env) (res domain.CommandResult, err error) {
	if !s.hasParams {
		return domain.CommandResult{}, domain.Violation(FlowAddToSubGroup, AddToSubGroupAdd, domain.ErrMissingPayload)
	}

	modelID := s.params.ModelID
	if modelID == "" {
		modelID = env.Model.CurrentModelID()
	}
	if !env.Model.HasNode(modelID, s.params.NodeID) {
		return domain.CommandResult{}, fmt.Errorf("node '%s' in model '%s': %w", s.params.NodeID, modelID, domain.ErrNodeNotFound)
	}
	group, ok := env.Model.Group(modelID, s.params.GroupID)
	if !ok {
		return domain.CommandResult{}, fmt.Errorf("group '%s' in model '%s': %w", s.params.GroupID, modelID, domain.ErrGroupNotFound)
	}
	if group.ParentID == "" {
		return domain.CommandResult{}, fmt.Errorf("group '%s': %w", group.ID, ErrNotSubgroup)
	}

	txn := env.Undo.Open("Add to Subgroup")
	defer finishOnExit(ctx, txn, &err)

	// A subgroup member must also belong to the enclosing group.
	if _, err := AddMemberToGroup(ctx, env, txn, modelID, group.ParentID, s.params.NodeID); err != nil {
		return domain.CommandResult{}, err
	}
	if _, err := AddMemberToGroup(ctx, env, txn, modelID, group.ID, s.params.NodeID); err != nil {
		return domain.CommandResult{}, err
	}
	return domain.Handled(s), nil
}

// AddToSubGroupFlow adds a node of an instance model to one of its subgroups.
// It is only reachable from a context menu.
type AddToSubGroupFlow struct{}

func (AddToSubGroupFlow) Name() string { return FlowAddToSubGroup }

func (AddToSubGroupFlow) Steps() []domain.StepInfo {
	return []domain.StepInfo{
		{ID: AddToSubGroupAdd, Kind: domain.StepCommit, Entry: true},
	}
}

func (AddToSubGroupFlow) PopupState(env *runtime.Env, params domain.PopupParams) domain.StepState {
	return NewSubGroupPopupState(params)
}

func (AddToSubGroupFlow) IsValidForPopup(env *runtime.Env, sel domain.Selection, params domain.PopupParams) bool {
	if params.NodeID == "" || params.GroupID == "" {
		return false
	}
	modelID := params.ModelID
	if modelID == "" {
		modelID = sel.ModelID
	}
	if _, isInstance := env.Model.ParentModelID(modelID); !isInstance {
		return false
	}
	if !env.Model.HasNode(modelID, params.NodeID) {
		return false
	}
	group, ok := env.Model.Group(modelID, params.GroupID)
	return ok && group.ParentID != "" && !group.HasMember(params.NodeID)
}

func (AddToSubGroupFlow) Dispatch(ctx context.Context, env *runtime.Env, st domain.StepState) (domain.CommandResult, error) {
	s, ok := st.(*SubGroupState)
	if !ok {
		return domain.CommandResult{}, foreignState(FlowAddToSubGroup, st)
	}

	switch s.CurrentStep() {
	case AddToSubGroupAdd:
		return s.add(ctx, env)
	default:
		return domain.CommandResult{}, unknownStep(FlowAddToSubGroup, st)
	}
}
