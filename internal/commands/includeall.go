package commands

import (
	"context"
	"fmt"

	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
)

// Steps of include_all_for_group.
const (
	IncludeAllSetMode   domain.StepID = "set_mode"
	IncludeAllPickGroup domain.StepID = "pick_group"
	IncludeAllInclude   domain.StepID = "include"
)

// IncludeAllState targets one group of an instance model.
type IncludeAllState struct {
	domain.StepBase

	modelID string
	groupID string
	click   domain.Point
	clicked bool
	popup   bool
}

// NewIncludeAllPopupState builds the state for a context-menu invocation on a group.
func NewIncludeAllPopupState(params domain.PopupParams) *IncludeAllState {
	s := &IncludeAllState{StepBase: domain.NewStepBase(FlowIncludeAllForGroup, IncludeAllInclude)}
	s.SetPopupParams(params)
	return s
}

// SetPopupParams stores the group the menu was opened on.
func (s *IncludeAllState) SetPopupParams(params domain.PopupParams) {
	s.modelID = params.ModelID
	s.groupID = params.GroupID
	s.popup = true
}

// AcceptClick stores the point used to pick the group.
func (s *IncludeAllState) AcceptClick(p domain.Point) {
	s.click = p
	s.clicked = true
}

// Group returns the targeted group, once known.
func (s *IncludeAllState) Group() string {
	return s.groupID
}

func (s *IncludeAllState) setMode() domain.CommandResult {
	s.clicked = false
	s.Goto(IncludeAllPickGroup)
	return domain.AwaitClick(s, domain.MouseMode{Name: domain.ModePickGroup})
}

func (s *IncludeAllState) pickGroup(env *runtime.Env) (domain.CommandResult, error) {
	if !s.clicked {
		return domain.CommandResult{}, domain.Violation(FlowIncludeAllForGroup, IncludeAllPickGroup, domain.ErrMissingPayload)
	}
	if env.Selection == nil {
		return domain.CommandResult{}, ErrNoSelectionResolver
	}

	groupID, ok := env.Selection.GroupAt(s.modelID, s.click)
	if !ok {
		env.Log().Debug("no group under click", "model", s.modelID, "x", s.click.X, "y", s.click.Y)
		return domain.Finish(s), nil
	}
	s.groupID = groupID
	s.Goto(IncludeAllInclude)
	return domain.Continue(s), nil
}

func (s *IncludeAllState) include(ctx context.Context, env *runtime.Env) (res domain.CommandResult, err error) {
	if s.groupID == "" {
		return domain.CommandResult{}, domain.Violation(FlowIncludeAllForGroup, IncludeAllInclude, domain.ErrMissingPayload)
	}
	if s.modelID == "" {
		s.modelID = env.Model.CurrentModelID()
	}

	parentID, ok := env.Model.ParentModelID(s.modelID)
	if !ok {
		return domain.CommandResult{}, fmt.Errorf("model '%s': %w", s.modelID, ErrNotInstance)
	}
	if _, ok := env.Model.Group(s.modelID, s.groupID); !ok {
		return domain.CommandResult{}, fmt.Errorf("group '%s' in model '%s': %w", s.groupID, s.modelID, domain.ErrGroupNotFound)
	}
	counterpart, ok := env.Model.Group(parentID, s.groupID)
	if !ok {
		return domain.CommandResult{}, fmt.Errorf("group '%s' in parent model '%s': %w", s.groupID, parentID, domain.ErrGroupNotFound)
	}

	txn := env.Undo.Open("Include All For Group")
	defer finishOnExit(ctx, txn, &err)

	for _, member := range counterpart.Members {
		if !env.Model.HasNode(s.modelID, member) {
			continue
		}
		if _, err := AddMemberToGroup(ctx, env, txn, s.modelID, s.groupID, member); err != nil {
			return domain.CommandResult{}, err
		}
	}

	edits, _ := txn.Len()
	env.Log().Info("group members included", "model", s.modelID, "group", s.groupID, "added", edits)
	if s.popup {
		return domain.Handled(s), nil
	}
	return domain.Finish(s), nil
}

// IncludeAllForGroupFlow copies the membership of a group from the parent
// model into the instance, as one undo entry.
type IncludeAllForGroupFlow struct{}

func (IncludeAllForGroupFlow) Name() string { return FlowIncludeAllForGroup }

func (IncludeAllForGroupFlow) Steps() []domain.StepInfo {
	return []domain.StepInfo{
		{ID: IncludeAllSetMode, Kind: domain.StepMouse, Next: []domain.StepID{IncludeAllPickGroup}, Entry: true},
		{ID: IncludeAllPickGroup, Kind: domain.StepSync, Next: []domain.StepID{IncludeAllInclude}},
		{ID: IncludeAllInclude, Kind: domain.StepCommit, Entry: true},
	}
}

func (IncludeAllForGroupFlow) InitialState(env *runtime.Env) domain.StepState {
	return &IncludeAllState{
		StepBase: domain.NewStepBase(FlowIncludeAllForGroup, IncludeAllSetMode),
		modelID:  env.Model.CurrentModelID(),
	}
}

func (IncludeAllForGroupFlow) IsEnabled(env *runtime.Env, sel domain.Selection) bool {
	_, isInstance := env.Model.ParentModelID(env.Model.CurrentModelID())
	return isInstance
}

func (IncludeAllForGroupFlow) PopupState(env *runtime.Env, params domain.PopupParams) domain.StepState {
	return NewIncludeAllPopupState(params)
}

func (IncludeAllForGroupFlow) IsValidForPopup(env *runtime.Env, sel domain.Selection, params domain.PopupParams) bool {
	if params.GroupID == "" {
		return false
	}
	modelID := params.ModelID
	if modelID == "" {
		modelID = sel.ModelID
	}
	parentID, ok := env.Model.ParentModelID(modelID)
	if !ok {
		return false
	}
	if _, ok := env.Model.Group(modelID, params.GroupID); !ok {
		return false
	}
	_, ok = env.Model.Group(parentID, params.GroupID)
	return ok
}

func (IncludeAllForGroupFlow) Dispatch(ctx context.Context, env *runtime.Env, st domain.StepState) (domain.CommandResult, error) {
	s, ok := st.(*IncludeAllState)
	if !ok {
		return domain.CommandResult{}, foreignState(FlowIncludeAllForGroup, st)
	}

	switch s.CurrentStep() {
	case IncludeAllSetMode:
		return s.setMode(), nil
	case IncludeAllPickGroup:
		return s.pickGroup(env)
	case IncludeAllInclude:
		return s.include(ctx, env)
	default:
		return domain.CommandResult{}, unknownStep(FlowIncludeAllForGroup, st)
	}
}
