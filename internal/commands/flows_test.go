package commands_test

import (
	"context"
	"testing"

	"github.com/aretw0/pathflow/internal/commands"
	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToSubGroup_Popup(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()
	params := domain.PopupParams{ModelID: "I1", NodeID: "N1", GroupID: "G2"}

	assert.Contains(t, rig.harness.PopupCommands(domain.Selection{ModelID: "I1"}, params), commands.FlowAddToSubGroup)

	res, err := rig.harness.StartWith(ctx, commands.FlowAddToSubGroup, commands.NewSubGroupPopupState(params))
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressProcessed, res.Progress)

	assert.Equal(t, []string{"N1"}, rig.members(t, "I1", "G1"), "the enclosing group gains the node too")
	assert.Equal(t, []string{"N1"}, rig.members(t, "I1", "G2"))
	assert.Equal(t, 1, rig.rec.Depth(), "both insertions form one undo entry")
	assert.Len(t, rig.events, 2)

	assert.NotContains(t, rig.harness.PopupCommands(domain.Selection{ModelID: "I1"}, params), commands.FlowAddToSubGroup,
		"a node already in the subgroup cannot be added again")

	require.NoError(t, rig.rec.Undo(ctx))
	assert.Empty(t, rig.members(t, "I1", "G1"))
	assert.Empty(t, rig.members(t, "I1", "G2"))

	require.NoError(t, rig.rec.Redo(ctx))
	assert.Equal(t, []string{"N1"}, rig.members(t, "I1", "G2"))
}

func TestAddToSubGroup_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		params domain.PopupParams
		target error
	}{
		{"missing node", domain.PopupParams{ModelID: "I1", NodeID: "N3", GroupID: "G2"}, domain.ErrNodeNotFound},
		{"missing group", domain.PopupParams{ModelID: "I1", NodeID: "N1", GroupID: "G9"}, domain.ErrGroupNotFound},
		{"top-level group", domain.PopupParams{ModelID: "I1", NodeID: "N1", GroupID: "G1"}, commands.ErrNotSubgroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newRig(t)
			_, err := rig.harness.StartWith(context.Background(), commands.FlowAddToSubGroup, commands.NewSubGroupPopupState(tt.params))
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, 0, rig.rec.Opened(), "validation happens before any transaction")
		})
	}
}

func TestAddToSubGroup_FailureRollsBack(t *testing.T) {
	rig := newRigWith(t, failOn("AddGroupMember", 2))
	params := domain.PopupParams{ModelID: "I1", NodeID: "N1", GroupID: "G2"}

	_, err := rig.harness.StartWith(context.Background(), commands.FlowAddToSubGroup, commands.NewSubGroupPopupState(params))
	assert.ErrorIs(t, err, errStorage)

	assert.Empty(t, rig.members(t, "I1", "G1"), "the enclosing group is restored")
	assert.Empty(t, rig.members(t, "I1", "G2"))
	assert.Equal(t, 0, rig.rec.Depth())
	assert.Empty(t, rig.events)
}

func TestAddToSubGroup_NotValidOnRootModel(t *testing.T) {
	rig := newRig(t)
	params := domain.PopupParams{ModelID: "root", NodeID: "N1", GroupID: "G2"}
	assert.False(t, commands.AddToSubGroupFlow{}.IsValidForPopup(rig.env, domain.Selection{}, params))
}

func TestAddToSubGroup_RequiresPriorResult(t *testing.T) {
	rig := newRig(t)

	_, err := rig.harness.Start(context.Background(), commands.FlowAddToSubGroup)
	assert.ErrorIs(t, err, domain.ErrContractViolation)
	assert.ErrorIs(t, err, domain.ErrNoPriorResult)
}

func TestCancelAdd_AbandonsSuspendedFlow(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	_, err := rig.harness.Start(ctx, commands.FlowAddNote)
	require.NoError(t, err)
	_, err = rig.harness.DeliverDialog(ctx, validNote())
	require.NoError(t, err)

	assert.Contains(t, rig.harness.Enabled(domain.Selection{}), commands.FlowCancelAdd)

	res, err := rig.harness.Start(ctx, commands.FlowCancelAdd)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressDone, res.Progress)

	_, active := rig.mouse.Active()
	assert.False(t, active, "interaction mode is cleared")
	_, pending := rig.harness.Pending()
	assert.False(t, pending)

	// the abandoned state is never resumed
	_, err = rig.harness.DeliverClick(ctx, domain.Point{X: 103, Y: 57})
	assert.ErrorIs(t, err, domain.ErrNoPendingResume)

	assert.Equal(t, 0, rig.rec.Opened(), "the abandoned flow never opened a transaction")
	assert.Empty(t, rig.model.Notes("I1"))
	assert.NotContains(t, rig.harness.Enabled(domain.Selection{}), commands.FlowCancelAdd)
}

func TestCancelAdd_ReverseEnablement(t *testing.T) {
	f := commands.CancelAddFlow{}
	assert.True(t, f.IsReverseEnabled(domain.ModeAddNote, true))
	assert.True(t, f.IsReverseEnabled(domain.ModePickGroup, true))
	assert.False(t, f.IsReverseEnabled(domain.ModeAddNote, false))
	assert.False(t, f.IsReverseEnabled("pan", true))
}

func TestIncludeAll_PopupIsAtomic(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()
	params := domain.PopupParams{ModelID: "I1", GroupID: "G1"}

	res, err := rig.harness.StartWith(ctx, commands.FlowIncludeAllForGroup, commands.NewIncludeAllPopupState(params))
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressProcessed, res.Progress)

	// N3 has no node in the instance
	if diff := cmp.Diff([]string{"N1", "N2"}, rig.members(t, "I1", "G1")); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, rig.rec.Opened())
	assert.Equal(t, 1, rig.rec.Depth())
	assert.Len(t, rig.events, 2)

	// a second run changes nothing and leaves no trace
	_, err = rig.harness.StartWith(ctx, commands.FlowIncludeAllForGroup, commands.NewIncludeAllPopupState(params))
	require.NoError(t, err)
	assert.Equal(t, 2, rig.rec.Committed())
	assert.Equal(t, 1, rig.rec.Depth())
	assert.Len(t, rig.events, 2)

	require.NoError(t, rig.rec.Undo(ctx))
	assert.Empty(t, rig.members(t, "I1", "G1"), "one undo reverts every insertion")
}

func TestIncludeAll_FailureRollsBack(t *testing.T) {
	rig := newRigWith(t, failOn("AddGroupMember", 2))
	ctx := context.Background()
	params := domain.PopupParams{ModelID: "I1", GroupID: "G1"}

	_, err := rig.harness.StartWith(ctx, commands.FlowIncludeAllForGroup, commands.NewIncludeAllPopupState(params))
	assert.ErrorIs(t, err, errStorage)

	assert.Empty(t, rig.members(t, "I1", "G1"), "N1 was added then rolled back")
	assert.Equal(t, 0, rig.rec.Depth())
	assert.Empty(t, rig.events)
	assert.Equal(t, 1, rig.rec.Aborted())
	assert.Equal(t, 0, rig.rec.Committed())
	_, pending := rig.harness.Pending()
	assert.False(t, pending)
}

func TestIncludeAll_PickGroupWithMouse(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	res, err := rig.harness.Start(ctx, commands.FlowIncludeAllForGroup)
	require.NoError(t, err)
	require.Equal(t, domain.ProgressInstallMouseMode, res.Progress)
	mode, _ := rig.mouse.Active()
	assert.Equal(t, domain.ModePickGroup, mode.Name)

	res, err = rig.harness.DeliverClick(ctx, domain.Point{X: 302, Y: 198})
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressDone, res.Progress)
	assert.Equal(t, "G1", res.State.(*commands.IncludeAllState).Group())
	assert.ElementsMatch(t, []string{"N1", "N2"}, rig.members(t, "I1", "G1"))
}

func TestIncludeAll_ClickOutsideAnyGroup(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()

	_, err := rig.harness.Start(ctx, commands.FlowIncludeAllForGroup)
	require.NoError(t, err)

	res, err := rig.harness.DeliverClick(ctx, domain.Point{X: 900, Y: 900})
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressDone, res.Progress)
	assert.Equal(t, 0, rig.rec.Opened())
}

func TestIncludeAll_PickGroupNeedsResolver(t *testing.T) {
	rig := newRig(t)
	rig.env.Selection = nil
	ctx := context.Background()

	_, err := rig.harness.Start(ctx, commands.FlowIncludeAllForGroup)
	require.NoError(t, err)

	_, err = rig.harness.DeliverClick(ctx, domain.Point{X: 30, Y: 30})
	assert.ErrorIs(t, err, commands.ErrNoSelectionResolver)
	assert.Equal(t, 0, rig.rec.Opened())
}

func TestIncludeAll_EnabledOnlyInInstance(t *testing.T) {
	rig := newRig(t)
	assert.Contains(t, rig.harness.Enabled(domain.Selection{}), commands.FlowIncludeAllForGroup)

	require.NoError(t, rig.model.SetCurrent("root"))
	assert.NotContains(t, rig.harness.Enabled(domain.Selection{}), commands.FlowIncludeAllForGroup)
}

func TestRegister_Twice(t *testing.T) {
	reg := runtime.NewRegistry()
	require.NoError(t, commands.Register(reg))
	assert.Error(t, commands.Register(reg))
	assert.Equal(t, []string{
		commands.FlowAddNote,
		commands.FlowAddToSubGroup,
		commands.FlowCancelAdd,
		commands.FlowIncludeAllForGroup,
	}, reg.Names())
}

func TestStartPopup(t *testing.T) {
	rig := newRig(t)
	ctx := context.Background()
	sel := domain.Selection{ModelID: "I1"}

	res, err := rig.harness.StartPopup(ctx, commands.FlowIncludeAllForGroup, sel, domain.PopupParams{ModelID: "I1", GroupID: "G1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressProcessed, res.Progress)

	_, err = rig.harness.StartPopup(ctx, commands.FlowIncludeAllForGroup, sel, domain.PopupParams{ModelID: "root", GroupID: "G1"})
	assert.ErrorIs(t, err, runtime.ErrNotAvailable, "root models have nothing to include from")

	_, err = rig.harness.StartPopup(ctx, commands.FlowAddNote, sel, domain.PopupParams{ModelID: "I1"})
	assert.ErrorIs(t, err, runtime.ErrNotAvailable, "add_note has no context-menu entry")
}
