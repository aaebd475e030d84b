package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeState struct {
	StepBase
}

func TestPoint_Snap(t *testing.T) {
	tests := []struct {
		name string
		in   Point
		unit float64
		want Point
	}{
		{"Scenario grid", Point{X: 103, Y: 57}, 10, Point{X: 100, Y: 60}},
		{"Already aligned", Point{X: 40, Y: 20}, 10, Point{X: 40, Y: 20}},
		{"Half rounds away from zero", Point{X: 15, Y: -15}, 10, Point{X: 20, Y: -20}},
		{"Zero unit is identity", Point{X: 3.3, Y: 4.4}, 0, Point{X: 3.3, Y: 4.4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Snap(tt.unit))
		})
	}
}

func TestProgress_Classification(t *testing.T) {
	assert.False(t, ProgressKeepProcessing.Terminal())
	assert.False(t, ProgressKeepProcessing.Suspends())
	assert.True(t, ProgressHaveDialog.Suspends())
	assert.True(t, ProgressInstallMouseMode.Suspends())
	for _, p := range []Progress{ProgressDone, ProgressProcessed, ProgressUserCancel} {
		assert.True(t, p.Terminal(), p.String())
		assert.False(t, p.Suspends(), p.String())
	}
}

func TestCommandResult_Validate(t *testing.T) {
	st := &fakeState{StepBase: NewStepBase("f", "a")}

	assert.NoError(t, Continue(st).Validate())
	assert.NoError(t, AwaitDialog(st, DialogRequest{Kind: DialogNoteCreation}).Validate())
	assert.NoError(t, AwaitClick(st, MouseMode{Name: ModeAddNote}).Validate())

	assert.ErrorIs(t, CommandResult{Progress: ProgressHaveDialog, State: st}.Validate(), ErrMalformedResult)
	assert.ErrorIs(t, CommandResult{Progress: ProgressInstallMouseMode, State: st}.Validate(), ErrMalformedResult)
	assert.ErrorIs(t, CommandResult{Progress: ProgressDone}.Validate(), ErrMalformedResult)
}

func TestStepBase_Goto(t *testing.T) {
	st := &fakeState{StepBase: NewStepBase("flow", "first")}
	assert.Equal(t, "flow", st.FlowName())
	assert.Equal(t, StepID("first"), st.CurrentStep())

	st.Goto("second")
	assert.Equal(t, StepID("second"), st.CurrentStep())
}

func TestContractViolation_Matching(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Violation("add_note", "bogus", ErrUnknownStep))

	assert.ErrorIs(t, err, ErrContractViolation)
	assert.ErrorIs(t, err, ErrUnknownStep)
	assert.NotErrorIs(t, err, ErrNoPriorResult)

	var cv *ContractViolation
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, "add_note", cv.Flow)
	assert.Equal(t, StepID("bogus"), cv.Step)
	assert.Contains(t, cv.Error(), "step 'bogus'")
}

func TestDialogResult_Decode(t *testing.T) {
	res := DialogResult{
		Submitted: true,
		Fields: map[string]any{
			"name":        "Promoter",
			"text":        "binding site",
			"interactive": "true",
		},
	}

	var draft NoteDraft
	require.NoError(t, res.Decode(&draft))
	assert.True(t, res.HasResults())
	assert.Equal(t, NoteDraft{Name: "Promoter", Text: "binding site", Interactive: true}, draft)
}

func TestGroupView_HasMember(t *testing.T) {
	g := GroupView{ID: "G1", Members: []string{"N1", "N2"}}
	assert.True(t, g.HasMember("N2"))
	assert.False(t, g.HasMember("N3"))
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	assert.True(t, r.Contains(Point{X: 100, Y: 50}))
	assert.False(t, r.Contains(Point{X: 101, Y: 10}))
}
