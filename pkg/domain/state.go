package domain

// StepID names one step of a flow. Each flow declares its closed set of ids as
// typed constants and dispatches on them with a single switch.
type StepID string

// StepState is the resumable record of one flow invocation.
type StepState interface {
	// FlowName returns the name of the flow that owns the state.
	FlowName() string

	// CurrentStep returns the id of the step to run next.
	CurrentStep() StepID
}

// DialogCapable is implemented by states that suspend on a modal dialog.
type DialogCapable interface {
	StepState
	AcceptDialog(result DialogResult)
}

// ClickCapable is implemented by states that suspend on a mouse-interaction mode.
// The point handed in is already snapped to the grid.
type ClickCapable interface {
	StepState
	AcceptClick(p Point)
}

// PopupCapable is implemented by states that are created from a context menu.
type PopupCapable interface {
	StepState
	SetPopupParams(params PopupParams)
}

// StepBase carries the bookkeeping shared by every concrete step state.
// Embed it and let each step call Goto before returning.
type StepBase struct {
	flow string
	next StepID
}

// NewStepBase creates the base for a state of the given flow starting at first.
func NewStepBase(flow string, first StepID) StepBase {
	return StepBase{flow: flow, next: first}
}

// FlowName returns the owning flow.
func (b *StepBase) FlowName() string {
	return b.flow
}

// CurrentStep returns the next step to execute.
func (b *StepBase) CurrentStep() StepID {
	return b.next
}

// Goto sets the step that runs after the current one.
func (b *StepBase) Goto(id StepID) {
	b.next = id
}
