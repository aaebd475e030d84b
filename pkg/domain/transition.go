package domain

// StepKind classifies what a step does, for validation and visualization.
type StepKind string

const (
	StepSync   StepKind = "sync"   // completes synchronously and continues
	StepDialog StepKind = "dialog" // suspends on a dialog
	StepMouse  StepKind = "mouse"  // suspends on a mouse mode
	StepCommit StepKind = "commit" // opens and finishes a transaction, terminal
	StepFinal  StepKind = "final"  // terminal without edits
)

// StepInfo declares one step of a flow and the steps it may hand over to.
type StepInfo struct {
	ID    StepID
	Kind  StepKind
	Next  []StepID
	Entry bool // true for steps a fresh or preloaded state may start at
}
