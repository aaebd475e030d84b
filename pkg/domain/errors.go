package domain

import (
	"errors"
	"fmt"
)

// ErrContractViolation is matched by every flow-wiring bug. These errors are
// never retried: the current invocation is aborted.
var ErrContractViolation = errors.New("contract violation")

var (
	// ErrUnknownStep is returned when a flow is asked to run a step it does not declare.
	ErrUnknownStep = errors.New("unknown step")
	// ErrNoPriorResult is returned when a flow without an initial state is advanced from scratch.
	ErrNoPriorResult = errors.New("flow requires a prior result")
	// ErrCapabilityMismatch is returned when a resume does not match the state's capabilities.
	ErrCapabilityMismatch = errors.New("resume does not match state capabilities")
	// ErrNoPendingResume is returned when a resume arrives while nothing is suspended.
	ErrNoPendingResume = errors.New("no suspended flow to resume")
	// ErrMalformedResult is returned when a suspension lacks its descriptor.
	ErrMalformedResult = errors.New("malformed command result")
	// ErrTransactionFinished is returned when a transaction is used after Finish.
	ErrTransactionFinished = errors.New("transaction already finished")
	// ErrUnknownFlow is returned when no flow is registered under a name.
	ErrUnknownFlow = errors.New("unknown flow")
	// ErrForeignState is returned when a flow is handed a state created by another flow.
	ErrForeignState = errors.New("state belongs to another flow")
	// ErrMissingPayload is returned when a step runs before the data it consumes was supplied.
	ErrMissingPayload = errors.New("step payload missing")
)

var (
	// ErrGroupNotFound is returned when a group is missing from a model.
	ErrGroupNotFound = errors.New("group not found")
	// ErrModelNotFound is returned when a model id is unknown.
	ErrModelNotFound = errors.New("model not found")
	// ErrNodeNotFound is returned when a node is missing from a model.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNothingToUndo is returned by Undo on an empty stack.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned by Redo on an empty stack.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// ContractViolation pins a wiring bug to the flow and step where it was detected.
type ContractViolation struct {
	Flow string
	Step StepID
	Err  error
}

func (e *ContractViolation) Error() string {
	if e.Flow == "" {
		return fmt.Sprintf("contract violation: %v", e.Err)
	}
	if e.Step != "" {
		return fmt.Sprintf("contract violation in flow '%s' at step '%s': %v", e.Flow, e.Step, e.Err)
	}
	return fmt.Sprintf("contract violation in flow '%s': %v", e.Flow, e.Err)
}

func (e *ContractViolation) Unwrap() error {
	return e.Err
}

// Is makes every ContractViolation match ErrContractViolation.
func (e *ContractViolation) Is(target error) bool {
	return target == ErrContractViolation
}

// Violation builds a ContractViolation.
func Violation(flow string, step StepID, err error) error {
	return &ContractViolation{Flow: flow, Step: step, Err: err}
}
