package domain

import "fmt"

// Progress tags a CommandResult.
type Progress int

const (
	// ProgressKeepProcessing asks the harness to run the next step immediately.
	ProgressKeepProcessing Progress = iota
	// ProgressInstallMouseMode suspends the flow until a click arrives.
	ProgressInstallMouseMode
	// ProgressHaveDialog suspends the flow until a dialog answer arrives.
	ProgressHaveDialog
	// ProgressDone is the normal terminal state.
	ProgressDone
	// ProgressProcessed is the terminal state of popup-invoked flows.
	ProgressProcessed
	// ProgressUserCancel is the terminal state reached when the user backs out.
	ProgressUserCancel
)

func (p Progress) String() string {
	switch p {
	case ProgressKeepProcessing:
		return "keep_processing"
	case ProgressInstallMouseMode:
		return "install_mouse_mode"
	case ProgressHaveDialog:
		return "have_dialog"
	case ProgressDone:
		return "done"
	case ProgressProcessed:
		return "processed"
	case ProgressUserCancel:
		return "user_cancel"
	default:
		return fmt.Sprintf("progress(%d)", int(p))
	}
}

// Terminal reports whether the flow instance is finished.
func (p Progress) Terminal() bool {
	return p == ProgressDone || p == ProgressProcessed || p == ProgressUserCancel
}

// Suspends reports whether the flow waits for external input.
func (p Progress) Suspends() bool {
	return p == ProgressInstallMouseMode || p == ProgressHaveDialog
}

// CommandResult is the unit of exchange between a step and the harness.
// It carries the live state so the harness can hand it back on resume.
type CommandResult struct {
	Progress Progress
	State    StepState

	// Dialog is set when Progress is ProgressHaveDialog.
	Dialog *DialogRequest

	// Mode is set when Progress is ProgressInstallMouseMode.
	Mode *MouseMode
}

// Continue loops again without waiting.
func Continue(st StepState) CommandResult {
	return CommandResult{Progress: ProgressKeepProcessing, State: st}
}

// AwaitDialog suspends on the given dialog.
func AwaitDialog(st StepState, req DialogRequest) CommandResult {
	return CommandResult{Progress: ProgressHaveDialog, State: st, Dialog: &req}
}

// AwaitClick suspends on the given mouse mode.
func AwaitClick(st StepState, mode MouseMode) CommandResult {
	return CommandResult{Progress: ProgressInstallMouseMode, State: st, Mode: &mode}
}

// Finish ends the flow.
func Finish(st StepState) CommandResult {
	return CommandResult{Progress: ProgressDone, State: st}
}

// Handled ends a popup-invoked flow.
func Handled(st StepState) CommandResult {
	return CommandResult{Progress: ProgressProcessed, State: st}
}

// Cancelled ends the flow after the user backed out.
func Cancelled(st StepState) CommandResult {
	return CommandResult{Progress: ProgressUserCancel, State: st}
}

// Validate checks that a suspension carries exactly the descriptor it needs.
func (r CommandResult) Validate() error {
	if r.State == nil {
		return ErrMalformedResult
	}
	switch r.Progress {
	case ProgressHaveDialog:
		if r.Dialog == nil || r.Mode != nil {
			return ErrMalformedResult
		}
	case ProgressInstallMouseMode:
		if r.Mode == nil || r.Dialog != nil {
			return ErrMalformedResult
		}
	}
	return nil
}
