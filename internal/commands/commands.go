// Package commands implements the "add" family of editor commands as
// resumable step flows.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/undo"
)

// Command names.
const (
	FlowAddNote            = "add_note"
	FlowAddToSubGroup      = "add_to_subgroup"
	FlowCancelAdd          = "cancel_add"
	FlowIncludeAllForGroup = "include_all_for_group"
)

var (
	// ErrNoCurrentModel is returned when a command needs a model and none is open.
	ErrNoCurrentModel = errors.New("no current model")
	// ErrNoSelectionResolver is returned when a flow has to resolve a click and
	// the host supplied no resolver.
	ErrNoSelectionResolver = errors.New("no selection resolver configured")
	// ErrNotInstance is returned when a command needs a model that has a parent.
	ErrNotInstance = errors.New("model is not an instance")
	// ErrNotSubgroup is returned when the target group has no parent group.
	ErrNotSubgroup = errors.New("group is not a subgroup")
)

// Register adds every command of the package to the registry.
func Register(reg *runtime.Registry) error {
	for _, f := range []runtime.Flow{
		AddNoteFlow{},
		AddToSubGroupFlow{},
		CancelAddFlow{},
		IncludeAllForGroupFlow{},
	} {
		if err := reg.Register(f); err != nil {
			return err
		}
	}
	return nil
}

// finishOnExit commits txn when *err is nil and rolls it back otherwise. A failed
// step leaves no trace in the model or the history.
func finishOnExit(ctx context.Context, txn *undo.Transaction, err *error) {
	if *err != nil {
		if aerr := txn.Abort(ctx); aerr != nil {
			*err = errors.Join(*err, aerr)
		}
		return
	}
	*err = txn.Finish(ctx)
}

func unknownStep(flow string, st domain.StepState) error {
	return domain.Violation(flow, st.CurrentStep(), domain.ErrUnknownStep)
}

func foreignState(flow string, st domain.StepState) error {
	return domain.Violation(flow, st.CurrentStep(), fmt.Errorf("%w: got %T", domain.ErrForeignState, st))
}
