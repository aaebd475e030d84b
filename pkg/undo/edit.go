package undo

import (
	"fmt"

	"github.com/aretw0/pathflow/pkg/domain"
)

// Edit is one reversible change.
type Edit interface {
	Undo() error
	Redo() error
	Description() string
}

// Reverter applies and reverts the deltas a model produced.
type Reverter interface {
	Revert(delta domain.Delta) error
	Reapply(delta domain.Delta) error
}

// DeltaEdit wraps a model delta into an Edit. The revert logic stays in the model.
type DeltaEdit struct {
	model Reverter
	delta domain.Delta
}

// NewDeltaEdit wraps delta so it can be recorded in a transaction.
func NewDeltaEdit(model Reverter, delta domain.Delta) *DeltaEdit {
	return &DeltaEdit{model: model, delta: delta}
}

// Delta returns the wrapped delta.
func (e *DeltaEdit) Delta() domain.Delta {
	return e.delta
}

func (e *DeltaEdit) Undo() error {
	if err := e.model.Revert(e.delta); err != nil {
		return fmt.Errorf("failed to revert %s: %w", e.delta.DeltaKind(), err)
	}
	return nil
}

func (e *DeltaEdit) Redo() error {
	if err := e.model.Reapply(e.delta); err != nil {
		return fmt.Errorf("failed to reapply %s: %w", e.delta.DeltaKind(), err)
	}
	return nil
}

func (e *DeltaEdit) Description() string {
	return fmt.Sprintf("%s in %s", e.delta.DeltaKind(), e.delta.Model())
}
