package runtime

import (
	"log/slog"

	"github.com/aretw0/pathflow/internal/logging"
	"github.com/aretw0/pathflow/pkg/ports"
	"github.com/aretw0/pathflow/pkg/undo"
)

// Env is the explicit context handed to every flow and step.
// It replaces any ambient application state.
type Env struct {
	Model     ports.Model
	Undo      *undo.Recorder
	Mouse     ports.InteractionManager
	Selection ports.SelectionResolver

	// GridUnit is the snapping unit applied to every delivered click.
	GridUnit float64

	Logger *slog.Logger
}

// Log returns the env logger, or a no-op one.
func (e *Env) Log() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}
