package ports

import (
	"context"

	"github.com/aretw0/pathflow/pkg/domain"
)

// DialogPresenter shows modal dialogs. The answer comes back later through the harness.
type DialogPresenter interface {
	Present(ctx context.Context, req domain.DialogRequest) error
}

// InteractionManager owns the mouse-interaction mode of the canvas.
// At most one mode is installed at a time.
type InteractionManager interface {
	// Install activates the mode, replacing any previous one.
	Install(ctx context.Context, mode domain.MouseMode) error

	// Reset discards every installed mode.
	Reset(ctx context.Context) error

	// Active returns the installed mode, if any.
	Active() (domain.MouseMode, bool)
}

// SelectionResolver maps a canvas interaction to a domain object.
type SelectionResolver interface {
	// GroupAt returns the group whose region contains p in the model.
	GroupAt(modelID string, p domain.Point) (string, bool)
}

// ChangePublisher fans committed change events out of the process.
type ChangePublisher interface {
	Publish(ctx context.Context, events []domain.ChangeEvent) error
}
