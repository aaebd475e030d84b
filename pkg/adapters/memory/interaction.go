package memory

import (
	"context"
	"sync"

	"github.com/aretw0/pathflow/pkg/domain"
)

// Interaction implements ports.InteractionManager for headless hosts.
type Interaction struct {
	mu       sync.Mutex
	active   *domain.MouseMode
	installs int
	resets   int
}

// NewInteraction creates a manager with no installed mode.
func NewInteraction() *Interaction {
	return &Interaction{}
}

func (i *Interaction) Install(ctx context.Context, mode domain.MouseMode) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.active = &mode
	i.installs++
	return nil
}

func (i *Interaction) Reset(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.active = nil
	i.resets++
	return nil
}

func (i *Interaction) Active() (domain.MouseMode, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.active == nil {
		return domain.MouseMode{}, false
	}
	return *i.active, true
}

// Installs returns how many modes were installed.
func (i *Interaction) Installs() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.installs
}

// Dialogs implements ports.DialogPresenter by recording every request.
// The answer is delivered separately through the harness.
type Dialogs struct {
	mu        sync.Mutex
	presented []domain.DialogRequest
}

// NewDialogs creates an empty recorder.
func NewDialogs() *Dialogs {
	return &Dialogs{}
}

func (d *Dialogs) Present(ctx context.Context, req domain.DialogRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presented = append(d.presented, req)
	return nil
}

// Presented returns the requests shown so far.
func (d *Dialogs) Presented() []domain.DialogRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.DialogRequest, len(d.presented))
	copy(out, d.presented)
	return out
}
