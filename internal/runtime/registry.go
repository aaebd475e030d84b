package runtime

import (
	"fmt"

	"github.com/aretw0/pathflow/internal/validator"
	"github.com/aretw0/pathflow/pkg/domain"
)

// Registry maps command names to flows.
type Registry struct {
	flows map[string]Flow
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]Flow)}
}

// Register validates the flow's step graph and adds it.
func (r *Registry) Register(f Flow) error {
	name := f.Name()
	if _, exists := r.flows[name]; exists {
		return fmt.Errorf("flow '%s' already registered", name)
	}
	if err := validator.ValidateFlow(name, f.Steps()); err != nil {
		return fmt.Errorf("invalid flow: %w", err)
	}
	r.flows[name] = f
	r.order = append(r.order, name)
	return nil
}

// Get returns the flow registered under name.
func (r *Registry) Get(name string) (Flow, error) {
	f, ok := r.flows[name]
	if !ok {
		return nil, domain.Violation(name, "", domain.ErrUnknownFlow)
	}
	return f, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Flows returns the registered flows in registration order.
func (r *Registry) Flows() []Flow {
	out := make([]Flow, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.flows[name])
	}
	return out
}
