package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/pathflow"
	"github.com/aretw0/pathflow/internal/config"
	"github.com/aretw0/pathflow/pkg/adapters/memory"
	"github.com/aretw0/pathflow/pkg/observability"
)

// newSession loads the model fixture and builds a session with the configured
// limits, logging hooks and any extra options.
func newSession(cfg config.Config, modelPath string, logger *slog.Logger, extra ...pathflow.Option) (*pathflow.Session, *memory.Model, error) {
	if modelPath == "" {
		return nil, nil, fmt.Errorf("no model fixture: set 'model' in the config or pass --model")
	}
	model, err := memory.LoadModel(modelPath)
	if err != nil {
		return nil, nil, err
	}

	opts := []pathflow.Option{
		pathflow.WithLogger(logger),
		pathflow.WithGridUnit(cfg.GridUnit),
		pathflow.WithUndoLimit(cfg.UndoLimit),
		pathflow.WithLifecycleHooks(observability.LogHooks(logger)),
	}
	s, err := pathflow.New(model, append(opts, extra...)...)
	if err != nil {
		return nil, nil, err
	}
	return s, model, nil
}
