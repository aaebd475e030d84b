// Package script replays recorded user actions against a flow harness, headless.
//
// A script is a YAML file:
//
//	model: models.yaml
//	steps:
//	  - flow: add_note
//	    expect: {progress: have_dialog}
//	  - dialog: {fields: {name: Checkpoint}}
//	  - click: {x: 103, y: 57}
//	    expect: {progress: done}
//	  - popup: {flow: include_all_for_group, params: {model_id: I1, group_id: G1}}
//	  - undo: true
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/pathflow/internal/dto"
	"github.com/aretw0/pathflow/internal/logging"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyStep      = errors.New("step has no action")
	ErrAmbiguousStep  = errors.New("step has more than one action")
	ErrExpectation    = errors.New("expectation not met")
	ErrUnexpectedPass = errors.New("step succeeded but an error was expected")
)

// Harness is the part of the flow harness a script drives.
type Harness interface {
	Start(ctx context.Context, name string) (domain.CommandResult, error)
	StartPopup(ctx context.Context, name string, sel domain.Selection, params domain.PopupParams) (domain.CommandResult, error)
	DeliverDialog(ctx context.Context, result domain.DialogResult) (domain.CommandResult, error)
	DeliverClick(ctx context.Context, raw domain.Point) (domain.CommandResult, error)
	Abandon(ctx context.Context) bool
}

// History is the undo stack a script can walk.
type History interface {
	Undo(ctx context.Context) error
	Redo(ctx context.Context) error
}

// Script is a decoded replay script.
type Script struct {
	// Model is the fixture path, resolved against the script location.
	Model string
	Steps []dto.ScriptStep
}

// Load reads and decodes a script file.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Model != "" && !filepath.IsAbs(s.Model) {
		s.Model = filepath.Join(filepath.Dir(path), s.Model)
	}
	return s, nil
}

// Decode parses a YAML script.
func Decode(r io.Reader) (*Script, error) {
	var raw dto.ScriptFile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	s := &Script{Model: raw.Model, Steps: make([]dto.ScriptStep, 0, len(raw.Steps))}
	for i, m := range raw.Steps {
		step, err := decodeStep(m)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		s.Steps = append(s.Steps, step)
	}
	return s, nil
}

func decodeStep(m map[string]any) (dto.ScriptStep, error) {
	var step dto.ScriptStep
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &step,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return step, err
	}
	if err := dec.Decode(m); err != nil {
		return step, err
	}

	switch n := countActions(step); {
	case n == 0:
		return step, ErrEmptyStep
	case n > 1:
		return step, ErrAmbiguousStep
	}
	return step, nil
}

func countActions(s dto.ScriptStep) int {
	n := 0
	for _, set := range []bool{s.Flow != "", s.Popup != nil, s.Dialog != nil, s.Click != nil, s.Cancel, s.Undo, s.Redo} {
		if set {
			n++
		}
	}
	return n
}

// Outcome is what one step produced.
type Outcome struct {
	Index    int
	Action   string
	Progress string
	Err      error
}

// Runner replays scripts.
type Runner struct {
	harness Harness
	history History
	logger  *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner over the harness and its undo history.
func NewRunner(h Harness, history History, opts ...Option) *Runner {
	r := &Runner{
		harness: h,
		history: history,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every step in order. It stops at the first step whose outcome
// does not match its expectation; an error without expectation counts as a
// mismatch. The outcomes gathered so far are returned either way.
func (r *Runner) Run(ctx context.Context, s *Script) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(s.Steps))
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		out := r.exec(ctx, step)
		out.Index = i + 1
		outcomes = append(outcomes, out)
		r.logger.Debug("script step", "index", out.Index, "action", out.Action, "progress", out.Progress, "err", out.Err)

		if err := check(step.Expect, out); err != nil {
			return outcomes, fmt.Errorf("step %d (%s): %w", out.Index, out.Action, err)
		}
	}
	return outcomes, nil
}

func (r *Runner) exec(ctx context.Context, step dto.ScriptStep) Outcome {
	var (
		res    domain.CommandResult
		err    error
		action string
	)

	switch {
	case step.Flow != "":
		action = "flow " + step.Flow
		res, err = r.harness.Start(ctx, step.Flow)
	case step.Popup != nil:
		action = "popup " + step.Popup.Flow
		sel := domain.Selection{ModelID: step.Popup.Params.ModelID}
		res, err = r.harness.StartPopup(ctx, step.Popup.Flow, sel, step.Popup.Params)
	case step.Dialog != nil:
		action = "dialog"
		res, err = r.harness.DeliverDialog(ctx, domain.DialogResult{
			Submitted: !step.Dialog.Cancelled,
			Fields:    step.Dialog.Fields,
		})
	case step.Click != nil:
		action = fmt.Sprintf("click %v,%v", step.Click.X, step.Click.Y)
		res, err = r.harness.DeliverClick(ctx, *step.Click)
	case step.Cancel:
		action = "cancel"
		if !r.harness.Abandon(ctx) {
			return Outcome{Action: action, Progress: "idle"}
		}
		return Outcome{Action: action, Progress: domain.ProgressUserCancel.String()}
	case step.Undo:
		action = "undo"
		return Outcome{Action: action, Err: r.history.Undo(ctx)}
	case step.Redo:
		action = "redo"
		return Outcome{Action: action, Err: r.history.Redo(ctx)}
	}

	if err != nil {
		return Outcome{Action: action, Err: err}
	}
	return Outcome{Action: action, Progress: res.Progress.String()}
}

func check(want *dto.Expectation, got Outcome) error {
	if want == nil {
		return got.Err
	}
	if want.Error != "" {
		if got.Err == nil {
			return ErrUnexpectedPass
		}
		if !strings.Contains(got.Err.Error(), want.Error) {
			return fmt.Errorf("%w: error %q does not mention %q", ErrExpectation, got.Err, want.Error)
		}
		return nil
	}
	if got.Err != nil {
		return got.Err
	}
	if want.Progress != "" && want.Progress != got.Progress {
		return fmt.Errorf("%w: progress %s, want %s", ErrExpectation, got.Progress, want.Progress)
	}
	return nil
}
