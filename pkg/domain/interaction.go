package domain

import (
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
)

// DialogKind identifies which dialog the host must build.
type DialogKind string

const (
	DialogNoteCreation DialogKind = "note_creation"
)

// DialogRequest describes a modal dialog the host must show before the flow can continue.
type DialogRequest struct {
	Kind DialogKind     `json:"kind" yaml:"kind"`
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// DialogResult is the answer delivered when the dialog closes.
type DialogResult struct {
	// Submitted is false when the dialog was dismissed.
	Submitted bool           `json:"submitted" yaml:"submitted"`
	Fields    map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// HasResults reports whether the user confirmed the dialog.
func (r DialogResult) HasResults() bool {
	return r.Submitted
}

// Decode maps the user-entered fields onto out.
func (r DialogResult) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create dialog decoder: %w", err)
	}
	if err := dec.Decode(r.Fields); err != nil {
		return fmt.Errorf("failed to decode dialog fields: %w", err)
	}
	return nil
}

// ModeName identifies a mouse-interaction mode.
type ModeName string

const (
	ModeAddNote   ModeName = "add_note"
	ModePickGroup ModeName = "pick_group"
)

// IsAddMode reports whether the mode belongs to the add family (cancellable by cancel_add).
func (m ModeName) IsAddMode() bool {
	return m == ModeAddNote || m == ModePickGroup
}

// MouseMode is a declarative request to install an interaction mode.
type MouseMode struct {
	Name ModeName `json:"name"`

	// Floater is what the canvas draws under the pointer while the mode is active.
	Floater any `json:"floater,omitempty"`
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Snap rounds the point to the nearest multiple of unit. A non-positive unit leaves it unchanged.
func (p Point) Snap(unit float64) Point {
	if unit <= 0 {
		return p
	}
	return Point{
		X: math.Round(p.X/unit) * unit,
		Y: math.Round(p.Y/unit) * unit,
	}
}

// Rect is an axis-aligned canvas region.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Contains reports whether p lies inside the rectangle (edges included).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Selection is the read-only view of what the user has selected.
type Selection struct {
	ModelID  string   `json:"model_id,omitempty"`
	NodeIDs  []string `json:"node_ids,omitempty"`
	GroupIDs []string `json:"group_ids,omitempty"`
}

// PopupParams carries the element a context menu was opened on.
type PopupParams struct {
	ModelID string `json:"model_id" yaml:"model_id" mapstructure:"model_id"`
	NodeID  string `json:"node_id,omitempty" yaml:"node_id,omitempty" mapstructure:"node_id"`
	GroupID string `json:"group_id,omitempty" yaml:"group_id,omitempty" mapstructure:"group_id"`
}
