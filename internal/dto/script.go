package dto

import (
	"github.com/aretw0/pathflow/pkg/domain"
)

// ScriptFile is the raw shape of a replay script.
// Steps stay untyped until each one is decoded into a ScriptStep.
type ScriptFile struct {
	Model string           `yaml:"model" json:"model"`
	Steps []map[string]any `yaml:"steps" json:"steps"`
}

// ScriptStep is one scripted user action. Exactly one action key is set.
// It uses "mapstructure" tags to match the YAML keys.
type ScriptStep struct {
	Flow   string        `json:"flow,omitempty" mapstructure:"flow"`
	Popup  *PopupStep    `json:"popup,omitempty" mapstructure:"popup"`
	Dialog *DialogStep   `json:"dialog,omitempty" mapstructure:"dialog"`
	Click  *domain.Point `json:"click,omitempty" mapstructure:"click"`
	Cancel bool          `json:"cancel,omitempty" mapstructure:"cancel"`
	Undo   bool          `json:"undo,omitempty" mapstructure:"undo"`
	Redo   bool          `json:"redo,omitempty" mapstructure:"redo"`
	Expect *Expectation  `json:"expect,omitempty" mapstructure:"expect"`
}

// PopupStep invokes a flow from a context menu.
type PopupStep struct {
	Flow   string             `json:"flow" mapstructure:"flow"`
	Params domain.PopupParams `json:"params" mapstructure:"params"`
}

// DialogStep closes the open dialog. Cancelled dismisses it.
type DialogStep struct {
	Cancelled bool           `json:"cancelled,omitempty" mapstructure:"cancelled"`
	Fields    map[string]any `json:"fields,omitempty" mapstructure:"fields"`
}

// Expectation checks the outcome of a step.
type Expectation struct {
	Progress string `json:"progress,omitempty" mapstructure:"progress"`
	Error    string `json:"error,omitempty" mapstructure:"error"`
}
