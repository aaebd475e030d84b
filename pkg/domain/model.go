package domain

// Note is an annotation placed on the canvas.
type Note struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Text        string `json:"text,omitempty" yaml:"text,omitempty"`
	Interactive bool   `json:"interactive,omitempty" yaml:"interactive,omitempty"`
}

// NoteDraft holds what the note creation dialog collected.
type NoteDraft struct {
	Name            string `json:"name" mapstructure:"name"`
	Text            string `json:"text" mapstructure:"text"`
	Interactive     bool   `json:"interactive" mapstructure:"interactive"`
	TextColor       string `json:"text_color,omitempty" mapstructure:"text_color"`
	BackgroundColor string `json:"background_color,omitempty" mapstructure:"background_color"`
}

// NoteProperties is the layout record of a note.
type NoteProperties struct {
	Location        Point  `json:"location" yaml:"location"`
	TextColor       string `json:"text_color,omitempty" yaml:"text_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty" yaml:"background_color,omitempty"`
}

// GroupView is a read-only snapshot of a group.
type GroupView struct {
	ID       string
	ParentID string // empty for top-level groups
	Members  []string
}

// HasMember reports whether id is in the group.
func (g GroupView) HasMember(id string) bool {
	for _, m := range g.Members {
		if m == id {
			return true
		}
	}
	return false
}

// DeltaKind tags a Delta.
type DeltaKind string

const (
	DeltaGroupMembership DeltaKind = "group_membership"
	DeltaNote            DeltaKind = "note"
	DeltaLayout          DeltaKind = "layout"
)

// Delta is a reversible change produced by the model layer. The model knows how
// to revert and reapply its own deltas.
type Delta interface {
	DeltaKind() DeltaKind
	Model() string
}

// GroupMembershipChange records one member's insertion into a group of a model.
type GroupMembershipChange struct {
	ModelID  string `json:"model_id"`
	GroupID  string `json:"group_id"`
	MemberID string `json:"member_id"`
}

func (c GroupMembershipChange) DeltaKind() DeltaKind { return DeltaGroupMembership }
func (c GroupMembershipChange) Model() string        { return c.ModelID }

// NoteChange records a note being added to a model.
type NoteChange struct {
	ModelID string `json:"model_id"`
	Note    Note   `json:"note"`
}

func (c NoteChange) DeltaKind() DeltaKind { return DeltaNote }
func (c NoteChange) Model() string        { return c.ModelID }

// LayoutChange records the layout properties of a note. Before is nil when the
// note had no layout entry.
type LayoutChange struct {
	ModelID string          `json:"model_id"`
	NoteID  string          `json:"note_id"`
	Before  *NoteProperties `json:"before,omitempty"`
	After   NoteProperties  `json:"after"`
}

func (c LayoutChange) DeltaKind() DeltaKind { return DeltaLayout }
func (c LayoutChange) Model() string        { return c.ModelID }
