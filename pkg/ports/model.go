package ports

import "github.com/aretw0/pathflow/pkg/domain"

// Model is the access context the flows read from and write through.
// Every mutation returns the reversible delta it applied, or nil when nothing changed.
type Model interface {
	// CurrentModelID returns the model the user is working on ("" if none).
	CurrentModelID() string

	// ParentModelID returns the parent of an instance model. Root models have none.
	ParentModelID(modelID string) (string, bool)

	// HasNode reports whether the model contains the node.
	HasNode(modelID, nodeID string) bool

	// Group returns a snapshot of a group of the model.
	Group(modelID, groupID string) (domain.GroupView, bool)

	// NextNoteID reserves a fresh identifier for a new note.
	NextNoteID(modelID string) string

	// AddGroupMember records memberID in the group. Adding a present member returns nil.
	AddGroupMember(modelID, groupID, memberID string) (*domain.GroupMembershipChange, error)

	// AddNote inserts a note into the model.
	AddNote(modelID string, note domain.Note) (*domain.NoteChange, error)

	// SetNoteProperties stores the layout of a note. Identical properties return nil.
	SetNoteProperties(modelID, noteID string, props domain.NoteProperties) (*domain.LayoutChange, error)

	// Revert undoes a delta previously returned by this model.
	Revert(delta domain.Delta) error

	// Reapply redoes a delta previously reverted.
	Reapply(delta domain.Delta) error
}
