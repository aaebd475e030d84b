package ports

import (
	"testing"

	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunModelContract runs a suite of tests to verify that a Model implementation
// adheres to the defined interface contract.
//
// The model must contain a root model "root" with node "N1" and group "G1", and an
// instance "inst" (parent "root") containing node "N1" and a group "G1" without members.
func RunModelContract(t *testing.T, model Model) {
	t.Helper()

	t.Run("Parent", func(t *testing.T) {
		parent, ok := model.ParentModelID("inst")
		require.True(t, ok)
		assert.Equal(t, "root", parent)

		_, ok = model.ParentModelID("root")
		assert.False(t, ok, "root models have no parent")
	})

	t.Run("Membership is idempotent", func(t *testing.T) {
		change, err := model.AddGroupMember("inst", "G1", "N1")
		require.NoError(t, err)
		require.NotNil(t, change)
		assert.Equal(t, domain.GroupMembershipChange{ModelID: "inst", GroupID: "G1", MemberID: "N1"}, *change)

		again, err := model.AddGroupMember("inst", "G1", "N1")
		require.NoError(t, err)
		assert.Nil(t, again, "adding a present member must not produce a delta")

		require.NoError(t, model.Revert(*change))
		g, ok := model.Group("inst", "G1")
		require.True(t, ok)
		assert.False(t, g.HasMember("N1"))

		require.NoError(t, model.Reapply(*change))
		g, _ = model.Group("inst", "G1")
		assert.True(t, g.HasMember("N1"))
	})

	t.Run("Missing group", func(t *testing.T) {
		_, err := model.AddGroupMember("inst", "missing", "N1")
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	t.Run("Notes and layout", func(t *testing.T) {
		id := model.NextNoteID("root")
		require.NotEmpty(t, id)
		assert.NotEqual(t, id, model.NextNoteID("root"), "note ids are never reused")

		noteChange, err := model.AddNote("root", domain.Note{ID: id, Name: "n"})
		require.NoError(t, err)
		require.NotNil(t, noteChange)

		props := domain.NoteProperties{Location: domain.Point{X: 10, Y: 20}}
		layout, err := model.SetNoteProperties("root", id, props)
		require.NoError(t, err)
		require.NotNil(t, layout)
		assert.Nil(t, layout.Before)

		same, err := model.SetNoteProperties("root", id, props)
		require.NoError(t, err)
		assert.Nil(t, same, "identical layout must not produce a delta")

		require.NoError(t, model.Revert(*layout))
		require.NoError(t, model.Revert(*noteChange))
	})
}
