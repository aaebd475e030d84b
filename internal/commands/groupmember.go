package commands

import (
	"context"
	"fmt"

	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/undo"
)

// AddMemberToGroup records memberID in a group of the model.
//
// When txn is non-nil the change is appended to it and the caller keeps
// ownership: the helper never finishes it. When txn is nil the helper opens its
// own transaction and closes it before returning: committed on success, rolled
// back on error.
//
// Adding a member that is already present is a success that records nothing.
func AddMemberToGroup(ctx context.Context, env *runtime.Env, txn *undo.Transaction, modelID, groupID, memberID string) (ok bool, err error) {
	if txn == nil {
		txn = env.Undo.Open(fmt.Sprintf("Add %s to %s", memberID, groupID))
		defer func() {
			finishOnExit(ctx, txn, &err)
			if err != nil {
				ok = false
			}
		}()
	}

	if _, found := env.Model.Group(modelID, groupID); !found {
		return false, fmt.Errorf("group '%s' in model '%s': %w", groupID, modelID, domain.ErrGroupNotFound)
	}

	change, err := env.Model.AddGroupMember(modelID, groupID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to add '%s' to group '%s': %w", memberID, groupID, err)
	}
	if change == nil {
		env.Log().Debug("member already in group", "model", modelID, "group", groupID, "member", memberID)
		return true, nil
	}

	if err := txn.AddEdit(undo.NewDeltaEdit(env.Model, *change)); err != nil {
		return false, err
	}
	if err := txn.AddEvent(domain.ChangeEvent{
		ModelID:     modelID,
		Kind:        domain.ChangeModel,
		Description: fmt.Sprintf("%s added to %s", memberID, groupID),
	}); err != nil {
		return false, err
	}
	return true, nil
}
