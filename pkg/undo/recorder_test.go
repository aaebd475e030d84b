package undo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/undo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal records edit calls in order.
type journal struct {
	calls []string
	fail  string
}

type recordingEdit struct {
	name string
	j    *journal
}

func (e *recordingEdit) Undo() error {
	if e.j.fail == "undo:"+e.name {
		return errors.New("boom")
	}
	e.j.calls = append(e.j.calls, "undo:"+e.name)
	return nil
}

func (e *recordingEdit) Redo() error {
	if e.j.fail == "redo:"+e.name {
		return errors.New("boom")
	}
	e.j.calls = append(e.j.calls, "redo:"+e.name)
	return nil
}

func (e *recordingEdit) Description() string { return e.name }

type collectingNotifier struct {
	batches [][]domain.ChangeEvent
}

func (c *collectingNotifier) Notify(ctx context.Context, events []domain.ChangeEvent) {
	c.batches = append(c.batches, events)
}

func TestTransaction_EventsDeferredUntilFinish(t *testing.T) {
	ctx := context.Background()
	n := &collectingNotifier{}
	rec := undo.NewRecorder(undo.WithNotifier(n))
	j := &journal{}

	txn := rec.Open("Add Note")
	require.NoError(t, txn.AddEdit(&recordingEdit{name: "a", j: j}))
	require.NoError(t, txn.AddEvent(domain.ChangeEvent{ModelID: "root", Kind: domain.ChangeModel}))

	assert.Empty(t, n.batches, "events must not be announced before Finish")
	assert.Equal(t, 0, rec.Depth())

	require.NoError(t, txn.Finish(ctx))
	assert.True(t, txn.Finished())
	assert.Equal(t, 1, rec.Depth())
	require.Len(t, n.batches, 1)
	assert.Equal(t, "root", n.batches[0][0].ModelID)
}

func TestTransaction_FinishTwiceIsViolation(t *testing.T) {
	rec := undo.NewRecorder()
	txn := rec.Open("x")
	require.NoError(t, txn.Finish(context.Background()))

	err := txn.Finish(context.Background())
	assert.ErrorIs(t, err, domain.ErrContractViolation)
	assert.ErrorIs(t, err, domain.ErrTransactionFinished)

	assert.ErrorIs(t, txn.AddEdit(&recordingEdit{name: "late", j: &journal{}}), domain.ErrTransactionFinished)
	assert.ErrorIs(t, txn.AddEvent(domain.ChangeEvent{}), domain.ErrTransactionFinished)
	assert.Equal(t, 1, rec.Committed())
}

func TestTransaction_EmptyLeavesHistoryUntouched(t *testing.T) {
	n := &collectingNotifier{}
	rec := undo.NewRecorder(undo.WithNotifier(n))

	require.NoError(t, rec.Open("noop").Finish(context.Background()))

	assert.Equal(t, 0, rec.Depth())
	assert.Empty(t, n.batches)
	assert.Equal(t, 1, rec.Opened())
	assert.Equal(t, 1, rec.Committed())
}

func TestRecorder_UndoRedoAtomicGroup(t *testing.T) {
	ctx := context.Background()
	n := &collectingNotifier{}
	rec := undo.NewRecorder(undo.WithNotifier(n))
	j := &journal{}

	txn := rec.Open("Include All")
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, txn.AddEdit(&recordingEdit{name: name, j: j}))
	}
	require.NoError(t, txn.AddEvent(domain.ChangeEvent{ModelID: "I1", Kind: domain.ChangeModel}))
	require.NoError(t, txn.Finish(ctx))

	require.NoError(t, rec.Undo(ctx))
	assert.Equal(t, []string{"undo:c", "undo:b", "undo:a"}, j.calls)
	assert.False(t, rec.CanUndo())
	assert.True(t, rec.CanRedo())

	j.calls = nil
	require.NoError(t, rec.Redo(ctx))
	assert.Equal(t, []string{"redo:a", "redo:b", "redo:c"}, j.calls)
	assert.Equal(t, []string{"Include All"}, rec.Descriptions())

	// Commit, undo and redo each announce the entry's events.
	assert.Len(t, n.batches, 3)
}

func TestRecorder_EmptyStacks(t *testing.T) {
	rec := undo.NewRecorder()
	assert.ErrorIs(t, rec.Undo(context.Background()), domain.ErrNothingToUndo)
	assert.ErrorIs(t, rec.Redo(context.Background()), domain.ErrNothingToRedo)
}

func TestRecorder_FailedUndoKeepsEntry(t *testing.T) {
	ctx := context.Background()
	n := &collectingNotifier{}
	rec := undo.NewRecorder(undo.WithNotifier(n))
	j := &journal{fail: "undo:a"}

	txn := rec.Open("x")
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, txn.AddEdit(&recordingEdit{name: name, j: j}))
	}
	require.NoError(t, txn.Finish(ctx))
	n.batches = nil

	assert.Error(t, rec.Undo(ctx))
	// c and b were reverted before a failed; both are reapplied
	assert.Equal(t, []string{"undo:c", "undo:b", "redo:b", "redo:c"}, j.calls)
	assert.Equal(t, 1, rec.Depth())
	assert.False(t, rec.CanRedo())
	assert.Empty(t, n.batches)
}

func TestRecorder_FailedRedoKeepsEntry(t *testing.T) {
	ctx := context.Background()
	rec := undo.NewRecorder()
	j := &journal{}

	txn := rec.Open("x")
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, txn.AddEdit(&recordingEdit{name: name, j: j}))
	}
	require.NoError(t, txn.Finish(ctx))
	require.NoError(t, rec.Undo(ctx))

	j.calls = nil
	j.fail = "redo:b"
	assert.Error(t, rec.Redo(ctx))
	assert.Equal(t, []string{"redo:a", "undo:a"}, j.calls)
	assert.True(t, rec.CanRedo())
	assert.False(t, rec.CanUndo())
}

func TestTransaction_AbortRevertsAndDropsEvents(t *testing.T) {
	ctx := context.Background()
	n := &collectingNotifier{}
	var hooked bool
	rec := undo.NewRecorder(
		undo.WithNotifier(n),
		undo.WithLifecycleHooks(domain.LifecycleHooks{
			OnCommit: func(ctx context.Context, ev *domain.CommitEvent) { hooked = true },
		}),
	)
	j := &journal{}

	txn := rec.Open("Include All")
	for _, name := range []string{"a", "b"} {
		require.NoError(t, txn.AddEdit(&recordingEdit{name: name, j: j}))
	}
	require.NoError(t, txn.AddEvent(domain.ChangeEvent{ModelID: "I1", Kind: domain.ChangeModel}))

	require.NoError(t, txn.Abort(ctx))
	assert.Equal(t, []string{"undo:b", "undo:a"}, j.calls)
	assert.True(t, txn.Finished())
	assert.Equal(t, 0, rec.Depth())
	assert.Empty(t, n.batches)
	assert.False(t, hooked)
	assert.Equal(t, 1, rec.Aborted())
	assert.Equal(t, 0, rec.Committed())

	assert.ErrorIs(t, txn.Finish(ctx), domain.ErrTransactionFinished)
	assert.ErrorIs(t, txn.Abort(ctx), domain.ErrTransactionFinished)
}

func TestTransaction_AbortTriesEveryEdit(t *testing.T) {
	rec := undo.NewRecorder()
	j := &journal{fail: "undo:b"}

	txn := rec.Open("x")
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, txn.AddEdit(&recordingEdit{name: name, j: j}))
	}

	assert.Error(t, txn.Abort(context.Background()))
	assert.Equal(t, []string{"undo:c", "undo:a"}, j.calls)
	assert.Equal(t, 0, rec.Depth())
}

func TestRecorder_NewCommitClearsRedo(t *testing.T) {
	ctx := context.Background()
	rec := undo.NewRecorder()
	j := &journal{}

	for _, name := range []string{"first", "second"} {
		txn := rec.Open(name)
		require.NoError(t, txn.AddEdit(&recordingEdit{name: name, j: j}))
		require.NoError(t, txn.Finish(ctx))
	}
	require.NoError(t, rec.Undo(ctx))
	require.True(t, rec.CanRedo())

	txn := rec.Open("third")
	require.NoError(t, txn.AddEdit(&recordingEdit{name: "third", j: j}))
	require.NoError(t, txn.Finish(ctx))

	assert.False(t, rec.CanRedo())
	assert.Equal(t, []string{"first", "third"}, rec.Descriptions())
}

func TestRecorder_Limit(t *testing.T) {
	ctx := context.Background()
	rec := undo.NewRecorder(undo.WithLimit(2))
	j := &journal{}

	for _, name := range []string{"a", "b", "c"} {
		txn := rec.Open(name)
		require.NoError(t, txn.AddEdit(&recordingEdit{name: name, j: j}))
		require.NoError(t, txn.Finish(ctx))
	}

	assert.Equal(t, []string{"b", "c"}, rec.Descriptions())
}

func TestRecorder_CommitHook(t *testing.T) {
	var got *domain.CommitEvent
	rec := undo.NewRecorder(undo.WithLifecycleHooks(domain.LifecycleHooks{
		OnCommit: func(ctx context.Context, ev *domain.CommitEvent) { got = ev },
	}))

	txn := rec.Open("Add Note")
	require.NoError(t, txn.AddEdit(&recordingEdit{name: "a", j: &journal{}}))
	require.NoError(t, txn.AddEvent(domain.ChangeEvent{ModelID: "root"}))
	require.NoError(t, txn.Finish(context.Background()))

	require.NotNil(t, got)
	assert.Equal(t, "Add Note", got.Description)
	assert.Equal(t, 1, got.Edits)
	assert.Equal(t, 1, got.Events)
}
