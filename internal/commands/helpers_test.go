package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/pathflow/internal/commands"
	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/adapters/memory"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/notify"
	"github.com/aretw0/pathflow/pkg/ports"
	"github.com/aretw0/pathflow/pkg/undo"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

// fixture: a root pathway and one instance derived from it.
func pathwayFixture() memory.Fixture {
	return memory.Fixture{
		Current: "I1",
		Models: []memory.ModelFixture{
			{
				ID:    "root",
				Nodes: []string{"N1", "N2", "N3"},
				Groups: []memory.GroupFixture{
					{ID: "G1", Members: []string{"N1", "N2", "N3"}},
					{ID: "G2", Parent: "G1"},
				},
			},
			{
				ID:     "I1",
				Parent: "root",
				Nodes:  []string{"N1", "N2"},
				Groups: []memory.GroupFixture{
					{ID: "G1", Region: &domain.Rect{X: 0, Y: 0, Width: 400, Height: 300}},
					{ID: "G2", Parent: "G1", Region: &domain.Rect{X: 20, Y: 20, Width: 100, Height: 100}},
				},
			},
		},
	}
}

type testRig struct {
	env     *runtime.Env
	model   *memory.Model
	mouse   *memory.Interaction
	dialogs *memory.Dialogs
	rec     *undo.Recorder
	harness *runtime.Harness
	events  []domain.ChangeEvent
}

func newRig(t *testing.T) *testRig {
	t.Helper()
	return newRigWith(t, nil)
}

// newRigWith lets wrap replace the model the flows see; the rig keeps
// inspecting the underlying memory model.
func newRigWith(t *testing.T, wrap func(*memory.Model) ports.Model) *testRig {
	t.Helper()
	logger := slogt.New(t)

	model, err := memory.NewModel(pathwayFixture())
	require.NoError(t, err)

	var flowModel ports.Model = model
	if wrap != nil {
		flowModel = wrap(model)
	}

	rig := &testRig{
		model:   model,
		mouse:   memory.NewInteraction(),
		dialogs: memory.NewDialogs(),
	}

	n := notify.New(notify.WithLogger(logger))
	n.Subscribe(func(ctx context.Context, ev domain.ChangeEvent) {
		rig.events = append(rig.events, ev)
	})
	rig.rec = undo.NewRecorder(undo.WithNotifier(n), undo.WithLogger(logger))

	rig.env = &runtime.Env{
		Model:     flowModel,
		Undo:      rig.rec,
		Mouse:     rig.mouse,
		Selection: model,
		GridUnit:  10,
		Logger:    logger,
	}

	reg := runtime.NewRegistry()
	require.NoError(t, commands.Register(reg))

	rig.harness = runtime.NewHarness(rig.env, reg,
		runtime.WithDialogPresenter(rig.dialogs),
		runtime.WithLogger(logger),
	)
	return rig
}

func (r *testRig) members(t *testing.T, modelID, groupID string) []string {
	t.Helper()
	g, ok := r.model.Group(modelID, groupID)
	require.True(t, ok)
	return g.Members
}

var errStorage = errors.New("storage unavailable")

// failingModel makes the nth call of one mutation fail.
type failingModel struct {
	*memory.Model
	method string
	nth    int
	calls  int
}

func failOn(method string, nth int) func(*memory.Model) ports.Model {
	return func(m *memory.Model) ports.Model {
		return &failingModel{Model: m, method: method, nth: nth}
	}
}

func (f *failingModel) trip(method string) bool {
	if f.method != method {
		return false
	}
	f.calls++
	return f.calls == f.nth
}

func (f *failingModel) AddGroupMember(modelID, groupID, memberID string) (*domain.GroupMembershipChange, error) {
	if f.trip("AddGroupMember") {
		return nil, errStorage
	}
	return f.Model.AddGroupMember(modelID, groupID, memberID)
}

func (f *failingModel) SetNoteProperties(modelID, noteID string, props domain.NoteProperties) (*domain.LayoutChange, error) {
	if f.trip("SetNoteProperties") {
		return nil, errStorage
	}
	return f.Model.SetNoteProperties(modelID, noteID, props)
}
