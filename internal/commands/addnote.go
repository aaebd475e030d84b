package commands

import (
	"context"
	"fmt"

	"github.com/aretw0/pathflow/internal/runtime"
	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/undo"
)

// Steps of add_note.
const (
	AddNoteGetDialog   domain.StepID = "get_dialog"
	AddNoteExtractInfo domain.StepID = "extract_info"
	AddNoteSetMode     domain.StepID = "set_mode"
	AddNotePlaceNote   domain.StepID = "place_note"
)

// AddNoteState collects a note draft from a dialog and its location from a click.
type AddNoteState struct {
	domain.StepBase

	prompt string
	dialog *domain.DialogResult
	draft  domain.NoteDraft
	point  domain.Point
	placed bool
}

// PreloadAddNote builds a state that skips the dialog and the click.
func PreloadAddNote(env *runtime.Env, draft domain.NoteDraft, p domain.Point) *AddNoteState {
	return &AddNoteState{
		StepBase: domain.NewStepBase(FlowAddNote, AddNotePlaceNote),
		draft:    draft,
		point:    p.Snap(env.GridUnit),
		placed:   true,
	}
}

// AcceptDialog stores the dialog answer for extract_info.
func (s *AddNoteState) AcceptDialog(result domain.DialogResult) {
	s.dialog = &result
}

// AcceptClick stores the note location for place_note.
func (s *AddNoteState) AcceptClick(p domain.Point) {
	s.point = p
	s.placed = true
}

// Draft returns the collected note fields.
func (s *AddNoteState) Draft() domain.NoteDraft {
	return s.draft
}

// Location returns the snapped placement point and whether a click arrived.
func (s *AddNoteState) Location() (domain.Point, bool) {
	return s.point, s.placed
}

func (s *AddNoteState) getDialog() domain.CommandResult {
	args := map[string]any{}
	if s.prompt != "" {
		args["error"] = s.prompt
	}
	s.dialog = nil
	s.Goto(AddNoteExtractInfo)
	return domain.AwaitDialog(s, domain.DialogRequest{Kind: domain.DialogNoteCreation, Args: args})
}

func (s *AddNoteState) extractInfo() (domain.CommandResult, error) {
	if s.dialog == nil {
		return domain.CommandResult{}, domain.Violation(FlowAddNote, AddNoteExtractInfo, domain.ErrMissingPayload)
	}
	if !s.dialog.HasResults() {
		return domain.Cancelled(s), nil
	}

	var draft domain.NoteDraft
	if err := s.dialog.Decode(&draft); err != nil {
		return domain.CommandResult{}, err
	}
	if draft.Name == "" {
		s.prompt = "a note needs a name"
		s.Goto(AddNoteGetDialog)
		return domain.Continue(s), nil
	}

	s.prompt = ""
	s.draft = draft
	s.Goto(AddNoteSetMode)
	return domain.Continue(s), nil
}

func (s *AddNoteState) setMode() domain.CommandResult {
	s.placed = false
	s.Goto(AddNotePlaceNote)
	return domain.AwaitClick(s, domain.MouseMode{Name: domain.ModeAddNote, Floater: s.draft})
}

func (s *AddNoteState) placeNote(ctx context.Context, env *runtime.Env) (res domain.CommandResult, err error) {
	if !s.placed {
		return domain.CommandResult{}, domain.Violation(FlowAddNote, AddNotePlaceNote, domain.ErrMissingPayload)
	}
	modelID := env.Model.CurrentModelID()
	if modelID == "" {
		return domain.CommandResult{}, ErrNoCurrentModel
	}

	txn := env.Undo.Open("Add Note")
	defer finishOnExit(ctx, txn, &err)

	note := domain.Note{
		ID:          env.Model.NextNoteID(modelID),
		Name:        s.draft.Name,
		Text:        s.draft.Text,
		Interactive: s.draft.Interactive,
	}
	added, err := env.Model.AddNote(modelID, note)
	if err != nil {
		return domain.CommandResult{}, fmt.Errorf("failed to add note: %w", err)
	}
	if added != nil {
		if err := txn.AddEdit(undo.NewDeltaEdit(env.Model, *added)); err != nil {
			return domain.CommandResult{}, err
		}
	}

	layout, err := env.Model.SetNoteProperties(modelID, note.ID, domain.NoteProperties{
		Location:        s.point,
		TextColor:       s.draft.TextColor,
		BackgroundColor: s.draft.BackgroundColor,
	})
	if err != nil {
		return domain.CommandResult{}, fmt.Errorf("failed to place note: %w", err)
	}
	if layout != nil {
		if err := txn.AddEdit(undo.NewDeltaEdit(env.Model, *layout)); err != nil {
			return domain.CommandResult{}, err
		}
	}

	if err := txn.AddEvent(domain.ChangeEvent{
		ModelID:     modelID,
		Kind:        domain.ChangeModel,
		Description: fmt.Sprintf("note %s added", note.ID),
	}); err != nil {
		return domain.CommandResult{}, err
	}

	env.Log().Info("note placed", "model", modelID, "note", note.ID, "x", s.point.X, "y", s.point.Y)
	return domain.Finish(s), nil
}

// AddNoteFlow asks for the note fields, lets the user click where the note goes
// and commits the note with its layout.
type AddNoteFlow struct{}

func (AddNoteFlow) Name() string { return FlowAddNote }

func (AddNoteFlow) Steps() []domain.StepInfo {
	return []domain.StepInfo{
		{ID: AddNoteGetDialog, Kind: domain.StepDialog, Next: []domain.StepID{AddNoteExtractInfo}, Entry: true},
		{ID: AddNoteExtractInfo, Kind: domain.StepSync, Next: []domain.StepID{AddNoteSetMode, AddNoteGetDialog}},
		{ID: AddNoteSetMode, Kind: domain.StepMouse, Next: []domain.StepID{AddNotePlaceNote}},
		{ID: AddNotePlaceNote, Kind: domain.StepCommit, Entry: true},
	}
}

func (AddNoteFlow) InitialState(env *runtime.Env) domain.StepState {
	return &AddNoteState{StepBase: domain.NewStepBase(FlowAddNote, AddNoteGetDialog)}
}

func (AddNoteFlow) IsEnabled(env *runtime.Env, sel domain.Selection) bool {
	return env.Model.CurrentModelID() != ""
}

func (AddNoteFlow) Dispatch(ctx context.Context, env *runtime.Env, st domain.StepState) (domain.CommandResult, error) {
	s, ok := st.(*AddNoteState)
	if !ok {
		return domain.CommandResult{}, foreignState(FlowAddNote, st)
	}

	switch s.CurrentStep() {
	case AddNoteGetDialog:
		return s.getDialog(), nil
	case AddNoteExtractInfo:
		return s.extractInfo()
	case AddNoteSetMode:
		return s.setMode(), nil
	case AddNotePlaceNote:
		return s.placeNote(ctx, env)
	default:
		return domain.CommandResult{}, unknownStep(FlowAddNote, st)
	}
}
