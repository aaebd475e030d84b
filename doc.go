/*
Package pathflow runs the interactive editing commands of a pathway-model editor
as explicit, resumable step flows.

A command such as "add note" needs input the program cannot compute: a dialog
answer, then a click on the canvas. Instead of blocking, the command returns a
result that says what it waits for, and the host resumes it once the input
arrives. Every command commits its edits as one undoable transaction, and change
events are only announced after that transaction is finished.

# Concept

A flow is a small state machine. Each step receives the step state, does its
work and hands back one of:

  - keep_processing: run the next step now.
  - have_dialog / install_mouse_mode: suspend until the host delivers input.
  - done / processed / user_cancel: the command is over.

The harness holds at most one suspended command. Starting another command
discards it; since edits only happen in a command's final step, nothing needs
to be rolled back.

# Usage

	model, err := memory.LoadModel("models.yaml")
	if err != nil {
		log.Fatal(err)
	}

	s, err := pathflow.New(model, pathflow.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	res, _ := s.Start(ctx, "add_note")                  // have_dialog
	res, _ = s.DeliverDialog(ctx, dialogResult)         // install_mouse_mode
	res, _ = s.DeliverClick(ctx, domain.Point{X: 1, Y: 2}) // done

	_ = s.Undo(ctx)

# Adapters

  - pkg/adapters/memory: in-memory models loaded from YAML fixtures.
  - pkg/adapters/http: a JSON API and SSE change stream over one session.
  - pkg/adapters/redis: change fan-out over Pub/Sub and a session lock.
*/
package pathflow
