package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/pathflow/internal/commands"
	"github.com/aretw0/pathflow/internal/presentation/graph"
	"github.com/aretw0/pathflow/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		flow     string
		steps    []domain.StepInfo
		overlay  *graph.GraphOverlay
		contains []string
	}{
		{
			name: "Step Shapes",
			flow: "f",
			steps: []domain.StepInfo{
				{ID: "ask", Kind: domain.StepDialog, Entry: true},
				{ID: "wait", Kind: domain.StepMouse},
				{ID: "save", Kind: domain.StepCommit},
				{ID: "stop", Kind: domain.StepFinal},
				{ID: "think", Kind: domain.StepSync},
			},
			contains: []string{
				`f__start(("f"))`,
				`f__start --> f_ask`,
				`f_ask[/"ask"/]`,
				`f_wait[["wait"]]`,
				`f_save[("save")]`,
				`f_stop((("stop")))`,
				`f_think["think"]`,
			},
		},
		{
			name: "Suspending Edges Are Dotted",
			flow: "f",
			steps: []domain.StepInfo{
				{ID: "ask", Kind: domain.StepDialog, Next: []domain.StepID{"read"}, Entry: true},
				{ID: "read", Kind: domain.StepSync, Next: []domain.StepID{"save"}},
				{ID: "save", Kind: domain.StepCommit},
			},
			contains: []string{
				`f_ask -.-> f_read`,
				`f_read --> f_save`,
			},
		},
		{
			name:  "ID Sanitization",
			flow:  "add-to/sub group",
			steps: []domain.StepInfo{{ID: "a.b", Kind: domain.StepSync, Entry: true}},
			contains: []string{
				`add_to_sub_group_a_b["a.b"]`,
			},
		},
		{
			name: "Overlay",
			flow: "f",
			steps: []domain.StepInfo{
				{ID: "ask", Kind: domain.StepDialog, Next: []domain.StepID{"read"}, Entry: true},
				{ID: "read", Kind: domain.StepSync},
			},
			overlay: &graph.GraphOverlay{VisitedSteps: []domain.StepID{"ask", "ask"}, CurrentStep: "read"},
			contains: []string{
				"class f_ask visited;",
				"class f_read current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.flow, tt.steps, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			if tt.overlay != nil && strings.Count(got, "visited;") != 1 {
				t.Errorf("visited steps should be deduplicated:\n%v", got)
			}
		})
	}
}

func TestGenerateAll(t *testing.T) {
	flows := map[string][]domain.StepInfo{
		commands.FlowAddNote:      commands.AddNoteFlow{}.Steps(),
		commands.FlowCancelAdd:    commands.CancelAddFlow{}.Steps(),
		"not_in_order_is_skipped": {{ID: "x", Kind: domain.StepFinal, Entry: true}},
	}

	got := graph.GenerateAll(flows, []string{commands.FlowAddNote, commands.FlowCancelAdd, "missing"})

	for _, want := range []string{
		`subgraph add_note ["add_note"]`,
		`subgraph cancel_add ["cancel_add"]`,
		`add_note_get_dialog -.-> add_note_extract_info`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateAll() = \n%v\nWant substring: %v", got, want)
		}
	}
	if strings.Contains(got, "not_in_order_is_skipped") {
		t.Errorf("flows outside the order must not be rendered")
	}
	if strings.Count(got, "subgraph") != 2 || strings.Count(got, "    end\n") != 2 {
		t.Errorf("expected two subgraphs:\n%v", got)
	}
}
