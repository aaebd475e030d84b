package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pathflow/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []domain.StepID
	CurrentStep  domain.StepID
}

// GenerateMermaid produces a Mermaid flowchart for one flow's step graph.
// It applies semantic styling:
// - Dialog: [/Parallelogram/]
// - Mouse: [[Subroutine]]
// - Commit: [(Cylinder)]
// - Final: (((Double circle)))
// - Default: [Rectangle]
// Entry steps get an edge from the flow start node.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(flow string, steps []domain.StepInfo, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	writeFlow(&sb, flow, steps, "    ")

	if overlay != nil {
		writeOverlay(&sb, flow, overlay)
	}
	return sb.String()
}

// GenerateAll renders several flows, one subgraph each, in the given order.
func GenerateAll(flows map[string][]domain.StepInfo, order []string) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, name := range order {
		steps, ok := flows[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "    subgraph %s [\"%s\"]\n", sanitizeMermaidID(name), name)
		writeFlow(&sb, name, steps, "        ")
		sb.WriteString("    end\n")
	}
	return sb.String()
}

func writeFlow(sb *strings.Builder, flow string, steps []domain.StepInfo, indent string) {
	start := sanitizeMermaidID(flow) + "__start"
	fmt.Fprintf(sb, "%s%s((\"%s\"))\n", indent, start, flow)

	for _, step := range steps {
		safeID := stepID(flow, step.ID)

		opener, closer := "[", "]"
		switch step.Kind {
		case domain.StepDialog:
			opener, closer = "[/", "/]"
		case domain.StepMouse:
			opener, closer = "[[", "]]"
		case domain.StepCommit:
			opener, closer = "[(", ")]"
		case domain.StepFinal:
			opener, closer = "(((", ")))"
		}
		fmt.Fprintf(sb, "%s%s%s\"%s\"%s\n", indent, safeID, opener, step.ID, closer)

		if step.Entry {
			fmt.Fprintf(sb, "%s%s --> %s\n", indent, start, safeID)
		}
		for _, next := range step.Next {
			arrow := "-->"
			// Suspending steps hand over only after external input.
			if step.Kind == domain.StepDialog || step.Kind == domain.StepMouse {
				arrow = "-.->"
			}
			fmt.Fprintf(sb, "%s%s %s %s\n", indent, safeID, arrow, stepID(flow, next))
		}
	}
}

func writeOverlay(sb *strings.Builder, flow string, overlay *GraphOverlay) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	visited := make(map[string]bool)
	for _, id := range overlay.VisitedSteps {
		safeID := stepID(flow, id)
		if id != "" && !visited[safeID] {
			visited[safeID] = true
			fmt.Fprintf(sb, "    class %s visited;\n", safeID)
		}
	}
	if overlay.CurrentStep != "" {
		fmt.Fprintf(sb, "    class %s current;\n", stepID(flow, overlay.CurrentStep))
	}
}

// stepID namespaces a step by its flow: step names repeat across flows.
func stepID(flow string, id domain.StepID) string {
	return sanitizeMermaidID(flow + "." + string(id))
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
