package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/pathflow/pkg/domain"
)

// ValidateFlow checks a flow's declared step graph for broken hand-overs,
// misplaced terminal steps and steps no entry point can reach.
func ValidateFlow(name string, steps []domain.StepInfo) error {
	if len(steps) == 0 {
		return fmt.Errorf("flow '%s' declares no steps", name)
	}

	var errors []string
	byID := make(map[domain.StepID]domain.StepInfo, len(steps))
	var queue []domain.StepID

	for _, s := range steps {
		if s.ID == "" {
			errors = append(errors, "Step with empty id")
			continue
		}
		if _, dup := byID[s.ID]; dup {
			errors = append(errors, fmt.Sprintf("Duplicate step '%s'", s.ID))
			continue
		}
		byID[s.ID] = s
		if s.Entry {
			queue = append(queue, s.ID)
		}
	}

	if len(queue) == 0 {
		errors = append(errors, "No entry step")
	}

	for _, s := range steps {
		terminal := s.Kind == domain.StepCommit || s.Kind == domain.StepFinal
		switch {
		case terminal && len(s.Next) > 0:
			errors = append(errors, fmt.Sprintf("Terminal step '%s' hands over to %v", s.ID, s.Next))
		case !terminal && len(s.Next) == 0:
			errors = append(errors, fmt.Sprintf("Step '%s' (%s) has no next step", s.ID, s.Kind))
		}
		for _, next := range s.Next {
			if _, ok := byID[next]; !ok {
				errors = append(errors, fmt.Sprintf("Step '%s' hands over to unknown step '%s'", s.ID, next))
			}
		}
	}

	// Crawler
	visited := make(map[domain.StepID]bool)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, next := range byID[current].Next {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}
	for _, s := range steps {
		if s.ID != "" && !visited[s.ID] {
			errors = append(errors, fmt.Sprintf("Unreachable step '%s'", s.ID))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("flow '%s': found %d errors:\n- %s", name, len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
