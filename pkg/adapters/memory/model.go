package memory

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/pathflow/pkg/domain"
)

type group struct {
	id      string
	parent  string
	members []string
	region  *domain.Rect
}

// genome is one model: a root pathway or an instance derived from a parent.
type genome struct {
	parent string
	nodes  map[string]bool
	groups map[string]*group
	notes  map[string]domain.Note
	layout map[string]domain.NoteProperties
}

// Model implements ports.Model and ports.SelectionResolver in memory.
// Safe for concurrent use.
type Model struct {
	mu      sync.RWMutex
	models  map[string]*genome
	current string
	noteSeq int
}

// NewModel creates a model set from a fixture.
func NewModel(f Fixture) (*Model, error) {
	m := &Model{
		models:  make(map[string]*genome),
		current: f.Current,
	}
	for _, mf := range f.Models {
		if mf.ID == "" {
			return nil, fmt.Errorf("model missing ID")
		}
		if _, dup := m.models[mf.ID]; dup {
			return nil, fmt.Errorf("duplicate model '%s'", mf.ID)
		}
		g := &genome{
			parent: mf.Parent,
			nodes:  make(map[string]bool),
			groups: make(map[string]*group),
			notes:  make(map[string]domain.Note),
			layout: make(map[string]domain.NoteProperties),
		}
		for _, n := range mf.Nodes {
			g.nodes[n] = true
		}
		for _, gf := range mf.Groups {
			if gf.ID == "" {
				return nil, fmt.Errorf("model '%s': group missing ID", mf.ID)
			}
			g.groups[gf.ID] = &group{
				id:      gf.ID,
				parent:  gf.Parent,
				members: slices.Clone(gf.Members),
				region:  gf.Region,
			}
		}
		m.models[mf.ID] = g
	}

	for id, g := range m.models {
		if g.parent != "" {
			if _, ok := m.models[g.parent]; !ok {
				return nil, fmt.Errorf("model '%s': parent '%s': %w", id, g.parent, domain.ErrModelNotFound)
			}
		}
		for _, grp := range g.groups {
			if grp.parent != "" {
				if _, ok := g.groups[grp.parent]; !ok {
					return nil, fmt.Errorf("model '%s': group '%s' has unknown parent group '%s'", id, grp.id, grp.parent)
				}
			}
		}
	}
	if m.current != "" {
		if _, ok := m.models[m.current]; !ok {
			return nil, fmt.Errorf("current model '%s': %w", m.current, domain.ErrModelNotFound)
		}
	}
	return m, nil
}

// SetCurrent switches the model the user is working on.
func (m *Model) SetCurrent(modelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.models[modelID]; !ok {
		return fmt.Errorf("model '%s': %w", modelID, domain.ErrModelNotFound)
	}
	m.current = modelID
	return nil
}

func (m *Model) CurrentModelID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Model) ParentModelID(modelID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.models[modelID]
	if !ok || g.parent == "" {
		return "", false
	}
	return g.parent, true
}

func (m *Model) HasNode(modelID, nodeID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.models[modelID]
	return ok && g.nodes[nodeID]
}

func (m *Model) Group(modelID, groupID string) (domain.GroupView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.models[modelID]
	if !ok {
		return domain.GroupView{}, false
	}
	grp, ok := g.groups[groupID]
	if !ok {
		return domain.GroupView{}, false
	}
	return domain.GroupView{ID: grp.id, ParentID: grp.parent, Members: slices.Clone(grp.members)}, true
}

// NextNoteID hands out identifiers that are unique across all models.
func (m *Model) NextNoteID(modelID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noteSeq++
	return fmt.Sprintf("note-%d", m.noteSeq)
}

func (m *Model) AddGroupMember(modelID, groupID, memberID string) (*domain.GroupMembershipChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	grp, err := m.group(modelID, groupID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(grp.members, memberID) {
		return nil, nil
	}
	grp.members = append(grp.members, memberID)
	return &domain.GroupMembershipChange{ModelID: modelID, GroupID: groupID, MemberID: memberID}, nil
}

func (m *Model) AddNote(modelID string, note domain.Note) (*domain.NoteChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.models[modelID]
	if !ok {
		return nil, fmt.Errorf("model '%s': %w", modelID, domain.ErrModelNotFound)
	}
	if _, exists := g.notes[note.ID]; exists {
		return nil, fmt.Errorf("note '%s' already exists in model '%s'", note.ID, modelID)
	}
	g.notes[note.ID] = note
	return &domain.NoteChange{ModelID: modelID, Note: note}, nil
}

func (m *Model) SetNoteProperties(modelID, noteID string, props domain.NoteProperties) (*domain.LayoutChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.models[modelID]
	if !ok {
		return nil, fmt.Errorf("model '%s': %w", modelID, domain.ErrModelNotFound)
	}
	if _, ok := g.notes[noteID]; !ok {
		return nil, fmt.Errorf("note '%s' in model '%s': %w", noteID, modelID, domain.ErrNodeNotFound)
	}

	change := &domain.LayoutChange{ModelID: modelID, NoteID: noteID, After: props}
	if before, ok := g.layout[noteID]; ok {
		if before == props {
			return nil, nil
		}
		change.Before = &before
	}
	g.layout[noteID] = props
	return change, nil
}

// Revert undoes a delta this model produced.
func (m *Model) Revert(delta domain.Delta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch d := delta.(type) {
	case domain.GroupMembershipChange:
		grp, err := m.group(d.ModelID, d.GroupID)
		if err != nil {
			return err
		}
		grp.members = slices.DeleteFunc(grp.members, func(id string) bool { return id == d.MemberID })
	case domain.NoteChange:
		g, err := m.genome(d.ModelID)
		if err != nil {
			return err
		}
		delete(g.notes, d.Note.ID)
		delete(g.layout, d.Note.ID)
	case domain.LayoutChange:
		g, err := m.genome(d.ModelID)
		if err != nil {
			return err
		}
		if d.Before == nil {
			delete(g.layout, d.NoteID)
		} else {
			g.layout[d.NoteID] = *d.Before
		}
	default:
		return fmt.Errorf("unsupported delta %T", delta)
	}
	return nil
}

// Reapply redoes a delta previously reverted.
func (m *Model) Reapply(delta domain.Delta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch d := delta.(type) {
	case domain.GroupMembershipChange:
		grp, err := m.group(d.ModelID, d.GroupID)
		if err != nil {
			return err
		}
		if !slices.Contains(grp.members, d.MemberID) {
			grp.members = append(grp.members, d.MemberID)
		}
	case domain.NoteChange:
		g, err := m.genome(d.ModelID)
		if err != nil {
			return err
		}
		g.notes[d.Note.ID] = d.Note
	case domain.LayoutChange:
		g, err := m.genome(d.ModelID)
		if err != nil {
			return err
		}
		g.layout[d.NoteID] = d.After
	default:
		return fmt.Errorf("unsupported delta %T", delta)
	}
	return nil
}

// Notes returns the notes of a model sorted by id.
func (m *Model) Notes(modelID string) []domain.Note {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.models[modelID]
	if !ok {
		return nil
	}
	out := make([]domain.Note, 0, len(g.notes))
	for _, n := range g.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Layout returns the layout of a note.
func (m *Model) Layout(modelID, noteID string) (domain.NoteProperties, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.models[modelID]
	if !ok {
		return domain.NoteProperties{}, false
	}
	p, ok := g.layout[noteID]
	return p, ok
}

// GroupAt returns the innermost group whose region contains p.
func (m *Model) GroupAt(modelID string, p domain.Point) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.models[modelID]
	if !ok {
		return "", false
	}

	ids := make([]string, 0, len(g.groups))
	for id := range g.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best, bestArea := "", 0.0
	for _, id := range ids {
		r := g.groups[id].region
		if r == nil || !r.Contains(p) {
			continue
		}
		area := r.Width * r.Height
		if best == "" || area < bestArea {
			best, bestArea = id, area
		}
	}
	return best, best != ""
}

func (m *Model) genome(modelID string) (*genome, error) {
	g, ok := m.models[modelID]
	if !ok {
		return nil, fmt.Errorf("model '%s': %w", modelID, domain.ErrModelNotFound)
	}
	return g, nil
}

func (m *Model) group(modelID, groupID string) (*group, error) {
	g, err := m.genome(modelID)
	if err != nil {
		return nil, err
	}
	grp, ok := g.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group '%s' in model '%s': %w", groupID, modelID, domain.ErrGroupNotFound)
	}
	return grp, nil
}
