// Package interact decides what a pointer gesture on a part means.
//
// The Machine never mutates session state. It reads a View of the
// session and answers with an Event; the session applies removals and
// installations. The only state the machine owns is the drag in flight.
package interact

import (
	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/pose"
	"github.com/chazu/mechtrainer/pkg/snap"
	"github.com/go-gl/mathgl/mgl64"
)

// State is the interaction state of one part.
type State string

const (
	Installed State = "installed"
	Removed   State = "removed"
	Dragging  State = "dragging" // a removed part in flight
)

// Outcome classifies the result of a gesture.
type Outcome string

const (
	None        Outcome = "none"         // nothing happened
	Identified  Outcome = "identified"   // inspect click
	Ineligible  Outcome = "ineligible"   // not a target yet, silently ignored
	WrongTool   Outcome = "wrong_tool"   // counted as an error
	Removal     Outcome = "removed"      // part must be added to the removed set
	DragStarted Outcome = "drag_started" // pointer captured
	Install     Outcome = "installed"    // slot must leave the removed set
	SnapMiss    Outcome = "snap_miss"    // released away from any slot
)

// Event is the answer to one gesture.
type Event struct {
	Outcome Outcome      `json:"outcome"`
	PartID  string       `json:"partId,omitempty"`
	SlotID  string       `json:"slotId,omitempty"` // set for Install
	Tool    catalog.Tool `json:"tool,omitempty"`   // the active tool
	Needed  catalog.Tool `json:"needed,omitempty"` // the tool the part asks for
}

// View is the read-only session state the machine decides on.
type View struct {
	Mode       catalog.ActionMode
	Tool       catalog.Tool
	Targets    []string
	Removed    map[string]bool
	Annotation bool
}

// IsTarget reports whether id is a target of the current step.
func (v View) IsTarget(id string) bool {
	for _, t := range v.Targets {
		if t == id {
			return true
		}
	}
	return false
}

// drag is the part in flight and where it was last seen.
type drag struct {
	partID   string
	position mgl64.Vec3
	camera   mgl64.Vec3
	ray      mgl64.Vec3
	pending  bool
}

// Machine is the per-module interaction state machine.
type Machine struct {
	catalog *catalog.Catalog
	snap    snap.Resolver
	drag    *drag
}

// New returns a machine for the parts of cat.
func New(cat *catalog.Catalog, resolver snap.Resolver) *Machine {
	return &Machine{catalog: cat, snap: resolver}
}

// CanInteract reports whether part id is eligible for the current step.
// It is recomputed from v on every call.
func (m *Machine) CanInteract(v View, id string) bool {
	p, ok := m.catalog.Get(id)
	if !ok {
		return false
	}
	return m.canInteract(v, p)
}

// dependencyMet reports whether the prerequisite of part id, if any, is removed.
func (m *Machine) dependencyMet(v View, id string) bool {
	dep, ok := m.catalog.Dependency(id)
	return !ok || v.Removed[dep]
}

func (m *Machine) canInteract(v View, p catalog.Part) bool {
	switch v.Mode {
	case catalog.ModeInspect:
		return true
	case catalog.ModeDisassemble:
		return !v.Removed[p.ID] && m.dependencyMet(v, p.ID) && v.IsTarget(p.ID)
	case catalog.ModeAssemble:
		return v.Removed[p.ID] && v.IsTarget(p.ID)
	}
	return false
}

// StateOf returns the interaction state of part id.
func (m *Machine) StateOf(v View, id string) State {
	switch {
	case m.drag != nil && m.drag.partID == id:
		return Dragging
	case v.Removed[id]:
		return Removed
	}
	return Installed
}

// PointerDown handles a press on part id.
func (m *Machine) PointerDown(v View, id string) Event {
	p, ok := m.catalog.Get(id)
	if !ok || v.Annotation || m.drag != nil {
		return Event{Outcome: None, PartID: id}
	}
	ev := Event{PartID: id, Tool: v.Tool, Needed: p.ToolFor(v.Mode)}

	switch v.Mode {
	case catalog.ModeInspect:
		ev.Outcome = Identified
	case catalog.ModeDisassemble:
		switch {
		case v.Removed[id] || !m.canInteract(v, p):
			ev.Outcome = Ineligible
		case v.Tool == ev.Needed:
			ev.Outcome = Removal
		default:
			ev.Outcome = WrongTool
		}
	case catalog.ModeAssemble:
		switch {
		case !v.Removed[id] || !m.canInteract(v, p):
			ev.Outcome = Ineligible
		case v.Tool == ev.Needed:
			ev.Outcome = DragStarted
			m.drag = &drag{partID: id, position: p.Exploded().Position}
		default:
			ev.Outcome = WrongTool
		}
	default:
		ev.Outcome = None
	}
	return ev
}

// PointerMove records the latest pointer ray. Moves go to the captured
// part regardless of what lies under the pointer; the ray is projected
// once per frame by Sample.
func (m *Machine) PointerMove(camera, dir mgl64.Vec3) {
	if m.drag == nil {
		return
	}
	m.drag.camera, m.drag.ray, m.drag.pending = camera, dir, true
}

// Sample projects the pending ray and returns the dragged part and its
// position. It reports false when nothing is dragged.
func (m *Machine) Sample(v View) (string, mgl64.Vec3, bool) {
	if m.drag == nil {
		return "", mgl64.Vec3{}, false
	}
	if m.drag.pending && v.Mode == catalog.ModeAssemble && !v.Annotation {
		if pos, ok := pose.ProjectPointer(m.drag.camera, m.drag.ray); ok {
			m.drag.position = pos
		}
	}
	m.drag.pending = false
	return m.drag.partID, m.drag.position, true
}

// Dragging returns the part in flight.
func (m *Machine) Dragging() (string, bool) {
	if m.drag == nil {
		return "", false
	}
	return m.drag.partID, true
}

// PointerUp releases the captured part and resolves the slot it was
// dropped into.
func (m *Machine) PointerUp(v View) Event {
	if m.drag == nil {
		return Event{Outcome: None}
	}
	id, at, _ := m.Sample(v)
	m.drag = nil

	p, _ := m.catalog.Get(id)
	ev := Event{PartID: id, Tool: v.Tool, Needed: p.ToolFor(catalog.ModeAssemble)}
	if slot, ok := m.snap.Resolve(m.catalog.Parts(), p, at, v.Removed); ok {
		ev.Outcome, ev.SlotID = Install, slot
		return ev
	}
	ev.Outcome = SnapMiss
	return ev
}

// Cancel drops any drag in flight without resolving it.
func (m *Machine) Cancel() {
	m.drag = nil
}
