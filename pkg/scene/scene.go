// Package scene composes per-frame snapshots of an assembly for the
// renderer. It holds no rules of its own: poses come from pose, emphasis
// from highlight, legality and drag positions from the session.
package scene

import (
	"sync"
	"time"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/geometry"
	"github.com/chazu/mechtrainer/pkg/highlight"
	"github.com/chazu/mechtrainer/pkg/interact"
	"github.com/chazu/mechtrainer/pkg/kernel"
	"github.com/chazu/mechtrainer/pkg/pose"
	"github.com/chazu/mechtrainer/pkg/session"
	"github.com/go-gl/mathgl/mgl64"
)

// Part is the render state of one part.
type Part struct {
	ID          string            `json:"id"`
	Transform   catalog.Transform `json:"transform"`
	State       interact.State    `json:"state"`
	CanInteract bool              `json:"canInteract"`
	Hovered     bool              `json:"hovered"`
	Highlight   highlight.Result  `json:"highlight"`
}

// Frame is everything the renderer needs for one frame.
type Frame struct {
	Elapsed    time.Duration      `json:"elapsed"`
	Step       int                `json:"step"`
	Mode       catalog.ActionMode `json:"mode"`
	Tool       catalog.Tool       `json:"tool"`
	Annotation bool               `json:"annotation"`
	Dragging   string             `json:"dragging,omitempty"`
	Settled    bool               `json:"settled"`
	Parts      []Part             `json:"parts"`
}

// Composer turns session state into frames.
type Composer struct {
	mu       sync.Mutex
	session  *session.Session
	resolver pose.Resolver
	animator *pose.Animator
	hovered  string
	elapsed  time.Duration
}

// New returns a composer for s.
func New(s *session.Session, r pose.Resolver) *Composer {
	return &Composer{session: s, resolver: r, animator: pose.NewAnimator()}
}

// Meshes builds the mesh of every part of cat, in catalog order. It runs
// once per module, never per frame.
func Meshes(cat *catalog.Catalog, cache *geometry.Cache) []*kernel.Mesh {
	parts := cat.Parts()
	out := make([]*kernel.Mesh, len(parts))
	for i, p := range parts {
		out[i] = cache.PartMesh(p)
	}
	return out
}

// Hover marks part id as under the pointer. An empty id clears it.
func (c *Composer) Hover(id string) {
	c.mu.Lock()
	c.hovered = id
	c.mu.Unlock()
}

// PointerUp releases the dragged part through the session. When it fills
// the slot of an identical part the two animations trade places.
func (c *Composer) PointerUp() interact.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev := c.session.PointerUp()
	if ev.Outcome == interact.Install && ev.SlotID != ev.PartID {
		c.animator.Swap(ev.PartID, ev.SlotID)
	}
	return ev
}

// Frame advances the animation by dt and returns the snapshot.
func (c *Composer) Frame(dt time.Duration) Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed += dt

	view := c.session.View()
	dragID, dragPos, dragging := c.session.Sample()
	step, _ := c.session.Step()
	parts := c.session.Course().Catalog.Parts()

	for _, p := range parts {
		target := c.resolver.Resolve(p, view.Annotation, view.Removed[p.ID])
		if dragging && dragID == p.ID {
			c.hold(p, target, dragPos)
			continue
		}
		c.animator.Drive(p.ID, p.Home, target)
	}
	settled := c.animator.Step(dt)

	f := Frame{
		Elapsed:    c.elapsed,
		Step:       step,
		Mode:       view.Mode,
		Tool:       view.Tool,
		Annotation: view.Annotation,
		Settled:    settled && !dragging,
		Parts:      make([]Part, 0, len(parts)),
	}
	if dragging {
		f.Dragging = dragID
	}

	for _, p := range parts {
		tw, _ := c.animator.Tween(p.ID)
		isDragged := dragging && dragID == p.ID
		can := c.session.CanInteract(p.ID)
		in := highlight.Input{
			Mode:          view.Mode,
			Removed:       view.Removed[p.ID],
			CanInteract:   can,
			Hovered:       c.hovered == p.ID,
			Dragging:      isDragged,
			Annotation:    view.Annotation,
			InspectTarget: view.Mode == catalog.ModeInspect && view.IsTarget(p.ID),
			Tool:          view.Tool,
			Required:      p.ToolFor(view.Mode),
		}

		t := tw.Transform()
		t.Scale = t.Scale.Mul(highlight.Scale(in, c.elapsed))

		state := interact.Installed
		switch {
		case isDragged:
			state = interact.Dragging
		case view.Removed[p.ID]:
			state = interact.Removed
		}
		f.Parts = append(f.Parts, Part{
			ID:          p.ID,
			Transform:   t,
			State:       state,
			CanInteract: can,
			Hovered:     in.Hovered,
			Highlight:   highlight.Resolve(in),
		})
	}
	return f
}

// hold pins the dragged part to the pointer, bypassing the pose target.
func (c *Composer) hold(p catalog.Part, target pose.Target, at mgl64.Vec3) {
	tw, ok := c.animator.Tween(p.ID)
	if !ok {
		tw = c.animator.Drive(p.ID, p.Home, target)
	}
	tw.Hold(at)
}
