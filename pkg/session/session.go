// Package session owns the mutable state of one training session.
//
// A Session is the only holder of the removed set, the active tool, the
// current step and annotation mode. The interaction machine and the snap
// resolver only propose changes as interact.Events; the session applies
// them. Methods are safe for concurrent use because the desktop shell
// delivers bindings on their own goroutines.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/interact"
	"github.com/chazu/mechtrainer/pkg/snap"
	"github.com/chazu/mechtrainer/pkg/stats"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownModule  = errors.New("unknown module")
	ErrUnknownStep    = errors.New("unknown step")
	ErrUnknownTool    = errors.New("unknown tool")
	ErrDragInProgress = errors.New("drag in progress")
	ErrStepIncomplete = errors.New("step incomplete")
	ErrNoMoreSteps    = errors.New("course has no steps")
	ErrNoSession      = errors.New("no module selected")
)

// Observer receives session activity. telemetry.Metrics implements it.
type Observer interface {
	ObserveEvent(module string, ev interact.Event)
	ObserveRemoved(module string, n int)
	ObserveStep(module string)
}

type nopObserver struct{}

func (nopObserver) ObserveEvent(string, interact.Event) {}
func (nopObserver) ObserveRemoved(string, int)          {}
func (nopObserver) ObserveStep(string)                  {}

// Options tune a session.
type Options struct {
	SnapThreshold float64
	Observer      Observer
}

// Progress is the result of Advance.
type Progress struct {
	Step     int  `json:"step"`
	Finished bool `json:"finished"` // the last step was completed; the course restarted
}

// Session is one trainee working through one course.
type Session struct {
	mu       sync.Mutex
	id       uuid.UUID
	course   *catalog.Course
	machine  *interact.Machine
	stats    *stats.Accumulator
	observer Observer
	log      *logrus.Entry

	removed    map[string]bool
	tool       catalog.Tool
	annotation bool
	step       int
}

// New starts a session on course c with nothing removed and no tool.
func New(c *catalog.Course, opts Options, log *logrus.Entry) *Session {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	id := uuid.New()
	return &Session{
		id:       id,
		course:   c,
		machine:  interact.New(c.Catalog, snap.New(opts.SnapThreshold)),
		stats:    stats.New(len(c.Steps)),
		observer: opts.Observer,
		log:      log.WithFields(logrus.Fields{"session": id.String(), "module": c.ID}),
		removed:  make(map[string]bool),
		tool:     catalog.ToolNone,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id.String() }

// Course returns the course being trained.
func (s *Session) Course() *catalog.Course { return s.course }

// ---- read side ----

// View returns a snapshot of the state the interaction machine decides
// on. The removed map is a copy.
func (s *Session) View() interact.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view()
	removed := make(map[string]bool, len(v.Removed))
	for id := range v.Removed {
		removed[id] = true
	}
	v.Removed = removed
	return v
}

// view aliases the live removed map; callers must hold mu.
func (s *Session) view() interact.View {
	st := s.currentStep()
	return interact.View{
		Mode:       st.Action,
		Tool:       s.tool,
		Targets:    st.Targets,
		Removed:    s.removed,
		Annotation: s.annotation,
	}
}

// currentStep returns the active step. A course without steps behaves as
// one open inspect step.
func (s *Session) currentStep() catalog.Step {
	if len(s.course.Steps) == 0 {
		return catalog.Step{Action: catalog.ModeInspect}
	}
	return s.course.Steps[s.step]
}

// Step returns the index and content of the current step.
func (s *Session) Step() (int, catalog.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step, s.currentStep()
}

// Tool returns the active tool.
func (s *Session) Tool() catalog.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// Annotation reports whether annotation mode is on.
func (s *Session) Annotation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.annotation
}

// RemovedParts returns the removed part ids in catalog order.
func (s *Session) RemovedParts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, p := range s.course.Catalog.Parts() {
		if s.removed[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// CanInteract reports whether part id is eligible right now.
func (s *Session) CanInteract(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.CanInteract(s.view(), id)
}

// StateOf returns the interaction state of part id.
func (s *Session) StateOf(id string) interact.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.StateOf(s.view(), id)
}

// StepComplete reports whether st's targets satisfy its completion
// predicate under the current removed set.
func (s *Session) StepComplete(st catalog.Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stepComplete(st, s.removed)
}

// CurrentStepComplete is StepComplete for the current step.
func (s *Session) CurrentStepComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stepComplete(s.currentStep(), s.removed)
}

func stepComplete(st catalog.Step, removed map[string]bool) bool {
	if st.Action == catalog.ModeInspect || len(st.Targets) == 0 {
		return true
	}
	for _, id := range st.Targets {
		if removed[id] != (st.Action == catalog.ModeDisassemble) {
			return false
		}
	}
	return true
}

// Stats returns the trainee statistics.
func (s *Session) Stats() stats.Snapshot {
	return s.stats.Snapshot()
}

// RecordQuiz stores a quiz result.
func (s *Session) RecordQuiz(score, total int) {
	s.stats.RecordQuiz(score, total)
}

// ---- curriculum ----

// SelectStep jumps to step i. Any drag in flight is dropped and the tool
// is put down.
func (s *Session) SelectStep(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.course.Steps) {
		return fmt.Errorf("%w: %d", ErrUnknownStep, i)
	}
	s.machine.Cancel()
	s.step = i
	s.tool = catalog.ToolNone
	s.log.WithField("step", s.course.Steps[i].ID).Info("step selected")
	return nil
}

// Advance completes the current step and moves to the next. Completing
// the last step restarts the course with every part installed.
func (s *Session) Advance() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.course.Steps) == 0 {
		return Progress{}, ErrNoMoreSteps
	}
	if _, dragging := s.machine.Dragging(); dragging {
		return Progress{Step: s.step}, ErrDragInProgress
	}
	st := s.course.Steps[s.step]
	if !stepComplete(st, s.removed) {
		return Progress{Step: s.step}, fmt.Errorf("%w: step %d", ErrStepIncomplete, st.ID)
	}

	s.stats.CompleteStep(st.ID)
	s.observer.ObserveStep(s.course.ID)
	s.tool = catalog.ToolNone

	if s.step+1 < len(s.course.Steps) {
		s.step++
		s.log.WithFields(logrus.Fields{"completed": st.ID, "step": s.course.Steps[s.step].ID}).Info("step advanced")
		return Progress{Step: s.step}, nil
	}

	s.step = 0
	s.annotation = false
	s.removed = make(map[string]bool)
	s.observer.ObserveRemoved(s.course.ID, 0)
	s.log.WithField("completed", st.ID).Info("course finished")
	return Progress{Step: 0, Finished: true}, nil
}

// ---- tool palette and annotation ----

// SetTool selects t and leaves annotation mode.
func (s *Session) SetTool(t catalog.Tool) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTool, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool = t
	s.annotation = false
	return nil
}

// SetAnnotationMode switches annotation mode. Turning it on puts the tool
// down and is refused while a part is being dragged.
func (s *Session) SetAnnotationMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setAnnotation(on)
}

func (s *Session) setAnnotation(on bool) error {
	if on {
		if id, dragging := s.machine.Dragging(); dragging {
			return fmt.Errorf("%w: %s", ErrDragInProgress, id)
		}
		s.tool = catalog.ToolNone
	}
	s.annotation = on
	return nil
}

// ToggleAnnotation flips annotation mode and returns the new value.
func (s *Session) ToggleAnnotation() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setAnnotation(!s.annotation); err != nil {
		return s.annotation, err
	}
	return s.annotation, nil
}

// Reset reinstalls every part, returns to the first step, leaves
// annotation mode and puts the tool down. Statistics are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Cancel()
	s.removed = make(map[string]bool)
	s.annotation = false
	s.tool = catalog.ToolNone
	s.step = 0
	s.observer.ObserveRemoved(s.course.ID, 0)
	s.log.WithField("step", s.step).Info("scene reset")
}

// Close drops any drag in flight. The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Cancel()
}

// ---- pointer ----

// PointerDown handles a press on part id and applies the result.
func (s *Session) PointerDown(id string) interact.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.machine.PointerDown(s.view(), id)
	s.apply(ev)
	return ev
}

// PointerMove records the pointer ray for the part being dragged.
func (s *Session) PointerMove(camera, dir mgl64.Vec3) {
	s.mu.Lock()
	s.machine.PointerMove(camera, dir)
	s.mu.Unlock()
}

// Sample projects the latest pointer ray and returns the dragged part and
// its position. It is called once per frame.
func (s *Session) Sample() (string, mgl64.Vec3, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Sample(s.view())
}

// PointerUp releases the dragged part and applies the snap result.
func (s *Session) PointerUp() interact.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := s.machine.PointerUp(s.view())
	s.apply(ev)
	return ev
}

// apply is the single place the removed set changes.
func (s *Session) apply(ev interact.Event) {
	log := s.log.WithFields(logrus.Fields{"part": ev.PartID, "tool": ev.Tool})
	switch ev.Outcome {
	case interact.WrongTool:
		s.stats.RecordError()
		log.WithField("needed", ev.Needed).Info("wrong tool")
	case interact.Removal:
		s.removed[ev.PartID] = true
		log.Info("part removed")
	case interact.Install:
		delete(s.removed, ev.SlotID)
		log.WithField("slot", ev.SlotID).Info("part installed")
	case interact.SnapMiss:
		log.Debug("released away from any slot")
	default:
		return
	}
	s.observer.ObserveEvent(s.course.ID, ev)
	if ev.Outcome == interact.Removal || ev.Outcome == interact.Install {
		s.observer.ObserveRemoved(s.course.ID, len(s.removed))
	}
}
