package session

import (
	"testing"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/course"
	"github.com/chazu/mechtrainer/pkg/geometry"
	"github.com/chazu/mechtrainer/pkg/interact"
	"github.com/chazu/mechtrainer/pkg/kernel/sdfx"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Step indexes of the reducer course.
const (
	stepInspectCover = 4  // remove the inspection cover
	stepJointBolts   = 5  // remove the joint bolts
	stepTightenBolts = 10 // reinstall the joint bolts
)

type recorder struct {
	events  []interact.Event
	removed []int
	steps   int
}

func (r *recorder) ObserveEvent(_ string, ev interact.Event) { r.events = append(r.events, ev) }
func (r *recorder) ObserveRemoved(_ string, n int)           { r.removed = append(r.removed, n) }
func (r *recorder) ObserveStep(string)                       { r.steps++ }

func quietLog() *logrus.Entry {
	log, _ := test.NewNullLogger()
	return logrus.NewEntry(log)
}

func newReducer(t *testing.T) (*Session, *recorder) {
	t.Helper()
	c, err := course.Reducer()
	require.NoError(t, err)
	rec := &recorder{}
	return New(c, Options{SnapThreshold: 3.5, Observer: rec}, quietLog()), rec
}

func TestNewSession(t *testing.T) {
	s, _ := newReducer(t)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, catalog.ToolNone, s.Tool())
	assert.False(t, s.Annotation())
	assert.Empty(t, s.RemovedParts())

	i, st := s.Step()
	assert.Equal(t, 0, i)
	assert.Equal(t, catalog.ModeInspect, st.Action)
	assert.True(t, s.CurrentStepComplete())

	other, _ := newReducer(t)
	assert.NotEqual(t, s.ID(), other.ID())
}

func TestDisassemblyWalkthrough(t *testing.T) {
	s, rec := newReducer(t)
	require.NoError(t, s.SelectStep(stepInspectCover))
	require.NoError(t, s.SetTool(catalog.ToolHand))

	ev := s.PointerDown("obs_cover")
	assert.Equal(t, interact.Ineligible, ev.Outcome, "bolts come first")
	assert.Empty(t, s.RemovedParts())

	require.NoError(t, s.SetTool(catalog.ToolWrenchSmall))
	for _, id := range []string{"obs_bolt_4", "obs_bolt_1", "obs_bolt_2"} {
		require.Equal(t, interact.Removal, s.PointerDown(id).Outcome, id)
	}
	assert.False(t, s.CurrentStepComplete())
	_, err := s.Advance()
	assert.ErrorIs(t, err, ErrStepIncomplete)

	require.Equal(t, interact.Removal, s.PointerDown("obs_bolt_3").Outcome)
	require.NoError(t, s.SetTool(catalog.ToolHand))
	require.Equal(t, interact.Removal, s.PointerDown("obs_cover").Outcome)
	assert.Equal(t, []string{"obs_bolt_1", "obs_bolt_2", "obs_bolt_3", "obs_bolt_4", "obs_cover"}, s.RemovedParts())

	p, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, Progress{Step: stepJointBolts}, p)
	assert.Equal(t, catalog.ToolNone, s.Tool(), "advancing puts the tool down")
	assert.Equal(t, 1, rec.steps)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rec.removed)
	assert.Equal(t, 1, s.Stats().CompletedSteps)
}

func TestWrongToolCountsErrors(t *testing.T) {
	s, rec := newReducer(t)
	require.NoError(t, s.SelectStep(stepJointBolts))

	ev := s.PointerDown("bolt_1")
	assert.Equal(t, interact.WrongTool, ev.Outcome, "no tool is a wrong tool")
	require.NoError(t, s.SetTool(catalog.ToolHammer))
	assert.Equal(t, interact.WrongTool, s.PointerDown("bolt_1").Outcome)

	// Not a target of this step: ignored, not counted.
	assert.Equal(t, interact.Ineligible, s.PointerDown("housing_cover").Outcome)

	st := s.Stats()
	assert.Equal(t, 2, st.Errors)
	assert.Equal(t, 90, st.Accuracy)
	assert.Empty(t, s.RemovedParts())
	assert.Len(t, rec.events, 2)
	assert.Empty(t, rec.removed)
}

func TestStepComplete(t *testing.T) {
	s, _ := newReducer(t)
	dis := catalog.Step{Action: catalog.ModeDisassemble, Targets: []string{"bolt_1", "bolt_2"}}
	asm := catalog.Step{Action: catalog.ModeAssemble, Targets: []string{"bolt_1", "bolt_2"}}
	ins := catalog.Step{Action: catalog.ModeInspect, Targets: []string{"bolt_1"}}
	empty := catalog.Step{Action: catalog.ModeDisassemble}

	assert.False(t, s.StepComplete(dis))
	assert.True(t, s.StepComplete(asm))
	assert.True(t, s.StepComplete(ins))
	assert.True(t, s.StepComplete(empty))

	require.NoError(t, s.SelectStep(stepJointBolts))
	require.NoError(t, s.SetTool(catalog.ToolWrenchLarge))
	s.PointerDown("bolt_1")
	assert.False(t, s.StepComplete(dis))
	assert.False(t, s.StepComplete(asm))

	s.PointerDown("bolt_2")
	assert.True(t, s.StepComplete(dis))
	assert.False(t, s.StepComplete(asm))
}

func TestFungibleInstall(t *testing.T) {
	s, rec := newReducer(t)
	require.NoError(t, s.SelectStep(stepJointBolts))
	require.NoError(t, s.SetTool(catalog.ToolWrenchLarge))
	s.PointerDown("bolt_1")
	s.PointerDown("bolt_2")

	require.NoError(t, s.SelectStep(stepTightenBolts))
	require.NoError(t, s.SetTool(catalog.ToolWrenchLarge))
	require.Equal(t, interact.DragStarted, s.PointerDown("bolt_1").Outcome)
	assert.Equal(t, interact.Dragging, s.StateOf("bolt_1"))

	// Straight down the z axis above bolt_2's home.
	s.PointerMove(mgl64.Vec3{2.6, 0.2, 10}, mgl64.Vec3{0, 0, -1})
	id, pos, ok := s.Sample()
	require.True(t, ok)
	assert.Equal(t, "bolt_1", id)
	assert.Equal(t, mgl64.Vec3{2.6, 0.2, 2}, pos)

	ev := s.PointerUp()
	assert.Equal(t, interact.Install, ev.Outcome)
	assert.Equal(t, "bolt_2", ev.SlotID)
	assert.Equal(t, []string{"bolt_1"}, s.RemovedParts())
	assert.Equal(t, []int{1, 2, 1}, rec.removed)
	assert.Equal(t, interact.Removed, s.StateOf("bolt_1"))
}

func TestSnapMissKeepsRemoved(t *testing.T) {
	s, _ := newReducer(t)
	require.NoError(t, s.SelectStep(stepJointBolts))
	require.NoError(t, s.SetTool(catalog.ToolWrenchLarge))
	s.PointerDown("bolt_1")

	require.NoError(t, s.SelectStep(stepTightenBolts))
	require.NoError(t, s.SetTool(catalog.ToolWrenchLarge))
	require.Equal(t, interact.DragStarted, s.PointerDown("bolt_1").Outcome)
	assert.Equal(t, interact.SnapMiss, s.PointerUp().Outcome)
	assert.Equal(t, []string{"bolt_1"}, s.RemovedParts())
}

func TestDragBlocksAnnotationAndAdvance(t *testing.T) {
	s, _ := newReducer(t)
	require.NoError(t, s.SelectStep(stepJointBolts))
	require.NoError(t, s.SetTool(catalog.ToolWrenchLarge))
	s.PointerDown("bolt_1")
	require.NoError(t, s.SelectStep(stepTightenBolts))
	require.NoError(t, s.SetTool(catalog.ToolWrenchLarge))
	require.Equal(t, interact.DragStarted, s.PointerDown("bolt_1").Outcome)

	assert.ErrorIs(t, s.SetAnnotationMode(true), ErrDragInProgress)
	on, err := s.ToggleAnnotation()
	assert.ErrorIs(t, err, ErrDragInProgress)
	assert.False(t, on)
	_, err = s.Advance()
	assert.ErrorIs(t, err, ErrDragInProgress)

	// Changing step drops the drag.
	require.NoError(t, s.SelectStep(stepTightenBolts))
	assert.Equal(t, interact.Removed, s.StateOf("bolt_1"))
	assert.NoError(t, s.SetAnnotationMode(true))
}

func TestToolAndAnnotationExclusive(t *testing.T) {
	s, _ := newReducer(t)
	require.NoError(t, s.SetTool(catalog.ToolPuller))

	on, err := s.ToggleAnnotation()
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, catalog.ToolNone, s.Tool())

	require.NoError(t, s.SetTool(catalog.ToolHammer))
	assert.False(t, s.Annotation())

	assert.ErrorIs(t, s.SetTool("SPANNER"), ErrUnknownTool)
	assert.Equal(t, catalog.ToolHammer, s.Tool())
}

func TestAnnotationBlocksPointer(t *testing.T) {
	s, _ := newReducer(t)
	require.NoError(t, s.SelectStep(stepJointBolts))
	require.NoError(t, s.SetAnnotationMode(true))
	assert.Equal(t, interact.None, s.PointerDown("bolt_1").Outcome)
	assert.Equal(t, 0, s.Stats().Errors)
}

func TestReset(t *testing.T) {
	s, rec := newReducer(t)
	require.NoError(t, s.SelectStep(stepJointBolts))
	require.NoError(t, s.SetTool(catalog.ToolWrenchLarge))
	s.PointerDown("bolt_1")
	require.NoError(t, s.SetAnnotationMode(true))

	s.Reset()
	assert.Empty(t, s.RemovedParts())
	assert.False(t, s.Annotation())
	assert.Equal(t, catalog.ToolNone, s.Tool())
	i, st := s.Step()
	assert.Equal(t, 0, i, "reset returns to the first step")
	assert.Equal(t, catalog.ModeInspect, st.Action)
	assert.Equal(t, 0, rec.removed[len(rec.removed)-1])
}

func TestResetFromDependentStep(t *testing.T) {
	s, _ := newReducer(t)
	require.NoError(t, s.SelectStep(stepJointBolts))
	require.NoError(t, s.SetTool(catalog.ToolHammer))
	s.PointerDown("bolt_1")
	require.NoError(t, s.SelectStep(stepJointBolts+1))

	// Lifting the housing cover needs the joint bolts out, so staying on
	// that step after a reset would leave no way forward.
	s.Reset()
	i, _ := s.Step()
	require.Equal(t, 0, i)
	assert.True(t, s.CurrentStepComplete())
	assert.Equal(t, 1, s.Stats().Errors, "statistics survive a reset")

	for step := 0; step < stepJointBolts; step++ {
		p, err := s.Advance()
		require.NoError(t, err, "step %d", step)
		assert.Equal(t, step+1, p.Step)
		if p.Step == stepInspectCover {
			require.NoError(t, s.SetTool(catalog.ToolWrenchSmall))
			for _, id := range []string{"obs_bolt_1", "obs_bolt_2", "obs_bolt_3", "obs_bolt_4"} {
				require.Equal(t, interact.Removal, s.PointerDown(id).Outcome, id)
			}
			require.NoError(t, s.SetTool(catalog.ToolHand))
			require.Equal(t, interact.Removal, s.PointerDown("obs_cover").Outcome)
		}
	}
	i, _ = s.Step()
	assert.Equal(t, stepJointBolts, i)
}

func TestSelectStepErrors(t *testing.T) {
	s, _ := newReducer(t)
	assert.ErrorIs(t, s.SelectStep(-1), ErrUnknownStep)
	assert.ErrorIs(t, s.SelectStep(len(s.Course().Steps)), ErrUnknownStep)
}

func TestFinishingRestartsCourse(t *testing.T) {
	c, err := catalog.NewCourse("MINI", "Mini", []catalog.Part{
		{ID: "A", Type: catalog.TypeCover, RequiredTool: catalog.ToolHand},
	}, []catalog.Tool{catalog.ToolHand}, []catalog.Step{
		{ID: 1, Action: catalog.ModeInspect},
		{ID: 2, Action: catalog.ModeDisassemble, Targets: []string{"A"}},
	})
	require.NoError(t, err)
	s := New(c, Options{}, quietLog())

	p, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, Progress{Step: 1}, p)

	require.NoError(t, s.SetTool(catalog.ToolHand))
	require.Equal(t, interact.Removal, s.PointerDown("A").Outcome)
	p, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, Progress{Step: 0, Finished: true}, p)
	assert.Empty(t, s.RemovedParts())
	assert.Equal(t, 2, s.Stats().CompletedSteps)
}

func TestCourseWithoutSteps(t *testing.T) {
	c, err := catalog.NewCourse("BARE", "Bare", []catalog.Part{
		{ID: "A", Type: catalog.TypeCover, RequiredTool: catalog.ToolHand},
	}, nil, nil)
	require.NoError(t, err)
	s := New(c, Options{}, nil)

	_, err = s.Advance()
	assert.ErrorIs(t, err, ErrNoMoreSteps)
	assert.True(t, s.CanInteract("A"), "an empty course is open for inspection")
	assert.Equal(t, interact.Identified, s.PointerDown("A").Outcome)
}

func TestViewIsACopy(t *testing.T) {
	s, _ := newReducer(t)
	v := s.View()
	v.Removed["housing"] = true
	assert.Empty(t, s.RemovedParts())
}

func TestManagerSelect(t *testing.T) {
	reg, err := course.Builtin()
	require.NoError(t, err)
	m := NewManager(reg, sdfx.NewWithCells(8), Options{}, nil, quietLog())

	_, _, err = m.Current()
	assert.ErrorIs(t, err, ErrNoSession)
	_, _, err = m.Select("LATHE")
	assert.ErrorIs(t, err, ErrUnknownModule)

	first, cache, err := m.Select(course.ReducerID)
	require.NoError(t, err)
	cache.Get(geometry.BoxSpec{X: 1, Y: 1, Z: 1})
	require.Equal(t, 1, cache.Len())
	require.NoError(t, first.SetTool(catalog.ToolHand))

	second, next, err := m.Select(course.ReducerID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID(), "reselecting starts over")
	assert.Equal(t, 0, cache.Len(), "outgoing geometry is dropped")
	assert.NotSame(t, cache, next)
	assert.Equal(t, catalog.ToolNone, second.Tool())

	cur, curCache, err := m.Current()
	require.NoError(t, err)
	assert.Same(t, second, cur)
	assert.Same(t, next, curCache)

	engine, _, err := m.Select(course.EngineID)
	require.NoError(t, err)
	assert.Equal(t, course.EngineID, engine.Course().ID)
	assert.Len(t, m.Courses(), 2)
}
