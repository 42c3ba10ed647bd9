package main

import (
	"os"
	"testing"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/config"
	"github.com/chazu/mechtrainer/pkg/interact"
	"github.com/chazu/mechtrainer/pkg/telemetry"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus/hooks/test"
)

// testConfig keeps marching cubes coarse so module selection stays fast.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Geometry.MeshCells = 16
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	logger, _ := test.NewNullLogger()
	app, err := NewApp(testConfig(), logger, telemetry.New())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

// TestE2EReducerModule exercises the full pipeline: course catalog →
// geometry → session → scene. This is the same path the Wails bindings
// take, but without the Wails runtime.
func TestE2EReducerModule(t *testing.T) {
	app := newTestApp(t)

	mod, err := app.SelectModule("REDUCER")
	if err != nil {
		t.Fatalf("SelectModule: %v", err)
	}
	if mod.SessionID == "" {
		t.Error("expected a session id")
	}
	if len(mod.Meshes) != 13 {
		t.Fatalf("expected 13 meshes, got %d", len(mod.Meshes))
	}
	if len(mod.Frame.Parts) != 13 {
		t.Fatalf("expected 13 parts in the first frame, got %d", len(mod.Frame.Parts))
	}

	for i, m := range mod.Meshes {
		if m.PartName != mod.Course.Parts[i].ID {
			t.Errorf("mesh %d: part name %q, want %q", i, m.PartName, mod.Course.Parts[i].ID)
		}
		if len(m.Vertices) == 0 || len(m.Normals) == 0 || len(m.Indices) == 0 {
			t.Errorf("part %q: empty geometry", m.PartName)
		}
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
	}
}

// TestE2EDisassembleAndReassemble walks the joint bolts out and back in.
func TestE2EDisassembleAndReassemble(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.SelectModule("REDUCER"); err != nil {
		t.Fatalf("SelectModule: %v", err)
	}

	if err := app.SelectStep(5); err != nil {
		t.Fatalf("SelectStep: %v", err)
	}
	if err := app.SetTool("wrench-large"); err != nil {
		t.Fatalf("SetTool: %v", err)
	}
	for _, id := range []string{"bolt_1", "bolt_2", "bolt_3", "bolt_4"} {
		ev, err := app.PointerDown(id)
		if err != nil || ev.Outcome != interact.Removal {
			t.Fatalf("removing %s: %v %v", id, ev.Outcome, err)
		}
	}
	p, err := app.Advance()
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if p.Step != 6 {
		t.Errorf("expected step 6, got %d", p.Step)
	}

	// Jump to the bolt reinstallation step and drop bolt_4 onto bolt_1's slot.
	if err := app.SelectStep(10); err != nil {
		t.Fatalf("SelectStep: %v", err)
	}
	if err := app.SetTool("WRENCH_LARGE"); err != nil {
		t.Fatalf("SetTool: %v", err)
	}
	ev, _ := app.PointerDown("bolt_4")
	if ev.Outcome != interact.DragStarted {
		t.Fatalf("expected drag to start, got %s", ev.Outcome)
	}
	if err := app.PointerMove(mgl64.Vec3{-2.6, 0.2, 10}, mgl64.Vec3{0, 0, -1}); err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	f, err := app.Frame(16)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if f.Dragging != "bolt_4" {
		t.Errorf("expected bolt_4 in flight, got %q", f.Dragging)
	}
	ev, _ = app.PointerUp()
	if ev.Outcome != interact.Install || ev.SlotID != "bolt_1" {
		t.Fatalf("expected install into bolt_1, got %s %q", ev.Outcome, ev.SlotID)
	}

	s := app.session.RemovedParts()
	if len(s) != 3 {
		t.Errorf("expected 3 removed parts, got %v", s)
	}
}

func TestE2EWrongToolStats(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.SelectModule("REDUCER"); err != nil {
		t.Fatalf("SelectModule: %v", err)
	}
	if err := app.SelectStep(5); err != nil {
		t.Fatal(err)
	}
	if err := app.SetTool("HAMMER"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		ev, _ := app.PointerDown("bolt_1")
		if ev.Outcome != interact.WrongTool {
			t.Fatalf("expected wrong tool, got %s", ev.Outcome)
		}
	}
	st, err := app.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Errors != 3 || st.Accuracy != 85 {
		t.Errorf("expected 3 errors at 85%%, got %d at %d%%", st.Errors, st.Accuracy)
	}
	if err := app.SubmitQuiz(4, 5); err != nil {
		t.Fatal(err)
	}
	if st, _ := app.Stats(); st.QuizScore != 4 || st.QuizTotal != 5 {
		t.Errorf("quiz not recorded: %+v", st)
	}
}

// TestE2ECourseFile loads the reducer written in the course DSL.
func TestE2ECourseFile(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("courses/reducer.course")
	if err != nil {
		t.Fatalf("failed to read reducer.course: %v", err)
	}
	result := app.LoadCourse(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if result.CourseID != "REDUCER" {
		t.Errorf("expected REDUCER, got %q", result.CourseID)
	}
	if n := len(app.Courses()); n != 2 {
		t.Errorf("loading a known id must replace it, got %d courses", n)
	}
}

func TestE2ECourses(t *testing.T) {
	app := newTestApp(t)
	courses := app.Courses()
	if len(courses) != 2 {
		t.Fatalf("expected 2 built-in courses, got %d", len(courses))
	}
	if courses[0].ID != "REDUCER" || courses[1].ID != "ENGINE" {
		t.Errorf("unexpected order: %s, %s", courses[0].ID, courses[1].ID)
	}
	for _, c := range courses {
		if len(c.Parts) == 0 || len(c.Steps) == 0 || len(c.Tools) == 0 {
			t.Errorf("course %s is incomplete", c.ID)
		}
	}
	if courses[1].Tools[len(courses[1].Tools)-1] != catalog.ToolHoist {
		t.Errorf("engine palette should end with the hoist, got %v", courses[1].Tools)
	}
}
