package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/mechtrainer/pkg/config"
	"github.com/chazu/mechtrainer/pkg/interact"
	"github.com/chazu/mechtrainer/pkg/session"
	"github.com/chazu/mechtrainer/pkg/telemetry"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
)

// ---------------------------------------------------------------------------
// 1. Bindings called before any module is selected.
// ---------------------------------------------------------------------------

func TestE2ENoModuleSelected(t *testing.T) {
	app := newTestApp(t)

	if err := app.SetTool("HAND"); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("SetTool: expected ErrNoSession, got %v", err)
	}
	if _, err := app.PointerDown("bolt_1"); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("PointerDown: expected ErrNoSession, got %v", err)
	}
	if _, err := app.Frame(16); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Frame: expected ErrNoSession, got %v", err)
	}
	if _, err := app.Advance(); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Advance: expected ErrNoSession, got %v", err)
	}
	if err := app.Reset(); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("Reset: expected ErrNoSession, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// 2. Unknown module and unknown tool.
// ---------------------------------------------------------------------------

func TestE2EUnknownModule(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.SelectModule("LATHE"); !errors.Is(err, session.ErrUnknownModule) {
		t.Errorf("expected ErrUnknownModule, got %v", err)
	}
}

func TestE2EUnknownTool(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.SelectModule("REDUCER"); err != nil {
		t.Fatal(err)
	}
	err := app.SetTool("spanner")
	if !errors.Is(err, session.ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "spanner") {
		t.Errorf("error should name the tool, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// 3. Course DSL errors surface as eval errors, never as a registered course.
// ---------------------------------------------------------------------------

func TestE2ELoadCourseEmpty(t *testing.T) {
	app := newTestApp(t)
	result := app.LoadCourse("")

	if result.Errors == nil {
		t.Fatal("Errors should be non-nil (JSON should serialize as [] not null)")
	}
	if len(result.Errors) != 1 || result.Errors[0].Message != "no course defined" {
		t.Errorf("expected a single 'no course defined' error, got %v", result.Errors)
	}
	if result.CourseID != "" {
		t.Errorf("expected no course id, got %q", result.CourseID)
	}
}

func TestE2ELoadCourseSyntaxError(t *testing.T) {
	app := newTestApp(t)

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	result := app.LoadCourse("(+ 1 2)\n(defcourse \"BROKEN\"")
	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	if len(app.Courses()) != 2 {
		t.Errorf("a broken course must not be registered")
	}
}

func TestE2ELoadCourseInvalidCatalog(t *testing.T) {
	app := newTestApp(t)
	source := `
(defcourse "LOOP" :title "Loop" :tools (list :hand))
(defpart "a" :type :cover :tool :hand :depends-on "b")
(defpart "b" :type :cover :tool :hand :depends-on "a")
`
	result := app.LoadCourse(source)
	if len(result.Errors) == 0 {
		t.Fatal("expected a validation error for a dependency cycle")
	}
	if !strings.Contains(result.Errors[0].Message, "cycle") {
		t.Errorf("expected the error to mention the cycle, got %v", result.Errors)
	}
}

func TestE2ELoadCourseAndSelect(t *testing.T) {
	app := newTestApp(t)
	source := `
(defcourse "MINI" :title "Mini" :tools (list :hand))
(defpart "cover" :type :obs_cover :tool :hand :at (vec3 0 1 0))
(defstep 1 :title "Lift it" :action :disassemble :targets (list "cover"))
`
	result := app.LoadCourse(source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	mod, err := app.SelectModule(result.CourseID)
	if err != nil {
		t.Fatalf("SelectModule: %v", err)
	}
	if len(mod.Meshes) != 1 || mod.Meshes[0].Color == "" {
		t.Fatalf("expected one coloured mesh, got %+v", len(mod.Meshes))
	}
	if err := app.SetTool("HAND"); err != nil {
		t.Fatal(err)
	}
	if ev, _ := app.PointerDown("cover"); ev.Outcome != interact.Removal {
		t.Errorf("expected removal, got %s", ev.Outcome)
	}
	p, err := app.Advance()
	if err != nil {
		t.Fatal(err)
	}
	if !p.Finished {
		t.Errorf("completing the only step should finish the course")
	}
}

// ---------------------------------------------------------------------------
// 4. Frame timing is clamped.
// ---------------------------------------------------------------------------

func TestE2EFrameClamp(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.SelectModule("REDUCER"); err != nil {
		t.Fatal(err)
	}
	f, err := app.Frame(-50)
	if err != nil {
		t.Fatal(err)
	}
	if f.Elapsed != 0 {
		t.Errorf("negative frame time should count as zero, got %s", f.Elapsed)
	}
	f, _ = app.Frame(60_000)
	if f.Elapsed != maxFrameStep {
		t.Errorf("expected elapsed %s, got %s", maxFrameStep, f.Elapsed)
	}
}

// ---------------------------------------------------------------------------
// 5. Annotation mode cannot start while a part is in flight.
// ---------------------------------------------------------------------------

func TestE2EAnnotationDuringDrag(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.SelectModule("REDUCER"); err != nil {
		t.Fatal(err)
	}
	_ = app.SelectStep(5)
	_ = app.SetTool("WRENCH_LARGE")
	_, _ = app.PointerDown("bolt_2")
	_ = app.SelectStep(10)
	_ = app.SetTool("WRENCH_LARGE")
	if ev, _ := app.PointerDown("bolt_2"); ev.Outcome != interact.DragStarted {
		t.Fatalf("expected drag, got %s", ev.Outcome)
	}

	if _, err := app.ToggleAnnotation(); !errors.Is(err, session.ErrDragInProgress) {
		t.Errorf("expected ErrDragInProgress, got %v", err)
	}
	if err := app.PointerMove(mgl64.Vec3{20, 10, 10}, mgl64.Vec3{0, 0, -1}); err != nil {
		t.Fatal(err)
	}
	if ev, _ := app.PointerUp(); ev.Outcome != interact.SnapMiss {
		t.Errorf("expected a snap miss far from the housing, got %s", ev.Outcome)
	}
	on, err := app.ToggleAnnotation()
	if err != nil || !on {
		t.Errorf("annotation should turn on after release, got %v %v", on, err)
	}
	f, _ := app.Frame(16)
	for _, p := range f.Parts {
		if p.Highlight.Kind != "none" {
			t.Errorf("part %s highlighted in annotation mode: %s", p.ID, p.Highlight.Kind)
		}
	}
}

// ---------------------------------------------------------------------------
// 6. Module switches rebuild geometry and report it to telemetry.
// ---------------------------------------------------------------------------

func TestE2EModuleSwitchTelemetry(t *testing.T) {
	logger, _ := test.NewNullLogger()
	metrics := telemetry.New()
	cfg := testConfig()
	app, err := NewApp(cfg, logger, metrics)
	if err != nil {
		t.Fatal(err)
	}

	first, err := app.SelectModule("REDUCER")
	if err != nil {
		t.Fatal(err)
	}
	before := testutil.CollectAndCount(metrics.Registry, "mechtrainer_geometry_builds_total")
	if before == 0 {
		t.Fatal("expected geometry builds to be observed")
	}

	second, err := app.SelectModule("REDUCER")
	if err != nil {
		t.Fatal(err)
	}
	if first.SessionID == second.SessionID {
		t.Error("reselecting a module must start a new session")
	}
	_ = app.SelectStep(5)
	_ = app.SetTool("HAMMER")
	_, _ = app.PointerDown("bolt_1")
	if n := testutil.CollectAndCount(metrics.Registry, "mechtrainer_interaction_wrong_tool_total"); n != 1 {
		t.Errorf("expected one wrong-tool series, got %d", n)
	}
}

func TestE2EBackendReadyLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	if _, err := NewApp(testConfig(), logger, nil); err != nil {
		t.Fatal(err)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Message != "backend ready" {
		t.Fatalf("expected a backend ready entry, got %+v", entry)
	}
	if entry.Data["mesh_cells"] != 16 {
		t.Errorf("expected mesh_cells 16, got %v", entry.Data["mesh_cells"])
	}
	if entry.Data["courses"] != 2 {
		t.Errorf("expected 2 courses, got %v", entry.Data["courses"])
	}
}

// ---------------------------------------------------------------------------
// 7. Courses directory from configuration.
// ---------------------------------------------------------------------------

func TestE2ECoursesDir(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.Courses.Dir = "courses"
	app, err := NewApp(cfg, logger, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if n := len(app.Courses()); n != 2 {
		t.Errorf("the reducer course file replaces the built-in, got %d courses", n)
	}

	cfg.Courses.Dir = "does-not-exist"
	if _, err := NewApp(cfg, logger, nil); err == nil {
		t.Error("expected an error for a missing courses directory")
	}
}
