package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/config"
	"github.com/chazu/mechtrainer/pkg/course"
	"github.com/chazu/mechtrainer/pkg/engine"
	"github.com/chazu/mechtrainer/pkg/geometry"
	"github.com/chazu/mechtrainer/pkg/interact"
	"github.com/chazu/mechtrainer/pkg/kernel/sdfx"
	"github.com/chazu/mechtrainer/pkg/pose"
	"github.com/chazu/mechtrainer/pkg/scene"
	"github.com/chazu/mechtrainer/pkg/session"
	"github.com/chazu/mechtrainer/pkg/stats"
	"github.com/chazu/mechtrainer/pkg/telemetry"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// colorPalette is used for parts that do not define a colour.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// maxFrameStep caps a single animation step, e.g. after the window was hidden.
const maxFrameStep = 250 * time.Millisecond

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx      context.Context
	log      *logrus.Entry
	engine   *engine.Engine
	manager  *session.Manager
	resolver pose.Resolver

	mu       sync.Mutex
	session  *session.Session
	composer *scene.Composer
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// LoadResult is returned by LoadCourse.
type LoadResult struct {
	CourseID string          `json:"courseId"`
	Errors   []EvalErrorData `json:"errors"`
}

// CourseData describes a selectable module.
type CourseData struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle"`
	Description string         `json:"description"`
	Tools       []catalog.Tool `json:"tools"`
	Steps       []catalog.Step `json:"steps"`
	Parts       []catalog.Part `json:"parts"`
}

// ModuleData is everything the frontend needs after selecting a module.
type ModuleData struct {
	SessionID string      `json:"sessionId"`
	Course    CourseData  `json:"course"`
	Meshes    []MeshData  `json:"meshes"`
	Frame     scene.Frame `json:"frame"`
}

// NewApp creates the backend: course registry (built-in plus the course
// directory), DSL engine, sdfx kernel and session manager. metrics may be nil.
func NewApp(cfg config.Config, logger *logrus.Logger, metrics *telemetry.Metrics) (*App, error) {
	log := logrus.NewEntry(logger)

	reg, err := course.Builtin()
	if err != nil {
		return nil, err
	}
	eng := engine.NewEngine()
	eng.Timeout = cfg.Engine.EvalTimeout
	if cfg.Courses.Dir != "" {
		if _, err := reg.LoadDir(eng, cfg.Courses.Dir, log); err != nil {
			return nil, err
		}
	}

	opts := session.Options{SnapThreshold: cfg.Interaction.SnapThreshold}
	var builds geometry.BuildObserver
	if metrics != nil {
		opts.Observer = metrics
		builds = metrics
	}
	k := sdfx.NewWithCells(cfg.Geometry.MeshCells)
	manager := session.NewManager(reg, k, opts, builds, log)
	log.WithFields(logrus.Fields{"courses": len(manager.Courses()), "mesh_cells": k.Cells()}).Info("backend ready")

	resolver := pose.DefaultResolver
	resolver.DelayBase = cfg.Interaction.AnnotationDelayBase

	return &App{
		log:      log,
		engine:   eng,
		manager:  manager,
		resolver: resolver,
	}, nil
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		a.session.Close()
	}
}

func courseData(c *catalog.Course) CourseData {
	return CourseData{
		ID:          c.ID,
		Title:       c.Title,
		Subtitle:    c.Subtitle,
		Description: c.Description,
		Tools:       append([]catalog.Tool{}, c.Tools...),
		Steps:       append([]catalog.Step{}, c.Steps...),
		Parts:       c.Catalog.Parts(),
	}
}

// Courses lists the selectable modules.
func (a *App) Courses() []CourseData {
	out := []CourseData{}
	for _, c := range a.manager.Courses() {
		out = append(out, courseData(c))
	}
	return out
}

// SelectModule starts a fresh session on module id and builds its meshes.
func (a *App) SelectModule(id string) (ModuleData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, cache, err := a.manager.Select(id)
	if err != nil {
		return ModuleData{}, err
	}
	a.session = s
	a.composer = scene.New(s, a.resolver)

	c := s.Course()
	data := ModuleData{SessionID: s.ID(), Course: courseData(c), Meshes: []MeshData{}}
	parts := c.Catalog.Parts()
	for i, m := range scene.Meshes(c.Catalog, cache) {
		color := parts[i].Color
		if color == "" {
			color = colorPalette[i%len(colorPalette)]
		}
		data.Meshes = append(data.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    color,
		})
	}
	data.Frame = a.composer.Frame(0)
	return data, nil
}

// LoadCourse evaluates course DSL source and registers the course it
// defines, replacing a module with the same id.
func (a *App) LoadCourse(source string) LoadResult {
	result := LoadResult{Errors: []EvalErrorData{}}

	c, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.WithError(err).Error("course evaluation failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(evalErrs) > 0 {
		return result
	}
	if c == nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: "no course defined"})
		return result
	}

	a.manager.Add(c)
	a.log.WithFields(logrus.Fields{"module": c.ID, "parts": c.Catalog.Len()}).Info("course loaded")
	result.CourseID = c.ID
	return result
}

// current returns the live session and composer.
func (a *App) current() (*session.Session, *scene.Composer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, nil, session.ErrNoSession
	}
	return a.session, a.composer, nil
}

// SelectStep jumps to step i of the current module.
func (a *App) SelectStep(i int) error {
	s, _, err := a.current()
	if err != nil {
		return err
	}
	return s.SelectStep(i)
}

// Advance completes the current step.
func (a *App) Advance() (session.Progress, error) {
	s, _, err := a.current()
	if err != nil {
		return session.Progress{}, err
	}
	return s.Advance()
}

// SetTool selects a tool by name ("WRENCH_LARGE" or "wrench-large").
func (a *App) SetTool(name string) error {
	s, _, err := a.current()
	if err != nil {
		return err
	}
	tool, err := catalog.ParseTool(name)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrUnknownTool, err)
	}
	return s.SetTool(tool)
}

// ToggleAnnotation flips annotation mode.
func (a *App) ToggleAnnotation() (bool, error) {
	s, _, err := a.current()
	if err != nil {
		return false, err
	}
	return s.ToggleAnnotation()
}

// Reset reinstalls every part and returns to the first step.
func (a *App) Reset() error {
	s, _, err := a.current()
	if err != nil {
		return err
	}
	s.Reset()
	return nil
}

// Hover marks the part under the pointer; an empty id clears it.
func (a *App) Hover(id string) error {
	_, c, err := a.current()
	if err != nil {
		return err
	}
	c.Hover(id)
	return nil
}

// PointerDown handles a press on part id.
func (a *App) PointerDown(id string) (interact.Event, error) {
	s, _, err := a.current()
	if err != nil {
		return interact.Event{}, err
	}
	return s.PointerDown(id), nil
}

// PointerMove records the pointer ray in assembly coordinates.
func (a *App) PointerMove(camera, dir mgl64.Vec3) error {
	s, _, err := a.current()
	if err != nil {
		return err
	}
	s.PointerMove(camera, dir)
	return nil
}

// PointerUp releases the dragged part.
func (a *App) PointerUp() (interact.Event, error) {
	_, c, err := a.current()
	if err != nil {
		return interact.Event{}, err
	}
	return c.PointerUp(), nil
}

// Frame advances the scene by dtMillis and returns the snapshot.
func (a *App) Frame(dtMillis float64) (scene.Frame, error) {
	_, c, err := a.current()
	if err != nil {
		return scene.Frame{}, err
	}
	dt := time.Duration(dtMillis * float64(time.Millisecond))
	dt = min(max(dt, 0), maxFrameStep)
	return c.Frame(dt), nil
}

// Stats returns the trainee statistics of the current module.
func (a *App) Stats() (stats.Snapshot, error) {
	s, _, err := a.current()
	if err != nil {
		return stats.Snapshot{}, err
	}
	return s.Stats(), nil
}

// SubmitQuiz records a quiz result for the current module.
func (a *App) SubmitQuiz(score, total int) error {
	s, _, err := a.current()
	if err != nil {
		return err
	}
	s.RecordQuiz(score, total)
	return nil
}
