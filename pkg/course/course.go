// Package course provides the built-in training modules and loads
// additional modules written in the course DSL.
package course

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/engine"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// FileExt is the extension of course DSL files.
const FileExt = ".course"

// Evaluator turns course DSL source into a course.
type Evaluator interface {
	Evaluate(source string) (*catalog.Course, []engine.EvalError, error)
}

// Registry holds the selectable courses in presentation order.
type Registry struct {
	order   []string
	courses map[string]*catalog.Course
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{courses: make(map[string]*catalog.Course)}
}

// Builtin returns a registry with the reducer and engine courses.
func Builtin() (*Registry, error) {
	r := NewRegistry()
	for _, build := range []func() (*catalog.Course, error){Reducer, Engine} {
		c, err := build()
		if err != nil {
			return nil, fmt.Errorf("builtin course: %w", err)
		}
		r.Add(c)
	}
	return r, nil
}

// Add registers c, replacing any course with the same id in place.
func (r *Registry) Add(c *catalog.Course) {
	if _, exists := r.courses[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.courses[c.ID] = c
}

// Get returns the course with the given id.
func (r *Registry) Get(id string) (*catalog.Course, bool) {
	c, ok := r.courses[id]
	return c, ok
}

// List returns the courses in registration order.
func (r *Registry) List() []*catalog.Course {
	out := make([]*catalog.Course, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.courses[id])
	}
	return out
}

// LoadDir evaluates every course file in dir and registers the results.
// Files that fail to evaluate are logged and skipped; the returned error
// only reports an unreadable directory. It returns the number of courses
// loaded.
func (r *Registry) LoadDir(ev Evaluator, dir string, log *logrus.Entry) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading course dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), FileExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	loaded := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		c, err := LoadFile(ev, path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("skipping course file")
			continue
		}
		r.Add(c)
		loaded++
		log.WithFields(logrus.Fields{"file": path, "module": c.ID, "parts": c.Catalog.Len()}).Info("loaded course")
	}
	return loaded, nil
}

// LoadFile evaluates a single course file.
func LoadFile(ev Evaluator, path string) (*catalog.Course, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c, evalErrs, err := ev.Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		return nil, fmt.Errorf("evaluating %s: %w", path, evalErrs[0])
	}
	if c == nil {
		return nil, fmt.Errorf("evaluating %s: no course defined", path)
	}
	return c, nil
}

func vec(x, y, z float64) *mgl64.Vec3 {
	return &mgl64.Vec3{x, y, z}
}

func transform(pos, rot [3]float64, scale float64) catalog.Transform {
	return catalog.Transform{
		Position: pos,
		Rotation: rot,
		Scale:    mgl64.Vec3{scale, scale, scale},
	}
}
