// Package catalog describes the parts of a trainable assembly and the
// curriculum steps that act on them.
//
// A Catalog is built once per course module and never changes at runtime.
// It keeps parts in authoring order (which also decides snap tie-breaks)
// and an id index so the single-prerequisite dependency check is one map
// lookup.
package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidCatalog is returned by New and NewCourse when validation
// reports an error-severity finding.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is an immutable, ordered set of parts.
type Catalog struct {
	parts []Part
	index map[string]int
}

// New validates parts and builds a catalog. Warnings do not fail
// construction; they can be read back with Validate.
func New(parts []Part) (*Catalog, error) {
	c := &Catalog{
		parts: append([]Part(nil), parts...),
		index: make(map[string]int, len(parts)),
	}
	for i, p := range c.parts {
		if _, dup := c.index[p.ID]; !dup {
			c.index[p.ID] = i
		}
	}
	if err := firstError(validateParts(c.parts)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return c, nil
}

// Len returns the number of parts.
func (c *Catalog) Len() int {
	return len(c.parts)
}

// Parts returns the parts in authoring order. The slice is a copy.
func (c *Catalog) Parts() []Part {
	return append([]Part(nil), c.parts...)
}

// Get returns the part with the given id.
func (c *Catalog) Get(id string) (Part, bool) {
	i, ok := c.index[id]
	if !ok {
		return Part{}, false
	}
	return c.parts[i], true
}

// Dependency returns the prerequisite of part id, if any.
func (c *Catalog) Dependency(id string) (string, bool) {
	p, ok := c.Get(id)
	if !ok || p.DependencyID == "" {
		return "", false
	}
	return p.DependencyID, true
}

// Step is one curriculum step as seen by the core: what kind of work it
// asks for and which parts it targets.
type Step struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Action      ActionMode `json:"action"`
	Targets     []string   `json:"targets"`
}

// IsTarget reports whether id is one of the step's target parts.
func (s Step) IsTarget(id string) bool {
	for _, t := range s.Targets {
		if t == id {
			return true
		}
	}
	return false
}

// Course is a selectable training module: a part catalog, its tool
// palette and the ordered curriculum.
type Course struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Description string   `json:"description"`
	Tools       []Tool   `json:"tools"`
	Steps       []Step   `json:"steps"`
	Catalog     *Catalog `json:"-"`
}

// NewCourse builds the catalog for parts and validates the whole course.
func NewCourse(id, title string, parts []Part, tools []Tool, steps []Step) (*Course, error) {
	cat, err := New(parts)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", id, err)
	}
	c := &Course{ID: id, Title: title, Tools: tools, Steps: steps, Catalog: cat}
	if err := firstError(Validate(c)); err != nil {
		return nil, fmt.Errorf("course %s: %w: %v", id, ErrInvalidCatalog, err)
	}
	return c, nil
}

// firstError returns the first error-severity finding, or nil.
func firstError(findings []ValidationError) error {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return f
		}
	}
	return nil
}
