package catalog

import "fmt"

// ValidationSeverity indicates whether a finding blocks loading a course
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks loading
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	PartID   string             // which part has the problem (empty if course-level)
	StepID   int                // which step has the problem (0 if none)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	switch {
	case e.PartID != "":
		return fmt.Sprintf("[%s] part %s: %s", e.Severity, e.PartID, e.Message)
	case e.StepID != 0:
		return fmt.Sprintf("[%s] step %d: %s", e.Severity, e.StepID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
}

// Validate runs every check on a course and returns its findings. An
// empty slice means the course is valid. It never mutates the course.
func Validate(c *Course) []ValidationError {
	var errs []ValidationError
	if c.Catalog == nil {
		return []ValidationError{{Message: "course has no catalog", Severity: SeverityError}}
	}
	errs = append(errs, validateParts(c.Catalog.parts)...)
	errs = append(errs, validateSteps(c)...)
	return errs
}

// validateParts checks identity, the closed type and tool sets, and the
// dependency forest.
func validateParts(parts []Part) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(parts))

	for _, p := range parts {
		if p.ID == "" {
			errs = append(errs, ValidationError{Message: "part with empty id", Severity: SeverityError})
			continue
		}
		if seen[p.ID] {
			errs = append(errs, ValidationError{PartID: p.ID, Message: "duplicate part id", Severity: SeverityError})
		}
		seen[p.ID] = true

		if !p.Type.Valid() {
			errs = append(errs, ValidationError{
				PartID:   p.ID,
				Message:  fmt.Sprintf("unknown part type %q", p.Type),
				Severity: SeverityError,
			})
		}
		if !p.RequiredTool.Valid() {
			errs = append(errs, ValidationError{
				PartID:   p.ID,
				Message:  fmt.Sprintf("unknown required tool %q", p.RequiredTool),
				Severity: SeverityError,
			})
		}
		if p.AssemblyTool != "" && !p.AssemblyTool.Valid() {
			errs = append(errs, ValidationError{
				PartID:   p.ID,
				Message:  fmt.Sprintf("unknown assembly tool %q", p.AssemblyTool),
				Severity: SeverityError,
			})
		}
		if p.DependencyID == p.ID {
			errs = append(errs, ValidationError{PartID: p.ID, Message: "part depends on itself", Severity: SeverityError})
		}
		if sc := p.Home.Scale; sc != ([3]float64{}) && (sc[0] == 0 || sc[1] == 0 || sc[2] == 0) {
			errs = append(errs, ValidationError{PartID: p.ID, Message: "scale has a zero axis", Severity: SeverityWarning})
		}
	}

	for _, p := range parts {
		if p.DependencyID != "" && !seen[p.DependencyID] {
			errs = append(errs, ValidationError{
				PartID:   p.ID,
				Message:  fmt.Sprintf("dependency %q does not exist", p.DependencyID),
				Severity: SeverityError,
			})
		}
	}

	errs = append(errs, validateForest(parts)...)
	return errs
}

// validateForest checks that following dependency links never loops,
// using DFS with 3-color marking. Every part has at most one outgoing
// edge, so each walk is a simple chain.
func validateForest(parts []Part) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	parent := make(map[string]string, len(parts))
	for _, p := range parts {
		if p.ID != "" && p.DependencyID != p.ID {
			parent[p.ID] = p.DependencyID
		}
	}

	color := make(map[string]int, len(parts))
	var errs []ValidationError

	for _, p := range parts {
		if color[p.ID] != white {
			continue
		}
		var path []string
		id := p.ID
		for id != "" {
			if color[id] == black {
				break
			}
			if color[id] == gray {
				errs = append(errs, ValidationError{
					PartID:   id,
					Message:  fmt.Sprintf("dependency cycle through %q", id),
					Severity: SeverityError,
				})
				break
			}
			if _, known := parent[id]; !known {
				// Dangling reference; reported separately.
				break
			}
			color[id] = gray
			path = append(path, id)
			id = parent[id]
		}
		for _, visited := range path {
			color[visited] = black
		}
	}
	return errs
}

// validateSteps checks step actions, target references and that each
// target's tool is in the course palette.
func validateSteps(c *Course) []ValidationError {
	var errs []ValidationError
	palette := make(map[Tool]bool, len(c.Tools))
	for _, t := range c.Tools {
		palette[t] = true
	}
	stepIDs := make(map[int]bool, len(c.Steps))

	for _, s := range c.Steps {
		if stepIDs[s.ID] {
			errs = append(errs, ValidationError{StepID: s.ID, Message: "duplicate step id", Severity: SeverityWarning})
		}
		stepIDs[s.ID] = true

		if _, err := ParseActionMode(string(s.Action)); err != nil {
			errs = append(errs, ValidationError{StepID: s.ID, Message: err.Error(), Severity: SeverityError})
			continue
		}
		for _, id := range s.Targets {
			p, ok := c.Catalog.Get(id)
			if !ok {
				errs = append(errs, ValidationError{
					StepID:   s.ID,
					Message:  fmt.Sprintf("target %q does not exist", id),
					Severity: SeverityError,
				})
				continue
			}
			if s.Action == ModeInspect || len(c.Tools) == 0 {
				continue
			}
			if tool := p.ToolFor(s.Action); tool != ToolNone && !palette[tool] {
				errs = append(errs, ValidationError{
					PartID:   id,
					Message:  fmt.Sprintf("step %d needs tool %s which is not in the palette", s.ID, tool),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
