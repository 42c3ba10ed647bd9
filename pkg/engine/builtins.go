package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/go-gl/mathgl/mgl64"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites course source before passing it to zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     need to be registered as globals.
//
//  2. Kebab-case identifiers become underscore form (shaft-id -> shaft_id),
//     since zygomys reads a hyphen as the subtraction operator.
//
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpVec3 carries a vector between vec3 and the builtins that consume it.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without its prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer, accepting floats with no fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_hand) and plain strings ("hand").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toTool parses a tool keyword such as :wrench-small.
func toTool(s zygo.Sexp) (catalog.Tool, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", err
	}
	return catalog.ParseTool(name)
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Course builder
// ---------------------------------------------------------------------------

// courseBuilder accumulates the forms of one course file.
type courseBuilder struct {
	defined     bool
	id          string
	title       string
	subtitle    string
	description string
	tools       []catalog.Tool
	parts       []catalog.Part
	steps       []catalog.Step

	// err is the first error returned by a builtin.
	err error
}

func newCourseBuilder() *courseBuilder {
	return &courseBuilder{}
}

// build validates the accumulated forms into a course.
func (b *courseBuilder) build() (*catalog.Course, error) {
	if !b.defined {
		return nil, fmt.Errorf("no defcourse form")
	}
	c, err := catalog.NewCourse(b.id, b.title, b.parts, b.tools, b.steps)
	if err != nil {
		return nil, err
	}
	c.Subtitle = b.subtitle
	c.Description = b.description
	return c, nil
}

// kwString reads an optional string keyword into dst.
func kwString(pa kwArgs, fn, key string, dst *string) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	s, err := toString(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = s
	return nil
}

// kwVec3 reads an optional vec3 keyword. It returns nil when absent.
func kwVec3(pa kwArgs, fn, key string) (*mgl64.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return nil, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return &vec, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the course DSL into a zygomys environment.
// The builtins record into b during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *courseBuilder) {
	// add records the first builtin failure so it can be reported verbatim
	// instead of through the interpreter's wrapped error text.
	add := func(name string, fn func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)) {
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			res, err := fn(env, name, args)
			if err != nil && b.err == nil {
				b.err = err
			}
			return res, err
		})
	}

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	add("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: expected 3 arguments, got %d", len(args))
		}
		var v mgl64.Vec3
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (deg 90) -> radians
	// -----------------------------------------------------------------------
	add("deg", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("deg: expected 1 argument, got %d", len(args))
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("deg: %w", err)
		}
		return &zygo.SexpFloat{Val: mgl64.DegToRad(f)}, nil
	})

	// -----------------------------------------------------------------------
	// (defcourse "REDUCER" :title "..." :subtitle "..." :description "..."
	//            :tools (list :hand :wrench-small))
	// -----------------------------------------------------------------------
	add("defcourse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.defined {
			return zygo.SexpNull, fmt.Errorf("defcourse: course %q already defined", b.id)
		}
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("defcourse: expected a course id")
		}
		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcourse: id: %w", err)
		}
		b.id = id
		b.title = id
		for key, dst := range map[string]*string{"title": &b.title, "subtitle": &b.subtitle, "description": &b.description} {
			if err := kwString(pa, "defcourse", key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		if v, ok := pa.kw["tools"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defcourse: tools: %w", err)
			}
			for _, item := range items {
				t, err := toTool(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("defcourse: tools: %w", err)
				}
				b.tools = append(b.tools, t)
			}
		}
		b.defined = true
		return &zygo.SexpStr{S: id}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "bolt_1" :name "Hex bolt M10" :type :bolt :tool :wrench-large
	//          :assembly-tool :hammer :depends-on "obs_cover"
	//          :at (vec3 -2.6 0.2 1.6) :rotation (vec3 0 0 0) :scale 1
	//          :exploded (vec3 4.5 -1.8 0) :exploded-rotation (vec3 (deg 90) 0 0)
	//          :annotation (vec3 0 5 0) :annotation-height 1.5
	//          :color "#CBD5E1" :description "...")
	// -----------------------------------------------------------------------
	add("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("defpart: expected a part id")
		}
		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: id: %w", err)
		}
		p := catalog.Part{ID: id, Name: id, RequiredTool: catalog.ToolNone}
		fn := "defpart " + id

		for key, dst := range map[string]*string{"name": &p.Name, "color": &p.Color, "description": &p.Description, "depends-on": &p.DependencyID} {
			if err := kwString(pa, fn, key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		if v, ok := pa.kw["type"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: type: %w", fn, err)
			}
			p.Type = catalog.PartType(s)
		}
		if v, ok := pa.kw["tool"]; ok {
			if p.RequiredTool, err = toTool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: tool: %w", fn, err)
			}
		}
		if v, ok := pa.kw["assembly-tool"]; ok {
			if p.AssemblyTool, err = toTool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: assembly-tool: %w", fn, err)
			}
		}

		p.Home.Scale = mgl64.Vec3{1, 1, 1}
		if v, ok := pa.kw["scale"]; ok {
			if f, ferr := toFloat64(v); ferr == nil {
				p.Home.Scale = mgl64.Vec3{f, f, f}
			} else if p.Home.Scale, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: scale: expected number or vec3", fn)
			}
		}
		if at, err := kwVec3(pa, fn, "at"); err != nil {
			return zygo.SexpNull, err
		} else if at != nil {
			p.Home.Position = *at
		}
		if rot, err := kwVec3(pa, fn, "rotation"); err != nil {
			return zygo.SexpNull, err
		} else if rot != nil {
			p.Home.Rotation = *rot
		}
		if p.ExplodedPosition, err = kwVec3(pa, fn, "exploded"); err != nil {
			return zygo.SexpNull, err
		}
		if p.ExplodedRotation, err = kwVec3(pa, fn, "exploded-rotation"); err != nil {
			return zygo.SexpNull, err
		}
		if p.AnnotationOffset, err = kwVec3(pa, fn, "annotation"); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["annotation-height"]; ok {
			if p.AnnotationHeight, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: annotation-height: %w", fn, err)
			}
		}

		b.parts = append(b.parts, p)
		return &zygo.SexpStr{S: id}, nil
	})

	// -----------------------------------------------------------------------
	// (defstep 3 :title "..." :description "..." :action :disassemble
	//          :targets (list "bolt_1" "bolt_2"))
	// -----------------------------------------------------------------------
	add("defstep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("defstep: expected a step id")
		}
		id, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defstep: id: %w", err)
		}
		s := catalog.Step{ID: id, Action: catalog.ModeInspect}
		fn := fmt.Sprintf("defstep %d", id)

		for key, dst := range map[string]*string{"title": &s.Title, "description": &s.Description} {
			if err := kwString(pa, fn, key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		if v, ok := pa.kw["action"]; ok {
			a, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: action: %w", fn, err)
			}
			if s.Action, err = catalog.ParseActionMode(a); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
		}
		if v, ok := pa.kw["targets"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: targets: %w", fn, err)
			}
			for _, item := range items {
				t, err := toString(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: targets: %w", fn, err)
				}
				s.Targets = append(s.Targets, t)
			}
		}

		b.steps = append(b.steps, s)
		return &zygo.SexpInt{Val: int64(id)}, nil
	})
}
