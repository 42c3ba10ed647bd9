package catalog

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ---- part types ----

// PartType tags which geometry generator builds a part. The set is closed.
type PartType string

const (
	TypeBolt            PartType = "bolt"
	TypeCover           PartType = "cover"
	TypeObsCover        PartType = "obs_cover"
	TypeHousing         PartType = "housing"
	TypeShaft           PartType = "shaft"
	TypeGear            PartType = "gear"
	TypeEngineFanCase   PartType = "engine_fan_case"
	TypeEngineFanRotor  PartType = "engine_fan_rotor"
	TypeEngineLPC       PartType = "engine_lpc"
	TypeEngineIPC       PartType = "engine_ipc"
	TypeEngineHPC       PartType = "engine_hpc"
	TypeEngineCombustor PartType = "engine_combustor"
	TypeEngineHPT       PartType = "engine_hpt"
	TypeEngineLPT       PartType = "engine_lpt"
	TypeEngineGearbox   PartType = "engine_gearbox"
	TypeEngineNozzle    PartType = "engine_nozzle"
	TypeEngineStand     PartType = "engine_stand"
	TypeEnginePipe      PartType = "engine_pipe"
)

// PartTypes lists every valid part type.
var PartTypes = []PartType{
	TypeBolt, TypeCover, TypeObsCover, TypeHousing, TypeShaft, TypeGear,
	TypeEngineFanCase, TypeEngineFanRotor, TypeEngineLPC, TypeEngineIPC,
	TypeEngineHPC, TypeEngineCombustor, TypeEngineHPT, TypeEngineLPT,
	TypeEngineGearbox, TypeEngineNozzle, TypeEngineStand, TypeEnginePipe,
}

// Valid reports whether t is a member of the closed type set.
func (t PartType) Valid() bool {
	for _, v := range PartTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ---- tools ----

// Tool is an entry of the tool palette.
type Tool string

const (
	ToolNone        Tool = "NONE"
	ToolWrenchSmall Tool = "WRENCH_SMALL"
	ToolWrenchLarge Tool = "WRENCH_LARGE"
	ToolHand        Tool = "HAND"
	ToolPuller      Tool = "PULLER"
	ToolHammer      Tool = "HAMMER"
	ToolHoist       Tool = "HOIST"
)

// Tools lists every tool in palette order.
var Tools = []Tool{
	ToolNone, ToolWrenchSmall, ToolWrenchLarge, ToolHand, ToolPuller, ToolHammer, ToolHoist,
}

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	for _, v := range Tools {
		if v == t {
			return true
		}
	}
	return false
}

// ParseTool accepts the canonical form ("WRENCH_SMALL") as well as the
// lower kebab form used by course files ("wrench-small").
func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tool %q", s)
	}
	return t, nil
}

// ---- action modes ----

// ActionMode is the kind of work a curriculum step asks for.
type ActionMode string

const (
	ModeDisassemble ActionMode = "DISASSEMBLE"
	ModeAssemble    ActionMode = "ASSEMBLE"
	ModeInspect     ActionMode = "INSPECT"
)

// ParseActionMode accepts "DISASSEMBLE" or "disassemble" and friends.
func ParseActionMode(s string) (ActionMode, error) {
	m := ActionMode(strings.ToUpper(s))
	switch m {
	case ModeDisassemble, ModeAssemble, ModeInspect:
		return m, nil
	}
	return "", fmt.Errorf("unknown action mode %q", s)
}

// ---- parts ----

// Transform is a position, Euler rotation (radians, XYZ order) and scale.
type Transform struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Vec3 `json:"rotation"`
	Scale    mgl64.Vec3 `json:"scale"`
}

// Matrix returns the model matrix T * Rz * Ry * Rx * S.
func (t Transform) Matrix() mgl64.Mat4 {
	scale := t.Scale
	if scale == (mgl64.Vec3{}) {
		scale = mgl64.Vec3{1, 1, 1}
	}
	return mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(mgl64.HomogRotate3DZ(t.Rotation[2])).
		Mul4(mgl64.HomogRotate3DY(t.Rotation[1])).
		Mul4(mgl64.HomogRotate3DX(t.Rotation[0])).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// ExplodedLift is the default displacement of a removed part with no
// explicit exploded position.
var ExplodedLift = mgl64.Vec3{0, 3, 0}

// Part is one discrete component of an assembly. Parts are immutable once
// a Catalog is built.
type Part struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         PartType `json:"type"`
	RequiredTool Tool     `json:"requiredTool"`
	// AssemblyTool overrides RequiredTool when reinstalling. Empty means
	// the same tool.
	AssemblyTool Tool   `json:"assemblyTool,omitempty"`
	DependencyID string `json:"dependencyId,omitempty"`

	Home Transform `json:"home"`
	// ExplodedPosition and ExplodedRotation are the removed pose. Nil
	// fields fall back to home + ExplodedLift and the home rotation.
	ExplodedPosition *mgl64.Vec3 `json:"explodedPosition,omitempty"`
	ExplodedRotation *mgl64.Vec3 `json:"explodedRotation,omitempty"`

	// AnnotationOffset is the 3D displacement used in annotation mode.
	// When nil the legacy AnnotationHeight lifts the part along Y.
	AnnotationOffset *mgl64.Vec3 `json:"annotationOffset,omitempty"`
	AnnotationHeight float64     `json:"annotationHeight,omitempty"`

	Color       string `json:"color"`
	Description string `json:"description"`
}

// ToolFor returns the tool that must be active to act on the part in mode.
func (p Part) ToolFor(mode ActionMode) Tool {
	if mode == ModeAssemble && p.AssemblyTool != "" {
		return p.AssemblyTool
	}
	return p.RequiredTool
}

// Exploded returns the removed pose.
func (p Part) Exploded() Transform {
	t := p.Home
	if p.ExplodedPosition != nil {
		t.Position = *p.ExplodedPosition
	} else {
		t.Position = p.Home.Position.Add(ExplodedLift)
	}
	if p.ExplodedRotation != nil {
		t.Rotation = *p.ExplodedRotation
	}
	return t
}

// AnnotationDisplacement returns the offset from home used in annotation mode.
func (p Part) AnnotationDisplacement() mgl64.Vec3 {
	if p.AnnotationOffset != nil {
		return *p.AnnotationOffset
	}
	return mgl64.Vec3{0, p.AnnotationHeight, 0}
}

// Annotated returns the annotation pose: home shifted by the annotation
// displacement, keeping the home rotation and scale.
func (p Part) Annotated() Transform {
	t := p.Home
	t.Position = p.Home.Position.Add(p.AnnotationDisplacement())
	return t
}
