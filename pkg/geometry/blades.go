package geometry

import (
	"math"

	"github.com/chazu/mechtrainer/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// BladeKind selects the airfoil family of a blade row.
type BladeKind int

const (
	Compressor BladeKind = iota // symmetric teardrop section
	Turbine                     // cambered section
)

// Stagger angles about the blade chord, radians.
const (
	StatorStagger     = -0.3
	TurbineStagger    = 0.6
	CompressorStagger = 0.4
)

// curveSegments is the number of samples per airfoil curve.
const curveSegments = 8

// BladeRowSpec describes one ring of blades around the Y axis. Rotor rows
// carry a hub rim ring; stator rows do not.
type BladeRowSpec struct {
	Type        BladeKind
	InnerRadius float64
	OuterRadius float64
	Count       int
	Stator      bool
}

func (BladeRowSpec) Kind() string { return "blade_row" }

// chord returns the chord and thickness of a single blade.
func (s BladeRowSpec) chord() (chord, thickness float64) {
	pitch := 2 * math.Pi * s.OuterRadius / float64(s.Count)
	if s.Type == Turbine {
		chord = pitch * 0.55
		return chord, chord * 0.2
	}
	chord = pitch * 0.45
	return chord, chord * 0.15
}

// stagger returns the twist of the blade about its chord.
func (s BladeRowSpec) stagger() float64 {
	switch {
	case s.Stator:
		return StatorStagger
	case s.Type == Turbine:
		return TurbineStagger
	}
	return CompressorStagger
}

// Airfoil returns the closed cross-section of one blade in XY, chord
// along X. Turbine sections have a convex suction side and a concave
// pressure side; compressor sections are a thin teardrop.
func Airfoil(kind BladeKind, chord, thickness float64) []mgl64.Vec2 {
	var pts []mgl64.Vec2
	if kind == Turbine {
		a := mgl64.Vec2{-chord / 2, -thickness / 3}
		b := mgl64.Vec2{chord / 2, -thickness / 3}
		pts = append(pts, sampleCubic(a, mgl64.Vec2{-chord / 4, thickness * 1.5}, mgl64.Vec2{chord / 4, thickness * 1.5}, b)...)
		pts = append(pts, sampleCubic(b, mgl64.Vec2{chord / 4, thickness * 0.2}, mgl64.Vec2{-chord / 4, thickness * 0.2}, a)...)
		return pts
	}
	a := mgl64.Vec2{-chord / 2, 0}
	b := mgl64.Vec2{chord / 2, 0}
	pts = append(pts, sampleQuadratic(a, mgl64.Vec2{0, thickness}, b)...)
	pts = append(pts, sampleQuadratic(b, mgl64.Vec2{0, -thickness * 0.3}, a)...)
	return pts
}

// sampleCubic samples a cubic bezier, leaving out its end point so
// consecutive curves join without duplicates.
func sampleCubic(p0, p1, p2, p3 mgl64.Vec2) []mgl64.Vec2 {
	pts := make([]mgl64.Vec2, curveSegments)
	for i := range pts {
		t := float64(i) / curveSegments
		u := 1 - t
		pts[i] = p0.Mul(u * u * u).Add(p1.Mul(3 * u * u * t)).Add(p2.Mul(3 * u * t * t)).Add(p3.Mul(t * t * t))
	}
	return pts
}

func sampleQuadratic(p0, p1, p2 mgl64.Vec2) []mgl64.Vec2 {
	pts := make([]mgl64.Vec2, curveSegments)
	for i := range pts {
		t := float64(i) / curveSegments
		u := 1 - t
		pts[i] = p0.Mul(u * u).Add(p1.Mul(2 * u * t)).Add(p2.Mul(t * t))
	}
	return pts
}

// BladeRow builds the row as a single merged mesh. The airfoil is
// extruded from hub to tip, staggered about its chord, placed at the hub
// radius on +X and then copied Count times around Y.
func BladeRow(s BladeRowSpec) *kernel.Mesh {
	span := s.OuterRadius - s.InnerRadius
	if s.Count <= 0 || span <= 0 {
		return kernel.EmptyMesh()
	}
	chord, thickness := s.chord()
	blade := kernel.ExtrudePolygon(Airfoil(s.Type, chord, thickness), span)
	place := mgl64.Translate3D(s.InnerRadius, 0, 0).
		Mul4(mgl64.HomogRotate3DX(s.stagger())).
		Mul4(mgl64.HomogRotate3DY(math.Pi / 2))

	parts := make([]*kernel.Mesh, 0, s.Count+1)
	step := 2 * math.Pi / float64(s.Count)
	for i := 0; i < s.Count; i++ {
		parts = append(parts, blade.Transform(mgl64.HomogRotate3DY(-float64(i)*step).Mul4(place)))
	}
	if !s.Stator {
		parts = append(parts, kernel.Frustum(s.InnerRadius-0.05, s.InnerRadius, 0.15, 32, false))
	}
	return kernel.Merge(parts...)
}

func (s BladeRowSpec) Build(kernel.Kernel) (*kernel.Mesh, error) {
	return BladeRow(s), nil
}
