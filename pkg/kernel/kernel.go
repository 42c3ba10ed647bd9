// Package kernel defines the abstract geometry kernel used by the part
// generators. A kernel builds solids from primitives and extruded 2D
// profiles, combines them with boolean operations and tessellates the
// result into a Mesh. The sdfx backend lives in a subpackage so the
// generators never depend on a particular CAD library.
package kernel

import "github.com/go-gl/mathgl/mgl64"

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Profile is an opaque handle to a closed 2D region in the XY plane.
type Profile interface {
	// Bounds returns the axis-aligned bounding rectangle.
	Bounds() (min, max [2]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Solids are centered on the origin unless stated otherwise. Cylinders,
// cones and extrusions run along the Z axis. Constructors panic on
// degenerate input (zero radius, fewer than three polygon points); the
// geometry cache recovers from those panics.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Cone(height, bottomRadius, topRadius float64) Solid

	// Profiles
	Polygon(points []mgl64.Vec2) Profile
	Circle(radius float64) Profile
	ProfileUnion(a, b Profile) Profile
	ProfileDifference(a, b Profile) Profile
	TranslateProfile(p Profile, x, y float64) Profile

	// Extrusion. The result spans z in [-depth/2, depth/2].
	Extrude(p Profile, depth float64) Solid
	TwistExtrude(p Profile, depth, twist float64) Solid
	ExtrudeRounded(p Profile, depth, round float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in radians, applied X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
