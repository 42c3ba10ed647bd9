package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ---- surface primitives ----
//
// These build meshes directly instead of going through an SDF kernel.
// Open casings, thin tubes and clamp rings are thinner than a marching
// cubes cell and would vanish from a sampled mesh.

// ring returns the point at angle a on a circle of radius r around the Y
// axis at height y. Angle 0 lies on +Z and increases towards +X.
func ring(a, r, y float64) mgl64.Vec3 {
	return mgl64.Vec3{r * math.Sin(a), y, r * math.Cos(a)}
}

// Frustum builds a truncated cone around the Y axis, centered on the
// origin, with bottomRadius at y=-height/2. Open frustums have no caps.
// Faces wind outward. Fewer than three segments or a non-positive height
// yields an empty mesh.
func Frustum(bottomRadius, topRadius, height float64, segments int, open bool) *Mesh {
	return frustum(bottomRadius, topRadius, height, segments, open, 0, 2*math.Pi)
}

// CylinderArc builds an open cylindrical surface around the Y axis that
// sweeps thetaLength radians starting at thetaStart.
func CylinderArc(radius, height float64, segments int, thetaStart, thetaLength float64) *Mesh {
	if thetaLength <= 0 {
		return EmptyMesh()
	}
	return frustum(radius, radius, height, segments, true, thetaStart, thetaLength)
}

func frustum(bottomRadius, topRadius, height float64, segments int, open bool, thetaStart, thetaLength float64) *Mesh {
	if segments < 3 || height <= 0 || (bottomRadius <= 0 && topRadius <= 0) {
		return EmptyMesh()
	}
	y0, y1 := -height/2, height/2
	step := thetaLength / float64(segments)

	var tris [][3]mgl64.Vec3
	for j := 0; j < segments; j++ {
		a0, a1 := thetaStart+float64(j)*step, thetaStart+float64(j+1)*step
		b0, b1 := ring(a0, bottomRadius, y0), ring(a1, bottomRadius, y0)
		t0, t1 := ring(a0, topRadius, y1), ring(a1, topRadius, y1)
		if bottomRadius > 0 {
			tris = append(tris, [3]mgl64.Vec3{b0, b1, t1})
		}
		if topRadius > 0 {
			tris = append(tris, [3]mgl64.Vec3{b0, t1, t0})
		}
		if open {
			continue
		}
		if topRadius > 0 {
			tris = append(tris, [3]mgl64.Vec3{{0, y1, 0}, t0, t1})
		}
		if bottomRadius > 0 {
			tris = append(tris, [3]mgl64.Vec3{{0, y0, 0}, b1, b0})
		}
	}
	return fromTriangles(tris)
}

// Torus builds a ring around the Y axis with the given major and tube
// radii. arc limits the sweep in radians; zero or anything at or above a
// full turn gives a closed ring.
func Torus(radius, tube float64, radialSegments, tubularSegments int, arc float64) *Mesh {
	if radius <= 0 || tube <= 0 || radialSegments < 3 || tubularSegments < 3 {
		return EmptyMesh()
	}
	if arc <= 0 || arc > 2*math.Pi {
		arc = 2 * math.Pi
	}
	at := func(u, v float64) mgl64.Vec3 {
		r := radius + tube*math.Cos(v)
		return mgl64.Vec3{r * math.Sin(u), tube * math.Sin(v), r * math.Cos(u)}
	}
	du := arc / float64(tubularSegments)
	dv := 2 * math.Pi / float64(radialSegments)

	tris := make([][3]mgl64.Vec3, 0, tubularSegments*radialSegments*2)
	for i := 0; i < tubularSegments; i++ {
		u0, u1 := float64(i)*du, float64(i+1)*du
		for j := 0; j < radialSegments; j++ {
			v0, v1 := float64(j)*dv, float64(j+1)*dv
			tris = append(tris,
				[3]mgl64.Vec3{at(u0, v0), at(u1, v0), at(u1, v1)},
				[3]mgl64.Vec3{at(u0, v0), at(u1, v1), at(u0, v1)},
			)
		}
	}
	return fromTriangles(tris)
}

// BoxMesh builds an axis-aligned box centered on the origin.
func BoxMesh(x, y, z float64) *Mesh {
	if x <= 0 || y <= 0 || z <= 0 {
		return EmptyMesh()
	}
	rect := []mgl64.Vec2{{-x / 2, -y / 2}, {x / 2, -y / 2}, {x / 2, y / 2}, {-x / 2, y / 2}}
	return ExtrudePolygon(rect, z).Transform(mgl64.Translate3D(0, 0, -z/2))
}
