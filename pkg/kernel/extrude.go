package kernel

import "github.com/go-gl/mathgl/mgl64"

// ---- polygon triangulation ----

// SignedArea returns the signed area of a closed polygon. Counter-clockwise
// polygons have positive area.
func SignedArea(poly []mgl64.Vec2) float64 {
	var a float64
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		a += p[0]*q[1] - q[0]*p[1]
	}
	return a / 2
}

// Triangulate splits a simple polygon into triangles by ear clipping and
// returns index triples into poly. Triangles are wound counter-clockwise
// regardless of the input orientation. A polygon with n points always
// yields n-2 triangles; if no ear can be found (self-intersecting input)
// the remainder is fanned from its first vertex.
func Triangulate(poly []mgl64.Vec2) [][3]int {
	n := len(poly)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if SignedArea(poly) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	tris := make([][3]int, 0, n-2)
	for len(idx) > 3 {
		ear := -1
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if cross2(poly[prev], poly[cur], poly[next]) <= 1e-12 {
				continue
			}
			if containsAny(poly, idx, prev, cur, next) {
				continue
			}
			ear = i
			tris = append(tris, [3]int{prev, cur, next})
			break
		}
		if ear < 0 {
			for i := 1; i+1 < len(idx); i++ {
				tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
			}
			return tris
		}
		idx = append(idx[:ear], idx[ear+1:]...)
	}
	return append(tris, [3]int{idx[0], idx[1], idx[2]})
}

// cross2 is the z component of (b-a) x (c-b).
func cross2(a, b, c mgl64.Vec2) float64 {
	return (b[0]-a[0])*(c[1]-b[1]) - (b[1]-a[1])*(c[0]-b[0])
}

// containsAny reports whether any remaining vertex other than the ear's
// corners lies inside triangle (a, b, c).
func containsAny(poly []mgl64.Vec2, idx []int, a, b, c int) bool {
	for _, i := range idx {
		if i == a || i == b || i == c {
			continue
		}
		if pointInTriangle(poly[i], poly[a], poly[b], poly[c]) {
			return true
		}
	}
	return false
}

func pointInTriangle(p, a, b, c mgl64.Vec2) bool {
	d1 := cross2(p, a, b)
	d2 := cross2(p, b, c)
	d3 := cross2(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// ---- extrusion ----

// ExtrudePolygon extrudes a closed XY outline along +Z from z=0 to
// z=depth and returns a non-indexed mesh with flat normals. The result
// has 2(n-2) cap triangles and 2n side triangles for an n-point outline.
// Fewer than three points or a non-positive depth yields an empty mesh.
func ExtrudePolygon(outline []mgl64.Vec2, depth float64) *Mesh {
	n := len(outline)
	if n < 3 || depth <= 0 {
		return EmptyMesh()
	}
	poly := append([]mgl64.Vec2{}, outline...)
	if SignedArea(poly) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}

	var tris [][3]mgl64.Vec3
	at := func(p mgl64.Vec2, z float64) mgl64.Vec3 { return mgl64.Vec3{p[0], p[1], z} }

	for _, t := range Triangulate(poly) {
		a, b, c := poly[t[0]], poly[t[1]], poly[t[2]]
		tris = append(tris,
			[3]mgl64.Vec3{at(a, depth), at(b, depth), at(c, depth)},
			[3]mgl64.Vec3{at(a, 0), at(c, 0), at(b, 0)},
		)
	}
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		tris = append(tris,
			[3]mgl64.Vec3{at(a, 0), at(b, 0), at(b, depth)},
			[3]mgl64.Vec3{at(a, 0), at(b, depth), at(a, depth)},
		)
	}
	return fromTriangles(tris)
}

// fromTriangles builds a non-indexed mesh from a triangle list.
func fromTriangles(tris [][3]mgl64.Vec3) *Mesh {
	m := &Mesh{
		Vertices: make([]float32, 0, len(tris)*9),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	for _, t := range tris {
		for _, v := range t {
			m.Indices = append(m.Indices, uint32(len(m.Vertices)/3))
			m.Vertices = append(m.Vertices, float32(v[0]), float32(v[1]), float32(v[2]))
		}
	}
	m.Normals = computeFlatNormals(m.Vertices, m.Indices)
	return m
}
