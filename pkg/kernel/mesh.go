package kernel

import "github.com/go-gl/mathgl/mgl64"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // catalog part id this mesh belongs to
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// EmptyMesh returns a mesh with no geometry and non-nil attribute slices,
// so it serializes as empty arrays rather than null.
func EmptyMesh() *Mesh {
	return &Mesh{
		Vertices: []float32{},
		Normals:  []float32{},
		Indices:  []uint32{},
	}
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices: append([]float32{}, m.Vertices...),
		Normals:  append([]float32{}, m.Normals...),
		Indices:  append([]uint32{}, m.Indices...),
		PartName: m.PartName,
	}
}

// vertex returns vertex i as a vector.
func (m *Mesh) vertex(i uint32) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(m.Vertices[i*3]),
		float64(m.Vertices[i*3+1]),
		float64(m.Vertices[i*3+2]),
	}
}

// Bounds returns the axis-aligned bounds of the mesh vertices.
// An empty mesh reports zero vectors.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	n := m.VertexCount()
	if n == 0 {
		return min, max
	}
	min = m.vertex(0)
	max = min
	for i := 1; i < n; i++ {
		v := m.vertex(uint32(i))
		for a := 0; a < 3; a++ {
			if v[a] < min[a] {
				min[a] = v[a]
			}
			if v[a] > max[a] {
				max[a] = v[a]
			}
		}
	}
	return min, max
}

// NonIndexed returns the mesh in the common attribute layout shared by
// every generator output: one vertex per triangle corner, a normal per
// vertex and sequential indices. Meshes in this layout can be merged
// regardless of where they came from.
//
// A mesh with no indices is read as a plain triangle list. Missing or
// mismatched normals are recomputed per face.
func (m *Mesh) NonIndexed() *Mesh {
	indices := m.Indices
	if len(indices) == 0 {
		indices = make([]uint32, m.VertexCount()/3*3)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	hasNormals := len(m.Normals) == len(m.Vertices)

	out := &Mesh{
		Vertices: make([]float32, 0, len(indices)*3),
		Normals:  make([]float32, 0, len(indices)*3),
		Indices:  make([]uint32, 0, len(indices)),
		PartName: m.PartName,
	}
	for i, idx := range indices {
		out.Vertices = append(out.Vertices, m.Vertices[idx*3], m.Vertices[idx*3+1], m.Vertices[idx*3+2])
		if hasNormals {
			out.Normals = append(out.Normals, m.Normals[idx*3], m.Normals[idx*3+1], m.Normals[idx*3+2])
		}
		out.Indices = append(out.Indices, uint32(i))
	}
	if !hasNormals {
		out.Normals = computeFlatNormals(out.Vertices, out.Indices)
	}
	return out
}

// Transform returns a copy of m with every vertex transformed by mat.
// Normals are transformed as directions and renormalized.
func (m *Mesh) Transform(mat mgl64.Mat4) *Mesh {
	out := m.Clone()
	for i := 0; i < m.VertexCount(); i++ {
		v := mgl64.TransformCoordinate(m.vertex(uint32(i)), mat)
		out.Vertices[i*3] = float32(v[0])
		out.Vertices[i*3+1] = float32(v[1])
		out.Vertices[i*3+2] = float32(v[2])
	}
	if len(m.Normals) == len(m.Vertices) {
		for i := 0; i < len(m.Normals)/3; i++ {
			n := mgl64.Vec3{float64(m.Normals[i*3]), float64(m.Normals[i*3+1]), float64(m.Normals[i*3+2])}
			n = mgl64.TransformNormal(n, mat)
			if l := n.Len(); l > 1e-12 {
				n = n.Mul(1 / l)
			}
			out.Normals[i*3] = float32(n[0])
			out.Normals[i*3+1] = float32(n[1])
			out.Normals[i*3+2] = float32(n[2])
		}
	}
	return out
}

// Merge concatenates meshes into a single mesh. Every input is first
// normalized with NonIndexed so indexed and non-indexed outputs mix
// freely. Nil and empty inputs are skipped; merging nothing yields an
// empty mesh.
func Merge(meshes ...*Mesh) *Mesh {
	out := EmptyMesh()
	for _, m := range meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		n := m.NonIndexed()
		base := uint32(out.VertexCount())
		out.Vertices = append(out.Vertices, n.Vertices...)
		out.Normals = append(out.Normals, n.Normals...)
		for _, idx := range n.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}

// computeFlatNormals computes per-vertex normals by accumulating the
// unnormalized face normal of every triangle touching the vertex.
func computeFlatNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		a := mgl64.Vec3{float64(vertices[i0*3]), float64(vertices[i0*3+1]), float64(vertices[i0*3+2])}
		b := mgl64.Vec3{float64(vertices[i1*3]), float64(vertices[i1*3+1]), float64(vertices[i1*3+2])}
		c := mgl64.Vec3{float64(vertices[i2*3]), float64(vertices[i2*3+1]), float64(vertices[i2*3+2])}
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range [3]uint32{i0, i1, i2} {
			normals[idx*3] += float32(n[0])
			normals[idx*3+1] += float32(n[1])
			normals[idx*3+2] += float32(n[2])
		}
	}
	for i := 0; i < len(normals)/3; i++ {
		n := mgl64.Vec3{float64(normals[i*3]), float64(normals[i*3+1]), float64(normals[i*3+2])}
		if l := n.Len(); l > 1e-12 {
			n = n.Mul(1 / l)
			normals[i*3] = float32(n[0])
			normals[i*3+1] = float32(n[1])
			normals[i*3+2] = float32(n[2])
		}
	}
	return normals
}
