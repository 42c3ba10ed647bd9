package geometry

import (
	"fmt"
	"math"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// StageSpec is one module of the turbofan training engine. The engine
// axis is local Y, front at -Y.
type StageSpec struct {
	Stage catalog.PartType
}

func (s StageSpec) Kind() string { return string(s.Stage) }

func (s StageSpec) Build(k kernel.Kernel) (*kernel.Mesh, error) {
	build, ok := stages[s.Stage]
	if !ok {
		return nil, fmt.Errorf("no engine stage %q", s.Stage)
	}
	a := &assembly{k: k}
	build(a)
	return a.mesh()
}

var stages = map[catalog.PartType]func(*assembly){
	catalog.TypeEngineFanCase:   fanCase,
	catalog.TypeEngineFanRotor:  fanRotor,
	catalog.TypeEngineLPC:       lowPressureCompressor,
	catalog.TypeEngineIPC:       intermediateCase,
	catalog.TypeEngineHPC:       highPressureCompressor,
	catalog.TypeEngineCombustor: combustor,
	catalog.TypeEngineHPT:       highPressureTurbine,
	catalog.TypeEngineLPT:       lowPressureTurbine,
	catalog.TypeEngineGearbox:   accessoryGearbox,
	catalog.TypeEngineNozzle:    nozzle,
	catalog.TypeEngineStand:     stand,
	catalog.TypeEnginePipe:      pipes,
}

// assembly collects the pieces of a stage. Solid pieces are unioned and
// tessellated by the kernel once; surface pieces are built as meshes
// directly and merged in afterwards.
type assembly struct {
	k        kernel.Kernel
	solid    kernel.Solid
	surfaces []*kernel.Mesh
}

func (a *assembly) add(s kernel.Solid) {
	if a.solid == nil {
		a.solid = s
		return
	}
	a.solid = a.k.Union(a.solid, s)
}

func (a *assembly) addAt(s kernel.Solid, x, y, z float64) {
	a.add(a.k.Translate(s, x, y, z))
}

func (a *assembly) surface(m *kernel.Mesh, mat mgl64.Mat4) {
	a.surfaces = append(a.surfaces, m.Transform(mat))
}

func (a *assembly) mesh() (*kernel.Mesh, error) {
	meshes := a.surfaces
	if a.solid != nil {
		m, err := a.k.ToMesh(a.solid)
		if err != nil {
			return nil, err
		}
		meshes = append([]*kernel.Mesh{m}, meshes...)
	}
	return kernel.Merge(meshes...), nil
}

// coneRadius interpolates the radius of a cone of the given height at
// axial position y.
func coneRadius(y, bottom, top, height float64) float64 {
	t := (y + height/2) / height
	return bottom*(1-t) + top*t
}

// caseSegment is an open casing tapering from rStart at the front to rEnd
// at the back.
func caseSegment(rStart, rEnd, length float64) *kernel.Mesh {
	return kernel.Frustum(rStart, rEnd, length, 64, true)
}

func tube(r, length float64, segments int) *kernel.Mesh {
	return kernel.Frustum(r, r, length, segments, false)
}

var identity = mgl64.Ident4()

func at(x, y, z float64) mgl64.Mat4 { return mgl64.Translate3D(x, y, z) }

func fanCase(a *assembly) {
	a.surface(caseSegment(2.4, 2.4, 2), identity)
	a.surface(caseSegment(2.3, 2.3, 2), identity)
	a.surface(kernel.Torus(2.35, 0.05, 16, 64, 0), at(0, -1, 0))
}

func fanRotor(a *assembly) {
	const (
		count  = 20
		radius = 2.2
		chord  = 0.8
		hubY   = -0.3
	)
	blade := kernel.BoxMesh(radius, chord, 0.05)
	for i := 0; i < count; i++ {
		mat := at(0, hubY, 0).
			Mul4(mgl64.HomogRotate3DY(float64(i) * 2 * math.Pi / count)).
			Mul4(at(radius/2, 0, 0)).
			Mul4(mgl64.HomogRotate3DX(0.4))
		a.surface(blade, mat)
	}
	a.surface(kernel.Frustum(0.2, 0.8, 1.2, 32, false), at(0, hubY-chord/2, 0))
	a.surface(kernel.Torus(0.4, 0.03, 16, 32, 0), at(0, hubY-chord/2, 0).Mul4(mgl64.HomogRotate3DX(math.Pi/2)))
}

func lowPressureCompressor(a *assembly) {
	a.add(coneY(a.k, 0.8, 1.0, 0.9))
	a.surface(caseSegment(1.75, 1.7, 0.8), identity)
	a.surface(BladeRow(BladeRowSpec{Type: Compressor, InnerRadius: 1.0, OuterRadius: 1.65, Count: 30}), at(0, -0.2, 0))
	a.surface(BladeRow(BladeRowSpec{Type: Compressor, InnerRadius: 0.95, OuterRadius: 1.65, Count: 30, Stator: true}), identity)
	a.surface(BladeRow(BladeRowSpec{Type: Compressor, InnerRadius: 0.9, OuterRadius: 1.65, Count: 30}), at(0, 0.2, 0))
}

func intermediateCase(a *assembly) {
	a.surface(caseSegment(1.7, 1.7, 0.6), identity)
	rib := kernel.BoxMesh(3.2, 0.3, 0.1)
	for i := 0; i < 6; i++ {
		a.surface(rib, mgl64.HomogRotate3DY(float64(i)*math.Pi/3))
	}
	a.add(cylY(a.k, 0.6, 0.5))
}

func highPressureCompressor(a *assembly) {
	a.surface(caseSegment(1.7, 1.55, 1.5), identity)
	for i, y := range []float64{-0.6, -0.2, 0.2, 0.6} {
		drumR := coneRadius(y, 1.2, 1.0, 1.6)
		bladeR := coneRadius(y, 1.7, 1.3, 1.6)
		a.addAt(cylY(a.k, 0.2, drumR), 0, y, 0)
		a.surface(BladeRow(BladeRowSpec{Type: Compressor, InnerRadius: drumR, OuterRadius: bladeR - 0.05, Count: 40 - 2*i}), at(0, y, 0))
		if i < 3 {
			a.surface(BladeRow(BladeRowSpec{Type: Compressor, InnerRadius: drumR + 0.05, OuterRadius: bladeR - 0.08, Count: 40, Stator: true}), at(0, y+0.2, 0))
		}
	}
	a.add(cylY(a.k, 1.5, 0.6))
}

func combustor(a *assembly) {
	a.surface(caseSegment(1.55, 1.55, 0.8), identity)

	hole := tube(0.08, 0.15, 8)
	for i := 0; i < 8; i++ {
		around := mgl64.HomogRotate3DY(float64(i) * math.Pi / 4)
		for _, y := range []float64{-0.15, 0.15} {
			a.surface(hole, around.Mul4(at(1.55, y, 0)).Mul4(mgl64.HomogRotate3DZ(math.Pi/2)))
		}
	}

	arm := tube(0.02, 0.4, 8)
	swirler := kernel.Frustum(0.03, 0.05, 0.1, 8, false)
	tip := kernel.Frustum(0.005, 0.01, 0.05, 8, false)
	for i := 0; i < 12; i++ {
		base := mgl64.HomogRotate3DY(float64(i) * 2 * math.Pi / 12).
			Mul4(at(0.75, 0.35, 0)).
			Mul4(mgl64.HomogRotate3DZ(-0.5))
		a.surface(arm, base.Mul4(at(0, 0.1, 0)))
		a.surface(swirler, base.Mul4(at(0, -0.12, 0)))
		a.surface(tip, base.Mul4(at(0, -0.18, 0)))
	}
}

func highPressureTurbine(a *assembly) {
	a.surface(caseSegment(1.55, 1.6, 0.5), identity)
	a.add(cylY(a.k, 0.3, 0.8))
	a.add(cylY(a.k, 0.15, 0.85))
	a.surface(BladeRow(BladeRowSpec{Type: Turbine, InnerRadius: 0.8, OuterRadius: 1.38, Count: 42}), identity)
	a.surface(tube(0.6, 0.05, 32), at(0, 0.16, 0))
}

func lowPressureTurbine(a *assembly) {
	a.surface(caseSegment(1.6, 1.4, 1.4), identity)
	a.add(coneY(a.k, 1.2, 0.8, 0.7))
	for i, y := range []float64{-0.4, 0, 0.4} {
		r := 0.75 + 0.05*float64(i)
		a.addAt(cylY(a.k, 0.15, r), 0, y, 0)
		a.surface(BladeRow(BladeRowSpec{Type: Turbine, InnerRadius: r, OuterRadius: 1.48, Count: 32}), at(0, y, 0))
	}
}

func accessoryGearbox(a *assembly) {
	a.addAt(a.k.Box(1.2, 0.6, 0.8), 0, -0.7, 0)
	a.addAt(cylY(a.k, 0.6, 0.15), 0, -0.2, 0)
	a.addAt(a.k.Cylinder(0.3, 0.2), 0, -0.7, 0.5)
	a.addAt(a.k.Box(0.3, 0.3, 0.3), 0.4, -0.7, -0.5)
}

func nozzle(a *assembly) {
	a.surface(kernel.Frustum(0.5, 0, 1.5, 32, false), at(0, 0.5, 0))
	a.surface(kernel.Frustum(0.8, 0.2, 1.8, 32, false), at(0, 0.2, 0))
	a.surface(kernel.Frustum(1.4, 1.1, 1.0, 48, true), at(0, -0.2, 0))
}

func pipes(a *assembly) {
	const (
		manifoldX = 1.75
		manifoldY = 0.5
	)
	a.surface(tube(0.04, 4.5, 8), at(manifoldX, manifoldY, 0))
	branch := tube(0.02, 0.4, 8)
	for _, y := range []float64{0, 0.5, 1, -0.5} {
		a.surface(branch, at(manifoldX-0.2, manifoldY+y, 0).Mul4(mgl64.HomogRotate3DZ(math.Pi/2)))
	}
	a.surface(kernel.Torus(1.68, 0.03, 8, 48, math.Pi), at(0, -0.5, 0).Mul4(mgl64.HomogRotate3DY(-math.Pi/2)))
	a.surface(kernel.Torus(1.55, 0.03, 8, 48, 0), at(0, 1.5, 0))
}

func stand(a *assembly) {
	a.addAt(a.k.Box(6, 0.4, 3.2), 0, 0.2, 0)
	for _, x := range []float64{-2.8, 2.8} {
		for _, z := range []float64{-1.4, 1.4} {
			a.addAt(a.k.Cylinder(0.25, 0.3), x, -0.5, z)
			a.addAt(a.k.Box(0.25, 0.4, 0.25), x, -0.1, z)
		}
	}
	a.addAt(a.k.Box(0.6, 0.85, 3), -2.35, 0.825, 0)
	a.addAt(a.k.Box(0.6, 1.35, 1.8), 2.35, 1.075, 0)

	// Cradles are lower half shells with their axis along X.
	for _, c := range []struct{ x, r float64 }{{-2.35, 2.5}, {2.35, 1.75}} {
		mat := at(c.x, 3.5, 0).Mul4(mgl64.HomogRotate3DZ(math.Pi / 2))
		a.surface(kernel.CylinderArc(c.r, 0.6, 32, math.Pi, math.Pi), mat)
		a.surface(kernel.CylinderArc(c.r+0.01, 0.5, 32, math.Pi, math.Pi), mat)
	}
}
