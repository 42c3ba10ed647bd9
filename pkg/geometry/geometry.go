// Package geometry builds the renderable mesh of every part type from a
// fixed set of shape parameters.
//
// Each generator is described by a Spec: a comparable value holding the
// parameters and a Build method that turns them into a mesh using a
// kernel.Kernel. Because specs are plain values they double as cache
// keys, so a Cache builds each distinct parameter set exactly once per
// module session.
package geometry

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/chazu/mechtrainer/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// Spec is the parameter tuple of one generator. Implementations must be
// comparable so they can key the cache.
type Spec interface {
	// Kind names the generator, for logs and metrics.
	Kind() string
	// Build generates the mesh. It may panic on degenerate parameters.
	Build(k kernel.Kernel) (*kernel.Mesh, error)
}

// BuildObserver is notified after every generator run.
type BuildObserver interface {
	ObserveBuild(kind string, seconds float64, failed bool)
}

// specs maps each part type to the generator parameters of its mesh.
var specs = map[catalog.PartType]Spec{
	catalog.TypeBolt:            BoltSpec{},
	catalog.TypeObsCover:        ObsCoverSpec{},
	catalog.TypeHousing:         DefaultHousing(HousingLower),
	catalog.TypeCover:           DefaultHousing(HousingUpper),
	catalog.TypeShaft:           InputShaft,
	catalog.TypeGear:            OutputShaft,
	catalog.TypeEngineFanCase:   StageSpec{Stage: catalog.TypeEngineFanCase},
	catalog.TypeEngineFanRotor:  StageSpec{Stage: catalog.TypeEngineFanRotor},
	catalog.TypeEngineLPC:       StageSpec{Stage: catalog.TypeEngineLPC},
	catalog.TypeEngineIPC:       StageSpec{Stage: catalog.TypeEngineIPC},
	catalog.TypeEngineHPC:       StageSpec{Stage: catalog.TypeEngineHPC},
	catalog.TypeEngineCombustor: StageSpec{Stage: catalog.TypeEngineCombustor},
	catalog.TypeEngineHPT:       StageSpec{Stage: catalog.TypeEngineHPT},
	catalog.TypeEngineLPT:       StageSpec{Stage: catalog.TypeEngineLPT},
	catalog.TypeEngineGearbox:   StageSpec{Stage: catalog.TypeEngineGearbox},
	catalog.TypeEngineNozzle:    StageSpec{Stage: catalog.TypeEngineNozzle},
	catalog.TypeEngineStand:     StageSpec{Stage: catalog.TypeEngineStand},
	catalog.TypeEnginePipe:      StageSpec{Stage: catalog.TypeEnginePipe},
}

// FallbackSpec is used for part types without a generator.
var FallbackSpec Spec = BoxSpec{X: 1, Y: 1, Z: 1}

// SpecFor returns the generator parameters for a part type.
func SpecFor(t catalog.PartType) Spec {
	if s, ok := specs[t]; ok {
		return s
	}
	return FallbackSpec
}

// BoxSpec is a plain centered box.
type BoxSpec struct {
	X, Y, Z float64
}

func (BoxSpec) Kind() string { return "box" }

func (s BoxSpec) Build(k kernel.Kernel) (*kernel.Mesh, error) {
	return kernel.BoxMesh(s.X, s.Y, s.Z), nil
}

// Cache memoizes generated meshes by spec. Meshes returned by the cache
// are shared and must not be modified.
type Cache struct {
	mu       sync.Mutex
	kernel   kernel.Kernel
	log      *logrus.Entry
	meshes   map[Spec]*kernel.Mesh
	builds   int
	observer BuildObserver
}

// NewCache returns an empty cache that builds with k.
func NewCache(k kernel.Kernel, log *logrus.Entry) *Cache {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Cache{
		kernel: k,
		log:    log.WithField("component", "geometry"),
		meshes: make(map[Spec]*kernel.Mesh),
	}
}

// SetObserver registers o to be told about every build.
func (c *Cache) SetObserver(o BuildObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// Get returns the mesh for spec, building it on first use. A generator
// that fails or panics yields an empty mesh; the fallback is cached too,
// so a broken spec is attempted only once.
func (c *Cache) Get(spec Spec) *kernel.Mesh {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.meshes[spec]; ok {
		return m
	}

	start := time.Now()
	m, err := c.build(spec)
	failed := err != nil
	if failed {
		c.log.WithError(err).WithField("kind", spec.Kind()).Warn("geometry generation failed, using empty mesh")
		m = kernel.EmptyMesh()
	} else {
		lo, hi := m.Bounds()
		c.log.WithFields(logrus.Fields{
			"kind":      spec.Kind(),
			"triangles": m.TriangleCount(),
			"size":      hi.Sub(lo),
		}).Debug("geometry built")
	}
	c.builds++
	if c.observer != nil {
		c.observer.ObserveBuild(spec.Kind(), time.Since(start).Seconds(), failed)
	}
	c.meshes[spec] = m
	return m
}

func (c *Cache) build(spec Spec) (m *kernel.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("%s generator panicked: %v", spec.Kind(), r)
		}
	}()
	m, err = spec.Build(c.kernel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Kind(), err)
	}
	if m == nil {
		return kernel.EmptyMesh(), nil
	}
	return m.NonIndexed(), nil
}

// PartMesh returns the mesh for a catalog part, tagged with the part id.
// The geometry arrays are shared with the cache.
func (c *Cache) PartMesh(p catalog.Part) *kernel.Mesh {
	m := *c.Get(SpecFor(p.Type))
	m.PartName = p.ID
	return &m
}

// Reset drops every cached mesh. It is called when a module is torn down.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meshes = make(map[Spec]*kernel.Mesh)
	c.builds = 0
}

// Builds returns how many generator runs happened since the last Reset.
func (c *Cache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.meshes)
}

// ---- shared shapes ----

// cylY is a kernel cylinder standing on the Y axis.
func cylY(k kernel.Kernel, height, radius float64) kernel.Solid {
	return k.Rotate(k.Cylinder(height, radius), -math.Pi/2, 0, 0)
}

// coneY is a kernel truncated cone on the Y axis, bottomRadius at
// y=-height/2.
func coneY(k kernel.Kernel, height, bottomRadius, topRadius float64) kernel.Solid {
	return k.Rotate(k.Cone(height, bottomRadius, topRadius), -math.Pi/2, 0, 0)
}

// regularPolygon returns n points on a circle of radius r in XY.
func regularPolygon(r float64, n int) []mgl64.Vec2 {
	pts := make([]mgl64.Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = mgl64.Vec2{r * math.Cos(a), r * math.Sin(a)}
	}
	return pts
}
