package geometry

import (
	"math"

	"github.com/chazu/mechtrainer/pkg/kernel"
)

// BoltSpec is a hex-head bolt standing on Y, head up, with the underside
// of the head at y=0.
type BoltSpec struct{}

func (BoltSpec) Kind() string { return "bolt" }

func (BoltSpec) Build(k kernel.Kernel) (*kernel.Mesh, error) {
	const (
		shankR = 0.05
		shankH = 0.35
		headR  = 0.09
		headH  = 0.08
	)
	shank := k.Translate(cylY(k, shankH, shankR), 0, -shankH/2, 0)
	head := k.Translate(k.Rotate(hexPrism(k, headR, headH), -math.Pi/2, 0, 0), 0, headH/2, 0)
	return k.ToMesh(k.Union(shank, head))
}

// hexPrism is a six-sided prism along Z with corner radius r.
func hexPrism(k kernel.Kernel, r, h float64) kernel.Solid {
	return k.Extrude(k.Polygon(regularPolygon(r, 6)), h)
}

// ObsCoverSpec is the inspection cover plate with its four studs.
type ObsCoverSpec struct{}

func (ObsCoverSpec) Kind() string { return "obs_cover" }

func (ObsCoverSpec) Build(k kernel.Kernel) (*kernel.Mesh, error) {
	solid := k.Box(1.5, 0.1, 1)
	for _, x := range []float64{-0.6, 0.6} {
		for _, z := range []float64{-0.35, 0.35} {
			solid = k.Union(solid, k.Translate(cylY(k, 0.11, 0.035), x, 0, z))
		}
	}
	return k.ToMesh(solid)
}
