package geometry

import (
	"math"

	"github.com/chazu/mechtrainer/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// HousingHalf selects one half of the split gearbox housing.
type HousingHalf int

const (
	HousingLower HousingHalf = iota // base, split line on its top face
	HousingUpper                    // cover, split line on its bottom face
)

// HousingSpec describes one half of a split reducer housing. The profile
// lies in XY with the split line along X; the shells run along Z.
type HousingSpec struct {
	Half     HousingHalf
	Width    float64
	Height   float64
	Wall     float64
	Depth    float64
	EndPlate float64

	// BearingX is the distance of each bearing seat from the center. The
	// input shaft sits at -BearingX, the output shaft at +BearingX.
	BearingX    float64
	InputSeat   float64
	OutputSeat  float64
	InputShaft  float64
	OutputShaft float64
}

// DefaultHousing returns the reducer housing dimensions for half.
func DefaultHousing(half HousingHalf) HousingSpec {
	return HousingSpec{
		Half:        half,
		Width:       5.4,
		Height:      2,
		Wall:        0.3,
		Depth:       3,
		EndPlate:    0.2,
		BearingX:    1,
		InputSeat:   0.32,
		OutputSeat:  0.42,
		InputShaft:  0.3,
		OutputShaft: 0.4,
	}
}

func (s HousingSpec) Kind() string {
	if s.Half == HousingUpper {
		return "housing_upper"
	}
	return "housing_lower"
}

// seats returns the bearing seat radii, never smaller than the shafts
// passing through them.
func (s HousingSpec) seats() (in, out float64) {
	return math.Max(s.InputSeat, s.InputShaft), math.Max(s.OutputSeat, s.OutputShaft)
}

// splitY is the local height of the split line.
func (s HousingSpec) splitY() float64 {
	if s.Half == HousingUpper {
		return -s.Height / 2
	}
	return s.Height / 2
}

func rect(k kernel.Kernel, x0, y0, x1, y1 float64) kernel.Profile {
	return k.Polygon([]mgl64.Vec2{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}})
}

// Profile returns the outer wall profile: the body rectangle with the two
// bearing seats cut out of the split line.
func (s HousingSpec) Profile(k kernel.Kernel) kernel.Profile {
	in, out := s.seats()
	split := s.splitY()
	p := rect(k, -s.Width/2, -s.Height/2, s.Width/2, s.Height/2)
	p = k.ProfileDifference(p, k.TranslateProfile(k.Circle(in), -s.BearingX, split))
	return k.ProfileDifference(p, k.TranslateProfile(k.Circle(out), s.BearingX, split))
}

// cavity returns the inner void, open towards the split line.
func (s HousingSpec) cavity(k kernel.Kernel) kernel.Profile {
	const open = 0.05
	x := s.Width/2 - s.Wall
	if s.Half == HousingUpper {
		return rect(k, -x, -s.Height/2-open, x, s.Height/2-s.Wall)
	}
	return rect(k, -x, -s.Height/2+s.Wall, x, s.Height/2+open)
}

// Solid builds the housing half: two end plates and the hollow shell
// between them, side flanges along the split line and, on the base,
// bearing bosses and feet.
func (s HousingSpec) Solid(k kernel.Kernel) kernel.Solid {
	outer := s.Profile(k)
	shellLen := s.Depth - 2*s.EndPlate
	plateZ := s.Depth/2 - s.EndPlate/2

	body := k.Extrude(k.ProfileDifference(outer, s.cavity(k)), shellLen)
	body = k.Union(body, k.Translate(k.Extrude(outer, s.EndPlate), 0, 0, plateZ))
	body = k.Union(body, k.Translate(k.Extrude(outer, s.EndPlate), 0, 0, -plateZ))
	body = k.Union(body, s.flanges(k))

	if s.Half == HousingLower {
		body = k.Union(body, s.bosses(k))
		for _, x := range []float64{-2.2, 2.2} {
			for _, z := range []float64{-1.2, 1.2} {
				body = k.Union(body, k.Translate(k.Box(1.2, 0.2, 0.6), x, -s.Height/2+0.1, z))
			}
		}
	}
	return body
}

// flanges builds the bolted side flanges with their through holes.
func (s HousingSpec) flanges(k kernel.Kernel) kernel.Solid {
	const (
		width     = 0.7
		thickness = 0.1
		length    = 3.6
		holeX     = 2.6
		holeZ     = 1.6
		holeR     = 0.06
	)
	y := s.splitY() + thickness/2
	if s.Half == HousingLower {
		y = s.splitY() - thickness/2
	}
	x := s.Width/2 - 0.15
	f := k.Union(
		k.Translate(k.Box(width, thickness, length), -x, y, 0),
		k.Translate(k.Box(width, thickness, length), x, y, 0),
	)
	for _, hx := range []float64{-holeX, holeX} {
		for _, hz := range []float64{-holeZ, holeZ} {
			hole := k.Rotate(k.Cylinder(thickness*3, holeR), -math.Pi/2, 0, 0)
			f = k.Difference(f, k.Translate(hole, hx, y, hz))
		}
	}
	return f
}

// bosses builds half-ring reinforcements around the bearing seats on
// both end faces of the base.
func (s HousingSpec) bosses(k kernel.Kernel) kernel.Solid {
	const (
		thickness = 0.1
		width     = 0.2
	)
	in, out := s.seats()
	split := s.splitY()
	z := s.Depth/2 + width/2

	var solid kernel.Solid
	for _, seat := range []struct{ x, r float64 }{{-s.BearingX, in}, {s.BearingX, out}} {
		outerR := seat.r + thickness
		ring := k.ProfileDifference(k.Circle(outerR), k.Circle(seat.r))
		ring = k.ProfileDifference(ring, rect(k, -outerR-0.1, 0, outerR+0.1, outerR+0.1))
		ring = k.TranslateProfile(ring, seat.x, split)
		for _, dz := range []float64{-z, z} {
			b := k.Translate(k.Extrude(ring, width), 0, 0, dz)
			if solid == nil {
				solid = b
			} else {
				solid = k.Union(solid, b)
			}
		}
	}
	return solid
}

func (s HousingSpec) Build(k kernel.Kernel) (*kernel.Mesh, error) {
	return k.ToMesh(s.Solid(k))
}
