package geometry

import (
	"math"

	"github.com/chazu/mechtrainer/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Tooth proportions of the gear profile.
const (
	RootRatio     = 0.82 // root circle radius over tip radius
	ToothRootFrac = 0.45 // tooth width at the root, fraction of the pitch angle
	ToothTipFrac  = 0.22 // tooth width at the tip, fraction of the pitch angle
)

// GearSpec describes a spur or helical gear along Z.
type GearSpec struct {
	Radius float64 // tip radius
	Width  float64 // face width
	Teeth  int     // zero gives a plain cylinder
	Hole   float64 // bore radius, zero for none
	Twist  float64 // helical twist across the face, radians
	Bevel  float64 // edge rounding
}

func (GearSpec) Kind() string { return "gear" }

// GearProfile returns the closed outline of a gear with teeth teeth and
// tip radius radius. Each tooth contributes four points: root start,
// tip start, tip end and root end, so the outline alternates between root
// arc, rising flank, tip land and falling flank.
func GearProfile(radius float64, teeth int) []mgl64.Vec2 {
	root := radius * RootRatio
	step := 2 * math.Pi / float64(teeth)
	rootW := step * ToothRootFrac
	tipW := step * ToothTipFrac
	offset := (step - rootW) / 2

	at := func(a, r float64) mgl64.Vec2 { return mgl64.Vec2{r * math.Cos(a), r * math.Sin(a)} }

	pts := make([]mgl64.Vec2, 0, teeth*4)
	for i := 0; i < teeth; i++ {
		theta := float64(i)*step + offset
		pts = append(pts,
			at(theta, root),
			at(theta+(rootW-tipW)/2, radius),
			at(theta+(rootW+tipW)/2, radius),
			at(theta+rootW, root),
		)
	}
	return pts
}

// Gear builds the gear solid. A non-positive tooth count falls back to a
// cylinder of the tip radius.
func Gear(k kernel.Kernel, s GearSpec) kernel.Solid {
	var profile kernel.Profile
	if s.Teeth <= 0 {
		profile = k.Circle(s.Radius)
	} else {
		profile = k.Polygon(GearProfile(s.Radius, s.Teeth))
	}
	if s.Hole > 0 {
		profile = k.ProfileDifference(profile, k.Circle(s.Hole))
	}

	var solid kernel.Solid
	if s.Twist != 0 {
		solid = k.TwistExtrude(profile, s.Width, s.Twist)
	} else {
		solid = k.Extrude(profile, s.Width)
	}
	if s.Bevel > 0 {
		solid = k.Intersection(solid, k.ExtrudeRounded(k.Circle(s.Radius), s.Width, s.Bevel))
	}
	return solid
}

func (s GearSpec) Build(k kernel.Kernel) (*kernel.Mesh, error) {
	return k.ToMesh(Gear(k, s))
}

// ShaftSpec is a shaft along Z carrying one gear and a bearing at each
// end.
type ShaftSpec struct {
	Radius        float64
	Length        float64
	Gear          GearSpec
	GearOffset    float64 // gear center along the shaft
	BearingRadius float64
	BearingWidth  float64
	BearingOffset float64 // distance of each bearing from the center
}

// InputShaft is the high speed shaft with its integral pinion.
var InputShaft = ShaftSpec{
	Radius: 0.2, Length: 3.36,
	Gear:       GearSpec{Radius: 0.75, Width: 0.8, Teeth: 19, Bevel: 0.02},
	GearOffset: 0.5, BearingRadius: 0.3, BearingWidth: 0.3, BearingOffset: 1.4,
}

// OutputShaft is the low speed shaft with the bored wheel.
var OutputShaft = ShaftSpec{
	Radius: 0.35, Length: 3.36,
	Gear:       GearSpec{Radius: 1.2, Width: 0.7, Teeth: 36, Hole: 0.35, Bevel: 0.02},
	GearOffset: 0.5, BearingRadius: 0.4, BearingWidth: 0.3, BearingOffset: 1.4,
}

func (ShaftSpec) Kind() string { return "shaft" }

// Solid builds the shaft assembly.
func (s ShaftSpec) Solid(k kernel.Kernel) kernel.Solid {
	solid := k.Cylinder(s.Length, s.Radius)
	solid = k.Union(solid, k.Translate(Gear(k, s.Gear), 0, 0, s.GearOffset))
	for _, z := range []float64{-s.BearingOffset, s.BearingOffset} {
		solid = k.Union(solid, k.Translate(k.Cylinder(s.BearingWidth, s.BearingRadius), 0, 0, z))
	}
	return solid
}

func (s ShaftSpec) Build(k kernel.Kernel) (*kernel.Mesh, error) {
	return k.ToMesh(s.Solid(k))
}
