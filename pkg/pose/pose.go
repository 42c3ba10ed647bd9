// Package pose decides where a part should be and how it gets there.
//
// Resolve maps a part and the session's annotation and removal state to a
// Target: the transform to head for and the spring Profile to animate
// with. The package never drives animation from interaction logic; the
// scene feeds targets into an Animator, which owns the springs.
package pose

import (
	"math"
	"time"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/go-gl/mathgl/mgl64"
)

// Profile is a damped spring configuration with an optional start delay.
type Profile struct {
	Mass     float64       `json:"mass"`
	Tension  float64       `json:"tension"`
	Friction float64       `json:"friction"`
	Delay    time.Duration `json:"delay"`
}

// Spring profiles per pose.
var (
	InstalledProfile  = Profile{Mass: 1, Tension: 180, Friction: 12}
	RemovedProfile    = Profile{Mass: 3, Tension: 60, Friction: 26}
	InitialProfile    = Profile{Mass: 1, Tension: 120, Friction: 26}
	AnnotationProfile = Profile{Mass: 3, Tension: 50, Friction: 50}
)

// Phase names which rule produced a target.
type Phase string

const (
	PhaseInstalled Phase = "installed"
	PhaseRemoved   Phase = "removed"
	PhaseAnnotated Phase = "annotated"
)

// Target is the resolved pose of a part.
type Target struct {
	Transform catalog.Transform `json:"transform"`
	Profile   Profile           `json:"profile"`
	Phase     Phase             `json:"phase"`
}

// Resolver computes targets. The annotation delay is largest for parts
// with a small annotation height, which sit near the middle of the
// assembly, so outer parts separate first.
type Resolver struct {
	// DelayBase is the annotation height at which the delay reaches zero.
	DelayBase float64
	// DelayStep is the delay added per unit of height below DelayBase.
	DelayStep time.Duration
}

// DefaultResolver is the resolver used by Resolve.
var DefaultResolver = Resolver{DelayBase: 6, DelayStep: 100 * time.Millisecond}

// Resolve resolves with DefaultResolver.
func Resolve(p catalog.Part, annotation, removed bool) Target {
	return DefaultResolver.Resolve(p, annotation, removed)
}

// Resolve returns the target for p. Annotation mode wins over removal;
// a removed part heads for its exploded pose; everything else goes home.
func (r Resolver) Resolve(p catalog.Part, annotation, removed bool) Target {
	switch {
	case annotation:
		prof := AnnotationProfile
		prof.Delay = r.AnnotationDelay(p.AnnotationHeight)
		return Target{Transform: p.Annotated(), Profile: prof, Phase: PhaseAnnotated}
	case removed:
		return Target{Transform: p.Exploded(), Profile: RemovedProfile, Phase: PhaseRemoved}
	default:
		return Target{Transform: p.Home, Profile: InstalledProfile, Phase: PhaseInstalled}
	}
}

// AnnotationDelay returns the start delay for a part lifted by height.
func (r Resolver) AnnotationDelay(height float64) time.Duration {
	d := (r.DelayBase - math.Abs(height)) * float64(r.DelayStep)
	if d <= 0 {
		return 0
	}
	return time.Duration(d)
}

// DragDepth scales the distance from the camera to the assembly plane
// when projecting a dragged part, so it floats in front of the model.
const DragDepth = 0.8

// ProjectPointer places a dragged part along the pointer ray. The ray
// starts at the camera position and runs along dir; the part is put at
// DragDepth of the distance at which the ray meets the z=0 plane. It
// reports false when the ray runs parallel to that plane.
func ProjectPointer(camera, dir mgl64.Vec3) (mgl64.Vec3, bool) {
	if math.Abs(dir[2]) < 1e-9 {
		return mgl64.Vec3{}, false
	}
	dist := math.Abs(-camera[2] / dir[2] * DragDepth)
	return camera.Add(dir.Mul(dist)), true
}
