package pose

import (
	"time"

	"github.com/chazu/mechtrainer/pkg/catalog"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// substep is the integration step. Frames are split into substeps so
	// stiff springs stay stable at low frame rates.
	substep = time.Millisecond
	// restEpsilon is the distance and speed below which a spring is at rest.
	restEpsilon = 1e-3
)

// Spring moves a vector towards a target as a damped harmonic oscillator.
type Spring struct {
	Value    mgl64.Vec3
	Velocity mgl64.Vec3
	Target   mgl64.Vec3
	Profile  Profile
	wait     time.Duration
}

// NewSpring returns a spring resting at v.
func NewSpring(v mgl64.Vec3) *Spring {
	return &Spring{Value: v, Target: v, Profile: InstalledProfile}
}

// Retarget points the spring at target with profile p. The current
// velocity is kept; the profile delay restarts.
func (s *Spring) Retarget(target mgl64.Vec3, p Profile) {
	s.Target = target
	s.Profile = p
	s.wait = p.Delay
}

// Jump moves the spring to v at rest.
func (s *Spring) Jump(v mgl64.Vec3) {
	s.Value, s.Target, s.Velocity, s.wait = v, v, mgl64.Vec3{}, 0
}

// Settled reports whether the spring is at rest on its target.
func (s *Spring) Settled() bool {
	return s.wait <= 0 && s.Value.Sub(s.Target).Len() < restEpsilon && s.Velocity.Len() < restEpsilon
}

// Step advances the spring by dt and reports whether it is settled.
func (s *Spring) Step(dt time.Duration) bool {
	if s.wait > 0 {
		if dt <= s.wait {
			s.wait -= dt
			return false
		}
		dt -= s.wait
		s.wait = 0
	}
	mass := s.Profile.Mass
	if mass <= 0 {
		mass = 1
	}
	for dt > 0 && !s.Settled() {
		step := substep
		if dt < step {
			step = dt
		}
		dt -= step
		h := step.Seconds()
		force := s.Target.Sub(s.Value).Mul(s.Profile.Tension).Sub(s.Velocity.Mul(s.Profile.Friction))
		s.Velocity = s.Velocity.Add(force.Mul(h / mass))
		s.Value = s.Value.Add(s.Velocity.Mul(h))
	}
	if s.Settled() {
		s.Value, s.Velocity = s.Target, mgl64.Vec3{}
		return true
	}
	return false
}

// Tween animates a whole transform with one spring per channel.
type Tween struct {
	Position *Spring
	Rotation *Spring
	Scale    *Spring
	target   Target
	held     bool
}

// NewTween returns a tween resting at t.
func NewTween(t catalog.Transform) *Tween {
	return &Tween{
		Position: NewSpring(t.Position),
		Rotation: NewSpring(t.Rotation),
		Scale:    NewSpring(scaleOf(t)),
		target:   Target{Transform: t, Profile: InstalledProfile, Phase: PhaseInstalled},
	}
}

func scaleOf(t catalog.Transform) mgl64.Vec3 {
	if t.Scale == (mgl64.Vec3{}) {
		return mgl64.Vec3{1, 1, 1}
	}
	return t.Scale
}

// Retarget heads for t. Retargeting to the current target is a no-op so
// it can be called every frame without restarting delays.
func (tw *Tween) Retarget(t Target) {
	if !tw.held && t == tw.target {
		return
	}
	tw.held = false
	tw.target = t
	tw.Position.Retarget(t.Transform.Position, t.Profile)
	tw.Rotation.Retarget(t.Transform.Rotation, t.Profile)
	tw.Scale.Retarget(scaleOf(t.Transform), t.Profile)
}

// Hold pins the position to p, bypassing the springs. It is used while
// a part is dragged; the next Retarget releases it.
func (tw *Tween) Hold(p mgl64.Vec3) {
	tw.held = true
	tw.Position.Jump(p)
}

// Held reports whether the tween is pinned by Hold.
func (tw *Tween) Held() bool { return tw.held }

// Step advances every channel by dt and reports whether all are settled.
func (tw *Tween) Step(dt time.Duration) bool {
	if tw.held {
		return true
	}
	p := tw.Position.Step(dt)
	r := tw.Rotation.Step(dt)
	s := tw.Scale.Step(dt)
	return p && r && s
}

// Transform returns the current animated transform.
func (tw *Tween) Transform() catalog.Transform {
	return catalog.Transform{
		Position: tw.Position.Value,
		Rotation: tw.Rotation.Value,
		Scale:    tw.Scale.Value,
	}
}

// Target returns the target the tween is heading for.
func (tw *Tween) Target() Target { return tw.target }

// Animator owns one tween per part.
type Animator struct {
	tweens map[string]*Tween
}

// NewAnimator returns an empty animator.
func NewAnimator() *Animator {
	return &Animator{tweens: make(map[string]*Tween)}
}

// Drive sets the target of part id. A part seen for the first time
// starts at home and moves to t with InitialProfile.
func (a *Animator) Drive(id string, home catalog.Transform, t Target) *Tween {
	tw, ok := a.tweens[id]
	if !ok {
		tw = NewTween(home)
		a.tweens[id] = tw
		first := t
		first.Profile = InitialProfile
		tw.Retarget(first)
		tw.target = t
		return tw
	}
	tw.Retarget(t)
	return tw
}

// Tween returns the tween of part id.
func (a *Animator) Tween(id string) (*Tween, bool) {
	tw, ok := a.tweens[id]
	return tw, ok
}

// Swap exchanges the tweens of parts x and y. After a dragged part fills
// the slot of an identical part, the object under the pointer then
// travels into the slot.
func (a *Animator) Swap(x, y string) {
	tx, okx := a.tweens[x]
	ty, oky := a.tweens[y]
	if !okx || !oky || x == y {
		return
	}
	a.tweens[x], a.tweens[y] = ty, tx
}

// Step advances every tween and reports whether all are settled.
func (a *Animator) Step(dt time.Duration) bool {
	settled := true
	for _, tw := range a.tweens {
		if !tw.Step(dt) {
			settled = false
		}
	}
	return settled
}
