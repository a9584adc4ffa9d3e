package arcard

import "math"

const (
	springRestDelta = 1e-3 // distance from target treated as arrived
	springRestSpeed = 1e-2 // speed treated as stopped
)

// Spring is a critically damped spring with unit mass. It approaches its
// target as fast as possible without oscillating. Step uses the closed form
// solution, so it is stable for any dt.
type Spring struct {
	omega    float64
	value    float64
	velocity float64
	target   float64
}

// NewSpring creates a spring at rest on value. Stiffness sets the natural
// frequency (omega = sqrt(stiffness)); non-positive stiffness snaps.
func NewSpring(stiffness, value float64) Spring {
	omega := 0.0
	if stiffness > 0 {
		omega = math.Sqrt(stiffness)
	}
	return Spring{omega: omega, value: value, target: value}
}

// Value returns the current position.
func (s *Spring) Value() float64 { return s.value }

// Target returns the position the spring is heading to.
func (s *Spring) Target() float64 { return s.target }

// SetTarget changes the destination, keeping the current velocity.
func (s *Spring) SetTarget(v float64) { s.target = v }

// Follow tracks v directly while the spring is at rest. A spring still
// moving is retargeted instead, so it glides onto v and snaps from then on.
func (s *Spring) Follow(v float64) {
	if s.Settled() {
		s.Snap(v)
		return
	}
	s.SetTarget(v)
}

// Snap jumps to v and stops.
func (s *Spring) Snap(v float64) {
	s.value, s.target, s.velocity = v, v, 0
}

// Settled reports whether the spring is at rest on its target.
func (s *Spring) Settled() bool {
	return s.value == s.target && s.velocity == 0
}

// Step advances the spring by dt seconds and returns the new value.
func (s *Spring) Step(dt float64) float64 {
	if dt <= 0 || s.Settled() {
		return s.value
	}
	if s.omega == 0 {
		s.Snap(s.target)
		return s.value
	}
	x0 := s.value - s.target
	c := s.velocity + s.omega*x0
	e := math.Exp(-s.omega * dt)
	x := (x0 + c*dt) * e
	v := (s.velocity - s.omega*c*dt) * e
	if math.Abs(x) < springRestDelta && math.Abs(v) < springRestSpeed {
		s.Snap(s.target)
		return s.value
	}
	s.value = s.target + x
	s.velocity = v
	return s.value
}

// TransformAnimator eases a RenderTransform toward its target with one
// spring per property, so committed changes (reset, flip, zoom steps) glide
// instead of jumping.
type TransformAnimator struct {
	x, y    Spring
	scale   Spring
	rotateX Spring
	rotateY Spring
	rotateZ Spring
}

// NewTransformAnimator creates an animator resting on start.
func NewTransformAnimator(cfg SpringsConfig, start RenderTransform) *TransformAnimator {
	return &TransformAnimator{
		x:       NewSpring(cfg.Position.Stiffness, start.TranslateX),
		y:       NewSpring(cfg.Position.Stiffness, start.TranslateY),
		scale:   NewSpring(cfg.Scale.Stiffness, start.Scale),
		rotateX: NewSpring(cfg.Tilt.Stiffness, start.RotateX),
		rotateY: NewSpring(cfg.Flip.Stiffness, start.RotateY),
		rotateZ: NewSpring(cfg.Rotation.Stiffness, start.RotateZ),
	}
}

// SetTarget points every spring at the matching property of t.
func (a *TransformAnimator) SetTarget(t RenderTransform) {
	a.x.SetTarget(t.TranslateX)
	a.y.SetTarget(t.TranslateY)
	a.scale.SetTarget(t.Scale)
	a.rotateX.SetTarget(t.RotateX)
	a.rotateY.SetTarget(t.RotateY)
	a.rotateZ.SetTarget(t.RotateZ)
}

// Snap jumps every property to t.
func (a *TransformAnimator) Snap(t RenderTransform) {
	a.x.Snap(t.TranslateX)
	a.y.Snap(t.TranslateY)
	a.scale.Snap(t.Scale)
	a.rotateX.Snap(t.RotateX)
	a.rotateY.Snap(t.RotateY)
	a.rotateZ.Snap(t.RotateZ)
}

// Follow makes position, scale and rotateZ track t without lag once their
// springs are at rest; a glide in progress (reset, zoom) finishes first.
// Tilt and flip always ease.
func (a *TransformAnimator) Follow(t RenderTransform) {
	a.x.Follow(t.TranslateX)
	a.y.Follow(t.TranslateY)
	a.scale.Follow(t.Scale)
	a.rotateZ.Follow(t.RotateZ)
	a.rotateX.SetTarget(t.RotateX)
	a.rotateY.SetTarget(t.RotateY)
}

// Step advances all springs by dt seconds and returns the current transform.
func (a *TransformAnimator) Step(dt float64) RenderTransform {
	a.x.Step(dt)
	a.y.Step(dt)
	a.scale.Step(dt)
	a.rotateX.Step(dt)
	a.rotateY.Step(dt)
	a.rotateZ.Step(dt)
	return a.Current()
}

// Current returns the animated transform without advancing time. Scale is
// clamped because a spring carrying velocity can briefly overshoot.
func (a *TransformAnimator) Current() RenderTransform {
	return RenderTransform{
		TranslateX: a.x.Value(),
		TranslateY: a.y.Value(),
		Scale:      clampScale(a.scale.Value()),
		RotateX:    a.rotateX.Value(),
		RotateY:    a.rotateY.Value(),
		RotateZ:    a.rotateZ.Value(),
	}
}

// Settled reports whether every property has reached its target.
func (a *TransformAnimator) Settled() bool {
	return a.x.Settled() && a.y.Settled() && a.scale.Settled() &&
		a.rotateX.Settled() && a.rotateY.Settled() && a.rotateZ.Settled()
}
