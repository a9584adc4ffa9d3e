package arcard

import "math"

// Compose combines the committed (or transient) object transform with the
// device tilt into the transform the renderer applies to both faces.
//
// Tilt drives rotateX/rotateY for parallax on either face. The flip is a
// 180° offset on the same Y axis, so flipping and tilting add up instead of
// competing. User rotation stays on Z and never touches the flip.
func Compose(t ObjectTransform, tilt TiltVector) RenderTransform {
	tx := clamp(finite(tilt.X), -MaxTilt, MaxTilt)
	ty := clamp(finite(tilt.Y), -MaxTilt, MaxTilt)

	rotateY := tx
	if t.Flipped {
		rotateY = 180 + tx
	}
	return RenderTransform{
		TranslateX: finite(t.Position.X),
		TranslateY: finite(t.Position.Y),
		Scale:      clampScale(t.Scale),
		RotateX:    ty,
		RotateY:    rotateY,
		RotateZ:    finite(t.Rotation),
	}
}

// finite maps NaN and ±Inf to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
