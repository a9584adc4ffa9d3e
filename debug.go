package arcard

import "time"

// debugStats holds per-frame timings. Only populated when debug mode is on.
type debugStats struct {
	inputTime time.Duration
	animTime  time.Duration
	drained   int
	injected  int
	observers int
}

// debugLog logs the frame stats and the gesture state at debug level.
func (v *Viewer) debugLog(stats debugStats) {
	if !v.debug {
		return
	}
	v.log.Debug("viewer: frame",
		"input", stats.inputTime,
		"anim", stats.animTime,
		"total", stats.inputTime+stats.animTime,
		"drained", stats.drained,
		"injected", stats.injected,
		"observers", stats.observers,
		"mode", v.gestures.Mode().String(),
		"pointers", v.gestures.PointerCount(),
		"settled", v.anim.Settled(),
	)
}
