package arcard

import "time"

// DefaultDoubleTapWindow is the longest gap between two taps that still
// counts as a double tap.
const DefaultDoubleTapWindow = 300 * time.Millisecond

// DoubleActionDetector turns two quick taps into one discrete action.
type DoubleActionDetector struct {
	window  time.Duration
	last    time.Time
	pending bool
}

// NewDoubleActionDetector creates a detector. A non-positive window selects
// DefaultDoubleTapWindow.
func NewDoubleActionDetector(window time.Duration) *DoubleActionDetector {
	if window <= 0 {
		window = DefaultDoubleTapWindow
	}
	return &DoubleActionDetector{window: window}
}

// Record registers a tap at t and reports whether it completes a pair. After
// a pair the window resets, so a third quick tap starts a new pair.
func (d *DoubleActionDetector) Record(t time.Time) bool {
	if d.pending {
		gap := t.Sub(d.last)
		if gap >= 0 && gap <= d.window {
			d.pending = false
			return true
		}
	}
	d.last = t
	d.pending = true
	return false
}

// Reset forgets any pending first tap.
func (d *DoubleActionDetector) Reset() {
	d.pending = false
}
