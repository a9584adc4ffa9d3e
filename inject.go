package arcard

import "math"

// Injected input is queued in frames: every Update consumes one frame and
// feeds its events through HandlePointer, exactly like polled input. Events
// carry no timestamp and are stamped with the viewer clock.

// InjectPress queues a pointer down at the given screen coordinates.
func (v *Viewer) InjectPress(id int, x, y float64) {
	v.injectFrame(PointerEvent{Kind: PointerDown, ID: id, X: x, Y: y})
}

// InjectMove queues a move of a pressed pointer.
func (v *Viewer) InjectMove(id int, x, y float64) {
	v.injectFrame(PointerEvent{Kind: PointerMove, ID: id, X: x, Y: y})
}

// InjectRelease queues a pointer up.
func (v *Viewer) InjectRelease(id int, x, y float64) {
	v.injectFrame(PointerEvent{Kind: PointerUp, ID: id, X: x, Y: y})
}

// InjectTap queues a press and release of pointer 0 at the same spot.
// Consumes two frames.
func (v *Viewer) InjectTap(x, y float64) {
	v.InjectPress(0, x, y)
	v.InjectRelease(0, x, y)
}

// InjectDoubleTap queues two taps on consecutive frames.
func (v *Viewer) InjectDoubleTap(x, y float64) {
	v.InjectTap(x, y)
	v.InjectTap(x, y)
}

// InjectDrag queues a one-finger drag: press at (fromX, fromY), moves
// linearly interpolated over the given number of frames ending on (toX, toY),
// and release. The sequence consumes moves+2 frames; moves is at least 1.
func (v *Viewer) InjectDrag(fromX, fromY, toX, toY float64, moves int) {
	if moves < 1 {
		moves = 1
	}
	v.InjectPress(0, fromX, fromY)
	for i := 1; i <= moves; i++ {
		t := float64(i) / float64(moves)
		v.InjectMove(0, fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	v.InjectRelease(0, toX, toY)
}

// InjectPinch queues a two-finger gesture centered on (cx, cy). The fingers
// start dist0 apart at angle0 degrees and end dist1 apart at angle1 degrees.
// Both fingers press together, move over the given number of frames and lift
// together, consuming moves+2 frames.
func (v *Viewer) InjectPinch(cx, cy, dist0, dist1, angle0, angle1 float64, moves int) {
	if moves < 1 {
		moves = 1
	}
	fingers := func(dist, angle float64) (a, b Vec2) {
		rad := degToRad(angle)
		dx, dy := math.Cos(rad)*dist/2, math.Sin(rad)*dist/2
		return Vec2{cx - dx, cy - dy}, Vec2{cx + dx, cy + dy}
	}

	a, b := fingers(dist0, angle0)
	v.injectFrame(
		PointerEvent{Kind: PointerDown, ID: 1, X: a.X, Y: a.Y},
		PointerEvent{Kind: PointerDown, ID: 2, X: b.X, Y: b.Y},
	)
	for i := 1; i <= moves; i++ {
		t := float64(i) / float64(moves)
		a, b = fingers(dist0+(dist1-dist0)*t, angle0+(angle1-angle0)*t)
		v.injectFrame(
			PointerEvent{Kind: PointerMove, ID: 1, X: a.X, Y: a.Y},
			PointerEvent{Kind: PointerMove, ID: 2, X: b.X, Y: b.Y},
		)
	}
	v.injectFrame(
		PointerEvent{Kind: PointerUp, ID: 1, X: a.X, Y: a.Y},
		PointerEvent{Kind: PointerUp, ID: 2, X: b.X, Y: b.Y},
	)
}

func (v *Viewer) injectFrame(events ...PointerEvent) {
	v.injectQueue = append(v.injectQueue, events)
}

// processInjectedInput pops one queued frame and handles its events.
// Returns the number of events consumed.
func (v *Viewer) processInjectedInput() int {
	if len(v.injectQueue) == 0 {
		return 0
	}
	frame := v.injectQueue[0]
	copy(v.injectQueue, v.injectQueue[1:])
	v.injectQueue[len(v.injectQueue)-1] = nil
	v.injectQueue = v.injectQueue[:len(v.injectQueue)-1]

	for _, ev := range frame {
		v.HandlePointer(ev)
	}
	return len(frame)
}

// Injecting reports whether queued synthetic input remains. Polled input is
// skipped while it does so the two never interleave.
func (v *Viewer) Injecting() bool { return len(v.injectQueue) > 0 }
