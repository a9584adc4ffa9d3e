package arcard

import "math"

const (
	defaultTapSlop          = 4.0 // pixels
	defaultMinPinchDistance = 1.0 // pixels
)

// GestureResult reports the effect of one pointer event.
type GestureResult struct {
	// Mode is the gesture mode after the event.
	Mode GestureMode
	// Transform is the transient transform to render after the event. When
	// Commit is set it is the final value of the gesture.
	Transform ObjectTransform
	// Changed reports that Transform differs from before the event.
	Changed bool
	// Commit is set once per gesture, when the last pointer lifts.
	Commit bool
	// Tap is set with Commit when the gesture was a single pointer that never
	// moved beyond the tap slop.
	Tap bool
}

// GestureRecognizer classifies pointer events into drag and pinch/rotate
// gestures. It never writes the committed transform: the caller passes it in
// on each pointer down and writes back the result when Commit is reported.
// All math is total; no input makes it fail.
type GestureRecognizer struct {
	tapSlop      float64
	minPinchDist float64

	pointers map[int]Vec2
	order    []int // pointer ids in arrival order
	mode     GestureMode
	live     ObjectTransform

	// drag snapshot
	dragID          int
	dragStart       Vec2
	positionAtStart Vec2

	// pinch snapshot
	pair            [2]int
	pinchArmed      bool
	initialDistance float64
	initialScale    float64
	initialRotation float64
	lastAngle       float64
	angleAccum      float64

	tapCandidate bool
	tapOrigin    Vec2
}

// NewGestureRecognizer creates an idle recognizer. Non-positive arguments
// select the defaults.
func NewGestureRecognizer(tapSlop, minPinchDistance float64) *GestureRecognizer {
	if tapSlop <= 0 {
		tapSlop = defaultTapSlop
	}
	if minPinchDistance <= 0 {
		minPinchDistance = defaultMinPinchDistance
	}
	return &GestureRecognizer{
		tapSlop:      tapSlop,
		minPinchDist: minPinchDistance,
		pointers:     make(map[int]Vec2),
		pair:         [2]int{-1, -1},
	}
}

// Mode returns the current gesture mode.
func (g *GestureRecognizer) Mode() GestureMode { return g.mode }

// PointerCount returns the number of pointers currently down.
func (g *GestureRecognizer) PointerCount() int { return len(g.pointers) }

// Live returns the transient transform of the gesture in progress. It is
// only meaningful while Mode is not GestureIdle.
func (g *GestureRecognizer) Live() ObjectTransform { return g.live }

// Handle processes one pointer event. committed is the current committed
// transform; it seeds the transient state when a gesture begins.
func (g *GestureRecognizer) Handle(ev PointerEvent, committed ObjectTransform) GestureResult {
	switch ev.Kind {
	case PointerDown:
		if _, ok := g.pointers[ev.ID]; ok {
			return g.move(ev)
		}
		return g.down(ev, committed)
	case PointerMove:
		return g.move(ev)
	case PointerUp, PointerCancel:
		return g.up(ev)
	}
	return g.result()
}

// Cancel drops every pointer and discards the transient transform without
// committing it.
func (g *GestureRecognizer) Cancel() {
	clear(g.pointers)
	g.order = g.order[:0]
	g.mode = GestureIdle
	g.live = ObjectTransform{}
	g.pair = [2]int{-1, -1}
	g.pinchArmed = false
	g.tapCandidate = false
}

// Wheel applies a desktop scroll step to committed and returns the new
// transform, to be committed immediately. A positive deltaY (scrolling down)
// shrinks the card. While a gesture is in progress the wheel is ignored and
// ok is false.
func (g *GestureRecognizer) Wheel(deltaY float64, committed ObjectTransform, step float64) (next ObjectTransform, ok bool) {
	if g.mode != GestureIdle || deltaY == 0 || math.IsNaN(deltaY) {
		return committed, false
	}
	next = committed
	if deltaY > 0 {
		next.Scale = clampScale(committed.Scale - step)
	} else {
		next.Scale = clampScale(committed.Scale + step)
	}
	return next, true
}

func (g *GestureRecognizer) result() GestureResult {
	return GestureResult{Mode: g.mode, Transform: g.live}
}

func (g *GestureRecognizer) down(ev PointerEvent, committed ObjectTransform) GestureResult {
	pos := Vec2{ev.X, ev.Y}
	if g.mode == GestureIdle {
		g.live = committed
		g.tapCandidate = true
		g.tapOrigin = pos
	}
	g.pointers[ev.ID] = pos
	g.order = append(g.order, ev.ID)

	if len(g.pointers) == 1 {
		g.beginDrag(ev.ID)
	} else {
		g.tapCandidate = false
		g.syncPinch()
	}
	g.mode = modeForCount(len(g.pointers))
	return g.result()
}

func (g *GestureRecognizer) move(ev PointerEvent) GestureResult {
	if _, ok := g.pointers[ev.ID]; !ok {
		return g.result()
	}
	pos := Vec2{ev.X, ev.Y}
	g.pointers[ev.ID] = pos
	if g.tapCandidate && pos.Sub(g.tapOrigin).Len() > g.tapSlop {
		g.tapCandidate = false
	}

	res := g.result()
	switch g.mode {
	case GestureDragging:
		if ev.ID != g.dragID {
			return res
		}
		next := g.positionAtStart.Add(pos.Sub(g.dragStart))
		if next != g.live.Position {
			g.live.Position = next
			res.Changed = true
		}
	case GesturePinching:
		if ev.ID != g.pair[0] && ev.ID != g.pair[1] {
			return res
		}
		res.Changed = g.updatePinch()
	}
	res.Transform = g.live
	return res
}

func (g *GestureRecognizer) up(ev PointerEvent) GestureResult {
	if _, ok := g.pointers[ev.ID]; !ok {
		return g.result()
	}
	delete(g.pointers, ev.ID)
	for i, id := range g.order {
		if id == ev.ID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	switch len(g.pointers) {
	case 0:
		res := GestureResult{
			Mode:      GestureIdle,
			Transform: g.live,
			Commit:    true,
			Tap:       g.tapCandidate && ev.Kind == PointerUp,
		}
		g.mode = GestureIdle
		g.pair = [2]int{-1, -1}
		g.pinchArmed = false
		g.tapCandidate = false
		return res
	case 1:
		// Pinch falls back to a drag from wherever the remaining finger is,
		// keeping the transient scale and rotation.
		g.beginDrag(g.order[0])
	default:
		g.syncPinch()
	}
	g.mode = modeForCount(len(g.pointers))
	return g.result()
}

func (g *GestureRecognizer) beginDrag(id int) {
	g.dragID = id
	g.dragStart = g.pointers[id]
	g.positionAtStart = g.live.Position
	g.pair = [2]int{-1, -1}
	g.pinchArmed = false
}

// syncPinch re-snapshots the pinch whenever the tracked pointer pair changes.
// The snapshot reads the transient transform, so adding a finger mid-drag
// never makes the card jump.
func (g *GestureRecognizer) syncPinch() {
	pair := [2]int{g.order[0], g.order[1]}
	if pair == g.pair {
		return
	}
	g.pair = pair
	g.snapshotPinch()
}

func (g *GestureRecognizer) snapshotPinch() {
	p0, p1 := g.pointers[g.pair[0]], g.pointers[g.pair[1]]
	d := p1.Sub(p0).Len()
	if d < g.minPinchDist {
		// Coincident fingers: ratio and angle are undefined until they part.
		g.pinchArmed = false
		return
	}
	g.pinchArmed = true
	g.initialDistance = d
	g.initialScale = g.live.Scale
	g.initialRotation = g.live.Rotation
	g.lastAngle = pointerAngle(p0, p1)
	g.angleAccum = 0
}

// updatePinch recomputes scale and rotation from the tracked pair and
// reports whether the transient transform changed.
func (g *GestureRecognizer) updatePinch() bool {
	if !g.pinchArmed {
		g.snapshotPinch()
		return false
	}
	p0, p1 := g.pointers[g.pair[0]], g.pointers[g.pair[1]]
	d := p1.Sub(p0).Len()

	angle := pointerAngle(p0, p1)
	if d >= g.minPinchDist {
		g.angleAccum += normalizeAngle(angle - g.lastAngle)
		g.lastAngle = angle
	}

	scale := g.live.Scale
	if g.initialDistance > 0 {
		scale = clampScale(g.initialScale * d / g.initialDistance)
	}
	rotation := g.initialRotation + g.angleAccum

	changed := scale != g.live.Scale || rotation != g.live.Rotation
	g.live.Scale = scale
	g.live.Rotation = rotation
	return changed
}

// pointerAngle is the direction from a to b in degrees.
func pointerAngle(a, b Vec2) float64 {
	return radToDeg(math.Atan2(b.Y-a.Y, b.X-a.X))
}

// normalizeAngle maps d into (-180, 180] so a pair crossing the ±180°
// boundary keeps rotating continuously.
func normalizeAngle(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
