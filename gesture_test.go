package arcard

import (
	"math"
	"testing"
)

func unitTransform() ObjectTransform {
	return ObjectTransform{Scale: 1}
}

// feed runs events through g, checking after each one that the mode matches
// the number of pointers down.
func feed(t *testing.T, g *GestureRecognizer, committed ObjectTransform, events ...PointerEvent) GestureResult {
	t.Helper()
	var res GestureResult
	for i, ev := range events {
		res = g.Handle(ev, committed)
		if want := modeForCount(g.PointerCount()); g.Mode() != want || res.Mode != want {
			t.Fatalf("event %d (%v id=%d): mode = %v / result %v, want %v for %d pointers",
				i, ev.Kind, ev.ID, g.Mode(), res.Mode, want, g.PointerCount())
		}
	}
	return res
}

func TestGestureDrag(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	committed := unitTransform()

	res := feed(t, g, committed, down(0, 100, 100), move(0, 150, 120))
	if res.Mode != GestureDragging {
		t.Fatalf("mode = %v, want dragging", res.Mode)
	}
	if !res.Changed {
		t.Error("move should report a change")
	}
	if res.Transform.Position != (Vec2{50, 20}) {
		t.Errorf("live position = %v, want (50, 20)", res.Transform.Position)
	}
	if res.Commit {
		t.Error("commit reported before release")
	}

	res = feed(t, g, committed, up(0, 150, 120))
	if !res.Commit {
		t.Fatal("release should commit")
	}
	if res.Tap {
		t.Error("a drag is not a tap")
	}
	if res.Transform.Position != (Vec2{50, 20}) {
		t.Errorf("committed position = %v, want (50, 20)", res.Transform.Position)
	}
	assertNear(t, "scale", res.Transform.Scale, 1)
}

func TestGestureDragFromOffset(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	committed := ObjectTransform{Position: Vec2{-20, 10}, Scale: 0.7, Rotation: 30}

	res := feed(t, g, committed, down(0, 0, 0), move(0, 5, 5), up(0, 5, 5))
	if res.Transform.Position != (Vec2{-15, 15}) {
		t.Errorf("position = %v, want (-15, 15)", res.Transform.Position)
	}
	assertNear(t, "scale", res.Transform.Scale, 0.7)
	assertNear(t, "rotation", res.Transform.Rotation, 30)
}

func TestGesturePinchScaleAndRotate(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	committed := unitTransform()

	res := feed(t, g, committed, down(1, 0, 0), down(2, 100, 0))
	if res.Mode != GesturePinching {
		t.Fatalf("mode = %v, want pinching", res.Mode)
	}

	res = feed(t, g, committed, move(2, 200, 0))
	assertNear(t, "scale after spread", res.Transform.Scale, 2)
	assertNear(t, "rotation after spread", res.Transform.Rotation, 0)

	res = feed(t, g, committed, move(2, 0, 200))
	assertNear(t, "scale after twist", res.Transform.Scale, 2)
	assertNear(t, "rotation after twist", res.Transform.Rotation, 90)

	res = feed(t, g, committed, up(1, 0, 0))
	if res.Commit {
		t.Fatal("commit reported while a pointer is still down")
	}
	if res.Mode != GestureDragging {
		t.Fatalf("mode = %v, want dragging", res.Mode)
	}

	res = feed(t, g, committed, up(2, 0, 200))
	if !res.Commit {
		t.Fatal("last release should commit")
	}
	assertNear(t, "committed scale", res.Transform.Scale, 2)
	assertNear(t, "committed rotation", res.Transform.Rotation, 90)
	if res.Transform.Position != (Vec2{}) {
		t.Errorf("position = %v, want origin", res.Transform.Position)
	}
}

func TestGesturePinchClampsScale(t *testing.T) {
	tests := []struct {
		name string
		to   float64
		want float64
	}{
		{"spread far", 1000, MaxScale},
		{"squeeze", 5, MinScale},
		{"within", 150, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGestureRecognizer(0, 0)
			res := feed(t, g, unitTransform(), down(1, 0, 0), down(2, 100, 0), move(2, tt.to, 0))
			assertNear(t, "scale", res.Transform.Scale, tt.want)
		})
	}
}

func TestGesturePinchAcrossAngleBoundary(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	at := func(deg float64) (float64, float64) {
		r := degToRad(deg)
		return 100 * math.Cos(r), 100 * math.Sin(r)
	}

	x, y := at(170)
	feed(t, g, unitTransform(), down(1, 0, 0), down(2, x, y))
	x, y = at(190) // atan2 reports -170
	res := feed(t, g, unitTransform(), move(2, x, y))
	if !approxEqual(res.Transform.Rotation, 20, 1e-6) {
		t.Errorf("rotation = %v, want 20", res.Transform.Rotation)
	}

	// A full turn accumulates instead of wrapping back to zero.
	for _, deg := range []float64{260, 350, 80, 170} {
		x, y = at(deg)
		res = feed(t, g, unitTransform(), move(2, x, y))
	}
	if !approxEqual(res.Transform.Rotation, 360, 1e-6) {
		t.Errorf("rotation after full turn = %v, want 360", res.Transform.Rotation)
	}
}

func TestGestureDragToPinchIsContinuous(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	committed := unitTransform()

	feed(t, g, committed, down(0, 0, 0), move(0, 30, 40))
	res := feed(t, g, committed, down(1, 130, 40))
	if res.Transform.Position != (Vec2{30, 40}) {
		t.Fatalf("adding a finger moved the card to %v", res.Transform.Position)
	}
	assertNear(t, "scale on second finger", res.Transform.Scale, 1)

	res = feed(t, g, committed, move(1, 230, 40))
	assertNear(t, "pinched scale", res.Transform.Scale, 2)
	if res.Transform.Position != (Vec2{30, 40}) {
		t.Errorf("pinch moved position to %v", res.Transform.Position)
	}

	// Lifting the second finger resumes the drag from where the first one is.
	res = feed(t, g, committed, up(1, 230, 40))
	if res.Transform.Position != (Vec2{30, 40}) || res.Transform.Scale != 2 {
		t.Fatalf("pinch to drag jumped: %+v", res.Transform)
	}
	res = feed(t, g, committed, move(0, 40, 40))
	if res.Transform.Position != (Vec2{40, 40}) {
		t.Errorf("resumed drag position = %v, want (40, 40)", res.Transform.Position)
	}

	res = feed(t, g, committed, up(0, 40, 40))
	if !res.Commit {
		t.Fatal("expected commit")
	}
	assertNear(t, "committed scale", res.Transform.Scale, 2)
	if res.Transform.Position != (Vec2{40, 40}) {
		t.Errorf("committed position = %v", res.Transform.Position)
	}
}

func TestGestureThirdFingerKeepsPair(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	feed(t, g, unitTransform(), down(1, 0, 0), down(2, 100, 0), move(2, 200, 0))

	res := feed(t, g, unitTransform(), down(3, 500, 500), move(3, 600, 600))
	assertNear(t, "scale ignores third finger", res.Transform.Scale, 2)
	if res.Changed {
		t.Error("third finger move should not change the transform")
	}

	// Lifting a tracked finger re-snapshots on the new pair without a jump.
	res = feed(t, g, unitTransform(), up(1, 0, 0))
	assertNear(t, "scale after pair change", res.Transform.Scale, 2)
	if res.Mode != GesturePinching {
		t.Fatalf("mode = %v, want pinching", res.Mode)
	}
}

func TestGestureCoincidentFingers(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	committed := unitTransform()

	res := feed(t, g, committed, down(1, 50, 50), down(2, 50, 50), move(2, 50, 50))
	assertNear(t, "scale while coincident", res.Transform.Scale, 1)
	assertNear(t, "rotation while coincident", res.Transform.Rotation, 0)

	// First separation arms the pinch; it must not produce a jump.
	res = feed(t, g, committed, move(2, 150, 50))
	if math.IsNaN(res.Transform.Scale) || math.IsInf(res.Transform.Scale, 0) {
		t.Fatalf("scale = %v", res.Transform.Scale)
	}
	assertNear(t, "scale on arming", res.Transform.Scale, 1)

	res = feed(t, g, committed, move(2, 250, 50))
	assertNear(t, "scale after spread", res.Transform.Scale, 2)
}

func TestGestureTap(t *testing.T) {
	tests := []struct {
		name    string
		events  []PointerEvent
		wantTap bool
	}{
		{"still", []PointerEvent{down(0, 10, 10), up(0, 10, 10)}, true},
		{"within slop", []PointerEvent{down(0, 10, 10), move(0, 12, 11), up(0, 12, 11)}, true},
		{"beyond slop", []PointerEvent{down(0, 10, 10), move(0, 20, 10), up(0, 20, 10)}, false},
		{"moved back", []PointerEvent{down(0, 10, 10), move(0, 30, 10), move(0, 10, 10), up(0, 10, 10)}, false},
		{"two fingers", []PointerEvent{down(1, 10, 10), down(2, 60, 10), up(2, 60, 10), up(1, 10, 10)}, false},
		{"cancelled", []PointerEvent{down(0, 10, 10), {Kind: PointerCancel, ID: 0, X: 10, Y: 10}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGestureRecognizer(0, 0)
			res := feed(t, g, unitTransform(), tt.events...)
			if !res.Commit {
				t.Fatal("expected commit on last release")
			}
			if res.Tap != tt.wantTap {
				t.Errorf("Tap = %v, want %v", res.Tap, tt.wantTap)
			}
		})
	}
}

func TestGestureIgnoresUnknownPointers(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	committed := unitTransform()

	res := feed(t, g, committed, move(7, 10, 10), up(7, 10, 10))
	if res.Commit || res.Changed || res.Mode != GestureIdle {
		t.Errorf("unknown pointer produced %+v", res)
	}

	// A repeated down for the same id is a move, not a second pointer.
	feed(t, g, committed, down(0, 0, 0))
	res = feed(t, g, committed, down(0, 10, 0))
	if g.PointerCount() != 1 {
		t.Fatalf("pointer count = %d, want 1", g.PointerCount())
	}
	if res.Transform.Position != (Vec2{10, 0}) {
		t.Errorf("position = %v, want (10, 0)", res.Transform.Position)
	}
}

func TestGestureCancelDiscards(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	committed := unitTransform()
	feed(t, g, committed, down(0, 0, 0), move(0, 80, 0))

	g.Cancel()
	if g.Mode() != GestureIdle || g.PointerCount() != 0 {
		t.Fatalf("after Cancel: mode %v, %d pointers", g.Mode(), g.PointerCount())
	}
	res := feed(t, g, committed, up(0, 80, 0))
	if res.Commit {
		t.Error("release after Cancel must not commit")
	}
}

func TestGestureWheel(t *testing.T) {
	tests := []struct {
		name   string
		scale  float64
		deltaY float64
		want   float64
	}{
		{"scroll down shrinks", 1, 100, 0.95},
		{"scroll up grows", 1, -100, 1.05},
		{"clamped at min", MinScale, 3, MinScale},
		{"clamped at max", MaxScale, -3, MaxScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGestureRecognizer(0, 0)
			next, ok := g.Wheel(tt.deltaY, ObjectTransform{Scale: tt.scale, Rotation: 12}, 0.05)
			if !ok {
				t.Fatal("wheel ignored while idle")
			}
			assertNear(t, "scale", next.Scale, tt.want)
			assertNear(t, "rotation", next.Rotation, 12)
		})
	}
}

func TestGestureWheelIgnoredDuringGesture(t *testing.T) {
	g := NewGestureRecognizer(0, 0)
	committed := unitTransform()
	feed(t, g, committed, down(0, 0, 0))

	next, ok := g.Wheel(100, committed, 0.05)
	if ok {
		t.Error("wheel applied during a drag")
	}
	assertNear(t, "scale", next.Scale, 1)

	if _, ok := g.Wheel(0, committed, 0.05); ok {
		t.Error("zero delta should be ignored")
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{-340, 20},
		{720, 0},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); !approxEqual(got, tt.want, 1e-9) {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
