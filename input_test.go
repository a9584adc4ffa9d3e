package arcard

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func recordPoller() (*inputPoller, *[]PointerEvent) {
	var events []PointerEvent
	p := newInputPoller(func(ev PointerEvent) { events = append(events, ev) })
	return p, &events
}

func TestProcessPointer(t *testing.T) {
	p, events := recordPoller()

	p.processPointer(0, 10, 10, false, t0) // hover
	p.processPointer(0, 10, 10, true, t0)
	p.processPointer(0, 10, 10, true, t0) // held still
	p.processPointer(0, 20, 15, true, t0)
	p.processPointer(0, 25, 15, false, t0)

	want := []PointerEvent{
		{Kind: PointerDown, ID: 0, X: 10, Y: 10, Time: t0},
		{Kind: PointerMove, ID: 0, X: 20, Y: 15, Time: t0},
		{Kind: PointerUp, ID: 0, X: 25, Y: 15, Time: t0},
	}
	if len(*events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(*events), len(want), *events)
	}
	for i, ev := range *events {
		if ev != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, ev, want[i])
		}
	}
}

func TestTouchSlots(t *testing.T) {
	p, _ := recordPoller()
	a := p.touchSlot(ebiten.TouchID(7))
	b := p.touchSlot(ebiten.TouchID(9))
	if a != 1 || b != 2 {
		t.Fatalf("slots = %d, %d, want 1, 2", a, b)
	}
	if got := p.touchSlot(ebiten.TouchID(7)); got != a {
		t.Errorf("touch 7 moved to slot %d", got)
	}

	for i := 0; i < maxPointers-3; i++ {
		p.touchSlot(ebiten.TouchID(100 + i))
	}
	if got := p.touchSlot(ebiten.TouchID(500)); got != -1 {
		t.Errorf("slot when full = %d, want -1", got)
	}
}

func TestReleaseInactive(t *testing.T) {
	p, events := recordPoller()
	slot := p.touchSlot(ebiten.TouchID(3))
	p.processPointer(slot, 40, 50, true, t0)

	var active [maxPointers]bool
	p.releaseInactive(active, t0)

	if len(*events) != 2 || (*events)[1].Kind != PointerUp || (*events)[1].X != 40 {
		t.Fatalf("events = %+v", *events)
	}
	if p.touchUsed[slot] {
		t.Error("slot still in use")
	}
	if got := p.touchSlot(ebiten.TouchID(4)); got != slot {
		t.Errorf("freed slot not reused: got %d", got)
	}
}

func TestCancelAll(t *testing.T) {
	p, events := recordPoller()
	p.processPointer(0, 1, 1, true, t0)
	p.processPointer(2, 5, 6, true, t0)
	*events = nil

	p.cancelAll(t0)
	if len(*events) != 2 {
		t.Fatalf("events = %+v", *events)
	}
	for _, ev := range *events {
		if ev.Kind != PointerCancel {
			t.Errorf("kind = %v, want cancel", ev.Kind)
		}
	}

	// A cancelled pointer that is still held starts a fresh contact.
	*events = nil
	p.processPointer(0, 1, 1, true, t0)
	if len(*events) != 1 || (*events)[0].Kind != PointerDown {
		t.Errorf("events after cancel = %+v", *events)
	}
}

func TestCancelledGestureIsNotATap(t *testing.T) {
	v := openActive(t, Callbacks{})
	p := newInputPoller(v.HandlePointer)
	p.processPointer(0, 30, 30, true, t0)
	p.cancelAll(t0)
	p.processPointer(0, 30, 30, true, t0.Add(50e6))
	p.cancelAll(t0.Add(60e6))
	if v.Committed().Flipped {
		t.Error("cancelled contacts counted as taps")
	}
	if v.GestureMode() != GestureIdle {
		t.Errorf("mode = %v", v.GestureMode())
	}
}
