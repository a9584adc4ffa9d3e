package arcard

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// --- Per-pointer state ---

type pointerState struct {
	down  bool
	lastX float64
	lastY float64
}

// inputPoller turns ebiten's polled mouse, touch and wheel state into
// PointerEvents. Touches are mapped to stable slots so a finger keeps its
// pointer id for the whole contact.
type inputPoller struct {
	pointers  [maxPointers]pointerState
	touchIDs  []ebiten.TouchID
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool

	emit func(PointerEvent)
}

func newInputPoller(emit func(PointerEvent)) *inputPoller {
	return &inputPoller{emit: emit}
}

// poll reads the current input state once per tick. The wheel delta is
// reported in the DOM convention: positive means scrolling down.
func (p *inputPoller) poll(now time.Time, wheel func(deltaY float64)) {
	p.pollMouse(now)
	p.pollTouches(now)
	if _, yoff := ebiten.Wheel(); yoff != 0 && wheel != nil {
		wheel(-yoff)
	}
}

// pollMouse handles the left mouse button as pointer 0.
func (p *inputPoller) pollMouse(now time.Time) {
	mx, my := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	p.processPointer(0, float64(mx), float64(my), pressed, now)
}

// pollTouches handles touch input (pointers 1-9).
func (p *inputPoller) pollTouches(now time.Time) {
	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])

	var active [maxPointers]bool
	for _, tid := range p.touchIDs {
		slot := p.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		p.processPointer(slot, float64(tx), float64(ty), true, now)
	}
	p.releaseInactive(active, now)
}

// releaseInactive lifts touch slots whose finger disappeared this tick.
func (p *inputPoller) releaseInactive(active [maxPointers]bool, now time.Time) {
	for i := 1; i < maxPointers; i++ {
		if p.touchUsed[i] && !active[i] {
			ps := &p.pointers[i]
			if ps.down {
				p.processPointer(i, ps.lastX, ps.lastY, false, now)
			}
			p.touchUsed[i] = false
			p.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (p *inputPoller) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if p.touchUsed[i] && p.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !p.touchUsed[i] {
			p.touchUsed[i] = true
			p.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer compares one pointer's pressed state with the previous tick
// and emits the matching event. Hover movement emits nothing.
func (p *inputPoller) processPointer(id int, x, y float64, pressed bool, now time.Time) {
	ps := &p.pointers[id]
	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.lastX, ps.lastY = x, y
		p.emit(PointerEvent{Kind: PointerDown, ID: id, X: x, Y: y, Time: now})
	case !pressed && ps.down:
		ps.down = false
		p.emit(PointerEvent{Kind: PointerUp, ID: id, X: x, Y: y, Time: now})
	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			ps.lastX, ps.lastY = x, y
			p.emit(PointerEvent{Kind: PointerMove, ID: id, X: x, Y: y, Time: now})
		}
	}
}

// cancelAll lifts every pressed pointer with PointerCancel, used when the
// window loses focus mid-gesture.
func (p *inputPoller) cancelAll(now time.Time) {
	for i := range p.pointers {
		ps := &p.pointers[i]
		if !ps.down {
			continue
		}
		ps.down = false
		p.emit(PointerEvent{Kind: PointerCancel, ID: i, X: ps.lastX, Y: ps.lastY, Time: now})
	}
}
