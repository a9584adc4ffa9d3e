package arcard

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scale and tilt bounds. These are invariants of the engine, not settings.
const (
	MinScale = 0.3
	MaxScale = 2.0
	MaxTilt  = 15.0 // degrees, per axis
)

// Vec2 is a 2D vector in screen pixels.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// SessionState is the lifecycle state of a viewer and of its camera session.
type SessionState uint8

const (
	SessionIdle       SessionState = iota // created, open not called yet
	SessionRequesting                     // waiting on camera permission / acquisition
	SessionActive                         // camera feed attached, input forwarded
	SessionError                          // camera failed; caller may retry or close
	SessionClosed                         // terminal
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionRequesting:
		return "requesting"
	case SessionActive:
		return "active"
	case SessionError:
		return "error"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// GestureMode is the mutually exclusive interaction state derived from the
// number of active pointers.
type GestureMode uint8

const (
	GestureIdle     GestureMode = iota // no pointers
	GestureDragging                    // exactly one pointer
	GesturePinching                    // two or more pointers
)

func (m GestureMode) String() string {
	switch m {
	case GestureIdle:
		return "idle"
	case GestureDragging:
		return "dragging"
	case GesturePinching:
		return "pinching"
	default:
		return "unknown"
	}
}

// modeForCount returns the only mode consistent with n active pointers.
func modeForCount(n int) GestureMode {
	switch {
	case n <= 0:
		return GestureIdle
	case n == 1:
		return GestureDragging
	default:
		return GesturePinching
	}
}

// TiltVector is the smoothed device tilt in degrees, each axis within
// [-MaxTilt, MaxTilt].
type TiltVector struct {
	X, Y float64
}

// ObjectTransform is the committed state of the card. Position is an
// unclamped pixel offset from the screen center, Scale is kept within
// [MinScale, MaxScale], Rotation is in degrees and unclamped.
type ObjectTransform struct {
	Position Vec2
	Scale    float64
	Rotation float64
	Flipped  bool
}

// RenderTransform is the composed transform handed to the renderer. Angles
// are in degrees.
type RenderTransform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
	RotateX    float64
	RotateY    float64
	RotateZ    float64
}

// Content holds the two opaque faces of the card. The engine draws them as
// given and never inspects them. A nil face is drawn as a blank white card.
type Content struct {
	Front *ebiten.Image
	Back  *ebiten.Image
}

// Callbacks are optional notifications delivered on the goroutine that calls
// Viewer.Update.
type Callbacks struct {
	OnFlip  func(flipped bool)
	OnError func(err error)
	OnClose func()
}

// PointerKind identifies a pointer event.
type PointerKind uint8

const (
	PointerDown   PointerKind = iota // a pointer touched / a button was pressed
	PointerMove                      // a pressed pointer moved
	PointerUp                        // a pointer lifted
	PointerCancel                    // the platform cancelled the pointer
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// PointerEvent is a single pointer sample in client coordinates. Mouse and
// touch input are both reduced to this type before reaching the recognizer.
type PointerEvent struct {
	Kind PointerKind
	ID   int
	X, Y float64
	Time time.Time
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampScale clamps to [MinScale, MaxScale] and maps NaN to MinScale.
func clampScale(s float64) float64 {
	if math.IsNaN(s) {
		return MinScale
	}
	return clamp(s, MinScale, MaxScale)
}

func radToDeg(r float64) float64 { return r * 180 / math.Pi }

func degToRad(d float64) float64 { return d * math.Pi / 180 }
