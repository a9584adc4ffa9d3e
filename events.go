package arcard

import "github.com/google/uuid"

// EventSink is the interface for optional event integration (an ECS world,
// an analytics bridge). When set on a Viewer, events are emitted
// synchronously from the call that caused them (Open, Close, Retry,
// HandlePointer, HandleWheel, Flip, zoom and Reset) or, for camera
// results, from the Update that applies them.
type EventSink interface {
	EmitEvent(event CardEvent)
}

// EventType identifies a kind of card event.
type EventType uint8

const (
	EventStateChanged EventType = iota // the session moved to a new SessionState
	EventCommit                        // a gesture, wheel step, zoom or reset was committed
	EventFlip                          // the card was flipped
	EventTap                           // a single tap was recognized
)

func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "state_changed"
	case EventCommit:
		return "commit"
	case EventFlip:
		return "flip"
	case EventTap:
		return "tap"
	default:
		return "unknown"
	}
}

// CardEvent carries one viewer event.
type CardEvent struct {
	Type    EventType
	Session uuid.UUID
	// State is valid for EventStateChanged.
	State SessionState
	// Transform is the committed transform after the event.
	Transform ObjectTransform
	// Err is set for EventStateChanged into SessionError.
	Err error
}
