package ecs

import (
	"github.com/phanxgames/arcard"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// CardEventType is the Donburi event type for arcard viewer events.
var CardEventType = events.NewEventType[arcard.CardEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// queued on CardEventType and delivered by ProcessEvents.
func NewDonburiSink(world donburi.World) arcard.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event arcard.CardEvent) {
	CardEventType.Publish(s.world, event)
}
