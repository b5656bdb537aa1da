package ecs

import (
	"strings"

	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for canopy gesture events.
// Each event carries the gesture name (canopy.EventTouchStart,
// EventTouchMove, EventTouchEnd, EventTap or EventLink), the pressed node's
// ID and EntityID, the stage-space point and, for links, the Href.
var InteractionEventType = events.NewEventType[canopy.InteractionEvent]()

type donburiStore struct {
	world donburi.World
	types map[string]bool
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Gesture events are published to InteractionEventType and can be consumed
// with Subscribe and ProcessEvents. When types are given, only those gesture
// names are published.
func NewDonburiStore(world donburi.World, types ...string) canopy.EntityStore {
	s := &donburiStore{world: world}
	if len(types) > 0 {
		s.types = make(map[string]bool, len(types))
		for _, typ := range types {
			s.types[strings.ToLower(typ)] = true
		}
	}
	return s
}

func (s *donburiStore) EmitEvent(event canopy.InteractionEvent) {
	if s.types != nil && !s.types[event.Type] {
		return
	}
	InteractionEventType.Publish(s.world, event)
}
