// Package ecs provides ECS adapters for gravit.
package ecs

import (
	"github.com/phanxgames/gravit"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ChangeEventType is the Donburi event type for gravit document changes.
// Subscribe to this in your ECS systems to receive property, tree, flag and
// invalidation events.
var ChangeEventType = events.NewEventType[gravit.ChangeEvent]()

type donburiStore struct {
	world donburi.World
	kinds map[gravit.EventKind]bool
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Change events are published to ChangeEventType and can be consumed with
// events.Subscribe and ProcessEvents. When kinds is non-empty only those
// event kinds are forwarded.
func NewDonburiStore(world donburi.World, kinds ...gravit.EventKind) gravit.EntityStore {
	s := &donburiStore{world: world}
	if len(kinds) > 0 {
		s.kinds = make(map[gravit.EventKind]bool, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = true
		}
	}
	return s
}

func (s *donburiStore) EmitEvent(event gravit.ChangeEvent) {
	if s.kinds != nil && !s.kinds[event.Type] {
		return
	}
	ChangeEventType.Publish(s.world, event)
}
