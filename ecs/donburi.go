package ecs

import (
	"github.com/phanxgames/tiler"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// TileEventType is the Donburi event type for tiler build events.
// Systems subscribe to it and drain it with ProcessEvents once per tick.
var TileEventType = events.NewEventType[tiler.TileEvent]()

// DonburiSink publishes build events into a Donburi world.
type DonburiSink struct {
	world donburi.World
	only  map[tiler.EventType]bool
}

var _ tiler.EventSink = (*DonburiSink)(nil)

// NewDonburiSink creates a sink publishing to TileEventType in world. With
// types given, only those event types are published; a per-tile progress bar
// can listen to EventTileCreated alone while a farm submitter listens to
// EventExecuted.
func NewDonburiSink(world donburi.World, types ...tiler.EventType) *DonburiSink {
	s := &DonburiSink{world: world}
	if len(types) > 0 {
		s.only = make(map[tiler.EventType]bool, len(types))
		for _, t := range types {
			s.only[t] = true
		}
	}
	return s
}

// EmitTileEvent implements tiler.EventSink.
func (s *DonburiSink) EmitTileEvent(event tiler.TileEvent) {
	if s.only != nil && !s.only[event.Type] {
		return
	}
	TileEventType.Publish(s.world, event)
}
