package system

import (
	"time"

	"github.com/embervale/server/internal/core/event"
	"github.com/embervale/server/internal/core/system"
)

// EventDispatchSystem promotes events emitted during the previous tick and
// delivers them to subscribers before game logic runs, so subscribers
// always observe a settled post-tick world.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() system.Phase { return system.PhasePreUpdate }

func (s *EventDispatchSystem) Update(dt time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
