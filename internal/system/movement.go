package system

import (
	"time"

	"github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/handler"
	"github.com/embervale/server/internal/world"
)

// MovementSystem integrates player velocities and validates the results.
// A rejected move answers only the offending client with the authoritative
// position; an accepted move fans out to sessions within view radius.
type MovementSystem struct {
	deps *handler.Deps
}

func NewMovementSystem(deps *handler.Deps) *MovementSystem {
	return &MovementSystem{deps: deps}
}

func (s *MovementSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	now := time.Now()
	viewRadius := s.deps.Config.Gameplay.ViewRadius
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		moved, corrected := s.deps.World.IntegrateAndValidate(p, dt)
		if corrected {
			p.Session.Send(handler.BuildPositionCorrection(p, now))
			return
		}
		if moved {
			s.deps.World.BroadcastNearby(p.X, p.Y, viewRadius,
				handler.BuildEntityUpdate(p, now))
		}
	})
}
