package system

import (
	"time"

	"github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/handler"
	gamenet "github.com/embervale/server/internal/net"
)

// OutputSystem flushes every session's buffered packets to its write loop
// at the end of the tick, then samples the world gauges. Flushing last
// means clients see each tick's changes as one burst, never a half-tick.
type OutputSystem struct {
	deps *handler.Deps
}

func NewOutputSystem(deps *handler.Deps) *OutputSystem {
	return &OutputSystem{deps: deps}
}

func (s *OutputSystem) Phase() system.Phase { return system.PhaseOutput }

func (s *OutputSystem) Update(dt time.Duration) {
	flushed := 0
	s.deps.World.Sessions().ForEach(func(sess *gamenet.Session) {
		flushed += sess.PendingOutput()
		sess.FlushOutput()
	})
	m := s.deps.Metrics
	m.PacketsOut.Add(float64(flushed))
	m.Sessions.Set(float64(s.deps.World.Sessions().Count()))
	m.Players.Set(float64(s.deps.World.PlayerCount()))
	m.Objects.Set(float64(s.deps.Objects.Count()))
	m.ActiveEffects.Set(float64(s.deps.Effects.Count()))
}
