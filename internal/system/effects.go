package system

import (
	"time"

	"github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/handler"
)

// EffectExpirySystem sweeps timed spell effects once per tick and
// announces each expiry near the affected entity.
type EffectExpirySystem struct {
	deps *handler.Deps
}

func NewEffectExpirySystem(deps *handler.Deps) *EffectExpirySystem {
	return &EffectExpirySystem{deps: deps}
}

func (s *EffectExpirySystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *EffectExpirySystem) Update(dt time.Duration) {
	now := time.Now()
	for _, eff := range s.deps.Effects.Sweep(now) {
		target := s.deps.World.GetByCharID(eff.TargetID)
		if target == nil {
			continue
		}
		s.deps.World.BroadcastNearby(target.X, target.Y, s.deps.Config.Gameplay.EffectRadius,
			handler.BuildSpellEffect(handler.EffectEventEnded, eff.SpellID, eff.CasterID, eff.TargetID, now))
	}
}
