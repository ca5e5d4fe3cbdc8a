package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/handler"
)

// RespawnSystem reactivates depleted resource objects whose respawn timer
// has elapsed and announces each one to nearby sessions.
type RespawnSystem struct {
	deps *handler.Deps
}

func NewRespawnSystem(deps *handler.Deps) *RespawnSystem {
	return &RespawnSystem{deps: deps}
}

func (s *RespawnSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *RespawnSystem) Update(dt time.Duration) {
	now := time.Now()
	for _, obj := range s.deps.Objects.TickRespawns(now) {
		s.deps.World.BroadcastNearby(obj.X, obj.Y, s.deps.Config.Gameplay.NotifyRadius,
			handler.BuildObjectSpawn(obj, now))
		s.deps.Log.Debug("object respawned",
			zap.Int32("object", obj.ID),
			zap.String("template", obj.Template.ID))
	}
}
