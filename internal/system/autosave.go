package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/core/system"
	"github.com/embervale/server/internal/handler"
	"github.com/embervale/server/internal/persist"
	"github.com/embervale/server/internal/world"
)

// AutosaveSystem periodically persists changed players. Saves are
// fire-and-forget on background goroutines; a failed save is logged and
// the player stays dirty so the next interval retries it.
type AutosaveSystem struct {
	deps     *handler.Deps
	interval int // ticks between sweeps
	counter  int
}

func NewAutosaveSystem(deps *handler.Deps, intervalTicks int) *AutosaveSystem {
	return &AutosaveSystem{deps: deps, interval: intervalTicks}
}

func (s *AutosaveSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *AutosaveSystem) Update(dt time.Duration) {
	if s.deps.Players == nil || s.interval <= 0 {
		return
	}
	s.counter++
	if s.counter < s.interval {
		return
	}
	s.counter = 0

	saved := 0
	s.deps.World.AllPlayers(func(p *world.PlayerInfo) {
		// DBID 0 means the initial insert has not completed yet; the row id
		// arrives via a posted task, so this player is picked up next sweep.
		if !p.Dirty || p.DBID == 0 {
			return
		}
		p.Dirty = false
		s.save(handler.RecordFromPlayer(p, s.deps), p.CharID)
		saved++
	})
	if saved > 0 {
		s.deps.Log.Debug("autosave sweep", zap.Int("players", saved))
	}
}

func (s *AutosaveSystem) save(rec *persist.PlayerRecord, charID int32) {
	deps := s.deps
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := deps.Players.Update(ctx, rec.ID, rec); err != nil {
			deps.Log.Error("autosave failed",
				zap.String("name", rec.Name), zap.Error(err))
			deps.World.Post(func() {
				if live := deps.World.GetByCharID(charID); live != nil {
					live.Dirty = true
				}
			})
		}
	}()
}
