package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/core/event"
	gamenet "github.com/embervale/server/internal/net"
)

// Cleanup tears down a session on the game loop. Socket errors, clean
// quits, and idle eviction all funnel through here: persist the player
// best-effort, remove it from the world, announce the leave, drop the
// session. Safe to call for sessions that never bound a player.
func Cleanup(sess *gamenet.Session, deps *Deps) {
	delete(deps.joining, sess.ID)

	p := deps.World.RemovePlayer(sess.ID)
	if p != nil {
		now := time.Now()

		// Persist final position/stats before the spellbook is dropped.
		if deps.Players != nil && p.DBID != 0 {
			rec := RecordFromPlayer(p, deps)
			id := rec.ID
			log := deps.Log
			store := deps.Players
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := store.Update(ctx, id, rec); err != nil {
					log.Error("final save failed",
						zap.String("name", rec.Name), zap.Error(err))
				}
			}()
		}

		deps.Spells.RemovePlayer(p.CharID)
		for _, eff := range deps.Effects.ClearCaster(p.CharID) {
			deps.World.BroadcastNearby(p.X, p.Y, deps.Config.Gameplay.EffectRadius,
				BuildSpellEffect(EffectEventEnded, eff.SpellID, eff.CasterID, eff.TargetID, now))
		}
		deps.Effects.ClearTarget(p.CharID)

		deps.World.Broadcast(buildLeave(p.CharID, p.Name, now))
		deps.Bus.Emit(event.PlayerLeft{
			CharID:    p.CharID,
			SessionID: sess.ID,
			Name:      p.Name,
		})
		deps.Log.Info("player left",
			zap.String("name", p.Name), zap.Int32("char", p.CharID))
	}

	deps.World.Sessions().Remove(sess.ID)
	sess.Close()
}
