package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/core/event"
	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
	"github.com/embervale/server/internal/persist"
	"github.com/embervale/server/internal/world"
)

const maxNameLength = 24

// HandleJoin processes C_JOIN. The persistence lookup runs on a background
// goroutine; the session is bound to a player on the game loop once the
// record (or its absence) is known. A storage failure is logged and the
// join proceeds as a brand-new player — persistence never blocks a join.
func HandleJoin(sess *gamenet.Session, r *packet.Reader, deps *Deps) {
	var msg packet.JoinRequest
	msg.Decode(r)

	name := msg.Name
	if name == "" || len(name) > maxNameLength {
		deps.Log.Warn("join with invalid name rejected",
			zap.Uint64("session", sess.ID), zap.Int("len", len(name)))
		return
	}
	if _, pending := deps.joining[sess.ID]; pending {
		return
	}
	if deps.World.GetByName(name) != nil {
		// Display name already in the world. The simplified identity
		// model has no credentials to decide who the real owner is, so
		// the later connection loses.
		deps.Log.Warn("join with duplicate name refused",
			zap.Uint64("session", sess.ID), zap.String("name", name))
		sess.Close()
		return
	}

	if deps.Players == nil {
		completeJoin(sess, name, nil, deps)
		return
	}

	deps.joining[sess.ID] = struct{}{}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rec, err := deps.Players.LoadByName(ctx, name)
		if err != nil {
			deps.Log.Error("player load failed, joining as new",
				zap.String("name", name), zap.Error(err))
			rec = nil
		}
		deps.World.Post(func() {
			delete(deps.joining, sess.ID)
			completeJoin(sess, name, rec, deps)
		})
	}()
}

// completeJoin runs on the game loop: builds the player from the record or
// from defaults, binds it to the session, and announces it.
func completeJoin(sess *gamenet.Session, name string, rec *persist.PlayerRecord, deps *Deps) {
	if sess.Closed() || sess.State != packet.StateHandshake {
		return
	}
	// Re-check: someone may have claimed the name while the load ran.
	if deps.World.GetByName(name) != nil {
		deps.Log.Warn("join with duplicate name refused after load",
			zap.Uint64("session", sess.ID), zap.String("name", name))
		sess.Close()
		return
	}

	cfg := deps.Config
	p := &world.PlayerInfo{
		CharID:    deps.World.NextEntityID(),
		SessionID: sess.ID,
		Session:   sess,
		Name:      name,
	}

	rejoined := rec != nil
	if rejoined {
		p.DBID = rec.ID
		p.X, p.Y, p.Z = rec.X, rec.Y, rec.Z
		p.Stats = world.Stats{
			HP: rec.HP, MaxHP: rec.MaxHP,
			MP: rec.MP, MaxMP: rec.MaxMP,
			Attack: rec.Attack, Defense: rec.Defense,
			MoveSpeed: rec.MoveSpeed, Level: rec.Level,
		}
		p.HarvestSkill = rec.HarvestSkill
		for _, slot := range rec.Inventory {
			p.Inventory = append(p.Inventory, world.ItemStack{ItemID: slot.ItemID, Count: slot.Count})
		}
		// A stored position outside the current bounds falls back to
		// spawn rather than wedging the player out of the world.
		if !deps.World.Bounds().Contains(p.X, p.Y) {
			p.X, p.Y, p.Z = cfg.World.SpawnX, cfg.World.SpawnY, 0
		}
		for _, s := range rec.Spells {
			if deps.Spells.Learn(p.CharID, s.SpellID) {
				if entry := deps.Spells.Get(p.CharID, s.SpellID); entry != nil {
					entry.Level = s.Level
					entry.Experience = s.Experience
				}
			}
		}
	} else {
		p.X, p.Y, p.Z = cfg.World.SpawnX, cfg.World.SpawnY, 0
		p.Stats = world.DefaultStats()
		for _, spellID := range cfg.Gameplay.StartingSpells {
			deps.Spells.Learn(p.CharID, spellID)
		}
		p.Dirty = true
		persistNewPlayer(p, deps)
	}

	deps.World.AddPlayer(p)
	sess.State = packet.StateInWorld

	now := time.Now()
	sess.Send(buildJoin(p, now))
	sess.Send(buildWorldState(deps, now))
	sendSpellbookUpdate(sess, deps, p.CharID, now)
	sendInventoryUpdate(sess, p, now)
	deps.World.BroadcastExcept(buildJoin(p, now), sess.ID)

	deps.Bus.Emit(event.PlayerJoined{
		CharID:    p.CharID,
		SessionID: sess.ID,
		Name:      p.Name,
		Rejoined:  rejoined,
	})
	deps.Log.Info("player joined",
		zap.String("name", p.Name),
		zap.Int32("char", p.CharID),
		zap.Bool("rejoined", rejoined))
}

// persistNewPlayer creates the storage record for a first join,
// best-effort. The row id is attached to the live player when the insert
// completes; until then autosaves of this player are skipped.
func persistNewPlayer(p *world.PlayerInfo, deps *Deps) {
	if deps.Players == nil {
		return
	}
	rec := RecordFromPlayer(p, deps)
	charID := p.CharID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		id, err := deps.Players.Create(ctx, rec)
		if err != nil {
			deps.Log.Error("player create failed",
				zap.String("name", rec.Name), zap.Error(err))
			return
		}
		deps.World.Post(func() {
			if live := deps.World.GetByCharID(charID); live != nil {
				live.DBID = id
			}
		})
	}()
}

// RecordFromPlayer snapshots a live player into its storage shape. Called
// on the game loop; the returned record is safe to hand to a background
// goroutine.
func RecordFromPlayer(p *world.PlayerInfo, deps *Deps) *persist.PlayerRecord {
	rec := &persist.PlayerRecord{
		ID:   p.DBID,
		Name: p.Name,
		X:    p.X, Y: p.Y, Z: p.Z,
		HP: p.Stats.HP, MaxHP: p.Stats.MaxHP,
		MP: p.Stats.MP, MaxMP: p.Stats.MaxMP,
		Attack: p.Stats.Attack, Defense: p.Stats.Defense,
		MoveSpeed: p.Stats.MoveSpeed, Level: p.Stats.Level,
		HarvestSkill: p.HarvestSkill,
	}
	for _, slot := range p.Inventory {
		rec.Inventory = append(rec.Inventory, persist.ItemStackRow{ItemID: slot.ItemID, Count: slot.Count})
	}
	for _, s := range deps.Spells.Spellbook(p.CharID) {
		rec.Spells = append(rec.Spells, persist.SpellRow{
			SpellID:    s.SpellID,
			Level:      s.Level,
			Experience: s.Experience,
		})
	}
	return rec
}
