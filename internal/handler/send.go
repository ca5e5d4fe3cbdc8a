package handler

import (
	"time"

	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
	"github.com/embervale/server/internal/world"
)

// Builders for server → client packets. Every body starts with the server
// timestamp in unix milliseconds.

func stamp(w *packet.Writer, now time.Time) {
	w.WriteQ(now.UnixMilli())
}

// buildJoin announces a player entering the world.
func buildJoin(p *world.PlayerInfo, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_JOIN)
	stamp(w, now)
	w.WriteD(p.CharID)
	w.WriteS(p.Name)
	w.WriteF(p.X)
	w.WriteF(p.Y)
	w.WriteF(p.Z)
	w.WriteD(int32(p.Stats.Level))
	return w.Bytes()
}

// buildLeave announces a player leaving the world.
func buildLeave(charID int32, name string, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_LEAVE)
	stamp(w, now)
	w.WriteD(charID)
	w.WriteS(name)
	return w.Bytes()
}

// buildWorldState is the full snapshot sent to a joining session.
func buildWorldState(deps *Deps, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_WORLD_STATE)
	stamp(w, now)

	w.WriteH(uint16(deps.World.PlayerCount()))
	deps.World.AllPlayers(func(p *world.PlayerInfo) {
		w.WriteD(p.CharID)
		w.WriteS(p.Name)
		w.WriteF(p.X)
		w.WriteF(p.Y)
		w.WriteF(p.Z)
		w.WriteD(int32(p.Stats.Level))
		w.WriteD(int32(p.Stats.HP))
		w.WriteD(int32(p.Stats.MaxHP))
	})

	w.WriteH(uint16(deps.Objects.Count()))
	deps.Objects.All(func(obj *world.ResourceObject) {
		w.WriteD(obj.ID)
		w.WriteS(obj.Template.ID)
		w.WriteF(obj.X)
		w.WriteF(obj.Y)
		w.WriteF(obj.Z)
		if obj.Active {
			w.WriteC(1)
		} else {
			w.WriteC(0)
		}
	})
	return w.Bytes()
}

// BuildEntityUpdate carries an entity's position, velocity and health to
// nearby clients. Exported for the movement system.
func BuildEntityUpdate(p *world.PlayerInfo, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_UPDATE)
	stamp(w, now)
	w.WriteD(p.CharID)
	w.WriteF(p.X)
	w.WriteF(p.Y)
	w.WriteF(p.Z)
	w.WriteF(p.VX)
	w.WriteF(p.VY)
	w.WriteD(int32(p.Stats.HP))
	w.WriteD(int32(p.Stats.MaxHP))
	return w.Bytes()
}

// BuildPositionCorrection is the authoritative position sent to exactly
// one client after a rejected move or a teleport. Exported for the
// movement system.
func BuildPositionCorrection(p *world.PlayerInfo, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_POSITION)
	stamp(w, now)
	w.WriteF(p.X)
	w.WriteF(p.Y)
	w.WriteF(p.Z)
	return w.Bytes()
}

// buildChat carries one chat line.
func buildChat(channel byte, p *world.PlayerInfo, text string, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CHAT)
	stamp(w, now)
	w.WriteC(channel)
	w.WriteD(p.CharID)
	w.WriteS(p.Name)
	w.WriteS(text)
	return w.Bytes()
}

// Target descriptor kinds.
const (
	targetKindPlayer byte = 0
	targetKindObject byte = 3
)

// sendTargetInfo answers a target request on the requesting session only.
func sendTargetInfo(sess *gamenet.Session, found bool, entityID int32, kind byte, name string, level, hp, maxHP int32, x, y float64, now time.Time) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_TARGET_INFO)
	stamp(w, now)
	if found {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	w.WriteD(entityID)
	w.WriteC(kind)
	w.WriteS(name)
	w.WriteD(level)
	w.WriteD(hp)
	w.WriteD(maxHP)
	w.WriteF(x)
	w.WriteF(y)
	sess.Send(w.Bytes())
}

// sendInventoryUpdate pushes the player's full inventory.
func sendInventoryUpdate(sess *gamenet.Session, p *world.PlayerInfo, now time.Time) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_INVENTORY_UPDATE)
	stamp(w, now)
	w.WriteH(uint16(len(p.Inventory)))
	for _, slot := range p.Inventory {
		w.WriteS(slot.ItemID)
		w.WriteD(int32(slot.Count))
	}
	sess.Send(w.Bytes())
}

// sendSpellbookUpdate pushes the player's learned spells.
func sendSpellbookUpdate(sess *gamenet.Session, deps *Deps, charID int32, now time.Time) {
	book := deps.Spells.Spellbook(charID)
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SPELLBOOK_UPDATE)
	stamp(w, now)
	w.WriteH(uint16(len(book)))
	for _, s := range book {
		w.WriteS(s.SpellID)
		w.WriteD(int32(s.Level))
		w.WriteD(int32(s.Experience))
		w.WriteQ(s.CooldownUntil)
	}
	sess.Send(w.Bytes())
}

// Spell effect event kinds for S_SPELL_EFFECT.
const (
	EffectEventApplied byte = 0
	EffectEventEnded   byte = 1
)

// BuildSpellEffect announces an effect being applied to or ending on an
// entity, so nearby clients can render reactions. Exported for the effect
// expiry system.
func BuildSpellEffect(event byte, spellID string, casterID, targetID int32, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SPELL_EFFECT)
	stamp(w, now)
	w.WriteC(event)
	w.WriteS(spellID)
	w.WriteD(casterID)
	w.WriteD(targetID)
	return w.Bytes()
}

// BuildObjectSpawn announces an object becoming active (boot or respawn).
// Exported for the respawn system.
func BuildObjectSpawn(obj *world.ResourceObject, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_OBJECT_SPAWN)
	stamp(w, now)
	w.WriteD(obj.ID)
	w.WriteS(obj.Template.ID)
	w.WriteF(obj.X)
	w.WriteF(obj.Y)
	w.WriteF(obj.Z)
	return w.Bytes()
}

// BuildObjectRemove announces the permanent removal of an object.
// Exported for the respawn system.
func BuildObjectRemove(objectID int32, now time.Time) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_OBJECT_REMOVE)
	stamp(w, now)
	w.WriteD(objectID)
	return w.Bytes()
}
