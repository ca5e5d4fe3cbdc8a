package handler

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/server/internal/data"
	gamenet "github.com/embervale/server/internal/net"
	"github.com/embervale/server/internal/net/packet"
	"github.com/embervale/server/internal/world"
)

// HandleCastSpell processes C_CAST_SPELL. The request is queued and
// resolved by the spell system in the update phase, so casts land in
// deterministic order relative to movement and other casts.
func HandleCastSpell(sess *gamenet.Session, r *packet.Reader, deps *Deps) {
	var msg packet.CastSpell
	msg.Decode(r)
	if msg.SpellID == "" {
		return
	}
	deps.Casts.QueueCast(CastRequest{SessionID: sess.ID, Msg: msg})
}

// ProcessCast runs the full cast pipeline for one queued request:
// validate spell/learned → cooldown/mana → target and range → deduct
// mana, start cooldown, resolve effects. Every outcome goes back to the
// caster; successful casts with effects are additionally announced to
// nearby sessions.
func ProcessCast(sessionID uint64, msg packet.CastSpell, deps *Deps) {
	caster := deps.World.GetBySession(sessionID)
	if caster == nil {
		return
	}
	now := time.Now()

	tmpl := deps.Spells.Template(msg.SpellID)
	fail := deps.Spells.CanCast(caster.CharID, msg.SpellID, caster.Stats.MP, now)
	if fail != world.CastOK {
		deps.Metrics.CastsTotal.WithLabelValues(fail.String()).Inc()
		sendCastResult(caster, msg.SpellID, fail, deps, now)
		return
	}

	if deps.Config.Gameplay.EnforceSkillReqs && caster.Stats.Level < tmpl.RequiredLevel {
		deps.Metrics.CastsTotal.WithLabelValues(world.CastLevelTooLow.String()).Inc()
		sendCastResult(caster, msg.SpellID, world.CastLevelTooLow, deps, now)
		return
	}

	var target *world.PlayerInfo
	if tmpl.RequiresTarget {
		if msg.TargetID == 0 {
			deps.Metrics.CastsTotal.WithLabelValues(world.CastNoTarget.String()).Inc()
			sendCastResult(caster, msg.SpellID, world.CastNoTarget, deps, now)
			return
		}
		target = deps.World.GetByCharID(msg.TargetID)
		if target == nil {
			deps.Metrics.CastsTotal.WithLabelValues(world.CastTargetNotFound.String()).Inc()
			sendCastResult(caster, msg.SpellID, world.CastTargetNotFound, deps, now)
			return
		}
		d := world.Dist(caster.X, caster.Y, target.X, target.Y)
		if (tmpl.Range > 0 && d > tmpl.Range) || (tmpl.MinRange > 0 && d < tmpl.MinRange) {
			deps.Metrics.CastsTotal.WithLabelValues(world.CastOutOfRange.String()).Inc()
			sendCastResult(caster, msg.SpellID, world.CastOutOfRange, deps, now)
			return
		}
	}

	caster.Stats.MP -= tmpl.ManaCost
	caster.Dirty = true
	deps.Spells.StartCooldown(caster.CharID, msg.SpellID, now)

	applied := false
	for i := range tmpl.Effects {
		eff := &tmpl.Effects[i]
		if eff.Timing != data.TimingOnCastComplete {
			continue
		}
		applied = true
		switch eff.Kind {
		case data.EffectDamage:
			applyDamage(caster, target, eff, deps, now)
		case data.EffectHeal:
			applyHeal(caster, target, eff, deps, now)
		case data.EffectBuff, data.EffectDebuff:
			who := target
			if who == nil {
				who = caster
			}
			deps.Effects.Apply(msg.SpellID, caster.CharID, who.CharID, eff.Kind,
				now, eff.Duration, eff.Modifiers)
		case data.EffectTeleport:
			applyTeleport(caster, target, msg, deps, now)
		}
	}

	deps.Metrics.CastsTotal.WithLabelValues(world.CastOK.String()).Inc()
	sendCastResult(caster, msg.SpellID, world.CastOK, deps, now)
	if applied {
		targetID := caster.CharID
		if target != nil {
			targetID = target.CharID
		}
		deps.World.BroadcastNearby(caster.X, caster.Y, deps.Config.Gameplay.EffectRadius,
			BuildSpellEffect(EffectEventApplied, msg.SpellID, caster.CharID, targetID, now))
	}
	deps.Log.Debug("spell cast",
		zap.String("spell", msg.SpellID),
		zap.Int32("caster", caster.CharID))
}

// scaledAmount applies the template's additive scaling coefficients to the
// caster's effective attack and level, floored to integer.
func scaledAmount(caster *world.PlayerInfo, eff *data.SpellEffect, deps *Deps) int {
	attack := float64(caster.Stats.Attack + deps.Effects.AggregateModifiers(caster.CharID)["attack"])
	return int(math.Floor(eff.Base + eff.AttackScale*attack + eff.LevelScale*float64(caster.Stats.Level)))
}

func applyDamage(caster, target *world.PlayerInfo, eff *data.SpellEffect, deps *Deps, now time.Time) {
	if target == nil {
		return
	}
	amount := scaledAmount(caster, eff, deps)
	if amount <= 0 {
		return
	}
	target.Stats.HP -= amount
	if target.Stats.HP < 0 {
		target.Stats.HP = 0
	}
	target.Dirty = true
	target.Session.Send(BuildEntityUpdate(target, now))
}

func applyHeal(caster, target *world.PlayerInfo, eff *data.SpellEffect, deps *Deps, now time.Time) {
	who := target
	if who == nil {
		who = caster
	}
	amount := scaledAmount(caster, eff, deps)
	if amount <= 0 {
		return
	}
	who.Stats.HP += amount
	if who.Stats.HP > who.Stats.MaxHP {
		who.Stats.HP = who.Stats.MaxHP
	}
	who.Dirty = true
	who.Session.Send(BuildEntityUpdate(who, now))
}

// applyTeleport repositions the caster to an explicit ground position or
// to the target's position, clamped to world bounds.
func applyTeleport(caster, target *world.PlayerInfo, msg packet.CastSpell, deps *Deps, now time.Time) {
	var x, y float64
	switch {
	case msg.HasGround:
		x, y = msg.GroundX, msg.GroundY
	case target != nil:
		x, y = target.X, target.Y
	default:
		return
	}
	b := deps.World.Bounds()
	x = math.Min(math.Max(x, b.MinX), b.MaxX)
	y = math.Min(math.Max(y, b.MinY), b.MaxY)

	caster.X, caster.Y = x, y
	caster.VX, caster.VY = 0, 0
	caster.Dirty = true
	caster.Session.Send(BuildPositionCorrection(caster, now))
	deps.World.BroadcastNearbyExcept(caster.X, caster.Y, deps.Config.Gameplay.ViewRadius,
		BuildEntityUpdate(caster, now), caster.SessionID)
}

func sendCastResult(caster *world.PlayerInfo, spellID string, fail world.CastFail, deps *Deps, now time.Time) {
	var cooldownUntil int64
	if entry := deps.Spells.Get(caster.CharID, spellID); entry != nil {
		cooldownUntil = entry.CooldownUntil
	}
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SPELL_CAST_RESULT)
	stamp(w, now)
	w.WriteS(spellID)
	if fail == world.CastOK {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	w.WriteC(byte(fail))
	w.WriteQ(cooldownUntil)
	w.WriteD(int32(caster.Stats.MP))
	caster.Session.Send(w.Bytes())
}
