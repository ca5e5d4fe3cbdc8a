package world

import (
	"time"
)

// ActiveEffect is one timed buff or debuff applied to an entity.
type ActiveEffect struct {
	ID       int64
	SpellID  string
	CasterID int32
	TargetID int32
	Kind     string // data.EffectBuff or data.EffectDebuff
	Start    time.Time
	Duration time.Duration
	// Modifiers are additive stat deltas while the effect is active.
	Modifiers map[string]int
}

// ExpiresAt returns the wall-clock expiry instant.
func (e *ActiveEffect) ExpiresAt() time.Time {
	return e.Start.Add(e.Duration)
}

// EffectManager tracks all active timed effects. Expiry is swept once per
// tick; aggregation is computed on demand wherever effective stats are
// needed.
type EffectManager struct {
	effects map[int64]*ActiveEffect
	nextID  int64
}

func NewEffectManager() *EffectManager {
	return &EffectManager{effects: make(map[int64]*ActiveEffect)}
}

// Apply registers a new timed effect and returns it.
func (m *EffectManager) Apply(spellID string, casterID, targetID int32, kind string, now time.Time, duration time.Duration, modifiers map[string]int) *ActiveEffect {
	m.nextID++
	eff := &ActiveEffect{
		ID:        m.nextID,
		SpellID:   spellID,
		CasterID:  casterID,
		TargetID:  targetID,
		Kind:      kind,
		Start:     now,
		Duration:  duration,
		Modifiers: modifiers,
	}
	m.effects[eff.ID] = eff
	return eff
}

// Get returns the effect with the given id, or nil.
func (m *EffectManager) Get(id int64) *ActiveEffect {
	return m.effects[id]
}

// Count returns the number of active effects.
func (m *EffectManager) Count() int {
	return len(m.effects)
}

// Sweep removes every effect whose duration has elapsed and returns the
// removed effects for caller-side cleanup (client notifications).
func (m *EffectManager) Sweep(now time.Time) []*ActiveEffect {
	var expired []*ActiveEffect
	for id, eff := range m.effects {
		if !now.Before(eff.ExpiresAt()) {
			delete(m.effects, id)
			expired = append(expired, eff)
		}
	}
	return expired
}

// ClearCaster removes every effect cast by the given entity (caster left
// the world) and returns them.
func (m *EffectManager) ClearCaster(casterID int32) []*ActiveEffect {
	var cleared []*ActiveEffect
	for id, eff := range m.effects {
		if eff.CasterID == casterID {
			delete(m.effects, id)
			cleared = append(cleared, eff)
		}
	}
	return cleared
}

// ClearTarget removes every effect on the given entity and returns them.
func (m *EffectManager) ClearTarget(targetID int32) []*ActiveEffect {
	var cleared []*ActiveEffect
	for id, eff := range m.effects {
		if eff.TargetID == targetID {
			delete(m.effects, id)
			cleared = append(cleared, eff)
		}
	}
	return cleared
}

// AggregateModifiers sums the stat modifiers of every effect active on an
// entity. Used wherever effective stats are computed.
func (m *EffectManager) AggregateModifiers(targetID int32) map[string]int {
	total := make(map[string]int)
	for _, eff := range m.effects {
		if eff.TargetID != targetID {
			continue
		}
		for stat, delta := range eff.Modifiers {
			total[stat] += delta
		}
	}
	return total
}
