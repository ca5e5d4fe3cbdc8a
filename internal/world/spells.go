package world

import (
	"time"

	"github.com/embervale/server/internal/data"
)

// Cast failure reasons, surfaced to the caster in S_SPELL_CAST_RESULT.
type CastFail byte

const (
	CastOK CastFail = iota
	CastUnknownSpell
	CastSpellNotLearned
	CastOnCooldown
	CastInsufficientMana
	CastNoTarget
	CastTargetNotFound
	CastOutOfRange
	CastLevelTooLow
)

func (f CastFail) String() string {
	switch f {
	case CastOK:
		return "ok"
	case CastUnknownSpell:
		return "unknown_spell"
	case CastSpellNotLearned:
		return "spell_not_learned"
	case CastOnCooldown:
		return "on_cooldown"
	case CastInsufficientMana:
		return "insufficient_mana"
	case CastNoTarget:
		return "no_target"
	case CastTargetNotFound:
		return "target_not_found"
	case CastOutOfRange:
		return "out_of_range"
	case CastLevelTooLow:
		return "level_too_low"
	default:
		return "unknown"
	}
}

// PlayerSpell is one learned spell of one player.
type PlayerSpell struct {
	SpellID    string
	Level      int
	Experience int
	// CooldownUntil is a unix-millisecond timestamp; 0 once elapsed.
	CooldownUntil int64
}

// SpellManager tracks per-player spellbooks and cooldowns.
type SpellManager struct {
	templates *data.SpellTable
	books     map[int32]map[string]*PlayerSpell // charID → spellID → entry
}

func NewSpellManager(templates *data.SpellTable) *SpellManager {
	return &SpellManager{
		templates: templates,
		books:     make(map[int32]map[string]*PlayerSpell),
	}
}

// Template returns the content definition for a spell id, or nil.
func (m *SpellManager) Template(spellID string) *data.SpellTemplate {
	return m.templates.Get(spellID)
}

// Learn adds a spell to a player's book. Idempotent: learning a known
// spell is a no-op. Returns true when the spell was newly learned.
func (m *SpellManager) Learn(charID int32, spellID string) bool {
	if m.templates.Get(spellID) == nil {
		return false
	}
	book := m.books[charID]
	if book == nil {
		book = make(map[string]*PlayerSpell)
		m.books[charID] = book
	}
	if _, known := book[spellID]; known {
		return false
	}
	book[spellID] = &PlayerSpell{SpellID: spellID, Level: 1}
	return true
}

// Spellbook returns all learned spells of a player.
func (m *SpellManager) Spellbook(charID int32) []*PlayerSpell {
	book := m.books[charID]
	out := make([]*PlayerSpell, 0, len(book))
	for _, s := range book {
		out = append(out, s)
	}
	return out
}

// Get returns one learned spell entry, or nil.
func (m *SpellManager) Get(charID int32, spellID string) *PlayerSpell {
	return m.books[charID][spellID]
}

// CanCast validates spell existence, learnedness, cooldown and mana, in
// that order. The first failing check wins.
func (m *SpellManager) CanCast(charID int32, spellID string, currentMana int, now time.Time) CastFail {
	tmpl := m.templates.Get(spellID)
	if tmpl == nil {
		return CastUnknownSpell
	}
	entry := m.books[charID][spellID]
	if entry == nil {
		return CastSpellNotLearned
	}
	nowMs := now.UnixMilli()
	if entry.CooldownUntil != 0 {
		if nowMs < entry.CooldownUntil {
			return CastOnCooldown
		}
		entry.CooldownUntil = 0
	}
	if currentMana < tmpl.ManaCost {
		return CastInsufficientMana
	}
	return CastOK
}

// StartCooldown stamps the spell's next usable time after a successful
// cast.
func (m *SpellManager) StartCooldown(charID int32, spellID string, now time.Time) {
	tmpl := m.templates.Get(spellID)
	entry := m.books[charID][spellID]
	if tmpl == nil || entry == nil || tmpl.Cooldown <= 0 {
		return
	}
	entry.CooldownUntil = now.Add(tmpl.Cooldown).UnixMilli()
}

// RemovePlayer drops a player's spellbook when they leave the world.
// Learned spells live in the persisted record; the in-memory book is
// rebuilt on rejoin.
func (m *SpellManager) RemovePlayer(charID int32) {
	delete(m.books, charID)
}
