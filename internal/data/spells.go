package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Spell effect kinds.
const (
	EffectDamage   = "damage"
	EffectHeal     = "heal"
	EffectBuff     = "buff"
	EffectDebuff   = "debuff"
	EffectTeleport = "teleport"
)

// Effect timings. Only on_cast_complete is resolved today; the field exists
// so projectile-impact timing can be added without a schema change.
const (
	TimingOnCastComplete = "on_cast_complete"
)

// SpellEffect is one resolved consequence of a successful cast.
// Damage/heal amount = Base + attack*AttackScale + level*LevelScale,
// floored to integer. Buff/debuff use Duration and Modifiers. Teleport
// ignores all of these and repositions the caster.
type SpellEffect struct {
	Kind        string
	Timing      string
	Base        float64
	AttackScale float64
	LevelScale  float64
	Duration    time.Duration
	Modifiers   map[string]int // stat name → additive delta
}

// SpellTemplate is the immutable content definition of a castable spell.
type SpellTemplate struct {
	ID             string
	Name           string
	ManaCost       int
	Cooldown       time.Duration
	RequiresTarget bool
	Range          float64 // 0 = unbounded
	MinRange       float64 // 0 = no minimum
	RequiredLevel  int
	Effects        []SpellEffect
}

// SpellTable holds all spell templates, keyed by spell id.
type SpellTable struct {
	templates map[string]*SpellTemplate
}

// Get returns the template for id, or nil.
func (t *SpellTable) Get(id string) *SpellTemplate {
	return t.templates[id]
}

// Count returns the number of loaded templates.
func (t *SpellTable) Count() int {
	return len(t.templates)
}

// --- YAML loading ---

type spellEffectYAML struct {
	Kind        string         `yaml:"kind"`
	Timing      string         `yaml:"timing"`
	Base        float64        `yaml:"base"`
	AttackScale float64        `yaml:"attack_scale"`
	LevelScale  float64        `yaml:"level_scale"`
	DurationMs  int64          `yaml:"duration_ms"`
	Modifiers   map[string]int `yaml:"modifiers"`
}

type spellTemplateYAML struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	ManaCost       int               `yaml:"mana_cost"`
	CooldownMs     int64             `yaml:"cooldown_ms"`
	RequiresTarget bool              `yaml:"requires_target"`
	Range          float64           `yaml:"range"`
	MinRange       float64           `yaml:"min_range"`
	RequiredLevel  int               `yaml:"required_level"`
	Effects        []spellEffectYAML `yaml:"effects"`
}

type spellFileYAML struct {
	Spells []spellTemplateYAML `yaml:"spells"`
}

// LoadSpellTable loads spell templates from YAML.
func LoadSpellTable(path string) (*SpellTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spell templates: %w", err)
	}
	var f spellFileYAML
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spell templates: %w", err)
	}

	t := &SpellTable{templates: make(map[string]*SpellTemplate, len(f.Spells))}
	for _, s := range f.Spells {
		if s.ID == "" {
			return nil, fmt.Errorf("spell template with empty id")
		}
		tmpl := &SpellTemplate{
			ID:             s.ID,
			Name:           s.Name,
			ManaCost:       s.ManaCost,
			Cooldown:       time.Duration(s.CooldownMs) * time.Millisecond,
			RequiresTarget: s.RequiresTarget,
			Range:          s.Range,
			MinRange:       s.MinRange,
			RequiredLevel:  s.RequiredLevel,
		}
		for _, e := range s.Effects {
			switch e.Kind {
			case EffectDamage, EffectHeal, EffectBuff, EffectDebuff, EffectTeleport:
			default:
				return nil, fmt.Errorf("spell template %s: unknown effect kind %q", s.ID, e.Kind)
			}
			timing := e.Timing
			if timing == "" {
				timing = TimingOnCastComplete
			}
			tmpl.Effects = append(tmpl.Effects, SpellEffect{
				Kind:        e.Kind,
				Timing:      timing,
				Base:        e.Base,
				AttackScale: e.AttackScale,
				LevelScale:  e.LevelScale,
				Duration:    time.Duration(e.DurationMs) * time.Millisecond,
				Modifiers:   e.Modifiers,
			})
		}
		t.templates[s.ID] = tmpl
	}
	return t, nil
}
