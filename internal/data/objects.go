package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LootEntry is one independent roll of an object's loot table. Each entry
// is applied by its own probability — the table is not an exclusive pick.
type LootEntry struct {
	ItemID string
	Chance float64 // 0.0–1.0
	Min    int
	Max    int
}

// ObjectTemplate is the immutable content definition of a world resource
// object (ore node, tree, herb patch).
type ObjectTemplate struct {
	ID              string
	Name            string
	Kind            string // "ore", "tree", "herb", ...
	RequiredSkill   int    // minimum harvesting skill level
	MaxHarvests     int
	RespawnDelay    time.Duration // 0 = depletion removes the object permanently
	CollisionRadius float64
	Loot            []LootEntry
}

// ObjectTable holds all object templates, keyed by template id.
type ObjectTable struct {
	templates map[string]*ObjectTemplate
}

// Get returns the template for id, or nil.
func (t *ObjectTable) Get(id string) *ObjectTemplate {
	return t.templates[id]
}

// Count returns the number of loaded templates.
func (t *ObjectTable) Count() int {
	return len(t.templates)
}

// --- YAML loading ---

type lootEntryYAML struct {
	ItemID string  `yaml:"item_id"`
	Chance float64 `yaml:"chance"`
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
}

type objectTemplateYAML struct {
	ID              string          `yaml:"id"`
	Name            string          `yaml:"name"`
	Kind            string          `yaml:"kind"`
	RequiredSkill   int             `yaml:"required_skill"`
	MaxHarvests     int             `yaml:"max_harvests"`
	RespawnDelayMs  int64           `yaml:"respawn_delay_ms"`
	CollisionRadius float64         `yaml:"collision_radius"`
	Loot            []lootEntryYAML `yaml:"loot"`
}

type objectFileYAML struct {
	Objects []objectTemplateYAML `yaml:"objects"`
}

// LoadObjectTable loads object templates from YAML.
func LoadObjectTable(path string) (*ObjectTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object templates: %w", err)
	}
	var f objectFileYAML
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse object templates: %w", err)
	}

	t := &ObjectTable{templates: make(map[string]*ObjectTemplate, len(f.Objects))}
	for _, o := range f.Objects {
		if o.ID == "" {
			return nil, fmt.Errorf("object template with empty id")
		}
		if o.MaxHarvests <= 0 {
			return nil, fmt.Errorf("object template %s: max_harvests must be positive", o.ID)
		}
		tmpl := &ObjectTemplate{
			ID:              o.ID,
			Name:            o.Name,
			Kind:            o.Kind,
			RequiredSkill:   o.RequiredSkill,
			MaxHarvests:     o.MaxHarvests,
			RespawnDelay:    time.Duration(o.RespawnDelayMs) * time.Millisecond,
			CollisionRadius: o.CollisionRadius,
		}
		for _, l := range o.Loot {
			if l.Chance < 0 || l.Chance > 1 {
				return nil, fmt.Errorf("object template %s: loot chance %f out of range", o.ID, l.Chance)
			}
			max := l.Max
			if max < l.Min {
				max = l.Min
			}
			tmpl.Loot = append(tmpl.Loot, LootEntry{
				ItemID: l.ItemID,
				Chance: l.Chance,
				Min:    l.Min,
				Max:    max,
			})
		}
		t.templates[o.ID] = tmpl
	}
	return t, nil
}
