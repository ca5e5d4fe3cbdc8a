package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnPoint places one resource object in the world at boot.
type SpawnPoint struct {
	TemplateID string
	X, Y, Z    float64
}

// SpawnTable holds the boot-time object placements.
type SpawnTable struct {
	spawns []SpawnPoint
}

// All returns every spawn point in file order.
func (t *SpawnTable) All() []SpawnPoint {
	return t.spawns
}

// Count returns the number of loaded spawn points.
func (t *SpawnTable) Count() int {
	return len(t.spawns)
}

// --- YAML loading ---

type spawnPointYAML struct {
	TemplateID string  `yaml:"template_id"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Z          float64 `yaml:"z"`
}

type spawnFileYAML struct {
	Spawns []spawnPointYAML `yaml:"spawns"`
}

// LoadSpawnTable loads object spawn placements from YAML.
func LoadSpawnTable(path string) (*SpawnTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawns: %w", err)
	}
	var f spawnFileYAML
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawns: %w", err)
	}
	t := &SpawnTable{spawns: make([]SpawnPoint, 0, len(f.Spawns))}
	for _, s := range f.Spawns {
		if s.TemplateID == "" {
			return nil, fmt.Errorf("spawn point with empty template_id")
		}
		t.spawns = append(t.spawns, SpawnPoint{
			TemplateID: s.TemplateID,
			X:          s.X, Y: s.Y, Z: s.Z,
		})
	}
	return t, nil
}
