package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemTemplate is the immutable content definition of an inventory item.
type ItemTemplate struct {
	ID       string
	Name     string
	MaxStack int // 1 = not stackable
}

// ItemTable holds all item templates, keyed by item id.
type ItemTable struct {
	templates map[string]*ItemTemplate
}

// Get returns the template for id, or nil.
func (t *ItemTable) Get(id string) *ItemTemplate {
	return t.templates[id]
}

// Count returns the number of loaded templates.
func (t *ItemTable) Count() int {
	return len(t.templates)
}

// --- YAML loading ---

type itemTemplateYAML struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	MaxStack int    `yaml:"max_stack"`
}

type itemFileYAML struct {
	Items []itemTemplateYAML `yaml:"items"`
}

// LoadItemTable loads item templates from YAML.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item templates: %w", err)
	}
	var f itemFileYAML
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item templates: %w", err)
	}

	t := &ItemTable{templates: make(map[string]*ItemTemplate, len(f.Items))}
	for _, it := range f.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("item template with empty id")
		}
		maxStack := it.MaxStack
		if maxStack <= 0 {
			maxStack = 1
		}
		t.templates[it.ID] = &ItemTemplate{
			ID:       it.ID,
			Name:     it.Name,
			MaxStack: maxStack,
		}
	}
	return t, nil
}
