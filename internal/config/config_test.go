package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Network.TickRate != 50*time.Millisecond {
		t.Fatalf("tick rate = %v, want 50ms", cfg.Network.TickRate)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
name = "testworld"

[gameplay]
say_radius = 300.0
enforce_skill_reqs = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Name != "testworld" {
		t.Fatalf("name = %q", cfg.Server.Name)
	}
	if cfg.Gameplay.SayRadius != 300 {
		t.Fatalf("say_radius = %f", cfg.Gameplay.SayRadius)
	}
	if !cfg.Gameplay.EnforceSkillReqs {
		t.Fatal("enforce_skill_reqs not set")
	}
	// Untouched keys keep their defaults.
	if cfg.Network.TCPBindAddress != "0.0.0.0:7077" {
		t.Fatalf("tcp_bind_address = %q", cfg.Network.TCPBindAddress)
	}
	if cfg.Gameplay.HarvestDistance != 100 {
		t.Fatalf("harvest_distance = %f", cfg.Gameplay.HarvestDistance)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"inverted bounds", "[world]\nmin_x = 100.0\nmax_x = 50.0\n"},
		{"spawn outside bounds", "[world]\nspawn_x = 9999.0\n"},
		{"zero inventory", "[gameplay]\ninventory_capacity = 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
