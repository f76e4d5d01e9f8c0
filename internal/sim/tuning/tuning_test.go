package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"craftage.ai/configs"
)

func TestLoad_BundledMatchesDefaults(t *testing.T) {
	got, err := LoadFS(configs.FS, "tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != Defaults() {
		t.Fatalf("bundled tuning drifted from defaults:\n got=%+v\nwant=%+v", got, Defaults())
	}
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	got, err := Parse([]byte("tick_rate_hz: 20\ndecay_rates:\n  hunger: 1.5\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.TickRateHz != 20 || got.DecayRates.Hunger != 1.5 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.DecayRates.HealthStarvation != 0.2 || got.World.SaveIntervalMs != 3000 {
		t.Fatalf("defaults lost: %+v", got)
	}
	if got.TickSeconds() != 0.05 {
		t.Fatalf("expected 0.05s per tick, got %v", got.TickSeconds())
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"tick_rate_hz: 0\n":               "tick_rate_hz",
		"decay_rates:\n  hunger: -1\n":     "decay_rates",
		"initial_stats:\n  health: 120\n":  "initial_stats.health",
		"gathering:\n  stamina_cost: -2\n": "stamina costs",
		"tick_rate_hz: [1\n":              "tuning.yaml",
	}
	for raw, want := range cases {
		if _, err := Parse([]byte(raw)); err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%q: expected error containing %q, got %v", raw, want, err)
		}
	}
}

func TestLoad_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("world:\n  save_interval_ms: 1500\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SaveInterval() != 1500*time.Millisecond {
		t.Fatalf("unexpected save interval %v", got.SaveInterval())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
