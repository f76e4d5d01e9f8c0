package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"CRAFTAGE_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("CRAFTAGE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadServerEnv(t *testing.T) {
	t.Setenv("CRAFTAGE_ADDR", ":9090")
	t.Setenv("CRAFTAGE_LOAD_LATEST_SNAPSHOT", "false")

	cfg, err := LoadServerEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.LoadLatest || cfg.WorldID != "world_1" || cfg.DataDir != "./data" {
		t.Fatalf("unexpected server env: %+v", cfg)
	}
}
