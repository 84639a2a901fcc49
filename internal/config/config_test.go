package config

import (
	"os"
	"path/filepath"
	"testing"

	"tripnav/internal/model"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.CongestionFactor(model.BlockDinner) != 1.8 {
		t.Fatalf("dinner congestion: got %f", cfg.CongestionFactor(model.BlockDinner))
	}
	if cfg.CongestionFactor("NO_SUCH_BLOCK") != 1.0 {
		t.Fatalf("unknown block should default to 1.0")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("port: \"9090\"\nmatrixConcurrency: 2\nbalanced:\n  distance: 0.5\n  time: 0.3\n  preference: 0.2\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("env should override file: got %s", cfg.Port)
	}
	if cfg.MatrixConcurrency != 2 {
		t.Fatalf("file value lost: got %d", cfg.MatrixConcurrency)
	}
	if cfg.Balanced.Distance != 0.5 {
		t.Fatalf("balanced weights not loaded: %+v", cfg.Balanced)
	}
}

func TestLoadRejectsZeroWeights(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("balanced:\n  distance: 0\n  time: 0\n  preference: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for all-zero weights")
	}
}
