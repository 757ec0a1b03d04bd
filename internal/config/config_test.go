package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("defaults must load cleanly: %v", err)
	}
	if cfg.Analysis.Alpha != 0.05 {
		t.Fatalf("default alpha must be 0.05, got %g", cfg.Analysis.Alpha)
	}
	if cfg.Analysis.Correction != "bonferroni" {
		t.Fatalf("default correction must be bonferroni, got %s", cfg.Analysis.Correction)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("default port must be 8080, got %s", cfg.Server.Port)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ALPHA", "0.01")
	t.Setenv("PARALLELISM", "4")
	t.Setenv("OUTPUT_DIR", "/data/runs")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.Alpha != 0.01 {
		t.Fatalf("ALPHA not applied, got %g", cfg.Analysis.Alpha)
	}
	if cfg.Analysis.Parallelism != 4 {
		t.Fatalf("PARALLELISM not applied, got %d", cfg.Analysis.Parallelism)
	}
	if cfg.Paths.OutputDir != "/data/runs" {
		t.Fatalf("OUTPUT_DIR not applied, got %s", cfg.Paths.OutputDir)
	}
}

func TestLoadRejectsBadAlpha(t *testing.T) {
	t.Setenv("ALPHA", "1.5")
	if _, err := Load(); err == nil {
		t.Fatalf("alpha outside (0,1) must fail validation")
	}
	t.Setenv("ALPHA", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("alpha=0 must fail validation")
	}
}

func TestLoadRejectsUnknownCorrection(t *testing.T) {
	t.Setenv("CORRECTION", "holm")
	if _, err := Load(); err == nil {
		t.Fatalf("only bonferroni is supported")
	}
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("ALPHA", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("malformed float must fall back to the default: %v", err)
	}
	if cfg.Analysis.Alpha != 0.05 {
		t.Fatalf("expected default alpha, got %g", cfg.Analysis.Alpha)
	}
}
