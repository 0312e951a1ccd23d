package dedup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinConfidenceScore != 0.75 || cfg.MaxCandidatePairs != 200000 || cfg.PhoneExactBoost != 0.1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dedup.yaml")
	body := []byte("min_confidence_score: 0.9\nweights:\n  name: 0.5\n  phone: 0.5\n  email: 0\n  handle: 0\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinConfidenceScore != 0.9 {
		t.Fatalf("threshold override lost: %v", cfg.MinConfidenceScore)
	}
	if cfg.Weights.Name != 0.5 || cfg.Weights.Email != 0 {
		t.Fatalf("weight override lost: %+v", cfg.Weights)
	}
	// Untouched keys keep their defaults.
	if cfg.MaxCandidatePairs != 200000 {
		t.Fatalf("unset key must keep default, got %d", cfg.MaxCandidatePairs)
	}
}

func TestLoadConfigRejectsBadThreshold(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "dedup.yaml")
	if err := os.WriteFile(path, []byte("min_confidence_score: 1.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("out-of-range threshold must fail validation")
	}
}
