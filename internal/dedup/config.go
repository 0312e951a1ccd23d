package dedup

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights are the per-field contributions to the overall similarity
// score. They sum to 1 in the default config; a missing field simply
// contributes nothing, the remaining weights are not renormalized, so
// sparse records score low instead of matching on a single field.
type Weights struct {
	Name   float64 `yaml:"name"`
	Phone  float64 `yaml:"phone"`
	Email  float64 `yaml:"email"`
	Handle float64 `yaml:"handle"`
}

type Config struct {
	MinConfidenceScore float64 `yaml:"min_confidence_score"`
	MaxCandidatePairs  int     `yaml:"max_candidate_pairs"`
	// PhoneExactBoost is added to the overall score when two records
	// share the exact normalized phone and their names strongly agree.
	// Name and phone weights alone sum below the default threshold, so
	// without the boost a record pair with no email or handle could
	// never qualify no matter how well it matched.
	PhoneExactBoost float64 `yaml:"phone_exact_boost"`
	Weights         Weights `yaml:"weights"`
}

func DefaultConfig() Config {
	return Config{
		MinConfidenceScore: 0.75,
		MaxCandidatePairs:  200000,
		PhoneExactBoost:    0.1,
		Weights: Weights{
			Name:   0.4,
			Phone:  0.3,
			Email:  0.2,
			Handle: 0.1,
		},
	}
}

// LoadConfig reads a YAML tuning file over the defaults. An empty
// path returns the defaults untouched.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read dedup config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse dedup config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MinConfidenceScore < 0 || c.MinConfidenceScore > 1 {
		return fmt.Errorf("min_confidence_score must be in [0,1], got %v", c.MinConfidenceScore)
	}
	if c.MaxCandidatePairs <= 0 {
		return fmt.Errorf("max_candidate_pairs must be positive, got %d", c.MaxCandidatePairs)
	}
	if c.PhoneExactBoost < 0 || c.PhoneExactBoost > 1 {
		return fmt.Errorf("phone_exact_boost must be in [0,1], got %v", c.PhoneExactBoost)
	}
	for _, w := range []float64{c.Weights.Name, c.Weights.Phone, c.Weights.Email, c.Weights.Handle} {
		if w < 0 || w > 1 {
			return fmt.Errorf("field weights must be in [0,1]")
		}
	}
	return nil
}
