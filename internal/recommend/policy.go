// Package recommend matches open skill gaps against the course catalog
// and ranks the results into explainable recommendation sections.
package recommend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy names one of the three weighting schemes the engine supports.
// The original system computed structurally similar but not identical
// formulas in three code paths; they are kept as explicit named policies
// rather than silently merged.
type Policy string

const (
	// PolicyBasicWeighted is the default four-factor scheme.
	PolicyBasicWeighted Policy = "basic_weighted"
	// PolicyEnrichedFiveFactor adds the graph-relationship signal when
	// enrichment metadata is available.
	PolicyEnrichedFiveFactor Policy = "enriched_five_factor"
	// PolicySkillBasedOnly scores on skill coverage and difficulty alone.
	PolicySkillBasedOnly Policy = "skill_based_only"
)

// Weights are the per-signal multipliers applied to the 0-100 sub-scores.
type Weights struct {
	SkillMatch          float64 `yaml:"skill_match"`
	Relevance           float64 `yaml:"relevance"`
	AIMatch             float64 `yaml:"ai_match"`
	DifficultyAlignment float64 `yaml:"difficulty_alignment"`
	Graph               float64 `yaml:"graph"`
}

func defaultWeights() map[Policy]Weights {
	return map[Policy]Weights{
		PolicyBasicWeighted: {
			SkillMatch:          0.40,
			Relevance:           0.30,
			AIMatch:             0.20,
			DifficultyAlignment: 0.10,
		},
		PolicyEnrichedFiveFactor: {
			SkillMatch:          0.35,
			Relevance:           0.25,
			AIMatch:             0.15,
			DifficultyAlignment: 0.10,
			Graph:               0.15,
		},
		PolicySkillBasedOnly: {
			SkillMatch:          0.80,
			DifficultyAlignment: 0.20,
		},
	}
}

// Config selects the active policy and optionally overrides its weights.
type Config struct {
	DefaultPolicy Policy             `yaml:"default_policy"`
	Policies      map[Policy]Weights `yaml:"policies"`
}

// DefaultConfig returns the built-in policy table with BasicWeighted
// selected.
func DefaultConfig() Config {
	return Config{
		DefaultPolicy: PolicyBasicWeighted,
		Policies:      defaultWeights(),
	}
}

// LoadConfig reads a yaml policy file and merges it over the defaults.
// Policies absent from the file keep their built-in weights.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scoring config: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("parse scoring config: %w", err)
	}
	if file.DefaultPolicy != "" {
		cfg.DefaultPolicy = file.DefaultPolicy
	}
	for policy, w := range file.Policies {
		if _, known := cfg.Policies[policy]; !known {
			return cfg, fmt.Errorf("parse scoring config: unknown policy %q", policy)
		}
		cfg.Policies[policy] = w
	}
	return cfg, nil
}

// WeightsFor resolves the weight set for a policy, falling back to the
// default policy when the requested one is unknown.
func (c Config) WeightsFor(policy Policy) Weights {
	if w, ok := c.Policies[policy]; ok {
		return w
	}
	return c.Policies[c.DefaultPolicy]
}
