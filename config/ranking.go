package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Ranking holds every tunable constant of retrieval and confidence
// scoring. The defaults were never validated against relevance
// judgments; expose them here rather than hard-coding so deployments
// can tune without a rebuild.
type Ranking struct {
	LexicalWeight     float64 `yaml:"lexical_weight"`
	SemanticWeight    float64 `yaml:"semantic_weight"`
	Threshold         float64 `yaml:"threshold"`
	ConfidenceFloor   float64 `yaml:"confidence_floor"`
	NoMatchConfidence float64 `yaml:"no_match_confidence"`
	GapReference      float64 `yaml:"gap_reference"`
	DefaultCertainty  float64 `yaml:"default_certainty"`
	FallbackCertainty float64 `yaml:"fallback_certainty"`
	TopK              int     `yaml:"top_k"`
}

// DefaultRanking returns the built-in ranking constants.
func DefaultRanking() Ranking {
	return Ranking{
		LexicalWeight:     0.5,
		SemanticWeight:    0.5,
		Threshold:         0.05,
		ConfidenceFloor:   0.3,
		NoMatchConfidence: 0.25,
		GapReference:      0.2,
		DefaultCertainty:  0.85,
		FallbackCertainty: 0.7,
		TopK:              3,
	}
}

// LoadRanking reads the ranking YAML file. A missing file yields the
// defaults; a present but unreadable or invalid file is an error, since
// silently ignoring a deployed tuning file would be worse.
func LoadRanking(path string) (*Ranking, error) {
	ranking := DefaultRanking()

	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ranking, nil
		}
		return nil, fmt.Errorf("failed to read ranking file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(body, &ranking); err != nil {
		return nil, fmt.Errorf("failed to parse ranking file %s: %w", path, err)
	}

	if err := ranking.validate(); err != nil {
		return nil, fmt.Errorf("ranking file %s: %w", path, err)
	}

	return &ranking, nil
}

func (r *Ranking) validate() error {
	if r.LexicalWeight < 0 || r.SemanticWeight < 0 {
		return fmt.Errorf("ranking weights must be non-negative")
	}
	if r.LexicalWeight+r.SemanticWeight == 0 {
		return fmt.Errorf("at least one ranking weight must be positive")
	}
	if r.Threshold < 0 || r.Threshold >= 1 {
		return fmt.Errorf("threshold must be in [0,1), got %g", r.Threshold)
	}
	if r.ConfidenceFloor <= 0 || r.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence_floor must be in (0,1], got %g", r.ConfidenceFloor)
	}
	if r.NoMatchConfidence < 0 || r.NoMatchConfidence > r.ConfidenceFloor {
		return fmt.Errorf("no_match_confidence must be in [0,confidence_floor], got %g", r.NoMatchConfidence)
	}
	if r.GapReference <= 0 || r.GapReference > 1 {
		return fmt.Errorf("gap_reference must be in (0,1], got %g", r.GapReference)
	}
	if r.DefaultCertainty <= 0 || r.DefaultCertainty > 1 {
		return fmt.Errorf("default_certainty must be in (0,1], got %g", r.DefaultCertainty)
	}
	if r.FallbackCertainty <= 0 || r.FallbackCertainty > 1 {
		return fmt.Errorf("fallback_certainty must be in (0,1], got %g", r.FallbackCertainty)
	}
	if r.TopK <= 0 || r.TopK > 20 {
		return fmt.Errorf("top_k must be 1-20, got %d", r.TopK)
	}
	return nil
}
