package router

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openflowlabs/fileroute/internal/eval/cel"
)

// LoadRules reads a routing configuration from a YAML file.
//
// Example file:
//
//	rules:
//	  - condition: file.name.endsWith('.csv')
//	    target: csv-ingest
//	fallback: dead-letter
//	expressions:
//	  archive: archive/${region}/${file.name}
//	  stamp: date:file:yyyyMMdd
func LoadRules(path string) (*RouteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var config RouteConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	// Reject bad CEL here so a typo fails at startup instead of being
	// skipped on every event
	evaluator := cel.NewEvaluator()
	for i, rule := range config.Rules {
		if err := evaluator.ValidateCondition(rule.Condition); err != nil {
			return nil, fmt.Errorf("invalid rules file %s: rule %d: %w", path, i, err)
		}
	}

	return &config, nil
}
