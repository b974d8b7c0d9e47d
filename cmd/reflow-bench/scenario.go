package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	rferrors "github.com/reflow-ui/reflow/internal/errors"
)

// Scenario is one benchmark described in a YAML file. Kind selects the
// workload shape:
//
//	propagate  a Width x Depth grid of memo chains, each topped by an
//	           effect; every iteration writes the shared source signal
//	           and flushes.
//	list       a keyed list component mounted on a Root; every iteration
//	           rotates the list and flushes, driving the differ's LIS
//	           path.
type Scenario struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	Width      int    `yaml:"width"`
	Depth      int    `yaml:"depth"`
	ListSize   int    `yaml:"list_size"`
	Iterations int    `yaml:"iterations"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// defaultScenarios run when no file is given.
var defaultScenarios = []Scenario{
	{Name: "propagate-1x1", Kind: "propagate", Width: 1, Depth: 1, Iterations: 1000},
	{Name: "propagate-10x10", Kind: "propagate", Width: 10, Depth: 10, Iterations: 500},
	{Name: "propagate-100x10", Kind: "propagate", Width: 100, Depth: 10, Iterations: 100},
	{Name: "list-50", Kind: "list", ListSize: 50, Iterations: 500},
	{Name: "list-500", Kind: "list", ListSize: 500, Iterations: 100},
}

// loadScenarios reads and validates a scenario file.
func loadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, rferrors.FromError(err, "E080").WithDetail("not valid YAML: " + path)
	}
	if len(f.Scenarios) == 0 {
		return nil, rferrors.New("E080").WithDetail("file defines no scenarios: " + path).
			WithSuggestion("add a top-level 'scenarios:' list")
	}

	for i := range f.Scenarios {
		if err := normalizeScenario(&f.Scenarios[i]); err != nil {
			return nil, rferrors.FromError(err, "E080").
				WithDetail(fmt.Sprintf("scenario %d (%s)", i, f.Scenarios[i].Name)).
				WithSuggestion("kind must be one of: propagate, list")
		}
	}
	return f.Scenarios, nil
}

func normalizeScenario(s *Scenario) error {
	switch s.Kind {
	case "propagate":
		if s.Width <= 0 {
			s.Width = 1
		}
		if s.Depth <= 0 {
			s.Depth = 1
		}
	case "list":
		if s.ListSize <= 0 {
			s.ListSize = 50
		}
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	if s.Iterations <= 0 {
		s.Iterations = 100
	}
	if s.Name == "" {
		s.Name = s.Kind
	}
	return nil
}
