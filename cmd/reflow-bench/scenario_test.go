package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenarios(t *testing.T) {
	path := writeScenarioFile(t, `
scenarios:
  - name: wide
    kind: propagate
    width: 100
    depth: 5
    iterations: 250
  - kind: list
    list_size: 30
`)

	scenarios, err := loadScenarios(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	assert.Equal(t, "wide", scenarios[0].Name)
	assert.Equal(t, 100, scenarios[0].Width)
	assert.Equal(t, 250, scenarios[0].Iterations)

	// Defaults fill in whatever the file leaves out.
	assert.Equal(t, "list", scenarios[1].Name)
	assert.Equal(t, 30, scenarios[1].ListSize)
	assert.Equal(t, 100, scenarios[1].Iterations)
}

func TestLoadScenariosRejectsUnknownKind(t *testing.T) {
	path := writeScenarioFile(t, `
scenarios:
  - name: bogus
    kind: teleport
`)
	_, err := loadScenarios(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestLoadScenariosRejectsEmptyFile(t *testing.T) {
	path := writeScenarioFile(t, "scenarios: []\n")
	_, err := loadScenarios(path)
	require.Error(t, err)
}

func TestRunPropagateScenario(t *testing.T) {
	result, err := runScenario(Scenario{
		Name: "tiny", Kind: "propagate", Width: 2, Depth: 2, Iterations: 10,
	})
	require.NoError(t, err)
	calc := result.timings.Calc()
	assert.Equal(t, 10, calc.Count)
}

func TestRunListScenarioCountsPatches(t *testing.T) {
	result, err := runScenario(Scenario{
		Name: "tiny-list", Kind: "list", ListSize: 5, Iterations: 4,
	})
	require.NoError(t, err)

	// Each rotation of an all-keyed list is exactly one Move.
	assert.Equal(t, int64(4), result.patches)
}
