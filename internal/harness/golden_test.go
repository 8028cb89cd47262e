package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name must match its file")

			result, err := Run(scenario)
			require.NoError(t, err)
			require.True(t, result.Pass, "errors: %v", result.Errors)

			require.NoError(t, AssertGolden(t, scenario.Name, result))
		})
	}
}

func TestScenarios_Replay(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, path := range paths {
		scenario, err := LoadScenario(path)
		require.NoError(t, err)

		replay, err := Replay(scenario)
		require.NoError(t, err, path)
		assert.True(t, replay.Pass, path)
	}
}

func TestMarshalSnapshot_HasNoHashes(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/refusals.yaml")
	require.NoError(t, err)
	result, err := Run(scenario)
	require.NoError(t, err)

	data, err := MarshalSnapshot(Snapshot(scenario.Name, result))
	require.NoError(t, err)
	assert.NotContains(t, string(data), result.Ledger.Head)
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
}
