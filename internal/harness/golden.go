package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/imacdo2212/EdTech/internal/canon"
)

// TraceSnapshot is the golden-file form of a scenario run. It carries no
// hashes, so it stays readable and survives envelope format changes that do
// not alter behaviour.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Pass         bool         `json:"pass"`
	Trace        []TraceEvent `json:"trace"`
	Entries      int          `json:"entries"`
}

// Snapshot builds the golden form of result.
func Snapshot(scenarioName string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: scenarioName,
		Pass:         result.Pass,
		Trace:        result.Trace,
		Entries:      result.Ledger.Len(),
	}
}

// MarshalSnapshot renders s as canonical JSON followed by a newline.
func MarshalSnapshot(s TraceSnapshot) ([]byte, error) {
	b, err := canon.Canonicalize(s)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
