package harness

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/pk1"
)

func boolPtr(b bool) *bool { return &b }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Steps: []Step{
			{View: &ViewStep{ProducerID: "SSK"}, Expect: &Expect{OK: boolPtr(true)}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, OpView, result.Trace[0].Op)
	assert.Equal(t, pk1.EventView, result.Trace[0].Audited)
	assert.Equal(t, "learner-test", result.State.Record.LearnerID)
	assert.Equal(t, "2025-01-01T00:01:00Z", result.State.Record.Audit.CreatedAt)
	assert.NoError(t, audit.Verify(result.Ledger))
}

func TestRun_FillsTimestampsFromClock(t *testing.T) {
	scenario := &Scenario{
		Name:        "clock",
		Description: "timestamps come from the deterministic clock",
		Steps: []Step{
			{Delta: &DeltaStep{ProducerID: "MSK", Payload: map[string]any{"preferred_style": "brief"}}},
			{Delta: &DeltaStep{ProducerID: "MSK", Payload: map[string]any{"preferred_style": "detailed"}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)

	assert.Equal(t, "2025-01-01T00:03:00Z", result.State.Record.Audit.UpdatedAt)
	assert.Equal(t, "2025-01-01T00:03:00Z", result.State.Provenance["preferences.style"].Timestamp)
	assert.Equal(t, "detailed", result.State.Record.Preferences.Style)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expectations that do not hold",
		Steps: []Step{
			{
				Delta: &DeltaStep{ProducerID: "MSK", Payload: map[string]any{"preferred_style": "brief"}},
				Expect: &Expect{
					OK:      boolPtr(false),
					Status:  "skipped",
					Profile: map[string]any{"preferences.style": "detailed"},
				},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"step 0 (delta): ok: expected false, got true",
		"step 0 (delta): status: expected skipped, got applied",
		`step 0 (delta): profile.preferences.style: expected "detailed", got "brief"`,
	}, result.Errors)
}

func TestRun_ScopedConsent(t *testing.T) {
	scenario := &Scenario{
		Name:        "write_only",
		Description: "write scope without read scope",
		Consent:     &ConsentStep{Status: "granted", Scopes: []string{"profile.write"}},
		Steps: []Step{
			{
				Delta:  &DeltaStep{ProducerID: "MSK", Payload: map[string]any{"preferred_style": "brief"}},
				Expect: &Expect{OK: boolPtr(true)},
			},
			{
				View:   &ViewStep{ProducerID: "MSK"},
				Expect: &Expect{OK: boolPtr(false), Termination: "REFUSAL(PK-REF-SCOPE)"},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_InvalidConsentIsAnError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_consent",
		Description: "status outside the enum",
		Steps:       []Step{{Consent: &ConsentStep{Status: "maybe"}}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0")
}

func TestRun_KernelOptions(t *testing.T) {
	limits := pk1.DefaultLimits()
	limits.MaxFragmentBytes = 16
	scenario := &Scenario{
		Name:        "small_fragments",
		Description: "kernel limits pass through",
		Steps: []Step{
			{
				Delta: &DeltaStep{ProducerID: "SSK", Payload: map[string]any{
					"topic_state": map[string]any{"notes": "well over sixteen bytes"},
				}},
				Expect: &Expect{OK: boolPtr(false), Cause: "topic_states.SSK too large."},
			},
		},
	}

	result, err := Run(scenario, WithKernelOptions(pk1.WithLimits(limits)))
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, 0, result.Ledger.Len())
}

func TestRun_LogsSteps(t *testing.T) {
	var buf bytes.Buffer
	scenario := &Scenario{
		Name:        "logged",
		Description: "progress is logged at debug",
		Steps:       []Step{{View: &ViewStep{ProducerID: "MSK"}}},
	}

	_, err := Run(scenario, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"step completed"`)
}

func TestReplay(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/weighted_overwrite.yaml")
	require.NoError(t, err)

	first, err := Replay(scenario)
	require.NoError(t, err)
	second, err := Replay(scenario)
	require.NoError(t, err)

	assert.True(t, first.Pass)
	assert.Equal(t, 3, first.Entries)
	assert.Len(t, first.Head, 64)
	assert.Len(t, first.RecordDigest, 64)
	assert.Equal(t, first, second)
}

func TestDivergenceError(t *testing.T) {
	err := &DivergenceError{Scenario: "s", Field: "head", First: "a", Second: "b"}
	assert.Equal(t, "scenario s is not deterministic: head a != b", err.Error())
}
