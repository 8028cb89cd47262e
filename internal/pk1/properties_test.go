package pk1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/testutil"
)

func TestIdempotentResubmission(t *testing.T) {
	k := newKernel(t)
	raw := testutil.DeltaEnvelope("ESK", t0, testutil.MustObject(`{"languages":["English"],"topic_state":{"level":"A2"}}`))

	st, l, first := submit(t, k, grantedState(), audit.Genesis(), raw)
	require.Equal(t, StatusApplied, first.Status)

	again, l2, second := submit(t, k, st, l, raw)
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Len(t, second.Reasons, 2)
	assert.Equal(t, recordBytes(t, st), recordBytes(t, again))
	assert.Equal(t, st.Provenance, again.Provenance)
	assert.Equal(t, 2, l2.Len())
}

func TestSetUnionAcrossDeltas(t *testing.T) {
	k := newKernel(t)
	clock := testutil.NewDeterministicClock()
	st, l := grantedState(), audit.Genesis()

	st, l, _ = submit(t, k, st, l, testutil.DeltaEnvelope("ESK", clock.Next(), testutil.MustObject(`{"languages":["English"]}`)))
	st, _, resp := submit(t, k, st, l, testutil.DeltaEnvelope("ESK", clock.Next(), testutil.MustObject(`{"languages":["english"," French "]}`)))

	require.Equal(t, StatusApplied, resp.Status)
	assert.Equal(t, []string{"english", "french"}, st.Record.Capabilities.Languages)
}

func TestConfidenceNeverDecreases(t *testing.T) {
	k := newKernel(t)
	clock := testutil.NewDeterministicClock()
	st, l := grantedState(), audit.Genesis()

	ops := []struct {
		producer string
		payload  string
	}{
		{"ONB", `{"style":"detailed","tone":"formal"}`},
		{"MSK", `{"preferred_style":"brief"}`},
		{"ONB", `{"style":"detailed"}`},
		{"MSK", `{"preferred_style":"detailed"}`},
		{"ONB", `{"tone":"playful"}`},
		{"MSK", `{"preferred_style":"brief","topic_state":"x"}`},
	}

	high := map[string]int{}
	for _, op := range ops {
		var resp DeltaResponse
		st, l, resp = submit(t, k, st, l, testutil.DeltaEnvelope(op.producer, clock.Next(), testutil.MustObject(op.payload)))
		require.True(t, resp.OK)

		for path, entry := range st.Provenance {
			assert.GreaterOrEqual(t, entry.Confidence, high[path], path)
			high[path] = entry.Confidence
		}
	}

	assert.Equal(t, "brief", st.Record.Preferences.Style)
	assert.Equal(t, "playful", st.Record.Preferences.Tone)
	assert.Equal(t, len(ops), l.Len())
}

func TestReplayIsDeterministic(t *testing.T) {
	run := func() (string, string) {
		k := newKernel(t)
		clock := testutil.NewDeterministicClock()
		st, l := grantedState(), audit.Genesis()

		steps := []canon.Object{
			testutil.DeltaEnvelope("MSK", clock.Next(), testutil.MustObject(`{"preferred_style":"brief","topic_state":{"b":1,"a":2}}`)),
			testutil.DeltaEnvelope("ESK", clock.Next(), testutil.MustObject(`{"languages":["Welsh","English"]}`)),
			testutil.DeltaEnvelope("ONB", clock.Next(), testutil.MustObject(`{"style":"detailed","sports":["Rugby"]}`)),
		}
		for _, raw := range steps {
			st, l, _ = submit(t, k, st, l, raw)
		}
		var err error
		l, _, err = k.GetView(st, l, "ESK")
		require.NoError(t, err)

		require.NoError(t, audit.Verify(l))
		return recordBytes(t, st), l.Head
	}

	rec1, head1 := run()
	rec2, head2 := run()
	assert.Equal(t, rec1, rec2)
	assert.Equal(t, head1, head2)
	assert.Len(t, head1, canon.DigestLen)
}
