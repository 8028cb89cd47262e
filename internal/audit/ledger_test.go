package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imacdo2212/EdTech/internal/canon"
)

func envelope(exec string) Envelope {
	return Envelope{
		ExecID:      exec,
		Route:       RoutePK1,
		Budgets:     Budgets{Consumed: Consumption{TimeMS: 2, MemMB: 24, Depth: 1}},
		Termination: TerminationBounded,
		Metrics:     FullMetrics(),
	}
}

func build(t *testing.T, n int) Ledger {
	t.Helper()
	l := Genesis()
	for i := 0; i < n; i++ {
		var err error
		l, err = Append(l, envelope(strings.Repeat("a", i+1)))
		require.NoError(t, err)
	}
	return l
}

func TestGenesis(t *testing.T) {
	l := Genesis()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, strings.Repeat("0", 64), l.Head)
	assert.Len(t, GenesisHash, canon.DigestLen)
	assert.NoError(t, Verify(l))
}

func TestAppendLinks(t *testing.T) {
	l := build(t, 3)
	require.Equal(t, 3, l.Len())

	assert.Equal(t, GenesisHash, l.Entries[0].PrevHash)
	for i := 1; i < 3; i++ {
		assert.Equal(t, l.Entries[i-1].Hash, l.Entries[i].PrevHash)
	}
	assert.Equal(t, l.Entries[2].Hash, l.Head)
	assert.Len(t, l.Head, canon.DigestLen)
	assert.Equal(t, []string{}, l.Entries[0].Provenance.Sources)
	assert.NoError(t, Verify(l))
}

func TestAppendDoesNotAliasInput(t *testing.T) {
	base := build(t, 1)

	a, err := Append(base, envelope("a"))
	require.NoError(t, err)
	b, err := Append(base, envelope("b"))
	require.NoError(t, err)

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "a", a.Entries[1].ExecID)
	assert.Equal(t, "b", b.Entries[1].ExecID)
	assert.NotEqual(t, a.Head, b.Head)
}

func TestAppendOverwritesLinkFields(t *testing.T) {
	e := envelope("x")
	e.PrevHash = "bogus"
	e.Hash = "bogus"

	l, err := Append(Genesis(), e)
	require.NoError(t, err)
	assert.Equal(t, GenesisHash, l.Entries[0].PrevHash)
	assert.NotEqual(t, "bogus", l.Entries[0].Hash)
}

func TestHashIsDeterministic(t *testing.T) {
	a := build(t, 4)
	b := build(t, 4)
	assert.Equal(t, a.Head, b.Head)
}

func TestComputeHashIgnoresHashField(t *testing.T) {
	e := envelope("x")
	h1, err := e.ComputeHash()
	require.NoError(t, err)

	e.Hash = "anything"
	h2, err := e.ComputeHash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestEventFieldsOmittedWhenEmpty(t *testing.T) {
	b, err := canon.Canonicalize(envelope("x"))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "event")

	e := envelope("x")
	e.Event = "pk1_delta"
	e.EventData = canon.Object{"status": canon.String("applied")}
	b, err = canon.Canonicalize(e)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"event":"pk1_delta","event_data":{"status":"applied"}`)
}

func TestVerifyDetectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(l *Ledger)
		index  int
	}{
		{"content changed", func(l *Ledger) { l.Entries[1].Termination = "REFUSAL(PK-REF-CONSENT)" }, 1},
		{"hash rewritten", func(l *Ledger) { l.Entries[2].Hash = strings.Repeat("f", 64) }, 2},
		{"entry removed", func(l *Ledger) { l.Entries = append(l.Entries[:1], l.Entries[2:]...) }, 1},
		{"entries swapped", func(l *Ledger) { l.Entries[0], l.Entries[1] = l.Entries[1], l.Entries[0] }, 0},
		{"head moved", func(l *Ledger) { l.Head = l.Entries[1].Hash }, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := build(t, 3)
			tt.tamper(&l)

			err := Verify(l)
			require.Error(t, err)
			assert.True(t, IsChainError(err))

			var ce *ChainError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.index, ce.Index)
		})
	}
}

func TestVerifyExtends(t *testing.T) {
	short := build(t, 2)
	long := build(t, 3)
	assert.NoError(t, VerifyExtends(short, long))
	assert.NoError(t, VerifyExtends(long, long))

	err := VerifyExtends(long, short)
	require.Error(t, err)
	assert.True(t, IsChainError(err))

	forked, err := Append(short, envelope("fork"))
	require.NoError(t, err)
	forked, err = Append(forked, envelope("fork2"))
	require.NoError(t, err)
	err = VerifyExtends(long, forked)
	require.Error(t, err)
	var ce *ChainError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Index)
}

func TestChainErrorMessage(t *testing.T) {
	err := &ChainError{Index: 4, Reason: "head mismatch"}
	assert.Equal(t, "audit: chain broken at entry 4: head mismatch", err.Error())
}
