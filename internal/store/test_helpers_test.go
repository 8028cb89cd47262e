package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/pk1"
	"github.com/imacdo2212/EdTech/internal/testutil"
)

// createTestStore opens a fresh database under t.TempDir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// history runs a consent-granted learner through n MSK deltas and returns
// every intermediate (state, ledger) pair, starting with the initial one.
func history(t *testing.T, learnerID string, n int) ([]pk1.State, []audit.Ledger) {
	t.Helper()
	k, err := pk1.New()
	require.NoError(t, err)

	clock := testutil.NewDeterministicClock()
	st := pk1.Init(learnerID, testutil.GrantedConsent(clock.Next()))
	l := audit.Genesis()
	states := []pk1.State{st}
	ledgers := []audit.Ledger{l}

	styles := []string{"brief", "detailed"}
	for i := 0; i < n; i++ {
		payload := canon.Object{
			"preferred_style": canon.String(styles[i%len(styles)]),
			"topic_state":     canon.Object{"unit": canon.Number(i)},
		}
		var resp pk1.DeltaResponse
		st, l, resp, err = k.SubmitDelta(st, l, testutil.DeltaEnvelope("MSK", clock.Next(), payload))
		require.NoError(t, err)
		require.True(t, resp.OK)
		states = append(states, st)
		ledgers = append(ledgers, l)
	}
	return states, ledgers
}
