package pk1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/testutil"
)

const t0 = "2025-01-01T00:00:00Z"

func newKernel(t *testing.T, opts ...Option) *Kernel {
	t.Helper()
	k, err := New(opts...)
	require.NoError(t, err)
	return k
}

func grantedState() State {
	return Init("L1", testutil.GrantedConsent(t0))
}

func submit(t *testing.T, k *Kernel, st State, l audit.Ledger, raw canon.Value) (State, audit.Ledger, DeltaResponse) {
	t.Helper()
	st, l, resp, err := k.SubmitDelta(st, l, raw)
	require.NoError(t, err)
	return st, l, resp
}

func recordBytes(t *testing.T, st State) string {
	t.Helper()
	doc, err := st.Record.Document()
	require.NoError(t, err)
	b, err := canon.Marshal(doc)
	require.NoError(t, err)
	return string(b)
}

func fragment(n int) canon.Value {
	return canon.String(strings.Repeat("x", n))
}

func mustDocument(t *testing.T, st State) canon.Object {
	t.Helper()
	doc, err := st.Record.Document()
	require.NoError(t, err)
	return doc
}
