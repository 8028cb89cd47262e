package pk1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/consent"
	"github.com/imacdo2212/EdTech/internal/schema"
	"github.com/imacdo2212/EdTech/internal/testutil"
)

func TestSetConsent(t *testing.T) {
	k := newKernel(t)
	st := grantedState()
	ts := "2025-02-01T00:00:00Z"

	next, l, err := k.SetConsent(st, audit.Genesis(), testutil.ConsentWith(consent.Revoked, ts))
	require.NoError(t, err)

	assert.Equal(t, consent.Revoked, next.Record.Consent.Status)
	assert.Equal(t, []string{}, next.Record.Consent.Scopes)
	assert.Equal(t, ts, next.Record.Audit.UpdatedAt)
	assert.Equal(t, t0, next.Record.Audit.CreatedAt)

	assert.Equal(t, consent.Granted, st.Record.Consent.Status)
	assert.Equal(t, t0, st.Record.Audit.UpdatedAt)

	require.Equal(t, 1, l.Len())
	e := l.Entries[0]
	assert.Equal(t, EventConsent, e.Event)
	assert.Equal(t, canon.String("revoked"), e.EventData["status"])
	assert.Equal(t, canon.Array{}, e.EventData["scopes"])
	assert.NoError(t, audit.Verify(l))
}

func TestSetConsentThenWrite(t *testing.T) {
	k := newKernel(t)
	st := Init("L1", testutil.ConsentWith(consent.Revoked, t0))
	raw := testutil.DeltaEnvelope("MSK", t0, testutil.MustObject(`{"preferred_style":"brief"}`))

	_, l, resp := submit(t, k, st, audit.Genesis(), raw)
	require.NotNil(t, resp.Refusal)

	st, l, err := k.SetConsent(st, l, testutil.GrantedConsent("2025-01-01T00:05:00Z"))
	require.NoError(t, err)

	st, l, resp = submit(t, k, st, l, raw)
	require.True(t, resp.OK)
	assert.Equal(t, "brief", st.Record.Preferences.Style)
	assert.Equal(t, 3, l.Len())
	assert.NoError(t, audit.Verify(l))
}

func TestSetConsentRejectsInvalidStatus(t *testing.T) {
	k := newKernel(t)
	st := grantedState()
	l := audit.Genesis()

	next, nextLedger, err := k.SetConsent(st, l, consent.Consent{Status: "pending", Timestamp: t0})
	require.Error(t, err)
	assert.True(t, schema.IsValidationError(err))
	assert.Equal(t, consent.Granted, next.Record.Consent.Status)
	assert.Equal(t, 0, nextLedger.Len())
}

func TestCheckRecord(t *testing.T) {
	k := newKernel(t)
	assert.NoError(t, k.CheckRecord(grantedState().Record))

	long := Init(strings.Repeat("x", 129), testutil.GrantedConsent(t0))
	err := k.CheckRecord(long.Record)
	require.Error(t, err)
	var ve *schema.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "learner_id", ve.Path)
}

func TestCheckRecordUsesKernelSchemas(t *testing.T) {
	node, err := schema.CompileSource("short.cue", []byte(`
record: {
	type: "object"
	properties: learner_id: {type: "string", maxLength: 2}
}
`), "record")
	require.NoError(t, err)
	set := &schema.Set{Delta: schema.MustBuiltin().Delta, Record: node.(*schema.Object)}

	st := Init("L12", testutil.GrantedConsent(t0))
	assert.NoError(t, newKernel(t).CheckRecord(st.Record))

	err = newKernel(t, WithSchemas(set)).CheckRecord(st.Record)
	require.Error(t, err)
	assert.True(t, schema.IsValidationError(err))
}
