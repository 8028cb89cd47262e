package consent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckScope(t *testing.T) {
	both := []string{ScopeProfileRead, ScopeProfileWrite}

	tests := []struct {
		name    string
		consent Consent
		scope   string
		want    bool
	}{
		{"granted with scope", Consent{Status: Granted, Scopes: both}, ScopeProfileWrite, true},
		{"granted without scope", Consent{Status: Granted, Scopes: []string{ScopeProfileWrite}}, ScopeProfileRead, false},
		{"revoked with scope", Consent{Status: Revoked, Scopes: both}, ScopeProfileRead, false},
		{"limited with scope", Consent{Status: Limited, Scopes: both}, ScopeProfileRead, false},
		{"nil scopes", Consent{Status: Granted}, ScopeProfileRead, false},
		{"prefix is not a match", Consent{Status: Granted, Scopes: []string{"profile"}}, ScopeProfileRead, false},
		{"case sensitive", Consent{Status: Granted, Scopes: []string{"Profile.Read"}}, ScopeProfileRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckScope(tt.consent, tt.scope))
		})
	}
}

func TestNormalized(t *testing.T) {
	c := Consent{Status: Revoked, Timestamp: "t"}
	n := c.Normalized()
	assert.NotNil(t, n.Scopes)
	assert.Empty(t, n.Scopes)

	orig := Consent{Status: Granted, Scopes: []string{ScopeProfileRead}}
	cp := orig.Normalized()
	cp.Scopes[0] = "changed"
	assert.Equal(t, ScopeProfileRead, orig.Scopes[0])
}

func TestStatusValid(t *testing.T) {
	assert.True(t, Granted.Valid())
	assert.True(t, Revoked.Valid())
	assert.True(t, Limited.Valid())
	assert.False(t, Status("pending").Valid())
}
