// Package consent holds the learner's consent state and the scope gate that
// guards every PK1 operation.
package consent

import "slices"

// Status is the consent status recorded on a learner.
type Status string

const (
	Granted Status = "granted"
	Revoked Status = "revoked"
	Limited Status = "limited"
)

// Scopes checked by PK1 operations.
const (
	ScopeProfileRead  = "profile.read"
	ScopeProfileWrite = "profile.write"
)

// Consent is the consent snapshot stored on the canonical record.
type Consent struct {
	Status    Status   `json:"status"`
	Scopes    []string `json:"scopes"`
	Timestamp string   `json:"timestamp"`
}

// CheckScope reports whether c authorizes scope.
// Only granted consent authorizes anything; scope matching is exact.
func CheckScope(c Consent, scope string) bool {
	return c.Status == Granted && slices.Contains(c.Scopes, scope)
}

// Normalized returns a copy of c with its own scopes slice, never nil.
func (c Consent) Normalized() Consent {
	out := c
	out.Scopes = make([]string, len(c.Scopes))
	copy(out.Scopes, c.Scopes)
	return out
}

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case Granted, Revoked, Limited:
		return true
	}
	return false
}
