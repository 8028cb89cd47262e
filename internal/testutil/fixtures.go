package testutil

import (
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/consent"
)

// GrantedConsent grants both profile scopes at ts.
func GrantedConsent(ts string) consent.Consent {
	return consent.Consent{
		Status:    consent.Granted,
		Scopes:    []string{consent.ScopeProfileRead, consent.ScopeProfileWrite},
		Timestamp: ts,
	}
}

// ConsentWith builds a consent with explicit status and scopes.
func ConsentWith(status consent.Status, ts string, scopes ...string) consent.Consent {
	if scopes == nil {
		scopes = []string{}
	}
	return consent.Consent{Status: status, Scopes: scopes, Timestamp: ts}
}

// DeltaEnvelope builds a raw submit-delta envelope with scope "profile".
func DeltaEnvelope(producerID, ts string, payload canon.Object) canon.Object {
	if payload == nil {
		payload = canon.Object{}
	}
	return canon.Object{
		"producer_id": canon.String(producerID),
		"timestamp":   canon.String(ts),
		"scope":       canon.String("profile"),
		"payload":     payload,
	}
}

// MustObject parses s as a JSON object and panics on failure.
func MustObject(s string) canon.Object {
	v, err := canon.Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	obj, ok := v.(canon.Object)
	if !ok {
		panic("testutil: not a JSON object: " + s)
	}
	return obj
}

// FixedIDGenerator returns the same identifier every time.
//
// If id is empty, Generate() returns "learner-test".
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed identifier generator.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "learner-test"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed identifier.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
