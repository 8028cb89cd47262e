package pk1

import (
	"fmt"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/consent"
	"github.com/imacdo2212/EdTech/internal/profile"
	"github.com/imacdo2212/EdTech/internal/schema"
)

// SetConsent replaces the learner's consent and moves audit.updated_at to the
// consent timestamp. The change is recorded as a consent_set audit entry.
// A consent the record schema rejects is returned as an error wrapping a
// schema.ValidationError, with state and ledger unchanged.
func (k *Kernel) SetConsent(st State, l audit.Ledger, c consent.Consent) (State, audit.Ledger, error) {
	next := st.Clone()
	next.Record.Consent = c.Normalized()
	next.Record.Audit.UpdatedAt = c.Timestamp

	if err := k.CheckRecord(next.Record); err != nil {
		return st, l, fmt.Errorf("pk1: set consent: %w", err)
	}

	consentValue, err := canon.Encode(next.Record.Consent)
	if err != nil {
		return st, l, fmt.Errorf("pk1: set consent: %w", err)
	}
	execID, err := canon.Fingerprint(canon.Object{
		"route":   canon.String(audit.RoutePK1),
		"op":      canon.String("consent"),
		"consent": consentValue,
	})
	if err != nil {
		return st, l, fmt.Errorf("pk1: exec id: %w", err)
	}

	env := audit.Envelope{
		ExecID:      execID,
		Route:       audit.RoutePK1,
		Budgets:     audit.Budgets{Consumed: audit.Consumption{TimeMS: 1, MemMB: 16, Depth: 1}},
		Termination: audit.TerminationBounded,
		Metrics:     audit.FullMetrics(),
		Provenance:  audit.Provenance{Sources: []string{}},
		Event:       EventConsent,
		EventData: canon.Object{
			"status": canon.String(string(c.Status)),
			"scopes": canon.Strings(next.Record.Consent.Scopes),
		},
	}
	nextLedger, err := audit.Append(l, env)
	if err != nil {
		return st, l, err
	}

	k.logger.Debug().
		Str("learner_id", next.Record.LearnerID).
		Str("status", string(c.Status)).
		Strs("scopes", next.Record.Consent.Scopes).
		Msg("consent set")
	return next, nextLedger, nil
}

// CheckRecord validates r against the kernel's record schema. A violation is
// returned as a *schema.ValidationError.
func (k *Kernel) CheckRecord(r profile.Record) error {
	doc, err := r.Document()
	if err != nil {
		return err
	}
	if ve := schema.Validate(k.schemas.Record, doc); ve != nil {
		return ve
	}
	return nil
}
