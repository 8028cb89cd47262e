package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/pk1"
)

// Load returns the latest snapshot and full ledger for a learner.
// The ledger is verified before it is returned.
// Returns an error wrapping ErrNotFound if the learner has never been saved.
func (s *Store) Load(ctx context.Context, learnerID string) (pk1.State, audit.Ledger, error) {
	var recordJSON, provJSON, head string
	var entries int
	err := s.db.QueryRowContext(ctx, `
		SELECT record, provenance, head, entries
		FROM learners
		WHERE learner_id = ?
	`, learnerID).Scan(&recordJSON, &provJSON, &head, &entries)
	if errors.Is(err, sql.ErrNoRows) {
		return pk1.State{}, audit.Ledger{}, fmt.Errorf("load %s: %w", learnerID, ErrNotFound)
	}
	if err != nil {
		return pk1.State{}, audit.Ledger{}, fmt.Errorf("load %s: %w", learnerID, err)
	}

	record, err := unmarshalRecord(recordJSON)
	if err != nil {
		return pk1.State{}, audit.Ledger{}, fmt.Errorf("load %s: %w", learnerID, err)
	}
	prov, err := unmarshalProvenance(provJSON)
	if err != nil {
		return pk1.State{}, audit.Ledger{}, fmt.Errorf("load %s: %w", learnerID, err)
	}

	l, err := readLedger(ctx, s.db, learnerID)
	if err != nil {
		return pk1.State{}, audit.Ledger{}, fmt.Errorf("load %s: %w", learnerID, err)
	}
	if l.Len() != entries || l.Head != head {
		return pk1.State{}, audit.Ledger{}, fmt.Errorf("load %s: %w", learnerID, &audit.ChainError{
			Index:  l.Len(),
			Reason: fmt.Sprintf("snapshot expects %d entries ending at %s", entries, head),
		})
	}
	if err := audit.Verify(l); err != nil {
		return pk1.State{}, audit.Ledger{}, fmt.Errorf("load %s: %w", learnerID, err)
	}

	return pk1.State{Record: record, Provenance: prov}, l, nil
}

// LearnerIDs returns every stored learner id in byte order.
// Returns an empty slice (not nil) for an empty store.
func (s *Store) LearnerIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT learner_id FROM learners ORDER BY learner_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query learners: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learners: %w", err)
	}
	return ids, nil
}

// readLedger rebuilds a learner's ledger from audit_entries in seq order.
// An unknown learner yields the genesis ledger.
func readLedger(ctx context.Context, q querier, learnerID string) (audit.Ledger, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT seq, envelope
		FROM audit_entries
		WHERE learner_id = ?
		ORDER BY seq ASC
	`, learnerID)
	if err != nil {
		return audit.Ledger{}, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	l := audit.Genesis()
	for rows.Next() {
		var seq int
		var text string
		if err := rows.Scan(&seq, &text); err != nil {
			return audit.Ledger{}, fmt.Errorf("scan audit entry: %w", err)
		}
		if seq != l.Len() {
			return audit.Ledger{}, &audit.ChainError{Index: l.Len(), Reason: fmt.Sprintf("missing entry (next stored seq is %d)", seq)}
		}
		e, err := unmarshalEnvelope(text)
		if err != nil {
			return audit.Ledger{}, fmt.Errorf("audit entry %d: %w", seq, err)
		}
		l.Entries = append(l.Entries, e)
		l.Head = e.Hash
	}
	if err := rows.Err(); err != nil {
		return audit.Ledger{}, fmt.Errorf("iterate audit entries: %w", err)
	}
	return l, nil
}
