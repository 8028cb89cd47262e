package store

import (
	"context"
	"fmt"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/pk1"
)

// Save stores st as the learner's latest snapshot and appends the entries of
// l that are not yet stored.
//
// l must verify on its own and must extend the stored ledger; otherwise Save
// returns an error wrapping *audit.ChainError and writes nothing.
func (s *Store) Save(ctx context.Context, st pk1.State, l audit.Ledger) error {
	learnerID := st.Record.LearnerID
	if learnerID == "" {
		return fmt.Errorf("save: learner_id is required")
	}
	if err := audit.Verify(l); err != nil {
		return fmt.Errorf("save %s: %w", learnerID, err)
	}

	recordJSON, err := marshalRecord(st.Record)
	if err != nil {
		return fmt.Errorf("save %s: %w", learnerID, err)
	}
	provJSON, err := marshalProvenance(st.Provenance)
	if err != nil {
		return fmt.Errorf("save %s: %w", learnerID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save %s: begin: %w", learnerID, err)
	}
	defer tx.Rollback()

	stored, err := readLedger(ctx, tx, learnerID)
	if err != nil {
		return fmt.Errorf("save %s: %w", learnerID, err)
	}
	if err := audit.VerifyExtends(stored, l); err != nil {
		return fmt.Errorf("save %s: %w", learnerID, err)
	}

	for seq := stored.Len(); seq < l.Len(); seq++ {
		e := l.Entries[seq]
		envJSON, err := marshalEnvelope(e)
		if err != nil {
			return fmt.Errorf("save %s: entry %d: %w", learnerID, seq, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO audit_entries
			(learner_id, seq, exec_id, event, termination, prev_hash, hash, envelope)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			learnerID,
			seq,
			e.ExecID,
			e.Event,
			e.Termination,
			e.PrevHash,
			e.Hash,
			envJSON,
		)
		if err != nil {
			return fmt.Errorf("save %s: insert entry %d: %w", learnerID, seq, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO learners (learner_id, record, provenance, head, entries)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(learner_id) DO UPDATE SET
			record = excluded.record,
			provenance = excluded.provenance,
			head = excluded.head,
			entries = excluded.entries
	`, learnerID, recordJSON, provJSON, l.Head, l.Len())
	if err != nil {
		return fmt.Errorf("save %s: upsert learner: %w", learnerID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save %s: commit: %w", learnerID, err)
	}
	return nil
}
