// Package store provides SQLite-backed snapshots of learner state for the
// pk1 CLI. The kernel itself never touches storage; callers load a state and
// ledger, run one operation, and save the result.
//
// Two tables:
//   - learners: latest record, provenance and ledger head per learner
//   - audit_entries: every envelope, append-only (UPDATE and DELETE abort)
//
// Save refuses a ledger that does not extend what is already stored, so a
// stale snapshot can never rewrite history. Records, provenance and
// envelopes are stored in canonical JSON, the same bytes that are hashed.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
