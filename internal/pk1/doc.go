// Package pk1 sequences the PK1 learner-profile store operations.
//
// The kernel is value-in, value-out. Every operation takes the current State
// and audit.Ledger and returns new ones; inputs are never mutated and nothing
// is kept between calls. Callers serialize operations per learner.
//
// SubmitDelta pipeline:
//  1. Envelope schema check (refusal, not audited)
//  2. Consent gate on profile.write (refusal, audited)
//  3. Raw payload size bound
//  4. Adapt payload to field writes and a base weight
//  5. Topic-state fragment size bound
//  6. Confidence = weight + freshness bonus
//  7. Deterministic merge, then audit.updated_at = request timestamp
//  8. Merged record size bound
//  9. Record schema re-check
//  10. Commit
//  11. Audit append
//
// Size and schema refusals after step 2 leave both state and ledger untouched.
//
// GetView gates on profile.read, derives a least-privilege projection for the
// requesting producer and appends an audit entry either way.
package pk1
