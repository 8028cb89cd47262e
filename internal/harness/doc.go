// Package harness runs PK1 scenarios: scripted sequences of consent changes,
// delta submissions and view requests against a fresh learner.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: weighted_overwrite
//	description: "A higher-weight producer overwrites a lower one"
//	learner_id: L1                 # optional, defaults to learner-test
//	consent:                       # optional, defaults to granted read+write
//	  status: granted
//	  scopes: [profile.read, profile.write]
//	steps:
//	  - delta:
//	      producer_id: ONB
//	      payload: { style: brief }
//	    expect:
//	      ok: true
//	      status: applied
//	  - view:
//	      producer_id: MSK
//	    expect:
//	      profile: { preferences.style: brief }
//	  - consent:
//	      status: revoked
//	assertions:
//	  - type: record
//	    path: preferences.style
//	    equals: brief
//	  - type: ledger_count
//	    count: 3
//
// A delta step either names its envelope fields (timestamp and scope are
// filled in when omitted) or gives a raw envelope that is submitted verbatim.
//
// # Assertion Types
//
//   - record: the value at a dotted path of the final record equals a value
//   - record_absent: the final record has nothing at a dotted path
//   - provenance: the confidence recorded for a path
//   - ledger_count: the number of audit entries
//   - ledger_events: the event names of the audit entries, in order
//
// # Deterministic Testing
//
// Every timestamp the harness fills in comes from testutil.DeterministicClock
// and the learner id from a fixed generator, so the same scenario always
// yields the same ledger head. Replay runs a scenario twice and fails if the
// head or the final record bytes differ. Traces compare against golden files
// under testdata/golden.
package harness
