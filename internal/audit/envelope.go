// Package audit implements the append-only, hash-linked audit ledger.
//
// Every envelope stores the hash of its predecessor in PrevHash and its own
// hash in Hash, computed as the canonical fingerprint of the envelope with
// Hash set to "". Changing any byte of any entry breaks every later link.
package audit

import "github.com/imacdo2212/EdTech/internal/canon"

// Route names the kernel that produced an envelope.
const RoutePK1 = "pk1"

// Termination values.
const (
	TerminationBounded = "BOUNDED_OUTPUT"
)

// Budget is a resource budget snapshot.
type Budget struct {
	TokensOutputMax        int `json:"tokens_output_max"`
	TimeMS                 int `json:"time_ms"`
	MemMB                  int `json:"mem_mb"`
	DepthMax               int `json:"depth_max"`
	ClarifyingQuestionsMax int `json:"clarifying_questions_max"`
}

// Consumption records resources used by one operation.
type Consumption struct {
	TokensOut int `json:"tokens_out"`
	TimeMS    int `json:"time_ms"`
	MemMB     int `json:"mem_mb"`
	Depth     int `json:"depth"`
}

// Budgets groups the requested, granted and consumed snapshots.
type Budgets struct {
	Requested Budget      `json:"requested"`
	Granted   Budget      `json:"granted"`
	Consumed  Consumption `json:"consumed"`
}

// Metrics are the evidence metrics attached to every envelope.
type Metrics struct {
	SCS float64 `json:"SCS"`
	SCA float64 `json:"SCA"`
	SVR float64 `json:"SVR"`
	DIS float64 `json:"DIS"`
	CCI float64 `json:"CCI"`
}

// FullMetrics scores every metric at 1.
func FullMetrics() Metrics {
	return Metrics{SCS: 1, SCA: 1, SVR: 1, DIS: 1, CCI: 1}
}

// Provenance lists the producers an envelope is derived from.
type Provenance struct {
	Sources []string `json:"sources"`
}

// Envelope is one immutable audit entry.
type Envelope struct {
	ExecID      string       `json:"exec_id"`
	Route       string       `json:"route"`
	Budgets     Budgets      `json:"budgets"`
	Termination string       `json:"termination"`
	Metrics     Metrics      `json:"metrics"`
	Provenance  Provenance   `json:"provenance"`
	Event       string       `json:"event,omitempty"`
	EventData   canon.Object `json:"event_data,omitempty"`
	PrevHash    string       `json:"prev_hash"`
	Hash        string       `json:"hash"`
}

// ComputeHash returns the fingerprint of e with its Hash field cleared.
func (e Envelope) ComputeHash() (string, error) {
	e.Hash = ""
	return canon.FingerprintOf(e)
}
