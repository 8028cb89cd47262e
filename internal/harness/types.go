package harness

import (
	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/pk1"
)

// Trace operation names.
const (
	OpConsent = "consent"
	OpDelta   = "delta"
	OpView    = "view"
)

// TraceEvent records the observable outcome of one step.
type TraceEvent struct {
	Seq         int          `json:"seq"`
	Op          string       `json:"op"`
	ProducerID  string       `json:"producer_id,omitempty"`
	OK          bool         `json:"ok"`
	Status      string       `json:"status,omitempty"`
	Reasons     []string     `json:"reasons,omitempty"`
	Termination string       `json:"termination,omitempty"`
	Cause       string       `json:"cause,omitempty"`
	View        canon.Object `json:"view,omitempty"`

	// Audited is the label of the entry the step appended ("" when the
	// ledger did not grow).
	Audited string `json:"audited,omitempty"`
	Entries int    `json:"entries"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true iff every expect clause and assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Final state and ledger.
	State  pk1.State    `json:"-"`
	Ledger audit.Ledger `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// EntryLabel names an audit entry: its event, or its termination for
// refusals that carry no event.
func EntryLabel(e audit.Envelope) string {
	if e.Event != "" {
		return e.Event
	}
	return e.Termination
}
