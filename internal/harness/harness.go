package harness

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/consent"
	"github.com/imacdo2212/EdTech/internal/pk1"
	"github.com/imacdo2212/EdTech/internal/testutil"
)

// Harness executes the steps of one scenario.
type Harness struct {
	kernel *pk1.Kernel
	clock  *testutil.DeterministicClock
	logger zerolog.Logger

	state  pk1.State
	ledger audit.Ledger
}

// Option configures Run.
type Option func(*options)

type options struct {
	kernelOpts []pk1.Option
	logger     zerolog.Logger
}

// WithKernelOptions passes options through to pk1.New.
func WithKernelOptions(opts ...pk1.Option) Option {
	return func(o *options) {
		o.kernelOpts = append(o.kernelOpts, opts...)
	}
}

// WithLogger sets the logger for step progress. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Run executes a scenario against a fresh learner and returns the result.
// The error is reserved for scenarios that cannot be executed at all;
// failed expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	k, err := pk1.New(o.kernelOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kernel: %w", err)
	}

	h := &Harness{
		kernel: k,
		clock:  testutil.NewDeterministicClock(),
		logger: o.logger,
		ledger: audit.Genesis(),
	}

	learnerID := scenario.LearnerID
	if learnerID == "" {
		learnerID = testutil.NewFixedIDGenerator("").Generate()
	}
	initial := h.consentFrom(scenario.Consent)
	h.state = pk1.Init(learnerID, initial)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := audit.Verify(h.ledger); err != nil {
		result.AddError(fmt.Sprintf("ledger does not verify: %v", err))
	}
	for _, msg := range EvaluateAssertions(h.state, h.ledger, scenario.Assertions) {
		result.AddError(msg)
	}

	result.State = h.state
	result.Ledger = h.ledger
	return result, nil
}

// consentFrom fills in defaults for a scenario consent block.
func (h *Harness) consentFrom(c *ConsentStep) consent.Consent {
	if c == nil {
		return testutil.GrantedConsent(h.clock.Next())
	}
	ts := c.Timestamp
	if ts == "" {
		ts = h.clock.Next()
	}
	return testutil.ConsentWith(consent.Status(c.Status), ts, c.Scopes...)
}

func (h *Harness) execute(i int, step Step, result *Result) error {
	before := h.ledger.Len()
	var ev TraceEvent

	switch {
	case step.Consent != nil:
		st, l, err := h.kernel.SetConsent(h.state, h.ledger, h.consentFrom(step.Consent))
		if err != nil {
			return err
		}
		h.state, h.ledger = st, l
		ev = TraceEvent{Op: OpConsent, OK: true, Status: step.Consent.Status}

	case step.Delta != nil:
		raw, err := h.envelope(step.Delta)
		if err != nil {
			return err
		}
		st, l, resp, err := h.kernel.SubmitDelta(h.state, h.ledger, raw)
		if err != nil {
			return err
		}
		h.state, h.ledger = st, l

		ev = TraceEvent{Op: OpDelta, ProducerID: step.Delta.ProducerID, OK: resp.OK}
		var profile canon.Object
		if resp.OK {
			ev.Status = resp.Status
			ev.Reasons = resp.Reasons
			profile, err = resp.Profile.Document()
			if err != nil {
				return err
			}
		} else {
			ev.Termination = resp.Refusal.Termination
			ev.Cause = resp.Refusal.Cause
		}
		if step.Expect != nil {
			for _, msg := range checkExpect(*step.Expect, ev, profile) {
				result.AddError(fmt.Sprintf("step %d (delta): %s", i, msg))
			}
		}

	case step.View != nil:
		l, resp, err := h.kernel.GetView(h.state, h.ledger, step.View.ProducerID)
		if err != nil {
			return err
		}
		h.ledger = l

		ev = TraceEvent{Op: OpView, ProducerID: step.View.ProducerID, OK: resp.OK}
		if resp.OK {
			ev.View = resp.Profile
		} else {
			ev.Termination = resp.Refusal.Termination
			ev.Cause = resp.Refusal.Cause
		}
		if step.Expect != nil {
			for _, msg := range checkExpect(*step.Expect, ev, resp.Profile) {
				result.AddError(fmt.Sprintf("step %d (view): %s", i, msg))
			}
		}
	}

	ev.Seq = i
	ev.Entries = h.ledger.Len()
	if h.ledger.Len() > before {
		ev.Audited = EntryLabel(h.ledger.Entries[h.ledger.Len()-1])
	}
	result.Trace = append(result.Trace, ev)

	h.logger.Debug().
		Int("step", i).
		Str("op", ev.Op).
		Bool("ok", ev.OK).
		Str("head", h.ledger.Head).
		Msg("step completed")
	return nil
}

// envelope builds the submit-delta value for a step.
func (h *Harness) envelope(d *DeltaStep) (canon.Value, error) {
	if d.Raw != nil {
		v, err := canon.FromGo(d.Raw)
		if err != nil {
			return nil, fmt.Errorf("raw envelope: %w", err)
		}
		return v, nil
	}

	payload := canon.Object{}
	if d.Payload != nil {
		v, err := canon.FromGo(d.Payload)
		if err != nil {
			return nil, fmt.Errorf("payload: %w", err)
		}
		payload = v.(canon.Object)
	}
	ts := d.Timestamp
	if ts == "" {
		ts = h.clock.Next()
	}
	env := testutil.DeltaEnvelope(d.ProducerID, ts, payload)
	if d.Scope != "" {
		env["scope"] = canon.String(d.Scope)
	}
	return env, nil
}
