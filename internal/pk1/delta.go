package pk1

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/imacdo2212/EdTech/internal/adapter"
	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/consent"
	"github.com/imacdo2212/EdTech/internal/merge"
	"github.com/imacdo2212/EdTech/internal/profile"
	"github.com/imacdo2212/EdTech/internal/schema"
)

// Delta statuses.
const (
	StatusApplied = "applied"
	StatusSkipped = "skipped"
)

// Event names recorded on successful operations.
const (
	EventDelta   = "pk1_delta"
	EventView    = "pk1_view"
	EventConsent = "consent_set"
)

// DeltaRequest is a decoded submit-delta envelope.
type DeltaRequest struct {
	ProducerID string       `json:"producer_id"`
	Timestamp  string       `json:"timestamp"`
	Scope      string       `json:"scope"`
	Payload    canon.Object `json:"payload"`
}

// DeltaResponse is the result of SubmitDelta: either a success or a Refusal.
type DeltaResponse struct {
	OK      bool
	Status  string
	Reasons []string
	Profile *profile.Record

	// Refusal is set iff OK is false.
	Refusal *Refusal
}

// MarshalJSON renders the success or refusal shape.
func (r DeltaResponse) MarshalJSON() ([]byte, error) {
	if r.Refusal != nil {
		return json.Marshal(r.Refusal)
	}
	return json.Marshal(struct {
		OK      bool            `json:"ok"`
		Status  string          `json:"status"`
		Reasons []string        `json:"reasons"`
		Profile *profile.Record `json:"profile"`
	}{r.OK, r.Status, r.Reasons, r.Profile})
}

func refused(r *Refusal) DeltaResponse {
	return DeltaResponse{Refusal: r}
}

// Submit encodes req and runs SubmitDelta on it.
func (k *Kernel) Submit(st State, l audit.Ledger, req DeltaRequest) (State, audit.Ledger, DeltaResponse, error) {
	raw, err := canon.Encode(req)
	if err != nil {
		return st, l, DeltaResponse{}, fmt.Errorf("pk1: encode request: %w", err)
	}
	return k.SubmitDelta(st, l, raw)
}

// SubmitDelta validates raw as a delta envelope and merges it into st.
//
// Refusals come back in the response with st returned unchanged. The error
// is reserved for internal failures such as an unhashable value.
func (k *Kernel) SubmitDelta(st State, l audit.Ledger, raw canon.Value) (State, audit.Ledger, DeltaResponse, error) {
	if ve := schema.Validate(k.schemas.Delta, raw); ve != nil {
		return k.refuseDelta(st, l, schemaRefusal(ve))
	}
	// Keys that collide after NFC pass the schema but have no canonical form.
	if _, err := canon.Size(raw); err != nil {
		return k.refuseDelta(st, l, newRefusal(CodeSchema,
			err.Error(),
			"Remove keys that differ only in Unicode normalization."))
	}

	var req DeltaRequest
	if err := canon.Decode(raw, &req); err != nil {
		return st, l, DeltaResponse{}, fmt.Errorf("pk1: decode request: %w", err)
	}
	log := k.logger.With().Str("producer_id", req.ProducerID).Str("timestamp", req.Timestamp).Logger()

	if !consent.CheckScope(st.Record.Consent, consent.ScopeProfileWrite) {
		r := newRefusal(CodeConsent,
			"Consent missing or revoked for profile.write.",
			"Grant consent with scope profile.write.")
		execID, err := canon.Fingerprint(canon.Object{
			"route": canon.String(audit.RoutePK1),
			"op":    canon.String("delta"),
			"req":   raw,
		})
		if err != nil {
			return st, l, DeltaResponse{}, fmt.Errorf("pk1: exec id: %w", err)
		}
		next, err := audit.Append(l, refusalEnvelope(execID, r))
		if err != nil {
			return st, l, DeltaResponse{}, err
		}
		log.Debug().Str("termination", r.Termination).Msg("delta refused")
		return st, next, refused(r), nil
	}

	size, err := canon.Size(req.Payload)
	if err != nil {
		return st, l, DeltaResponse{}, fmt.Errorf("pk1: payload size: %w", err)
	}
	if size > k.limits.MaxRecordBytes {
		return k.refuseDelta(st, l, newRefusal(CodeSchema,
			"Delta payload too large.",
			fmt.Sprintf("Reduce payload size (<=%d bytes).", k.limits.MaxRecordBytes)))
	}

	adapted := adapter.Adapt(req.ProducerID, req.Payload)

	fragments := adapted.TopicStates()
	for _, producer := range slices.Sorted(maps.Keys(fragments)) {
		n, err := canon.Size(fragments[producer])
		if err != nil {
			return st, l, DeltaResponse{}, fmt.Errorf("pk1: fragment size: %w", err)
		}
		if n > k.limits.MaxFragmentBytes {
			return k.refuseDelta(st, l, newRefusal(CodeSchema,
				fmt.Sprintf("topic_states.%s too large.", producer),
				fmt.Sprintf("Reduce topic state payload (<=%d bytes).", k.limits.MaxFragmentBytes)))
		}
	}

	confidence := adapted.Weight + freshnessBonus(req.Timestamp, req.Timestamp, k.limits.FreshnessWindow)

	prior, err := st.Record.Document()
	if err != nil {
		return st, l, DeltaResponse{}, err
	}
	merged := merge.Merge(prior, st.Provenance, adapted.Writes, confidence, req.Timestamp)
	profile.Set(merged.Record, "audit.updated_at", canon.String(req.Timestamp))

	size, err = canon.Size(merged.Record)
	if err != nil {
		return st, l, DeltaResponse{}, fmt.Errorf("pk1: record size: %w", err)
	}
	if size > k.limits.MaxRecordBytes {
		return k.refuseDelta(st, l, newRefusal(CodeSchema,
			"Merged profile exceeds max size.",
			fmt.Sprintf("Reduce stored fields (<=%d bytes).", k.limits.MaxRecordBytes)))
	}

	if ve := schema.Validate(k.schemas.Record, merged.Record); ve != nil {
		return k.refuseDelta(st, l, schemaRefusal(ve))
	}

	record, err := profile.FromDocument(merged.Record)
	if err != nil {
		return st, l, DeltaResponse{}, err
	}
	nextState := State{Record: record, Provenance: merged.Provenance}

	status := StatusSkipped
	if merged.Applied {
		status = StatusApplied
	}

	execID, err := canon.Fingerprint(canon.Object{
		"route":   canon.String(audit.RoutePK1),
		"op":      canon.String("delta"),
		"req":     raw,
		"applied": canon.Bool(merged.Applied),
	})
	if err != nil {
		return st, l, DeltaResponse{}, fmt.Errorf("pk1: exec id: %w", err)
	}
	env := successEnvelope(execID, req.ProducerID, audit.Consumption{TimeMS: 2, MemMB: 24, Depth: 1})
	env.Event = EventDelta
	env.EventData = canon.Object{
		"producer_id":   canon.String(req.ProducerID),
		"status":        canon.String(status),
		"reasons":       canon.Strings(merged.Reasons),
		"applied_paths": canon.Strings(merged.AppliedPaths),
	}
	nextLedger, err := audit.Append(l, env)
	if err != nil {
		return st, l, DeltaResponse{}, err
	}

	log.Debug().
		Str("status", status).
		Int("confidence", confidence).
		Strs("applied_paths", merged.AppliedPaths).
		Str("head", nextLedger.Head).
		Msg("delta committed")

	out := nextState.Record.Clone()
	return nextState, nextLedger, DeltaResponse{
		OK:      true,
		Status:  status,
		Reasons: merged.Reasons,
		Profile: &out,
	}, nil
}

// refuseDelta returns an unaudited refusal with state and ledger unchanged.
func (k *Kernel) refuseDelta(st State, l audit.Ledger, r *Refusal) (State, audit.Ledger, DeltaResponse, error) {
	k.logger.Debug().Str("termination", r.Termination).Str("cause", r.Cause).Msg("delta refused")
	return st, l, refused(r), nil
}

// freshnessBonus is 1 when ts is no older than window relative to now and
// not in the future; 0 otherwise, including when either fails to parse.
func freshnessBonus(now, ts string, window time.Duration) int {
	n, err := parseTimestamp(now)
	if err != nil {
		return 0
	}
	t, err := parseTimestamp(ts)
	if err != nil {
		return 0
	}
	diff := n.Sub(t)
	if diff < 0 || diff > window {
		return 0
	}
	return 1
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func refusalEnvelope(execID string, r *Refusal) audit.Envelope {
	return audit.Envelope{
		ExecID:      execID,
		Route:       audit.RoutePK1,
		Budgets:     audit.Budgets{Consumed: audit.Consumption{TimeMS: 1, MemMB: 16, Depth: 1}},
		Termination: r.Termination,
		Metrics:     audit.FullMetrics(),
		Provenance:  audit.Provenance{Sources: []string{}},
	}
}

func successEnvelope(execID, producerID string, used audit.Consumption) audit.Envelope {
	return audit.Envelope{
		ExecID:      execID,
		Route:       audit.RoutePK1,
		Budgets:     audit.Budgets{Consumed: used},
		Termination: audit.TerminationBounded,
		Metrics:     audit.FullMetrics(),
		Provenance:  audit.Provenance{Sources: []string{producerID}},
	}
}
