package pk1

import (
	"encoding/json"
	"fmt"

	"github.com/imacdo2212/EdTech/internal/adapter"
	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/consent"
	"github.com/imacdo2212/EdTech/internal/profile"
)

// viewFields is the least-privilege allow-list per producer, as dotted paths.
// Producers not listed get an empty view.
var viewFields = map[string][]string{
	adapter.MSK: {"preferences.style", "identity.education_level", "topic_states.MSK"},
	adapter.FLT: {"topic_states.FLT", "preferences.style"},
	adapter.ESK: {"preferences.style", "preferences.tone", "capabilities.languages", "topic_states.ESK"},
	adapter.SSK: {"preferences.style", "topic_states.SSK"},
}

// ViewFields returns the paths producerID may read.
func ViewFields(producerID string) []string {
	return append([]string(nil), viewFields[producerID]...)
}

// Project derives the view of doc for producerID. The top-level container of
// every allowed path is always present, possibly empty; absent leaves are
// omitted. The result shares nothing with doc.
func Project(doc canon.Object, producerID string) canon.Object {
	view := canon.Object{}
	for _, path := range viewFields[producerID] {
		parts := profile.SplitPath(path)
		if _, ok := view[parts[0]]; !ok {
			view[parts[0]] = canon.Object{}
		}
		if v, ok := profile.Get(doc, path); ok {
			profile.Set(view, path, canon.Clone(v))
		}
	}
	return view
}

// ViewResponse is the result of GetView: either a projection or a Refusal.
type ViewResponse struct {
	OK      bool
	Profile canon.Object

	// Refusal is set iff OK is false.
	Refusal *Refusal
}

// MarshalJSON renders the success or refusal shape.
func (r ViewResponse) MarshalJSON() ([]byte, error) {
	if r.Refusal != nil {
		return json.Marshal(r.Refusal)
	}
	return json.Marshal(struct {
		OK      bool         `json:"ok"`
		Profile canon.Object `json:"profile"`
	}{r.OK, r.Profile})
}

// GetView returns the projection of st visible to producerID.
// Both outcomes append an audit entry; state is never changed.
func (k *Kernel) GetView(st State, l audit.Ledger, producerID string) (audit.Ledger, ViewResponse, error) {
	log := k.logger.With().Str("producer_id", producerID).Logger()

	if !consent.CheckScope(st.Record.Consent, consent.ScopeProfileRead) {
		r := newRefusal(CodeScope, "Client lacks profile.read scope.", "Grant profile.read scope.")
		execID, err := canon.Fingerprint(canon.Object{
			"route":       canon.String(audit.RoutePK1),
			"op":          canon.String("view"),
			"producer_id": canon.String(producerID),
		})
		if err != nil {
			return l, ViewResponse{}, fmt.Errorf("pk1: exec id: %w", err)
		}
		next, err := audit.Append(l, refusalEnvelope(execID, r))
		if err != nil {
			return l, ViewResponse{}, err
		}
		log.Debug().Str("termination", r.Termination).Msg("view refused")
		return next, ViewResponse{Refusal: r}, nil
	}

	doc, err := st.Record.Document()
	if err != nil {
		return l, ViewResponse{}, err
	}
	view := Project(doc, producerID)

	execID, err := canon.Fingerprint(canon.Object{
		"route":       canon.String(audit.RoutePK1),
		"op":          canon.String("view"),
		"producer_id": canon.String(producerID),
		"profile":     view,
	})
	if err != nil {
		return l, ViewResponse{}, fmt.Errorf("pk1: exec id: %w", err)
	}
	env := successEnvelope(execID, producerID, audit.Consumption{TimeMS: 1, MemMB: 16, Depth: 1})
	env.Event = EventView
	env.EventData = canon.Object{
		"producer_id": canon.String(producerID),
		"fields":      canon.Strings(ViewFields(producerID)),
	}
	next, err := audit.Append(l, env)
	if err != nil {
		return l, ViewResponse{}, err
	}

	log.Debug().Str("head", next.Head).Msg("view served")
	return next, ViewResponse{OK: true, Profile: view}, nil
}
