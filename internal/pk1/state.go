package pk1

import (
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/consent"
	"github.com/imacdo2212/EdTech/internal/merge"
	"github.com/imacdo2212/EdTech/internal/profile"
)

// Defaults applied to a new learner's identity.
const (
	DefaultLocale   = "en-GB"
	DefaultTimezone = "Europe/London"
)

// State is the canonical record together with its field provenance.
// The two are always replaced together.
type State struct {
	Record     profile.Record   `json:"record"`
	Provenance merge.Provenance `json:"provenance"`
}

// Init returns the initial state for a learner. Created and updated
// timestamps are taken from the consent timestamp.
func Init(learnerID string, c consent.Consent) State {
	return State{
		Record: profile.Record{
			PKVersion: profile.Version,
			LearnerID: learnerID,
			Consent:   c.Normalized(),
			Identity: &profile.Identity{
				Locale:   DefaultLocale,
				Timezone: DefaultTimezone,
			},
			TopicStates: canon.Object{},
			Audit: profile.Audit{
				CreatedAt: c.Timestamp,
				UpdatedAt: c.Timestamp,
			},
		},
		Provenance: merge.Provenance{},
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{Record: s.Record.Clone(), Provenance: s.Provenance.Clone()}
}
