// Package merge implements the deterministic merge of candidate field writes
// into a learner record.
//
// Each write targets one dotted path. Arbitration per path:
//
//	no provenance            apply
//	higher confidence        apply
//	equal confidence         apply iff the timestamp is strictly newer
//	otherwise                skip, with a reason
//
// Applied writes record {confidence, timestamp} in the provenance table.
// Skipped writes leave both the record and provenance untouched.
package merge

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/profile"
)

// Entry is the provenance of one field path.
type Entry struct {
	Confidence int    `json:"confidence"`
	Timestamp  string `json:"timestamp"`
}

// Provenance maps dotted field paths to the write that last set them.
// Never exposed to producers.
type Provenance map[string]Entry

// Clone returns a copy of p. A nil table clones to an empty one.
func (p Provenance) Clone() Provenance {
	out := make(Provenance, len(p))
	maps.Copy(out, p)
	return out
}

// Paths returns the recorded paths in sorted order.
func (p Provenance) Paths() []string {
	return slices.Sorted(maps.Keys(p))
}

// Write is one candidate field write.
type Write struct {
	Path  string
	Value canon.Value

	// Union marks a set-valued field: the value is unioned with the prior
	// set and normalized before arbitration.
	Union bool
}

// Result is the outcome of Merge. Record and Provenance are fresh values.
type Result struct {
	Record       canon.Object
	Provenance   Provenance
	Applied      bool
	AppliedPaths []string
	Reasons      []string
}

// Merge applies writes in order to a copy of prior.
// Neither prior nor prov is modified.
func Merge(prior canon.Object, prov Provenance, writes []Write, confidence int, ts string) Result {
	res := Result{
		Record:     canon.Clone(prior).(canon.Object),
		Provenance: prov.Clone(),
		Reasons:    []string{},
	}
	if res.Record == nil {
		res.Record = canon.Object{}
	}

	for _, w := range writes {
		value := canon.Clone(w.Value)
		if w.Union {
			existing, _ := profile.Get(res.Record, w.Path)
			value = canon.Strings(NormalizeSet(append(stringsOf(existing), stringsOf(w.Value)...)))
		}

		if !wins(res.Provenance, w.Path, confidence, ts) {
			res.Reasons = append(res.Reasons, fmt.Sprintf("Skipped lower-confidence write to %s", w.Path))
			continue
		}
		res.Provenance[w.Path] = Entry{Confidence: confidence, Timestamp: ts}
		profile.Set(res.Record, w.Path, value)
		res.Applied = true
		res.AppliedPaths = append(res.AppliedPaths, w.Path)
	}
	return res
}

// wins reports whether a write at (confidence, ts) may replace path.
// Timestamps compare as strings; ISO-8601 UTC values order correctly.
func wins(prov Provenance, path string, confidence int, ts string) bool {
	prev, ok := prov[path]
	if !ok {
		return true
	}
	if confidence != prev.Confidence {
		return confidence > prev.Confidence
	}
	return ts > prev.Timestamp
}

// NormalizeSet trims, drops empty entries, lower-cases, deduplicates and
// sorts values. Lower-casing uses Unicode full case mapping.
func NormalizeSet(values []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		v = lower.String(v)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func stringsOf(v canon.Value) []string {
	ss, _ := canon.AsStrings(v)
	return ss
}
