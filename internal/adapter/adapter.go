package adapter

import (
	"strings"

	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/merge"
)

// Base trust weights.
const (
	CoreWeight  = 2
	OtherWeight = 1
)

// Result is the adapter output for one payload.
type Result struct {
	// Writes in merge order: preferences, identity, topic_states, capabilities.
	Writes []merge.Write
	Weight int
}

// Weight returns the base trust weight of a producer.
func Weight(producerID string) int {
	switch producerID {
	case ESK, MSK, SSK:
		return CoreWeight
	default:
		return OtherWeight
	}
}

// Adapt decodes payload for producerID and maps it to field writes.
func Adapt(producerID string, payload canon.Object) Result {
	return AdaptPayload(Decode(producerID, payload))
}

// AdaptPayload maps an already decoded payload to field writes.
func AdaptPayload(p Payload) Result {
	var b writes
	switch p := p.(type) {
	case MSKPayload:
		b.value("preferences.style", p.PreferredStyle)
		b.topicState(MSK, p.TopicState)
	case FLTPayload:
		b.topicState(FLT, p.TopicState)
	case ESKPayload:
		b.topicState(ESK, p.TopicState)
		b.set("capabilities.languages", p.Languages)
	case SSKPayload:
		b.topicState(SSK, p.TopicState)
	case ONBPayload:
		b.value("preferences.style", p.Style)
		b.value("preferences.tone", p.Tone)
		b.value("preferences.slang_mode", p.SlangMode)
		b.value("identity.display_name", p.DisplayName)
		b.value("identity.locale", p.Locale)
		b.value("identity.timezone", p.Timezone)
		b.value("identity.education_level", p.EducationLevel)
		b.set("capabilities.instruments", p.Instruments)
		b.set("capabilities.sports", p.Sports)
		b.set("capabilities.tech_stack", p.TechStack)
	case UnknownPayload:
	}
	return Result{Writes: b.list, Weight: Weight(p.ProducerID())}
}

// TopicStates returns the topic-state fragments among writes, keyed by producer.
func (r Result) TopicStates() map[string]canon.Value {
	out := map[string]canon.Value{}
	for _, w := range r.Writes {
		if producer, ok := strings.CutPrefix(w.Path, topicPrefix); ok {
			out[producer] = w.Value
		}
	}
	return out
}

const topicPrefix = "topic_states."

type writes struct {
	list []merge.Write
}

func (b *writes) value(path, s string) {
	if s == "" {
		return
	}
	b.list = append(b.list, merge.Write{Path: path, Value: canon.String(s)})
}

func (b *writes) topicState(producer string, v canon.Value) {
	if v == nil {
		return
	}
	b.list = append(b.list, merge.Write{Path: topicPrefix + producer, Value: v})
}

// set drops values that normalize to nothing so empty deltas never claim a path.
func (b *writes) set(path string, values []string) {
	norm := merge.NormalizeSet(values)
	if len(norm) == 0 {
		return
	}
	b.list = append(b.list, merge.Write{Path: path, Value: canon.Strings(norm), Union: true})
}
