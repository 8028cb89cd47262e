// Package adapter maps opaque per-producer payloads onto canonical field
// writes plus a base trust weight.
//
// Payloads decode into a closed set of variants keyed by producer identifier.
// Decoding is lenient: malformed or unrecognized members are dropped, never
// reported. An unrecognized producer yields UnknownPayload and no writes.
package adapter

import (
	"slices"
	"strings"

	"github.com/imacdo2212/EdTech/internal/canon"
)

// Producer identifiers with a dedicated adapter.
const (
	MSK = "MSK" // tutoring stage kernel
	FLT = "FLT" // learning-plan kernel
	ESK = "ESK" // language skills kernel
	SSK = "SSK" // study skills kernel
	ONB = "ONB" // onboarding intake
)

// Payload is a decoded producer payload. The set of implementations is closed.
type Payload interface {
	ProducerID() string
	isPayload()
}

// MSKPayload carries a style preference and a topic-state snapshot.
type MSKPayload struct {
	PreferredStyle string
	TopicState     canon.Value
}

// FLTPayload carries a topic-state snapshot.
type FLTPayload struct {
	TopicState canon.Value
}

// ESKPayload carries spoken languages and a topic-state snapshot.
type ESKPayload struct {
	Languages  []string
	TopicState canon.Value
}

// SSKPayload carries a topic-state snapshot.
type SSKPayload struct {
	TopicState canon.Value
}

// ONBPayload carries onboarding answers.
type ONBPayload struct {
	DisplayName    string
	Locale         string
	Timezone       string
	EducationLevel string
	Style          string
	Tone           string
	SlangMode      string
	Instruments    []string
	Sports         []string
	TechStack      []string
}

// UnknownPayload is produced for any producer without an adapter.
type UnknownPayload struct {
	Producer string
}

func (MSKPayload) ProducerID() string       { return MSK }
func (FLTPayload) ProducerID() string       { return FLT }
func (ESKPayload) ProducerID() string       { return ESK }
func (SSKPayload) ProducerID() string       { return SSK }
func (ONBPayload) ProducerID() string       { return ONB }
func (p UnknownPayload) ProducerID() string { return p.Producer }

func (MSKPayload) isPayload()     {}
func (FLTPayload) isPayload()     {}
func (ESKPayload) isPayload()     {}
func (SSKPayload) isPayload()     {}
func (ONBPayload) isPayload()     {}
func (UnknownPayload) isPayload() {}

var (
	styles     = []string{"brief", "detailed"}
	tones      = []string{"neutral", "friendly", "formal", "playful"}
	slangModes = []string{"none", "mild", "regional"}
)

// Decode selects the payload variant for producerID and extracts its members.
func Decode(producerID string, payload canon.Object) Payload {
	switch producerID {
	case MSK:
		return MSKPayload{
			PreferredStyle: enumMember(payload, "preferred_style", styles),
			TopicState:     topicState(payload),
		}
	case FLT:
		return FLTPayload{TopicState: topicState(payload)}
	case ESK:
		return ESKPayload{Languages: setMember(payload, "languages"), TopicState: topicState(payload)}
	case SSK:
		return SSKPayload{TopicState: topicState(payload)}
	case ONB:
		return ONBPayload{
			DisplayName:    stringMember(payload, "display_name"),
			Locale:         stringMember(payload, "locale"),
			Timezone:       stringMember(payload, "timezone"),
			EducationLevel: stringMember(payload, "education_level"),
			Style:          enumMember(payload, "style", styles),
			Tone:           enumMember(payload, "tone", tones),
			SlangMode:      enumMember(payload, "slang_mode", slangModes),
			Instruments:    setMember(payload, "instruments"),
			Sports:         setMember(payload, "sports"),
			TechStack:      setMember(payload, "tech_stack"),
		}
	default:
		return UnknownPayload{Producer: producerID}
	}
}

// topicState returns the topic_state member unless it is absent or null.
func topicState(payload canon.Object) canon.Value {
	v, ok := payload["topic_state"]
	if !ok {
		return nil
	}
	if _, isNull := v.(canon.Null); isNull {
		return nil
	}
	return canon.Clone(v)
}

func stringMember(payload canon.Object, key string) string {
	s, ok := payload[key].(canon.String)
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(s))
}

func enumMember(payload canon.Object, key string, allowed []string) string {
	s, ok := payload[key].(canon.String)
	if !ok || !slices.Contains(allowed, string(s)) {
		return ""
	}
	return string(s)
}

func setMember(payload canon.Object, key string) []string {
	ss, _ := canon.AsStrings(payload[key])
	return ss
}
