// Package profile defines the canonical learner record (pk_version 1.0) and
// dotted-path access over its document form.
//
// A Record is replaced wholesale on every successful write. Clone returns a
// deep copy so that no two snapshots share mutable containers.
package profile

import (
	"slices"

	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/consent"
)

// Version is the only record version this package produces.
const Version = "1.0"

// Record is the canonical learner profile.
type Record struct {
	PKVersion    string          `json:"pk_version"`
	LearnerID    string          `json:"learner_id"`
	Consent      consent.Consent `json:"consent"`
	Identity     *Identity       `json:"identity,omitempty"`
	Preferences  *Preferences    `json:"preferences,omitempty"`
	Capabilities *Capabilities   `json:"capabilities,omitempty"`
	Supports     *Supports       `json:"supports,omitempty"`
	Curriculum   *Curriculum     `json:"curriculum,omitempty"`
	TopicStates  canon.Object    `json:"topic_states"`
	Audit        Audit           `json:"audit"`
}

type Identity struct {
	DisplayName    string `json:"display_name,omitempty"`
	Locale         string `json:"locale,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	EducationLevel string `json:"education_level,omitempty"`
}

type Preferences struct {
	Style         string         `json:"style,omitempty"`
	Tone          string         `json:"tone,omitempty"`
	Accessibility *Accessibility `json:"accessibility,omitempty"`
	SlangMode     string         `json:"slang_mode,omitempty"`
}

type Accessibility struct {
	DyslexiaMode *bool    `json:"dyslexia_mode,omitempty"`
	FontScale    *float64 `json:"font_scale,omitempty"`
}

// Capabilities are normalized string sets: lower-case, deduplicated, sorted.
type Capabilities struct {
	Languages   []string `json:"languages,omitempty"`
	Instruments []string `json:"instruments,omitempty"`
	Sports      []string `json:"sports,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty"`
}

type Supports struct {
	SEN       *SEN       `json:"sen,omitempty"`
	Wellbeing *Wellbeing `json:"wellbeing,omitempty"`
}

type SEN struct {
	HasPlan *bool  `json:"has_plan,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type Wellbeing struct {
	CheckInsEnabled *bool `json:"check_ins_enabled,omitempty"`
}

type Curriculum struct {
	Subjects []Subject `json:"subjects,omitempty"`
}

type Subject struct {
	Code      string   `json:"code,omitempty"`
	Level     string   `json:"level,omitempty"`
	Targets   []string `json:"targets,omitempty"`
	ExamBoard string   `json:"exam_board,omitempty"`
}

type Audit struct {
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.Consent.Scopes = slices.Clone(r.Consent.Scopes)
	if r.Identity != nil {
		id := *r.Identity
		out.Identity = &id
	}
	if r.Preferences != nil {
		p := *r.Preferences
		if p.Accessibility != nil {
			a := Accessibility{
				DyslexiaMode: clonePtr(p.Accessibility.DyslexiaMode),
				FontScale:    clonePtr(p.Accessibility.FontScale),
			}
			p.Accessibility = &a
		}
		out.Preferences = &p
	}
	if r.Capabilities != nil {
		out.Capabilities = &Capabilities{
			Languages:   slices.Clone(r.Capabilities.Languages),
			Instruments: slices.Clone(r.Capabilities.Instruments),
			Sports:      slices.Clone(r.Capabilities.Sports),
			TechStack:   slices.Clone(r.Capabilities.TechStack),
		}
	}
	if r.Supports != nil {
		s := Supports{}
		if r.Supports.SEN != nil {
			s.SEN = &SEN{HasPlan: clonePtr(r.Supports.SEN.HasPlan), Notes: r.Supports.SEN.Notes}
		}
		if r.Supports.Wellbeing != nil {
			s.Wellbeing = &Wellbeing{CheckInsEnabled: clonePtr(r.Supports.Wellbeing.CheckInsEnabled)}
		}
		out.Supports = &s
	}
	if r.Curriculum != nil {
		c := Curriculum{}
		if r.Curriculum.Subjects != nil {
			c.Subjects = make([]Subject, len(r.Curriculum.Subjects))
			for i, subj := range r.Curriculum.Subjects {
				subj.Targets = slices.Clone(subj.Targets)
				c.Subjects[i] = subj
			}
		}
		out.Curriculum = &c
	}
	if r.TopicStates != nil {
		out.TopicStates = canon.Clone(r.TopicStates).(canon.Object)
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
