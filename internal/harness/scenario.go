package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted run against a fresh learner.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// LearnerID is optional; the fixed test id is used when empty.
	LearnerID string `yaml:"learner_id,omitempty"`

	// Consent is the learner's initial consent. Nil means granted with
	// profile.read and profile.write.
	Consent *ConsentStep `yaml:"consent,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is exactly one of Consent, Delta or View, plus an optional Expect.
type Step struct {
	Consent *ConsentStep `yaml:"consent,omitempty"`
	Delta   *DeltaStep   `yaml:"delta,omitempty"`
	View    *ViewStep    `yaml:"view,omitempty"`
	Expect  *Expect      `yaml:"expect,omitempty"`
}

// ConsentStep sets the learner's consent.
type ConsentStep struct {
	Status    string   `yaml:"status"`
	Scopes    []string `yaml:"scopes,omitempty"`
	Timestamp string   `yaml:"timestamp,omitempty"`
}

// DeltaStep submits one delta envelope.
type DeltaStep struct {
	ProducerID string         `yaml:"producer_id,omitempty"`
	Timestamp  string         `yaml:"timestamp,omitempty"`
	Scope      string         `yaml:"scope,omitempty"`
	Payload    map[string]any `yaml:"payload,omitempty"`

	// Raw, when set, is submitted as the whole envelope and the other
	// fields are ignored.
	Raw map[string]any `yaml:"raw,omitempty"`
}

// ViewStep requests a producer view.
type ViewStep struct {
	ProducerID string `yaml:"producer_id"`
}

// Expect checks the response of a delta or view step.
// Zero fields are not checked.
type Expect struct {
	OK          *bool    `yaml:"ok,omitempty"`
	Status      string   `yaml:"status,omitempty"`
	Termination string   `yaml:"termination,omitempty"`
	Cause       string   `yaml:"cause,omitempty"`
	Reasons     []string `yaml:"reasons,omitempty"`

	// Profile maps dotted paths of the returned profile to expected values.
	Profile map[string]any `yaml:"profile,omitempty"`

	// Absent lists dotted paths the returned profile must not contain.
	Absent []string `yaml:"absent,omitempty"`
}

// Assertion validates the final state or ledger.
type Assertion struct {
	Type       string   `yaml:"type"`
	Path       string   `yaml:"path,omitempty"`
	Equals     any      `yaml:"equals,omitempty"`
	Confidence int      `yaml:"confidence,omitempty"`
	Count      int      `yaml:"count,omitempty"`
	Events     []string `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertRecord       = "record"
	AssertRecordAbsent = "record_absent"
	AssertProvenance   = "provenance"
	AssertLedgerCount  = "ledger_count"
	AssertLedgerEvents = "ledger_events"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario is LoadScenario for in-memory YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Consent != nil && s.Consent.Status == "" {
		return fmt.Errorf("consent: status is required")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	set := 0
	for _, present := range []bool{step.Consent != nil, step.Delta != nil, step.View != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of consent, delta or view is required, got %d", set)
	}

	switch {
	case step.Consent != nil:
		if step.Consent.Status == "" {
			return fmt.Errorf("consent: status is required")
		}
		if step.Expect != nil {
			return fmt.Errorf("consent steps take no expect clause")
		}
	case step.Delta != nil:
		if step.Delta.Raw == nil && step.Delta.ProducerID == "" {
			return fmt.Errorf("delta: producer_id or raw is required")
		}
	case step.View != nil:
		if step.View.ProducerID == "" {
			return fmt.Errorf("view: producer_id is required")
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertRecord:
		if a.Path == "" {
			return fmt.Errorf("%s requires 'path'", a.Type)
		}
		if a.Equals == nil {
			return fmt.Errorf("%s requires 'equals'", a.Type)
		}
	case AssertRecordAbsent:
		if a.Path == "" {
			return fmt.Errorf("%s requires 'path'", a.Type)
		}
	case AssertProvenance:
		if a.Path == "" {
			return fmt.Errorf("%s requires 'path'", a.Type)
		}
		if a.Confidence <= 0 {
			return fmt.Errorf("%s requires a positive 'confidence'", a.Type)
		}
	case AssertLedgerCount:
		if a.Count < 0 {
			return fmt.Errorf("%s requires a non-negative 'count'", a.Type)
		}
	case AssertLedgerEvents:
		if a.Events == nil {
			return fmt.Errorf("%s requires 'events'", a.Type)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
