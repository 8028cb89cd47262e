package pk1

import (
	"fmt"

	"github.com/imacdo2212/EdTech/internal/schema"
)

// Code identifies why an operation was refused.
type Code string

const (
	CodeConsent Code = "PK-REF-CONSENT"
	CodeScope   Code = "PK-REF-SCOPE"
	CodeSchema  Code = "PK-REF-SCHEMA"
)

// MaxNextSteps bounds Refusal.NextSteps.
const MaxNextSteps = 3

// Refusal is the terminal response of a refused operation.
// Refusals are values, not errors: state is unchanged and nothing is retried.
type Refusal struct {
	OK          bool     `json:"ok"`
	Termination string   `json:"termination"`
	Cause       string   `json:"cause"`
	NextSteps   []string `json:"next_steps"`
}

// Termination renders the termination string for code.
func Termination(code Code) string {
	return fmt.Sprintf("REFUSAL(%s)", code)
}

func newRefusal(code Code, cause string, nextSteps ...string) *Refusal {
	if len(nextSteps) > MaxNextSteps {
		nextSteps = nextSteps[:MaxNextSteps]
	}
	steps := make([]string, len(nextSteps))
	copy(steps, nextSteps)
	return &Refusal{
		Termination: Termination(code),
		Cause:       cause,
		NextSteps:   steps,
	}
}

func schemaRefusal(ve *schema.ValidationError) *Refusal {
	var step string
	switch ve.Reason {
	case schema.ReasonMissingRequired:
		step = "Add required fields."
	case schema.ReasonUnknownField:
		step = "Remove unknown fields."
	default:
		step = "Fix field types and values."
	}
	return newRefusal(CodeSchema, ve.Error(), step)
}
