package harness

import (
	"fmt"

	"github.com/imacdo2212/EdTech/internal/canon"
)

// ReplayResult summarizes a deterministic replay.
type ReplayResult struct {
	Name         string `json:"name"`
	Pass         bool   `json:"pass"`
	Head         string `json:"head"`
	RecordDigest string `json:"record_digest"`
	Entries      int    `json:"entries"`
}

// DivergenceError is returned when two runs of the same scenario differ.
type DivergenceError struct {
	Scenario string
	Field    string
	First    string
	Second   string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("scenario %s is not deterministic: %s %s != %s", e.Scenario, e.Field, e.First, e.Second)
}

// Replay runs scenario twice and checks that both runs end at the same
// ledger head with byte-identical records.
func Replay(scenario *Scenario, opts ...Option) (*ReplayResult, error) {
	first, err := replayOnce(scenario, opts)
	if err != nil {
		return nil, err
	}
	second, err := replayOnce(scenario, opts)
	if err != nil {
		return nil, err
	}

	if first.Head != second.Head {
		return nil, &DivergenceError{Scenario: scenario.Name, Field: "head", First: first.Head, Second: second.Head}
	}
	if first.RecordDigest != second.RecordDigest {
		return nil, &DivergenceError{Scenario: scenario.Name, Field: "record", First: first.RecordDigest, Second: second.RecordDigest}
	}
	return first, nil
}

func replayOnce(scenario *Scenario, opts []Option) (*ReplayResult, error) {
	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	doc, err := result.State.Record.Document()
	if err != nil {
		return nil, err
	}
	digest, err := canon.Fingerprint(doc)
	if err != nil {
		return nil, err
	}
	return &ReplayResult{
		Name:         scenario.Name,
		Pass:         result.Pass,
		Head:         result.Ledger.Head,
		RecordDigest: digest,
		Entries:      result.Ledger.Len(),
	}, nil
}
