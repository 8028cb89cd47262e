package audit

import (
	"errors"
	"fmt"
)

// GenesisHash is the head of an empty ledger.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Ledger is an ordered list of envelopes plus the hash of the last one.
// Ledgers are values: Append returns a new ledger and leaves its input intact.
type Ledger struct {
	Entries []Envelope `json:"entries"`
	Head    string     `json:"head"`
}

// Genesis returns an empty ledger.
func Genesis() Ledger {
	return Ledger{Entries: []Envelope{}, Head: GenesisHash}
}

// Len returns the number of entries.
func (l Ledger) Len() int {
	return len(l.Entries)
}

// Append links e to the ledger head, computes its hash and returns the
// extended ledger. Any PrevHash or Hash already set on e is overwritten.
func Append(l Ledger, e Envelope) (Ledger, error) {
	head := l.Head
	if head == "" {
		head = GenesisHash
	}

	e.PrevHash = head
	if e.Provenance.Sources == nil {
		e.Provenance.Sources = []string{}
	}
	hash, err := e.ComputeHash()
	if err != nil {
		return l, fmt.Errorf("audit: append: %w", err)
	}
	e.Hash = hash

	entries := make([]Envelope, len(l.Entries), len(l.Entries)+1)
	copy(entries, l.Entries)
	return Ledger{Entries: append(entries, e), Head: hash}, nil
}

// ChainError reports the first entry at which a ledger fails verification.
type ChainError struct {
	// Index of the offending entry; equals Len() for a head mismatch.
	Index int

	// Reason is a human-readable description.
	Reason string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("audit: chain broken at entry %d: %s", e.Index, e.Reason)
}

// IsChainError returns true if err wraps a ChainError.
func IsChainError(err error) bool {
	var ce *ChainError
	return errors.As(err, &ce)
}

// Verify re-derives every link and hash of l.
func Verify(l Ledger) error {
	prev := GenesisHash
	for i, e := range l.Entries {
		if e.PrevHash != prev {
			return &ChainError{Index: i, Reason: fmt.Sprintf("prev_hash %s does not match %s", short(e.PrevHash), short(prev))}
		}
		want, err := e.ComputeHash()
		if err != nil {
			return &ChainError{Index: i, Reason: err.Error()}
		}
		if e.Hash != want {
			return &ChainError{Index: i, Reason: fmt.Sprintf("hash %s does not match content %s", short(e.Hash), short(want))}
		}
		prev = e.Hash
	}
	if l.Head != prev {
		return &ChainError{Index: len(l.Entries), Reason: fmt.Sprintf("head %s does not match last hash %s", short(l.Head), short(prev))}
	}
	return nil
}

// VerifyExtends checks that next is prev with zero or more entries appended.
func VerifyExtends(prev, next Ledger) error {
	if len(next.Entries) < len(prev.Entries) {
		return &ChainError{Index: len(next.Entries), Reason: "ledger is shorter than its predecessor"}
	}
	for i, e := range prev.Entries {
		if next.Entries[i].Hash != e.Hash {
			return &ChainError{Index: i, Reason: "entry diverges from predecessor"}
		}
	}
	return nil
}

func short(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
