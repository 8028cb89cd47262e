package store

import (
	"encoding/json"
	"fmt"

	"github.com/imacdo2212/EdTech/internal/audit"
	"github.com/imacdo2212/EdTech/internal/canon"
	"github.com/imacdo2212/EdTech/internal/merge"
	"github.com/imacdo2212/EdTech/internal/profile"
)

// marshalRecord converts a record to canonical JSON TEXT for storage.
func marshalRecord(r profile.Record) (string, error) {
	doc, err := r.Document()
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	data, err := canon.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(data), nil
}

func unmarshalRecord(text string) (profile.Record, error) {
	v, err := canon.Parse([]byte(text))
	if err != nil {
		return profile.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	doc, ok := v.(canon.Object)
	if !ok {
		return profile.Record{}, fmt.Errorf("unmarshal record: expected object, got %s", canon.KindOf(v))
	}
	r, err := profile.FromDocument(doc)
	if err != nil {
		return profile.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return r, nil
}

func marshalProvenance(p merge.Provenance) (string, error) {
	if p == nil {
		p = merge.Provenance{}
	}
	data, err := canon.Canonicalize(p)
	if err != nil {
		return "", fmt.Errorf("marshal provenance: %w", err)
	}
	return string(data), nil
}

func unmarshalProvenance(text string) (merge.Provenance, error) {
	var p merge.Provenance
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("unmarshal provenance: %w", err)
	}
	if p == nil {
		p = merge.Provenance{}
	}
	return p, nil
}

func marshalEnvelope(e audit.Envelope) (string, error) {
	data, err := canon.Canonicalize(e)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return string(data), nil
}

func unmarshalEnvelope(text string) (audit.Envelope, error) {
	var e audit.Envelope
	if err := json.Unmarshal([]byte(text), &e); err != nil {
		return audit.Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if e.Provenance.Sources == nil {
		e.Provenance.Sources = []string{}
	}
	return e, nil
}
