package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imacdo2212/EdTech/internal/canon"
)

const (
	t1 = "2025-01-01T00:00:00Z"
	t2 = "2025-01-02T00:00:00Z"
)

func styleWrite(style string) Write {
	return Write{Path: "preferences.style", Value: canon.String(style)}
}

func TestMergeFirstWriteApplies(t *testing.T) {
	res := Merge(canon.Object{}, nil, []Write{styleWrite("brief")}, 2, t1)

	assert.True(t, res.Applied)
	assert.Equal(t, []string{"preferences.style"}, res.AppliedPaths)
	assert.Empty(t, res.Reasons)
	assert.Equal(t, Entry{Confidence: 2, Timestamp: t1}, res.Provenance["preferences.style"])

	got, _ := res.Record.Lookup("preferences", "style")
	assert.Equal(t, canon.String("brief"), got)
}

func TestMergeArbitration(t *testing.T) {
	prior := canon.Object{"preferences": canon.Object{"style": canon.String("brief")}}
	prov := Provenance{"preferences.style": {Confidence: 2, Timestamp: t1}}

	tests := []struct {
		name       string
		confidence int
		ts         string
		applied    bool
	}{
		{"higher confidence older timestamp", 3, "2024-01-01T00:00:00Z", true},
		{"equal confidence newer timestamp", 2, t2, true},
		{"equal confidence equal timestamp", 2, t1, false},
		{"equal confidence older timestamp", 2, "2024-12-31T00:00:00Z", false},
		{"lower confidence newer timestamp", 1, t2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Merge(prior, prov, []Write{styleWrite("detailed")}, tt.confidence, tt.ts)
			assert.Equal(t, tt.applied, res.Applied)

			got, _ := res.Record.Lookup("preferences", "style")
			if tt.applied {
				assert.Equal(t, canon.String("detailed"), got)
				assert.Equal(t, Entry{Confidence: tt.confidence, Timestamp: tt.ts}, res.Provenance["preferences.style"])
				assert.Empty(t, res.Reasons)
				return
			}
			assert.Equal(t, canon.String("brief"), got)
			assert.Equal(t, prov["preferences.style"], res.Provenance["preferences.style"])
			assert.Equal(t, []string{"Skipped lower-confidence write to preferences.style"}, res.Reasons)
		})
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	prior := canon.Object{"topic_states": canon.Object{"MSK": canon.Object{"n": canon.Number(1)}}}
	prov := Provenance{"topic_states.MSK": {Confidence: 1, Timestamp: t1}}
	priorBytes, err := canon.Marshal(prior)
	require.NoError(t, err)

	fragment := canon.Object{"n": canon.Number(2)}
	res := Merge(prior, prov, []Write{{Path: "topic_states.MSK", Value: fragment}}, 2, t2)
	require.True(t, res.Applied)

	after, err := canon.Marshal(prior)
	require.NoError(t, err)
	assert.Equal(t, string(priorBytes), string(after))
	assert.Equal(t, Entry{Confidence: 1, Timestamp: t1}, prov["topic_states.MSK"])

	// The written value is a copy of the write, not an alias.
	fragment["n"] = canon.Number(3)
	got, _ := res.Record.Lookup("topic_states", "MSK", "n")
	assert.Equal(t, canon.Number(2), got)
}

func TestMergeIdempotent(t *testing.T) {
	writes := []Write{
		styleWrite("brief"),
		{Path: "capabilities.languages", Value: canon.Strings([]string{"English"}), Union: true},
	}

	first := Merge(canon.Object{}, nil, writes, 2, t1)
	require.True(t, first.Applied)

	second := Merge(first.Record, first.Provenance, writes, 2, t1)
	assert.False(t, second.Applied)
	assert.Empty(t, second.AppliedPaths)
	assert.Len(t, second.Reasons, 2)
	assert.True(t, canon.Equal(first.Record, second.Record))
	assert.Equal(t, first.Provenance, second.Provenance)
}

func TestMergeSetUnion(t *testing.T) {
	prior := canon.Object{"capabilities": canon.Object{"languages": canon.Strings([]string{"English"})}}
	prov := Provenance{"capabilities.languages": {Confidence: 2, Timestamp: t1}}

	res := Merge(prior, prov, []Write{{
		Path:  "capabilities.languages",
		Value: canon.Strings([]string{"english", " French "}),
		Union: true,
	}}, 2, t2)

	require.True(t, res.Applied)
	got, _ := res.Record.Lookup("capabilities", "languages")
	assert.Equal(t, canon.Strings([]string{"english", "french"}), got)
}

func TestMergeSkippedUnionKeepsPrior(t *testing.T) {
	prior := canon.Object{"capabilities": canon.Object{"sports": canon.Strings([]string{"Rugby"})}}
	prov := Provenance{"capabilities.sports": {Confidence: 3, Timestamp: t2}}

	res := Merge(prior, prov, []Write{{
		Path:  "capabilities.sports",
		Value: canon.Strings([]string{"chess"}),
		Union: true,
	}}, 2, t2)

	assert.False(t, res.Applied)
	got, _ := res.Record.Lookup("capabilities", "sports")
	assert.Equal(t, canon.Strings([]string{"Rugby"}), got)
}

func TestMergePartialApplication(t *testing.T) {
	prov := Provenance{"preferences.style": {Confidence: 3, Timestamp: t1}}
	writes := []Write{
		styleWrite("detailed"),
		{Path: "topic_states.MSK", Value: canon.Object{}},
	}

	res := Merge(canon.Object{}, prov, writes, 2, t2)
	assert.True(t, res.Applied)
	assert.Equal(t, []string{"topic_states.MSK"}, res.AppliedPaths)
	assert.Equal(t, []string{"Skipped lower-confidence write to preferences.style"}, res.Reasons)
	assert.Equal(t, []string{"preferences.style", "topic_states.MSK"}, res.Provenance.Paths())
}

func TestNormalizeSet(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"trim and drop blanks", []string{"  ", "", " a "}, []string{"a"}},
		{"dedupe across case", []string{"English", "ENGLISH", "english"}, []string{"english"}},
		{"sorted", []string{"c", "A", "b"}, []string{"a", "b", "c"}},
		{"unicode lower", []string{"ÉCOLE"}, []string{"école"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSet(tt.in))
		})
	}
}

func TestProvenanceCloneNil(t *testing.T) {
	var p Provenance
	cp := p.Clone()
	require.NotNil(t, cp)
	cp["x"] = Entry{}
	assert.Nil(t, p)
}
