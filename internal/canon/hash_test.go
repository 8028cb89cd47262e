package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestKnownVector(t *testing.T) {
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		Digest([]byte("abc")))
}

func TestDigestLength(t *testing.T) {
	assert.Len(t, Digest(nil), DigestLen)
	assert.Len(t, Digest([]byte("anything")), DigestLen)
}

func TestFingerprintIsDigestOfCanonicalBytes(t *testing.T) {
	fp, err := Fingerprint(Object{"b": Number(1), "a": Number(2)})
	require.NoError(t, err)
	assert.Equal(t, Digest([]byte(`{"a":2,"b":1}`)), fp)
}

func TestFingerprintIndependentOfInsertionOrder(t *testing.T) {
	first := Object{}
	first["x"] = String("1")
	first["y"] = String("2")

	second := Object{}
	second["y"] = String("2")
	second["x"] = String("1")

	a, err := Fingerprint(first)
	require.NoError(t, err)
	b, err := Fingerprint(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFingerprintDiffersOnChange(t *testing.T) {
	a := MustFingerprint(Object{"style": String("brief")})
	b := MustFingerprint(Object{"style": String("detailed")})
	assert.NotEqual(t, a, b)
}

func TestFingerprintOfStructMatchesValue(t *testing.T) {
	type pair struct {
		A int    `json:"a"`
		B string `json:"b"`
	}
	fromStruct, err := FingerprintOf(pair{A: 1, B: "x"})
	require.NoError(t, err)
	fromValue, err := Fingerprint(Object{"b": String("x"), "a": Number(1)})
	require.NoError(t, err)
	assert.Equal(t, fromValue, fromStruct)
}

func TestMustFingerprintPanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() {
		MustFingerprint(make(chan int))
	})
}
