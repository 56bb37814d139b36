package kmer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packString encodes s (over {A,C,G,T}) into the four-word packed
// representation used by the on-disk format, for use in tests.
func packString(s string) [4]uint64 {
	var data [4]uint64
	codes := map[byte]uint64{'A': 0, 'C': 1, 'G': 2, 'T': 3}
	for i := 0; i < len(s); i++ {
		row := i / 32
		posInRow := uint(i % 32)
		shift := 62 - posInRow*2
		data[row] |= codes[s[i]] << shift
	}
	return data
}

func TestFingerprintEmpty(t *testing.T) {
	assert.Equal(t, int64(0), Fingerprint(packString(""), 0))
}

func TestFingerprintSingleBase(t *testing.T) {
	assert.Equal(t, int64(1), Fingerprint(packString("A"), 1))
	assert.Equal(t, int64(2), Fingerprint(packString("C"), 1))
	assert.Equal(t, int64(4), Fingerprint(packString("T"), 1))
}

func TestFingerprintDistinctByLength(t *testing.T) {
	// "A" and "AA" must not collide, per spec.md §3.
	assert.NotEqual(t, Fingerprint(packString("A"), 1), Fingerprint(packString("AA"), 2))
}

func TestFingerprintATT(t *testing.T) {
	assert.Equal(t, int64(36), Fingerprint(packString("ATT"), 3))
}

func TestFingerprintAAG(t *testing.T) {
	assert.Equal(t, int64(23), Fingerprint(packString("AAG"), 3))
}

// Ported from read_in_kmer_tests.cpp's KmerBackgroundRep* cases.
func TestBackgroundFingerprint(t *testing.T) {
	aFp := Fingerprint(packString("A"), 1)
	require.Equal(t, int64(1), aFp)
	assert.Equal(t, int64(0), BackgroundFingerprint(aFp, 0))
	assert.Equal(t, int64(1), BackgroundFingerprint(aFp, 1))

	attFp := Fingerprint(packString("ATT"), 3)
	require.Equal(t, int64(36), attFp)
	assert.Equal(t, int64(4), BackgroundFingerprint(attFp, 1))
	assert.Equal(t, int64(20), BackgroundFingerprint(attFp, 2))

	aagFp := Fingerprint(packString("AAG"), 3)
	require.Equal(t, int64(23), aagFp)
	assert.Equal(t, int64(7), BackgroundFingerprint(aagFp, 2))
}

func TestOffsetToRemove(t *testing.T) {
	assert.Equal(t, int64(0), OffsetToRemove(0))
	assert.Equal(t, int64(1), OffsetToRemove(1))
	assert.Equal(t, int64(1+4), OffsetToRemove(2))
	assert.Equal(t, int64(1+4+16), OffsetToRemove(3))
}

func TestValidateLength(t *testing.T) {
	assert.NoError(t, ValidateLength(0))
	assert.NoError(t, ValidateLength(MaxLength))
	assert.Error(t, ValidateLength(-1))
	assert.Error(t, ValidateLength(MaxLength+1))
}
