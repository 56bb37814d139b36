// Package kmer defines the VLMC context record (C1): a fingerprint, its
// length, and the four background-order-adjusted next-symbol probabilities.
package kmer

import "github.com/pkg/errors"

// MaxLength is the largest context length the on-disk format can represent
// (spec: 0 <= length <= 255). Fingerprints for lengths beyond ~31 overflow
// int64, the same way the reference implementation's 32-bit integer_rep
// overflows for long contexts; this only affects contexts far longer than
// any background_order used in practice.
const MaxLength = 255

// Context is a single VLMC node.
type Context struct {
	Fingerprint int64
	Length      int
	Probs       [4]float64
	IsNull      bool
}

// Null is the sentinel context returned by a failed lookup.
var Null = Context{IsNull: true}

// Code is a 2-bit nucleotide code: A=0, C=1, G=2, T=3.
type Code uint8

const (
	CodeA Code = 0
	CodeC Code = 1
	CodeG Code = 2
	CodeT Code = 3
)

// ExtractCode returns the 2-bit code at position pos (0-indexed from the
// start of the context) out of data, which packs up to 128 characters into
// four 64-bit words, high bits first within each word.
//
// WARNING: does not validate pos against length; callers must only ask for
// positions within the context being decoded.
func ExtractCode(data [4]uint64, pos int) Code {
	row := pos >> 5
	posInRow := uint(pos & 31)
	shift := 62 - posInRow*2
	return Code((data[row] >> shift) & 3)
}

// Fingerprint computes the integer fingerprint of a context of the given
// length from its packed 2-bit data, per spec.md §3:
//
//	fingerprint = sum_{i=0}^{L-1} (two_bit(c_i)+1) * 4^(L-1-i)
//
// The empty context (length 0) has fingerprint 0.
func Fingerprint(data [4]uint64, length int) int64 {
	var value int64
	offset := int64(1)
	for i := length - 1; i >= 0; i-- {
		value += (int64(ExtractCode(data, i)) + 1) * offset
		offset *= 4
	}
	return value
}

// BackgroundFingerprint maps a context's fingerprint to the fingerprint of
// its length-`order` suffix, by peeling one base-4 digit at a time off the
// low end of fingerprint. See spec.md §9.
func BackgroundFingerprint(fingerprint int64, order int) int64 {
	var backRep int64
	i := int64(1)
	f := fingerprint
	for o := 0; o < order; o++ {
		r := f % 4
		if r == 0 {
			r = 4
		}
		f = (f - r) / 4
		backRep += r * i
		i *= 4
	}
	return backRep
}

// OffsetToRemove is the background-cache index offset: the count of
// contexts strictly shorter than `order`, i.e. sum_{i=0}^{order-1} 4^i.
func OffsetToRemove(order int) int64 {
	var offset int64
	p := int64(1)
	for i := 0; i < order; i++ {
		offset += p
		p *= 4
	}
	return offset
}

// ValidateLength rejects lengths the on-disk format cannot represent.
func ValidateLength(length int) error {
	if length < 0 || length > MaxLength {
		return errors.Errorf("kmer: context length %d out of range [0, %d]", length, MaxLength)
	}
	return nil
}

// Less orders contexts by fingerprint, matching the reference
// implementation's RI_Kmer::operator< and making contexts sortable for the
// sorted-array container layout.
func Less(a, b Context) bool { return a.Fingerprint < b.Fingerprint }
