// Package vlmcio deserializes the on-disk VLMC context format (C2): a flat
// stream of fixed-size binary records, no framing header, each describing
// one context and its next-symbol counts.
package vlmcio

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/grailbio/dvstar/kmer"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// DefaultPseudoCount is α in the next-symbol probability estimate, matching
// the reference implementation's pseudo_count_amount.
const DefaultPseudoCount = 1.0

// rawRecord is one on-disk record, in field order. Divergence, row count and
// the flag bytes are parsed but unused downstream, matching spec.md §6.
type rawRecord struct {
	data       [4]uint64
	count      uint64
	nextCounts [4]uint64
	length     uint32
}

var gzipMagic = [2]byte{0x1f, 0x8b}

// openStream wraps r, transparently gunzipping it if it begins with the
// gzip magic, matching encoding/bam/shardedbam.go's bgzf auto-detection.
func openStream(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "vlmcio: peeking stream header")
	}
	if len(magic) == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "vlmcio: opening gzip stream")
		}
		return gr, nil
	}
	return br, nil
}

// readRecord reads one raw record from r. It returns io.EOF, unwrapped, only
// when the stream ends cleanly between records; any other read failure,
// including a truncated record, is wrapped as a load error.
func readRecord(r io.Reader) (rawRecord, error) {
	var rec rawRecord
	if err := binary.Read(r, binary.LittleEndian, &rec.data); err != nil {
		if err == io.EOF {
			return rawRecord{}, io.EOF
		}
		return rawRecord{}, errors.Wrap(err, "vlmcio: reading kmer data words")
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.count); err != nil {
		return rawRecord{}, errors.Wrap(err, "vlmcio: reading count (truncated record)")
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.nextCounts); err != nil {
		return rawRecord{}, errors.Wrap(err, "vlmcio: reading next-symbol counts (truncated record)")
	}
	var divergence float64
	if err := binary.Read(r, binary.LittleEndian, &divergence); err != nil {
		return rawRecord{}, errors.Wrap(err, "vlmcio: reading divergence (truncated record)")
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.length); err != nil {
		return rawRecord{}, errors.Wrap(err, "vlmcio: reading length (truncated record)")
	}
	var rowCount uint32
	if err := binary.Read(r, binary.LittleEndian, &rowCount); err != nil {
		return rawRecord{}, errors.Wrap(err, "vlmcio: reading row count (truncated record)")
	}
	var flags [3]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return rawRecord{}, errors.Wrap(err, "vlmcio: reading flag bytes (truncated record)")
	}
	return rec, nil
}

// toContext converts a raw record into a context record, applying
// pseudo-count smoothing but not yet the background-order adjustment
// (spec.md §4.1 steps 2-4 are split across the caller).
func toContext(rec rawRecord, pseudoCount float64) (kmer.Context, error) {
	if err := kmer.ValidateLength(int(rec.length)); err != nil {
		return kmer.Context{}, err
	}
	var total float64
	for _, c := range rec.nextCounts {
		total += float64(c)
	}
	total += 4 * pseudoCount
	var probs [4]float64
	for i, c := range rec.nextCounts {
		probs[i] = (float64(c) + pseudoCount) / total
	}
	return kmer.Context{
		Fingerprint: kmer.Fingerprint(rec.data, int(rec.length)),
		Length:      int(rec.length),
		Probs:       probs,
	}, nil
}
