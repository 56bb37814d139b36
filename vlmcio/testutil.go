package vlmcio

import (
	"bytes"
	"encoding/binary"
)

// WriteRecord appends one on-disk record to buf, matching spec.md §6's
// binary layout exactly. It is exported so other packages' tests can
// synthesize fixture files without a literal NCBI-derived binary blob.
func WriteRecord(buf *bytes.Buffer, bases string, nextCounts [4]uint64) {
	var data [4]uint64
	codes := map[byte]uint64{'A': 0, 'C': 1, 'G': 2, 'T': 3}
	for i := 0; i < len(bases); i++ {
		row := i / 32
		shift := 62 - uint(i%32)*2
		data[row] |= codes[bases[i]] << shift
	}
	binary.Write(buf, binary.LittleEndian, data)
	var count uint64
	for _, c := range nextCounts {
		count += c
	}
	binary.Write(buf, binary.LittleEndian, count)
	binary.Write(buf, binary.LittleEndian, nextCounts)
	binary.Write(buf, binary.LittleEndian, float64(0)) // divergence, unused
	binary.Write(buf, binary.LittleEndian, uint32(len(bases)))
	rowCount := uint32((len(bases) + 31) / 32)
	if rowCount == 0 {
		rowCount = 1
	}
	binary.Write(buf, binary.LittleEndian, rowCount)
	buf.Write([]byte{0, 0, 0}) // flags, unused
}
