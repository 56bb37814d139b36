// Package matrix holds the dense distance-matrix output type, adapted from
// the teacher's row-major edit-distance matrix into a float64 result
// container for the dvstar angular distance.
package matrix

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dense represents a rows x cols matrix of distances, row-major.
type Dense struct {
	nRow, nCol int
	data       []float64
}

// NewDense returns a rows x cols matrix, all entries zero.
func NewDense(rows, cols int) Dense {
	return Dense{
		nRow: rows,
		nCol: cols,
		data: make([]float64, rows*cols),
	}
}

// Rows returns the row count.
func (m Dense) Rows() int { return m.nRow }

// Cols returns the column count.
func (m Dense) Cols() int { return m.nCol }

// At returns the entry at (i, j).
func (m Dense) At(i, j int) float64 { return m.data[i*m.nCol+j] }

// Set assigns the entry at (i, j). Safe for concurrent callers writing
// disjoint cells (spec.md §5's shared-resource policy).
func (m Dense) Set(i, j int, v float64) { m.data[i*m.nCol+j] = v }

// String returns a human-readable representation of the matrix.
func (m Dense) String() (r string) {
	maxLength := 0
	for _, d := range m.data {
		if l := len(strconv.FormatFloat(d, 'f', 6, 64)); l > maxLength {
			maxLength = l
		}
	}

	lines := []string{"\n"}
	for i := 0; i < m.nRow; i++ {
		var parts []string
		for j := 0; j < m.nCol; j++ {
			parts = append(parts, fmt.Sprintf("%0*s", maxLength, strconv.FormatFloat(m.At(i, j), 'f', 6, 64)))
		}
		lines = append(lines, strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}

// DumpTSV writes the matrix as tab-separated rows of floats: a minimal,
// dependency-free stand-in for the external HDF5 writer the spec places out
// of scope (spec.md §6's Output).
func (m Dense) DumpTSV(w io.Writer) error {
	for i := 0; i < m.nRow; i++ {
		parts := make([]string, m.nCol)
		for j := 0; j < m.nCol; j++ {
			parts[j] = strconv.FormatFloat(m.At(i, j), 'f', -1, 64)
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, "\t")); err != nil {
			return err
		}
	}
	return nil
}
