package matrix

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenseSetAt(t *testing.T) {
	m := NewDense(2, 3)
	m.Set(0, 2, 0.5)
	m.Set(1, 0, 0.25)
	assert.Equal(t, 0.5, m.At(0, 2))
	assert.Equal(t, 0.25, m.At(1, 0))
	assert.Equal(t, 0.0, m.At(0, 0))
}

func TestDenseDumpTSV(t *testing.T) {
	m := NewDense(2, 2)
	m.Set(0, 0, 0)
	m.Set(0, 1, 0.5)
	m.Set(1, 0, 0.5)
	m.Set(1, 1, 0)

	var buf bytes.Buffer
	require.NoError(t, m.DumpTSV(&buf))
	assert.Equal(t, "0\t0.5\n0.5\t0\n", buf.String())
}

func TestDenseString(t *testing.T) {
	m := NewDense(1, 1)
	m.Set(0, 0, 1)
	assert.Contains(t, m.String(), "1.000000")
}
