package driver

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/dvstar/config"
	"github.com/grailbio/dvstar/vlmcio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, bases string, counts [4]uint64) {
	var buf bytes.Buffer
	vlmcio.WriteRecord(&buf, bases, counts)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644))
}

func baseOpts(t *testing.T, mode config.Mode) config.Options {
	return config.Options{
		BackgroundOrder: 0,
		PseudoCount:     1.0,
		Parallelism:     2,
		Mode:            mode,
		SetSize:         -1,
	}
}

func TestRunPairMajorTwoCollectionsProducesFullMatrix(t *testing.T) {
	leftDir, rightDir := t.TempDir(), t.TempDir()
	writeFixture(t, leftDir, "a.bin", "AC", [4]uint64{3, 1, 1, 1})
	writeFixture(t, leftDir, "b.bin", "AG", [4]uint64{1, 3, 1, 1})
	writeFixture(t, rightDir, "c.bin", "AT", [4]uint64{1, 1, 3, 1})

	opts := baseOpts(t, config.PairMajor)
	opts.Left, opts.Right = leftDir, rightDir
	out, err := Run(vcontext.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 1, out.Cols())
	for i := 0; i < out.Rows(); i++ {
		for j := 0; j < out.Cols(); j++ {
			v := out.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestRunPairMajorSingleCollectionIsTriangular(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.bin", "AC", [4]uint64{3, 1, 1, 1})
	writeFixture(t, dir, "b.bin", "AG", [4]uint64{1, 3, 1, 1})
	writeFixture(t, dir, "c.bin", "AT", [4]uint64{1, 1, 3, 1})

	opts := baseOpts(t, config.PairMajor)
	opts.Left = dir
	out, err := Run(vcontext.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 3, out.Rows())
	require.Equal(t, 3, out.Cols())
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			assert.Equal(t, 0.0, out.At(i, j), "(%d,%d)", i, j)
		}
	}
}

func TestRunReusesCacheDirAcrossInvocations(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.bin", "AC", [4]uint64{3, 1, 1, 1})
	writeFixture(t, dir, "b.bin", "AG", [4]uint64{1, 3, 1, 1})
	cacheDir := t.TempDir()

	opts := baseOpts(t, config.PairMajor)
	opts.Left = dir
	opts.CacheDir = cacheDir

	first, err := Run(vcontext.Background(), opts)
	require.NoError(t, err)

	entries, err := ioutil.ReadDir(cacheDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	second, err := Run(vcontext.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, first.Rows(), second.Rows())
	require.Equal(t, first.Cols(), second.Cols())
	for i := 0; i < first.Rows(); i++ {
		for j := 0; j < first.Cols(); j++ {
			assert.Equal(t, first.At(i, j), second.At(i, j), "(%d,%d)", i, j)
		}
	}
}

func TestRunKmerMajorAgreesWithPairMajor(t *testing.T) {
	leftDir, rightDir := t.TempDir(), t.TempDir()
	writeFixture(t, leftDir, "a.bin", "AC", [4]uint64{3, 1, 1, 1})
	writeFixture(t, leftDir, "b.bin", "AG", [4]uint64{1, 3, 1, 1})
	writeFixture(t, rightDir, "c.bin", "AT", [4]uint64{1, 1, 3, 1})
	writeFixture(t, rightDir, "d.bin", "AC", [4]uint64{3, 1, 1, 1})

	pairOpts := baseOpts(t, config.PairMajor)
	pairOpts.Left, pairOpts.Right = leftDir, rightDir
	pairOut, err := Run(vcontext.Background(), pairOpts)
	require.NoError(t, err)

	kmerOpts := baseOpts(t, config.KmerMajor)
	kmerOpts.Left, kmerOpts.Right = leftDir, rightDir
	kmerOut, err := Run(vcontext.Background(), kmerOpts)
	require.NoError(t, err)

	require.Equal(t, pairOut.Rows(), kmerOut.Rows())
	require.Equal(t, pairOut.Cols(), kmerOut.Cols())
	for i := 0; i < pairOut.Rows(); i++ {
		for j := 0; j < pairOut.Cols(); j++ {
			assert.InDelta(t, pairOut.At(i, j), kmerOut.At(i, j), 1e-9, "(%d,%d)", i, j)
		}
	}
}
