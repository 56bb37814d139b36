package vlmcio

import (
	"bytes"
	"compress/gzip"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileNoBackground(t *testing.T) {
	var buf bytes.Buffer
	WriteRecord(&buf, "AC", [4]uint64{3, 1, 0, 0})

	ctxs, err := LoadFile(&buf, Options{BackgroundOrder: 0})
	require.NoError(t, err)
	require.Len(t, ctxs, 1)
	require.Equal(t, 2, ctxs[0].Length)

	total := 3.0 + 1 + 0 + 0 + 4
	assert.InDelta(t, (3+1)/total, ctxs[0].Probs[0], 1e-9)
	assert.InDelta(t, (1+1)/total, ctxs[0].Probs[1], 1e-9)
	assert.InDelta(t, (0+1)/total, ctxs[0].Probs[2], 1e-9)
	assert.InDelta(t, (0+1)/total, ctxs[0].Probs[3], 1e-9)
}

func TestLoadFileBackgroundCacheHit(t *testing.T) {
	var buf bytes.Buffer
	// The order-1 background context "A" (length == background_order).
	WriteRecord(&buf, "A", [4]uint64{10, 0, 0, 0})
	// A retained context whose order-1 suffix is "A".
	WriteRecord(&buf, "CA", [4]uint64{1, 1, 1, 1})

	ctxs, err := LoadFile(&buf, Options{BackgroundOrder: 1})
	require.NoError(t, err)
	require.Len(t, ctxs, 1)

	bgTotal := 10.0 + 4
	bgProbA := (10 + 1) / bgTotal
	raw := (1.0 + 1) / (1 + 1 + 1 + 1 + 4)
	assert.InDelta(t, raw/math.Sqrt(bgProbA), ctxs[0].Probs[0], 1e-9)
}

func TestLoadFileBackgroundCacheMissYieldsZero(t *testing.T) {
	var buf bytes.Buffer
	// No order-1 background record for "A" at all.
	WriteRecord(&buf, "AA", [4]uint64{1, 1, 1, 1})

	ctxs, err := LoadFile(&buf, Options{BackgroundOrder: 1})
	require.NoError(t, err)
	require.Len(t, ctxs, 1)
	for k := 0; k < 4; k++ {
		assert.Equal(t, 0.0, ctxs[0].Probs[k])
	}
}

func TestLoadFileGzip(t *testing.T) {
	var raw bytes.Buffer
	WriteRecord(&raw, "GT", [4]uint64{1, 2, 3, 4})

	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	_, err := w.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ctxs, err := LoadFile(&gz, Options{BackgroundOrder: 0})
	require.NoError(t, err)
	require.Len(t, ctxs, 1)
}

func TestLoadFileTruncatedRecordErrors(t *testing.T) {
	var buf bytes.Buffer
	WriteRecord(&buf, "AC", [4]uint64{1, 1, 1, 1})
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-5])
	_, err := LoadFile(truncated, Options{BackgroundOrder: 0})
	assert.Error(t, err)
}

func TestLoadFileReusesCachePathAcrossCalls(t *testing.T) {
	cachePath := t.TempDir() + "/a.bgcache"

	first := func() []byte {
		var buf bytes.Buffer
		WriteRecord(&buf, "A", [4]uint64{10, 0, 0, 0})
		WriteRecord(&buf, "CA", [4]uint64{1, 1, 1, 1})
		return buf.Bytes()
	}()

	ctxs, err := LoadFile(bytes.NewReader(first), Options{BackgroundOrder: 1, CachePath: cachePath})
	require.NoError(t, err)
	require.Len(t, ctxs, 1)
	if _, statErr := os.Stat(cachePath); statErr != nil {
		t.Fatalf("expected LoadFile to persist a background cache at %s: %v", cachePath, statErr)
	}

	// Second load of a file whose background record ("A") is missing: if the
	// persisted cache from the first call were not reused, this would fall
	// back to a cache miss (probability 0) instead of the value derived
	// above.
	var second bytes.Buffer
	WriteRecord(&second, "CA", [4]uint64{1, 1, 1, 1})

	ctxs, err = LoadFile(&second, Options{BackgroundOrder: 1, CachePath: cachePath})
	require.NoError(t, err)
	require.Len(t, ctxs, 1)

	bgTotal := 10.0 + 4
	bgProbA := (10 + 1) / bgTotal
	raw := (1.0 + 1) / (1 + 1 + 1 + 1 + 4)
	assert.InDelta(t, raw/math.Sqrt(bgProbA), ctxs[0].Probs[0], 1e-9)
}

func TestLoadFileIgnoresCacheAtDifferentOrder(t *testing.T) {
	cachePath := t.TempDir() + "/a.bgcache"

	var buf bytes.Buffer
	WriteRecord(&buf, "A", [4]uint64{10, 0, 0, 0})
	WriteRecord(&buf, "CA", [4]uint64{1, 1, 1, 1})
	_, err := LoadFile(&buf, Options{BackgroundOrder: 1, CachePath: cachePath})
	require.NoError(t, err)

	var other bytes.Buffer
	WriteRecord(&other, "AAA", [4]uint64{1, 1, 1, 1})
	ctxs, err := LoadFile(&other, Options{BackgroundOrder: 2, CachePath: cachePath})
	require.NoError(t, err)
	require.Len(t, ctxs, 1)
}

func TestSaveLoadBackgroundCacheRoundTrip(t *testing.T) {
	cache := newBackgroundCache(1)
	cache.set(1, [4]float64{0.1, 0.2, 0.3, 0.4})

	path := t.TempDir() + "/cache.snappy"
	require.NoError(t, SaveBackgroundCache(path, cache))

	restored, err := LoadBackgroundCache(path)
	require.NoError(t, err)
	probs, ok := restored.lookup(1)
	require.True(t, ok)
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 0.4}, probs)
}
