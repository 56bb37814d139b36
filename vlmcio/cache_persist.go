package vlmcio

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/golang/snappy"
	"github.com/grailbio/dvstar/kmer"
	"github.com/pkg/errors"
)

// SaveBackgroundCache persists a BackgroundCache to path as a snappy-framed
// file, so a repeated run at the same background_order over the same
// collection can skip re-deriving it. Purely a performance cache: it is
// never required for correctness.
func SaveBackgroundCache(path string, cache *BackgroundCache) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "vlmcio: creating background cache file")
	}
	w := snappy.NewBufferedWriter(f)
	if err := binary.Write(w, binary.LittleEndian, int64(cache.order)); err != nil {
		f.Close()
		return errors.Wrap(err, "vlmcio: writing background cache order")
	}
	if err := binary.Write(w, binary.LittleEndian, int64(len(cache.probs))); err != nil {
		f.Close()
		return errors.Wrap(err, "vlmcio: writing background cache size")
	}
	for i, probs := range cache.probs {
		if err := binary.Write(w, binary.LittleEndian, cache.filled[i]); err != nil {
			f.Close()
			return errors.Wrap(err, "vlmcio: writing background cache entry flag")
		}
		if err := binary.Write(w, binary.LittleEndian, probs); err != nil {
			f.Close()
			return errors.Wrap(err, "vlmcio: writing background cache entry")
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return errors.Wrap(err, "vlmcio: closing snappy writer")
	}
	return f.Close()
}

// LoadBackgroundCache restores a BackgroundCache previously written by
// SaveBackgroundCache.
func LoadBackgroundCache(path string) (*BackgroundCache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "vlmcio: opening background cache file")
	}
	defer f.Close()
	r := snappy.NewReader(bufio.NewReader(f))

	var order, size int64
	if err := binary.Read(r, binary.LittleEndian, &order); err != nil {
		return nil, errors.Wrap(err, "vlmcio: reading background cache order")
	}
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, errors.Wrap(err, "vlmcio: reading background cache size")
	}
	cache := &BackgroundCache{
		order:  int(order),
		offset: kmer.OffsetToRemove(int(order)),
		probs:  make([][4]float64, size),
		filled: make([]bool, size),
	}
	for i := int64(0); i < size; i++ {
		if err := binary.Read(r, binary.LittleEndian, &cache.filled[i]); err != nil {
			return nil, errors.Wrap(err, "vlmcio: reading background cache entry flag")
		}
		if err := binary.Read(r, binary.LittleEndian, &cache.probs[i]); err != nil {
			return nil, errors.Wrap(err, "vlmcio: reading background cache entry")
		}
	}
	return cache, nil
}
