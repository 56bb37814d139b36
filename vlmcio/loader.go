package vlmcio

import (
	"io"
	"math"
	"os"

	"github.com/grailbio/base/log"
	"github.com/grailbio/dvstar/kmer"
)

// BackgroundCache holds the next-symbol probabilities of every context whose
// length equals the background order, indexed by fingerprint -
// OffsetToRemove(order).
// It is scoped per file load and discarded once normalization is applied
// (spec.md §5's "shared-resource policy").
type BackgroundCache struct {
	order  int
	offset int64
	probs  [][4]float64
	filled []bool
}

func newBackgroundCache(order int) *BackgroundCache {
	size := 1
	for i := 0; i < order; i++ {
		size *= 4
	}
	return &BackgroundCache{
		order:  order,
		offset: kmer.OffsetToRemove(order),
		probs:  make([][4]float64, size),
		filled: make([]bool, size),
	}
}

func (c *BackgroundCache) set(fingerprint int64, probs [4]float64) {
	idx := fingerprint - c.offset
	if idx < 0 || int(idx) >= len(c.probs) {
		return
	}
	c.probs[idx] = probs
	c.filled[idx] = true
}

// lookup returns the cached probabilities for the background-order suffix
// identified by fingerprint, and whether the cache held an entry for it. A
// cache miss (false) means the caller must treat every channel as a
// background probability of zero, per spec.md §4.1's documented edge case.
func (c *BackgroundCache) lookup(fingerprint int64) ([4]float64, bool) {
	idx := fingerprint - c.offset
	if idx < 0 || int(idx) >= len(c.probs) || !c.filled[idx] {
		return [4]float64{}, false
	}
	return c.probs[idx], true
}

// Options configures a single LoadFile call.
type Options struct {
	BackgroundOrder int
	PseudoCount     float64
	// CachePath, if non-empty, is a snappy-framed background-cache file
	// (SaveBackgroundCache/LoadBackgroundCache). LoadFile reuses it instead
	// of re-deriving the background cache from this file's own records when
	// its order matches BackgroundOrder, and (re)writes it after a fresh
	// derivation so the next LoadFile call against the same path is cheaper.
	// A missing, unreadable or order-mismatched cache file is treated as a
	// miss, not an error: the cache is purely a performance optimization.
	CachePath string
}

// LoadFile streams one VLMC file (spec.md §4.1), returning the contexts
// above the background order with their probabilities background-adjusted.
// Records at or below the background order are not returned; those whose
// length equals the background order populate the background cache.
//
// The stream is read in two phases, since a background-order entry may
// appear anywhere in the file relative to the contexts it normalizes:
// phase one drains the whole stream, splitting records between the cache
// and a pending list; phase two divides each pending context's probabilities
// by the square root of its background suffix's probabilities.
func LoadFile(r io.Reader, opts Options) ([]kmer.Context, error) {
	pseudoCount := opts.PseudoCount
	if pseudoCount == 0 {
		pseudoCount = DefaultPseudoCount
	}
	stream, err := openStream(r)
	if err != nil {
		return nil, err
	}

	cache, reused := loadCache(opts.CachePath, opts.BackgroundOrder)
	var pending []kmer.Context

	for {
		rec, err := readRecord(stream)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ctx, err := toContext(rec, pseudoCount)
		if err != nil {
			return nil, err
		}
		if ctx.Length <= opts.BackgroundOrder {
			if !reused && ctx.Length+1 > opts.BackgroundOrder {
				cache.set(ctx.Fingerprint, ctx.Probs)
			}
			continue
		}
		pending = append(pending, ctx)
	}

	if !reused && opts.CachePath != "" {
		if err := SaveBackgroundCache(opts.CachePath, cache); err != nil {
			log.Error.Printf("vlmcio: writing background cache %s: %v", opts.CachePath, err)
		}
	}

	for i := range pending {
		applyBackground(&pending[i], cache, opts.BackgroundOrder)
	}
	return pending, nil
}

// loadCache returns the background cache to populate this load with, and
// whether it was reused from an existing cachePath rather than built fresh.
// Any failure to reuse (missing file, corrupt contents, order mismatch)
// falls back to a fresh cache silently at debug level, since CachePath is
// purely an optimization.
func loadCache(cachePath string, order int) (*BackgroundCache, bool) {
	if cachePath != "" {
		if _, err := os.Stat(cachePath); err == nil {
			cache, err := LoadBackgroundCache(cachePath)
			if err != nil {
				log.Debug.Printf("vlmcio: discarding unreadable background cache %s: %v", cachePath, err)
			} else if cache.order != order {
				log.Debug.Printf("vlmcio: discarding background cache %s: order %d != requested %d", cachePath, cache.order, order)
			} else {
				return cache, true
			}
		}
	}
	return newBackgroundCache(order), false
}

// applyBackground divides ctx's probabilities by the square root of its
// background-order suffix's cached probabilities (spec.md §4.1 step 4). A
// cache miss yields probability 0 for the affected channel rather than
// dividing by zero, per spec.md §4.1's documented failure mode.
func applyBackground(ctx *kmer.Context, cache *BackgroundCache, order int) {
	backFp := kmer.BackgroundFingerprint(ctx.Fingerprint, order)
	bgProbs, ok := cache.lookup(backFp)
	for k := 0; k < 4; k++ {
		if !ok || bgProbs[k] <= 0 {
			ctx.Probs[k] = 0
			continue
		}
		ctx.Probs[k] /= math.Sqrt(bgProbs[k])
	}
}
