package container

import (
	"math"
	"sort"

	"github.com/grailbio/dvstar/kmer"
)

// summaryBlock mirrors the reference implementation's Min_max_node: the
// start index and maximum fingerprint of one summary block.
type summaryBlock struct {
	blockStart int
	max        int64
}

// SortedContainer is the primary C3 layout: a flat slice sorted by
// fingerprint, with a parallel summary array of block maxima that lets
// ordered dual iteration skip whole blocks on a mismatch (spec.md §4.2).
type SortedContainer struct {
	contexts []kmer.Context
	summary  []summaryBlock
	skipSize int
}

// NewSortedContainer sorts contexts by fingerprint and builds the
// skip-summary index over the result. contexts is not mutated in place by
// the caller afterward; NewSortedContainer takes ownership of the slice.
func NewSortedContainer(contexts []kmer.Context) *SortedContainer {
	sort.Slice(contexts, func(i, j int) bool { return kmer.Less(contexts[i], contexts[j]) })
	c := &SortedContainer{contexts: contexts}
	c.buildSummary()
	return c
}

func (c *SortedContainer) buildSummary() {
	n := len(c.contexts)
	if n == 0 {
		return
	}
	skip := int(math.Ceil(math.Log2(float64(n))))
	if skip <= 0 {
		skip = 1
	}
	c.skipSize = skip
	i := 0
	for ; i < n-skip; i += skip {
		c.summary = append(c.summary, summaryBlock{blockStart: i, max: c.contexts[i+skip-1].Fingerprint})
	}
	c.summary = append(c.summary, summaryBlock{blockStart: i, max: c.contexts[n-1].Fingerprint})
}

func (c *SortedContainer) Size() int { return len(c.contexts) }

func (c *SortedContainer) At(i int) kmer.Context { return c.contexts[i] }

// Find performs a binary search bounded above by fingerprint itself, matching
// the reference implementation's find (fingerprints are integer-coded so a
// context's own index can never exceed its fingerprint).
func (c *SortedContainer) Find(fingerprint int64) kmer.Context {
	lo, hi := 0, len(c.contexts)-1
	if int64(hi) > fingerprint {
		hi = int(fingerprint)
	}
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case c.contexts[mid].Fingerprint < fingerprint:
			lo = mid + 1
		case c.contexts[mid].Fingerprint > fingerprint:
			hi = mid - 1
		default:
			return c.contexts[mid]
		}
	}
	return kmer.Null
}

// findBlockStart returns the start index of the first summary block whose
// maximum fingerprint is >= target, scanning forward from placeInSummary
// (which monotonically advances within one Intersect call, since fingerprint
// order only moves forward). placeInSummary is local to the caller, never a
// struct field.
func (c *SortedContainer) findBlockStart(target int64, placeInSummary *int) int {
	for i := *placeInSummary; i < len(c.summary); i++ {
		if target <= c.summary[i].max {
			*placeInSummary = i
			return c.summary[i].blockStart
		}
	}
	return len(c.contexts)
}

// Intersect implements the skip-summary-accelerated ordered dual iteration
// of spec.md §4.2. Both sides' cursors (li, ri) and summary positions are
// local variables, so concurrent Intersect calls against the same
// SortedContainer never interfere.
func (c *SortedContainer) Intersect(other Container, yield func(l, r kmer.Context)) {
	oc, ok := other.(*SortedContainer)
	if !ok {
		DualIterate(c, other, yield)
		return
	}

	li, ri := 0, 0
	lSize, rSize := c.Size(), oc.Size()
	lPlace, rPlace := 0, 0

	for li < lSize && ri < rSize {
		l := c.contexts[li]
		r := oc.contexts[ri]
		switch {
		case l.Fingerprint == r.Fingerprint:
			yield(l, r)
			li++
			ri++
		case l.Fingerprint < r.Fingerprint:
			if c.summary[lPlace].max < r.Fingerprint {
				li = c.findBlockStart(r.Fingerprint, &lPlace)
			} else {
				for {
					li++
					if li >= lSize || c.contexts[li].Fingerprint >= r.Fingerprint {
						break
					}
				}
			}
		default:
			if oc.summary[rPlace].max < l.Fingerprint {
				ri = oc.findBlockStart(l.Fingerprint, &rPlace)
			} else {
				for {
					ri++
					if ri >= rSize || oc.contexts[ri].Fingerprint >= l.Fingerprint {
						break
					}
				}
			}
		}
	}
}
