// Package kmerbucket implements the k-mer-major engine (C7): an alternate
// computation mode that transposes pairwise iteration into "for each shared
// context fingerprint, update every VLMC pair that contains it."
package kmerbucket

import (
	"github.com/grailbio/dvstar/container"
	"github.com/grailbio/dvstar/kmer"
)

// Entry pairs a context with the index of the VLMC it came from, mirroring
// the reference implementation's Kmer_Pair.
type Entry struct {
	VLMCIndex int
	Context   kmer.Context
}

// Bucket maps a context fingerprint to every (VLMC index, context) pair
// sharing it across a collection, aggregating the reference's Kmer_Cluster.
// The order of entries within one fingerprint's slice is irrelevant
// (spec.md §3).
type Bucket map[int64][]Entry

// Bucketize re-expresses a loaded collection as a fingerprint -> entries
// mapping (spec.md §4.6's "left and right collections are each re-expressed
// as a mapping").
func Bucketize(collection []container.Container) Bucket {
	b := make(Bucket)
	for idx, c := range collection {
		for i := 0; i < c.Size(); i++ {
			ctx := c.At(i)
			b[ctx.Fingerprint] = append(b[ctx.Fingerprint], Entry{VLMCIndex: idx, Context: ctx})
		}
	}
	return b
}
