package container

import (
	"encoding/binary"
	"sort"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/dvstar/kmer"
)

// nHashShards is the shard count, matching fusion/kmer_index.go's 256-way
// farmhash sharding scheme, minus its unsafe-pointer/madvise memory layout
// (DESIGN.md explains why that part doesn't transfer).
const nHashShards = 256

// HashContainer is the hash-map alternate C3 layout: fingerprints are
// FarmHash-sharded into nHashShards buckets, each a plain map, trading
// point-lookup speed for the simplicity of Go's native map (spec.md §4.2
// permits any layout that preserves the container contracts).
type HashContainer struct {
	shards [nHashShards]map[int64]kmer.Context
	sorted []kmer.Context // fingerprint order, for Size/At/Intersect
}

func shardFor(fingerprint int64) int {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(fingerprint))
	return int(farm.Hash64(key[:]) % nHashShards)
}

// NewHashContainer builds a HashContainer over contexts.
func NewHashContainer(contexts []kmer.Context) *HashContainer {
	h := &HashContainer{}
	for i := range h.shards {
		h.shards[i] = make(map[int64]kmer.Context)
	}
	for _, ctx := range contexts {
		h.shards[shardFor(ctx.Fingerprint)][ctx.Fingerprint] = ctx
	}
	sorted := make([]kmer.Context, len(contexts))
	copy(sorted, contexts)
	sort.Slice(sorted, func(i, j int) bool { return kmer.Less(sorted[i], sorted[j]) })
	h.sorted = sorted
	return h
}

func (h *HashContainer) Size() int { return len(h.sorted) }

func (h *HashContainer) At(i int) kmer.Context { return h.sorted[i] }

func (h *HashContainer) Find(fingerprint int64) kmer.Context {
	if ctx, ok := h.shards[shardFor(fingerprint)][fingerprint]; ok {
		return ctx
	}
	return kmer.Null
}

// Intersect has no summary structure to exploit, so it delegates to the
// generic O(n+m) two-pointer walk over the sorted backing slice.
func (h *HashContainer) Intersect(other Container, yield func(l, r kmer.Context)) {
	DualIterate(h, other, yield)
}
