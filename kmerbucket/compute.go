package kmerbucket

import (
	"encoding/binary"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/dvstar/distance"
	"github.com/grailbio/dvstar/matrix"
)

// shardFor deterministically assigns a fingerprint to one of numShards
// worker-local shards, the same seahash-based sharding idiom as
// encoding/bamprovider/concurrentmap.go's mate table.
func shardFor(fingerprint int64, numShards int) int {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(fingerprint))
	return int(seahash.Sum64(key[:]) % uint64(numShards))
}

// ComputeMajor runs the k-mer-major algorithm of spec.md §4.6: for every
// fingerprint shared between left and right, every (left entry, right
// entry) pair accumulates into DP/LN/RN at [l.VLMCIndex, r.VLMCIndex].
// Fingerprints are partitioned across parallelism worker shards; each
// worker accumulates into its own thread-local DP/LN/RN matrices of the
// full rows x cols shape, and the driver sums the per-worker matrices
// after traverse.Each returns — never while workers are still running —
// so no cell is ever written concurrently by two goroutines. Only this
// thread-local variant is implemented; the spec's unsynchronized
// single-accumulator variant is documented as buggy and intentionally not
// ported (see DESIGN.md).
func ComputeMajor(left, right Bucket, rows, cols, parallelism int) matrix.Dense {
	if parallelism < 1 {
		parallelism = 1
	}

	keys := make([]int64, 0, len(left))
	for fp := range left {
		keys = append(keys, fp)
	}

	shardKeys := make([][]int64, parallelism)
	for _, fp := range keys {
		s := shardFor(fp, parallelism)
		shardKeys[s] = append(shardKeys[s], fp)
	}

	localDP := make([]matrix.Dense, parallelism)
	localLN := make([]matrix.Dense, parallelism)
	localRN := make([]matrix.Dense, parallelism)

	_ = traverse.Each(parallelism, func(w int) error {
		dp := matrix.NewDense(rows, cols)
		ln := matrix.NewDense(rows, cols)
		rn := matrix.NewDense(rows, cols)
		for _, fp := range shardKeys[w] {
			rightEntries, ok := right[fp]
			if !ok {
				continue
			}
			for _, l := range left[fp] {
				for _, r := range rightEntries {
					var dpSum, lnSum, rnSum float64
					for k := 0; k < 4; k++ {
						dpSum += l.Context.Probs[k] * r.Context.Probs[k]
						lnSum += l.Context.Probs[k] * l.Context.Probs[k]
						rnSum += r.Context.Probs[k] * r.Context.Probs[k]
					}
					dp.Set(l.VLMCIndex, r.VLMCIndex, dp.At(l.VLMCIndex, r.VLMCIndex)+dpSum)
					ln.Set(l.VLMCIndex, r.VLMCIndex, ln.At(l.VLMCIndex, r.VLMCIndex)+lnSum)
					rn.Set(l.VLMCIndex, r.VLMCIndex, rn.At(l.VLMCIndex, r.VLMCIndex)+rnSum)
				}
			}
		}
		localDP[w] = dp
		localLN[w] = ln
		localRN[w] = rn
		return nil
	})

	dp := matrix.NewDense(rows, cols)
	ln := matrix.NewDense(rows, cols)
	rn := matrix.NewDense(rows, cols)
	for w := 0; w < parallelism; w++ {
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				dp.Set(i, j, dp.At(i, j)+localDP[w].At(i, j))
				ln.Set(i, j, ln.At(i, j)+localLN[w].At(i, j))
				rn.Set(i, j, rn.At(i, j)+localRN[w].At(i, j))
			}
		}
	}

	out := matrix.NewDense(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, distance.Normalise(dp.At(i, j), ln.At(i, j), rn.At(i, j)))
		}
	}
	return out
}
