// Package distance implements the dvstar angular distance kernel (C4): the
// normalized cosine-like dissimilarity between two VLMCs.
package distance

import (
	"math"

	"github.com/grailbio/dvstar/container"
	"github.com/grailbio/dvstar/kmer"
)

// Dvstar computes the angular distance between left and right by
// dual-iterating their shared contexts and normalizing the accumulated dot
// product and norms (spec.md §4.3). It is pure and stateless: safe to call
// concurrently from any number of goroutines against read-only containers.
func Dvstar(left, right container.Container) float64 {
	var dp, ln, rn float64
	left.Intersect(right, func(l, r kmer.Context) {
		for k := 0; k < 4; k++ {
			dp += l.Probs[k] * r.Probs[k]
			ln += l.Probs[k] * l.Probs[k]
			rn += r.Probs[k] * r.Probs[k]
		}
	})
	return Normalise(dp, ln, rn)
}

// Normalise applies the bit-exact normalization contract of spec.md §4.3 to
// a raw (dot product, left norm-squared, right norm-squared) triple: a zero
// norm on either side maps to the maximal distance 1.0, and an
// out-of-[-1,1] arccos argument (a floating-point artifact for
// near-identical VLMCs) maps to the minimal distance 0.0.
func Normalise(dp, ln, rn float64) float64 {
	lnRoot := math.Sqrt(ln)
	rnRoot := math.Sqrt(rn)
	if lnRoot == 0 || rnRoot == 0 {
		return 1.0
	}
	d := dp / (lnRoot * rnRoot)
	angular := 2 * math.Acos(d) / math.Pi
	if math.IsNaN(angular) {
		return 0.0
	}
	return angular
}
