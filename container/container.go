// Package container implements the searchable VLMC container (C3): a set of
// context records ordered by fingerprint, supporting ordered dual iteration
// (the primary access pattern used by the distance kernel) and point lookup.
package container

import "github.com/grailbio/dvstar/kmer"

// Container is the common interface across the sorted-array, hash-map and
// ordered-tree layouts. All three preserve the same contracts: size,
// fingerprint-ordered iteration via At, point lookup via Find, and ordered
// dual iteration via Intersect. The choice of layout does not affect numeric
// results (spec.md §4.2).
type Container interface {
	// Size returns the number of contexts held.
	Size() int
	// At returns the i'th context in fingerprint order.
	At(i int) kmer.Context
	// Find returns the context with the given fingerprint, or kmer.Null if
	// absent.
	Find(fingerprint int64) kmer.Context
	// Intersect dual-iterates this container and other in fingerprint
	// order, invoking yield once per matching fingerprint. Any iteration
	// state Intersect needs is local to the call — never a struct field —
	// so concurrent calls against the same receiver never race (spec.md §5).
	Intersect(other Container, yield func(l, r kmer.Context))
}

// DualIterate is the layout-agnostic two-pointer ordered intersection,
// usable by any Container that exposes Size/At in fingerprint order. It is
// O(n+m) but without the skip-summary's block-jump acceleration; layouts
// that don't maintain their own summary structure (HashContainer,
// TreeContainer) delegate their Intersect to this helper.
func DualIterate(left, right Container, yield func(l, r kmer.Context)) {
	li, ri := 0, 0
	lSize, rSize := left.Size(), right.Size()
	for li < lSize && ri < rSize {
		l := left.At(li)
		r := right.At(ri)
		switch {
		case l.Fingerprint == r.Fingerprint:
			yield(l, r)
			li++
			ri++
		case l.Fingerprint < r.Fingerprint:
			li++
		default:
			ri++
		}
	}
}
