package container

import (
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/dvstar/kmer"
)

// treeNode adapts kmer.Context to llrb.Comparable, ordering by fingerprint.
type treeNode struct {
	ctx kmer.Context
}

func (n *treeNode) Compare(other llrb.Comparable) int {
	o := other.(*treeNode)
	switch {
	case n.ctx.Fingerprint < o.ctx.Fingerprint:
		return -1
	case n.ctx.Fingerprint > o.ctx.Fingerprint:
		return 1
	default:
		return 0
	}
}

// TreeContainer is the ordered-tree alternate C3 layout, standing in for the
// spec's "implicit B-tree" alternative (spec.md §4.2): a left-leaning
// red-black tree keyed by fingerprint.
type TreeContainer struct {
	tree   llrb.Tree
	sorted []kmer.Context
}

// NewTreeContainer builds a TreeContainer over contexts.
func NewTreeContainer(contexts []kmer.Context) *TreeContainer {
	t := &TreeContainer{}
	for _, ctx := range contexts {
		t.tree.Insert(&treeNode{ctx: ctx})
	}
	sorted := make([]kmer.Context, 0, len(contexts))
	t.tree.Do(func(item llrb.Comparable) bool {
		sorted = append(sorted, item.(*treeNode).ctx)
		return false
	})
	sort.Slice(sorted, func(i, j int) bool { return kmer.Less(sorted[i], sorted[j]) })
	t.sorted = sorted
	return t
}

func (t *TreeContainer) Size() int { return len(t.sorted) }

func (t *TreeContainer) At(i int) kmer.Context { return t.sorted[i] }

func (t *TreeContainer) Find(fingerprint int64) kmer.Context {
	probe := &treeNode{ctx: kmer.Context{Fingerprint: fingerprint}}
	got := t.tree.Get(probe)
	if got == nil {
		return kmer.Null
	}
	return got.(*treeNode).ctx
}

// Intersect has no summary structure to exploit, so it delegates to the
// generic O(n+m) two-pointer walk over the sorted backing slice built at
// construction time (the tree's in-order traversal already yields it).
func (t *TreeContainer) Intersect(other Container, yield func(l, r kmer.Context)) {
	DualIterate(t, other, yield)
}
