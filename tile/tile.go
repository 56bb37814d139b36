// Package tile implements the cache-oblivious recursive matrix tiler (C5):
// subdivision of a rectangle or a strict upper triangle into 1x1 leaf cells,
// each handed to a caller-supplied kernel invocation.
package tile

// Rectangle recursively bisects [x0,x1) x [y0,y1) along its longer axis
// until each tile is a single cell, at which point visit(x, y) is called
// exactly once per cell (spec.md §4.4). Splitting the longer axis first,
// and y on a tie, produces the cache-oblivious traversal the reference
// implementation's matrix_recursion relies on for row/column reuse.
func Rectangle(x0, x1, y0, y1 int, visit func(x, y int)) {
	if x1 <= x0 || y1 <= y0 {
		return
	}
	if x1-x0 == 1 && y1-y0 == 1 {
		visit(x0, y0)
		return
	}
	if x1-x0 > y1-y0 {
		mid := (x0 + x1) / 2
		Rectangle(x0, mid, y0, y1, visit)
		Rectangle(mid, x1, y0, y1, visit)
	} else {
		mid := (y0 + y1) / 2
		Rectangle(x0, x1, y0, mid, visit)
		Rectangle(x0, x1, mid, y1, visit)
	}
}

// Triangle recursively decomposes the strict upper triangle
// {(i,j) : i < j, 0 <= i,j < n} into a pair of smaller triangles plus one
// rectangle that never crosses the diagonal, so every cell is visited
// exactly once and cells on or below the diagonal are never visited
// (spec.md §4.4). For n <= 1 there are no such cells and visit is never
// called.
func Triangle(n int, visit func(i, j int)) {
	triangleRange(0, n, visit)
}

func triangleRange(lo, hi int, visit func(i, j int)) {
	n := hi - lo
	if n <= 1 {
		return
	}
	if n == 2 {
		visit(lo, lo+1)
		return
	}
	mid := lo + n/2
	triangleRange(lo, mid, visit)
	triangleRange(mid, hi, visit)
	// Every (i, j) with i in [lo, mid) and j in [mid, hi) satisfies i < j,
	// since mid is the boundary: this rectangle never crosses the diagonal.
	Rectangle(lo, mid, mid, hi, visit)
}

// TriangleRows visits every cell (i, j) of the strict upper triangle
// {(i,j) : i < j, 0 <= i,j < n} with i restricted to [r0, r1) — the slice
// the work scheduler (C6) hands to one worker when partitioning the
// triangular decomposition's row axis across P workers. It decomposes into
// the sub-triangle over [r0, r1) itself plus the rectangle [r0,r1) x
// [r1,n), which together cover exactly that row slice without crossing the
// diagonal.
func TriangleRows(n, r0, r1 int, visit func(i, j int)) {
	if r0 >= r1 {
		return
	}
	triangleRange(r0, r1, visit)
	Rectangle(r0, r1, r1, n, visit)
}
