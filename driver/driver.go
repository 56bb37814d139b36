// Package driver wires the loader, container, distance kernel, tiler,
// scheduler and k-mer-major engine together into the top-level computation
// described by spec.md §2's data flow.
package driver

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/dvstar/collection"
	"github.com/grailbio/dvstar/config"
	"github.com/grailbio/dvstar/distance"
	"github.com/grailbio/dvstar/kmerbucket"
	"github.com/grailbio/dvstar/matrix"
	"github.com/grailbio/dvstar/schedule"
	"github.com/grailbio/dvstar/tile"
)

// Run loads the configured collection(s) and computes the distance matrix,
// dispatching to the pair-major or k-mer-major engine per opts.Mode.
func Run(ctx context.Context, opts config.Options) (matrix.Dense, error) {
	loadOpts := collection.Options{
		BackgroundOrder: opts.BackgroundOrder,
		PseudoCount:     opts.PseudoCount,
		SetSize:         opts.SetSize,
		Parallelism:     opts.Parallelism,
		Layout:          opts.Container,
		CacheDir:        opts.CacheDir,
	}

	log.Printf("driver: loading left collection %s", opts.Left)
	left, err := collection.Load(ctx, opts.Left, loadOpts)
	if err != nil {
		return matrix.Dense{}, err
	}

	singleCollection := opts.Right == ""
	right := left
	if !singleCollection {
		log.Printf("driver: loading right collection %s", opts.Right)
		right, err = collection.Load(ctx, opts.Right, loadOpts)
		if err != nil {
			return matrix.Dense{}, err
		}
	}

	rows, cols := len(left), len(right)
	log.Printf("driver: computing %d x %d distances in %v mode", rows, cols, opts.Mode)

	if opts.Mode == config.KmerMajor {
		leftBucket := kmerbucket.Bucketize(left)
		rightBucket := leftBucket
		if !singleCollection {
			rightBucket = kmerbucket.Bucketize(right)
		}
		out := kmerbucket.ComputeMajor(leftBucket, rightBucket, rows, cols, opts.Parallelism)
		if singleCollection {
			zeroLowerTriangle(out)
		}
		return out, nil
	}

	out := matrix.NewDense(rows, cols)
	pool := schedule.NewPool(opts.Parallelism, rows)
	if singleCollection {
		err = pool.Run(rows, func(r0, r1 int) error {
			tile.TriangleRows(rows, r0, r1, func(i, j int) {
				out.Set(i, j, distance.Dvstar(left[i], right[j]))
			})
			return nil
		})
	} else {
		err = pool.Run(rows, func(r0, r1 int) error {
			tile.Rectangle(r0, r1, 0, cols, func(i, j int) {
				out.Set(i, j, distance.Dvstar(left[i], right[j]))
			})
			return nil
		})
	}
	if err != nil {
		return matrix.Dense{}, err
	}
	return out, nil
}

// zeroLowerTriangle enforces spec.md §8's "triangular zeros" invariant on
// the k-mer-major path, whose normalization has no notion of the diagonal.
func zeroLowerTriangle(m matrix.Dense) {
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j <= i && j < m.Cols(); j++ {
			m.Set(i, j, 0)
		}
	}
}
