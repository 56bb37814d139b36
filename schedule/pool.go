// Package schedule implements the fixed-size work scheduler (C6): it
// partitions a unit of work into contiguous ranges and runs one worker
// goroutine per range, blocking until all complete.
package schedule

import (
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"
	"v.io/x/lib/vlog"
)

// LoaderCap is the reference implementation's cap on loader parallelism:
// file I/O does not scale past this on typical storage (spec.md §4.5).
const LoaderCap = 4

// Pool is a fixed-size worker pool sized P = min(requested, GOMAXPROCS,
// workSize), per spec.md §4.5.
type Pool struct {
	workers int
}

// NewPool sizes a pool for workSize units of work.
func NewPool(requested, workSize int) *Pool {
	return &Pool{workers: size(requested, runtime.GOMAXPROCS(0), workSize)}
}

// NewLoaderPool sizes a pool for loading workSize files, additionally
// capped at LoaderCap.
func NewLoaderPool(requested, workSize int) *Pool {
	p := size(requested, runtime.GOMAXPROCS(0), workSize)
	if p > LoaderCap {
		p = LoaderCap
	}
	return &Pool{workers: p}
}

func size(requested, hardwareConcurrency, workSize int) int {
	p := requested
	if p <= 0 {
		p = 1
	}
	if hardwareConcurrency > 0 && p > hardwareConcurrency {
		p = hardwareConcurrency
	}
	if workSize > 0 && p > workSize {
		p = workSize
	}
	if p < 1 {
		p = 1
	}
	return p
}

// Workers returns the pool's worker count.
func (p *Pool) Workers() int { return p.workers }

// Run partitions [0, n) into at most Workers() contiguous ranges and calls
// fn(start, stop) once per range in its own goroutine, blocking until every
// range completes. The first non-nil error returned by any fn call is
// propagated to the caller; the others are discarded (spec.md §4.5: no
// back-pressure or early cancellation, so the remaining ranges still run to
// completion).
func (p *Pool) Run(n int, fn func(start, stop int) error) error {
	if n <= 0 {
		return nil
	}
	workers := p.workers
	if workers > n {
		workers = n
	}

	e := errors.Once{}
	var wg sync.WaitGroup

	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		stop := start + chunk
		if start >= n {
			break
		}
		if stop > n {
			stop = n
		}
		wg.Add(1)
		go func(start, stop int) {
			defer wg.Done()
			vlog.VI(1).Infof("schedule: worker range [%d, %d)", start, stop)
			e.Set(fn(start, stop))
		}(start, stop)
	}
	wg.Wait()
	return e.Err()
}
