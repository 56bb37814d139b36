// Package collection implements collection loading (spec.md §6): scanning a
// directory of serialized VLMC files — local or S3, recursively — and
// loading each into a searchable container.
package collection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/file"
	"github.com/grailbio/dvstar/container"
	"github.com/grailbio/dvstar/kmer"
	"github.com/grailbio/dvstar/schedule"
	"github.com/grailbio/dvstar/vlmcio"
	"github.com/pkg/errors"
)

// Options configures a collection load.
type Options struct {
	BackgroundOrder int
	PseudoCount     float64
	// SetSize truncates the collection to its first SetSize files if >= 0
	// (spec.md §6's set_size, diagnostic/benchmark use). A negative value
	// means no truncation.
	SetSize int
	// Parallelism is the requested loader pool size, further capped at
	// schedule.LoaderCap (spec.md §4.5).
	Parallelism int
	// Layout selects the container implementation each file is loaded into:
	// "sorted" (default), "hash" or "tree". See container.NewSortedContainer,
	// container.NewHashContainer, container.NewTreeContainer.
	Layout string
	// CacheDir, if non-empty, is a local directory holding one
	// vlmcio.SaveBackgroundCache file per source file (keyed by a hash of its
	// path and BackgroundOrder), so a repeated Load against the same
	// collection skips re-deriving each file's background cache.
	CacheDir string
}

// cachePath derives the on-disk background-cache path for srcPath under
// o.CacheDir, or "" when caching is disabled. srcPath may be an s3:// URL,
// so it is hashed rather than mirrored into a directory tree.
func (o Options) cachePath(srcPath string) string {
	if o.CacheDir == "" {
		return ""
	}
	h := farm.Hash64([]byte(srcPath))
	return filepath.Join(o.CacheDir, fmt.Sprintf("%016x.bg%d.cache", h, o.BackgroundOrder))
}

func (o Options) build(contexts []kmer.Context) container.Container {
	switch o.Layout {
	case "hash":
		return container.NewHashContainer(contexts)
	case "tree":
		return container.NewTreeContainer(contexts)
	default:
		return container.NewSortedContainer(contexts)
	}
}

// Load enumerates every regular file under path — recursively, local or
// s3:// per grailbio/base/file's transparent backend — and loads each as
// one VLMC, returning one container per file in lexicographic path order
// (truncated to SetSize first).
func Load(ctx context.Context, path string, opts Options) ([]container.Container, error) {
	var paths []string
	lister := file.List(ctx, path, true /*recursive*/)
	for lister.Scan() {
		paths = append(paths, lister.Path())
	}
	if err := lister.Err(); err != nil {
		return nil, errors.Wrapf(err, "collection: listing %s", path)
	}
	sort.Strings(paths)

	if opts.SetSize >= 0 && opts.SetSize < len(paths) {
		paths = paths[:opts.SetSize]
	}

	if opts.CacheDir != "" {
		if err := os.MkdirAll(opts.CacheDir, 0755); err != nil {
			return nil, errors.Wrapf(err, "collection: creating cache dir %s", opts.CacheDir)
		}
	}

	containers := make([]container.Container, len(paths))
	pool := schedule.NewLoaderPool(opts.Parallelism, len(paths))
	err := pool.Run(len(paths), func(start, stop int) error {
		for i := start; i < stop; i++ {
			c, err := loadOne(ctx, paths[i], opts)
			if err != nil {
				return errors.Wrapf(err, "collection: loading %s", paths[i])
			}
			containers[i] = c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return containers, nil
}

func loadOne(ctx context.Context, path string, opts Options) (container.Container, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx)

	contexts, err := vlmcio.LoadFile(in.Reader(ctx), vlmcio.Options{
		BackgroundOrder: opts.BackgroundOrder,
		PseudoCount:     opts.PseudoCount,
		CachePath:       opts.cachePath(path),
	})
	if err != nil {
		return nil, err
	}
	return opts.build(contexts), nil
}
