// Package config validates the options shared by every entry point into the
// core: background order, pseudo-count, parallelism, engine mode, and
// per-collection set size (spec.md §6).
package config

import (
	"os"

	"github.com/grailbio/base/errors"
)

// Mode selects the pairwise engine.
type Mode int

const (
	// PairMajor intersects contexts pair by pair (C4, tiled by C5/C6).
	PairMajor Mode = iota
	// KmerMajor transposes the computation, updating every pair sharing a
	// context fingerprint in one pass (C7).
	KmerMajor
)

func (m Mode) String() string {
	switch m {
	case PairMajor:
		return "pair_major"
	case KmerMajor:
		return "kmer_major"
	default:
		return "unknown"
	}
}

// ParseMode parses the mode strings accepted on the command line.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "pair_major", "":
		return PairMajor, nil
	case "kmer_major":
		return KmerMajor, nil
	default:
		return 0, errors.E(errors.NotExist, "config: unrecognized mode", s)
	}
}

// Options is the validated configuration shared by the loader, the
// distance kernel and the driver.
type Options struct {
	BackgroundOrder int
	PseudoCount     float64
	Parallelism     int
	Mode            Mode
	// SetSize truncates each collection to its first SetSize files when
	// >= 0; -1 means no truncation.
	SetSize int
	Left    string
	Right   string
	// Container selects the per-file container layout: "sorted" (default),
	// "hash" or "tree" (spec.md §4.3 alternate layouts).
	Container string
	// CacheDir, if non-empty, enables on-disk background-cache persistence
	// (collection.Options.CacheDir) across repeated runs over the same
	// collection at the same BackgroundOrder.
	CacheDir string
}

// Validate checks Options against spec.md §7's configuration-error list:
// negative parallelism, a nonexistent collection directory, or (already
// handled by ParseMode) an unrecognized mode string.
func (o Options) Validate() error {
	if o.BackgroundOrder < 0 {
		return errors.E(errors.Invalid, "config: background_order must be >= 0")
	}
	if o.PseudoCount < 0 {
		return errors.E(errors.Invalid, "config: pseudo_count must be >= 0")
	}
	if o.Parallelism < 1 {
		return errors.E(errors.Invalid, "config: parallelism must be >= 1")
	}
	if o.SetSize < -1 {
		return errors.E(errors.Invalid, "config: set_size must be >= -1")
	}
	if o.Left == "" {
		return errors.E(errors.Invalid, "config: -left is required")
	}
	if err := checkDir(o.Left); err != nil {
		return err
	}
	if o.Right != "" {
		if err := checkDir(o.Right); err != nil {
			return err
		}
	}
	switch o.Container {
	case "", "sorted", "hash", "tree":
	default:
		return errors.E(errors.Invalid, "config: unrecognized container layout", o.Container)
	}
	if o.CacheDir != "" {
		if fi, err := os.Stat(o.CacheDir); err == nil && !fi.IsDir() {
			return errors.E(errors.Invalid, "config: cache_dir is not a directory", o.CacheDir)
		}
	}
	return nil
}

func checkDir(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return errors.E(errors.NotExist, "config: collection path", path, err)
	}
	if !fi.IsDir() {
		return errors.E(errors.Invalid, "config: collection path is not a directory", path)
	}
	return nil
}
