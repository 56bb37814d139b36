// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
dvstar computes a pairwise angular distance matrix between collections of
variable-length Markov chains.
*/

import (
	"flag"
	"os"
	"runtime"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/dvstar/config"
	"github.com/grailbio/dvstar/driver"
)

var (
	backgroundOrder = flag.Int("background-order", 0, "Markov order whose probabilities divide every deeper context's probabilities")
	pseudoCount     = flag.Float64("pseudo-count", 1.0, "Additive smoothing constant applied to next-symbol counts before normalizing to probabilities")
	parallelism     = flag.Int("parallelism", 0, "Maximum number of worker goroutines; 0 = runtime.GOMAXPROCS(0)")
	mode            = flag.String("mode", "pair_major", "Computation engine: 'pair_major' or 'kmer_major'")
	setSize         = flag.Int("set-size", -1, "Truncate each collection to its first set-size files; -1 = no truncation")
	left            = flag.String("left", "", "Path to the left (or, with -right unset, the only) collection directory")
	right           = flag.String("right", "", "Path to the right collection directory; if unset, computes the triangular self-distance matrix of -left")
	containerLayout = flag.String("container", "sorted", "Per-file container layout: 'sorted', 'hash' or 'tree'")
	cacheDir        = flag.String("cache-dir", "", "Directory to persist per-file background caches in, so a repeated run at the same -background-order skips re-deriving them; empty disables caching")
	outPath         = flag.String("out", "", "Output TSV path; empty writes to stdout")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	m, err := config.ParseMode(*mode)
	if err != nil {
		log.Fatalf("%v", err)
	}
	opts := config.Options{
		BackgroundOrder: *backgroundOrder,
		PseudoCount:     *pseudoCount,
		Parallelism:     *parallelism,
		Mode:            m,
		SetSize:         *setSize,
		Left:            *left,
		Right:           *right,
		Container:       *containerLayout,
		CacheDir:        *cacheDir,
	}
	if opts.Parallelism == 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	if err := opts.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	ctx := vcontext.Background()
	out, err := driver.Run(ctx, opts)
	if err != nil {
		log.Panicf("%v", err)
	}

	w := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer f.Close()
		w = f
	}
	if err := out.DumpTSV(w); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}
