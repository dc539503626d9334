// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tmorph solves the morphing-matrix linear program for a
// source and target packet-length distribution and persists the
// resulting morphing matrix.
package main // import "github.com/asn-d6/morpher/cmd/tmorph"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/asn-d6/morpher/dist"
	"github.com/asn-d6/morpher/lpmodel"
	"github.com/asn-d6/morpher/matio"
	"github.com/asn-d6/morpher/morpherr"
	"github.com/asn-d6/morpher/morphmat"
)

func main() {
	log.SetPrefix("tmorph: ")
	log.SetFlags(0)

	source := flag.String("source", "", "path to the source distribution file")
	target := flag.String("target", "", "path to the target distribution file")
	output := flag.String("output", "", "path to write the morphing matrix to (must not already exist)")
	partition := flag.Int("partition", 0, "partition count k; 0 solves one unpartitioned LP")
	flag.IntVar(partition, "p", 0, "shorthand for -partition")
	deadline := flag.Duration("deadline", 0, "wall-clock budget for a partitioned solve, checked before each sub-LP; 0 means no deadline")
	describeColumn := flag.Int("describe-column", 0, "print the potential listing for column N of the result; without -output, exit after printing")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tmorph -source FILE -target FILE -output FILE [options]

Solves the morphing-matrix linear program for a source and target
packet-length distribution, and writes the result in Matrix Market
coordinate format.

ex:
 $> tmorph -source cs_source.txt -target cs_target.txt -output cs.mtx
 $> tmorph -source s.txt -target t.txt -output m.mtx -partition 20 -deadline 30s

Options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	switch {
	case *source == "":
		flag.Usage()
		log.Fatalf("missing -source")
	case *target == "":
		flag.Usage()
		log.Fatalf("missing -target")
	case *output == "" && *describeColumn == 0:
		flag.Usage()
		log.Fatalf("missing -output")
	}

	// Checked before the solve so a describe run that also requests
	// -output fails fast instead of doing the LP work twice.
	if *output != "" {
		if _, err := os.Stat(*output); err == nil {
			fail(fmt.Errorf("%w: %s already exists", morpherr.ErrIO, *output))
		}
	}

	sourceDist, err := loadDist(*source)
	if err != nil {
		fail(err)
	}
	targetDist, err := loadDist(*target)
	if err != nil {
		fail(err)
	}

	var opts lpmodel.SolveOptions
	if *deadline != 0 {
		opts.Deadline = time.Now().Add(*deadline)
	}

	m, err := solve(sourceDist, targetDist, *partition, opts)
	if err != nil {
		fail(err)
	}

	if *describeColumn != 0 {
		fmt.Print(m.Potential(*describeColumn).String())
		if *output == "" {
			return
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		fail(fmt.Errorf("%w: %v", morpherr.ErrIO, err))
	}
	defer f.Close()

	if err := matio.Save(f, m); err != nil {
		fail(err)
	}
}

// solve runs either the single LP or the two-level partitioned
// decomposition, materializing the latter into a flat matrix so it can
// be handed to matio, which only persists the flat coordinate format.
func solve(source, target dist.Distribution, k int, opts lpmodel.SolveOptions) (*morphmat.Matrix, error) {
	if k == 0 {
		return lpmodel.Solve(source, target, opts)
	}

	sourcePart, err := source.Partition(k)
	if err != nil {
		return nil, err
	}
	targetPart, err := target.Partition(k)
	if err != nil {
		return nil, err
	}
	partitioned, err := lpmodel.SolvePartitioned(sourcePart, targetPart, opts)
	if err != nil {
		return nil, err
	}
	return partitioned.Materialize()
}

func loadDist(path string) (dist.Distribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return dist.Distribution{}, fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	defer f.Close()
	return dist.Load(f)
}

func fail(err error) {
	log.Print(err)
	os.Exit(morpherr.ExitCode(err))
}
