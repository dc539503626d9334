// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tmorpheval runs the Monte-Carlo overhead evaluation of spec
// §4.G, comparing naive target-sampling against morphing-matrix-driven
// morphing, and writes the cumulative overhead series as a PNG plot or
// a CSV table.
package main // import "github.com/asn-d6/morpher/cmd/tmorpheval"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/asn-d6/morpher/dist"
	"github.com/asn-d6/morpher/matio"
	"github.com/asn-d6/morpher/morpherr"
	"github.com/asn-d6/morpher/morphmat"
	"github.com/asn-d6/morpher/overhead"
)

func main() {
	log.SetPrefix("tmorpheval: ")
	log.SetFlags(0)

	mode := flag.String("mode", "", "CS or SC; labels output filenames only (analysis/gain.py's CS/SC split)")
	sourceDistPath := flag.String("source-dist", "", "path to the run-time source distribution file")
	targetDistPath := flag.String("target-dist", "", "path to the target distribution file")
	matrixPath := flag.String("matrix", "", "path to the morphing matrix (as written by tmorph)")
	iterations := flag.String("iterations", "", "comma-separated checkpoint packet counts; defaults to 500,2000,8000,16000,50000,100000,500000")
	out := flag.String("out", "", "output path; .csv writes a CSV table, anything else a PNG plot")
	seed := flag.Int64("seed", 0, "RNG seed for this run; 0 uses -seed's zero value only if MORPH_SEED is also unset")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tmorpheval -source-dist FILE -target-dist FILE -matrix FILE -out PATH [options]

Runs the Monte-Carlo overhead comparison between naive sampling and
matrix-driven morphing, and writes the cumulative overhead series.

ex:
 $> tmorpheval -source-dist run.txt -target-dist t.txt -matrix cs.mtx -out cs.png -mode CS
 $> tmorpheval -source-dist run.txt -target-dist t.txt -matrix cs.mtx -out cs.csv -iterations 1000,5000

Options:
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	switch {
	case *sourceDistPath == "":
		flag.Usage()
		log.Fatalf("missing -source-dist")
	case *targetDistPath == "":
		flag.Usage()
		log.Fatalf("missing -target-dist")
	case *matrixPath == "":
		flag.Usage()
		log.Fatalf("missing -matrix")
	case *out == "":
		flag.Usage()
		log.Fatalf("missing -out")
	}

	runMode := parseMode(*mode)

	sourceRun, err := loadDist(*sourceDistPath)
	if err != nil {
		fail(err)
	}
	target, err := loadDist(*targetDistPath)
	if err != nil {
		fail(err)
	}
	mm, err := loadMatrix(*matrixPath)
	if err != nil {
		fail(err)
	}

	checkpoints, err := parseCheckpoints(*iterations)
	if err != nil {
		fail(err)
	}

	e := &overhead.Evaluator{
		SourceRun:   sourceRun,
		Target:      target,
		MM:          mm,
		Checkpoints: checkpoints,
		Mode:        runMode,
		Rand:        rand.New(rand.NewSource(uint64(rngSeed(*seed)))),
	}
	series, err := e.Run()
	if err != nil {
		fail(err)
	}

	if err := writeOutput(series, checkpoints, runMode, *out); err != nil {
		fail(err)
	}
}

func parseMode(s string) overhead.Mode {
	switch strings.ToUpper(s) {
	case "SC":
		return overhead.ServerToClient
	default:
		return overhead.ClientToServer
	}
}

func parseCheckpoints(s string) ([]int, error) {
	if s == "" {
		return nil, nil // overhead.Evaluator defaults to overhead.DefaultCheckpoints
	}
	var out []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n <= 0 {
			return nil, &morpherr.InvalidArgument{Field: "iterations", Reason: fmt.Sprintf("%q is not a positive integer", f)}
		}
		out = append(out, n)
	}
	return out, nil
}

// rngSeed resolves the run's seed: the -seed flag if nonzero, else the
// MORPH_SEED environment variable, else 0. The caller always builds a
// fresh source from the result, so 0 is an ordinary fixed seed.
func rngSeed(flagSeed int64) int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	if v := os.Getenv("MORPH_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func writeOutput(series *overhead.Series, checkpoints []int, mode overhead.Mode, out string) error {
	if len(checkpoints) == 0 {
		checkpoints = overhead.DefaultCheckpoints
	}

	if strings.EqualFold(filepath.Ext(out), ".csv") {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
		}
		defer f.Close()
		return overhead.WriteCSV(f, series, maxCheckpoint(checkpoints, len(series.CumSampling)))
	}

	// Plot writes one file per checkpoint named "<N>_<mode>.png"; -out
	// names a single artifact, so render only the final (largest)
	// checkpoint's full series and place it at the exact path requested.
	n := maxCheckpoint(checkpoints, len(series.CumSampling))
	dir, err := os.MkdirTemp(filepath.Dir(out), "tmorpheval-")
	if err != nil {
		return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	defer os.RemoveAll(dir)
	if err := overhead.Plot(series, []int{n}, mode, dir); err != nil {
		return err
	}
	generated := filepath.Join(dir, fmt.Sprintf("%d_%s.png", n, mode))
	if err := os.Rename(generated, out); err != nil {
		return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	return nil
}

func maxCheckpoint(checkpoints []int, seriesLen int) int {
	n := 0
	for _, c := range checkpoints {
		if c > n {
			n = c
		}
	}
	if n > seriesLen {
		n = seriesLen
	}
	return n
}

func loadDist(path string) (dist.Distribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return dist.Distribution{}, fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	defer f.Close()
	return dist.Load(f)
}

func loadMatrix(path string) (*morphmat.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	defer f.Close()
	return matio.Load(f)
}

func fail(err error) {
	log.Print(err)
	os.Exit(morpherr.ExitCode(err))
}
