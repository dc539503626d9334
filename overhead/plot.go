// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overhead

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/asn-d6/morpher/morpherr"
)

// Plot renders, for each checkpoint N in checkpoints, a PNG comparing
// the cumulative sampling and morphing overhead through packet N,
// mirroring original_source/analysis/gain.py's plot_it: one line per
// strategy, x-axis packet index, y-axis cumulative bytes of overhead.
// Files are named "<N>_<mode>.png" inside dir.
func Plot(series *Series, checkpoints []int, mode Mode, dir string) error {
	for _, n := range checkpoints {
		if n <= 0 || n > len(series.CumSampling) {
			return &morpherr.InvalidArgument{Field: "checkpoints", Reason: fmt.Sprintf("checkpoint %d exceeds series length %d", n, len(series.CumSampling))}
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("overhead after %d packets (%s)", n, mode)
		p.X.Label.Text = "packets sent"
		p.Y.Label.Text = "cumulative overhead (bytes)"

		sampling := make(plotter.XYs, n)
		morphing := make(plotter.XYs, n)
		for i := 0; i < n; i++ {
			sampling[i].X = float64(i + 1)
			sampling[i].Y = float64(series.CumSampling[i])
			morphing[i].X = float64(i + 1)
			morphing[i].Y = float64(series.CumMorphing[i])
		}

		lineSampling, err := plotter.NewLine(sampling)
		if err != nil {
			return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
		}
		lineMorphing, err := plotter.NewLine(morphing)
		if err != nil {
			return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
		}
		lineMorphing.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

		p.Add(lineSampling, lineMorphing)
		p.Legend.Add("sampling", lineSampling)
		p.Legend.Add("morphing", lineMorphing)

		path := filepath.Join(dir, fmt.Sprintf("%d_%s.png", n, mode))
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
		}
	}
	return nil
}
