// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package overhead

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/asn-d6/morpher/morpherr"
)

// WriteCSV writes the cumulative series through packet n (1 <= n <=
// len(series.CumSampling)) as a three-column CSV table: packet,
// cumulative_sampling, cumulative_morphing. It is a tabular alternative
// to Plot for callers that want the raw numbers instead of a PNG.
func WriteCSV(w io.Writer, series *Series, n int) error {
	if n <= 0 || n > len(series.CumSampling) {
		return &morpherr.InvalidArgument{Field: "n", Reason: fmt.Sprintf("checkpoint %d exceeds series length %d", n, len(series.CumSampling))}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"packet", "cumulative_sampling", "cumulative_morphing"}); err != nil {
		return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	for i := 0; i < n; i++ {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatUint(series.CumSampling[i], 10),
			strconv.FormatUint(series.CumMorphing[i], 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %v", morpherr.ErrIO, err)
	}
	return nil
}
