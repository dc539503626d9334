// Copyright ©2026 The Morpher Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matio

import (
	"bytes"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/asn-d6/morpher/morphmat"
)

// TestRoundTrip checks that load(save(M)) equals M to 6 decimals.
func TestRoundTrip(t *testing.T) {
	d := mat.NewDense(3, 3, []float64{
		0.5, 0, 0,
		0.5, 1, 0,
		0, 0, 1,
	})
	m, err := morphmat.FromDense(d)
	if err != nil {
		t.Fatalf("FromDense: %v", err)
	}

	var buf bytes.Buffer
	if err := Save(&buf, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for j := 1; j <= 3; j++ {
		want, got := m.Column(j), loaded.Column(j)
		for i := range want {
			if diff := want[i] - got[i]; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("column %d entry %d = %g, want %g", j, i+1, got[i], want[i])
			}
		}
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	_, err := Load(strings.NewReader("not a header\n3 3 0\n"))
	if err == nil {
		t.Fatal("Load: expected error for bad header")
	}
}

func TestLoadRejectsNonSquare(t *testing.T) {
	_, err := Load(strings.NewReader(header + "\n2 3 0\n"))
	if err == nil {
		t.Fatal("Load: expected error for non-square dimensions")
	}
}

func TestLoadRejectsEntryCountMismatch(t *testing.T) {
	_, err := Load(strings.NewReader(header + "\n2 2 2\n1 1 1.0\n"))
	if err == nil {
		t.Fatal("Load: expected error for nnz mismatch")
	}
}

func TestSaveWritesHeader(t *testing.T) {
	m, err := morphmat.FromEntries(2, []morphmat.Entry{
		{I: 1, J: 1, Value: 1},
		{I: 2, J: 2, Value: 1},
	})
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	var buf bytes.Buffer
	if err := Save(&buf, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(buf.String(), header) {
		t.Errorf("output does not start with header: %q", buf.String())
	}
}
