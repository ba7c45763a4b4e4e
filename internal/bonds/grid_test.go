package bonds

import (
	"reflect"
	"testing"
)

func TestBuildGridMatchesBuild(t *testing.T) {
	cases := []struct {
		name    string
		n, dim  int
		horizon float64
		cap     int
	}{
		{"sparse 2d", 100, 2, 0.1, 20},
		{"dense 2d", 100, 2, 0.4, 100},
		{"sparse 3d", 150, 3, 0.2, 40},
		{"dense 3d", 80, 3, 0.6, 80},
		{"tiny capacity", 100, 2, 0.4, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			coords := randomCoords(tc.n, tc.dim, 42)

			naive, err := Build(coords, tc.horizon, tc.cap)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			gridded, err := BuildGrid(coords, tc.horizon, tc.cap)
			if err != nil {
				t.Fatalf("grid build failed: %v", err)
			}

			if !reflect.DeepEqual(gridded.data, naive.data) {
				t.Error("grid rows differ from naive rows")
			}
			if !reflect.DeepEqual(gridded.counts, naive.counts) {
				t.Errorf("grid counts %v differ from naive %v", gridded.counts, naive.counts)
			}
			if gridded.TruncatedRows() != naive.TruncatedRows() {
				t.Errorf("grid truncated %d rows, naive %d", gridded.TruncatedRows(), naive.TruncatedRows())
			}
		})
	}
}

func TestBuildGridDegenerateHorizon(t *testing.T) {
	coords := randomCoords(20, 2, 1)

	l, err := BuildGrid(coords, 0, 4)
	if err != nil {
		t.Fatalf("grid build failed: %v", err)
	}
	for i := 0; i < l.Len(); i++ {
		if l.Count(i) != 0 {
			t.Errorf("particle %d bonded under zero horizon", i)
		}
	}
}

func TestBuildGridNegativeCoords(t *testing.T) {
	// Cell indexing must round toward minus infinity, not toward zero.
	coords := [][]float64{{-0.05, 0}, {0.05, 0}, {-1.5, 0}}

	naive, err := Build(coords, 0.2, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	gridded, err := BuildGrid(coords, 0.2, 2)
	if err != nil {
		t.Fatalf("grid build failed: %v", err)
	}

	if !reflect.DeepEqual(gridded.counts, naive.counts) {
		t.Errorf("grid counts %v differ from naive %v", gridded.counts, naive.counts)
	}
	if gridded.Count(0) != 1 {
		t.Errorf("particles straddling a cell boundary should bond, count %d", gridded.Count(0))
	}
}
