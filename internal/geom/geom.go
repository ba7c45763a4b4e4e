package geom

import (
	"fmt"
	"math"
)

// Distance returns the Euclidean distance between two points of equal
// dimension. Points of differing dimension are a caller error and panic.
func Distance(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("geom: dimension mismatch (%d vs %d)", len(a), len(b)))
	}
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Norm returns the Euclidean length of v.
func Norm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Sub returns a - b as a new slice.
func Sub(a, b []float64) []float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("geom: dimension mismatch (%d vs %d)", len(a), len(b)))
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Clone deep-copies a point set.
func Clone(coords [][]float64) [][]float64 {
	out := make([][]float64, len(coords))
	for i, p := range coords {
		out[i] = make([]float64, len(p))
		copy(out[i], p)
	}
	return out
}
