package geom

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistance3D(t *testing.T) {
	a := []float64{0, 0, 0}
	b := []float64{3, 4, 0}

	if d := Distance(a, b); math.Abs(d-5.0) > 1e-12 {
		t.Errorf("expected 5.0, got %f", d)
	}
}

func TestDistance2D(t *testing.T) {
	a := []float64{1, 1}
	b := []float64{4, 5}

	if d := Distance(a, b); math.Abs(d-5.0) > 1e-12 {
		t.Errorf("expected 5.0, got %f", d)
	}
}

func TestDistanceNegativeCoords(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		a := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
		b := []float64{-rng.Float64(), -rng.Float64(), -rng.Float64()}

		expected := Norm(Sub(a, b))
		if d := Distance(a, b); math.Abs(d-expected) > 1e-12 {
			t.Errorf("trial %d: expected %f, got %f", trial, expected, d)
		}
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := []float64{0.1, -2.5, 3.0}
	b := []float64{-1.0, 0.5, 0.25}

	if Distance(a, b) != Distance(b, a) {
		t.Error("distance not symmetric")
	}
}

func TestDistanceZero(t *testing.T) {
	a := []float64{1.5, 2.5}
	if d := Distance(a, a); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceDimensionMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on dimension mismatch")
		}
	}()
	Distance([]float64{1, 2}, []float64{1, 2, 3})
}

func TestClone(t *testing.T) {
	coords := [][]float64{{1, 2}, {3, 4}}
	c := Clone(coords)
	c[0][0] = 99

	if coords[0][0] != 1 {
		t.Error("clone aliases original")
	}
}
