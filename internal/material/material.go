// Package material implements the bond-based constitutive law consuming the
// neighbour list: prototype microelastic brittle (PMB) bond forces, damage
// fractions from bond counts, and initial-crack severing.
package material

import (
	"github.com/san-kum/peridyn/internal/bonds"
	"github.com/san-kum/peridyn/internal/geom"
)

// PMB is a prototype microelastic brittle bond material: force grows linearly
// with bond stretch until the bond breaks.
type PMB struct {
	Micromodulus float64
	CritStretch  float64
}

// Default returns the material of the reference plate problem.
func Default() *PMB {
	return &PMB{
		Micromodulus: 0.05,
		CritStretch:  0.005,
	}
}

// Stretch returns the relative elongation of the bond between two particles:
// (current length - reference length) / reference length. Zero-length
// reference bonds carry no stretch.
func Stretch(refI, refJ, curI, curJ []float64) float64 {
	xi := geom.Distance(refI, refJ)
	if xi == 0 {
		return 0
	}
	return (geom.Distance(curI, curJ) - xi) / xi
}

// Force accumulates the PMB bond force density on every particle over the
// valid entries of the list. ref holds the reference coordinates the list was
// built from, cur the current (displaced) coordinates. Rows are independent,
// so the accumulation is sharded across workers goroutines.
func (m *PMB) Force(ref, cur [][]float64, volume []float64, l *bonds.List, workers int) [][]float64 {
	dim := len(ref[0])
	forces := make([][]float64, len(ref))
	for i := range forces {
		forces[i] = make([]float64, dim)
	}

	bonds.ParallelFor(l.Len(), workers, func(start, end int) {
		for i := start; i < end; i++ {
			f := forces[i]
			for _, j := range l.Row(i) {
				xi := geom.Distance(ref[i], ref[j])
				if xi == 0 {
					continue
				}
				r := geom.Distance(cur[i], cur[j])
				if r == 0 {
					continue
				}
				s := (r - xi) / xi
				mag := m.Micromodulus * s * volume[j]
				for d := 0; d < dim; d++ {
					f[d] += mag * (cur[j][d] - cur[i][d]) / r
				}
			}
		}
	})

	return forces
}

// Damage returns the fraction of each particle's original bonds that have
// broken: 1 - current/initial, zero for particles that never had bonds.
func Damage(current, initial []int) []float64 {
	out := make([]float64, len(current))
	for i := range current {
		if initial[i] > 0 {
			out[i] = 1 - float64(current[i])/float64(initial[i])
		}
	}
	return out
}

// Crack is a straight pre-crack along the vertical line x = X spanning
// YMin < y < YMax, cut into a freshly built list before the first step.
type Crack struct {
	X    float64
	YMin float64
	YMax float64
}

// Predicate returns a bond predicate for [bonds.List.Sever]: true when the
// segment between particles i and j crosses the crack line inside its span.
func (c Crack) Predicate(coords [][]float64) func(i, j int) bool {
	return func(i, j int) bool {
		p, q := coords[i], coords[j]
		if p[0] > q[0] {
			p, q = q, p
		}
		if p[0] >= c.X || q[0] <= c.X {
			return false
		}
		slope := (q[1] - p[1]) / (q[0] - p[0])
		y := p[1] + slope*(c.X-p[0])
		return y > c.YMin && y < c.YMax
	}
}
