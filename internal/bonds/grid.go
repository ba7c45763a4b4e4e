package bonds

import (
	"math"
	"sort"

	"github.com/san-kum/peridyn/internal/geom"
)

// cellKey identifies a cell in a uniform grid with edge length equal to the
// horizon. Unused trailing dimensions stay zero, so 2-D and 3-D share a key.
type cellKey [3]int

func cellOf(p []float64, size float64) cellKey {
	var k cellKey
	for d := 0; d < len(p) && d < 3; d++ {
		k[d] = int(math.Floor(p[d] / size))
	}
	return k
}

// BuildGrid is Build accelerated by a uniform cell grid: candidates for each
// row come only from the 3^dim cells around the particle, then pass the same
// strict-horizon filter in ascending index order. Output is identical to
// Build for any input.
func BuildGrid(coords [][]float64, horizon float64, capacity int) (*List, error) {
	if len(coords) == 0 {
		return nil, ErrNoParticles
	}
	if capacity < 1 {
		return nil, ErrCapacity
	}

	n := len(coords)
	l := &List{
		data:   make([]int, n*capacity),
		counts: make([]int, n),
		n:      n,
		cap:    capacity,
	}

	// A non-positive horizon bonds nothing; there is no valid cell size.
	if horizon <= 0 {
		return l, nil
	}

	dim := len(coords[0])
	cells := make(map[cellKey][]int, n)
	for i, p := range coords {
		key := cellOf(p, horizon)
		cells[key] = append(cells[key], i)
	}

	var candidates []int
	for i := 0; i < n; i++ {
		candidates = candidates[:0]
		center := cellOf(coords[i], horizon)

		zlo, zhi := 0, 0
		if dim > 2 {
			zlo, zhi = -1, 1
		}
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := zlo; dz <= zhi; dz++ {
					key := cellKey{center[0] + dx, center[1] + dy, center[2] + dz}
					candidates = append(candidates, cells[key]...)
				}
			}
		}

		// Row order must match the naive ascending-index scan.
		sort.Ints(candidates)

		row := l.data[i*capacity : (i+1)*capacity]
		k := 0
		for _, j := range candidates {
			if j == i {
				continue
			}
			if geom.Distance(coords[i], coords[j]) < horizon {
				if k == capacity {
					l.truncated++
					break
				}
				row[k] = j
				k++
			}
		}
		l.counts[i] = k
	}

	return l, nil
}
