package bonds

import (
	"errors"

	"github.com/san-kum/peridyn/internal/geom"
)

var (
	// ErrNoParticles indicates an empty coordinate set.
	ErrNoParticles = errors.New("bonds: empty coordinate set")

	// ErrCapacity indicates a non-positive row capacity.
	ErrCapacity = errors.New("bonds: capacity must be at least 1")
)

// List is an N-row neighbour list with fixed row capacity. Only the first
// Count(i) entries of row i are meaningful; the rest is leftover data.
type List struct {
	data      []int // n*cap, row-major
	counts    []int
	n         int
	cap       int
	truncated int
}

// Family returns, for every particle, the number of other particles strictly
// within horizon distance. Callers use the maximum to size a List capacity.
func Family(coords [][]float64, horizon float64) []int {
	counts := make([]int, len(coords))
	for i := range coords {
		for j := i + 1; j < len(coords); j++ {
			if geom.Distance(coords[i], coords[j]) < horizon {
				counts[i]++
				counts[j]++
			}
		}
	}
	return counts
}

// Build constructs the initial neighbour list. Row i holds the indices j != i
// with distance(i, j) < horizon, in ascending index order. Rows with more
// qualifying neighbours than capacity are silently cut at capacity; the
// number of such rows is reported by TruncatedRows.
func Build(coords [][]float64, horizon float64, capacity int) (*List, error) {
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

	for i := 0; i < n; i++ {
		row := l.data[i*capacity : (i+1)*capacity]
		k := 0
		for j := 0; j < n; j++ {
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

// Break removes bonds whose current separation is at or beyond the horizon,
// using swap-with-last-and-shrink: a broken entry is overwritten with the
// last valid entry of its row and the count decremented, then the swapped-in
// value is re-examined at the same slot. Slots past the shrunk count keep
// their prior content. O(count) per row, no extra storage.
//
// coords must index the same particles the list was built from and must not
// be mutated for the duration of the call.
func (l *List) Break(coords [][]float64, horizon float64) {
	for i := 0; i < l.n; i++ {
		l.breakRow(i, coords, horizon)
	}
}

// BreakParallel is Break with rows sharded across workers goroutines.
// workers <= 0 uses GOMAXPROCS. The result is identical to Break: every row
// is owned by exactly one worker and coords are read-only during the call.
func (l *List) BreakParallel(coords [][]float64, horizon float64, workers int) {
	ParallelFor(l.n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			l.breakRow(i, coords, horizon)
		}
	})
}

func (l *List) breakRow(i int, coords [][]float64, horizon float64) {
	row := l.data[i*l.cap : (i+1)*l.cap]
	for k := 0; k < l.counts[i]; {
		j := row[k]
		if geom.Distance(coords[i], coords[j]) >= horizon {
			l.counts[i]--
			row[k] = row[l.counts[i]]
		} else {
			k++
		}
	}
}

// Sever removes bonds (i, j) for which pred returns true, with the same
// in-place removal discipline as Break. Used to cut an initial crack through
// a freshly built list.
func (l *List) Sever(pred func(i, j int) bool) {
	for i := 0; i < l.n; i++ {
		row := l.data[i*l.cap : (i+1)*l.cap]
		for k := 0; k < l.counts[i]; {
			if pred(i, row[k]) {
				l.counts[i]--
				row[k] = row[l.counts[i]]
			} else {
				k++
			}
		}
	}
}

// Len returns the number of particles (rows).
func (l *List) Len() int { return l.n }

// Capacity returns the fixed row capacity.
func (l *List) Capacity() int { return l.cap }

// Count returns the number of valid bonds of particle i.
func (l *List) Count(i int) int { return l.counts[i] }

// Counts returns the per-particle bond counts. The slice is the live backing
// array and must not be mutated.
func (l *List) Counts() []int { return l.counts }

// Row returns the valid bonds of particle i. The slice aliases the list and
// is invalidated by the next Break or Sever.
func (l *List) Row(i int) []int {
	return l.data[i*l.cap : i*l.cap+l.counts[i]]
}

// TotalBonds returns the number of valid entries over all rows. Each intact
// pair is counted twice, once per direction.
func (l *List) TotalBonds() int {
	total := 0
	for _, c := range l.counts {
		total += c
	}
	return total
}

// Truncated reports whether any row overflowed its capacity at build time.
func (l *List) Truncated() bool { return l.truncated > 0 }

// TruncatedRows returns the number of rows cut at capacity during Build.
func (l *List) TruncatedRows() int { return l.truncated }

// CloneCounts returns a copy of the current counts, typically snapshotted
// right after setup as the reference for damage fractions.
func (l *List) CloneCounts() []int {
	out := make([]int, l.n)
	copy(out, l.counts)
	return out
}
