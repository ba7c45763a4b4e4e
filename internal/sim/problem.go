package sim

import (
	"github.com/san-kum/peridyn/internal/bonds"
	"github.com/san-kum/peridyn/internal/geom"
	"github.com/san-kum/peridyn/internal/material"
	"github.com/san-kum/peridyn/internal/mesh"
)

// Problem binds a particle mesh, a material and the neighbour list into one
// runnable fracture setup. Ref never changes after Setup; Cur and U are
// rewritten every step and the list shrinks in place.
type Problem struct {
	Mesh    *mesh.Mesh
	Mat     *material.PMB
	List    *bonds.List
	Horizon float64

	Ref [][]float64
	Cur [][]float64
	U   [][]float64

	// Initial bond counts, the reference for damage fractions.
	Initial []int

	// Tensile loading is applied to these particle sets (low/high x edge).
	Left  []int
	Right []int
}

// Setup builds the initial neighbour list for the mesh and prepares the
// displacement state. capacity <= 0 sizes the rows automatically from the
// largest family plus a small margin. A non-nil crack is cut into the list
// before the initial counts are snapshotted, so pre-cracked bonds never count
// as damage.
func Setup(m *mesh.Mesh, mat *material.PMB, horizon float64, capacity int, crack *material.Crack, useGrid bool) (*Problem, error) {
	if capacity <= 0 {
		family := bonds.Family(m.Coords, horizon)
		for _, c := range family {
			if c > capacity {
				capacity = c
			}
		}
		capacity += 2
		if capacity < 1 {
			capacity = 1
		}
	}

	var list *bonds.List
	var err error
	if useGrid {
		list, err = bonds.BuildGrid(m.Coords, horizon, capacity)
	} else {
		list, err = bonds.Build(m.Coords, horizon, capacity)
	}
	if err != nil {
		return nil, err
	}

	if crack != nil {
		list.Sever(crack.Predicate(m.Coords))
	}

	n := m.Len()
	dim := len(m.Coords[0])
	u := make([][]float64, n)
	for i := range u {
		u[i] = make([]float64, dim)
	}

	p := &Problem{
		Mesh:    m,
		Mat:     mat,
		List:    list,
		Horizon: horizon,
		Ref:     m.Coords,
		Cur:     geom.Clone(m.Coords),
		U:       u,
		Initial: list.CloneCounts(),
	}
	p.findBoundary()
	return p, nil
}

// findBoundary marks particles within 1.5 horizons of the low/high x edge as
// the loaded boundary sets.
func (p *Problem) findBoundary() {
	margin := 1.5 * p.Horizon
	extent := p.Mesh.Extent(0)
	for i, c := range p.Ref {
		switch {
		case c[0] < margin:
			p.Left = append(p.Left, i)
		case c[0] > extent-margin:
			p.Right = append(p.Right, i)
		}
	}
}

// Damage returns the current per-particle damage fractions.
func (p *Problem) Damage() []float64 {
	return material.Damage(p.List.Counts(), p.Initial)
}
