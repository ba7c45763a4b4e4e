// Package mesh provides particle discretizations and their file formats:
// regular lattices, gmsh node import and legacy VTK output.
package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Mesh is a particle discretization: one coordinate row and one volume per
// particle. Index is particle identity for the whole simulation.
type Mesh struct {
	Coords [][]float64
	Volume []float64
	Dim    int
}

// Len returns the number of particles.
func (m *Mesh) Len() int { return len(m.Coords) }

// Extent returns the maximum coordinate along axis d.
func (m *Mesh) Extent(d int) float64 {
	max := 0.0
	for _, p := range m.Coords {
		if p[d] > max {
			max = p[d]
		}
	}
	return max
}

// Lattice builds a regular nx-by-ny particle grid in 2-D with the given
// spacing, anchored at the origin. Each particle carries a cell volume of
// spacing squared.
func Lattice(nx, ny int, spacing float64) *Mesh {
	coords := make([][]float64, 0, nx*ny)
	volume := make([]float64, 0, nx*ny)
	for r := 0; r < ny; r++ {
		for c := 0; c < nx; c++ {
			coords = append(coords, []float64{float64(c) * spacing, float64(r) * spacing})
			volume = append(volume, spacing*spacing)
		}
	}
	return &Mesh{Coords: coords, Volume: volume, Dim: 2}
}

// ReadGmsh reads the $Nodes section of a gmsh v2 ASCII file. Nodes whose z
// coordinate is uniformly zero collapse to 2-D points. Per-particle volume is
// the bounding-box measure divided evenly across particles.
func ReadGmsh(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	var coords [][]float64
	inNodes := false
	expect := -1

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "$Nodes":
			inNodes = true
			expect = -1
		case line == "$EndNodes":
			inNodes = false
		case inNodes && expect == -1:
			n, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("mesh: bad node count %q: %w", line, err)
			}
			expect = n
			coords = make([][]float64, 0, n)
		case inNodes:
			fields := strings.Fields(line)
			if len(fields) != 4 {
				return nil, fmt.Errorf("mesh: bad node line %q", line)
			}
			p := make([]float64, 3)
			for d := 0; d < 3; d++ {
				v, err := strconv.ParseFloat(fields[d+1], 64)
				if err != nil {
					return nil, fmt.Errorf("mesh: bad coordinate %q: %w", fields[d+1], err)
				}
				p[d] = v
			}
			coords = append(coords, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("mesh: no nodes in %s", path)
	}
	if expect >= 0 && len(coords) != expect {
		return nil, fmt.Errorf("mesh: expected %d nodes, read %d", expect, len(coords))
	}

	flat := true
	for _, p := range coords {
		if p[2] != 0 {
			flat = false
			break
		}
	}
	dim := 3
	if flat {
		dim = 2
		for i, p := range coords {
			coords[i] = p[:2]
		}
	}

	m := &Mesh{Coords: coords, Dim: dim}
	m.Volume = uniformVolume(coords, dim)
	return m, nil
}

func uniformVolume(coords [][]float64, dim int) []float64 {
	measure := 1.0
	for d := 0; d < dim; d++ {
		lo, hi := coords[0][d], coords[0][d]
		for _, p := range coords {
			if p[d] < lo {
				lo = p[d]
			}
			if p[d] > hi {
				hi = p[d]
			}
		}
		if hi > lo {
			measure *= hi - lo
		}
	}

	per := measure / float64(len(coords))
	volume := make([]float64, len(coords))
	for i := range volume {
		volume[i] = per
	}
	return volume
}

// WriteVTK writes the particle set with per-particle damage and displacement
// as a legacy ASCII VTK unstructured grid, one file per snapshot.
func WriteVTK(path string, m *Mesh, damage []float64, displacement [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# vtk DataFile Version 3.0")
	fmt.Fprintln(w, "peridyn snapshot")
	fmt.Fprintln(w, "ASCII")
	fmt.Fprintln(w, "DATASET UNSTRUCTURED_GRID")
	fmt.Fprintf(w, "POINTS %d float\n", m.Len())
	for _, p := range m.Coords {
		writeVec3(w, p)
	}

	fmt.Fprintf(w, "POINT_DATA %d\n", m.Len())
	fmt.Fprintln(w, "SCALARS damage float 1")
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for _, d := range damage {
		fmt.Fprintf(w, "%g\n", d)
	}

	fmt.Fprintln(w, "VECTORS displacement float")
	for _, u := range displacement {
		writeVec3(w, u)
	}

	return w.Flush()
}

func writeVec3(w *bufio.Writer, v []float64) {
	for d := 0; d < 3; d++ {
		if d > 0 {
			w.WriteByte(' ')
		}
		x := 0.0
		if d < len(v) {
			x = v[d]
		}
		fmt.Fprintf(w, "%g", x)
	}
	w.WriteByte('\n')
}
