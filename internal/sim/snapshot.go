package sim

import (
	"fmt"
	"path/filepath"

	"github.com/san-kum/peridyn/internal/mesh"
)

// VTKSnapshots writes a legacy VTK file of damage and displacement every
// Every steps. Write failures are collected rather than aborting the run.
type VTKSnapshots struct {
	Dir   string
	Every int

	Errs []error
}

func NewVTKSnapshots(dir string, every int) *VTKSnapshots {
	if every < 1 {
		every = 1
	}
	return &VTKSnapshots{Dir: dir, Every: every}
}

func (v *VTKSnapshots) OnStep(step int, t float64, p *Problem, damage []float64) {
	if step%v.Every != 0 {
		return
	}
	path := filepath.Join(v.Dir, fmt.Sprintf("u_t%d.vtk", step))
	if err := mesh.WriteVTK(path, p.Mesh, damage, p.U); err != nil {
		v.Errs = append(v.Errs, err)
	}
}
