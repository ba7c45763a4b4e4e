package sim

import "github.com/san-kum/peridyn/internal/material"

// PeakDamage tracks the largest per-particle damage fraction seen in a run.
type PeakDamage struct {
	peak float64
}

func NewPeakDamage() *PeakDamage { return &PeakDamage{} }

func (m *PeakDamage) Name() string { return "peak_damage" }

func (m *PeakDamage) Observe(step int, t float64, p *Problem, damage []float64) {
	for _, d := range damage {
		if d > m.peak {
			m.peak = d
		}
	}
}

func (m *PeakDamage) Value() float64 { return m.peak }
func (m *PeakDamage) Reset()         { m.peak = 0 }

// BrokenBonds counts the directed bonds lost since the run started.
type BrokenBonds struct {
	initial int
	current int
	started bool
}

func NewBrokenBonds() *BrokenBonds { return &BrokenBonds{} }

func (m *BrokenBonds) Name() string { return "broken_bonds" }

func (m *BrokenBonds) Observe(step int, t float64, p *Problem, damage []float64) {
	if !m.started {
		m.initial = 0
		for _, c := range p.Initial {
			m.initial += c
		}
		m.started = true
	}
	m.current = p.List.TotalBonds()
}

func (m *BrokenBonds) Value() float64 {
	if !m.started {
		return 0
	}
	return float64(m.initial - m.current)
}

func (m *BrokenBonds) Reset() {
	m.initial = 0
	m.current = 0
	m.started = false
}

// OverstretchedBonds counts directed bonds whose current stretch exceeds the
// material's critical stretch. Since pruning is distance-based, these are the
// bonds closest to breaking.
type OverstretchedBonds struct {
	count int
}

func NewOverstretchedBonds() *OverstretchedBonds { return &OverstretchedBonds{} }

func (m *OverstretchedBonds) Name() string { return "overstretched_bonds" }

func (m *OverstretchedBonds) Observe(step int, t float64, p *Problem, damage []float64) {
	n := 0
	for i := 0; i < p.List.Len(); i++ {
		for _, j := range p.List.Row(i) {
			if material.Stretch(p.Ref[i], p.Ref[j], p.Cur[i], p.Cur[j]) > p.Mat.CritStretch {
				n++
			}
		}
	}
	m.count = n
}

func (m *OverstretchedBonds) Value() float64 { return float64(m.count) }
func (m *OverstretchedBonds) Reset()         { m.count = 0 }

// IsolatedParticles counts particles whose every bond has broken.
type IsolatedParticles struct {
	count int
}

func NewIsolatedParticles() *IsolatedParticles { return &IsolatedParticles{} }

func (m *IsolatedParticles) Name() string { return "isolated_particles" }

func (m *IsolatedParticles) Observe(step int, t float64, p *Problem, damage []float64) {
	n := 0
	for i, c := range p.List.Counts() {
		if c == 0 && p.Initial[i] > 0 {
			n++
		}
	}
	m.count = n
}

func (m *IsolatedParticles) Value() float64 { return float64(m.count) }
func (m *IsolatedParticles) Reset()         { m.count = 0 }
