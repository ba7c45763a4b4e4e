// Package sim drives a peridynamic fracture run: per step it accumulates
// bond forces, advances displacements with an explicit Euler update, applies
// the boundary loading, and prunes broken bonds from the neighbour list.
package sim

import (
	"context"
	"math"
)

type Simulator struct {
	prob      *Problem
	observers []Observer
	metrics   []Metric
}

func New(p *Problem) *Simulator {
	return &Simulator{prob: p}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }

// Run executes cfg.Steps fracture steps. The problem's displacement state and
// neighbour list are mutated in place; a second Run continues from where the
// first stopped.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := s.prob
	result := &Result{
		Times:       make([]float64, 0, cfg.Steps),
		MeanDamage:  make([]float64, 0, cfg.Steps),
		MaxDamage:   make([]float64, 0, cfg.Steps),
		ActiveBonds: make([]int, 0, cfg.Steps),
		Metrics:     make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for step := 1; step <= cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		t := float64(step) * cfg.Dt
		damage := s.Step(step, cfg)
		mean, max := summarize(damage)

		result.Times = append(result.Times, t)
		result.MeanDamage = append(result.MeanDamage, mean)
		result.MaxDamage = append(result.MaxDamage, max)
		result.ActiveBonds = append(result.ActiveBonds, p.List.TotalBonds())
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(step, t, p, damage)
		}
		for _, o := range s.observers {
			o.OnStep(step, t, p, damage)
		}

		if cfg.ValidateState && !validDisplacement(p.U) {
			err := SimError{Step: step, Time: t, Message: "invalid displacement (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			break
		}
	}

	result.FinalDamage = p.Damage()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// Step advances the problem by one fracture step and returns the resulting
// per-particle damage. step is the 1-based global step number, which scales
// the boundary load.
func (s *Simulator) Step(step int, cfg Config) []float64 {
	p := s.prob
	dim := len(p.Ref[0])

	f := p.Mat.Force(p.Ref, p.Cur, p.Mesh.Volume, p.List, cfg.Workers)
	for i := range p.U {
		for d := 0; d < dim; d++ {
			p.U[i][d] += cfg.Dt * f[i][d]
		}
	}

	s.applyLoad(step, cfg.LoadRate, dim)

	for i := range p.Cur {
		for d := 0; d < dim; d++ {
			p.Cur[i][d] = p.Ref[i][d] + p.U[i][d]
		}
	}

	p.List.BreakParallel(p.Cur, p.Horizon, cfg.Workers)

	return p.Damage()
}

// applyLoad clamps the boundary sets transversally and pulls them apart along
// x at the configured rate, scaled by the step count.
func (s *Simulator) applyLoad(step int, rate float64, dim int) {
	p := s.prob
	pull := 0.5 * float64(step) * rate
	for _, i := range p.Left {
		p.U[i][0] = -pull
		for d := 1; d < dim; d++ {
			p.U[i][d] = 0
		}
	}
	for _, i := range p.Right {
		p.U[i][0] = pull
		for d := 1; d < dim; d++ {
			p.U[i][d] = 0
		}
	}
}

func summarize(damage []float64) (mean, max float64) {
	if len(damage) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, d := range damage {
		sum += d
		if d > max {
			max = d
		}
	}
	return sum / float64(len(damage)), max
}

func validDisplacement(u [][]float64) bool {
	for _, row := range u {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
