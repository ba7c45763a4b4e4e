package sim

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/peridyn/internal/material"
	"github.com/san-kum/peridyn/internal/mesh"
)

func plateProblem(t *testing.T, crack *material.Crack, useGrid bool) *Problem {
	t.Helper()
	m := mesh.Lattice(10, 10, 0.1)
	p, err := Setup(m, material.Default(), 0.15, 0, crack, useGrid)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return p
}

func TestSetup(t *testing.T) {
	p := plateProblem(t, nil, false)

	if p.List.Len() != 100 {
		t.Fatalf("expected 100 rows, got %d", p.List.Len())
	}
	if p.List.Truncated() {
		t.Error("auto capacity should never truncate")
	}
	if len(p.Left) == 0 || len(p.Right) == 0 {
		t.Error("boundary sets should not be empty")
	}

	// Interior particle: 4 axis neighbours + 4 diagonals within 0.15.
	if c := p.List.Count(44); c != 8 {
		t.Errorf("interior particle: expected family 8, got %d", c)
	}

	for i, d := range p.Damage() {
		if d != 0 {
			t.Errorf("particle %d: non-zero damage before any step: %f", i, d)
		}
	}
}

func TestSetupGridMatchesNaive(t *testing.T) {
	naive := plateProblem(t, nil, false)
	gridded := plateProblem(t, nil, true)

	for i := 0; i < naive.List.Len(); i++ {
		if naive.List.Count(i) != gridded.List.Count(i) {
			t.Fatalf("particle %d: naive count %d != grid count %d",
				i, naive.List.Count(i), gridded.List.Count(i))
		}
	}
}

func TestSetupWithCrack(t *testing.T) {
	crack := &material.Crack{X: 0.45, YMin: -1, YMax: 2}
	p := plateProblem(t, crack, false)

	for i := 0; i < p.List.Len(); i++ {
		for _, j := range p.List.Row(i) {
			left := p.Ref[i][0] < 0.45
			if left != (p.Ref[j][0] < 0.45) {
				t.Fatalf("bond (%d,%d) crosses the pre-crack", i, j)
			}
		}
	}

	// Pre-cracked bonds are not damage: counts were snapshotted after the cut.
	for i, d := range p.Damage() {
		if d != 0 {
			t.Errorf("particle %d: pre-crack counted as damage: %f", i, d)
		}
	}
}

func TestRunFractures(t *testing.T) {
	p := plateProblem(t, nil, false)
	s := New(p)
	s.AddMetric(NewPeakDamage())
	s.AddMetric(NewBrokenBonds())

	cfg := Config{Dt: 1e-3, Steps: 30, LoadRate: 0.01, Workers: 1, ValidateState: true}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 30 {
		t.Fatalf("expected 30 steps, got %d", result.StepsTaken)
	}
	if len(result.Times) != 30 || len(result.MeanDamage) != 30 {
		t.Fatalf("series lengths %d/%d, expected 30", len(result.Times), len(result.MeanDamage))
	}

	// Bonds only break, so both series are monotone.
	for i := 1; i < len(result.MeanDamage); i++ {
		if result.MeanDamage[i] < result.MeanDamage[i-1] {
			t.Fatalf("mean damage decreased at step %d", i)
		}
		if result.ActiveBonds[i] > result.ActiveBonds[i-1] {
			t.Fatalf("active bonds grew at step %d", i)
		}
	}

	final := result.MeanDamage[len(result.MeanDamage)-1]
	if final <= 0 {
		t.Error("expected fracture under tensile load, mean damage stayed zero")
	}
	if result.Metrics["peak_damage"] <= 0 {
		t.Error("peak damage metric stayed zero")
	}
	if result.Metrics["broken_bonds"] <= 0 {
		t.Error("broken bonds metric stayed zero")
	}
}

func TestRunParallelMatchesSerial(t *testing.T) {
	cfg := Config{Dt: 1e-3, Steps: 15, LoadRate: 0.01, ValidateState: true}

	serialCfg, parallelCfg := cfg, cfg
	serialCfg.Workers = 1
	parallelCfg.Workers = 4

	serial, err := New(plateProblem(t, nil, false)).Run(context.Background(), serialCfg)
	if err != nil {
		t.Fatalf("serial run failed: %v", err)
	}
	parallel, err := New(plateProblem(t, nil, false)).Run(context.Background(), parallelCfg)
	if err != nil {
		t.Fatalf("parallel run failed: %v", err)
	}

	for i := range serial.ActiveBonds {
		if serial.ActiveBonds[i] != parallel.ActiveBonds[i] {
			t.Fatalf("step %d: serial %d bonds, parallel %d",
				i, serial.ActiveBonds[i], parallel.ActiveBonds[i])
		}
	}
}

func TestRunCanceled(t *testing.T) {
	p := plateProblem(t, nil, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(p).Run(ctx, DefaultConfig())
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps after cancellation, got %d", result.StepsTaken)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	p := plateProblem(t, nil, false)
	s := New(p)

	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Steps: 10}},
		{"negative dt", Config{Dt: -1, Steps: 10}},
		{"zero steps", Config{Dt: 0.01, Steps: 0}},
		{"negative load rate", Config{Dt: 0.01, Steps: 10, LoadRate: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tc.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestOverstretchedBonds(t *testing.T) {
	m := mesh.Lattice(2, 1, 1.0)
	p, err := Setup(m, material.Default(), 1.5, 0, nil, false)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	metric := NewOverstretchedBonds()

	metric.Observe(1, 0.001, p, nil)
	if metric.Value() != 0 {
		t.Fatalf("at rest: expected 0 overstretched bonds, got %v", metric.Value())
	}

	// Stretch the single bond to 10%, well past the 0.5% critical stretch.
	p.Cur[1][0] = 1.1
	metric.Observe(2, 0.002, p, nil)
	if metric.Value() != 2 {
		t.Fatalf("expected both directed bonds overstretched, got %v", metric.Value())
	}

	metric.Reset()
	if metric.Value() != 0 {
		t.Errorf("reset did not clear the count: %v", metric.Value())
	}
}

func TestVTKSnapshots(t *testing.T) {
	p := plateProblem(t, nil, false)
	s := New(p)

	dir := t.TempDir()
	snaps := NewVTKSnapshots(dir, 5)
	s.AddObserver(snaps)

	cfg := Config{Dt: 1e-3, Steps: 10, LoadRate: 0.001, Workers: 1}
	if _, err := s.Run(context.Background(), cfg); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(snaps.Errs) != 0 {
		t.Fatalf("snapshot errors: %v", snaps.Errs)
	}

	for _, step := range []int{5, 10} {
		path := filepath.Join(dir, fmt.Sprintf("u_t%d.vtk", step))
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing snapshot for step %d: %v", step, err)
		}
	}
}
