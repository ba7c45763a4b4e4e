package sim

import "fmt"

// Config controls a quasi-static fracture run.
type Config struct {
	Dt            float64
	Steps         int
	LoadRate      float64
	Workers       int
	ValidateState bool
}

// DefaultConfig mirrors the reference plate problem.
func DefaultConfig() Config {
	return Config{
		Dt:            1e-3,
		Steps:         400,
		LoadRate:      1e-5,
		Workers:       0,
		ValidateState: true,
	}
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %f", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("sim: steps must be positive, got %d", c.Steps)
	}
	if c.LoadRate < 0 {
		return fmt.Errorf("sim: load rate must be non-negative, got %f", c.LoadRate)
	}
	return nil
}

// Observer receives the problem state after every completed step.
type Observer interface {
	OnStep(step int, t float64, p *Problem, damage []float64)
}

// Metric accumulates a scalar over a run.
type Metric interface {
	Name() string
	Observe(step int, t float64, p *Problem, damage []float64)
	Value() float64
	Reset()
}

// Result holds the per-step series of a run.
type Result struct {
	Times       []float64
	MeanDamage  []float64
	MaxDamage   []float64
	ActiveBonds []int
	FinalDamage []float64
	Metrics     map[string]float64
	StepsTaken  int
	Errors      []error
}

// SimError marks a step that produced an invalid state.
type SimError struct {
	Step    int
	Time    float64
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
