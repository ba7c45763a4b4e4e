package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHorizon      = 0.1
	DefaultMicromodulus = 0.05
	DefaultCritStretch  = 0.005
	DefaultDt           = 1e-3
	DefaultSteps        = 400
	DefaultLoadRate     = 1e-5
	DefaultNX           = 25
	DefaultNY           = 25
)

type Config struct {
	Mesh     MeshConfig  `yaml:"mesh"`
	Horizon  float64     `yaml:"horizon"`
	Capacity int         `yaml:"capacity"` // 0 = size from the largest family
	UseGrid  bool        `yaml:"use_grid"`
	Material MatConfig   `yaml:"material"`
	Crack    CrackConfig `yaml:"crack"`
	Dt       float64     `yaml:"dt"`
	Steps    int         `yaml:"steps"`
	LoadRate float64     `yaml:"load_rate"`
	Workers  int         `yaml:"workers"`
	Snapshot SnapConfig  `yaml:"snapshot"`
}

type MeshConfig struct {
	File    string  `yaml:"file"` // gmsh file; empty = regular lattice
	NX      int     `yaml:"nx"`
	NY      int     `yaml:"ny"`
	Spacing float64 `yaml:"spacing"` // 0 = unit plate, 1/(nx-1)
}

type MatConfig struct {
	Micromodulus float64 `yaml:"micromodulus"`
	CritStretch  float64 `yaml:"crit_stretch"`
}

type CrackConfig struct {
	Enabled bool    `yaml:"enabled"`
	X       float64 `yaml:"x"`
	YMin    float64 `yaml:"y_min"`
	YMax    float64 `yaml:"y_max"`
}

type SnapConfig struct {
	Dir   string `yaml:"dir"`
	Every int    `yaml:"every"` // 0 = no VTK output
}

func DefaultConfig() *Config {
	return &Config{
		Mesh: MeshConfig{
			NX: DefaultNX,
			NY: DefaultNY,
		},
		Horizon: DefaultHorizon,
		Material: MatConfig{
			Micromodulus: DefaultMicromodulus,
			CritStretch:  DefaultCritStretch,
		},
		Dt:       DefaultDt,
		Steps:    DefaultSteps,
		LoadRate: DefaultLoadRate,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Mesh.File == "" && (c.Mesh.NX < 2 || c.Mesh.NY < 2) {
		return fmt.Errorf("config: lattice needs nx and ny of at least 2, got %dx%d", c.Mesh.NX, c.Mesh.NY)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("config: horizon must be positive, got %f", c.Horizon)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %f", c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	}
	return nil
}

// LatticeSpacing returns the configured spacing, defaulting to a unit-width
// plate.
func (c *Config) LatticeSpacing() float64 {
	if c.Mesh.Spacing > 0 {
		return c.Mesh.Spacing
	}
	return 1.0 / float64(c.Mesh.NX-1)
}
