package config

// Presets are ready-made plate problems, keyed by name.
var Presets = map[string]*Config{
	"plate-small": {
		Mesh:     MeshConfig{NX: 15, NY: 15},
		Horizon:  0.15,
		Material: MatConfig{Micromodulus: DefaultMicromodulus, CritStretch: DefaultCritStretch},
		Dt:       1e-3,
		Steps:    200,
		LoadRate: 5e-5,
	},
	"plate": {
		Mesh:     MeshConfig{NX: DefaultNX, NY: DefaultNY},
		Horizon:  DefaultHorizon,
		Material: MatConfig{Micromodulus: DefaultMicromodulus, CritStretch: DefaultCritStretch},
		Dt:       DefaultDt,
		Steps:    DefaultSteps,
		LoadRate: DefaultLoadRate,
	},
	"plate-cracked": {
		Mesh:     MeshConfig{NX: DefaultNX, NY: DefaultNY},
		Horizon:  DefaultHorizon,
		Material: MatConfig{Micromodulus: DefaultMicromodulus, CritStretch: DefaultCritStretch},
		Crack:    CrackConfig{Enabled: true, X: 0.5 + 1e-6, YMin: 0.35, YMax: 0.65},
		Dt:       DefaultDt,
		Steps:    DefaultSteps,
		LoadRate: DefaultLoadRate,
	},
	"plate-fine": {
		Mesh:     MeshConfig{NX: 50, NY: 50},
		Horizon:  0.06,
		UseGrid:  true,
		Material: MatConfig{Micromodulus: DefaultMicromodulus, CritStretch: DefaultCritStretch},
		Dt:       1e-3,
		Steps:    600,
		LoadRate: DefaultLoadRate,
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ListPresets returns the preset names in a stable order.
func ListPresets() []string {
	return []string{"plate-small", "plate", "plate-cracked", "plate-fine"}
}
