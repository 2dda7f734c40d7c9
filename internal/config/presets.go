package config

var Presets = map[string]*Config{
	"shock_tube": {
		Dim: 1, Kernel: "cubic_spline", IterativeSml: true,
		Time:    TimeConfig{Start: 0, End: 0.2},
		CFL:     CFLConfig{Sound: DefaultCFLSound, Force: DefaultCFLForce},
		Physics: PhysicsConfig{NeighborNumber: DefaultNeighborNumber, Gamma: 1.4, KernelRatio: DefaultKernelRatio},
		AV:      AVConfig{Alpha: DefaultAlphaAV, UseBalsara: true},
		Tree:    TreeConfig{MaxLevel: DefaultMaxLevel, LeafParticleNum: DefaultLeafNum},
		Boundaries: []AxisBoundary{
			{Axis: 0, Type: "mirror", Lower: true, Upper: true, Min: 0, Max: 1, Mirror: "free_slip"},
		},
		Scenario: ScenarioConfig{Name: "shock_tube", ParticleCount: 450, DomainMin: 0, DomainMax: 1},
	},
	"periodic_box_2d": {
		Dim: 2, Kernel: "cubic_spline", IterativeSml: true,
		Time:    TimeConfig{Start: 0, End: 0.1},
		CFL:     CFLConfig{Sound: DefaultCFLSound, Force: DefaultCFLForce},
		Physics: PhysicsConfig{NeighborNumber: DefaultNeighborNumber, Gamma: DefaultGamma, KernelRatio: DefaultKernelRatio},
		AV:      AVConfig{Alpha: DefaultAlphaAV, UseBalsara: true},
		Tree:    TreeConfig{MaxLevel: DefaultMaxLevel, LeafParticleNum: DefaultLeafNum},
		Boundaries: []AxisBoundary{
			{Axis: 0, Type: "periodic", Min: 0, Max: 1},
			{Axis: 1, Type: "periodic", Min: 0, Max: 1},
		},
		Scenario: ScenarioConfig{Name: "uniform_box", ParticleCount: 1024, DomainMin: 0, DomainMax: 1},
	},
	"gravity_box_3d": {
		Dim: 3, Kernel: "cubic_spline", IterativeSml: true,
		Time:     TimeConfig{Start: 0, End: 0.1},
		CFL:      CFLConfig{Sound: DefaultCFLSound, Force: DefaultCFLForce},
		Physics:  PhysicsConfig{NeighborNumber: DefaultNeighborNumber, Gamma: DefaultGamma, KernelRatio: DefaultKernelRatio},
		AV:       AVConfig{Alpha: DefaultAlphaAV, UseBalsara: true},
		Tree:     TreeConfig{MaxLevel: DefaultMaxLevel, LeafParticleNum: DefaultLeafNum},
		Gravity:  GravityConfig{Enabled: true, Constant: 1.0, Theta: DefaultTheta},
		Scenario: ScenarioConfig{Name: "uniform_box", ParticleCount: 512, DomainMin: -0.5, DomainMax: 0.5},
	},
}

// GetPreset returns a copy of the named preset; callers may tweak it (and
// scenario builders fill in boundary spacings) without mutating the table.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	out := *cfg
	out.Boundaries = append([]AxisBoundary(nil), cfg.Boundaries...)
	return &out
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
