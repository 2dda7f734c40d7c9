// Package config loads and validates simulation configuration from yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gosph/internal/boundary"
)

const (
	DefaultNeighborNumber = 32
	DefaultGamma          = 5.0 / 3.0
	DefaultKernelRatio    = 1.2
	DefaultCFLSound       = 0.3
	DefaultCFLForce       = 0.25
	DefaultMaxLevel       = 20
	DefaultLeafNum        = 8
	DefaultTheta          = 0.5
	DefaultAlphaAV        = 1.0
	DefaultEndTime        = 0.2
)

type Config struct {
	Dim          int            `yaml:"dim"`
	Kernel       string         `yaml:"kernel"`
	IterativeSml bool           `yaml:"iterative_sml"`
	Time         TimeConfig     `yaml:"time"`
	CFL          CFLConfig      `yaml:"cfl"`
	Physics      PhysicsConfig  `yaml:"physics"`
	AV           AVConfig       `yaml:"av"`
	Tree         TreeConfig     `yaml:"tree"`
	Gravity      GravityConfig  `yaml:"gravity"`
	Boundaries   []AxisBoundary `yaml:"boundaries"`
	Scenario     ScenarioConfig `yaml:"scenario"`
}

type TimeConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

type CFLConfig struct {
	Sound float64 `yaml:"sound"`
	Force float64 `yaml:"force"`
}

type PhysicsConfig struct {
	NeighborNumber int     `yaml:"neighbor_number"`
	Gamma          float64 `yaml:"gamma"`
	KernelRatio    float64 `yaml:"kernel_ratio"`
}

type AVConfig struct {
	Alpha      float64 `yaml:"alpha"`
	UseBalsara bool    `yaml:"use_balsara"`
}

type TreeConfig struct {
	MaxLevel        int `yaml:"max_level"`
	LeafParticleNum int `yaml:"leaf_particle_num"`
}

type GravityConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Constant float64 `yaml:"constant"`
	Theta    float64 `yaml:"theta"`
}

// AxisBoundary is the per-dimension boundary block. Axis indexes the spatial
// dimension (0=x, 1=y, 2=z).
type AxisBoundary struct {
	Axis         int     `yaml:"axis"`
	Type         string  `yaml:"type"` // none | periodic | mirror
	Lower        bool    `yaml:"lower"`
	Upper        bool    `yaml:"upper"`
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
	Mirror       string  `yaml:"mirror"` // no_slip | free_slip
	SpacingLower float64 `yaml:"spacing_lower"`
	SpacingUpper float64 `yaml:"spacing_upper"`
}

type ScenarioConfig struct {
	Name          string  `yaml:"name"`
	ParticleCount int     `yaml:"particle_count"`
	DomainMin     float64 `yaml:"domain_min"`
	DomainMax     float64 `yaml:"domain_max"`
}

func DefaultConfig() *Config {
	return &Config{
		Dim:          1,
		Kernel:       "cubic_spline",
		IterativeSml: true,
		Time:         TimeConfig{Start: 0, End: DefaultEndTime},
		CFL:          CFLConfig{Sound: DefaultCFLSound, Force: DefaultCFLForce},
		Physics: PhysicsConfig{
			NeighborNumber: DefaultNeighborNumber,
			Gamma:          DefaultGamma,
			KernelRatio:    DefaultKernelRatio,
		},
		AV:   AVConfig{Alpha: DefaultAlphaAV, UseBalsara: true},
		Tree: TreeConfig{MaxLevel: DefaultMaxLevel, LeafParticleNum: DefaultLeafNum},
		Gravity: GravityConfig{
			Enabled:  false,
			Constant: 1.0,
			Theta:    DefaultTheta,
		},
		Scenario: ScenarioConfig{
			Name:          "shock_tube",
			ParticleCount: 200,
			DomainMin:     0.0,
			DomainMax:     1.0,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
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

func (c *Config) Validate() error {
	if c.Dim < 1 || c.Dim > 3 {
		return fmt.Errorf("config: dim must be 1, 2 or 3, got %d", c.Dim)
	}
	if c.Time.End <= c.Time.Start {
		return fmt.Errorf("config: time.end (%g) must exceed time.start (%g)", c.Time.End, c.Time.Start)
	}
	if c.Physics.NeighborNumber <= 0 {
		return fmt.Errorf("config: physics.neighbor_number must be positive, got %d", c.Physics.NeighborNumber)
	}
	if c.Physics.Gamma <= 1.0 {
		return fmt.Errorf("config: physics.gamma must exceed 1, got %g", c.Physics.Gamma)
	}
	if c.Physics.KernelRatio < 1.0 {
		return fmt.Errorf("config: physics.kernel_ratio must be >= 1, got %g", c.Physics.KernelRatio)
	}
	if c.CFL.Sound <= 0 || c.CFL.Force <= 0 {
		return fmt.Errorf("config: cfl coefficients must be positive, got sound=%g force=%g",
			c.CFL.Sound, c.CFL.Force)
	}
	if c.Gravity.Enabled && c.Gravity.Theta < 0 {
		return fmt.Errorf("config: gravity.theta must be non-negative, got %g", c.Gravity.Theta)
	}
	for _, b := range c.Boundaries {
		if b.Axis < 0 || b.Axis >= c.Dim {
			return fmt.Errorf("config: boundary axis %d out of range for dim %d", b.Axis, c.Dim)
		}
	}
	bc, err := c.BoundaryConfig()
	if err != nil {
		return err
	}
	if bc != nil {
		return bc.Validate()
	}
	return nil
}

// BoundaryConfig converts the yaml boundary blocks to the boundary package's
// configuration value object. Returns nil when no boundaries are configured.
func (c *Config) BoundaryConfig() (*boundary.Config, error) {
	if len(c.Boundaries) == 0 {
		return nil, nil
	}
	bc := &boundary.Config{Enabled: true, Dim: c.Dim}
	for _, b := range c.Boundaries {
		t, err := boundary.ParseType(b.Type)
		if err != nil {
			return nil, err
		}
		m, err := boundary.ParseMirrorType(b.Mirror)
		if err != nil {
			return nil, err
		}
		d := b.Axis
		bc.Types[d] = t
		bc.EnableLower[d] = b.Lower
		bc.EnableUpper[d] = b.Upper
		bc.RangeMin[d] = b.Min
		bc.RangeMax[d] = b.Max
		bc.MirrorTypes[d] = m
		bc.SpacingLower[d] = b.SpacingLower
		bc.SpacingUpper[d] = b.SpacingUpper
	}
	return bc, nil
}
