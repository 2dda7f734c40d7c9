// Package particle defines the SPH particle schema shared by real and ghost
// particles, together with the sentinel errors of the substrate.
package particle

import (
	"math"

	"gosph/internal/vec"
)

// Type discriminates real particles from boundary ghosts.
type Type int

const (
	Real Type = iota
	Ghost
)

func (t Type) String() string {
	if t == Ghost {
		return "ghost"
	}
	return "real"
}

// Particle is the per-particle state. Real and ghost particles share the
// schema; ghosts are rebuilt from their source real particle every step.
type Particle struct {
	Pos     vec.Vector // position
	Vel     vec.Vector // velocity
	VelHalf vec.Vector // velocity at t + dt/2 (leapfrog predictor)
	Acc     vec.Vector // acceleration

	Mass    float64
	Dens    float64 // mass density
	Pres    float64 // pressure
	Ene     float64 // specific internal energy
	EneHalf float64 // energy at t + dt/2
	DEne    float64 // du/dt
	Sound   float64 // sound speed

	Sml     float64 // smoothing length h
	GradH   float64 // grad-h correction term
	Balsara float64 // shear-reduction factor (consumed, not computed here)
	Alpha   float64 // artificial-viscosity coefficient
	Phi     float64 // gravitational potential

	Neighbor int // neighbor count from the last search
	ID       int
	Type     Type
}

// HasValidSml reports whether the smoothing length is finite and positive.
func (p *Particle) HasValidSml() bool {
	return p.Sml > 0 && !math.IsNaN(p.Sml) && !math.IsInf(p.Sml, 0)
}
