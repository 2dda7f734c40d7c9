package metrics

import (
	"math"

	"gosph/internal/particle"
)

// Energy tracks the current total energy: kinetic plus internal, plus
// gravitational potential when enabled.
type Energy struct {
	name        string
	withGravity bool
	current     float64
	samples     int
}

func NewEnergy(withGravity bool) *Energy {
	return &Energy{name: "energy", withGravity: withGravity}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(parts []particle.Particle, t float64) {
	e.current = TotalEnergy(parts, e.withGravity)
	e.samples++
}

func (e *Energy) Value() float64 { return e.current }

func (e *Energy) Reset() {
	e.current = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation of total energy from its
// first observation.
type EnergyDrift struct {
	name        string
	withGravity bool
	initial     float64
	maxDrift    float64
	samples     int
}

func NewEnergyDrift(withGravity bool) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", withGravity: withGravity}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(parts []particle.Particle, t float64) {
	energy := TotalEnergy(parts, e.withGravity)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++
	if e.initial == 0 {
		return
	}
	drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
	if drift > e.maxDrift {
		e.maxDrift = drift
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// TotalEnergy sums kinetic plus internal energy, plus half the
// gravitational potential per particle when self-gravity is on.
func TotalEnergy(parts []particle.Particle, withGravity bool) float64 {
	total := 0.0
	for i := range parts {
		p := &parts[i]
		total += p.Mass * (0.5*p.Vel.Norm2() + p.Ene)
		if withGravity {
			total += 0.5 * p.Mass * p.Phi
		}
	}
	return total
}
