package metrics

import (
	"testing"

	"gosph/internal/particle"
	"gosph/internal/vec"
)

func testParticles(vx float64) []particle.Particle {
	return []particle.Particle{
		{Mass: 2.0, Vel: vec.Vector{vx, 0, 0}, Ene: 1.0},
		{Mass: 2.0, Vel: vec.Vector{-vx, 0, 0}, Ene: 1.0},
	}
}

func TestEnergy(t *testing.T) {
	e := NewEnergy(false)
	e.Observe(testParticles(3.0), 0)

	// 2 * (0.5*2*9 + 2*1) = 22
	if e.Value() != 22.0 {
		t.Errorf("expected energy 22, got %g", e.Value())
	}

	e.Reset()
	if e.Value() != 0 {
		t.Error("reset did not clear value")
	}
}

func TestEnergyWithGravity(t *testing.T) {
	parts := testParticles(0)
	parts[0].Phi = -1.0
	parts[1].Phi = -1.0

	e := NewEnergy(true)
	e.Observe(parts, 0)

	// internal 4, potential 0.5*2*(-1)*2 = -2
	if e.Value() != 2.0 {
		t.Errorf("expected energy 2, got %g", e.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	d := NewEnergyDrift(false)
	d.Observe(testParticles(3.0), 0)
	if d.Value() != 0 {
		t.Errorf("expected zero drift at first observation, got %g", d.Value())
	}

	d.Observe(testParticles(0), 1) // energy 22 -> 4
	want := 18.0 / 22.0
	if diff := d.Value() - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("expected drift %g, got %g", want, d.Value())
	}

	// Drift is a running maximum.
	d.Observe(testParticles(3.0), 2)
	if d.Value() != want {
		t.Errorf("drift should not shrink, got %g", d.Value())
	}
}

func TestMomentum(t *testing.T) {
	m := NewMomentum()
	m.Observe(testParticles(3.0), 0)
	if m.Value() != 0 {
		t.Errorf("expected zero net momentum, got %g", m.Value())
	}

	parts := testParticles(3.0)
	parts[1].Vel = vec.Vector{}
	m.Observe(parts, 0)
	if m.Value() != 6.0 {
		t.Errorf("expected momentum 6, got %g", m.Value())
	}
}
