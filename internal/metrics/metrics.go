// Package metrics computes running diagnostics over the particle set, meant
// to be observed once per step and reported at the end of a run.
package metrics

import "gosph/internal/particle"

type Metric interface {
	Name() string
	Observe(parts []particle.Particle, t float64)
	Value() float64
	Reset()
}
