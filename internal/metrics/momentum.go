package metrics

import (
	"gosph/internal/particle"
	"gosph/internal/vec"
)

// Momentum tracks the magnitude of the net linear momentum. For a closed
// system it should stay near zero up to boundary effects.
type Momentum struct {
	name    string
	current float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(parts []particle.Particle, t float64) {
	var total vec.Vector
	for i := range parts {
		total = total.Add(parts[i].Vel.Scale(parts[i].Mass))
	}
	m.current = total.Norm()
}

func (m *Momentum) Value() float64 { return m.current }

func (m *Momentum) Reset() { m.current = 0 }
