package force

import (
	"fmt"
	"runtime"

	"github.com/dgravesa/go-parallel/parallel"

	"gosph/internal/particle"
	"gosph/internal/tree"
)

// Gravity accumulates softened self-gravity onto accelerations already
// holding the fluid force. Runs after Fluid.Calculation.
type Gravity struct {
	workers int
}

func NewGravity() *Gravity {
	return &Gravity{workers: runtime.NumCPU()}
}

func (g *Gravity) Calculation(real []particle.Particle, t *tree.Tree) error {
	if len(real) == 0 {
		return fmt.Errorf("force: gravity: %w", particle.ErrEmptyParticles)
	}
	parallel.WithNumGoroutines(g.workers).For(len(real), func(i, _ int) {
		p := &real[i]
		acc, phi := t.TreeForce(p)
		p.Acc = p.Acc.Add(acc)
		p.Phi = phi
	})
	return nil
}
