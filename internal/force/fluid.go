// Package force computes per-particle accelerations: the SPH fluid force
// with artificial viscosity, and softened self-gravity from the tree.
package force

import (
	"fmt"
	"runtime"

	"github.com/dgravesa/go-parallel/parallel"

	"gosph/internal/boundary"
	"gosph/internal/kernel"
	"gosph/internal/particle"
	"gosph/internal/tree"
	"gosph/internal/vec"
)

// Coefficient on the relative-velocity term of the signal velocity
// (Monaghan 1997).
const avBeta = 3.0

// Fluid computes the standard SPH momentum and energy equations with grad-h
// correction and Monaghan signal-velocity artificial viscosity. The Balsara
// switch value is consumed from particle state, where the pre-interaction
// pass left it.
type Fluid struct {
	kern      kernel.Kernel
	searchCfg tree.SearchConfig
	workers   int
}

func NewFluid(neighborNumber int, k kernel.Kernel) (*Fluid, error) {
	// Force interactions must be symmetric: j sees i whenever i sees j, so
	// the search widens to the pairwise maximum smoothing length.
	cfg, err := tree.NewSearchConfig(neighborNumber, true)
	if err != nil {
		return nil, err
	}
	return &Fluid{
		kern:      k,
		searchCfg: cfg,
		workers:   runtime.NumCPU(),
	}, nil
}

// Calculation overwrites Acc and DEne for every real particle. search is
// the ghost-inclusive array the tree was built over.
func (f *Fluid) Calculation(real []particle.Particle, search []particle.Particle, t *tree.Tree, per *boundary.PeriodicSpace) error {
	if len(real) == 0 {
		return fmt.Errorf("force: %w", particle.ErrEmptyParticles)
	}
	parallel.WithNumGoroutines(f.workers).For(len(real), func(i, _ int) {
		p := &real[i]
		res := t.NeighborSearch(p, f.searchCfg)

		var acc vec.Vector
		dene := 0.0
		presI := p.Pres / (p.Dens * p.Dens) * p.GradH

		for _, j := range res.Indices {
			q := &search[j]
			if q.ID == p.ID {
				continue
			}
			rij := per.RelPos(p.Pos, q.Pos)
			r := rij.Norm()
			if r == 0 {
				continue
			}
			vij := p.Vel.Sub(q.Vel)

			gwI := f.kern.GradW(rij, r, p.Sml)
			gwJ := f.kern.GradW(rij, r, q.Sml)
			gwM := gwI.Add(gwJ).Scale(0.5)

			presJ := q.Pres / (q.Dens * q.Dens) * q.GradH
			pi := f.viscosity(p, q, rij, vij, r)

			acc = acc.Sub(gwI.Scale(q.Mass * presI)).
				Sub(gwJ.Scale(q.Mass * presJ)).
				Sub(gwM.Scale(q.Mass * pi))
			dene += q.Mass*presI*vij.Dot(gwI) + 0.5*q.Mass*pi*vij.Dot(gwM)
		}

		p.Acc = acc
		p.DEne = dene
	})
	return nil
}

// viscosity returns the artificial viscous pressure term Pi_ij. Zero for
// receding pairs; otherwise the Monaghan (1997) signal-velocity form scaled
// by the pairwise mean of the Balsara switch values.
func (f *Fluid) viscosity(p, q *particle.Particle, rij, vij vec.Vector, r float64) float64 {
	vr := vij.Dot(rij)
	if vr >= 0 {
		return 0
	}
	w := vr / r
	vsig := p.Sound + q.Sound - avBeta*w
	alpha := 0.5 * (p.Alpha + q.Alpha)
	balsara := 0.5 * (p.Balsara + q.Balsara)
	densM := 0.5 * (p.Dens + q.Dens)
	return -0.5 * alpha * balsara * vsig * w / densM
}
