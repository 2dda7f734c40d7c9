// Package preint performs the pre-interaction pass: per-step smoothing
// length solve, density summation, grad-h correction and equation-of-state
// closure, all ahead of the force calculation.
package preint

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/dgravesa/go-parallel/parallel"

	"gosph/internal/boundary"
	"gosph/internal/kernel"
	"gosph/internal/particle"
	"gosph/internal/tree"
	"gosph/internal/vec"
)

const (
	// Newton-Raphson iteration cap for the smoothing-length solve.
	maxNewtonIterations = 10
	// Relative convergence threshold on successive h estimates.
	newtonTolerance = 1e-4
	// Numerical floor in the Balsara switch denominator.
	balsaraEps = 1e-4
)

// Calculator runs the pre-interaction pass. The first call derives an
// initial smoothing length from the configured density; later calls refine
// the previous step's value.
type Calculator struct {
	dim            int
	neighborNumber int
	kernelRatio    float64
	gamma          float64
	iterative      bool
	useBalsara     bool

	kern      kernel.Kernel
	searchCfg tree.SearchConfig
	workers   int

	first bool
}

func New(dim, neighborNumber int, kernelRatio, gamma float64, iterative, useBalsara bool, k kernel.Kernel) (*Calculator, error) {
	cfg, err := tree.NewSearchConfig(neighborNumber, false)
	if err != nil {
		return nil, err
	}
	return &Calculator{
		dim:            dim,
		neighborNumber: neighborNumber,
		kernelRatio:    kernelRatio,
		gamma:          gamma,
		iterative:      iterative,
		useBalsara:     useBalsara,
		kern:           k,
		searchCfg:      cfg,
		workers:        runtime.NumCPU(),
		first:          true,
	}, nil
}

// Calculation updates smoothing length, density, grad-h term, Balsara
// switch, pressure and sound speed for every real particle. search is the
// ghost-inclusive array the tree was built over.
func (c *Calculator) Calculation(real []particle.Particle, search []particle.Particle, t *tree.Tree, per *boundary.PeriodicSpace) error {
	if len(real) == 0 {
		return fmt.Errorf("preint: %w", particle.ErrEmptyParticles)
	}
	if c.first {
		if err := c.initialSmoothing(real); err != nil {
			return err
		}
		c.first = false
	}

	var failed int64
	parallel.WithNumGoroutines(c.workers).For(len(real), func(i, _ int) {
		p := &real[i]

		// Search with headroom so the solve can grow h without losing
		// candidates; the kernel zeroes contributions beyond support.
		q := *p
		q.Sml = p.Sml * c.kernelRatio
		res := t.NeighborSearch(&q, c.searchCfg)

		if c.iterative {
			h, ok := c.newtonRaphson(p, search, res.Indices, q.Sml, per)
			if !ok {
				atomic.AddInt64(&failed, 1)
			}
			p.Sml = h
		}

		c.density(p, search, res.Indices, per)
		c.eos(p)
	})

	if failed > 0 {
		log.Printf("preint: smoothing-length solve did not converge for %d of %d particles; keeping best estimates",
			failed, len(real))
	}
	return nil
}

// initialSmoothing seeds h from the configured density so that the support
// sphere encloses roughly the nominal neighbor count:
// h = ratio * (Nnb * m / (rho * A_dim))^(1/dim).
func (c *Calculator) initialSmoothing(real []particle.Particle) error {
	a := vec.UnitSphereVolume(c.dim)
	for i := range real {
		p := &real[i]
		if p.Dens <= 0 || math.IsNaN(p.Dens) {
			return fmt.Errorf("preint: particle %d has non-positive density %g: %w",
				p.ID, p.Dens, particle.ErrInvalidSmoothingLength)
		}
		p.Sml = c.kernelRatio * math.Pow(float64(c.neighborNumber)*p.Mass/(p.Dens*a), 1.0/float64(c.dim))
	}
	return nil
}

// newtonRaphson solves f(h) = rho(h) * h^dim - m*Nnb/A_dim = 0 with
// rho(h) the summation density, which pins the support sphere at the
// nominal neighbor count. hMax bounds the step so h stays inside the
// searched radius. A false return means the iteration cap was hit; the
// last estimate is still usable.
func (c *Calculator) newtonRaphson(p *particle.Particle, search []particle.Particle, nb []int, hMax float64, per *boundary.PeriodicSpace) (float64, bool) {
	dim := float64(c.dim)
	target := float64(c.neighborNumber) * p.Mass / vec.UnitSphereVolume(c.dim)

	h := p.Sml
	for iter := 0; iter < maxNewtonIterations; iter++ {
		f := -target
		df := 0.0
		hd := vec.PowDim(h, c.dim)
		for _, j := range nb {
			q := &search[j]
			r := per.RelPos(p.Pos, q.Pos).Norm()
			w := c.kern.W(r, h)
			f += q.Mass * w * hd
			df += q.Mass * (c.kern.DHW(r, h)*hd + w*dim*hd/h)
		}
		if df == 0 {
			return h, false
		}
		hNew := h - f/df
		switch {
		case hNew <= 0:
			hNew = 0.5 * h
		case hNew > hMax:
			hNew = hMax
		}
		if math.Abs(hNew-h) < newtonTolerance*(hNew+h) {
			return hNew, true
		}
		h = hNew
	}
	return h, false
}

// density accumulates the summation density, the grad-h correction factor
// and, when enabled, the Balsara switch over p's neighbor list.
func (c *Calculator) density(p *particle.Particle, search []particle.Particle, nb []int, per *boundary.PeriodicSpace) {
	h := p.Sml
	dens := 0.0
	dhSum := 0.0
	count := 0
	for _, j := range nb {
		q := &search[j]
		r := per.RelPos(p.Pos, q.Pos).Norm()
		if r < h {
			count++
		}
		dens += q.Mass * c.kern.W(r, h)
		dhSum += q.Mass * c.kern.DHW(r, h)
	}
	p.Dens = dens
	p.Neighbor = count

	omega := 1.0 + h/(float64(c.dim)*dens)*dhSum
	if math.Abs(omega) < 1e-8 || math.IsNaN(omega) {
		p.GradH = 1.0
	} else {
		p.GradH = 1.0 / omega
	}

	if c.useBalsara {
		p.Balsara = c.balsara(p, search, nb, per)
	} else {
		p.Balsara = 1.0
	}
}

// balsara computes |div v| / (|div v| + |rot v| + 1e-4 c/h), damping
// artificial viscosity in shear-dominated flow (Balsara 1995).
func (c *Calculator) balsara(p *particle.Particle, search []particle.Particle, nb []int, per *boundary.PeriodicSpace) float64 {
	var divV float64
	var rotV vec.Vector
	for _, j := range nb {
		q := &search[j]
		if q.ID == p.ID {
			continue
		}
		rij := per.RelPos(p.Pos, q.Pos)
		r := rij.Norm()
		if r == 0 {
			continue
		}
		gw := c.kern.GradW(rij, r, p.Sml)
		vij := p.Vel.Sub(q.Vel)
		divV -= q.Mass * vij.Dot(gw)
		rotV[0] += q.Mass * (vij[1]*gw[2] - vij[2]*gw[1])
		rotV[1] += q.Mass * (vij[2]*gw[0] - vij[0]*gw[2])
		rotV[2] += q.Mass * (vij[0]*gw[1] - vij[1]*gw[0])
	}
	divV = math.Abs(divV / p.Dens)
	rot := rotV.Norm() / p.Dens
	den := divV + rot + balsaraEps*p.Sound/p.Sml
	if den == 0 {
		return 1.0
	}
	return divV / den
}

// eos closes the system with the ideal gas law.
func (c *Calculator) eos(p *particle.Particle) {
	g1 := c.gamma - 1.0
	p.Pres = g1 * p.Dens * p.Ene
	p.Sound = math.Sqrt(c.gamma * g1 * math.Max(p.Ene, 0))
}
