// Package solver orchestrates the simulation: the per-step pipeline that
// wraps positions, regenerates ghosts, rebuilds the search structures,
// solves smoothing lengths and densities, computes forces and integrates.
package solver

import (
	"context"
	"fmt"
	"log"

	"gosph/internal/boundary"
	"gosph/internal/cache"
	"gosph/internal/config"
	"gosph/internal/force"
	"gosph/internal/kernel"
	"gosph/internal/metrics"
	"gosph/internal/particle"
	"gosph/internal/preint"
	"gosph/internal/tree"
)

const logEverySteps = 50

// Solver owns the particle set and every phase of the time loop.
type Solver struct {
	cfg   *config.Config
	kern  kernel.Kernel
	parts []particle.Particle

	cache *cache.ParticleCache
	tr    *tree.Tree
	coord *boundary.Coordinator
	per   *boundary.PeriodicSpace
	pre   *preint.Calculator
	fluid *force.Fluid
	grav  *force.Gravity

	metrics []metrics.Metric

	t, tEnd float64
	dt      float64
	dtPrev  float64
	step    int

	needCorrect bool
	initialized bool
}

func New(cfg *config.Config, parts []particle.Particle) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("solver: %w", particle.ErrEmptyParticles)
	}

	kern, err := kernel.New(cfg.Kernel, cfg.Dim)
	if err != nil {
		return nil, err
	}

	bc, err := cfg.BoundaryConfig()
	if err != nil {
		return nil, err
	}
	var mgr *boundary.Manager
	if bc != nil {
		mgr = boundary.NewManager()
		if err := mgr.Initialize(*bc); err != nil {
			return nil, err
		}
	}
	// Ghosts carry the boundary conditions whenever a manager exists: a
	// translated ghost copy already stands in for each seam neighbor, so the
	// minimum-image space must stay inert or seam pairs are counted twice.
	per := boundary.NewPeriodicSpace(nil)
	if mgr == nil {
		per = boundary.NewPeriodicSpace(bc)
	}

	tr := tree.New(tree.Params{
		Dim:             cfg.Dim,
		MaxLevel:        cfg.Tree.MaxLevel,
		LeafParticleNum: cfg.Tree.LeafParticleNum,
		GravConstant:    cfg.Gravity.Constant,
		Theta:           cfg.Gravity.Theta,
	}, per)

	pre, err := preint.New(cfg.Dim, cfg.Physics.NeighborNumber, cfg.Physics.KernelRatio,
		cfg.Physics.Gamma, cfg.IterativeSml, cfg.AV.UseBalsara, kern)
	if err != nil {
		return nil, err
	}
	fluid, err := force.NewFluid(cfg.Physics.NeighborNumber, kern)
	if err != nil {
		return nil, err
	}

	s := &Solver{
		cfg:   cfg,
		kern:  kern,
		parts: parts,
		cache: cache.New(),
		tr:    tr,
		coord: boundary.NewCoordinator(mgr),
		per:   per,
		pre:   pre,
		fluid: fluid,
		t:     cfg.Time.Start,
		tEnd:  cfg.Time.End,
	}
	if cfg.Gravity.Enabled {
		s.grav = force.NewGravity()
	}
	return s, nil
}

// AddMetric registers a diagnostic observed after every step of Run.
func (s *Solver) AddMetric(m metrics.Metric) {
	s.metrics = append(s.metrics, m)
}

// Metrics returns the current value of every registered diagnostic.
func (s *Solver) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Initialize runs the pre-interaction pass and the first force evaluation so
// the first Step starts from a consistent state. Ghosts are created only
// after smoothing lengths exist.
func (s *Solver) Initialize() error {
	if err := s.cache.Initialize(s.parts); err != nil {
		return err
	}
	if err := s.tr.Build(s.cache.SearchParticles()); err != nil {
		return err
	}
	if err := s.pre.Calculation(s.parts, s.cache.SearchParticles(), s.tr, s.per); err != nil {
		return err
	}
	if err := s.coord.InitializeGhosts(s.parts); err != nil {
		return err
	}
	if err := s.refreshSearch(); err != nil {
		return err
	}
	if err := s.forces(); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

// Step advances the simulation by one adaptive timestep. Phase order matters:
// positions wrap before ghosts regenerate, ghosts regenerate before the cache
// and tree rebuild, smoothing lengths settle before ghost properties refresh,
// and the tree rebuilds again before forces because the per-node smoothing
// aggregates changed.
func (s *Solver) Step() error {
	if !s.initialized {
		return fmt.Errorf("solver: %w", particle.ErrNotInitialized)
	}

	if m := s.coord.Manager(); m != nil {
		m.ApplyPeriodicWrapping(s.parts)
	}
	if err := s.coord.UpdateGhosts(s.parts); err != nil {
		return err
	}
	if err := s.refreshSearch(); err != nil {
		return err
	}
	if err := s.pre.Calculation(s.parts, s.cache.SearchParticles(), s.tr, s.per); err != nil {
		return err
	}
	if err := s.coord.UpdateGhostProperties(s.parts); err != nil {
		return err
	}
	if err := s.refreshSearch(); err != nil {
		return err
	}
	if err := s.forces(); err != nil {
		return err
	}

	dt := s.timestep()
	if remaining := s.tEnd - s.t; dt > remaining {
		dt = remaining
	}
	s.integrate(dt)

	s.t += dt
	s.step++
	return nil
}

// Run steps until the end time, honoring ctx cancellation between steps.
func (s *Solver) Run(ctx context.Context) error {
	if !s.initialized {
		if err := s.Initialize(); err != nil {
			return err
		}
	}
	for _, m := range s.metrics {
		m.Observe(s.parts, s.t)
	}
	for s.t < s.tEnd {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Step(); err != nil {
			return fmt.Errorf("solver: step %d: %w", s.step, err)
		}
		for _, m := range s.metrics {
			m.Observe(s.parts, s.t)
		}
		if s.step%logEverySteps == 0 {
			log.Printf("step %6d  t=%.6f  dt=%.3e  ghosts=%d", s.step, s.t, s.dt, s.coord.GhostCount())
		}
	}
	return nil
}

// refreshSearch syncs the cache's real region, re-merges current ghosts and
// rebuilds the tree over the combined array.
func (s *Solver) refreshSearch() error {
	if err := s.cache.SyncRealParticles(s.parts); err != nil {
		return err
	}
	if err := s.cache.IncludeGhosts(s.coord.Manager()); err != nil {
		return err
	}
	return s.tr.Build(s.cache.SearchParticles())
}

func (s *Solver) forces() error {
	if err := s.fluid.Calculation(s.parts, s.cache.SearchParticles(), s.tr, s.per); err != nil {
		return err
	}
	if s.grav != nil {
		return s.grav.Calculation(s.parts, s.tr)
	}
	return nil
}

// integrate is the leapfrog pair: finish the previous step's velocities with
// the freshly evaluated accelerations, then kick-drift into the next step.
func (s *Solver) integrate(dt float64) {
	n := len(s.parts)
	if s.needCorrect {
		dtp := s.dtPrev
		ParallelFor(n, 256, func(start, end int) {
			for i := start; i < end; i++ {
				p := &s.parts[i]
				p.Vel = p.VelHalf.Add(p.Acc.Scale(0.5 * dtp))
				p.Ene = p.EneHalf + 0.5*dtp*p.DEne
			}
		})
	}
	ParallelFor(n, 256, func(start, end int) {
		for i := start; i < end; i++ {
			p := &s.parts[i]
			p.VelHalf = p.Vel.Add(p.Acc.Scale(0.5 * dt))
			p.EneHalf = p.Ene + 0.5*dt*p.DEne
			p.Pos = p.Pos.Add(p.VelHalf.Scale(dt))
			p.Vel = p.Vel.Add(p.Acc.Scale(dt))
			p.Ene += dt * p.DEne
		}
	})
	s.dtPrev = dt
	s.dt = dt
	s.needCorrect = true
}

func (s *Solver) Particles() []particle.Particle { return s.parts }

func (s *Solver) Time() float64 { return s.t }

func (s *Solver) Steps() int { return s.step }

func (s *Solver) GhostCount() int { return s.coord.GhostCount() }

// TotalEnergy returns kinetic plus internal energy, plus gravitational
// potential energy when self-gravity is on.
func (s *Solver) TotalEnergy() float64 {
	return metrics.TotalEnergy(s.parts, s.grav != nil)
}
