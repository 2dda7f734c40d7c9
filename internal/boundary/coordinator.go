package boundary

import (
	"fmt"

	"gosph/internal/particle"
)

// Support factor for the ghost generation radius: ghosts are generated for
// particles within 2 x max(smoothing length) of a wall.
const kernelSupportFactor = 2.0

// Coordinator drives the ghost manager lifecycle against the step: it
// validates that smoothing lengths exist before any ghost work, derives the
// kernel support radius from them, and triggers generation at the right
// moments. A coordinator without a manager is inert: every operation is a
// no-op and HasGhosts reports false.
//
// The lifecycle has exactly two states: uninitialized until the first
// InitializeGhosts, active afterwards.
type Coordinator struct {
	manager *Manager
	active  bool

	lastSupportRadius float64
}

// NewCoordinator wraps mgr, which may be nil when no boundaries are
// configured.
func NewCoordinator(mgr *Manager) *Coordinator {
	return &Coordinator{manager: mgr}
}

// InitializeGhosts performs the first ghost generation. Every real particle
// must already carry a finite, strictly positive smoothing length; the error
// otherwise names the offending particle and the required call order.
func (c *Coordinator) InitializeGhosts(real []particle.Particle) error {
	if c.manager == nil {
		return nil
	}
	support, err := c.kernelSupport(real)
	if err != nil {
		return err
	}
	if err := c.manager.SetKernelSupportRadius(support); err != nil {
		return err
	}
	if err := c.manager.GenerateGhosts(real); err != nil {
		return err
	}
	c.lastSupportRadius = support
	c.active = true
	return nil
}

// UpdateGhosts re-derives the support radius and regenerates ghosts from the
// current particle positions. Called every step after the first.
func (c *Coordinator) UpdateGhosts(real []particle.Particle) error {
	if c.manager == nil {
		return nil
	}
	if !c.active {
		return c.InitializeGhosts(real)
	}
	support, err := c.kernelSupport(real)
	if err != nil {
		return err
	}
	if err := c.manager.SetKernelSupportRadius(support); err != nil {
		return err
	}
	if err := c.manager.RegenerateGhosts(real); err != nil {
		return err
	}
	c.lastSupportRadius = support
	return nil
}

// UpdateGhostProperties refreshes the derived fields of existing ghosts from
// their sources. Unsafe if positions changed since the last (re)generation.
func (c *Coordinator) UpdateGhostProperties(real []particle.Particle) error {
	if c.manager == nil || !c.active {
		return nil
	}
	return c.manager.UpdateGhostProperties(real)
}

func (c *Coordinator) HasGhosts() bool {
	return c.manager != nil && c.manager.HasGhosts()
}

func (c *Coordinator) GhostCount() int {
	if c.manager == nil {
		return 0
	}
	return c.manager.GhostCount()
}

func (c *Coordinator) Manager() *Manager { return c.manager }

// KernelSupportRadius reports the radius used for the last generation.
func (c *Coordinator) KernelSupportRadius() float64 { return c.lastSupportRadius }

func (c *Coordinator) kernelSupport(real []particle.Particle) (float64, error) {
	if len(real) == 0 {
		return 0, particle.ErrEmptyParticles
	}
	maxSml := 0.0
	for i := range real {
		if !real[i].HasValidSml() {
			return 0, fmt.Errorf("%w: particle id %d has sml=%g; run the smoothing-length calculation before initializing ghosts",
				particle.ErrInvalidSmoothingLength, real[i].ID, real[i].Sml)
		}
		if real[i].Sml > maxSml {
			maxSml = real[i].Sml
		}
	}
	return kernelSupportFactor * maxSml, nil
}
