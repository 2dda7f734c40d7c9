// Package cache maintains the contiguous search array the spatial tree is
// built over: real particles followed by ghost particles, with ids that equal
// positions in the combined array.
package cache

import (
	"fmt"

	"gosph/internal/boundary"
	"gosph/internal/particle"
)

// ParticleCache owns the search array. Neighbor indices produced by the tree
// are only valid against this combined array, never against the real-particle
// slice alone.
//
// Invariants: Size() >= RealCount() always, and HasGhosts() is true exactly
// when Size() > RealCount().
type ParticleCache struct {
	search    []particle.Particle
	realCount int
	hasGhosts bool
}

func New() *ParticleCache {
	return &ParticleCache{}
}

// Initialize snapshots the real particles. The real-particle count is fixed
// from this point on.
func (c *ParticleCache) Initialize(real []particle.Particle) error {
	if len(real) == 0 {
		return fmt.Errorf("cache: initialize: %w", particle.ErrEmptyParticles)
	}
	c.search = make([]particle.Particle, len(real), len(real)*2)
	copy(c.search, real)
	c.realCount = len(real)
	c.hasGhosts = false
	return nil
}

// SyncRealParticles overwrites the real region of the search array in place.
func (c *ParticleCache) SyncRealParticles(real []particle.Particle) error {
	if c.realCount == 0 {
		return fmt.Errorf("cache: sync: %w", particle.ErrNotInitialized)
	}
	if len(real) != c.realCount {
		return fmt.Errorf("cache: sync: %w: have %d, initialized with %d",
			particle.ErrCountChanged, len(real), c.realCount)
	}
	copy(c.search[:c.realCount], real)
	return nil
}

// IncludeGhosts appends a copy of the manager's current ghosts after the real
// region and reassigns each ghost's id to its own position in the combined
// array, so every search index is self-describing. With no ghosts the cache
// shrinks back to real-only.
func (c *ParticleCache) IncludeGhosts(mgr *boundary.Manager) error {
	if c.realCount == 0 {
		return fmt.Errorf("cache: include ghosts: %w", particle.ErrNotInitialized)
	}
	c.search = c.search[:c.realCount]
	c.hasGhosts = false
	if mgr == nil || !mgr.HasGhosts() {
		return nil
	}
	for _, g := range mgr.GhostParticles() {
		g.ID = len(c.search)
		c.search = append(c.search, g)
	}
	c.hasGhosts = true
	return nil
}

// SearchParticles exposes the combined array for tree building and neighbor
// lookups. Callers must not grow or shrink it.
func (c *ParticleCache) SearchParticles() []particle.Particle { return c.search }

func (c *ParticleCache) Size() int { return len(c.search) }

func (c *ParticleCache) RealCount() int { return c.realCount }

func (c *ParticleCache) HasGhosts() bool { return c.hasGhosts }

func (c *ParticleCache) IsInitialized() bool { return c.realCount > 0 }
