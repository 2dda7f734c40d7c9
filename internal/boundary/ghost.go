package boundary

import (
	"fmt"
	"math"

	"gosph/internal/particle"
	"gosph/internal/vec"
)

// Manager generates and maintains the ghost particles implied by a boundary
// configuration. Ghosts are ephemeral: they are rebuilt from the current real
// particle snapshot and become stale the moment a source particle moves.
type Manager struct {
	cfg         Config
	initialized bool

	ghosts  []particle.Particle
	sources []int        // ghost index -> source real-particle index
	velSign []vec.Vector // per-component velocity sign applied at generation

	supportRadius float64
}

func NewManager() *Manager {
	return &Manager{}
}

// Initialize stores the boundary configuration. Mirror dimensions must carry
// a defined mirror type.
func (m *Manager) Initialize(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.cfg = cfg
	m.initialized = true
	m.Clear()
	return nil
}

// SetKernelSupportRadius sets the wall distance within which a real particle
// requires a ghost twin. The caller derives it from 2 x max(smoothing length);
// a zero or non-finite radius means smoothing lengths were never computed and
// is rejected.
func (m *Manager) SetKernelSupportRadius(r float64) error {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: kernel support radius %g (smoothing lengths must be computed first)",
			particle.ErrInvalidConfig, r)
	}
	m.supportRadius = r
	return nil
}

func (m *Manager) KernelSupportRadius() float64 { return m.supportRadius }

func (m *Manager) Config() *Config { return &m.cfg }

func (m *Manager) GhostParticles() []particle.Particle { return m.ghosts }

func (m *Manager) GhostCount() int { return len(m.ghosts) }

func (m *Manager) HasGhosts() bool { return len(m.ghosts) > 0 }

// SourceIndex returns the real-particle index a ghost was generated from.
func (m *Manager) SourceIndex(g int) int { return m.sources[g] }

// Clear drops all ghosts.
func (m *Manager) Clear() {
	m.ghosts = m.ghosts[:0]
	m.sources = m.sources[:0]
	m.velSign = m.velSign[:0]
}

// GenerateGhosts emits ghosts for every real particle within the support
// radius of an active boundary. Periodic dimensions translate the particle by
// the domain extent (with corner and edge combinations when a particle is
// near several periodic walls at once); mirror walls reflect it across the
// Morris (1997) wall position.
func (m *Manager) GenerateGhosts(real []particle.Particle) error {
	if !m.initialized {
		return fmt.Errorf("%w: ghost manager", particle.ErrNotInitialized)
	}
	if len(real) == 0 {
		return particle.ErrEmptyParticles
	}
	if !m.cfg.Enabled {
		return nil
	}
	if m.supportRadius <= 0 {
		return fmt.Errorf("%w: kernel support radius not set", particle.ErrInvalidConfig)
	}

	m.generatePeriodicGhosts(real)
	for d := 0; d < m.cfg.Dim; d++ {
		if m.cfg.Types[d] != Mirror {
			continue
		}
		if m.cfg.EnableLower[d] {
			m.generateMirrorGhosts(real, d, false)
		}
		if m.cfg.EnableUpper[d] {
			m.generateMirrorGhosts(real, d, true)
		}
	}
	return nil
}

// RegenerateGhosts clears and re-runs generation. This is the only operation
// guaranteed correct after real particles have moved.
func (m *Manager) RegenerateGhosts(real []particle.Particle) error {
	if !m.initialized {
		return fmt.Errorf("%w: ghost manager", particle.ErrNotInitialized)
	}
	m.Clear()
	return m.GenerateGhosts(real)
}

// UpdateGhostProperties refreshes density, pressure, energy and velocity on
// existing ghosts from their recorded source particles without moving them.
//
// Deprecated semantics kept on purpose: this shortcut is unsafe whenever
// source positions have changed since generation, because ghost positions are
// left where they were. Use RegenerateGhosts after any particle motion.
func (m *Manager) UpdateGhostProperties(real []particle.Particle) error {
	if !m.initialized {
		return fmt.Errorf("%w: ghost manager", particle.ErrNotInitialized)
	}
	for g := range m.ghosts {
		src := m.sources[g]
		if src >= len(real) {
			return fmt.Errorf("%w: ghost %d references real particle %d of %d",
				particle.ErrShapeMismatch, g, src, len(real))
		}
		s := &real[src]
		gh := &m.ghosts[g]
		gh.Dens = s.Dens
		gh.Pres = s.Pres
		gh.Ene = s.Ene
		sign := m.velSign[g]
		gh.Vel = vec.Vector{sign[0] * s.Vel[0], sign[1] * s.Vel[1], sign[2] * s.Vel[2]}
	}
	return nil
}

// ApplyPeriodicWrapping wraps real particles that left a periodic dimension
// back into the domain. Performed before ghost (re)generation.
func (m *Manager) ApplyPeriodicWrapping(real []particle.Particle) {
	if !m.initialized || !m.cfg.Enabled {
		return
	}
	for d := 0; d < m.cfg.Dim; d++ {
		if m.cfg.Types[d] != Periodic {
			continue
		}
		lo, hi := m.cfg.RangeMin[d], m.cfg.RangeMax[d]
		ext := hi - lo
		for i := range real {
			if real[i].Pos[d] < lo {
				real[i].Pos[d] += ext
			} else if real[i].Pos[d] >= hi {
				real[i].Pos[d] -= ext
			}
		}
	}
}

// generatePeriodicGhosts emits translated copies for particles near periodic
// walls. For a particle near two or three periodic walls the shift
// combinations produce the edge and corner ghosts (3 in a 2D corner, 7 in a
// 3D corner) needed for full kernel support.
func (m *Manager) generatePeriodicGhosts(real []particle.Particle) {
	var shifts [3][]float64
	for i := range real {
		p := &real[i]
		active := 0
		for d := 0; d < m.cfg.Dim; d++ {
			shifts[d] = shifts[d][:0]
			if m.cfg.Types[d] != Periodic {
				continue
			}
			ext := m.cfg.Extent(d)
			if p.Pos[d]-m.cfg.RangeMin[d] < m.supportRadius {
				shifts[d] = append(shifts[d], ext)
			}
			if m.cfg.RangeMax[d]-p.Pos[d] < m.supportRadius {
				shifts[d] = append(shifts[d], -ext)
			}
			if len(shifts[d]) > 0 {
				active++
			}
		}
		if active == 0 {
			continue
		}
		// Enumerate every non-empty subset of shifted dimensions.
		for mask := 1; mask < 1<<m.cfg.Dim; mask++ {
			m.emitShiftCombos(p, i, mask, 0, vec.Vector{}, &shifts)
		}
	}
}

func (m *Manager) emitShiftCombos(p *particle.Particle, src, mask, d int, offset vec.Vector, shifts *[3][]float64) {
	if d == m.cfg.Dim {
		m.appendGhost(p, src, p.Pos.Add(offset), vec.Vector{1, 1, 1}, p.Vel)
		return
	}
	if mask&(1<<d) == 0 {
		m.emitShiftCombos(p, src, mask, d+1, offset, shifts)
		return
	}
	if len(shifts[d]) == 0 {
		return // subset requires a shift this dimension cannot provide
	}
	for _, s := range shifts[d] {
		next := offset
		next[d] = s
		m.emitShiftCombos(p, src, mask, d+1, next, shifts)
	}
}

// generateMirrorGhosts reflects particles across one mirror wall. The ghost
// position follows Morris (1997): x_ghost = 2*wall - x_real. Scalar fields
// are copied unchanged (Monaghan 1994); the velocity treatment depends on the
// mirror type.
func (m *Manager) generateMirrorGhosts(real []particle.Particle, d int, upper bool) {
	wall := m.cfg.WallPosition(d, upper)
	for i := range real {
		p := &real[i]
		var dist float64
		if upper {
			dist = wall - p.Pos[d]
		} else {
			dist = p.Pos[d] - wall
		}
		if dist <= 0 || dist >= m.supportRadius {
			continue
		}

		pos := p.Pos
		pos[d] = 2.0*wall - p.Pos[d]

		sign := vec.Vector{1, 1, 1}
		switch m.cfg.MirrorTypes[d] {
		case NoSlip:
			sign = vec.Vector{-1, -1, -1}
		case FreeSlip:
			sign[d] = -1
		}
		vel := vec.Vector{sign[0] * p.Vel[0], sign[1] * p.Vel[1], sign[2] * p.Vel[2]}
		m.appendGhost(p, i, pos, sign, vel)
	}
}

func (m *Manager) appendGhost(p *particle.Particle, src int, pos, sign, vel vec.Vector) {
	g := *p
	g.Pos = pos
	g.Vel = vel
	g.Type = particle.Ghost
	g.ID = len(m.ghosts) // provisional; the cache reassigns search ids
	m.ghosts = append(m.ghosts, g)
	m.sources = append(m.sources, src)
	m.velSign = append(m.velSign, sign)
}
