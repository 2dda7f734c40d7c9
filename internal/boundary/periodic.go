package boundary

import "gosph/internal/vec"

// PeriodicSpace answers minimum-image geometry questions for the periodic
// dimensions of a boundary configuration. Non-periodic dimensions pass
// through untouched.
type PeriodicSpace struct {
	valid    bool
	dim      int
	periodic [3]bool
	min      vec.Vector
	max      vec.Vector
	rng      vec.Vector
}

// NewPeriodicSpace derives the periodic geometry from cfg. A nil or disabled
// configuration yields a pass-through space.
func NewPeriodicSpace(cfg *Config) *PeriodicSpace {
	p := &PeriodicSpace{}
	if cfg == nil || !cfg.Enabled || !cfg.HasPeriodic() {
		return p
	}
	p.valid = true
	p.dim = cfg.Dim
	p.min = cfg.RangeMin
	p.max = cfg.RangeMax
	for d := 0; d < cfg.Dim; d++ {
		p.periodic[d] = cfg.Types[d] == Periodic
		p.rng[d] = cfg.RangeMax[d] - cfg.RangeMin[d]
	}
	return p
}

func (p *PeriodicSpace) Valid() bool { return p.valid }

// RelPos returns ri - rj under the minimum-image convention.
func (p *PeriodicSpace) RelPos(ri, rj vec.Vector) vec.Vector {
	rij := ri.Sub(rj)
	if !p.valid {
		return rij
	}
	for d := 0; d < p.dim; d++ {
		if !p.periodic[d] {
			continue
		}
		if rij[d] > p.rng[d]*0.5 {
			rij[d] -= p.rng[d]
		} else if rij[d] < -p.rng[d]*0.5 {
			rij[d] += p.rng[d]
		}
	}
	return rij
}

// Wrap maps a position that left the periodic domain back into [min, max).
func (p *PeriodicSpace) Wrap(pos *vec.Vector) {
	if !p.valid {
		return
	}
	for d := 0; d < p.dim; d++ {
		if !p.periodic[d] {
			continue
		}
		if pos[d] < p.min[d] {
			pos[d] += p.rng[d]
		} else if pos[d] >= p.max[d] {
			pos[d] -= p.rng[d]
		}
	}
}
