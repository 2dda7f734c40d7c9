// Package boundary implements the ghost-particle boundary system: the
// per-dimension boundary configuration, periodic minimum-image geometry, the
// ghost particle manager and its lifecycle coordinator.
//
// Ghost particles follow Lajoie & Sills (2010): synthetic particles copied
// from real particles so the kernel sees full support near domain edges.
// Mirror ghost positions follow Morris (1997), mirror properties follow
// Monaghan (1994).
package boundary

import (
	"fmt"

	"gosph/internal/vec"
)

// Type is the boundary kind of one spatial dimension.
type Type int

const (
	None Type = iota
	Periodic
	Mirror
)

func (t Type) String() string {
	switch t {
	case Periodic:
		return "periodic"
	case Mirror:
		return "mirror"
	default:
		return "none"
	}
}

// ParseType converts a config string to a boundary Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "none", "":
		return None, nil
	case "periodic":
		return Periodic, nil
	case "mirror":
		return Mirror, nil
	default:
		return None, fmt.Errorf("boundary: unknown boundary type %q", s)
	}
}

// MirrorType selects the velocity treatment at a mirror wall.
type MirrorType int

const (
	MirrorUnspecified MirrorType = iota
	NoSlip                       // all velocity components negated
	FreeSlip                     // only the wall-normal component negated
)

func (m MirrorType) String() string {
	switch m {
	case NoSlip:
		return "no_slip"
	case FreeSlip:
		return "free_slip"
	default:
		return "unspecified"
	}
}

// ParseMirrorType converts a config string to a MirrorType.
func ParseMirrorType(s string) (MirrorType, error) {
	switch s {
	case "no_slip":
		return NoSlip, nil
	case "free_slip":
		return FreeSlip, nil
	case "":
		return MirrorUnspecified, nil
	default:
		return MirrorUnspecified, fmt.Errorf("boundary: unknown mirror type %q", s)
	}
}

// Config is the per-dimension boundary configuration. Only the leading Dim
// entries of each array are meaningful.
type Config struct {
	Enabled bool
	Dim     int

	Types       [3]Type
	EnableLower [3]bool
	EnableUpper [3]bool
	RangeMin    vec.Vector
	RangeMax    vec.Vector

	MirrorTypes [3]MirrorType

	// Particle spacing per wall, used to offset the mirror wall by half a
	// spacing from the domain edge (Morris 1997).
	SpacingLower [3]float64
	SpacingUpper [3]float64
}

func (c *Config) HasPeriodic() bool {
	for d := 0; d < c.Dim; d++ {
		if c.Types[d] == Periodic {
			return true
		}
	}
	return false
}

func (c *Config) HasMirror() bool {
	for d := 0; d < c.Dim; d++ {
		if c.Types[d] == Mirror {
			return true
		}
	}
	return false
}

// Extent returns the domain size along dimension d.
func (c *Config) Extent(d int) float64 {
	return c.RangeMax[d] - c.RangeMin[d]
}

// WallPosition returns the mirror wall coordinate for dimension d. The wall
// sits half a particle spacing outside the domain edge, so that a ghost of a
// particle on the outermost layer lands exactly one spacing away.
func (c *Config) WallPosition(d int, upper bool) float64 {
	if upper {
		return c.RangeMax[d] + 0.5*c.SpacingUpper[d]
	}
	return c.RangeMin[d] - 0.5*c.SpacingLower[d]
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Dim < 1 || c.Dim > 3 {
		return fmt.Errorf("boundary: dimension must be 1, 2 or 3, got %d", c.Dim)
	}
	for d := 0; d < c.Dim; d++ {
		if c.Types[d] == None {
			continue
		}
		if c.RangeMax[d] <= c.RangeMin[d] {
			return fmt.Errorf("boundary: dimension %d has empty range [%g, %g]",
				d, c.RangeMin[d], c.RangeMax[d])
		}
		if c.Types[d] == Mirror && c.MirrorTypes[d] == MirrorUnspecified {
			return fmt.Errorf("boundary: mirror dimension %d needs a mirror type (no_slip or free_slip)", d)
		}
	}
	return nil
}
