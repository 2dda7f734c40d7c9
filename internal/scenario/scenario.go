// Package scenario builds initial particle distributions for the bundled
// test problems.
package scenario

import (
	"fmt"
	"math"

	"gosph/internal/config"
	"gosph/internal/particle"
	"gosph/internal/vec"
)

// Build constructs the initial particle set named by cfg.Scenario. Boundary
// spacings left at zero in the configuration are filled in from the lattice
// spacing the builder actually used.
func Build(cfg *config.Config) ([]particle.Particle, error) {
	switch cfg.Scenario.Name {
	case "shock_tube":
		return buildShockTube(cfg)
	case "uniform_box":
		return buildUniformBox(cfg)
	default:
		return nil, fmt.Errorf("scenario: unknown scenario %q", cfg.Scenario.Name)
	}
}

// buildShockTube lays out the Sod problem: a dense hot region on the left,
// a rarefied cold region on the right, equal particle masses throughout.
func buildShockTube(cfg *config.Config) ([]particle.Particle, error) {
	if cfg.Dim != 1 {
		return nil, fmt.Errorf("scenario: shock_tube requires dim 1, got %d", cfg.Dim)
	}
	const (
		densL, presL = 1.0, 1.0
		densR, presR = 0.125, 0.1
	)
	xMin := cfg.Scenario.DomainMin
	xMax := cfg.Scenario.DomainMax
	xMid := 0.5 * (xMin + xMax)

	// Equal masses with an 8:1 density jump means 8 left particles per
	// right particle.
	nRight := cfg.Scenario.ParticleCount / 9
	if nRight < 4 {
		return nil, fmt.Errorf("scenario: shock_tube needs at least 36 particles, got %d",
			cfg.Scenario.ParticleCount)
	}
	nLeft := 8 * nRight
	dxL := (xMid - xMin) / float64(nLeft)
	dxR := (xMax - xMid) / float64(nRight)
	mass := densL * dxL

	g1 := cfg.Physics.Gamma - 1.0
	parts := make([]particle.Particle, 0, nLeft+nRight)
	for i := 0; i < nLeft; i++ {
		x := xMin + (float64(i)+0.5)*dxL
		parts = append(parts, newParticle(cfg, vec.Vector{x, 0, 0}, mass, densL, presL/(g1*densL)))
	}
	for i := 0; i < nRight; i++ {
		x := xMid + (float64(i)+0.5)*dxR
		parts = append(parts, newParticle(cfg, vec.Vector{x, 0, 0}, mass, densR, presR/(g1*densR)))
	}
	assignIDs(parts)
	fillSpacings(cfg, dxL, dxR)
	return parts, nil
}

// buildUniformBox lays out a uniform lattice filling the cubical domain,
// intended for periodic boundaries.
func buildUniformBox(cfg *config.Config) ([]particle.Particle, error) {
	const (
		dens = 1.0
		pres = 1.0
	)
	min := cfg.Scenario.DomainMin
	max := cfg.Scenario.DomainMax
	side := max - min
	if side <= 0 {
		return nil, fmt.Errorf("scenario: domain [%g, %g] is empty", min, max)
	}

	perSide := int(math.Round(math.Pow(float64(cfg.Scenario.ParticleCount), 1.0/float64(cfg.Dim))))
	if perSide < 2 {
		return nil, fmt.Errorf("scenario: uniform_box needs at least 2 particles per side, got %d", perSide)
	}
	dx := side / float64(perSide)
	total := 1
	for d := 0; d < cfg.Dim; d++ {
		total *= perSide
	}
	mass := dens * math.Pow(side, float64(cfg.Dim)) / float64(total)
	ene := pres / ((cfg.Physics.Gamma - 1.0) * dens)

	parts := make([]particle.Particle, 0, total)
	idx := [3]int{}
	for {
		var pos vec.Vector
		for d := 0; d < cfg.Dim; d++ {
			pos[d] = min + (float64(idx[d])+0.5)*dx
		}
		parts = append(parts, newParticle(cfg, pos, mass, dens, ene))

		d := 0
		for d < cfg.Dim {
			idx[d]++
			if idx[d] < perSide {
				break
			}
			idx[d] = 0
			d++
		}
		if d == cfg.Dim {
			break
		}
	}
	assignIDs(parts)
	fillSpacings(cfg, dx, dx)
	return parts, nil
}

func newParticle(cfg *config.Config, pos vec.Vector, mass, dens, ene float64) particle.Particle {
	g := cfg.Physics.Gamma
	return particle.Particle{
		Pos:     pos,
		Mass:    mass,
		Dens:    dens,
		Ene:     ene,
		Pres:    (g - 1.0) * dens * ene,
		Sound:   math.Sqrt(g * (g - 1.0) * ene),
		Alpha:   cfg.AV.Alpha,
		Balsara: 1.0,
		GradH:   1.0,
		Type:    particle.Real,
	}
}

func assignIDs(parts []particle.Particle) {
	for i := range parts {
		parts[i].ID = i
	}
}

// fillSpacings records the lattice spacing on boundary blocks that did not
// specify one, so mirror walls land half a spacing outside the lattice.
func fillSpacings(cfg *config.Config, lower, upper float64) {
	for i := range cfg.Boundaries {
		b := &cfg.Boundaries[i]
		if b.SpacingLower == 0 {
			b.SpacingLower = lower
		}
		if b.SpacingUpper == 0 {
			b.SpacingUpper = upper
		}
	}
}
