package boundary_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gosph/internal/boundary"
	"gosph/internal/particle"
	"gosph/internal/vec"
)

func realParticle(id int, pos, vel vec.Vector) particle.Particle {
	return particle.Particle{
		ID:   id,
		Pos:  pos,
		Vel:  vel,
		Mass: 0.1,
		Dens: 1.0,
		Pres: 1.0,
		Ene:  2.5,
		Sml:  0.15,
		Type: particle.Real,
	}
}

func mirror1DConfig(mt boundary.MirrorType) boundary.Config {
	cfg := boundary.Config{Enabled: true, Dim: 1}
	cfg.Types[0] = boundary.Mirror
	cfg.EnableLower[0] = true
	cfg.EnableUpper[0] = true
	cfg.RangeMin[0] = 0.0
	cfg.RangeMax[0] = 1.0
	cfg.MirrorTypes[0] = mt
	cfg.SpacingLower[0] = 0.1
	cfg.SpacingUpper[0] = 0.1
	return cfg
}

func periodicConfig(dim int) boundary.Config {
	cfg := boundary.Config{Enabled: true, Dim: dim}
	for d := 0; d < dim; d++ {
		cfg.Types[d] = boundary.Periodic
		cfg.RangeMin[d] = 0.0
		cfg.RangeMax[d] = 1.0
	}
	return cfg
}

var _ = Describe("Mirror boundaries", func() {
	var mgr *boundary.Manager

	newMirrorManager := func(mt boundary.MirrorType, support float64) *boundary.Manager {
		m := boundary.NewManager()
		Expect(m.Initialize(mirror1DConfig(mt))).To(Succeed())
		Expect(m.SetKernelSupportRadius(support)).To(Succeed())
		return m
	}

	It("reflects the outermost particle across the offset wall", func() {
		mgr = newMirrorManager(boundary.NoSlip, 0.3)
		parts := []particle.Particle{realParticle(0, vec.Vector{0.05, 0, 0}, vec.Vector{1, 0, 0})}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())

		// Wall sits at -0.05, half a spacing outside the domain edge.
		var lower *particle.Particle
		for g := range mgr.GhostParticles() {
			if mgr.GhostParticles()[g].Pos[0] < 0 {
				lower = &mgr.GhostParticles()[g]
			}
		}
		Expect(lower).NotTo(BeNil())
		Expect(lower.Pos[0]).To(BeNumerically("~", -0.15, 1e-12))
		Expect(lower.Type).To(Equal(particle.Ghost))
	})

	It("only twins particles within the support radius of a wall", func() {
		mgr = newMirrorManager(boundary.NoSlip, 0.3)
		parts := make([]particle.Particle, 0, 10)
		for i := 0; i < 10; i++ {
			x := 0.05 + 0.1*float64(i)
			parts = append(parts, realParticle(i, vec.Vector{x, 0, 0}, vec.Vector{}))
		}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())

		// Two particles per wall are within 0.3 of the offset walls.
		Expect(mgr.GhostCount()).To(Equal(4))
	})

	It("negates every velocity component under no-slip", func() {
		mgr = newMirrorManager(boundary.NoSlip, 0.3)
		vel := vec.Vector{1.0, -2.0, 0.5}
		parts := []particle.Particle{realParticle(0, vec.Vector{0.05, 0, 0}, vel)}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())
		Expect(mgr.GhostCount()).To(Equal(1))
		Expect(mgr.GhostParticles()[0].Vel).To(Equal(vel.Neg()))
	})

	It("negates only the wall-normal component under free-slip", func() {
		mgr = newMirrorManager(boundary.FreeSlip, 0.3)
		vel := vec.Vector{1.0, -2.0, 0.5}
		parts := []particle.Particle{realParticle(0, vec.Vector{0.05, 0, 0}, vel)}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())
		Expect(mgr.GhostCount()).To(Equal(1))
		g := mgr.GhostParticles()[0]
		Expect(g.Vel[0]).To(Equal(-1.0))
		Expect(g.Vel[1]).To(Equal(-2.0))
		Expect(g.Vel[2]).To(Equal(0.5))
	})

	It("copies scalar fields unchanged", func() {
		mgr = newMirrorManager(boundary.NoSlip, 0.3)
		parts := []particle.Particle{realParticle(7, vec.Vector{0.05, 0, 0}, vec.Vector{})}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())
		g := mgr.GhostParticles()[0]
		src := parts[0]
		Expect(g.Mass).To(Equal(src.Mass))
		Expect(g.Dens).To(Equal(src.Dens))
		Expect(g.Pres).To(Equal(src.Pres))
		Expect(g.Ene).To(Equal(src.Ene))
		Expect(g.Sml).To(Equal(src.Sml))
		Expect(mgr.SourceIndex(0)).To(Equal(0))
	})
})

var _ = Describe("Periodic boundaries", func() {
	newPeriodicManager := func(dim int, support float64) *boundary.Manager {
		m := boundary.NewManager()
		Expect(m.Initialize(periodicConfig(dim))).To(Succeed())
		Expect(m.SetKernelSupportRadius(support)).To(Succeed())
		return m
	}

	It("creates three ghosts for a 2D corner particle", func() {
		mgr := newPeriodicManager(2, 0.3)
		parts := []particle.Particle{realParticle(0, vec.Vector{0.1, 0.1, 0}, vec.Vector{0.5, 0.5, 0})}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())
		Expect(mgr.GhostCount()).To(Equal(3))

		positions := make([]vec.Vector, mgr.GhostCount())
		for i, g := range mgr.GhostParticles() {
			positions[i] = g.Pos
		}
		Expect(positions).To(ConsistOf(
			vec.Vector{1.1, 0.1, 0},
			vec.Vector{0.1, 1.1, 0},
			vec.Vector{1.1, 1.1, 0},
		))
	})

	It("creates seven ghosts for a 3D corner particle", func() {
		mgr := newPeriodicManager(3, 0.3)
		parts := []particle.Particle{realParticle(0, vec.Vector{0.1, 0.1, 0.1}, vec.Vector{})}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())
		Expect(mgr.GhostCount()).To(Equal(7))
	})

	It("leaves interior particles alone", func() {
		mgr := newPeriodicManager(2, 0.3)
		parts := []particle.Particle{realParticle(0, vec.Vector{0.5, 0.5, 0}, vec.Vector{})}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())
		Expect(mgr.HasGhosts()).To(BeFalse())
	})

	It("copies velocity unchanged on translated ghosts", func() {
		mgr := newPeriodicManager(2, 0.3)
		vel := vec.Vector{0.3, -0.7, 0}
		parts := []particle.Particle{realParticle(0, vec.Vector{0.1, 0.5, 0}, vel)}

		Expect(mgr.GenerateGhosts(parts)).To(Succeed())
		Expect(mgr.GhostCount()).To(Equal(1))
		Expect(mgr.GhostParticles()[0].Vel).To(Equal(vel))
	})

	It("wraps escaped particles back into the domain", func() {
		mgr := newPeriodicManager(1, 0.3)
		parts := []particle.Particle{
			realParticle(0, vec.Vector{1.05, 0, 0}, vec.Vector{}),
			realParticle(1, vec.Vector{-0.02, 0, 0}, vec.Vector{}),
			realParticle(2, vec.Vector{0.5, 0, 0}, vec.Vector{}),
		}

		mgr.ApplyPeriodicWrapping(parts)

		Expect(parts[0].Pos[0]).To(BeNumerically("~", 0.05, 1e-12))
		Expect(parts[1].Pos[0]).To(BeNumerically("~", 0.98, 1e-12))
		Expect(parts[2].Pos[0]).To(Equal(0.5))
	})
})

var _ = Describe("Ghost property refresh", func() {
	It("pulls updated fields from sources without moving ghosts", func() {
		mgr := boundary.NewManager()
		Expect(mgr.Initialize(mirror1DConfig(boundary.NoSlip))).To(Succeed())
		Expect(mgr.SetKernelSupportRadius(0.3)).To(Succeed())

		parts := []particle.Particle{realParticle(0, vec.Vector{0.05, 0, 0}, vec.Vector{1, 0, 0})}
		Expect(mgr.GenerateGhosts(parts)).To(Succeed())
		oldPos := mgr.GhostParticles()[0].Pos

		parts[0].Dens = 2.0
		parts[0].Pres = 3.0
		parts[0].Ene = 4.0
		parts[0].Vel = vec.Vector{-5, 0, 0}
		Expect(mgr.UpdateGhostProperties(parts)).To(Succeed())

		g := mgr.GhostParticles()[0]
		Expect(g.Dens).To(Equal(2.0))
		Expect(g.Pres).To(Equal(3.0))
		Expect(g.Ene).To(Equal(4.0))
		Expect(g.Vel[0]).To(Equal(5.0), "no-slip sign re-applied")
		Expect(g.Pos).To(Equal(oldPos))
	})
})

var _ = Describe("Manager lifecycle", func() {
	It("rejects generation before initialization", func() {
		mgr := boundary.NewManager()
		parts := []particle.Particle{realParticle(0, vec.Vector{0.5, 0, 0}, vec.Vector{})}
		Expect(mgr.GenerateGhosts(parts)).To(MatchError(particle.ErrNotInitialized))
	})

	It("rejects generation without a support radius", func() {
		mgr := boundary.NewManager()
		Expect(mgr.Initialize(periodicConfig(1))).To(Succeed())
		parts := []particle.Particle{realParticle(0, vec.Vector{0.5, 0, 0}, vec.Vector{})}
		Expect(mgr.GenerateGhosts(parts)).To(MatchError(particle.ErrInvalidConfig))
	})

	It("rejects a non-finite support radius", func() {
		mgr := boundary.NewManager()
		Expect(mgr.Initialize(periodicConfig(1))).To(Succeed())
		Expect(mgr.SetKernelSupportRadius(0)).To(MatchError(particle.ErrInvalidConfig))
	})

	It("rejects mirror dimensions without a mirror type", func() {
		cfg := mirror1DConfig(boundary.MirrorUnspecified)
		mgr := boundary.NewManager()
		Expect(mgr.Initialize(cfg)).To(HaveOccurred())
	})
})

var _ = Describe("Coordinator", func() {
	newCoordinator := func() *boundary.Coordinator {
		mgr := boundary.NewManager()
		Expect(mgr.Initialize(mirror1DConfig(boundary.NoSlip))).To(Succeed())
		return boundary.NewCoordinator(mgr)
	}

	It("refuses particles without smoothing lengths", func() {
		coord := newCoordinator()
		parts := []particle.Particle{realParticle(0, vec.Vector{0.05, 0, 0}, vec.Vector{})}
		parts[0].Sml = 0

		err := coord.InitializeGhosts(parts)
		Expect(err).To(MatchError(particle.ErrInvalidSmoothingLength))
		Expect(coord.HasGhosts()).To(BeFalse())
		Expect(coord.GhostCount()).To(BeZero())
	})

	It("derives the support radius from the largest smoothing length", func() {
		coord := newCoordinator()
		parts := []particle.Particle{
			realParticle(0, vec.Vector{0.05, 0, 0}, vec.Vector{}),
			realParticle(1, vec.Vector{0.5, 0, 0}, vec.Vector{}),
		}
		parts[1].Sml = 0.2

		Expect(coord.InitializeGhosts(parts)).To(Succeed())
		Expect(coord.KernelSupportRadius()).To(BeNumerically("~", 0.4, 1e-12))
		Expect(coord.HasGhosts()).To(BeTrue())
	})

	It("never shrinks the support radius when a smoothing length grows", func() {
		coord := newCoordinator()
		parts := []particle.Particle{
			realParticle(0, vec.Vector{0.05, 0, 0}, vec.Vector{}),
			realParticle(1, vec.Vector{0.5, 0, 0}, vec.Vector{}),
		}
		Expect(coord.InitializeGhosts(parts)).To(Succeed())

		prev := coord.KernelSupportRadius()
		for _, sml := range []float64{0.15, 0.2, 0.3} {
			parts[1].Sml = sml
			Expect(coord.UpdateGhosts(parts)).To(Succeed())
			Expect(coord.KernelSupportRadius()).To(BeNumerically(">=", prev))
			Expect(coord.KernelSupportRadius()).To(BeNumerically("~", 2*sml, 1e-12))
			prev = coord.KernelSupportRadius()
		}
	})

	It("initializes lazily when updated before initialization", func() {
		coord := newCoordinator()
		parts := []particle.Particle{realParticle(0, vec.Vector{0.05, 0, 0}, vec.Vector{})}

		Expect(coord.UpdateGhosts(parts)).To(Succeed())
		Expect(coord.GhostCount()).To(BeNumerically(">", 0))
	})

	It("regenerates ghosts after motion", func() {
		coord := newCoordinator()
		parts := []particle.Particle{realParticle(0, vec.Vector{0.05, 0, 0}, vec.Vector{})}
		Expect(coord.InitializeGhosts(parts)).To(Succeed())
		first := coord.Manager().GhostParticles()[0].Pos[0]

		parts[0].Pos[0] = 0.1
		Expect(coord.UpdateGhosts(parts)).To(Succeed())
		second := coord.Manager().GhostParticles()[0].Pos[0]

		Expect(second).To(BeNumerically("~", -0.2, 1e-12))
		Expect(second).NotTo(Equal(first))
	})

	It("is a no-op without a manager", func() {
		coord := boundary.NewCoordinator(nil)
		parts := []particle.Particle{realParticle(0, vec.Vector{0.05, 0, 0}, vec.Vector{})}

		Expect(coord.InitializeGhosts(parts)).To(Succeed())
		Expect(coord.UpdateGhosts(parts)).To(Succeed())
		Expect(coord.UpdateGhostProperties(parts)).To(Succeed())
		Expect(coord.HasGhosts()).To(BeFalse())
		Expect(coord.GhostCount()).To(BeZero())
	})
})
