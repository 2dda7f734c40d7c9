package boundary_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gosph/internal/boundary"
	"gosph/internal/vec"
)

var _ = Describe("PeriodicSpace", func() {
	It("applies the minimum-image convention across the seam", func() {
		cfg := periodicConfig(2)
		per := boundary.NewPeriodicSpace(&cfg)
		Expect(per.Valid()).To(BeTrue())

		rij := per.RelPos(vec.Vector{0.95, 0.5, 0}, vec.Vector{0.05, 0.5, 0})
		Expect(rij[0]).To(BeNumerically("~", -0.1, 1e-12))
		Expect(rij[1]).To(BeZero())
	})

	It("passes through for short separations", func() {
		cfg := periodicConfig(2)
		per := boundary.NewPeriodicSpace(&cfg)

		rij := per.RelPos(vec.Vector{0.6, 0.5, 0}, vec.Vector{0.4, 0.5, 0})
		Expect(rij[0]).To(BeNumerically("~", 0.2, 1e-12))
	})

	It("is inert for a nil configuration", func() {
		per := boundary.NewPeriodicSpace(nil)
		Expect(per.Valid()).To(BeFalse())

		rij := per.RelPos(vec.Vector{0.95, 0, 0}, vec.Vector{0.05, 0, 0})
		Expect(rij[0]).To(BeNumerically("~", 0.9, 1e-12))

		pos := vec.Vector{1.5, 0, 0}
		per.Wrap(&pos)
		Expect(pos[0]).To(Equal(1.5))
	})

	It("wraps positions into the half-open domain", func() {
		cfg := periodicConfig(1)
		per := boundary.NewPeriodicSpace(&cfg)

		pos := vec.Vector{1.0, 0, 0}
		per.Wrap(&pos)
		Expect(pos[0]).To(BeZero())
	})
})
