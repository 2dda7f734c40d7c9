// Package kernel provides SPH interpolation kernels.
//
// All kernels share the convention that W(r, h) vanishes for r >= h, so a
// particle's kernel-support radius equals its smoothing length.
package kernel

import (
	"fmt"

	"gosph/internal/vec"
)

// Kernel is the evaluate/gradient contract consumed by the density and force
// calculations. DHW is the analytic derivative with respect to the smoothing
// length, needed by the Newton-Raphson smoothing-length solver.
type Kernel interface {
	// W evaluates the kernel at particle distance r and smoothing length h.
	W(r, h float64) float64
	// GradW evaluates the kernel gradient for separation vector rij with
	// norm r.
	GradW(rij vec.Vector, r, h float64) vec.Vector
	// DHW evaluates dW/dh.
	DHW(r, h float64) float64
}

// New constructs the named kernel for the given spatial dimension.
// Supported names: "cubic_spline", "wendland".
func New(name string, dim int) (Kernel, error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("kernel: dimension must be 1, 2 or 3, got %d", dim)
	}
	switch name {
	case "cubic_spline", "":
		return NewCubicSpline(dim), nil
	case "wendland":
		return NewWendlandC4(dim)
	default:
		return nil, fmt.Errorf("kernel: unknown kernel %q", name)
	}
}
