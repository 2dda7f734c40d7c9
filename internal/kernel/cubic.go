package kernel

import (
	"math"

	"gosph/internal/vec"
)

// CubicSpline is the Monaghan & Lattanzio (1985) cubic spline kernel,
// parameterized so that the support radius is exactly h (q = 2r/h).
type CubicSpline struct {
	dim   int
	sigma float64
}

func NewCubicSpline(dim int) *CubicSpline {
	var sigma float64
	switch dim {
	case 1:
		sigma = 2.0 / 3.0
	case 2:
		sigma = 10.0 / (7.0 * math.Pi)
	default:
		sigma = 1.0 / math.Pi
	}
	return &CubicSpline{dim: dim, sigma: sigma}
}

// plus(x) = max(0, x), written branch-free as in the reference formulas.
func plus(x float64) float64 {
	return 0.5 * (x + math.Abs(x))
}

func (k *CubicSpline) W(r, h float64) float64 {
	hh := h * 0.5
	q := r / hh
	a := plus(2.0 - q)
	b := plus(1.0 - q)
	return k.sigma / vec.PowDim(hh, k.dim) * (0.25*a*a*a - b*b*b)
}

func (k *CubicSpline) GradW(rij vec.Vector, r, h float64) vec.Vector {
	if r == 0.0 {
		return vec.Vector{}
	}
	hh := h * 0.5
	q := r / hh
	a := plus(2.0 - q)
	b := plus(1.0 - q)
	c := -k.sigma / (vec.PowDim(hh, k.dim) * hh * r) * (0.75*a*a - 3.0*b*b)
	return rij.Scale(c)
}

func (k *CubicSpline) DHW(r, h float64) float64 {
	hh := h * 0.5
	q := r / hh
	a := plus(2.0 - q)
	b := plus(1.0 - q)
	d := float64(k.dim)
	return 0.5 * k.sigma / (vec.PowDim(hh, k.dim) * hh) *
		(a*a*((3.0+d)*0.25*q-0.5*d) + b*b*((-3.0-d)*q+d))
}
