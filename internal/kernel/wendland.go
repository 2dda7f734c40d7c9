package kernel

import (
	"fmt"
	"math"

	"gosph/internal/vec"
)

// WendlandC4 is the Wendland (1995) C4 kernel with the Dehnen & Aly (2012)
// normalization. It is defined for 2D and 3D only; q = r/h and the support
// radius is h.
type WendlandC4 struct {
	dim   int
	sigma float64
}

func NewWendlandC4(dim int) (*WendlandC4, error) {
	var sigma float64
	switch dim {
	case 2:
		sigma = 9.0 / math.Pi
	case 3:
		sigma = 495.0 / (32.0 * math.Pi)
	default:
		return nil, fmt.Errorf("kernel: wendland C4 requires dimension >= 2, got %d", dim)
	}
	return &WendlandC4{dim: dim, sigma: sigma}, nil
}

func pow5(x float64) float64 {
	x2 := x * x
	return x2 * x2 * x
}

func (k *WendlandC4) W(r, h float64) float64 {
	q := r / h
	u := plus(1.0 - q)
	return k.sigma / vec.PowDim(h, k.dim) * pow5(u) * u * (1.0 + 6.0*q + 35.0/3.0*q*q)
}

func (k *WendlandC4) GradW(rij vec.Vector, r, h float64) vec.Vector {
	q := r / h
	u := plus(1.0 - q)
	c := -56.0 / 3.0 * k.sigma / (vec.PowDim(h, k.dim) * h * h) * pow5(u) * (1.0 + 5.0*q)
	return rij.Scale(c)
}

func (k *WendlandC4) DHW(r, h float64) float64 {
	q := r / h
	u := plus(1.0 - q)
	d := float64(k.dim)
	return -k.sigma / (vec.PowDim(h, k.dim) * h * 3.0) * pow5(u) *
		(3.0*d + 15.0*d*q + (-56.0+17.0*d)*q*q - 35.0*(8.0+d)*q*q*q)
}
