// Package vec provides fixed-size vector math for 1D, 2D and 3D simulations.
//
// A Vector always carries three components; runs with a lower spatial
// dimension leave the trailing components at zero, so norms and dot products
// over the full array stay correct for every dimension.
package vec

import "math"

type Vector [3]float64

func (v Vector) Add(o Vector) Vector {
	return Vector{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vector) Scale(s float64) Vector {
	return Vector{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vector) Neg() Vector {
	return Vector{-v[0], -v[1], -v[2]}
}

func (v Vector) Dot(o Vector) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vector) Norm2() float64 {
	return v.Dot(v)
}

func (v Vector) Norm() float64 {
	return math.Sqrt(v.Norm2())
}

func (v Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// UnitSphereVolume returns the volume coefficient A of the unit sphere:
// 2 in 1D (interval), pi in 2D (disc), 4pi/3 in 3D.
func UnitSphereVolume(dim int) float64 {
	switch dim {
	case 1:
		return 2.0
	case 2:
		return math.Pi
	default:
		return 4.0 * math.Pi / 3.0
	}
}

// PowDim computes h**dim without going through math.Pow.
func PowDim(h float64, dim int) float64 {
	switch dim {
	case 1:
		return h
	case 2:
		return h * h
	default:
		return h * h * h
	}
}
