package tree

import (
	"gosph/internal/particle"
	"gosph/internal/vec"
)

// Separations below this are treated as coincident and skipped.
const minSeparation = 1e-12

// TreeForce evaluates the gravitational acceleration and potential on p by
// walking the tree: a node whose angular size over distance is below the
// opening angle acts as a single point mass at its center of mass, otherwise
// its children are visited. Close pairs use the Hernquist & Katz (1989)
// spline-softened kernel, so force and potential stay finite and smooth as
// r -> 0.
func (t *Tree) TreeForce(p *particle.Particle) (vec.Vector, float64) {
	var acc vec.Vector
	phi := 0.0
	if t.gConst == 0 || len(t.nodes) == 0 {
		return acc, phi
	}
	t.forceNode(t.root, p, &acc, &phi)
	return acc, phi
}

func (t *Tree) forceNode(ni int32, p *particle.Particle, acc *vec.Vector, phi *float64) {
	nd := &t.nodes[ni]
	if nd.mass == 0 {
		return
	}

	if !nd.leaf {
		rel := t.per.RelPos(nd.com, p.Pos)
		dist := rel.Norm()
		if dist > 0 && nd.edge < t.theta*dist {
			t.pointMass(rel, dist, nd.mass, p.Sml, acc, phi)
			return
		}
		for _, c := range nd.children {
			if c >= 0 {
				t.forceNode(c, p, acc, phi)
			}
		}
		return
	}

	for _, j := range t.idx[nd.start:nd.end] {
		q := &t.parts[j]
		if q.ID == p.ID {
			continue
		}
		rel := t.per.RelPos(q.Pos, p.Pos)
		r := rel.Norm()
		h := 0.5 * (p.Sml + q.Sml)
		t.pointMass(rel, r, q.Mass, h, acc, phi)
	}
}

// pointMass accumulates the interaction with a mass at separation rel,
// softened over the smoothing scale h (softening length eps = h/2, spline
// support 2*eps).
func (t *Tree) pointMass(rel vec.Vector, r, mass, h float64, acc *vec.Vector, phi *float64) {
	if r < minSeparation {
		return
	}
	gm := t.gConst * mass
	eps := 0.5 * h
	if eps <= 0 || r >= 2.0*eps {
		*acc = acc.Add(rel.Scale(gm / (r * r * r)))
		*phi -= gm / r
		return
	}

	u := r / eps
	var f, pot float64
	if u < 1.0 {
		u2 := u * u
		f = gm / (eps * eps) * (4.0/3.0*u - 6.0/5.0*u2*u + 0.5*u2*u2)
		pot = gm / eps * (2.0/3.0*u2 - 3.0/10.0*u2*u2 + 1.0/10.0*u2*u2*u - 7.0/5.0)
	} else {
		u2 := u * u
		f = gm / (eps * eps) *
			(8.0/3.0*u - 3.0*u2 + 6.0/5.0*u2*u - 1.0/6.0*u2*u2 - 1.0/(15.0*u2))
		pot = gm / eps *
			(4.0/3.0*u2 - u2*u + 3.0/10.0*u2*u2 - 1.0/30.0*u2*u2*u - 8.0/5.0 + 1.0/(15.0*u))
	}
	*acc = acc.Add(rel.Scale(f / r))
	*phi += pot
}

// SoftenedPointMass returns the force magnitude and potential for a unit-G,
// unit-mass pair at separation r with smoothing scale h. Exposed for
// validation against the unsoftened law at large r.
func SoftenedPointMass(r, h float64) (force, potential float64) {
	t := Tree{gConst: 1.0}
	var acc vec.Vector
	phi := 0.0
	t.pointMass(vec.Vector{r, 0, 0}, r, 1.0, h, &acc, &phi)
	return acc[0], phi
}
