// Package tree implements the hierarchical spatial decomposition over the
// search array: a Barnes-Hut style tree answering kernel-radius neighbor
// queries and opening-angle approximated gravity.
package tree

import (
	"fmt"

	"gosph/internal/boundary"
	"gosph/internal/particle"
	"gosph/internal/vec"
)

// Params configures tree construction and gravity evaluation.
type Params struct {
	Dim             int
	MaxLevel        int     // forced-leaf depth limit
	LeafParticleNum int     // split threshold
	GravConstant    float64 // 0 disables tree gravity
	Theta           float64 // Barnes-Hut opening angle
}

const (
	defaultMaxLevel = 20
	defaultLeafNum  = 8
)

type node struct {
	center     vec.Vector // geometric center of the region
	edge       float64    // region side length
	mass       float64
	com        vec.Vector // center of mass
	kernelSize float64    // max smoothing length in the subtree
	start, end int32      // leaf particle range in t.idx
	children   [8]int32
	level      int32
	leaf       bool
}

// Tree is rebuilt from scratch over the current search array each step and
// is read-only during parallel compute phases.
type Tree struct {
	dim     int
	nchild  int
	maxLvl  int
	leafNum int

	gConst float64
	theta  float64

	per *boundary.PeriodicSpace

	parts []particle.Particle
	idx   []int
	tmp   []int
	nodes []node
	root  int32
}

func New(p Params, per *boundary.PeriodicSpace) *Tree {
	if p.MaxLevel <= 0 {
		p.MaxLevel = defaultMaxLevel
	}
	if p.LeafParticleNum <= 0 {
		p.LeafParticleNum = defaultLeafNum
	}
	if per == nil {
		per = boundary.NewPeriodicSpace(nil)
	}
	return &Tree{
		dim:     p.Dim,
		nchild:  1 << p.Dim,
		maxLvl:  p.MaxLevel,
		leafNum: p.LeafParticleNum,
		gConst:  p.GravConstant,
		theta:   p.Theta,
		per:     per,
	}
}

// Build constructs the tree over parts. The slice is retained for lookups
// until the next Build; callers must not mutate it while queries run.
func (t *Tree) Build(parts []particle.Particle) error {
	if len(parts) == 0 {
		return fmt.Errorf("tree: build: %w", particle.ErrEmptyParticles)
	}
	t.parts = parts

	n := len(parts)
	if cap(t.idx) < n {
		t.idx = make([]int, n)
		t.tmp = make([]int, n)
	}
	t.idx = t.idx[:n]
	t.tmp = t.tmp[:n]
	for i := range t.idx {
		t.idx[i] = i
	}
	t.nodes = t.nodes[:0]

	center, edge := t.rootRegion(parts)
	t.root = t.buildNode(0, n, center, edge, 0)
	return nil
}

// rootRegion returns the cubical region enclosing every particle.
func (t *Tree) rootRegion(parts []particle.Particle) (vec.Vector, float64) {
	lo, hi := parts[0].Pos, parts[0].Pos
	for i := 1; i < len(parts); i++ {
		p := parts[i].Pos
		for d := 0; d < t.dim; d++ {
			if p[d] < lo[d] {
				lo[d] = p[d]
			}
			if p[d] > hi[d] {
				hi[d] = p[d]
			}
		}
	}
	var center vec.Vector
	edge := 0.0
	for d := 0; d < t.dim; d++ {
		center[d] = 0.5 * (lo[d] + hi[d])
		if ext := hi[d] - lo[d]; ext > edge {
			edge = ext
		}
	}
	if edge == 0 {
		edge = 1.0
	}
	// Slack keeps particles on the hull strictly inside child regions.
	return center, edge * (1.0 + 1e-9)
}

func (t *Tree) buildNode(start, end int, center vec.Vector, edge float64, level int) int32 {
	ni := int32(len(t.nodes))
	t.nodes = append(t.nodes, node{
		center: center,
		edge:   edge,
		start:  int32(start),
		end:    int32(end),
		level:  int32(level),
		leaf:   true,
	})
	for i := range t.nodes[ni].children {
		t.nodes[ni].children[i] = -1
	}

	mass := 0.0
	var com vec.Vector
	kernelSize := 0.0
	for _, j := range t.idx[start:end] {
		p := &t.parts[j]
		mass += p.Mass
		com = com.Add(p.Pos.Scale(p.Mass))
		if p.Sml > kernelSize {
			kernelSize = p.Sml
		}
	}
	if mass > 0 {
		com = com.Scale(1.0 / mass)
	} else {
		com = center
	}
	t.nodes[ni].mass = mass
	t.nodes[ni].com = com
	t.nodes[ni].kernelSize = kernelSize

	// A branch at max depth stays a leaf even over capacity.
	if end-start <= t.leafNum || level >= t.maxLvl {
		return ni
	}
	t.nodes[ni].leaf = false

	counts := t.partition(start, end, center)
	childStart := start
	half := edge * 0.25
	for c := 0; c < t.nchild; c++ {
		if counts[c] == 0 {
			continue
		}
		childCenter := center
		for d := 0; d < t.dim; d++ {
			if c&(1<<d) != 0 {
				childCenter[d] += half
			} else {
				childCenter[d] -= half
			}
		}
		child := t.buildNode(childStart, childStart+counts[c], childCenter, edge*0.5, level+1)
		t.nodes[ni].children[c] = child
		childStart += counts[c]
	}
	return ni
}

// partition groups idx[start:end] by octant relative to center using a
// counting pass through the scratch buffer, so sibling ranges stay
// contiguous.
func (t *Tree) partition(start, end int, center vec.Vector) [8]int {
	var counts [8]int
	for _, j := range t.idx[start:end] {
		counts[t.octant(&t.parts[j].Pos, center)]++
	}
	var offsets [8]int
	sum := 0
	for c := 0; c < t.nchild; c++ {
		offsets[c] = sum
		sum += counts[c]
	}
	for _, j := range t.idx[start:end] {
		c := t.octant(&t.parts[j].Pos, center)
		t.tmp[start+offsets[c]] = j
		offsets[c]++
	}
	copy(t.idx[start:end], t.tmp[start:end])
	return counts
}

func (t *Tree) octant(pos *vec.Vector, center vec.Vector) int {
	c := 0
	for d := 0; d < t.dim; d++ {
		if pos[d] >= center[d] {
			c |= 1 << d
		}
	}
	return c
}

// NodeCount reports the number of allocated nodes, for diagnostics.
func (t *Tree) NodeCount() int { return len(t.nodes) }
