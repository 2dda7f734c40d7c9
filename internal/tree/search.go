package tree

import (
	"fmt"
	"sort"

	"gosph/internal/particle"
)

// Capacity headroom over the nominal neighbor number before a search
// truncates. Dynamic particle distributions routinely exceed the nominal
// count.
const searchSafetyFactor = 20

// A neighbor count beyond this almost certainly indicates a bug upstream.
const maxReasonableNeighbors = 100000

// SearchConfig bounds a neighbor query.
type SearchConfig struct {
	// MaxNeighbors caps the result length; hitting it sets Result.Truncated.
	MaxNeighbors int
	// UseMaxKernel widens the radius check to max(query sml, candidate sml),
	// making i-j interaction lists symmetric.
	UseMaxKernel bool
}

// NewSearchConfig derives a validated config from the nominal per-particle
// neighbor number.
func NewSearchConfig(neighborNumber int, isIJ bool) (SearchConfig, error) {
	if neighborNumber <= 0 {
		return SearchConfig{}, fmt.Errorf("tree: neighbor number must be positive, got %d", neighborNumber)
	}
	cfg := SearchConfig{
		MaxNeighbors: neighborNumber * searchSafetyFactor,
		UseMaxKernel: isIJ,
	}
	if cfg.MaxNeighbors > maxReasonableNeighbors {
		return SearchConfig{}, fmt.Errorf("tree: neighbor capacity %d exceeds sanity limit %d",
			cfg.MaxNeighbors, maxReasonableNeighbors)
	}
	return cfg, nil
}

// Result is the outcome of one neighbor query. Indices point into the search
// array the tree was built over and are sorted by distance. Truncation is
// explicit: callers observe it instead of silently losing neighbors.
type Result struct {
	Indices    []int
	Truncated  bool
	Candidates int // candidates within radius, including any truncated away
}

// NeighborSearch returns the particles within kernel support of p, pruning
// every subtree whose region cannot intersect the support sphere.
func (t *Tree) NeighborSearch(p *particle.Particle, cfg SearchConfig) Result {
	buf := pairBufPool.Get().(*pairBuf)
	buf.pairs = buf.pairs[:0]

	res := Result{}
	t.searchNode(t.root, p, cfg, buf, &res)

	sort.Slice(buf.pairs, func(i, j int) bool { return buf.pairs[i].r < buf.pairs[j].r })
	res.Indices = make([]int, len(buf.pairs))
	for i, pr := range buf.pairs {
		res.Indices[i] = pr.idx
	}
	pairBufPool.Put(buf)
	return res
}

func (t *Tree) searchNode(ni int32, p *particle.Particle, cfg SearchConfig, buf *pairBuf, res *Result) {
	nd := &t.nodes[ni]

	radius := p.Sml
	if cfg.UseMaxKernel && nd.kernelSize > radius {
		radius = nd.kernelSize
	}
	if t.boxDist2(nd, p) > radius*radius {
		return
	}

	if !nd.leaf {
		for _, c := range nd.children {
			if c >= 0 {
				t.searchNode(c, p, cfg, buf, res)
			}
		}
		return
	}

	for _, j := range t.idx[nd.start:nd.end] {
		q := &t.parts[j]
		r := t.per.RelPos(p.Pos, q.Pos).Norm()
		pairRadius := p.Sml
		if cfg.UseMaxKernel && q.Sml > pairRadius {
			pairRadius = q.Sml
		}
		if r >= pairRadius {
			continue
		}
		res.Candidates++
		if len(buf.pairs) >= cfg.MaxNeighbors {
			res.Truncated = true
			continue
		}
		buf.pairs = append(buf.pairs, pair{idx: j, r: r})
	}
}

// boxDist2 is the squared distance from p to the node's region, under the
// minimum-image convention when the domain is periodic.
func (t *Tree) boxDist2(nd *node, p *particle.Particle) float64 {
	rel := t.per.RelPos(p.Pos, nd.center)
	half := nd.edge * 0.5
	dist2 := 0.0
	for d := 0; d < t.dim; d++ {
		v := rel[d]
		if v < 0 {
			v = -v
		}
		if v > half {
			v -= half
			dist2 += v * v
		}
	}
	return dist2
}
