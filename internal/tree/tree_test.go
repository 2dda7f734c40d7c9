package tree

import (
	"math/rand"
	"sort"
	"testing"

	"gosph/internal/boundary"
	"gosph/internal/particle"
	"gosph/internal/vec"
)

func randomParticles(n, dim int, seed int64) []particle.Particle {
	rng := rand.New(rand.NewSource(seed))
	parts := make([]particle.Particle, n)
	for i := range parts {
		var pos vec.Vector
		for d := 0; d < dim; d++ {
			pos[d] = rng.Float64()
		}
		parts[i] = particle.Particle{
			ID:   i,
			Pos:  pos,
			Mass: 1.0 / float64(n),
			Sml:  0.1 + 0.1*rng.Float64(),
			Type: particle.Real,
		}
	}
	return parts
}

func bruteForceNeighbors(parts []particle.Particle, p *particle.Particle, isIJ bool) []int {
	var out []int
	for j := range parts {
		q := &parts[j]
		radius := p.Sml
		if isIJ && q.Sml > radius {
			radius = q.Sml
		}
		if p.Pos.Sub(q.Pos).Norm() < radius {
			out = append(out, j)
		}
	}
	sort.Ints(out)
	return out
}

func sortedCopy(idx []int) []int {
	out := append([]int(nil), idx...)
	sort.Ints(out)
	return out
}

func TestBuildEmpty(t *testing.T) {
	tr := New(Params{Dim: 3}, nil)
	if err := tr.Build(nil); err == nil {
		t.Fatal("expected error building over no particles")
	}
}

func TestNeighborSearchMatchesBruteForce(t *testing.T) {
	for _, dim := range []int{1, 2, 3} {
		parts := randomParticles(300, dim, int64(42+dim))
		tr := New(Params{Dim: dim}, nil)
		if err := tr.Build(parts); err != nil {
			t.Fatalf("dim %d: build failed: %v", dim, err)
		}

		for _, isIJ := range []bool{false, true} {
			cfg, err := NewSearchConfig(32, isIJ)
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < len(parts); i += 17 {
				got := sortedCopy(tr.NeighborSearch(&parts[i], cfg).Indices)
				want := bruteForceNeighbors(parts, &parts[i], isIJ)
				if len(got) != len(want) {
					t.Fatalf("dim %d isIJ %v query %d: got %d neighbors, want %d",
						dim, isIJ, i, len(got), len(want))
				}
				for k := range got {
					if got[k] != want[k] {
						t.Fatalf("dim %d isIJ %v query %d: neighbor sets differ at %d",
							dim, isIJ, i, k)
					}
				}
			}
		}
	}
}

func TestNeighborSearchSortedByDistance(t *testing.T) {
	parts := randomParticles(200, 3, 7)
	tr := New(Params{Dim: 3}, nil)
	if err := tr.Build(parts); err != nil {
		t.Fatal(err)
	}

	cfg, _ := NewSearchConfig(32, false)
	res := tr.NeighborSearch(&parts[0], cfg)
	prev := -1.0
	for _, j := range res.Indices {
		r := parts[0].Pos.Sub(parts[j].Pos).Norm()
		if r < prev {
			t.Fatal("indices not sorted by distance")
		}
		prev = r
	}
}

func TestNeighborSearchTruncation(t *testing.T) {
	parts := randomParticles(100, 2, 3)
	for i := range parts {
		parts[i].Sml = 2.0 // every particle sees the whole box
	}
	tr := New(Params{Dim: 2}, nil)
	if err := tr.Build(parts); err != nil {
		t.Fatal(err)
	}

	cfg := SearchConfig{MaxNeighbors: 5}
	res := tr.NeighborSearch(&parts[0], cfg)

	if !res.Truncated {
		t.Error("expected truncation")
	}
	if len(res.Indices) != 5 {
		t.Errorf("expected 5 indices, got %d", len(res.Indices))
	}
	if res.Candidates != 100 {
		t.Errorf("expected 100 candidates, got %d", res.Candidates)
	}
}

func TestNeighborSearchAcrossPeriodicSeam(t *testing.T) {
	cfg := boundary.Config{Enabled: true, Dim: 1}
	cfg.Types[0] = boundary.Periodic
	cfg.RangeMin[0] = 0.0
	cfg.RangeMax[0] = 1.0
	per := boundary.NewPeriodicSpace(&cfg)

	parts := []particle.Particle{
		{ID: 0, Pos: vec.Vector{0.05, 0, 0}, Mass: 1, Sml: 0.2, Type: particle.Real},
		{ID: 1, Pos: vec.Vector{0.95, 0, 0}, Mass: 1, Sml: 0.2, Type: particle.Real},
		{ID: 2, Pos: vec.Vector{0.5, 0, 0}, Mass: 1, Sml: 0.2, Type: particle.Real},
	}
	tr := New(Params{Dim: 1}, per)
	if err := tr.Build(parts); err != nil {
		t.Fatal(err)
	}

	sc, _ := NewSearchConfig(8, false)
	res := tr.NeighborSearch(&parts[0], sc)
	got := sortedCopy(res.Indices)
	want := []int{0, 1} // 0.95 is 0.1 away through the seam
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected neighbors %v, got %v", want, got)
	}
}

// Coincident particles cannot be split spatially; the build must fall back
// to a forced leaf at the depth cap instead of recursing forever.
func TestBuildCoincidentParticles(t *testing.T) {
	parts := make([]particle.Particle, 20)
	for i := range parts {
		parts[i] = particle.Particle{
			ID:   i,
			Pos:  vec.Vector{0.5, 0.5, 0.5},
			Mass: 1,
			Sml:  0.1,
			Type: particle.Real,
		}
	}
	tr := New(Params{Dim: 3, MaxLevel: 4, LeafParticleNum: 2}, nil)
	if err := tr.Build(parts); err != nil {
		t.Fatal(err)
	}

	sc, _ := NewSearchConfig(32, false)
	res := tr.NeighborSearch(&parts[0], sc)
	if len(res.Indices) != 20 {
		t.Errorf("expected all 20 coincident particles, got %d", len(res.Indices))
	}
}
