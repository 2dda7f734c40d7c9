package solver

import (
	"math"
	"sync"
)

// timestep reduces the per-particle CFL limits to a global dt. Chunks reduce
// to local minima in parallel; the merge is serialized per chunk.
func (s *Solver) timestep() float64 {
	cflSound := s.cfg.CFL.Sound
	cflForce := s.cfg.CFL.Force

	var mu sync.Mutex
	dtMin := math.Inf(1)

	ParallelFor(len(s.parts), 256, func(start, end int) {
		local := math.Inf(1)
		for i := start; i < end; i++ {
			p := &s.parts[i]
			if p.Sound > 0 {
				if dt := cflSound * p.Sml / p.Sound; dt < local {
					local = dt
				}
			}
			if a := p.Acc.Norm(); a > 0 {
				if dt := cflForce * math.Sqrt(p.Sml/a); dt < local {
					local = dt
				}
			}
		}
		mu.Lock()
		if local < dtMin {
			dtMin = local
		}
		mu.Unlock()
	})
	return dtMin
}
