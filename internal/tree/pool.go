package tree

import "sync"

type pair struct {
	idx int
	r   float64
}

type pairBuf struct {
	pairs []pair
}

// Scratch buffers for concurrent neighbor queries; searches run data-parallel
// across particles and each borrows its own buffer.
var pairBufPool = sync.Pool{
	New: func() interface{} {
		return &pairBuf{pairs: make([]pair, 0, 128)}
	},
}
