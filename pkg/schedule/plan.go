package schedule

import (
	"sync/atomic"
)

// Batch is the half-open index range [Lo, Hi) owned by a single worker.
type Batch struct {
	Lo, Hi int
}

func (b Batch) Len() int {
	return b.Hi - b.Lo
}

// ChunkFunc returns the desired claim size for the given number of
// unclaimed units.
type ChunkFunc func(remaining int) int

// Cursor is the shared position of the dynamic and guided policies.
type Cursor struct {
	next atomic.Int64
}

// ClaimNextBatch atomically advances the cursor by one chunk and returns
// the claimed range. It reports false once the space [0,n) is exhausted.
// The chunk size is clamped to [1, remaining].
func ClaimNextBatch(c *Cursor, n int, chunkFn ChunkFunc) (Batch, bool) {
	for {
		lo := c.next.Load()
		remaining := int64(n) - lo
		if remaining <= 0 {
			return Batch{}, false
		}

		size := int64(chunkFn(int(remaining)))
		if size < 1 {
			size = 1
		}
		if size > remaining {
			size = remaining
		}

		if c.next.CompareAndSwap(lo, lo+size) {
			return Batch{Lo: int(lo), Hi: int(lo + size)}, true
		}
	}
}

// StaticSplit divides [0,n) into workers contiguous near-equal ranges.
// The first n%workers ranges are one unit longer.
func StaticSplit(n, workers int) []Batch {
	if workers < 1 {
		workers = 1
	}
	batches := make([]Batch, workers)
	q, r := n/workers, n%workers

	lo := 0
	for w := range workers {
		size := q
		if w < r {
			size++
		}
		batches[w] = Batch{Lo: lo, Hi: lo + size}
		lo += size
	}
	return batches
}

// Plan hands out the batches of one run. A Plan must not be reused
// across runs.
type Plan struct {
	policy  Policy
	n       int
	workers int

	static []Batch
	taken  []bool // индексируется номером воркера, пишет только владелец

	cursor  Cursor
	chunkFn ChunkFunc
	claims  atomic.Int64
}

func NewPlan(policy Policy, n, workers int) *Plan {
	if workers < 1 {
		workers = 1
	}
	p := &Plan{
		policy:  policy,
		n:       n,
		workers: workers,
	}

	switch policy.Kind {
	case Static:
		p.static = StaticSplit(n, workers)
		p.taken = make([]bool, workers)
	case Dynamic:
		chunk := max(1, policy.Chunk)
		p.chunkFn = func(int) int { return chunk }
	case Guided:
		p.chunkFn = GuidedChunk(workers, policy.Chunk)
	}
	return p
}

// GuidedChunk returns ceil(remaining/workers) bounded below by floor.
// Since remaining only shrinks, successive sizes never grow.
func GuidedChunk(workers, floor int) ChunkFunc {
	floor = max(1, floor)
	return func(remaining int) int {
		return max(floor, (remaining+workers-1)/workers)
	}
}

func (p *Plan) Policy() Policy {
	return p.policy
}

func (p *Plan) Size() int {
	return p.n
}

func (p *Plan) Workers() int {
	return p.workers
}

// Next returns the next batch for worker. The worker index must be in
// [0, Workers()) and a given index must be driven by one goroutine only.
func (p *Plan) Next(worker int) (Batch, bool) {
	if p.policy.Kind == Static {
		if worker < 0 || worker >= p.workers || p.taken[worker] {
			return Batch{}, false
		}
		p.taken[worker] = true
		b := p.static[worker]
		if b.Len() == 0 {
			return Batch{}, false
		}
		p.claims.Add(1)
		return b, true
	}

	b, ok := ClaimNextBatch(&p.cursor, p.n, p.chunkFn)
	if ok {
		p.claims.Add(1)
	}
	return b, ok
}

// Claims is the number of batches issued so far.
func (p *Plan) Claims() int {
	return int(p.claims.Load())
}
