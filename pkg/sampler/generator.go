package sampler

import (
	"golang.org/x/exp/rand"
)

// Generator draws integers uniformly from [0, max]. It is owned by a
// single worker and is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	n   int
}

func New(max int, seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		n:   max + 1,
	}
}

// ForWorker derives an independent stream for the given worker.
func ForWorker(max int, seed uint64, worker int) *Generator {
	return New(max, seed+uint64(worker))
}

func (g *Generator) Next() int {
	return g.rng.Intn(g.n)
}

func (g *Generator) Buckets() int {
	return g.n
}
