package schedule

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicies = []Policy{
	DynamicChunk(1),
	DynamicChunk(100),
	StaticPolicy(),
	GuidedPolicy(),
	{Kind: Guided, Chunk: 7},
}

// drain runs every worker of the plan concurrently and collects the
// batches each one claimed.
func drain(t *testing.T, plan *Plan) []Batch {
	t.Helper()

	var (
		mu  sync.Mutex
		all []Batch
		wg  sync.WaitGroup
	)
	for w := range plan.Workers() {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			var local []Batch
			for {
				b, ok := plan.Next(worker)
				if !ok {
					break
				}
				local = append(local, b)
			}
			mu.Lock()
			all = append(all, local...)
			mu.Unlock()
		}(w)
	}
	wg.Wait()

	sort.Slice(all, func(i, j int) bool { return all[i].Lo < all[j].Lo })
	return all
}

func requireCoverage(t *testing.T, n int, batches []Batch) {
	t.Helper()

	seen := make([]int, n)
	for _, b := range batches {
		require.Greater(t, b.Len(), 0, "empty batch %v", b)
		for i := b.Lo; i < b.Hi; i++ {
			require.GreaterOrEqual(t, i, 0)
			require.Less(t, i, n)
			seen[i]++
		}
	}
	for i, c := range seen {
		require.Equal(t, 1, c, "index %d covered %d times", i, c)
	}
}

func TestPlan_Coverage(t *testing.T) {
	sizes := []int{0, 1, 2, 7, 100, 1000, 1201}
	workers := []int{1, 2, 3, 4, 8, 16, 32}

	for _, policy := range testPolicies {
		for _, n := range sizes {
			for _, w := range workers {
				plan := NewPlan(policy, n, w)
				batches := drain(t, plan)
				requireCoverage(t, n, batches)
				assert.Equal(t, len(batches), plan.Claims(), "policy %s n=%d w=%d", policy, n, w)
			}
		}
	}
}

func TestPlan_StaticOneBatchPerWorker(t *testing.T) {
	plan := NewPlan(StaticPolicy(), 10, 4)

	b, ok := plan.Next(0)
	require.True(t, ok)
	assert.Equal(t, Batch{Lo: 0, Hi: 3}, b)

	_, ok = plan.Next(0)
	assert.False(t, ok, "static worker must receive a single batch")

	_, ok = plan.Next(4)
	assert.False(t, ok, "out of range worker")
}

func TestStaticSplit(t *testing.T) {
	assert.Equal(t, []Batch{{0, 3}, {3, 6}, {6, 8}, {8, 10}}, StaticSplit(10, 4))
	assert.Equal(t, []Batch{{0, 1}, {1, 2}, {2, 2}, {2, 2}}, StaticSplit(2, 4))
	assert.Equal(t, []Batch{{0, 5}}, StaticSplit(5, 0))
}

func TestClaimNextBatch_ClampsToRemaining(t *testing.T) {
	var c Cursor
	fixed := func(int) int { return 4 }

	var got []Batch
	for {
		b, ok := ClaimNextBatch(&c, 10, fixed)
		if !ok {
			break
		}
		got = append(got, b)
	}
	assert.Equal(t, []Batch{{0, 4}, {4, 8}, {8, 10}}, got)

	zero := func(int) int { return 0 }
	var c2 Cursor
	b, ok := ClaimNextBatch(&c2, 3, zero)
	require.True(t, ok)
	assert.Equal(t, 1, b.Len())
}

func TestPlan_GuidedNonIncreasing(t *testing.T) {
	for _, w := range []int{1, 2, 4, 8, 32} {
		for _, floor := range []int{1, 5, 64} {
			plan := NewPlan(Policy{Kind: Guided, Chunk: floor}, 10_000, w)
			batches := drain(t, plan)
			requireCoverage(t, 10_000, batches)

			// курсор монотонен, поэтому порядок по Lo совпадает с порядком захвата
			for i := 1; i < len(batches); i++ {
				require.LessOrEqual(t, batches[i].Len(), batches[i-1].Len(),
					"workers=%d floor=%d claim %d", w, floor, i)
			}
		}
	}
}

func TestGuidedChunk(t *testing.T) {
	fn := GuidedChunk(4, 3)
	assert.Equal(t, 25, fn(100))
	assert.Equal(t, 3, fn(9))
	assert.Equal(t, 3, fn(1))
}
