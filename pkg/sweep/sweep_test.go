package sweep

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectPolicy struct {
	mu    sync.Mutex
	items []int
}

func (c *collectPolicy) HandleItemError(_ context.Context, item int, _ error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return nil
}

func selectItems(items ...int) func(context.Context) ([]int, error) {
	return func(context.Context) ([]int, error) { return items, nil }
}

func TestRunCountsOutcomes(t *testing.T) {
	policy := &collectPolicy{}
	p := &Pipeline[int]{
		Select: selectItems(1, 2, 3, 4, 5, 6),
		Filter: func(i int) bool { return i != 6 },
		Process: func(_ context.Context, i int) (Outcome, error) {
			switch {
			case i%2 == 0:
				return Applied, nil
			case i == 5:
				return Skipped, errors.New("lookup failed")
			default:
				return Skipped, nil
			}
		},
		Policy:      policy,
		Concurrency: 3,
	}

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Selected: 6, Filtered: 1, Applied: 2, Skipped: 2, Failed: 1}, res)
	assert.Equal(t, []int{5}, policy.items)
}

func TestRunReturnsSelectError(t *testing.T) {
	var processed atomic.Int32
	p := &Pipeline[int]{
		Select: func(context.Context) ([]int, error) { return nil, errors.New("store unreachable") },
		Process: func(context.Context, int) (Outcome, error) {
			processed.Add(1)
			return Applied, nil
		},
		Policy: &collectPolicy{},
	}

	_, err := p.Run(context.Background())
	assert.EqualError(t, err, "store unreachable")
	assert.Zero(t, processed.Load())
}

func TestRunAbortsWhenPolicyRefuses(t *testing.T) {
	fatal := errors.New("fatal")
	p := &Pipeline[int]{
		Select: selectItems(1, 2, 3),
		Process: func(_ context.Context, i int) (Outcome, error) {
			if i == 1 {
				return Skipped, errors.New("boom")
			}
			return Applied, nil
		},
		Policy: ErrorPolicyFunc[int](func(context.Context, int, error) error { return fatal }),
	}

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, fatal)
}

func TestRunBoundsConcurrency(t *testing.T) {
	var current, peak atomic.Int32
	p := &Pipeline[int]{
		Select: selectItems(1, 2, 3, 4, 5, 6, 7, 8),
		Process: func(context.Context, int) (Outcome, error) {
			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			return Applied, nil
		},
		Policy:      &collectPolicy{},
		Concurrency: 2,
	}

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, res.Applied)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunAppliesItemTimeout(t *testing.T) {
	p := &Pipeline[int]{
		Select: selectItems(1),
		Process: func(ctx context.Context, _ int) (Outcome, error) {
			<-ctx.Done()
			return Skipped, ctx.Err()
		},
		Policy:      &collectPolicy{},
		ItemTimeout: 10 * time.Millisecond,
	}

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
}

func TestRunReturnsPartialResultWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var processed atomic.Int32
	p := &Pipeline[int]{
		Select: selectItems(1, 2, 3, 4, 5, 6, 7, 8, 9, 10),
		Process: func(context.Context, int) (Outcome, error) {
			if processed.Add(1) == 3 {
				cancel()
			}
			return Applied, nil
		},
		Policy:      &collectPolicy{},
		Concurrency: 1,
	}

	res, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(3), processed.Load())
	assert.Equal(t, Result{Selected: 10, Applied: 3, Cancelled: 7}, res)
}

func TestRunCountsAbortedItemsAsCancelled(t *testing.T) {
	fatal := errors.New("fatal")
	p := &Pipeline[int]{
		Select: selectItems(1, 2, 3, 4),
		Process: func(_ context.Context, i int) (Outcome, error) {
			if i == 1 {
				return Skipped, errors.New("boom")
			}
			return Applied, nil
		},
		Policy:      ErrorPolicyFunc[int](func(context.Context, int, error) error { return fatal }),
		Concurrency: 1,
	}

	res, err := p.Run(context.Background())
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 3, res.Cancelled)
	assert.Zero(t, res.Applied)
}
