// Package sweep runs "select candidates, then decide and apply per item"
// passes over a store used as a work queue.
package sweep

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Outcome is what processing one item amounted to.
type Outcome int

const (
	// Skipped items were inspected and needed no action.
	Skipped Outcome = iota
	// Applied items had their action carried out.
	Applied
	// Failed items returned an error that the ErrorPolicy absorbed.
	Failed
)

// ErrorPolicy decides what a per-item error means for the rest of the pass.
// Returning nil absorbs the error; returning an error aborts the pass.
type ErrorPolicy[T any] interface {
	HandleItemError(ctx context.Context, item T, err error) error
}

// ErrorPolicyFunc adapts a function to ErrorPolicy.
type ErrorPolicyFunc[T any] func(ctx context.Context, item T, err error) error

func (f ErrorPolicyFunc[T]) HandleItemError(ctx context.Context, item T, err error) error {
	return f(ctx, item, err)
}

// Pipeline wires the stages of one pass.
type Pipeline[T any] struct {
	// Select loads candidates. Its error is fatal for the pass.
	Select func(ctx context.Context) ([]T, error)
	// Filter drops candidates the store could not exclude itself. Optional.
	Filter func(item T) bool
	// Process decides and applies the action for one item.
	Process func(ctx context.Context, item T) (Outcome, error)
	// Policy handles Process errors. Required.
	Policy ErrorPolicy[T]
	// Concurrency bounds parallel Process calls; values below 1 mean 1.
	Concurrency int
	// ItemTimeout bounds each Process call when positive.
	ItemTimeout time.Duration
}

// Result counts how many items ended in each outcome. Cancelled items were
// never started because the pass was cancelled.
type Result struct {
	Selected  int
	Filtered  int
	Applied   int
	Skipped   int
	Failed    int
	Cancelled int
}

// Run executes one pass. It returns the Select error, or the first error the
// policy refused to absorb; in the latter case remaining items are cancelled.
//
// Cancelling ctx after Select returned is not an error: items already in
// flight finish through the policy, the rest are counted as Cancelled and
// the partial Result is returned.
func (p *Pipeline[T]) Run(ctx context.Context) (Result, error) {
	var res Result

	items, err := p.Select(ctx)
	if err != nil {
		return res, err
	}
	res.Selected = len(items)

	limit := p.Concurrency
	if limit < 1 {
		limit = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, item := range items {
		if p.Filter != nil && !p.Filter(item) {
			mu.Lock()
			res.Filtered++
			mu.Unlock()
			continue
		}

		if gctx.Err() != nil {
			mu.Lock()
			res.Cancelled++
			mu.Unlock()
			continue
		}

		item := item
		g.Go(func() error {
			if gctx.Err() != nil {
				mu.Lock()
				res.Cancelled++
				mu.Unlock()
				return nil
			}

			outcome, err := p.process(gctx, item)
			if err != nil {
				if perr := p.Policy.HandleItemError(gctx, item, err); perr != nil {
					return perr
				}
				outcome = Failed
			}

			mu.Lock()
			switch outcome {
			case Applied:
				res.Applied++
			case Failed:
				res.Failed++
			default:
				res.Skipped++
			}
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	return res, err
}

func (p *Pipeline[T]) process(ctx context.Context, item T) (Outcome, error) {
	if p.ItemTimeout <= 0 {
		return p.Process(ctx, item)
	}

	ctx, cancel := context.WithTimeout(ctx, p.ItemTimeout)
	defer cancel()
	return p.Process(ctx, item)
}
