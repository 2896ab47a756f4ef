// Package batch runs independent lookups concurrently while keeping results
// in request order.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every input concurrently, with at most limit calls in
// flight (limit <= 0 means unbounded), and returns the results in the order
// of inputs. The first error cancels the remaining calls and is returned.
func Map[In, Out any](ctx context.Context, inputs []In, limit int, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(inputs))
	if len(inputs) == 0 {
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, in := range inputs {
		g.Go(func() error {
			res, err := fn(ctx, in)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
