// Package pool is the Thread Pool (C6): row-interleaved parallel
// execution of a unit of work over a band of rows, or (in the worker-side
// variant) over the columns of a single row. One pool is spawned per
// band and joined before the coordinator proceeds to the next band -
// the join barrier that keeps the Image Sink's view of a band contiguous.
//
// "Thread" here is a goroutine, not an OS thread; golang.org/x/sync/errgroup
// supplies the join-all-or-abort-on-first-error semantics the original
// pthread_create/pthread_join loop in image.c implements by hand.
package pool

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fractalrender/internal/errs"
)

// Run spawns `workers` goroutines (thread descriptors t in [0, workers))
// over `units` items (rows of a band, or columns of a single row).
// Goroutine t processes unit u whenever u mod workers == t - disjoint by
// construction, so fn needs no locking as long as each unit writes to a
// distinct region of the caller's buffer. Run blocks until every
// goroutine finishes; if any invocation of fn returns an error, that
// goroutine stops, the shared context is canceled so every other goroutine
// stops before its next unit, and Run returns the first error wrapped as
// errs.ThreadJoin.
func Run(ctx context.Context, workers, units int, fn func(unit int) error) error {
	if workers < 1 {
		workers = 1
	}
	if workers > units && units > 0 {
		workers = units
	}

	g, gctx := errgroup.WithContext(ctx)
	for t := 0; t < workers; t++ {
		t := t
		g.Go(func() error {
			for u := t; u < units; u += workers {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if err := fn(u); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errs.Wrap(errs.ThreadJoin, "worker goroutine failed", err)
	}
	return nil
}

// RunRow is Run specialised to the worker-agent's single-row pool: workers
// split a row's width-many columns by the same mod-partition rule.
func RunRow(ctx context.Context, workers, width int, fn func(col int) error) error {
	return Run(ctx, workers, width, fn)
}
