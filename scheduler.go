package jumpflood

import (
	"context"
	"fmt"
)

// Scheduler drives the multi-pass JFA propagation over a grid.
//
// For each step size in the schedule it publishes the current grid and step
// size to the kernel, invokes one full-grid pass, and blocks until the
// pass's complete output is back in the grid before issuing the next pass.
// No two passes are ever in flight concurrently; each pass's correctness
// depends on the complete, globally-consistent grid from the pass before it.
//
// A Scheduler is not safe for concurrent use: the grid is exclusively owned
// by the scheduler for the duration of a run.
type Scheduler struct {
	kernel Kernel
}

// NewScheduler creates a scheduler that dispatches passes to k.
func NewScheduler(k Kernel) *Scheduler {
	return &Scheduler{kernel: k}
}

// Run executes the full pass schedule over g. On return g holds the final
// label grid. Seeds must be the index-stable coordinate list g was marked
// with; it is published to the kernel once, before the first pass.
//
// Any kernel failure is fatal for the whole run: an incomplete pass cannot
// be distinguished from a complete-but-wrong one, so there is no retry and
// g's contents are unspecified after an error.
//
// ctx is checked only at the per-pass boundary, where no pass has partially
// mutated the grid; a cancelled run returns ctx's error.
func (s *Scheduler) Run(ctx context.Context, g *Grid, seeds []Seed) error {
	if err := s.kernel.Init(len(g.labels), len(seeds)); err != nil {
		return fmt.Errorf("%w: init %s: %w", ErrKernelUnavailable, s.kernel.Name(), err)
	}
	if err := s.kernel.WriteSeeds(seeds); err != nil {
		return fmt.Errorf("%w: write seeds: %w", ErrKernelUnavailable, err)
	}

	steps := Schedule(g.reso)
	Logger().Info("jumpflood: starting passes",
		"kernel", s.kernel.Name(),
		"reso", g.reso,
		"seeds", len(seeds),
		"passes", len(steps))

	for i, k := range steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Propagate is the single suspension point per pass: it returns
		// only once the kernel's full output for this pass is materialized
		// in g.labels.
		if err := s.kernel.Propagate(g.labels, k); err != nil {
			return fmt.Errorf("%w: pass %d/%d (k=%d): %w", ErrKernelFailed, i+1, len(steps), k, err)
		}
		Logger().Debug("jumpflood: pass complete", "pass", i+1, "k", k)
	}

	Logger().Info("jumpflood: done", "passes", len(steps))
	return nil
}
