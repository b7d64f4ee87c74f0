package jumpflood

import (
	"context"
	"fmt"
	"math"
)

// validCoord reports whether a seed coordinate can be mapped onto the grid:
// finite and non-negative. NaN fails the comparison; +Inf needs an explicit
// check because casting it to an integer cell is undefined.
func validCoord(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// Compute maps points onto a square grid and returns, in row-major order
// (labels[x + y*reso]), the 1-based index of the seed nearest each cell, or
// 0 where no seed was reached.
//
// Configuration errors (empty point list, non-positive extent, negative or
// non-finite coordinates) are rejected before any kernel work begins. Kernel failures
// abort the run and return nil labels.
//
// Compute uses the process-default kernel (see RegisterKernel) unless
// overridden with WithKernel; without a registered kernel it runs on the
// CPU. See ComputeContext for cancellation.
func Compute(points [][2]float64, extent Extent, opts ...Option) ([]uint32, error) {
	return ComputeContext(context.Background(), points, extent, opts...)
}

// ComputeContext is Compute with a context. Cancellation is honored only at
// pass boundaries: a run is all-or-nothing, and a cancelled run returns no
// grid.
func ComputeContext(ctx context.Context, points [][2]float64, extent Extent, opts ...Option) ([]uint32, error) {
	o := defaultRunOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.reso < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidResolution, o.reso)
	}
	if len(points) == 0 {
		return nil, ErrNoSeeds
	}
	if !extent.Valid() {
		return nil, fmt.Errorf("%w: got %gx%g", ErrInvalidExtent, extent.Width, extent.Height)
	}
	for i, p := range points {
		if !validCoord(p[0]) || !validCoord(p[1]) {
			return nil, fmt.Errorf("%w: point %d at (%g, %g)", ErrSeedOutOfRange, i, p[0], p[1])
		}
	}

	seeds := MapSeeds(points, extent, o.reso)
	g := NewGrid(o.reso)
	g.MarkSeeds(seeds)

	k := o.kernel
	if k == nil {
		k = RegisteredKernel()
	}
	if k == nil {
		sk := NewSoftwareKernel(o.workers)
		defer sk.Close()
		k = sk
	}

	if err := NewScheduler(k).Run(ctx, g, seeds); err != nil {
		return nil, err
	}
	return g.labels, nil
}
