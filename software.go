package jumpflood

import (
	"fmt"

	"github.com/gogpu/jumpflood/internal/parallel"
)

// SoftwareKernel is the CPU propagation kernel. It implements the Kernel
// contract in pure Go, fanning rows across a worker pool.
//
// Each pass double-buffers the grid: cells read only the previous pass's
// labels and write disjoint output cells, so row evaluation needs no
// locking.
type SoftwareKernel struct {
	workers int
	pool    *parallel.WorkerPool
	reso    int
	seeds   []Seed
	scratch []uint32
}

// NewSoftwareKernel creates a CPU kernel with the given worker count.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewSoftwareKernel(workers int) *SoftwareKernel {
	return &SoftwareKernel{
		workers: workers,
		pool:    parallel.NewWorkerPool(workers),
	}
}

// Name returns the kernel identifier.
func (sk *SoftwareKernel) Name() string { return "software" }

// Init sizes the kernel for a run. gridCells must be a perfect square.
// A closed kernel gets a fresh worker pool here, so Close then Init starts
// a clean run.
func (sk *SoftwareKernel) Init(gridCells, seedCount int) error {
	reso := isqrt(gridCells)
	if reso*reso != gridCells {
		return fmt.Errorf("grid of %d cells is not square", gridCells)
	}
	if !sk.pool.IsRunning() {
		sk.pool = parallel.NewWorkerPool(sk.workers)
	}
	sk.reso = reso
	if cap(sk.scratch) < gridCells {
		sk.scratch = make([]uint32, gridCells)
	} else {
		sk.scratch = sk.scratch[:gridCells]
	}
	sk.seeds = nil
	_ = seedCount // seed storage is allocated on WriteSeeds
	return nil
}

// WriteSeeds publishes the seed coordinate list for the run.
func (sk *SoftwareKernel) WriteSeeds(seeds []Seed) error {
	sk.seeds = make([]Seed, len(seeds))
	copy(sk.seeds, seeds)
	return nil
}

// Propagate runs one full-grid pass at step size k, mutating labels in
// place. The previous grid is snapshotted first, so every cell's new label
// depends only on the pre-call contents.
func (sk *SoftwareKernel) Propagate(labels []uint32, k uint32) error {
	if sk.reso == 0 {
		return fmt.Errorf("kernel not initialized")
	}
	if len(labels) != sk.reso*sk.reso {
		return fmt.Errorf("label buffer has %d cells, want %d", len(labels), sk.reso*sk.reso)
	}
	// A dead pool would drop every band and leave the grid stale; that must
	// be a fatal pass failure, never a silent no-op.
	if !sk.pool.IsRunning() {
		return fmt.Errorf("kernel closed")
	}

	src := sk.scratch
	copy(src, labels)

	// One band of rows per task, a few tasks per worker for balance.
	bands := sk.pool.Workers() * 4
	if bands > sk.reso {
		bands = sk.reso
	}
	rowsPerBand := (sk.reso + bands - 1) / bands

	tasks := make([]func(), 0, bands)
	for y0 := 0; y0 < sk.reso; y0 += rowsPerBand {
		y1 := y0 + rowsPerBand
		if y1 > sk.reso {
			y1 = sk.reso
		}
		band := [2]int{y0, y1}
		tasks = append(tasks, func() {
			for y := band[0]; y < band[1]; y++ {
				sk.propagateRow(src, labels, y, int(k))
			}
		})
	}
	sk.pool.ExecuteAll(tasks)
	return nil
}

// propagateRow recomputes row y of dst from the read-only snapshot src.
func (sk *SoftwareKernel) propagateRow(src, dst []uint32, y, k int) {
	reso := sk.reso
	for x := 0; x < reso; x++ {
		own := src[x+y*reso]
		best := own
		bestDist := int64(1) << 62
		if own != 0 {
			bestDist = sk.seedDist(own, x, y)
		}

		for dy := -k; dy <= k; dy += k {
			ny := y + dy
			if ny < 0 || ny >= reso {
				continue
			}
			for dx := -k; dx <= k; dx += k {
				if dx == 0 && dy == 0 {
					continue
				}
				nx := x + dx
				if nx < 0 || nx >= reso {
					continue
				}
				cand := src[nx+ny*reso]
				if cand == 0 || cand == best {
					continue
				}
				d := sk.seedDist(cand, x, y)
				// Ties favor the cell's own current label, then the
				// lowest seed index.
				if d < bestDist || (d == bestDist && best != own && cand < best) {
					best = cand
					bestDist = d
				}
			}
		}
		dst[x+y*reso] = best
	}
}

// seedDist returns the squared Euclidean distance from cell (x, y) to the
// seed behind the 1-based label.
func (sk *SoftwareKernel) seedDist(label uint32, x, y int) int64 {
	s := sk.seeds[label-1]
	dx := int64(x) - int64(s.X)
	dy := int64(y) - int64(s.Y)
	return dx*dx + dy*dy
}

// Close shuts down the worker pool. A subsequent Init recreates it.
func (sk *SoftwareKernel) Close() {
	sk.pool.Close()
}

// isqrt returns the integer square root of n.
func isqrt(n int) int {
	if n < 0 {
		return 0
	}
	r := 0
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
