package jumpflood

import (
	"errors"
	"sync"
)

// Kernel is the per-pixel propagation backend driven by the scheduler.
//
// A kernel recomputes every cell's label once per pass: it compares the
// cell's currently-assigned seed distance against the labels of the 8
// neighbor cells offset by ±k in each axis (out-of-bounds offsets skipped),
// keeping whichever candidate's seed is geometrically nearest by squared
// Euclidean distance. Ties are broken in favor of the cell's own current
// label, then by lowest seed index. Cells with no non-zero candidate stay 0.
//
// Every cell's new label depends only on the previous pass's grid, never on
// other cells' results from the same pass, so intra-pass evaluation order is
// irrelevant and fully parallelizable.
//
// Implementations are provided by backend packages (CPU: SoftwareKernel,
// GPU: jumpflood/gpu via blank import).
type Kernel interface {
	// Name returns the kernel name (e.g., "software", "wgpu").
	Name() string

	// Init allocates kernel-side storage sized for the grid and the seed
	// coordinate list. Called once per run, before WriteSeeds.
	Init(gridCells, seedCount int) error

	// WriteSeeds publishes the seed coordinate list. Called once per run,
	// after Init and before the first Propagate; the list never changes
	// across passes.
	WriteSeeds(seeds []Seed) error

	// Propagate runs one full-grid pass at step size k over labels,
	// mutating labels in place. Propagate must not return until the pass's
	// complete output is materialized in labels: the scheduler treats the
	// return as a full barrier. Every cell's new value must be derived
	// from the pre-call contents only.
	Propagate(labels []uint32, k uint32) error

	// Close releases kernel resources. The kernel may be re-initialized
	// with Init for a subsequent run.
	Close()
}

var (
	kernelMu sync.RWMutex
	kernel   Kernel
)

// RegisterKernel registers a process-default kernel used by Compute when no
// WithKernel option is given. Only one kernel can be registered; subsequent
// calls replace (and Close) the previous one.
//
// Typical usage via blank import in backend packages:
//
//	func init() {
//	    jumpflood.RegisterKernel(gpuimpl.New())
//	}
func RegisterKernel(k Kernel) error {
	if k == nil {
		return errors.New("jumpflood: kernel must not be nil")
	}
	kernelMu.Lock()
	old := kernel
	kernel = k
	kernelMu.Unlock()
	if old != nil {
		old.Close()
	}
	if la, ok := k.(LoggerAware); ok {
		la.SetLogger(Logger())
	}
	return nil
}

// RegisteredKernel returns the currently registered kernel, or nil if none.
func RegisteredKernel() Kernel {
	kernelMu.RLock()
	defer kernelMu.RUnlock()
	return kernel
}
