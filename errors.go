package jumpflood

import "errors"

// Configuration errors are rejected before any kernel work begins; kernel
// errors abort the whole run. A lost pass invalidates every pass after it,
// so there is no retry and no partial grid: failed runs return nil labels.
var (
	// ErrNoSeeds indicates an empty seed list. At least one seed is
	// required for a meaningful partition.
	ErrNoSeeds = errors.New("jumpflood: no seed points")

	// ErrInvalidExtent indicates a zero or negative extent dimension.
	ErrInvalidExtent = errors.New("jumpflood: extent dimensions must be positive")

	// ErrSeedOutOfRange indicates a seed coordinate outside [0, extent).
	// Negative and non-finite coordinates are rejected outright; finite
	// coordinates at or beyond the extent are clamped to the last grid
	// cell and do not error.
	ErrSeedOutOfRange = errors.New("jumpflood: seed coordinate out of range")

	// ErrInvalidResolution indicates a non-positive grid resolution.
	ErrInvalidResolution = errors.New("jumpflood: resolution must be positive")

	// ErrKernelUnavailable indicates the kernel could not be initialized
	// (no GPU device, allocation failure).
	ErrKernelUnavailable = errors.New("jumpflood: kernel unavailable")

	// ErrKernelFailed indicates a propagation pass failed (device loss,
	// synchronization timeout). The run is aborted; the grid contents are
	// unspecified.
	ErrKernelFailed = errors.New("jumpflood: kernel failed")
)
