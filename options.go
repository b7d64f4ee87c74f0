package jumpflood

// Option configures a run during creation.
// Use functional options to customize Compute behavior.
//
// Example:
//
//	// Default: 512x512 grid, registered or CPU kernel
//	labels, err := jumpflood.Compute(points, extent)
//
//	// Custom resolution and explicit kernel (dependency injection)
//	labels, err := jumpflood.Compute(points, extent,
//	    jumpflood.WithResolution(256),
//	    jumpflood.WithKernel(k))
type Option func(*runOptions)

// runOptions holds optional configuration for a run.
type runOptions struct {
	reso    int
	kernel  Kernel
	workers int
}

// defaultRunOptions returns the default run options.
func defaultRunOptions() runOptions {
	return runOptions{
		reso:    DefaultResolution,
		kernel:  nil, // Resolved to the registered kernel, or a CPU kernel.
		workers: 0,   // GOMAXPROCS.
	}
}

// WithResolution sets the grid side length. The step schedule reaches every
// cell when the resolution is a power of two; other values still run but
// distant cells may stay unlabeled.
func WithResolution(reso int) Option {
	return func(o *runOptions) {
		o.reso = reso
	}
}

// WithKernel sets the propagation kernel for this run, overriding the
// process-default registered kernel. Use this for dependency injection of
// GPU or custom kernels.
func WithKernel(k Kernel) Option {
	return func(o *runOptions) {
		o.kernel = k
	}
}

// WithWorkers sets the worker count for the CPU kernel. Zero or negative
// means GOMAXPROCS. Ignored when another kernel is in use.
func WithWorkers(n int) Option {
	return func(o *runOptions) {
		o.workers = n
	}
}
