// Package jumpflood computes approximate discrete Voronoi partitions on a
// square grid using the Jump Flooding Algorithm (JFA).
//
// # Overview
//
// Given a sparse set of seed points inside a user-declared extent, jumpflood
// produces, for each cell of a fixed-resolution grid, the 1-based index of
// the nearest seed (0 for unreached cells). JFA is an iterative, massively
// parallel propagation scheme that converges in a logarithmic number of
// full-grid passes rather than the linear count a naive flood fill needs.
// The result is an approximation: known failure modes near diagonal region
// boundaries are accepted, not corrected.
//
// # Quick Start
//
//	import "github.com/gogpu/jumpflood"
//
//	points := [][2]float64{{10, 20}, {90, 40}, {50, 80}}
//	labels, err := jumpflood.Compute(points, jumpflood.Extent{Width: 100, Height: 100})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// labels[x + y*512] is the 1-based seed index nearest cell (x, y).
//
// # Kernels
//
// The per-cell propagation work runs through a [Kernel]. By default a pure
// Go kernel evaluates cells in parallel across CPU workers. Importing the
// gpu subpackage registers a wgpu compute kernel instead, with transparent
// fallback to the CPU kernel when no GPU device is available:
//
//	import _ "github.com/gogpu/jumpflood/gpu" // enable GPU propagation
//
// # Architecture
//
// The library is organized into:
//   - Public API: Compute, Grid, Scheduler, Kernel, Schedule
//   - CPU kernel: software.go, parallelized via internal/parallel
//   - GPU kernel: internal/gpu (wgpu/hal compute), registered by gpu/
//
// The scheduler drives one propagation pass per step size and blocks until
// each pass's full output is materialized before issuing the next. This
// full-barrier discipline is the correctness core of JFA: a pass that reads
// a partially-updated grid silently corrupts the result.
//
// # Coordinate System
//
// Grid origin (0,0) is the cell containing the extent's origin corner; X
// increases with extent width, Y with extent height. The final label slice
// is row-major, addressable as labels[x + y*reso].
package jumpflood

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
