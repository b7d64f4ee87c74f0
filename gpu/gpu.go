//go:build !nogpu

// Package gpu registers the wgpu propagation kernel for
// hardware-accelerated jump flooding.
//
// Import this package to run propagation passes as wgpu/hal compute
// dispatches instead of on the CPU. The kernel probes for a usable
// device at import time.
//
// If GPU initialization fails (no Vulkan available), the registration
// is silently skipped and computation falls back to the software kernel.
//
// Usage:
//
//	import _ "github.com/gogpu/jumpflood/gpu" // enable GPU propagation
package gpu

import (
	"github.com/gogpu/jumpflood"
	gpuimpl "github.com/gogpu/jumpflood/internal/gpu"
)

func init() {
	kernel := gpuimpl.New()
	if err := kernel.Available(); err != nil {
		jumpflood.Logger().Warn("GPU kernel not available", "err", err)
		kernel.Close()
		return
	}
	jumpflood.RegisterKernel(kernel)
}
