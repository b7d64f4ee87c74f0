//go:build !nogpu

// Package gpu implements the JFA propagation kernel on wgpu/hal compute
// shaders. One compute dispatch covers one full-grid pass; the host blocks
// on a fence and reads the pass's complete output back through a staging
// buffer before returning, which gives the scheduler its full barrier.
package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/jumpflood"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

//go:embed shaders/jfa.wgsl
var jfaShaderSource string

const (
	// wgSide is the workgroup side length. Matches @workgroup_size in
	// jfa.wgsl.
	wgSide = 16

	// fenceTimeout is the maximum time to wait for one pass to complete.
	// A timed-out pass is fatal for the run.
	fenceTimeout = 5 * time.Second
)

// Kernel is the GPU propagation kernel. It implements jumpflood.Kernel.
//
// The device and pipeline are created lazily on first use and survive
// across runs; Init reallocates only the per-run buffers (grid in/out,
// seeds, staging).
type Kernel struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	// Per-run resources, owned between Init and the next Init/Close.
	paramsBuf  hal.Buffer
	srcBuf     hal.Buffer
	dstBuf     hal.Buffer
	seedsBuf   hal.Buffer
	stagingBuf hal.Buffer
	bindGroup  hal.BindGroup

	reso      uint32
	gridCells int
	seedCount int
	scratch   []byte

	gpuReady bool
}

// Interface compliance checks.
var _ jumpflood.Kernel = (*Kernel)(nil)
var _ jumpflood.LoggerAware = (*Kernel)(nil)

// New creates a GPU kernel. No GPU work happens until Available or Init.
func New() *Kernel { return &Kernel{} }

// Name returns the kernel identifier.
func (k *Kernel) Name() string { return "wgpu" }

// SetLogger sets the logger for the GPU kernel package.
// Called by jumpflood.SetLogger to propagate logging configuration.
func (k *Kernel) SetLogger(l *slog.Logger) { setLogger(l) }

// Available initializes the GPU device and pipeline if needed and reports
// whether compute is usable. Registration-time probe for the gpu facade.
func (k *Kernel) Available() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ensureDevice()
}

// ensureDevice creates the hal device and compute pipeline on first call.
// Callers must hold k.mu.
func (k *Kernel) ensureDevice() error {
	if k.gpuReady {
		return nil
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	k.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		k.instance = nil
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		k.instance = nil
		return fmt.Errorf("open device: %w", err)
	}
	k.device = openDev.Device
	k.queue = openDev.Queue

	if err := k.createPipeline(); err != nil {
		k.device.Destroy()
		k.device = nil
		k.queue = nil
		k.instance.Destroy()
		k.instance = nil
		return fmt.Errorf("create pipeline: %w", err)
	}

	k.gpuReady = true
	slogger().Info("jfa-gpu: device initialized", "adapter", selected.Info.Name)
	return nil
}

// createPipeline compiles the JFA shader and builds the compute pipeline.
// Bindings must match the @group(0) annotations in jfa.wgsl exactly:
//
//	@binding(0) uniform params
//	@binding(1) storage(read) grid_in
//	@binding(2) storage(read) seeds
//	@binding(3) storage(read_write) grid_out
func (k *Kernel) createPipeline() error {
	shader, err := k.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "jfa",
		Source: hal.ShaderSource{WGSL: jfaShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile jfa shader: %w", err)
	}
	k.shader = shader

	bindLayout, err := k.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "jfa_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	k.bindLayout = bindLayout

	pipeLayout, err := k.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "jfa_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{k.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	k.pipeLayout = pipeLayout

	pipeline, err := k.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "jfa_pipeline", Layout: k.pipeLayout,
		Compute: hal.ComputeState{Module: k.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	k.pipeline = pipeline

	return nil
}

// Init allocates GPU buffers sized for the run's grid and seed list.
// gridCells must be a perfect square.
func (k *Kernel) Init(gridCells, seedCount int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.ensureDevice(); err != nil {
		return err
	}

	reso := 0
	for (reso+1)*(reso+1) <= gridCells {
		reso++
	}
	if reso*reso != gridCells {
		return fmt.Errorf("grid of %d cells is not square", gridCells)
	}

	k.destroyRunResources()

	gridBytes := uint64(gridCells) * 4
	seedBytes := uint64(seedCount) * 8 // vec2<u32> per seed
	if seedBytes < 8 {
		seedBytes = 8
	}

	type bufSpec struct {
		target *hal.Buffer
		label  string
		size   uint64
		usage  gputypes.BufferUsage
	}
	specs := []bufSpec{
		{&k.paramsBuf, "jfa_params", 16, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&k.srcBuf, "jfa_grid_in", gridBytes, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&k.dstBuf, "jfa_grid_out", gridBytes, gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&k.seedsBuf, "jfa_seeds", seedBytes, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&k.stagingBuf, "jfa_staging", gridBytes, gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}
	for _, s := range specs {
		buf, err := k.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label, Size: s.size, Usage: s.usage,
		})
		if err != nil {
			k.destroyRunResources()
			return fmt.Errorf("create %s buffer: %w", s.label, err)
		}
		*s.target = buf
	}

	bg, err := k.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "jfa_bind", Layout: k.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: k.paramsBuf.NativeHandle(), Offset: 0, Size: 0}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: k.srcBuf.NativeHandle(), Offset: 0, Size: 0}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: k.seedsBuf.NativeHandle(), Offset: 0, Size: 0}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: k.dstBuf.NativeHandle(), Offset: 0, Size: 0}},
		},
	})
	if err != nil {
		k.destroyRunResources()
		return fmt.Errorf("create bind group: %w", err)
	}
	k.bindGroup = bg

	k.reso = uint32(reso)
	k.gridCells = gridCells
	k.seedCount = seedCount
	if cap(k.scratch) < int(gridBytes) {
		k.scratch = make([]byte, gridBytes)
	} else {
		k.scratch = k.scratch[:gridBytes]
	}

	slogger().Debug("jfa-gpu: buffers allocated",
		"reso", reso, "seeds", seedCount, "grid_bytes", gridBytes)
	return nil
}

// WriteSeeds uploads the seed coordinate list. Called once per run; the
// seed buffer is never re-transmitted across passes.
func (k *Kernel) WriteSeeds(seeds []jumpflood.Seed) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.seedsBuf == nil {
		return fmt.Errorf("kernel not initialized")
	}
	if len(seeds) != k.seedCount {
		return fmt.Errorf("got %d seeds, Init sized for %d", len(seeds), k.seedCount)
	}

	data := make([]byte, len(seeds)*8)
	for i, s := range seeds {
		binary.LittleEndian.PutUint32(data[i*8:], s.X)
		binary.LittleEndian.PutUint32(data[i*8+4:], s.Y)
	}
	k.queue.WriteBuffer(k.seedsBuf, 0, data)
	return nil
}

// Propagate runs one full-grid pass at the given step size: upload the
// grid and step, dispatch the kernel over every cell, copy the output to
// the staging buffer, and block on a fence until the complete result is
// read back into labels.
func (k *Kernel) Propagate(labels []uint32, step uint32) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.bindGroup == nil {
		return fmt.Errorf("kernel not initialized")
	}
	if len(labels) != k.gridCells {
		return fmt.Errorf("label buffer has %d cells, want %d", len(labels), k.gridCells)
	}

	// Publish the current grid and step size.
	for i, v := range labels {
		binary.LittleEndian.PutUint32(k.scratch[i*4:], v)
	}
	k.queue.WriteBuffer(k.srcBuf, 0, k.scratch)

	var params [16]byte
	binary.LittleEndian.PutUint32(params[0:], k.reso)
	binary.LittleEndian.PutUint32(params[4:], step)
	binary.LittleEndian.PutUint32(params[8:], uint32(k.seedCount))
	k.queue.WriteBuffer(k.paramsBuf, 0, params[:])

	if err := k.encodeAndWait(step); err != nil {
		return err
	}

	// Retrieve the pass's complete output before returning: the scheduler
	// treats this return as the inter-pass barrier.
	if err := k.queue.ReadBuffer(k.stagingBuf, 0, k.scratch); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	for i := range labels {
		labels[i] = binary.LittleEndian.Uint32(k.scratch[i*4:])
	}
	return nil
}

// encodeAndWait records the compute pass and staging copy, submits, and
// blocks until the GPU signals the fence.
func (k *Kernel) encodeAndWait(step uint32) error {
	encoder, err := k.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "jfa_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("jfa_pass"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	wg := (k.reso + wgSide - 1) / wgSide
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "jfa_pass"})
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, k.bindGroup, nil)
	pass.Dispatch(wg, wg, 1)
	pass.End()

	encoder.CopyBufferToBuffer(k.dstBuf, k.stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: uint64(k.gridCells) * 4},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer k.device.FreeCommandBuffer(cmdBuf)

	fence, err := k.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer k.device.DestroyFence(fence)

	if err := k.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := k.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("GPU timeout after %v (pass k=%d)", fenceTimeout, step)
	}
	return nil
}

// destroyRunResources releases per-run buffers and the bind group.
// Callers must hold k.mu.
func (k *Kernel) destroyRunResources() {
	if k.device == nil {
		return
	}
	if k.bindGroup != nil {
		k.device.DestroyBindGroup(k.bindGroup)
		k.bindGroup = nil
	}
	destroyBuf := func(b *hal.Buffer) {
		if *b != nil {
			k.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	destroyBuf(&k.paramsBuf)
	destroyBuf(&k.srcBuf)
	destroyBuf(&k.dstBuf)
	destroyBuf(&k.seedsBuf)
	destroyBuf(&k.stagingBuf)
}

// Close releases all GPU resources. The kernel may be re-initialized with
// Init afterwards; the device is recreated on demand.
func (k *Kernel) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.destroyRunResources()

	if k.device != nil {
		if k.pipeline != nil {
			k.device.DestroyComputePipeline(k.pipeline)
			k.pipeline = nil
		}
		if k.pipeLayout != nil {
			k.device.DestroyPipelineLayout(k.pipeLayout)
			k.pipeLayout = nil
		}
		if k.bindLayout != nil {
			k.device.DestroyBindGroupLayout(k.bindLayout)
			k.bindLayout = nil
		}
		if k.shader != nil {
			k.device.DestroyShaderModule(k.shader)
			k.shader = nil
		}
		k.device.Destroy()
		k.device = nil
	}
	if k.instance != nil {
		k.instance.Destroy()
		k.instance = nil
	}
	k.queue = nil
	k.gpuReady = false
}
