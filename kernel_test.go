package jumpflood

import "testing"

// swapKernel installs k as the registered kernel for the test's duration,
// bypassing RegisterKernel's Close of the previous one.
func swapKernel(t *testing.T, k Kernel) {
	t.Helper()
	kernelMu.Lock()
	prev := kernel
	kernel = k
	kernelMu.Unlock()
	t.Cleanup(func() {
		kernelMu.Lock()
		kernel = prev
		kernelMu.Unlock()
	})
}

func TestRegisterKernelNil(t *testing.T) {
	if err := RegisterKernel(nil); err == nil {
		t.Error("RegisterKernel(nil) succeeded, want error")
	}
}

func TestRegisterKernelReplacesAndCloses(t *testing.T) {
	swapKernel(t, nil)

	first := &recordKernel{}
	if err := RegisterKernel(first); err != nil {
		t.Fatalf("RegisterKernel: %v", err)
	}
	if RegisteredKernel() != first {
		t.Fatal("RegisteredKernel() did not return the registered kernel")
	}

	second := &recordKernel{}
	if err := RegisterKernel(second); err != nil {
		t.Fatalf("RegisterKernel: %v", err)
	}
	if !first.closed {
		t.Error("replacing a kernel did not Close the previous one")
	}
	if RegisteredKernel() != second {
		t.Error("RegisteredKernel() did not return the replacement kernel")
	}
}

// TestComputeUsesRegisteredKernel verifies Compute picks up the registered
// kernel when no WithKernel option is given.
func TestComputeUsesRegisteredKernel(t *testing.T) {
	rk := &recordKernel{}
	swapKernel(t, rk)

	if _, err := Compute([][2]float64{{0.5, 0.5}}, unitExtent, WithResolution(8)); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(rk.steps) == 0 {
		t.Error("registered kernel saw no passes")
	}
	if rk.closed {
		t.Error("Compute closed the registered kernel")
	}
}
