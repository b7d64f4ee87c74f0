package jumpflood

import (
	"reflect"
	"testing"
)

// newTestKernel returns a single-worker CPU kernel initialized for a
// reso x reso grid with the given seeds, cleaned up with the test.
func newTestKernel(t *testing.T, reso int, seeds []Seed) *SoftwareKernel {
	t.Helper()
	sk := NewSoftwareKernel(1)
	t.Cleanup(sk.Close)
	if err := sk.Init(reso*reso, len(seeds)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := sk.WriteSeeds(seeds); err != nil {
		t.Fatalf("WriteSeeds: %v", err)
	}
	return sk
}

func TestSoftwareKernelName(t *testing.T) {
	sk := NewSoftwareKernel(1)
	defer sk.Close()
	if got := sk.Name(); got != "software" {
		t.Errorf("Name() = %q, want %q", got, "software")
	}
}

func TestSoftwareKernelInitNonSquare(t *testing.T) {
	sk := NewSoftwareKernel(1)
	defer sk.Close()
	if err := sk.Init(12, 1); err == nil {
		t.Error("Init(12, 1) succeeded, want non-square grid error")
	}
}

func TestSoftwareKernelPropagateBeforeInit(t *testing.T) {
	sk := NewSoftwareKernel(1)
	defer sk.Close()
	if err := sk.Propagate(make([]uint32, 16), 1); err == nil {
		t.Error("Propagate before Init succeeded, want error")
	}
}

func TestSoftwareKernelPropagateWrongSize(t *testing.T) {
	sk := newTestKernel(t, 4, []Seed{{0, 0}})
	if err := sk.Propagate(make([]uint32, 9), 1); err == nil {
		t.Error("Propagate with mismatched labels succeeded, want error")
	}
}

// TestPropagateSingleStep checks one k=1 pass: labels reach only the 8
// neighbors of assigned cells, and everything further stays unassigned.
func TestPropagateSingleStep(t *testing.T) {
	seeds := []Seed{{0, 0}}
	sk := newTestKernel(t, 4, seeds)

	g := NewGrid(4)
	g.MarkSeeds(seeds)
	if err := sk.Propagate(g.Labels(), 1); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	want := []uint32{
		1, 1, 0, 0,
		1, 1, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}
	if !reflect.DeepEqual(g.Labels(), want) {
		t.Errorf("after one k=1 pass:\ngot  %v\nwant %v", g.Labels(), want)
	}
}

// TestPropagateNoChaining verifies each cell reads only the previous pass's
// grid: a label must not travel more than one step per k=1 pass even though
// intermediate cells get labeled during the same pass.
func TestPropagateNoChaining(t *testing.T) {
	seeds := []Seed{{0, 0}}
	sk := newTestKernel(t, 8, seeds)

	g := NewGrid(8)
	g.MarkSeeds(seeds)
	if err := sk.Propagate(g.Labels(), 1); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	if got := g.At(1, 1); got != 1 {
		t.Errorf("At(1,1) = %d, want 1", got)
	}
	if got := g.At(2, 2); got != 0 {
		t.Errorf("At(2,2) = %d after one pass, want 0 (no intra-pass chaining)", got)
	}
}

// TestPropagateLargeStep checks a k=2 pass reaches cells two away while
// skipping the cells in between.
func TestPropagateLargeStep(t *testing.T) {
	seeds := []Seed{{0, 0}}
	sk := newTestKernel(t, 8, seeds)

	g := NewGrid(8)
	g.MarkSeeds(seeds)
	if err := sk.Propagate(g.Labels(), 2); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	if got := g.At(2, 2); got != 1 {
		t.Errorf("At(2,2) = %d after k=2 pass, want 1", got)
	}
	if got := g.At(1, 1); got != 0 {
		t.Errorf("At(1,1) = %d after k=2 pass, want 0 (±2 offsets only)", got)
	}
}

// TestPropagateTieLowestIndex verifies an unassigned cell equidistant from
// two labeled cells takes the lower seed index.
func TestPropagateTieLowestIndex(t *testing.T) {
	seeds := []Seed{{0, 1}, {2, 1}}
	sk := newTestKernel(t, 3, seeds)

	g := NewGrid(3)
	g.MarkSeeds(seeds)
	if err := sk.Propagate(g.Labels(), 1); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	// (1,1) is at distance 1 from both seeds.
	if got := g.At(1, 1); got != 1 {
		t.Errorf("At(1,1) = %d on tie, want 1 (lowest seed index)", got)
	}
}

// TestPropagateTieKeepsOwnLabel verifies a cell already holding a label
// keeps it against an equally-near competitor, even a lower-indexed one.
func TestPropagateTieKeepsOwnLabel(t *testing.T) {
	seeds := []Seed{{0, 1}, {2, 1}}
	sk := newTestKernel(t, 3, seeds)

	g := NewGrid(3)
	g.MarkSeeds(seeds)
	g.Labels()[1+1*3] = 2 // (1,1) assigned to seed 2, distance 1

	if err := sk.Propagate(g.Labels(), 1); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	// Seed 1 is also at distance 1 but must not displace the current label.
	if got := g.At(1, 1); got != 2 {
		t.Errorf("At(1,1) = %d on tie, want 2 (own label retained)", got)
	}
}

// TestPropagateNearerWins verifies a strictly nearer seed displaces the
// cell's current label regardless of index order.
func TestPropagateNearerWins(t *testing.T) {
	seeds := []Seed{{0, 0}, {3, 1}}
	sk := newTestKernel(t, 4, seeds)

	g := NewGrid(4)
	g.MarkSeeds(seeds)
	g.Labels()[2+1*4] = 1 // (2,1): distance 5 to seed 1, 1 to seed 2

	if err := sk.Propagate(g.Labels(), 1); err != nil {
		t.Fatalf("Propagate: %v", err)
	}

	if got := g.At(2, 1); got != 2 {
		t.Errorf("At(2,1) = %d, want 2 (nearer seed wins)", got)
	}
}

// TestPropagateSeedCellsStable verifies seed home cells never lose their
// own label: distance zero beats every competitor.
func TestPropagateSeedCellsStable(t *testing.T) {
	seeds := []Seed{{1, 1}, {2, 1}}
	sk := newTestKernel(t, 4, seeds)

	g := NewGrid(4)
	g.MarkSeeds(seeds)
	for _, k := range Schedule(4) {
		if err := sk.Propagate(g.Labels(), k); err != nil {
			t.Fatalf("Propagate(k=%d): %v", k, err)
		}
	}

	if got := g.At(1, 1); got != 1 {
		t.Errorf("seed 1 home cell = %d, want 1", got)
	}
	if got := g.At(2, 1); got != 2 {
		t.Errorf("seed 2 home cell = %d, want 2", got)
	}
}

// TestPropagateMatchesSingleWorker verifies worker parallelism does not
// change results.
func TestPropagateMatchesSingleWorker(t *testing.T) {
	seeds := []Seed{{3, 5}, {28, 2}, {17, 30}, {9, 9}}

	run := func(workers int) []uint32 {
		sk := NewSoftwareKernel(workers)
		defer sk.Close()
		if err := sk.Init(32*32, len(seeds)); err != nil {
			t.Fatalf("Init: %v", err)
		}
		if err := sk.WriteSeeds(seeds); err != nil {
			t.Fatalf("WriteSeeds: %v", err)
		}
		g := NewGrid(32)
		g.MarkSeeds(seeds)
		for _, k := range Schedule(32) {
			if err := sk.Propagate(g.Labels(), k); err != nil {
				t.Fatalf("Propagate(k=%d): %v", k, err)
			}
		}
		return g.Labels()
	}

	serial := run(1)
	parallel := run(8)
	if !reflect.DeepEqual(serial, parallel) {
		t.Error("parallel run differs from single-worker run")
	}
}

// TestKernelReuseAfterClose verifies Close then Init starts a working run:
// the recreated pool must actually execute passes, not drop them.
func TestKernelReuseAfterClose(t *testing.T) {
	seeds := []Seed{{0, 0}}
	sk := NewSoftwareKernel(1)
	sk.Close()
	t.Cleanup(sk.Close)

	if err := sk.Init(16, len(seeds)); err != nil {
		t.Fatalf("Init after Close: %v", err)
	}
	if err := sk.WriteSeeds(seeds); err != nil {
		t.Fatalf("WriteSeeds: %v", err)
	}

	g := NewGrid(4)
	g.MarkSeeds(seeds)
	for _, k := range Schedule(4) {
		if err := sk.Propagate(g.Labels(), k); err != nil {
			t.Fatalf("Propagate(k=%d): %v", k, err)
		}
	}

	for i, v := range g.Labels() {
		if v != 1 {
			t.Fatalf("cell %d = %d after reuse, want 1 (pass did not run)", i, v)
		}
	}
}

// TestPropagateAfterCloseFails verifies a closed kernel refuses passes
// instead of silently leaving the grid stale.
func TestPropagateAfterCloseFails(t *testing.T) {
	seeds := []Seed{{0, 0}}
	sk := newTestKernel(t, 4, seeds)
	sk.Close()

	g := NewGrid(4)
	g.MarkSeeds(seeds)
	if err := sk.Propagate(g.Labels(), 1); err == nil {
		t.Error("Propagate on a closed kernel succeeded, want error")
	}
}

// TestPropagateFixedPoint verifies an extra k=1 pass after the full
// schedule changes nothing: the converged grid is a fixed point.
func TestPropagateFixedPoint(t *testing.T) {
	seeds := []Seed{{2, 3}, {13, 5}, {7, 12}}
	sk := newTestKernel(t, 16, seeds)

	g := NewGrid(16)
	g.MarkSeeds(seeds)
	for _, k := range Schedule(16) {
		if err := sk.Propagate(g.Labels(), k); err != nil {
			t.Fatalf("Propagate(k=%d): %v", k, err)
		}
	}

	converged := append([]uint32(nil), g.Labels()...)
	if err := sk.Propagate(g.Labels(), 1); err != nil {
		t.Fatalf("extra Propagate: %v", err)
	}
	if !reflect.DeepEqual(g.Labels(), converged) {
		t.Error("extra k=1 pass changed a converged grid")
	}
}

func TestIsqrt(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 0}, {1, 1}, {3, 1}, {4, 2}, {15, 3}, {16, 4}, {17, 4},
		{512 * 512, 512},
	}
	for _, tt := range tests {
		if got := isqrt(tt.n); got != tt.want {
			t.Errorf("isqrt(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
