package jumpflood

// Schedule returns the ordered step sizes for a run on a grid of side
// length reso: a leading step-1 pass, then k0, k0/2, k0/4, ..., 1 with
// k0 = max(1, reso/2).
//
// The leading step-1 pass tightens labels near seeds before the
// coarse-to-fine sweep begins. It deviates from the textbook coarsest-first
// schedule and is preserved exactly for output parity; removing it changes
// results near region boundaries.
//
// For reso=512 the schedule is [1, 256, 128, 64, 32, 16, 8, 4, 2, 1].
func Schedule(reso int) []uint32 {
	k0 := reso / 2
	if k0 < 1 {
		k0 = 1
	}
	steps := make([]uint32, 0, 2+log2(k0))
	steps = append(steps, 1)
	for k := k0; k >= 1; k /= 2 {
		steps = append(steps, uint32(k))
	}
	return steps
}

// log2 returns floor(log2(n)) for n >= 1.
func log2(n int) int {
	r := 0
	for n > 1 {
		n >>= 1
		r++
	}
	return r
}
