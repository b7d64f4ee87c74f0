package jumpflood

// DefaultResolution is the grid side length used when no WithResolution
// option is given. Powers of two let the step schedule cover the whole grid.
const DefaultResolution = 512

// Extent is the user-space rectangle that maps onto the grid. Both
// dimensions must be positive.
type Extent struct {
	Width  float64
	Height float64
}

// Valid reports whether both extent dimensions are positive.
func (e Extent) Valid() bool { return e.Width > 0 && e.Height > 0 }

// Seed is a seed point's integer grid coordinate. Seeds are index-stable:
// seed i keeps the same coordinate for the lifetime of a run.
type Seed struct {
	X uint32
	Y uint32
}

// Grid is a square label grid of side length reso. Cell value 0 means
// unassigned; value i (i >= 1) means the nearest known seed is seed i-1.
//
// A Grid is exclusively owned by the scheduler during a run: kernels receive
// its label buffer per pass and must have fully materialized their output
// before the scheduler reads it again.
type Grid struct {
	reso   int
	labels []uint32
}

// NewGrid allocates an all-zero grid with side length reso.
func NewGrid(reso int) *Grid {
	return &Grid{
		reso:   reso,
		labels: make([]uint32, reso*reso),
	}
}

// Reso returns the grid side length.
func (g *Grid) Reso() int { return g.reso }

// Labels returns the backing label buffer in row-major order, addressable
// as Labels()[x + y*Reso()].
func (g *Grid) Labels() []uint32 { return g.labels }

// At returns the label of cell (x, y).
func (g *Grid) At(x, y int) uint32 { return g.labels[x+y*g.reso] }

// MarkSeeds writes each seed's 1-based index into its home cell. When two
// seeds map to the same cell the later seed wins; this last-write-wins
// collision policy is a deliberate tie-break, not an error.
func (g *Grid) MarkSeeds(seeds []Seed) {
	for i, s := range seeds {
		g.labels[int(s.X)+int(s.Y)*g.reso] = uint32(i + 1)
	}
}

// MapSeeds maps user-space points onto integer grid coordinates:
//
//	x = floor(px * reso / extent.Width)
//	y = floor(py * reso / extent.Height)
//
// each independently clamped to at most reso-1. No lower clamp is applied:
// negative inputs are a precondition violation with implementation-defined
// results. Compute rejects them before reaching here; callers using MapSeeds
// directly must do the same.
//
// MapSeeds is a pure function of its inputs.
func MapSeeds(points [][2]float64, extent Extent, reso int) []Seed {
	seeds := make([]Seed, len(points))
	max := float64(reso - 1)
	for i, p := range points {
		x := p[0] * float64(reso) / extent.Width
		y := p[1] * float64(reso) / extent.Height
		if x > max {
			x = max
		}
		if y > max {
			y = max
		}
		seeds[i] = Seed{X: uint32(x), Y: uint32(y)}
	}
	return seeds
}
