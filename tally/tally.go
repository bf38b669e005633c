// Package tally accumulates per-cell energy deposition. The grid is the only
// state shared between transport workers, so all writes go through a
// lock-free atomic add on the float64 bit pattern.
package tally

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Grid is an NX x NY array of deposited energy, row-major, initially zero.
type Grid struct {
	nx, ny int
	cells  []float64
}

// New returns a zeroed nx x ny grid.
func New(nx, ny int) *Grid {
	return &Grid{nx: nx, ny: ny, cells: make([]float64, nx*ny)}
}

// NX returns the grid width in cells.
func (g *Grid) NX() int { return g.nx }

// NY returns the grid height in cells.
func (g *Grid) NY() int { return g.ny }

// Add atomically accumulates dep into the cell at local indices
// (cellx, celly). Safe for concurrent use from any number of workers; the
// increment is applied with a compare-and-swap loop over the float64 bits.
func (g *Grid) Add(cellx, celly int, dep float64) {
	addr := (*uint64)(unsafe.Pointer(&g.cells[celly*g.nx+cellx]))
	for {
		old := atomic.LoadUint64(addr)
		upd := math.Float64bits(math.Float64frombits(old) + dep)
		if atomic.CompareAndSwapUint64(addr, old, upd) {
			return
		}
	}
}

// At reads a single cell. Not synchronised; call between timesteps.
func (g *Grid) At(cellx, celly int) float64 {
	return g.cells[celly*g.nx+cellx]
}

// Cells exposes the backing array for reductions. Read-only between
// timesteps.
func (g *Grid) Cells() []float64 { return g.cells }

// Reset zeroes every cell.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}
