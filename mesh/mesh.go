// Package mesh holds the rectilinear spatial mesh: cell-edge coordinates,
// per-cell mass density, and the ray/facet geometry the transport kernel
// streams against. The mesh is read-only during transport.
package mesh

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Pad is the number of ghost cell layers on each side of the local patch.
const Pad = 2

// Mesh describes the local patch of the global mesh. For a single rank the
// local patch covers the whole problem and the offsets are zero.
type Mesh struct {
	GlobalNX, GlobalNY int
	NX, NY             int
	XOff, YOff         int
	Width, Height      float64
	Dt                 float64

	// Cell-edge coordinates including ghost layers; EdgeX[Pad] is the left
	// edge of the first interior cell. Strictly monotonic, non-uniform
	// permitted.
	EdgeX, EdgeY []float64

	// Mass density per cell over the padded patch, row-major with stride
	// NX + 2*Pad.
	Density []float64
}

// NewUniform builds a single-rank mesh with uniform cell spacing over a
// width x height domain.
func NewUniform(nx, ny int, width, height, dt float64) *Mesh {
	m := &Mesh{
		GlobalNX: nx,
		GlobalNY: ny,
		NX:       nx,
		NY:       ny,
		Width:    width,
		Height:   height,
		Dt:       dt,
		EdgeX:    make([]float64, nx+2*Pad+1),
		EdgeY:    make([]float64, ny+2*Pad+1),
		Density:  make([]float64, (nx+2*Pad)*(ny+2*Pad)),
	}

	dx := width / float64(nx)
	dy := height / float64(ny)
	for i := range m.EdgeX {
		m.EdgeX[i] = float64(i-Pad) * dx
	}
	for j := range m.EdgeY {
		m.EdgeY[j] = float64(j-Pad) * dy
	}
	return m
}

// Stride returns the row stride of the padded density array.
func (m *Mesh) Stride() int { return m.NX + 2*Pad }

// LocalCellX converts a global x cell index to a padded local index.
func (m *Mesh) LocalCellX(cellx int) int { return cellx - m.XOff + Pad }

// LocalCellY converts a global y cell index to a padded local index.
func (m *Mesh) LocalCellY(celly int) int { return celly - m.YOff + Pad }

// DensityAt returns the mass density of the cell with global indices
// (cellx, celly).
func (m *Mesh) DensityAt(cellx, celly int) float64 {
	return m.Density[m.LocalCellY(celly)*m.Stride()+m.LocalCellX(cellx)]
}

// SetDensityAt writes the density of a global cell, ghost layers excluded.
func (m *Mesh) SetDensityAt(cellx, celly int, rho float64) {
	m.Density[m.LocalCellY(celly)*m.Stride()+m.LocalCellX(cellx)] = rho
}

// FillUniformDensity sets every cell, ghosts included, to rho.
func (m *Mesh) FillUniformDensity(rho float64) {
	for i := range m.Density {
		m.Density[i] = rho
	}
}

// FillSplitDensity assigns rhoLeft to cells in the left half of the domain
// (by global x index) and rhoRight to the rest. Ghost cells take the value
// of the nearest interior column.
func (m *Mesh) FillSplitDensity(rhoLeft, rhoRight float64) {
	half := m.GlobalNX / 2
	stride := m.Stride()
	for ly := 0; ly < m.NY+2*Pad; ly++ {
		for lx := 0; lx < m.NX+2*Pad; lx++ {
			gx := clamp(lx-Pad, 0, m.NX-1) + m.XOff
			rho := rhoLeft
			if gx >= half {
				rho = rhoRight
			}
			m.Density[ly*stride+lx] = rho
		}
	}
}

// FillNoiseDensity modulates a base density with smooth opensimplex noise:
// rho = base * (1 + amplitude * noise(scale*x, scale*y)), floored at a tenth
// of the base so the density stays positive.
func (m *Mesh) FillNoiseDensity(base, amplitude, scale float64, seed int64) {
	noise := opensimplex.New(seed)
	stride := m.Stride()
	for ly := 0; ly < m.NY+2*Pad; ly++ {
		for lx := 0; lx < m.NX+2*Pad; lx++ {
			gx := clamp(lx-Pad, 0, m.NX-1) + m.XOff
			gy := clamp(ly-Pad, 0, m.NY-1) + m.YOff

			// Sample at the cell centre.
			cx := 0.5 * (m.EdgeX[gx-m.XOff+Pad] + m.EdgeX[gx-m.XOff+Pad+1])
			cy := 0.5 * (m.EdgeY[gy-m.YOff+Pad] + m.EdgeY[gy-m.YOff+Pad+1])

			rho := base * (1 + amplitude*noise.Eval2(scale*cx, scale*cy))
			if rho < 0.1*base {
				rho = 0.1 * base
			}
			m.Density[ly*stride+lx] = rho
		}
	}
}

// Validate checks the structural invariants: monotone edges and positive
// interior densities.
func (m *Mesh) Validate() error {
	for i := 1; i < len(m.EdgeX); i++ {
		if m.EdgeX[i] <= m.EdgeX[i-1] {
			return fmt.Errorf("mesh: edgex not strictly increasing at %d", i)
		}
	}
	for j := 1; j < len(m.EdgeY); j++ {
		if m.EdgeY[j] <= m.EdgeY[j-1] {
			return fmt.Errorf("mesh: edgey not strictly increasing at %d", j)
		}
	}
	for cy := 0; cy < m.NY; cy++ {
		for cx := 0; cx < m.NX; cx++ {
			if rho := m.DensityAt(cx+m.XOff, cy+m.YOff); rho <= 0 {
				return fmt.Errorf("mesh: non-positive density at cell (%d,%d)", cx, cy)
			}
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
