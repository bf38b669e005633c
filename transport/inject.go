package transport

import (
	"math"

	"github.com/pthm-cable/fluence/mesh"
	"github.com/pthm-cable/fluence/particle"
	"github.com/pthm-cable/fluence/rng"
)

// SourceRegion is the axis-aligned emission region in mesh coordinates,
// already intersected with the local patch.
type SourceRegion struct {
	X0, Y0 float64
	W, H   float64
}

// LocalSource resolves fractional source bounds (fractions of the global
// mesh extents) against the local patch and apportions the global particle
// count by the covered source area, rounded to nearest.
func LocalSource(m *mesh.Mesh, fx, fy, fw, fh float64, totalParticles int) (SourceRegion, int) {
	srcX := fx * m.Width
	srcY := fy * m.Height
	srcW := fw * m.Width
	srcH := fh * m.Height

	patchX0 := m.EdgeX[mesh.Pad]
	patchY0 := m.EdgeY[mesh.Pad]
	patchX1 := m.EdgeX[mesh.Pad+m.NX]
	patchY1 := m.EdgeY[mesh.Pad+m.NY]

	x0 := math.Max(srcX, patchX0)
	y0 := math.Max(srcY, patchY0)
	w := math.Max(0, math.Min(srcX+srcW, patchX1)-x0)
	h := math.Max(0, math.Min(srcY+srcH, patchY1)-y0)

	n := 0
	if w > 0 && h > 0 {
		n = int(float64(totalParticles)*(w*h)/(srcW*srcH) + 0.5)
	}
	return SourceRegion{X0: x0, Y0: y0, W: w, H: h}, n
}

// Inject allocates a particle table and populates it with n particles drawn
// uniformly over the source region: uniform position, isotropic direction,
// mono-energetic at initialEnergy, unit weight, and a zero mean-free-path
// budget so the first sub-step resamples the collision distance. Returns the
// table and the bytes allocated for it.
//
// Placement draws from secondary key 0 and direction from secondary key 1,
// with the particle index as the counter; injection is deterministic for a
// given master key.
func Inject(m *mesh.Mesh, src SourceRegion, n int, initialEnergy float64,
	masterKey uint64) (*particle.Table, uint64) {

	t := particle.NewTable(n)

	for i := 0; i < n; i++ {
		u0, u1 := rng.Pair(masterKey, 0, uint64(i))
		x := src.X0 + u0*src.W
		y := src.Y0 + u1*src.H
		t.X[i] = x
		t.Y[i] = y

		// The mesh may be non-uniform, so locate the containing cell by
		// scanning the edge arrays.
		cellx := m.XOff
		for ii := 0; ii < m.NX; ii++ {
			if x >= m.EdgeX[ii+mesh.Pad] && x < m.EdgeX[ii+mesh.Pad+1] {
				cellx = m.XOff + ii
				break
			}
		}
		celly := m.YOff
		for jj := 0; jj < m.NY; jj++ {
			if y >= m.EdgeY[jj+mesh.Pad] && y < m.EdgeY[jj+mesh.Pad+1] {
				celly = m.YOff + jj
				break
			}
		}
		t.CellX[i] = int32(cellx)
		t.CellY[i] = int32(celly)

		u2, _ := rng.Pair(masterKey, 1, uint64(i))
		theta := 2.0 * math.Pi * u2
		t.OmegaX[i] = math.Cos(theta)
		t.OmegaY[i] = math.Sin(theta)

		t.Energy[i] = initialEnergy
		t.Weight[i] = 1.0
		t.DtToCensus[i] = m.Dt
		t.MfpToCollision[i] = 0.0
		t.Dead[i] = 0
		t.Key[i] = uint64(i)
	}

	return t, t.Bytes()
}
