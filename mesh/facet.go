package mesh

// OpenBoundCorrection nudges the lower cell edge outward so a particle
// leaving through the closed-open boundary strictly exits its cell.
const OpenBoundCorrection = 1.0e-14

// FacetResult reports the next cell-boundary crossing along a ray.
type FacetResult struct {
	Distance float64
	XFacet   bool
}

// DistanceToFacet computes the distance from (x, y) travelling along the
// direction cosines (omegaX, omegaY) at the given speed to the first facet
// of the cell with global indices (cellx, celly).
//
// The lower edges are open bounds, so their coordinate is pulled back by
// OpenBoundCorrection; a particle strictly inside its cell with a non-zero
// matching velocity component always gets a strictly positive distance.
// Zero direction components produce signed-infinite crossing times through
// IEEE division, which lose the min comparison as intended.
func (m *Mesh) DistanceToFacet(x, y, omegaX, omegaY, speed float64, cellx, celly int) FacetResult {
	lx := m.LocalCellX(cellx)
	ly := m.LocalCellY(celly)

	uxInv := 1.0 / (omegaX * speed)
	uyInv := 1.0 / (omegaY * speed)

	var dtX, dtY float64
	if omegaX >= 0.0 {
		dtX = (m.EdgeX[lx+1] - x) * uxInv
	} else {
		dtX = ((m.EdgeX[lx] - OpenBoundCorrection) - x) * uxInv
	}
	if omegaY >= 0.0 {
		dtY = (m.EdgeY[ly+1] - y) * uyInv
	} else {
		dtY = ((m.EdgeY[ly] - OpenBoundCorrection) - y) * uyInv
	}

	res := FacetResult{XFacet: dtX < dtY}

	// Project the crossing time back onto the ray.
	if res.XFacet {
		res.Distance = dtX * speed
	} else {
		res.Distance = dtY * speed
	}
	return res
}
