package transport

import (
	"math"
	"testing"

	"github.com/pthm-cable/fluence/mesh"
)

func TestLocalSourceFullCoverage(t *testing.T) {
	m := mesh.NewUniform(4, 4, 4, 4, 1e-9)
	src, n := LocalSource(m, 0.0, 0.0, 0.25, 0.25, 1000)

	if n != 1000 {
		t.Errorf("n = %d, want 1000 for a source fully inside the patch", n)
	}
	if src.X0 != 0 || src.Y0 != 0 {
		t.Errorf("source origin = (%v,%v), want (0,0)", src.X0, src.Y0)
	}
	if math.Abs(src.W-1.0) > 1e-12 || math.Abs(src.H-1.0) > 1e-12 {
		t.Errorf("source extent = (%v,%v), want (1,1)", src.W, src.H)
	}
}

func TestLocalSourceClipsToPatch(t *testing.T) {
	// A source half hanging off the domain keeps only the covered share of
	// the particle budget.
	m := mesh.NewUniform(4, 4, 4, 4, 1e-9)
	src, n := LocalSource(m, 0.5, 0.0, 1.0, 1.0, 1000)

	if math.Abs(src.W-2.0) > 1e-12 {
		t.Errorf("clipped width = %v, want 2", src.W)
	}
	if n != 500 {
		t.Errorf("n = %d, want 500 for half-covered source", n)
	}
}

func TestLocalSourceOutsidePatch(t *testing.T) {
	m := mesh.NewUniform(4, 4, 4, 4, 1e-9)
	_, n := LocalSource(m, 2.0, 2.0, 0.5, 0.5, 1000)
	if n != 0 {
		t.Errorf("n = %d, want 0 for a source outside the patch", n)
	}
}

func TestInjectPopulatesTable(t *testing.T) {
	m := mesh.NewUniform(8, 8, 8, 8, 2.5e-9)
	src := SourceRegion{X0: 1.0, Y0: 2.0, W: 3.0, H: 2.0}
	const n = 500

	p, bytes := Inject(m, src, n, 1e6, 0)
	if p.N != n {
		t.Fatalf("N = %d, want %d", p.N, n)
	}
	if bytes == 0 {
		t.Error("zero bytes reported")
	}

	for i := 0; i < n; i++ {
		x, y := p.X[i], p.Y[i]
		if x < src.X0 || x >= src.X0+src.W || y < src.Y0 || y >= src.Y0+src.H {
			t.Fatalf("particle %d at (%v,%v) outside source region", i, x, y)
		}

		// Containing-cell invariant against the edge arrays.
		lx := int(p.CellX[i]) - m.XOff + mesh.Pad
		ly := int(p.CellY[i]) - m.YOff + mesh.Pad
		if x < m.EdgeX[lx] || x >= m.EdgeX[lx+1] {
			t.Fatalf("particle %d x=%v outside cell %d [%v,%v)",
				i, x, p.CellX[i], m.EdgeX[lx], m.EdgeX[lx+1])
		}
		if y < m.EdgeY[ly] || y >= m.EdgeY[ly+1] {
			t.Fatalf("particle %d y=%v outside cell %d [%v,%v)",
				i, y, p.CellY[i], m.EdgeY[ly], m.EdgeY[ly+1])
		}

		if norm := p.OmegaX[i]*p.OmegaX[i] + p.OmegaY[i]*p.OmegaY[i]; math.Abs(norm-1) > 1e-12 {
			t.Fatalf("particle %d direction norm %v", i, norm)
		}
		if p.Energy[i] != 1e6 || p.Weight[i] != 1.0 {
			t.Fatalf("particle %d energy/weight = %v/%v", i, p.Energy[i], p.Weight[i])
		}
		if p.DtToCensus[i] != m.Dt {
			t.Fatalf("particle %d dt_to_census = %v, want %v", i, p.DtToCensus[i], m.Dt)
		}
		if p.MfpToCollision[i] != 0 {
			t.Fatalf("particle %d mfp = %v, want 0", i, p.MfpToCollision[i])
		}
		if p.Dead[i] != 0 {
			t.Fatalf("particle %d injected dead", i)
		}
		if p.Key[i] != uint64(i) {
			t.Fatalf("particle %d key = %d", i, p.Key[i])
		}
	}
}

func TestInjectDeterministic(t *testing.T) {
	m := mesh.NewUniform(8, 8, 8, 8, 1e-9)
	src := SourceRegion{X0: 0, Y0: 0, W: 8, H: 8}

	a, _ := Inject(m, src, 200, 1e6, 3)
	b, _ := Inject(m, src, 200, 1e6, 3)
	for i := 0; i < 200; i++ {
		if a.X[i] != b.X[i] || a.Y[i] != b.Y[i] ||
			a.OmegaX[i] != b.OmegaX[i] || a.OmegaY[i] != b.OmegaY[i] {
			t.Fatalf("particle %d differs between identical injections", i)
		}
	}

	c, _ := Inject(m, src, 200, 1e6, 4)
	same := 0
	for i := 0; i < 200; i++ {
		if a.X[i] == c.X[i] && a.Y[i] == c.Y[i] {
			same++
		}
	}
	if same == 200 {
		t.Error("different master keys produced identical placements")
	}
}
