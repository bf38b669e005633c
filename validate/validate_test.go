package validate

import (
	"testing"

	"github.com/pthm-cable/fluence/tally"
)

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		want, got float64
		tol       float64
		pass      bool
	}{
		{"exact", 10, 10, 1e-3, true},
		{"just inside", 10, 10.009, 1e-3, true},
		{"just outside", 10, 10.02, 1e-3, false},
		{"negative reference", -5, -5.001, 1e-3, true},
		{"zero reference zero value", 0, 0, 1e-3, true},
		{"zero reference small value", 0, 1e-4, 1e-3, true},
		{"zero reference large value", 0, 0.5, 1e-3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinTolerance(tt.want, tt.got, tt.tol); got != tt.pass {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, want %v",
					tt.want, tt.got, tt.tol, got, tt.pass)
			}
		})
	}
}

func TestCheckReducesGrid(t *testing.T) {
	g := tally.New(4, 4)
	g.Add(0, 0, 1.5)
	g.Add(3, 3, 2.5)
	g.Add(2, 1, 6.0)

	res := Check(g, 10.0, 1e-6)
	if res.Actual != 10.0 {
		t.Errorf("Actual = %v, want 10", res.Actual)
	}
	if !res.Passed {
		t.Error("want pass")
	}

	res = Check(g, 11.0, 1e-6)
	if res.Passed {
		t.Error("want fail against wrong reference")
	}
}

func TestCheckDefaultTolerance(t *testing.T) {
	g := tally.New(1, 1)
	g.Add(0, 0, 1.0)
	res := Check(g, 1.0005, 0)
	if res.Tolerance != DefaultTolerance {
		t.Errorf("Tolerance = %v, want default %v", res.Tolerance, DefaultTolerance)
	}
	if !res.Passed {
		t.Error("want pass within default tolerance")
	}
}
