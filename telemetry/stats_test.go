package telemetry

import (
	"math"
	"testing"
)

func TestComputeTallyStats(t *testing.T) {
	cells := []float64{0, 0, 1, 2, 3, 4, 5, 6, 7, 8}
	s := ComputeTallyStats(cells)

	if s.Sum != 36 {
		t.Errorf("Sum = %v, want 36", s.Sum)
	}
	if math.Abs(s.Mean-3.6) > 1e-12 {
		t.Errorf("Mean = %v, want 3.6", s.Mean)
	}
	if s.Max != 8 {
		t.Errorf("Max = %v, want 8", s.Max)
	}
	if s.NonZero != 8 {
		t.Errorf("NonZero = %d, want 8", s.NonZero)
	}
	if s.P50 < 2 || s.P50 > 4 {
		t.Errorf("P50 = %v, want near median 3", s.P50)
	}
	if s.P90 < s.P50 {
		t.Errorf("P90 %v below P50 %v", s.P90, s.P50)
	}
}

func TestComputeTallyStatsEmpty(t *testing.T) {
	s := ComputeTallyStats(nil)
	if s.Sum != 0 || s.Mean != 0 || s.NonZero != 0 {
		t.Errorf("empty stats not zeroed: %+v", s)
	}
}

func TestComputeTallyStatsDoesNotMutateInput(t *testing.T) {
	cells := []float64{5, 1, 3}
	ComputeTallyStats(cells)
	if cells[0] != 5 || cells[1] != 1 || cells[2] != 3 {
		t.Errorf("input mutated: %v", cells)
	}
}

func TestCollectorTotals(t *testing.T) {
	c := NewCollector()
	c.Record(TimestepRecord{Step: 0, Collisions: 10, Facets: 5})
	c.Record(TimestepRecord{Step: 1, Collisions: 7, Facets: 3})

	if got := c.TotalCollisions(); got != 17 {
		t.Errorf("TotalCollisions = %d, want 17", got)
	}
	if got := c.TotalFacets(); got != 8 {
		t.Errorf("TotalFacets = %d, want 8", got)
	}
	if len(c.Records()) != 2 {
		t.Errorf("Records len = %d, want 2", len(c.Records()))
	}
}
