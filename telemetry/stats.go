package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TallyStats summarises the tally field at the end of a run.
type TallyStats struct {
	Sum  float64 `csv:"sum"`
	Mean float64 `csv:"mean"`
	Max  float64 `csv:"max"`
	P50  float64 `csv:"p50"`
	P90  float64 `csv:"p90"`
	P99  float64 `csv:"p99"`

	// NonZero counts cells that received any deposition.
	NonZero int `csv:"nonzero_cells"`
}

// ComputeTallyStats reduces a tally field to summary statistics.
func ComputeTallyStats(cells []float64) TallyStats {
	if len(cells) == 0 {
		return TallyStats{}
	}

	sorted := slices.Clone(cells)
	slices.Sort(sorted)

	nonZero := 0
	for _, v := range cells {
		if v != 0 {
			nonZero++
		}
	}

	return TallyStats{
		Sum:     floats.Sum(cells),
		Mean:    stat.Mean(cells, nil),
		Max:     sorted[len(sorted)-1],
		P50:     stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:     stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P99:     stat.Quantile(0.99, stat.Empirical, sorted, nil),
		NonZero: nonZero,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s TallyStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("sum", s.Sum),
		slog.Float64("mean", s.Mean),
		slog.Float64("max", s.Max),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("p99", s.P99),
		slog.Int("nonzero_cells", s.NonZero),
	)
}
