// Package telemetry collects per-timestep counters, phase timings, and tally
// statistics, and writes run artefacts to disk.
package telemetry

import "log/slog"

// TimestepRecord holds the counters reported by one transport step.
type TimestepRecord struct {
	Step       int     `csv:"step"`
	Live       uint64  `csv:"live"`
	Collisions uint64  `csv:"collisions"`
	Facets     uint64  `csv:"facets"`
	OutOfRange uint64  `csv:"cs_out_of_range"`
	WallTimeMS float64 `csv:"wall_time_ms"`
}

// LogValue implements slog.LogValuer for structured logging.
func (r TimestepRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", r.Step),
		slog.Uint64("live", r.Live),
		slog.Uint64("collisions", r.Collisions),
		slog.Uint64("facets", r.Facets),
		slog.Uint64("cs_out_of_range", r.OutOfRange),
		slog.Float64("wall_time_ms", r.WallTimeMS),
	)
}

// Collector accumulates timestep records over a run.
type Collector struct {
	records []TimestepRecord

	totalCollisions uint64
	totalFacets     uint64
}

// NewCollector creates an empty run collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends one timestep's counters.
func (c *Collector) Record(r TimestepRecord) {
	c.records = append(c.records, r)
	c.totalCollisions += r.Collisions
	c.totalFacets += r.Facets
}

// Records returns all recorded timesteps in order.
func (c *Collector) Records() []TimestepRecord { return c.records }

// TotalCollisions returns the collision count summed over the run.
func (c *Collector) TotalCollisions() uint64 { return c.totalCollisions }

// TotalFacets returns the facet-crossing count summed over the run.
func (c *Collector) TotalFacets() uint64 { return c.totalFacets }
