// Command fluence runs a 2-D Monte Carlo neutral-particle transport
// simulation and validates the resulting energy-deposition tally.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/fluence/config"
	"github.com/pthm-cable/fluence/mesh"
	"github.com/pthm-cable/fluence/tally"
	"github.com/pthm-cable/fluence/telemetry"
	"github.com/pthm-cable/fluence/transport"
	"github.com/pthm-cable/fluence/validate"
	"github.com/pthm-cable/fluence/xs"
)

var (
	configPath = flag.String("config", "", "Config YAML file (empty = embedded defaults)")
	outputDir  = flag.String("output", "", "Override output directory")
	steps      = flag.Int("steps", 0, "Override timestep count (0 = use config)")
	workers    = flag.Int("workers", -1, "Override worker count (-1 = use config)")
	quiet      = flag.Bool("quiet", false, "Suppress per-timestep logging")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if err := config.Init(*configPath); err != nil {
		return err
	}
	cfg := config.Cfg()
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *steps > 0 {
		cfg.Time.Steps = *steps
	}
	if *workers >= 0 {
		cfg.Transport.Workers = *workers
	}

	scatter, err := xs.LoadFile(cfg.CrossSections.ScatterFile)
	if err != nil {
		return err
	}
	absorb, err := xs.LoadFile(cfg.CrossSections.AbsorbFile)
	if err != nil {
		return err
	}

	m := mesh.NewUniform(cfg.Mesh.NX, cfg.Mesh.NY, cfg.Mesh.Width, cfg.Mesh.Height, cfg.Time.DT)
	switch cfg.Density.Profile {
	case "uniform":
		m.FillUniformDensity(cfg.Density.Rho)
	case "split":
		m.FillSplitDensity(cfg.Density.SplitRhoLeft, cfg.Density.SplitRhoRight)
	case "noise":
		m.FillNoiseDensity(cfg.Density.Rho, cfg.Density.NoiseAmplitude,
			cfg.Density.NoiseScale, cfg.Density.NoiseSeed)
	}
	if err := m.Validate(); err != nil {
		return err
	}

	src, nLocal := transport.LocalSource(m,
		cfg.Source.X, cfg.Source.Y, cfg.Source.Width, cfg.Source.Height,
		cfg.Particles.N)

	masterKey := cfg.Transport.MasterKey
	particles, bytes := transport.Inject(m, src, nLocal,
		cfg.Particles.InitialEnergy, masterKey)
	logger.Info("injected particles",
		"count", nLocal,
		"allocated_mb", fmt.Sprintf("%.2f", float64(bytes)/(1024*1024)))

	grid := tally.New(cfg.Mesh.NX, cfg.Mesh.NY)
	collector := telemetry.NewCollector()
	perf := telemetry.NewPerfCollector(cfg.Time.Steps)

	opts := transport.Options{
		BlockSize:      cfg.Transport.BlockSize,
		Workers:        cfg.Transport.Workers,
		TallyAtExit:    cfg.Transport.TallyAtExit,
		TotalParticles: cfg.Particles.N,
	}

	var prevOutOfRange uint64
	for step := 0; step < cfg.Time.Steps; step++ {
		perf.StartStep()
		perf.StartPhase(telemetry.PhaseTransport)
		start := time.Now()

		stats := transport.Solve(m, scatter, absorb, particles, grid, &masterKey, opts)

		perf.StartPhase(telemetry.PhaseTally)
		outOfRange := scatter.OutOfRangeCount() + absorb.OutOfRangeCount()
		rec := telemetry.TimestepRecord{
			Step:       step,
			Live:       stats.Live,
			Collisions: stats.Collisions,
			Facets:     stats.Facets,
			OutOfRange: outOfRange - prevOutOfRange,
			WallTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		}
		prevOutOfRange = outOfRange
		collector.Record(rec)
		perf.EndStep()

		if !*quiet {
			logger.Info("timestep complete", "counters", rec)
		}
	}

	logger.Info("transport finished",
		"avg_step", perf.AvgStep().Round(time.Microsecond),
		"collisions", collector.TotalCollisions(),
		"facets", collector.TotalFacets())

	stats := telemetry.ComputeTallyStats(grid.Cells())
	logger.Info("tally field", "stats", stats)

	if cfg.Validation.Enabled {
		res := validate.Check(grid, cfg.Validation.Expected, cfg.Validation.Tolerance)
		if res.Passed {
			logger.Info("validation PASSED",
				"expected", res.Expected, "actual", res.Actual)
		} else {
			return fmt.Errorf("validation FAILED: expected %.12e, got %.12e (tolerance %g)",
				res.Expected, res.Actual, res.Tolerance)
		}
	}

	om, err := telemetry.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		return err
	}
	if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			return err
		}
		if err := om.WriteTimesteps(collector.Records()); err != nil {
			return err
		}
		if err := om.WriteTally(grid); err != nil {
			return err
		}
		logger.Info("run artefacts written", "run_id", om.RunID(), "dir", om.Dir())
	}

	return nil
}
