package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pthm-cable/fluence/config"
	"github.com/pthm-cable/fluence/tally"
)

// tallyRow is one cell of the tally grid in CSV form.
type tallyRow struct {
	CellX int     `csv:"cellx"`
	CellY int     `csv:"celly"`
	Value float64 `csv:"energy_deposition"`
}

// OutputManager writes run artefacts (timestep counters, tally field, config
// dump) into a per-run directory named by a fresh run id.
type OutputManager struct {
	dir   string
	runID string
}

// NewOutputManager creates the run directory under base. Returns nil if base
// is empty (output disabled).
func NewOutputManager(base string) (*OutputManager, error) {
	if base == "" {
		return nil, nil
	}

	runID := uuid.New().String()
	dir := filepath.Join(base, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir, runID: runID}, nil
}

// RunID returns the unique identifier of this run.
func (om *OutputManager) RunID() string {
	if om == nil {
		return ""
	}
	return om.runID
}

// Dir returns the run directory.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTimesteps writes the per-timestep counter records to timesteps.csv.
func (om *OutputManager) WriteTimesteps(records []TimestepRecord) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "timesteps.csv"))
	if err != nil {
		return fmt.Errorf("creating timesteps.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing timesteps: %w", err)
	}
	return nil
}

// WriteTally writes the normalised tally field to tally.csv, one cell per
// row.
func (om *OutputManager) WriteTally(g *tally.Grid) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "tally.csv"))
	if err != nil {
		return fmt.Errorf("creating tally.csv: %w", err)
	}
	defer f.Close()

	rows := make([]tallyRow, 0, g.NX()*g.NY())
	for cy := 0; cy < g.NY(); cy++ {
		for cx := 0; cx < g.NX(); cx++ {
			rows = append(rows, tallyRow{CellX: cx, CellY: cy, Value: g.At(cx, cy)})
		}
	}
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing tally: %w", err)
	}
	return nil
}
