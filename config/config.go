// Package config provides configuration loading and access for the
// transport simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	Mesh          MeshConfig          `yaml:"mesh"`
	Particles     ParticlesConfig     `yaml:"particles"`
	Source        SourceConfig        `yaml:"source"`
	CrossSections CrossSectionsConfig `yaml:"cross_sections"`
	Density       DensityConfig       `yaml:"density"`
	Time          TimeConfig          `yaml:"time"`
	Transport     TransportConfig     `yaml:"transport"`
	Validation    ValidationConfig    `yaml:"validation"`
	Output        OutputConfig        `yaml:"output"`
}

// MeshConfig holds the spatial mesh parameters.
type MeshConfig struct {
	NX     int     `yaml:"nx"`
	NY     int     `yaml:"ny"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ParticlesConfig holds the particle population parameters.
type ParticlesConfig struct {
	N             int     `yaml:"n"`
	InitialEnergy float64 `yaml:"initial_energy"`
}

// SourceConfig places the emission region as fractions of the mesh extents.
type SourceConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// CrossSectionsConfig names the two cross-section data files.
type CrossSectionsConfig struct {
	ScatterFile string `yaml:"scatter_file"`
	AbsorbFile  string `yaml:"absorb_file"`
}

// DensityConfig selects the mass-density profile of the medium.
// Profile is one of "uniform", "split", or "noise".
type DensityConfig struct {
	Profile        string  `yaml:"profile"`
	Rho            float64 `yaml:"rho"`
	SplitRhoLeft   float64 `yaml:"split_rho_left"`
	SplitRhoRight  float64 `yaml:"split_rho_right"`
	NoiseAmplitude float64 `yaml:"noise_amplitude"`
	NoiseScale     float64 `yaml:"noise_scale"`
	NoiseSeed      int64   `yaml:"noise_seed"`
}

// TimeConfig holds the timestep parameters.
type TimeConfig struct {
	DT    float64 `yaml:"dt"`
	Steps int     `yaml:"steps"`
}

// TransportConfig tunes the transport driver.
type TransportConfig struct {
	BlockSize   int    `yaml:"block_size"`
	Workers     int    `yaml:"workers"` // 0 = GOMAXPROCS
	TallyAtExit bool   `yaml:"tally_at_exit"`
	MasterKey   uint64 `yaml:"master_key"`
}

// ValidationConfig holds the expected global tally for this configuration.
type ValidationConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Expected  float64 `yaml:"expected"`
	Tolerance float64 `yaml:"tolerance"`
}

// OutputConfig controls run artefacts.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects configurations transport cannot run.
func (c *Config) validate() error {
	if c.Mesh.NX < 1 || c.Mesh.NY < 1 {
		return fmt.Errorf("config: mesh must have at least one cell per axis")
	}
	if c.Mesh.Width <= 0 || c.Mesh.Height <= 0 {
		return fmt.Errorf("config: mesh extents must be positive")
	}
	if c.Particles.N < 0 {
		return fmt.Errorf("config: particle count must be non-negative")
	}
	if c.Particles.InitialEnergy <= 0 {
		return fmt.Errorf("config: initial energy must be positive")
	}
	if c.Source.Width <= 0 || c.Source.Height <= 0 {
		return fmt.Errorf("config: source region must have positive extent")
	}
	if c.Source.X < 0 || c.Source.Y < 0 ||
		c.Source.X+c.Source.Width > 1 || c.Source.Y+c.Source.Height > 1 {
		return fmt.Errorf("config: source fractions must lie within [0,1]")
	}
	if c.Time.DT <= 0 {
		return fmt.Errorf("config: dt must be positive")
	}
	if c.Time.Steps < 1 {
		return fmt.Errorf("config: step count must be at least 1")
	}
	switch c.Density.Profile {
	case "uniform", "split", "noise":
	default:
		return fmt.Errorf("config: unknown density profile %q", c.Density.Profile)
	}
	return nil
}

// WriteYAML serialises the configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
