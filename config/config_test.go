package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mesh.NX != 64 || cfg.Mesh.NY != 64 {
		t.Errorf("default mesh = %dx%d, want 64x64", cfg.Mesh.NX, cfg.Mesh.NY)
	}
	if cfg.Particles.N != 100000 {
		t.Errorf("default particles = %d, want 100000", cfg.Particles.N)
	}
	if cfg.Transport.BlockSize != 32 {
		t.Errorf("default block size = %d, want 32", cfg.Transport.BlockSize)
	}
	if cfg.Density.Profile != "uniform" {
		t.Errorf("default density profile = %q, want uniform", cfg.Density.Profile)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	body := "particles:\n  n: 42\nmesh:\n  nx: 8\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Particles.N != 42 {
		t.Errorf("overridden n = %d, want 42", cfg.Particles.N)
	}
	if cfg.Mesh.NX != 8 {
		t.Errorf("overridden nx = %d, want 8", cfg.Mesh.NX)
	}
	// Untouched fields keep defaults.
	if cfg.Mesh.NY != 64 {
		t.Errorf("ny = %d, want default 64", cfg.Mesh.NY)
	}
	if cfg.Particles.InitialEnergy != 1.0e6 {
		t.Errorf("initial energy = %v, want default 1e6", cfg.Particles.InitialEnergy)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero cells", "mesh:\n  nx: 0\n"},
		{"negative dt", "time:\n  dt: -1.0\n"},
		{"zero steps", "time:\n  steps: 0\n"},
		{"bad profile", "density:\n  profile: plasma\n"},
		{"source outside mesh", "source:\n  x: 0.9\n  width: 0.5\n"},
		{"non-positive energy", "particles:\n  initial_energy: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Load accepted invalid config %q", tt.body)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Particles.N = 7777

	path := filepath.Join(t.TempDir(), "dump.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Particles.N != 7777 {
		t.Errorf("round-tripped n = %d, want 7777", back.Particles.N)
	}
}
