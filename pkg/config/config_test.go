package config

import (
	"os"
	"path/filepath"
	"testing"

	"oao24/pkg/dataset"
)

// TestDefaultConfig verifies the default values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Data.Layout != "frames-last" {
		t.Errorf("Expected layout frames-last, got %q", cfg.Data.Layout)
	}
	if cfg.Reduction.DisplayMax != 2000 || cfg.Reduction.DisplayMin != 0 {
		t.Errorf("Expected display bounds [0, 2000], got [%f, %f]", cfg.Reduction.DisplayMin, cfg.Reduction.DisplayMax)
	}
	if cfg.Reduction.ClippedMin != -10 || cfg.Reduction.ClippedMax != 100 {
		t.Errorf("Expected clipped bounds [-10, 100], got [%f, %f]", cfg.Reduction.ClippedMin, cfg.Reduction.ClippedMax)
	}
	if cfg.Pupil.Radius != nil || cfg.Pupil.CenterRow != nil {
		t.Errorf("Expected unset pupil geometry")
	}
	if cfg.PSF.Oversampling != 2 {
		t.Errorf("Expected oversampling 2, got %d", cfg.PSF.Oversampling)
	}
}

// TestLoadConfigMissingFile returns defaults for a missing file
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Output.MasterFile != "master.fits" {
		t.Errorf("Expected default master file, got %q", cfg.Output.MasterFile)
	}
}

// TestLoadConfig overrides selected values from YAML
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oao24.yaml")
	yamlText := `
data:
  rootDir: /srv/oao24
  raw: tuto3/raw.fits
  background: tuto3/dark.fits
reduction:
  wantDisplay: true
pupil:
  radius: 120.5
  innerRadius: 30
psf:
  enabled: true
`
	if err := os.WriteFile(path, []byte(yamlText), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Pupil.Radius == nil || *cfg.Pupil.Radius != 120.5 {
		t.Errorf("Expected pupil radius 120.5, got %v", cfg.Pupil.Radius)
	}
	if cfg.Pupil.InnerRadius != 30 {
		t.Errorf("Expected inner radius 30, got %f", cfg.Pupil.InnerRadius)
	}

	params := cfg.ReductionParams()
	if !params.WantDisplay || params.DisplayMax != 2000 {
		t.Errorf("Unexpected reduction params %+v", params)
	}

	ds := cfg.DatasetConfig()
	if ds.RootDir != "/srv/oao24" || ds.Layout != dataset.FramesLast {
		t.Errorf("Unexpected dataset config %+v", ds)
	}
}

// TestSaveAndReload verifies a saved configuration loads back unchanged
func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "oao24.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("Failed to create default config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Expected reloaded config to equal defaults")
	}
}

// TestLoadConfigInvalidYAML reports parse errors
func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("data: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected parse error, got nil")
	}
}
