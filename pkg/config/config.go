// Package config provides configuration loading and management for oao24.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"oao24/pkg/dataset"
	"oao24/pkg/reduction"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Data locates the input cubes
	Data struct {
		// RootDir overrides the packaged example data directory
		RootDir string `yaml:"rootDir"`

		// Layout of 3-D FITS cubes: frames-last or frames-first
		Layout string `yaml:"layout"`

		// Raw and Background are FITS files relative to RootDir
		Raw        string `yaml:"raw"`
		Background string `yaml:"background"`
	} `yaml:"data"`

	// Reduction parameters
	Reduction struct {
		// WantDisplay renders the intermediate products as well
		WantDisplay bool `yaml:"wantDisplay"`

		// Display bounds of the background and raw frame views, in ADU
		DisplayMin float64 `yaml:"displayMin"`
		DisplayMax float64 `yaml:"displayMax"`

		// Bounds of the clipped linear view of the master image
		ClippedMin float64 `yaml:"clippedMin"`
		ClippedMax float64 `yaml:"clippedMax"`
	} `yaml:"reduction"`

	// Pupil geometry; nil values fall back to the mask defaults
	Pupil struct {
		Radius      *float64 `yaml:"radius"`
		CenterRow   *float64 `yaml:"centerRow"`
		CenterCol   *float64 `yaml:"centerCol"`
		InnerRadius float64  `yaml:"innerRadius"`
	} `yaml:"pupil"`

	// PSF computation of the configured pupil
	PSF struct {
		Enabled      bool `yaml:"enabled"`
		Oversampling int  `yaml:"oversampling"`
	} `yaml:"psf"`

	// Output parameters
	Output struct {
		// Dir receives rendered views and the master image
		Dir string `yaml:"dir"`

		// MasterFile is the FITS file name of the master image
		MasterFile string `yaml:"masterFile"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`

		// LogMode is "release" for JSON logs, anything else for console logs
		LogMode string `yaml:"logMode"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default data parameters
	cfg.Data.Layout = string(dataset.FramesLast)

	// Set default reduction parameters
	params := reduction.DefaultParams()
	cfg.Reduction.WantDisplay = false
	cfg.Reduction.DisplayMin = params.DisplayMin
	cfg.Reduction.DisplayMax = params.DisplayMax
	cfg.Reduction.ClippedMin = params.ClippedMin
	cfg.Reduction.ClippedMax = params.ClippedMax

	// Set default PSF parameters
	cfg.PSF.Enabled = false
	cfg.PSF.Oversampling = 2

	// Set default output parameters
	cfg.Output.Dir = "oao24_output"
	cfg.Output.MasterFile = "master.fits"
	cfg.Output.Verbose = false
	cfg.Output.LogMode = "debug"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// DatasetConfig returns the data catalog settings
func (c *Config) DatasetConfig() dataset.Config {
	return dataset.Config{
		RootDir: c.Data.RootDir,
		Layout:  dataset.Layout(c.Data.Layout),
	}
}

// ReductionParams returns the master image builder parameters
func (c *Config) ReductionParams() *reduction.Params {
	return &reduction.Params{
		WantDisplay: c.Reduction.WantDisplay,
		DisplayMin:  c.Reduction.DisplayMin,
		DisplayMax:  c.Reduction.DisplayMax,
		ClippedMin:  c.Reduction.ClippedMin,
		ClippedMax:  c.Reduction.ClippedMax,
	}
}
