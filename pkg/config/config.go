// Package config provides configuration loading and management for
// saxsreduce. It handles loading job configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents an integration job loaded from YAML. Unset
// calibration floats stay NaN so resolution can tell "absent" from
// zero.
type Config struct {
	// Center is the beam center in pixel coordinates
	Center struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"center"`

	// Calibration collects the radius-to-q conversion inputs
	Calibration struct {
		// Detector is a known detector name (PILATUS, EIGER); its
		// pixel size overrides PxSize when set
		Detector string `yaml:"detector"`

		// PxSize is the pixel pitch in mm
		PxSize float64 `yaml:"pxSize"`

		// CameraLength is the sample-detector distance in mm
		CameraLength float64 `yaml:"cameraLength"`

		// WaveLength is the X-ray wavelength in nm
		WaveLength float64 `yaml:"waveLength"`

		// Slope and Intercept define the linear regression q = a + b*r
		Slope     float64 `yaml:"slope"`
		Intercept float64 `yaml:"intercept"`
	} `yaml:"calibration"`

	// Mask is the path to a mask image file, empty for no masking
	Mask string `yaml:"mask"`

	// Flip is the mirror token applied to every frame: "", "v", "h"
	// or "vh"
	Flip string `yaml:"flip"`

	// Threshold excludes pixel values below it from averaging
	Threshold float64 `yaml:"threshold"`

	// Processing parameters
	Processing struct {
		// Workers bounds the parallel frame reduction
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Overwrite permits replacing an existing destination
		Overwrite bool `yaml:"overwrite"`

		// Verbose enables progress reporting
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	nan := math.NaN()
	cfg.Center.X = nan
	cfg.Center.Y = nan
	cfg.Calibration.PxSize = nan
	cfg.Calibration.CameraLength = nan
	cfg.Calibration.WaveLength = nan
	cfg.Calibration.Slope = nan
	cfg.Calibration.Intercept = nan

	cfg.Flip = "v"
	cfg.Threshold = 2
	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Output.Overwrite = false
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration. Fields absent from the
// file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
