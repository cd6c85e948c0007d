package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config holds the sampler's configuration. All fields are optional;
// flags override anything set here.
type Config struct {
	// StepSeconds is the grid quantum between samples.
	StepSeconds uint64 `json:"step_seconds,omitempty"` //nolint:tagliatelle // snake_case for config file

	// WindowSeconds is the total retained window.
	WindowSeconds uint64 `json:"window_seconds,omitempty"` //nolint:tagliatelle // snake_case for config file

	// Samples is how many samples to record before rendering.
	Samples int `json:"samples,omitempty"`

	// TablePath persists the ring to a file instead of memory.
	TablePath string `json:"table_path,omitempty"` //nolint:tagliatelle // snake_case for config file

	// ChartPath is where the rendered chart is written.
	ChartPath string `json:"chart_path,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// DefaultConfig returns the default configuration: one sample every
// five seconds for five minutes, chart to ./meminfo.html.
func DefaultConfig() Config {
	return Config{
		StepSeconds:   5,
		WindowSeconds: 300,
		Samples:       60,
		ChartPath:     "meminfo.html",
	}
}

// LoadConfig reads a HuJSON config file and merges it over the
// defaults. A missing path is not an error when it was not explicitly
// requested.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	var fileCfg Config
	if err := json.Unmarshal(std, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return mergeConfig(cfg, fileCfg), nil
}

// mergeConfig overlays non-zero fields of over onto base.
func mergeConfig(base, over Config) Config {
	if over.StepSeconds != 0 {
		base.StepSeconds = over.StepSeconds
	}

	if over.WindowSeconds != 0 {
		base.WindowSeconds = over.WindowSeconds
	}

	if over.Samples != 0 {
		base.Samples = over.Samples
	}

	if over.TablePath != "" {
		base.TablePath = over.TablePath
	}

	if over.ChartPath != "" {
		base.ChartPath = over.ChartPath
	}

	return base
}
