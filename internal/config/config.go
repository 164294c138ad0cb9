// Package config loads the framepaced daemon configuration. The filesystem
// is abstracted behind afero so tests can run against an in-memory fs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// DisplayConfig describes the refresh geometry being paced against.
type DisplayConfig struct {
	// RefreshRateHz is the display refresh rate. Zero selects 60Hz.
	RefreshRateHz float64 `json:"refreshRateHz"`
	// RedzoneNanos is the safety margin held before each vblank.
	// Zero selects the built-in default.
	RedzoneNanos uint64 `json:"redzoneNanos"`
}

// IntervalNanos converts the refresh rate to a frame interval.
func (d DisplayConfig) IntervalNanos() uint64 {
	if d.RefreshRateHz <= 0 {
		return 0
	}
	return uint64(1e9 / d.RefreshRateHz)
}

// SurfaceConfig describes one paced surface and its synthetic frame
// source.
type SurfaceConfig struct {
	// Name identifies the surface on the control API.
	Name string `json:"name"`
	// Buffers is the swapchain depth. Zero selects 3.
	Buffers uint32 `json:"buffers"`
	// FrameTimeNanos is the synthetic source's render time per frame.
	// Zero selects 8ms.
	FrameTimeNanos uint64 `json:"frameTimeNanos"`
	// JitterNanos is the uniform render-time jitter applied on top.
	JitterNanos uint64 `json:"jitterNanos"`
}

// Config is the daemon configuration.
type Config struct {
	// SocketPath overrides the control socket location. Empty selects
	// the default under the temp directory.
	SocketPath string `json:"socketPath"`
	// RPCPort is the TCP fallback port for the control endpoint; the
	// WebSocket bridge listens on RPCPort+1. Zero selects 3784.
	RPCPort int `json:"rpcPort"`

	// TraceDBPath locates the frame trace store. Empty disables
	// tracing.
	TraceDBPath string `json:"traceDbPath"`
	// TraceKeep is how many samples pruning retains. Zero selects
	// 100000.
	TraceKeep int64 `json:"traceKeep"`
	// PruneCron schedules trace pruning. Empty selects hourly.
	PruneCron string `json:"pruneCron"`
	// SummaryCron schedules the pacing stats summary log line.
	// Empty selects every 5 minutes.
	SummaryCron string `json:"summaryCron"`

	Display  DisplayConfig   `json:"display"`
	Surfaces []SurfaceConfig `json:"surfaces"`
}

// Default returns the configuration used when no file exists: one 60Hz
// surface with a triple-buffered swapchain.
func Default() *Config {
	return &Config{
		RPCPort:     3784,
		TraceKeep:   100_000,
		PruneCron:   "0 * * * *",
		SummaryCron: "*/5 * * * *",
		Display:     DisplayConfig{RefreshRateHz: 60},
		Surfaces: []SurfaceConfig{
			{Name: "primary", Buffers: 3, FrameTimeNanos: 8_000_000, JitterNanos: 2_000_000},
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "framepace", "config.json")
}

// Load reads the configuration at path from fs. A missing file yields the
// defaults; a malformed file is an error. Zero-valued fields are filled
// with defaults after parsing.
func Load(fs afero.Fs, path string) (*Config, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error: cannot stat config file: %w", err)
	}
	if !exists {
		return Default(), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error: cannot read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error: cannot parse config file %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to path on fs, creating parent
// directories as needed.
func Save(fs afero.Fs, path string, cfg *Config) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error: cannot create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error: cannot encode config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("error: cannot write config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.RPCPort == 0 {
		c.RPCPort = def.RPCPort
	}
	if c.TraceKeep == 0 {
		c.TraceKeep = def.TraceKeep
	}
	if c.PruneCron == "" {
		c.PruneCron = def.PruneCron
	}
	if c.SummaryCron == "" {
		c.SummaryCron = def.SummaryCron
	}
	if c.Display.RefreshRateHz <= 0 {
		c.Display.RefreshRateHz = def.Display.RefreshRateHz
	}
	if len(c.Surfaces) == 0 {
		c.Surfaces = def.Surfaces
	}
	for i := range c.Surfaces {
		if c.Surfaces[i].Buffers == 0 {
			c.Surfaces[i].Buffers = 3
		}
		if c.Surfaces[i].FrameTimeNanos == 0 {
			c.Surfaces[i].FrameTimeNanos = 8_000_000
		}
	}
}
