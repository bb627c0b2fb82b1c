// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"audioprofile/internal/analysis"
	applog "audioprofile/internal/log"

	"gopkg.in/yaml.v3"
)

// Hardware and processing limits.
const (
	MinDeviceID     = -1 // -1 represents system default device
	MinSampleRate   = 8000
	MaxSampleRate   = 192000
	MaxBufferFrames = 8192
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Signal analysis settings.
	Capture   CaptureConfig   `yaml:"capture"`   // Live input settings.
	Transport TransportConfig `yaml:"transport"` // Progress event publishing.
}

// AnalysisConfig holds framing and spectral estimation settings.
type AnalysisConfig struct {
	FrameSize int    `yaml:"frame_size"` // Samples per analysis frame.
	HopSize   int    `yaml:"hop_size"`   // Samples between frame starts.
	Estimator string `yaml:"estimator"`  // "halfsplit" or "fourier".
	Window    string `yaml:"window"`     // Window function name (e.g., "hann", "hamming").
}

// CaptureConfig holds settings related to live audio input.
type CaptureConfig struct {
	InputDevice     int           `yaml:"input_device"`      // PortAudio device index for audio input (-1 for default).
	SampleRate      float64       `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	Channels        int           `yaml:"channels"`          // Number of input channels to capture.
	FramesPerBuffer int           `yaml:"frames_per_buffer"` // Frames per PortAudio callback.
	Duration        time.Duration `yaml:"duration"`          // Length of a capture.
	LowLatency      bool          `yaml:"low_latency"`       // Request low latency settings from PortAudio device.
	GateThreshold   float64       `yaml:"gate_threshold"`    // Noise gate threshold in [0, 1]; 0 disables the gate.
	BitDepth        int           `yaml:"bit_depth"`         // Bit depth for saved captures (16, 24 or 32).
}

// TransportConfig holds settings related to publishing pipeline events.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"` // Broadcast progress and results over WebSocket.
	WebSocketAddress string `yaml:"websocket_address"` // Listen address for the WebSocket server.
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Analysis: AnalysisConfig{
			FrameSize: analysis.DefaultFrameSize,
			HopSize:   analysis.DefaultHopSize,
			Estimator: string(analysis.EstimatorHalfSplit),
			Window:    "hann",
		},
		Capture: CaptureConfig{
			InputDevice:     MinDeviceID,
			SampleRate:      44100,
			Channels:        2,
			FramesPerBuffer: 512,
			Duration:        10 * time.Second,
			LowLatency:      false,
			GateThreshold:   0,
			BitDepth:        16,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddress: ":8080",
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		candidates := []string{"config.yaml"}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log_level %q is not a known level", c.LogLevel)
	}

	if _, err := c.AnalysisOptions(); err != nil {
		return err
	}

	cp := c.Capture
	if cp.InputDevice < MinDeviceID {
		return fmt.Errorf("capture.input_device must be >= %d, got %d", MinDeviceID, cp.InputDevice)
	}
	if cp.SampleRate < MinSampleRate || cp.SampleRate > MaxSampleRate {
		return fmt.Errorf("capture.sample_rate must be in [%d, %d], got %v", MinSampleRate, MaxSampleRate, cp.SampleRate)
	}
	if cp.Channels <= 0 {
		return fmt.Errorf("capture.channels must be positive, got %d", cp.Channels)
	}
	if cp.FramesPerBuffer <= 0 || cp.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("capture.frames_per_buffer must be in [1, %d], got %d", MaxBufferFrames, cp.FramesPerBuffer)
	}
	if cp.Duration <= 0 {
		return fmt.Errorf("capture.duration must be positive, got %v", cp.Duration)
	}
	if cp.GateThreshold < 0 || cp.GateThreshold > 1 {
		return fmt.Errorf("capture.gate_threshold must be in [0, 1], got %v", cp.GateThreshold)
	}
	switch cp.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("capture.bit_depth must be 16, 24 or 32, got %d", cp.BitDepth)
	}

	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddress == "" {
		return fmt.Errorf("transport.websocket_address must be set when WebSocket is enabled")
	}

	return nil
}

// AnalysisOptions converts the analysis section into analyzer options.
func (c *Config) AnalysisOptions() (analysis.Options, error) {
	estimator, err := analysis.ParseEstimatorKind(c.Analysis.Estimator)
	if err != nil {
		return analysis.Options{}, fmt.Errorf("analysis.estimator: %w", err)
	}
	window, err := analysis.ParseWindowFunc(c.Analysis.Window)
	if err != nil {
		return analysis.Options{}, fmt.Errorf("analysis.window: %w", err)
	}
	opts := analysis.Options{
		FrameSize: c.Analysis.FrameSize,
		HopSize:   c.Analysis.HopSize,
		Estimator: estimator,
		Window:    window,
	}
	if err := opts.Validate(); err != nil {
		return analysis.Options{}, fmt.Errorf("analysis: %w", err)
	}
	return opts, nil
}

// applyEnvOverrides replaces fields with ENV_* variables when they are set
// and parse.
func (c *Config) applyEnvOverrides() {
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Debugf("Configuration: Overriding log_level from env: %s", val)
	}

	// ENV_ANALYSIS_{...}

	// ENV_ANALYSIS_ESTIMATOR
	if val, ok := os.LookupEnv("ENV_ANALYSIS_ESTIMATOR"); ok {
		c.Analysis.Estimator = val
		applog.Debugf("Configuration: Overriding analysis.estimator from env: %s", val)
	}

	// ENV_WS_{...}
	// These are specific to the transport layer.

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = bVal
			applog.Debugf("Configuration: Overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		applog.Debugf("Configuration: Overriding transport.websocket_address from env: %s", val)
	}
}
