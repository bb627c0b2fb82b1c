// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"audioprofile/internal/analysis"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Analysis.FrameSize != 1024 || cfg.Analysis.HopSize != 512 {
		t.Errorf("unexpected framing defaults: %+v", cfg.Analysis)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeTempConfig(t, `
log_level: debug
analysis:
  frame_size: 2048
  hop_size: 1024
  estimator: fourier
  window: hamming
capture:
  input_device: 3
  channels: 1
  duration: 30s
transport:
  websocket_enabled: true
  websocket_address: "127.0.0.1:9000"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Capture.InputDevice != 3 || cfg.Capture.Channels != 1 || cfg.Capture.Duration != 30*time.Second {
		t.Errorf("Capture = %+v", cfg.Capture)
	}
	// Unset keys keep their defaults.
	if cfg.Capture.SampleRate != 44100 || cfg.Capture.FramesPerBuffer != 512 {
		t.Errorf("Capture defaults lost: %+v", cfg.Capture)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddress != "127.0.0.1:9000" {
		t.Errorf("Transport = %+v", cfg.Transport)
	}

	opts, err := cfg.AnalysisOptions()
	if err != nil {
		t.Fatalf("AnalysisOptions() error = %v", err)
	}
	want := analysis.Options{FrameSize: 2048, HopSize: 1024, Estimator: analysis.EstimatorFourier, Window: analysis.Hamming}
	if opts != want {
		t.Errorf("AnalysisOptions() = %+v, want %+v", opts, want)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_LOG_LEVEL", "warn")
	t.Setenv("ENV_ANALYSIS_ESTIMATOR", "fourier")
	t.Setenv("ENV_WS_ENABLED", "true")
	t.Setenv("ENV_WS_ADDRESS", ":9999")

	cfg, err := LoadConfig(writeTempConfig(t, "log_level: error\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override", cfg.LogLevel)
	}
	if cfg.Analysis.Estimator != "fourier" {
		t.Errorf("Estimator = %q, want env override", cfg.Analysis.Estimator)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddress != ":9999" {
		t.Errorf("Transport = %+v, want env override", cfg.Transport)
	}
}

func TestLoadConfig_EnvOverrideIgnoresBadBool(t *testing.T) {
	t.Setenv("ENV_WS_ENABLED", "maybe")
	cfg, err := LoadConfig(writeTempConfig(t, "transport:\n  websocket_enabled: false\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transport.WebSocketEnabled {
		t.Error("unparseable ENV_WS_ENABLED should be ignored")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"Log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"Estimator", func(c *Config) { c.Analysis.Estimator = "wavelet" }, "analysis.estimator"},
		{"Window", func(c *Config) { c.Analysis.Window = "triangle" }, "analysis.window"},
		{"Odd frame", func(c *Config) { c.Analysis.FrameSize = 1001 }, "frame size"},
		{"Zero hop", func(c *Config) { c.Analysis.HopSize = 0 }, "hop size"},
		{"Hop beyond frame", func(c *Config) { c.Analysis.HopSize = 4096 }, "hop size"},
		{"Device", func(c *Config) { c.Capture.InputDevice = -2 }, "input_device"},
		{"Sample rate", func(c *Config) { c.Capture.SampleRate = 100 }, "sample_rate"},
		{"Channels", func(c *Config) { c.Capture.Channels = 0 }, "channels"},
		{"Buffer", func(c *Config) { c.Capture.FramesPerBuffer = MaxBufferFrames + 1 }, "frames_per_buffer"},
		{"Duration", func(c *Config) { c.Capture.Duration = 0 }, "duration"},
		{"Gate", func(c *Config) { c.Capture.GateThreshold = 2 }, "gate_threshold"},
		{"Bit depth", func(c *Config) { c.Capture.BitDepth = 8 }, "bit_depth"},
		{"WebSocket address", func(c *Config) { c.Transport.WebSocketEnabled = true; c.Transport.WebSocketAddress = "" }, "websocket_address"},
	}

	base := Default()
	if err := base.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}
