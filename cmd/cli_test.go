package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"audioprofile/internal/analysis"
	"audioprofile/internal/audio"
)

// writeClickTrack writes 3 s of clicks every 43 hops of 512 samples.
func writeClickTrack(t *testing.T) string {
	t.Helper()
	const rate = 44100
	samples := make([]float64, 3*rate)
	for p := 43*512 + 256; p < len(samples); p += 43 * 512 {
		samples[p] = 1
	}
	path := filepath.Join(t.TempDir(), "clicks.wav")
	in := analysis.Input{Channels: [][]float64{samples}, SampleRate: rate}
	if err := audio.WriteWAV(path, in, 16); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "audioprofile") {
		t.Errorf("version output = %q", out)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeClickTrack(t)

	for _, estimator := range []string{"halfsplit", "fourier"} {
		t.Run(estimator, func(t *testing.T) {
			out, err := run(t, "analyze", "--json", "--estimator", estimator, path)
			if err != nil {
				t.Fatalf("analyze: %v", err)
			}

			var got struct {
				Source     string   `json:"source"`
				BPM        int      `json:"bpm"`
				Confidence float64  `json:"confidence"`
				StyleTags  []string `json:"styleTags"`
				Features   struct {
					Energy float64 `json:"energy"`
				} `json:"features"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("invalid JSON %q: %v", out, err)
			}
			if got.Source != path {
				t.Errorf("source = %q, want %q", got.Source, path)
			}
			if got.BPM != 120 {
				t.Errorf("bpm = %d, want 120", got.BPM)
			}
			if got.Features.Energy < 0 || got.Features.Energy > 1 {
				t.Errorf("energy = %f out of range", got.Features.Energy)
			}
		})
	}
}

func TestAnalyzeReport(t *testing.T) {
	out, err := run(t, "analyze", writeClickTrack(t))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "120 BPM") {
		t.Errorf("report missing tempo:\n%s", out)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	if _, err := run(t, "analyze"); err == nil {
		t.Error("expected error without files")
	}
	if _, err := run(t, "analyze", filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := run(t, "analyze", "--estimator", "wavelet", writeClickTrack(t)); err == nil {
		t.Error("expected error for unknown estimator")
	}
}
