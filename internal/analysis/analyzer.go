// SPDX-License-Identifier: MIT
/*
Package analysis turns a decoded audio signal into a tempo estimate and a
bounded feature summary.

Stage layout, each step a pure function of the previous one:

	Input -> Preprocess -> Frames -> SpectralEstimator -> OnsetStrengths -> EstimateTempo
	                          \----> ExtractFeatures -> NormalizeFeatures

Spectrum frames and the onset series are local to one Analyze call. Only
the TempoEstimate and FeaturesSummary values leave the package.
*/
package analysis

import (
	"context"
	"fmt"

	applog "audioprofile/internal/log"
)

// Options configures framing and spectral estimation.
type Options struct {
	FrameSize int
	HopSize   int
	Estimator EstimatorKind
	Window    WindowFunc
}

// DefaultOptions returns 1024-sample frames, a 512-sample hop, a Hann window
// and the half-split estimator.
func DefaultOptions() Options {
	return Options{
		FrameSize: DefaultFrameSize,
		HopSize:   DefaultHopSize,
		Estimator: EstimatorHalfSplit,
		Window:    Hann,
	}
}

// Validate checks framing parameters.
func (o Options) Validate() error {
	if o.FrameSize < 2 || o.FrameSize%2 != 0 {
		return fmt.Errorf("frame size must be an even number >= 2, got %d", o.FrameSize)
	}
	if o.HopSize <= 0 || o.HopSize > o.FrameSize {
		return fmt.Errorf("hop size must be in [1, %d], got %d", o.FrameSize, o.HopSize)
	}
	if _, err := ParseEstimatorKind(string(o.Estimator)); err != nil {
		return err
	}
	return nil
}

// Summary is the outcome of stage A.
type Summary struct {
	Tempo    TempoEstimate   `json:"tempo"`
	Features FeaturesSummary `json:"features"`
}

// Analyzer runs the signal-processing stages. It holds only configuration and
// is safe for concurrent use.
type Analyzer struct {
	opts Options
}

// NewAnalyzer validates opts and returns an Analyzer.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis options: %w", err)
	}
	return &Analyzer{opts: opts}, nil
}

// DefaultAnalyzer returns an Analyzer configured with DefaultOptions.
func DefaultAnalyzer() *Analyzer {
	return &Analyzer{opts: DefaultOptions()}
}

// Options returns the analyzer configuration.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze runs Preprocess through NormalizeFeatures. Structural input
// problems are returned as errors; numeric degenerate cases (silence, a
// signal shorter than one frame) produce default values instead.
// Cancellation of ctx is checked between steps only.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (Summary, error) {
	signal, err := Preprocess(in)
	if err != nil {
		return Summary{}, err
	}

	frames := Frames(signal.Samples, a.opts.FrameSize, a.opts.HopSize)
	applog.Debugf("Analysis: %d samples at %d Hz -> %d frames", signal.Len(), signal.SampleRate, len(frames))
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	estimator, err := NewEstimator(a.opts.Estimator, a.opts.FrameSize, a.opts.Window)
	if err != nil {
		return Summary{}, err
	}
	spectra := make([][]float64, len(frames))
	for i, frame := range frames {
		spectra[i] = estimator.Estimate(frame)
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	tempo := EstimateTempo(OnsetStrengths(spectra), a.opts.HopSize, signal.SampleRate)
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	features := NormalizeFeatures(ExtractFeatures(frames, signal.SampleRate))
	applog.Debugf("Analysis: tempo %d BPM (confidence %.2f), energy %.3f, density %.3f",
		tempo.BPM, tempo.Confidence, features.Energy, features.Density)

	return Summary{Tempo: tempo, Features: features}, nil
}
