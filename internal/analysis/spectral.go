// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"strings"

	"audioprofile/internal/fft"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the window applied to each frame before spectral
// estimation.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
	Rectangular
)

func (w WindowFunc) String() string {
	switch w {
	case BartlettHann:
		return "bartletthann"
	case Blackman:
		return "blackman"
	case BlackmanNuttall:
		return "blackmannuttall"
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Lanczos:
		return "lanczos"
	case Nuttall:
		return "nuttall"
	case Rectangular:
		return "rectangular"
	default:
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	case "rectangular", "none":
		return Rectangular, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: '%s'", name)
	}
}

// WindowCoefficients returns size coefficients of the selected window. The
// gonum windows are symmetric, so Hann is 0.5*(1-cos(2*pi*j/(size-1))).
func WindowCoefficients(size int, windowType WindowFunc) []float64 {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	if size < 2 {
		return coeffs
	}

	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Rectangular:
	default:
		window.Hann(coeffs)
	}
	return coeffs
}

// SpectralEstimator turns one time-domain frame into a magnitude-like vector
// of half the frame length. Implementations may keep scratch buffers and are
// not required to be safe for concurrent use.
type SpectralEstimator interface {
	Estimate(frame []float64) []float64
}

// EstimatorKind names a SpectralEstimator implementation.
type EstimatorKind string

const (
	// EstimatorHalfSplit is the positional proxy every downstream threshold
	// was tuned against.
	EstimatorHalfSplit EstimatorKind = "halfsplit"
	// EstimatorFourier computes true DFT bin magnitudes.
	EstimatorFourier EstimatorKind = "fourier"
)

// ParseEstimatorKind validates an estimator name (case-insensitive).
func ParseEstimatorKind(name string) (EstimatorKind, error) {
	switch kind := EstimatorKind(strings.ToLower(name)); kind {
	case EstimatorHalfSplit, EstimatorFourier:
		return kind, nil
	case "":
		return EstimatorHalfSplit, nil
	default:
		return EstimatorHalfSplit, fmt.Errorf("unknown spectral estimator: '%s'", name)
	}
}

// NewEstimator builds the estimator of the given kind for frames of
// frameSize samples.
func NewEstimator(kind EstimatorKind, frameSize int, windowType WindowFunc) (SpectralEstimator, error) {
	switch kind {
	case EstimatorHalfSplit, "":
		return NewHalfSplitEstimator(frameSize, windowType), nil
	case EstimatorFourier:
		return NewFourierEstimator(frameSize, windowType)
	default:
		return nil, fmt.Errorf("unknown spectral estimator: '%s'", kind)
	}
}

// HalfSplitEstimator windows the frame, then reads the first half as real
// parts and the second half as imaginary parts of the same index:
//
//	magnitude[j] = sqrt(w[j]^2 + w[j+F/2]^2), j in [0, F/2)
//
// This is not a frequency transform. It is a cheap positional proxy and is
// the default because the classifier thresholds depend on its scale.
type HalfSplitEstimator struct {
	window []float64
}

// NewHalfSplitEstimator precomputes the window for frames of frameSize.
func NewHalfSplitEstimator(frameSize int, windowType WindowFunc) *HalfSplitEstimator {
	return &HalfSplitEstimator{window: WindowCoefficients(frameSize, windowType)}
}

// Estimate returns a new slice of len(window)/2 magnitudes. Missing samples
// in a short frame are treated as zero.
func (e *HalfSplitEstimator) Estimate(frame []float64) []float64 {
	half := len(e.window) / 2
	mags := make([]float64, half)
	for j := range half {
		re := windowed(frame, e.window, j)
		im := windowed(frame, e.window, j+half)
		mags[j] = math.Sqrt(re*re + im*im)
	}
	return mags
}

func windowed(frame, coeffs []float64, i int) float64 {
	if i >= len(frame) {
		return 0
	}
	return frame[i] * coeffs[i]
}

// FourierEstimator returns the magnitudes of DFT bins [0, F/2) of the
// windowed frame.
type FourierEstimator struct {
	processor *fft.Processor
}

// NewFourierEstimator allocates an FFT processor sized for frameSize.
func NewFourierEstimator(frameSize int, windowType WindowFunc) (*FourierEstimator, error) {
	processor, err := fft.NewProcessor(frameSize, WindowCoefficients(frameSize, windowType))
	if err != nil {
		return nil, fmt.Errorf("failed to create fourier estimator: %w", err)
	}
	return &FourierEstimator{processor: processor}, nil
}

// Estimate copies the first F/2 bin magnitudes out of the processor buffer.
func (e *FourierEstimator) Estimate(frame []float64) []float64 {
	mags := e.processor.Process(frame)
	out := make([]float64, e.processor.Size()/2)
	copy(out, mags)
	return out
}

// Compile-time checks for interface implementations.
var (
	_ SpectralEstimator = (*HalfSplitEstimator)(nil)
	_ SpectralEstimator = (*FourierEstimator)(nil)
)
