// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Workspace holds pre-allocated buffers for FFT calculations.
type Workspace struct {
	input     []float64    // ...for windowed real input samples
	fftOutput []complex128 // ...for FFT complex output
	magnitude []float64    // ...for raw magnitude output
	window    []float64    // ...for window function coefficients
}

// Processor computes magnitude spectra of fixed-size real frames. It is not
// safe for concurrent use; give each goroutine its own Processor.
type Processor struct {
	size      int
	fftObj    *fourier.FFT
	workspace Workspace
}

// NewProcessor creates a processor for frames of the given size. window must
// be nil (rectangular) or hold exactly size coefficients.
func NewProcessor(size int, window []float64) (*Processor, error) {
	if size < 2 {
		return nil, fmt.Errorf("fft size must be at least 2, got %d", size)
	}
	if window != nil && len(window) != size {
		return nil, fmt.Errorf("window length %d does not match fft size %d", len(window), size)
	}

	outputSize := size/2 + 1
	return &Processor{
		size:   size,
		fftObj: fourier.NewFFT(size),
		workspace: Workspace{
			input:     make([]float64, size),
			fftOutput: make([]complex128, outputSize),
			magnitude: make([]float64, outputSize),
			window:    window,
		},
	}, nil
}

// Size returns the number of points of the transform.
func (p *Processor) Size() int {
	return p.size
}

// Process windows the frame, runs the FFT and returns the size/2+1 bin
// magnitudes. Frames shorter than Size are zero-padded, longer ones are
// truncated. The returned slice is owned by the processor and is overwritten
// by the next call.
func (p *Processor) Process(frame []float64) []float64 {
	for i := range p.size {
		var s float64
		if i < len(frame) {
			s = frame[i]
		}
		if p.workspace.window != nil {
			s *= p.workspace.window[i]
		}
		p.workspace.input[i] = s
	}

	p.fftObj.Coefficients(p.workspace.fftOutput, p.workspace.input)
	for i, c := range p.workspace.fftOutput {
		p.workspace.magnitude[i] = cmplx.Abs(c)
	}
	return p.workspace.magnitude
}
