// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoChannels            = errors.New("input has no channels")
	ErrChannelLengthMismatch = errors.New("input channels differ in length")
	ErrInvalidSampleRate     = errors.New("sample rate must be positive")
)

// Input is a decoded, multi-channel signal as handed over by a decoder or a
// capture device. Every channel must hold the same number of samples.
type Input struct {
	Channels   [][]float64
	SampleRate int
}

// Validate reports structural problems that make the input impossible to
// analyze. Silent or empty channels are valid.
func (in Input) Validate() error {
	if in.SampleRate <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidSampleRate, in.SampleRate)
	}
	if len(in.Channels) == 0 {
		return ErrNoChannels
	}
	n := len(in.Channels[0])
	for i, ch := range in.Channels[1:] {
		if len(ch) != n {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrChannelLengthMismatch, i+1, len(ch), n)
		}
	}
	return nil
}

// Clone returns a deep copy so the input can cross a goroutine boundary
// without sharing backing arrays with the caller.
func (in Input) Clone() Input {
	out := Input{SampleRate: in.SampleRate}
	if in.Channels == nil {
		return out
	}
	out.Channels = make([][]float64, len(in.Channels))
	for i, ch := range in.Channels {
		out.Channels[i] = append([]float64(nil), ch...)
	}
	return out
}

// Signal is the mono, peak-normalized form of an Input. It is never mutated
// after Preprocess returns it.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Len returns the number of samples.
func (s Signal) Len() int {
	return len(s.Samples)
}

// Preprocess validates the input, downmixes it to mono and peak-normalizes
// the result.
func Preprocess(in Input) (Signal, error) {
	if err := in.Validate(); err != nil {
		return Signal{}, err
	}
	return Signal{
		Samples:    Normalize(Downmix(in.Channels)),
		SampleRate: in.SampleRate,
	}, nil
}

// Downmix averages all channels sample by sample. A single channel is returned
// as is, without copying. Channels are assumed to have equal length.
func Downmix(channels [][]float64) []float64 {
	switch len(channels) {
	case 0:
		return nil
	case 1:
		return channels[0]
	}

	mono := make([]float64, len(channels[0]))
	for _, ch := range channels {
		floats.Add(mono, ch)
	}
	floats.Scale(1/float64(len(channels)), mono)
	return mono
}

// Normalize returns a copy of samples divided by its peak absolute value, so
// every output lies in [-1, 1]. An all-zero input yields all zeros.
func Normalize(samples []float64) []float64 {
	out := make([]float64, len(samples))
	if len(samples) == 0 {
		return out
	}

	peak := max(floats.Max(samples), -floats.Min(samples))
	if peak == 0 {
		return out
	}

	// Division keeps |out[i]| <= 1 exactly; multiplying by 1/peak does not.
	for i, s := range samples {
		out[i] = s / peak
	}
	return out
}
