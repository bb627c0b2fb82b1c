// SPDX-License-Identifier: MIT
/*
Package audio supplies decoded signals to the analysis pipeline:
  - WAV files via go-audio/wav
  - live input via PortAudio, with an optional noise gate
  - WAV output for captured signals

Samples are float64 in [-1, 1], one slice per channel.
*/
package audio

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"audioprofile/internal/analysis"
	applog "audioprofile/internal/log"

	"github.com/gordonklaus/portaudio"
)

// CaptureOptions configures a live capture.
type CaptureOptions struct {
	Device          int
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	Duration        time.Duration
	LowLatency      bool
	GateThreshold   float64
}

// Validate checks that the options describe a non-empty capture.
func (o CaptureOptions) Validate() error {
	switch {
	case o.SampleRate <= 0:
		return fmt.Errorf("sample rate must be positive, got %v", o.SampleRate)
	case o.Channels <= 0:
		return fmt.Errorf("channels must be positive, got %d", o.Channels)
	case o.FramesPerBuffer <= 0:
		return fmt.Errorf("frames per buffer must be positive, got %d", o.FramesPerBuffer)
	case o.Duration <= 0:
		return fmt.Errorf("duration must be positive, got %v", o.Duration)
	}
	return nil
}

func (o CaptureOptions) totalFrames() int {
	return int(o.Duration.Seconds() * o.SampleRate)
}

// recorder collects interleaved callback buffers into a fixed-size slice.
type recorder struct {
	buf      []float32
	written  atomic.Int64
	gate     noiseGate
	gated    atomic.Int64
	full     chan struct{}
	fullOnce sync.Once
}

func newRecorder(samples int, gate noiseGate) *recorder {
	return &recorder{
		buf:  make([]float32, samples),
		gate: gate,
		full: make(chan struct{}),
	}
}

// process is the PortAudio callback. It performs no allocations.
func (r *recorder) process(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	pos := int(r.written.Load())
	if pos >= len(r.buf) {
		return
	}
	n := copy(r.buf[pos:], in)
	if !r.gate.apply(r.buf[pos : pos+n]) {
		r.gated.Add(1)
	}
	if r.written.Add(int64(n)) >= int64(len(r.buf)) {
		r.fullOnce.Do(func() { close(r.full) })
	}
}

func (r *recorder) samples() []float32 {
	return r.buf[:r.written.Load()]
}

// Capture records from an input device until opts.Duration of audio has
// been collected or ctx ends. On cancellation the partial capture is
// returned together with ctx.Err().
func Capture(ctx context.Context, opts CaptureOptions) (analysis.Input, error) {
	if err := opts.Validate(); err != nil {
		return analysis.Input{}, fmt.Errorf("invalid capture options: %w", err)
	}

	if err := Initialize(); err != nil {
		return analysis.Input{}, err
	}
	defer Terminate()

	device, err := InputDevice(opts.Device)
	if err != nil {
		return analysis.Input{}, err
	}

	latency := device.DefaultHighInputLatency
	if opts.LowLatency {
		latency = device.DefaultLowInputLatency
	}

	rec := newRecorder(opts.totalFrames()*opts.Channels, newNoiseGate(opts.GateThreshold))
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: opts.Channels,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: opts.FramesPerBuffer,
		SampleRate:      opts.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, rec.process)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("failed to open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return analysis.Input{}, fmt.Errorf("failed to start input stream: %w", err)
	}
	applog.Infof("Capture: recording %v from %q at %.0f Hz", opts.Duration, device.Name, opts.SampleRate)

	var waitErr error
	select {
	case <-rec.full:
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	if err := stream.Stop(); err != nil {
		return analysis.Input{}, fmt.Errorf("failed to stop input stream: %w", err)
	}
	if n := rec.gated.Load(); n > 0 {
		applog.Debugf("Capture: noise gate closed %d buffers", n)
	}

	in, err := Deinterleave(rec.samples(), opts.Channels, int(opts.SampleRate))
	if err != nil {
		return analysis.Input{}, err
	}
	return in, waitErr
}

// Deinterleave splits frame-interleaved samples into one slice per channel.
// A trailing incomplete frame is discarded.
func Deinterleave(interleaved []float32, channels, sampleRate int) (analysis.Input, error) {
	if channels <= 0 {
		return analysis.Input{}, errors.New("channels must be positive")
	}

	frames := len(interleaved) / channels
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := range frames {
		for c := range channels {
			out[c][i] = float64(interleaved[i*channels+c])
		}
	}
	return analysis.Input{Channels: out, SampleRate: sampleRate}, nil
}
