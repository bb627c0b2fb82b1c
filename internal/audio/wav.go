package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"audioprofile/internal/analysis"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for input that is not a PCM WAV stream.
var ErrInvalidWAV = errors.New("not a valid WAV file")

// DefaultBitDepth is used when writing captures.
const DefaultBitDepth = 16

// DecodeWAV reads the file at path into per-channel samples in [-1, 1].
func DecodeWAV(path string) (analysis.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	in, err := Decode(f)
	if err != nil {
		return analysis.Input{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return in, nil
}

// Decode reads a PCM WAV stream from r.
func Decode(r io.ReadSeeker) (analysis.Input, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return analysis.Input{}, ErrInvalidWAV
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return analysis.Input{}, err
	}

	channels := int(d.NumChans)
	bitDepth := int(d.BitDepth)
	if channels <= 0 || bitDepth <= 0 {
		return analysis.Input{}, fmt.Errorf("%w: %d channels at %d bits", ErrInvalidWAV, channels, bitDepth)
	}

	// 8-bit PCM is unsigned; wider depths are signed.
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := range frames {
		for c := range channels {
			out[c][i] = (float64(buf.Data[i*channels+c]) - offset) / scale
		}
	}

	return analysis.Input{Channels: out, SampleRate: int(d.SampleRate)}, nil
}

// WriteWAV writes in to path as PCM at bitDepth (16, 24 or 32).
func WriteWAV(path string, in analysis.Input, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, in, bitDepth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes in to w as PCM WAV. Samples are clamped to [-1, 1].
func Encode(w io.WriteSeeker, in analysis.Input, bitDepth int) error {
	if err := in.Validate(); err != nil {
		return err
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	channels := len(in.Channels)
	frames := len(in.Channels[0])
	peak := float64(int64(1)<<(bitDepth-1) - 1)

	data := make([]int, frames*channels)
	for i := range frames {
		for c, ch := range in.Channels {
			s := min(max(ch[i], -1), 1)
			data[i*channels+c] = int(math.Round(s * peak))
		}
	}

	enc := wav.NewEncoder(w, in.SampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  in.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}
