// SPDX-License-Identifier: MIT
package analysis

import "math"

// Tempo bounds and the estimate returned when the onset series has too few
// peaks to measure an interval.
const (
	MinBPM = 60
	MaxBPM = 200

	FallbackBPM        = 120
	FallbackConfidence = 0.1

	maxTempoConfidence = 0.9
)

// TempoEstimate is a heuristic tempo in beats per minute with a [0,1]
// confidence. It is always well-formed.
type TempoEstimate struct {
	BPM        int     `json:"bpm"`
	Confidence float64 `json:"confidence"`
}

// FallbackTempo is the estimate used when there is nothing to measure.
func FallbackTempo() TempoEstimate {
	return TempoEstimate{BPM: FallbackBPM, Confidence: FallbackConfidence}
}

// PickPeaks returns the indices i (1 <= i < len-1) where onsets[i] is strictly
// greater than both neighbours.
func PickPeaks(onsets []float64) []int {
	var peaks []int
	for i := 1; i < len(onsets)-1; i++ {
		if onsets[i] > onsets[i-1] && onsets[i] > onsets[i+1] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// intervalHistogram counts interval values in first-seen order so the mode
// is chosen deterministically: on a tie the value seen first wins.
type intervalHistogram struct {
	index  map[int]int // interval -> position in values/counts
	values []int
	counts []int
}

func newIntervalHistogram(capacity int) *intervalHistogram {
	return &intervalHistogram{
		index:  make(map[int]int, capacity),
		values: make([]int, 0, capacity),
		counts: make([]int, 0, capacity),
	}
}

func (h *intervalHistogram) add(interval int) {
	if pos, ok := h.index[interval]; ok {
		h.counts[pos]++
		return
	}
	h.index[interval] = len(h.values)
	h.values = append(h.values, interval)
	h.counts = append(h.counts, 1)
}

// mode returns the most frequent interval and its count, or (0, 0) when
// empty.
func (h *intervalHistogram) mode() (interval, count int) {
	for i, c := range h.counts {
		if c > count {
			interval, count = h.values[i], c
		}
	}
	return interval, count
}

// EstimateTempo derives a tempo from an onset-strength series whose entries
// are hop samples apart.
//
//  1. Local maxima of the series are the candidate beats.
//  2. The most frequent distance between consecutive peaks is the beat
//     period in frames.
//  3. The period converts to BPM, clamped to [MinBPM, MaxBPM] and rounded.
//  4. Confidence is the mode's share of all peaks, capped at 0.9.
//
// Fewer than two peaks, or a non-positive hop or sample rate, gives
// FallbackTempo.
func EstimateTempo(onsets []float64, hop, sampleRate int) TempoEstimate {
	if hop <= 0 || sampleRate <= 0 {
		return FallbackTempo()
	}

	peaks := PickPeaks(onsets)
	if len(peaks) < 2 {
		return FallbackTempo()
	}

	hist := newIntervalHistogram(len(peaks) - 1)
	for i := 1; i < len(peaks); i++ {
		hist.add(peaks[i] - peaks[i-1])
	}
	interval, count := hist.mode()

	intervalTime := float64(interval) * float64(hop) / float64(sampleRate)
	bpm := 60 / intervalTime
	bpm = math.Max(MinBPM, math.Min(MaxBPM, bpm))

	return TempoEstimate{
		BPM:        int(math.Round(bpm)),
		Confidence: math.Min(maxTempoConfidence, float64(count)/float64(len(peaks))),
	}
}
