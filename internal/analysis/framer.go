// SPDX-License-Identifier: MIT
package analysis

const (
	DefaultFrameSize = 1024 // Samples per analysis frame
	DefaultHopSize   = 512  // 50% overlap
)

// FrameCount returns how many full frames of frameSize fit in n samples when
// stepping by hop. A trailing partial frame is not counted.
func FrameCount(n, frameSize, hop int) int {
	if frameSize <= 0 || hop <= 0 || n < frameSize {
		return 0
	}
	return (n-frameSize)/hop + 1
}

// Frames slices samples into overlapping frames at offsets 0, hop, 2*hop, ...
// Each frame aliases the signal's backing array but has its capacity capped,
// so appending to a frame can never write into its neighbour.
func Frames(samples []float64, frameSize, hop int) [][]float64 {
	count := FrameCount(len(samples), frameSize, hop)
	frames := make([][]float64, count)
	for i := range count {
		start := i * hop
		end := start + frameSize
		frames[i] = samples[start:end:end]
	}
	return frames
}
