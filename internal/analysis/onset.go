package analysis

// OnsetDetector computes rectified spectral flux between consecutive
// spectrum frames. It holds the previous frame, so a detector must not be
// shared between analyses.
type OnsetDetector struct {
	prev []float64
}

// NewOnsetDetector returns a detector with no previous frame.
func NewOnsetDetector() *OnsetDetector {
	return &OnsetDetector{}
}

// Next returns the onset strength of spectrum relative to the previously
// seen frame: the sum over bins of max(0, spectrum[j]-prev[j]). The first
// frame has no predecessor and yields 0.
func (d *OnsetDetector) Next(spectrum []float64) float64 {
	defer func() { d.prev = spectrum }()

	if d.prev == nil {
		return 0
	}

	bins := min(len(spectrum), len(d.prev))
	var flux float64
	for j := range bins {
		if diff := spectrum[j] - d.prev[j]; diff > 0 {
			flux += diff
		}
	}
	return flux
}

// OnsetStrengths runs a fresh detector over spectra and returns one strength
// per frame, aligned 1:1 with the input.
func OnsetStrengths(spectra [][]float64) []float64 {
	d := NewOnsetDetector()
	onsets := make([]float64, len(spectra))
	for i, s := range spectra {
		onsets[i] = d.Next(s)
	}
	return onsets
}
