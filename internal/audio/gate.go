// SPDX-License-Identifier: MIT
package audio

// noiseGate silences whole buffers whose peak stays below threshold.
// A zero threshold leaves every buffer open.
type noiseGate struct {
	threshold float32
}

func newNoiseGate(threshold float64) noiseGate {
	return noiseGate{threshold: float32(min(max(threshold, 0), 1))}
}

// apply zeroes buf in place when it is below the threshold and reports
// whether the gate was open.
func (g noiseGate) apply(buf []float32) bool {
	if g.threshold == 0 {
		return true
	}
	var peak float32
	for _, s := range buf {
		peak = max(peak, s, -s)
	}
	if peak >= g.threshold {
		return true
	}
	clear(buf)
	return false
}
