// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// rolloffFraction is the share of frame energy below the rolloff frequency.
const rolloffFraction = 0.85

// Empirical scale factors of the energy and density projections.
const (
	energyScale  = 10
	densityScale = 2
)

// FeatureVector aggregates per-frame descriptors over a whole signal. Means
// and variances are population statistics; with no frames every field is 0.
type FeatureVector struct {
	RMSMean      float64 `json:"rmsMean"`
	RMSVar       float64 `json:"rmsVar"`
	CentroidMean float64 `json:"centroidMean"`
	CentroidVar  float64 `json:"centroidVar"`
	RolloffMean  float64 `json:"rolloffMean"`
	ZCRMean      float64 `json:"zcrMean"`
}

// FeaturesSummary is the bounded projection of a FeatureVector consumed by
// the classifier.
type FeaturesSummary struct {
	Energy           float64 `json:"energy"`  // [0,1]
	Density          float64 `json:"density"` // [0,1]
	SpectralCentroid float64 `json:"spectralCentroid"`
	SpectralRolloff  float64 `json:"spectralRolloff"`
	ZeroCrossingRate float64 `json:"zeroCrossingRate"`
}

// FrameRMS returns sqrt(mean(x^2)), or 0 for an empty frame.
func FrameRMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// binFrequency maps sample index j of a frame to a pseudo-frequency.
func binFrequency(j, frameLen, sampleRate int) float64 {
	return float64(j) * float64(sampleRate) / float64(frameLen)
}

// FrameCentroid treats |x[j]| as the magnitude at j*sampleRate/len and
// returns the magnitude-weighted mean frequency, or 0 for a silent frame.
func FrameCentroid(frame []float64, sampleRate int) float64 {
	var weighted, total float64
	for j, s := range frame {
		mag := math.Abs(s)
		weighted += binFrequency(j, len(frame), sampleRate) * mag
		total += mag
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// FrameRolloff returns the pseudo-frequency at which the running sum of x^2
// first reaches 85% of the frame total. A silent frame never reaches it and
// reports the Nyquist frequency.
func FrameRolloff(frame []float64, sampleRate int) float64 {
	var total float64
	for _, s := range frame {
		total += s * s
	}

	threshold := rolloffFraction * total
	if total > 0 {
		var cumulative float64
		for j, s := range frame {
			cumulative += s * s
			if cumulative >= threshold {
				return binFrequency(j, len(frame), sampleRate)
			}
		}
	}
	return float64(sampleRate) / 2
}

// FrameZCR returns the fraction of adjacent sample pairs whose signs differ,
// with zero counted as non-negative. Frames shorter than two samples yield 0.
func FrameZCR(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

// ExtractFeatures computes the per-frame descriptors from the unwindowed
// time-domain frames and aggregates them.
func ExtractFeatures(frames [][]float64, sampleRate int) FeatureVector {
	if len(frames) == 0 {
		return FeatureVector{}
	}

	rms := make([]float64, len(frames))
	centroid := make([]float64, len(frames))
	rolloff := make([]float64, len(frames))
	zcr := make([]float64, len(frames))
	for i, frame := range frames {
		rms[i] = FrameRMS(frame)
		centroid[i] = FrameCentroid(frame, sampleRate)
		rolloff[i] = FrameRolloff(frame, sampleRate)
		zcr[i] = FrameZCR(frame)
	}

	var v FeatureVector
	v.RMSMean, v.RMSVar = stat.PopMeanVariance(rms, nil)
	v.CentroidMean, v.CentroidVar = stat.PopMeanVariance(centroid, nil)
	// Rounding in the compensated variance can dip just below zero.
	v.RMSVar = math.Max(0, v.RMSVar)
	v.CentroidVar = math.Max(0, v.CentroidVar)
	v.RolloffMean = stat.Mean(rolloff, nil)
	v.ZCRMean = stat.Mean(zcr, nil)
	return v
}

// NormalizeFeatures projects a FeatureVector onto the classifier's inputs:
// energy = min(1, 10*rmsMean), density = min(1, 2*zcrMean); the spectral
// descriptors pass through unchanged.
func NormalizeFeatures(v FeatureVector) FeaturesSummary {
	return FeaturesSummary{
		Energy:           math.Min(1, v.RMSMean*energyScale),
		Density:          math.Min(1, v.ZCRMean*densityScale),
		SpectralCentroid: v.CentroidMean,
		SpectralRolloff:  v.RolloffMean,
		ZeroCrossingRate: v.ZCRMean,
	}
}
