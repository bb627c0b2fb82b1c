package analysis

import (
	"math"
	"testing"
)

func TestFrameDescriptors(t *testing.T) {
	tests := []struct {
		name     string
		frame    []float64
		rate     int
		rms      float64
		centroid float64
		rolloff  float64
		zcr      float64
	}{
		{"Silent", []float64{0, 0, 0, 0}, 8, 0, 0, 4, 0},
		{"Empty", nil, 8, 0, 0, 4, 0},
		{"Leading impulse", []float64{1, 0, 0, 0}, 8, 0.5, 0, 0, 0},
		{"Trailing impulse", []float64{0, 0, 0, 1}, 8, 0.5, 6, 6, 0},
		{"Alternating", []float64{1, -1, 1, -1}, 8, 1, 3, 6, 1},
		{"Zero counts as non-negative", []float64{0, -1}, 4, math.Sqrt(0.5), 2, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrameRMS(tt.frame); math.Abs(got-tt.rms) > 1e-12 {
				t.Errorf("FrameRMS = %f, want %f", got, tt.rms)
			}
			if got := FrameCentroid(tt.frame, tt.rate); math.Abs(got-tt.centroid) > 1e-12 {
				t.Errorf("FrameCentroid = %f, want %f", got, tt.centroid)
			}
			if got := FrameRolloff(tt.frame, tt.rate); math.Abs(got-tt.rolloff) > 1e-12 {
				t.Errorf("FrameRolloff = %f, want %f", got, tt.rolloff)
			}
			if got := FrameZCR(tt.frame); math.Abs(got-tt.zcr) > 1e-12 {
				t.Errorf("FrameZCR = %f, want %f", got, tt.zcr)
			}
		})
	}
}

func TestExtractFeaturesNoFrames(t *testing.T) {
	v := ExtractFeatures(nil, 44100)
	if v != (FeatureVector{}) {
		t.Errorf("ExtractFeatures(nil) = %+v, want zero vector", v)
	}
	s := NormalizeFeatures(v)
	for name, f := range map[string]float64{
		"energy": s.Energy, "density": s.Density, "centroid": s.SpectralCentroid,
		"rolloff": s.SpectralRolloff, "zcr": s.ZeroCrossingRate,
	} {
		if math.IsNaN(f) || f != 0 {
			t.Errorf("%s = %f, want 0", name, f)
		}
	}
}

func TestExtractFeaturesAggregates(t *testing.T) {
	frames := [][]float64{
		{1, 1, 1, 1},   // rms 1, zcr 0
		{1, -1, 1, -1}, // rms 1, zcr 1
		{0, 0, 0, 0},   // rms 0, zcr 0
	}
	v := ExtractFeatures(frames, 8)

	if want := 2.0 / 3.0; math.Abs(v.RMSMean-want) > 1e-12 {
		t.Errorf("RMSMean = %f, want %f", v.RMSMean, want)
	}
	// population variance of {1, 1, 0}
	if want := 2.0 / 9.0; math.Abs(v.RMSVar-want) > 1e-12 {
		t.Errorf("RMSVar = %f, want %f", v.RMSVar, want)
	}
	if want := 1.0 / 3.0; math.Abs(v.ZCRMean-want) > 1e-12 {
		t.Errorf("ZCRMean = %f, want %f", v.ZCRMean, want)
	}
	// rolloff: frame 0 reaches 85% at j=3 (6 Hz), frame 1 likewise, silent frame 4 Hz
	if want := (6.0 + 6.0 + 4.0) / 3; math.Abs(v.RolloffMean-want) > 1e-12 {
		t.Errorf("RolloffMean = %f, want %f", v.RolloffMean, want)
	}
	// centroid: frames 0 and 1 weight bins 0,2,4,6 equally -> 3; silent -> 0
	if want := 2.0; math.Abs(v.CentroidMean-want) > 1e-12 {
		t.Errorf("CentroidMean = %f, want %f", v.CentroidMean, want)
	}
	if v.RMSVar < 0 || v.CentroidVar < 0 {
		t.Errorf("variances must be non-negative: %+v", v)
	}
}

func TestNormalizeFeatures(t *testing.T) {
	tests := []struct {
		name        string
		in          FeatureVector
		wantEnergy  float64
		wantDensity float64
	}{
		{"Scaled", FeatureVector{RMSMean: 0.05, ZCRMean: 0.3}, 0.5, 0.6},
		{"Saturated", FeatureVector{RMSMean: 0.2, ZCRMean: 0.6}, 1, 1},
		{"Zero", FeatureVector{}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFeatures(tt.in)
			if math.Abs(got.Energy-tt.wantEnergy) > 1e-12 {
				t.Errorf("Energy = %f, want %f", got.Energy, tt.wantEnergy)
			}
			if math.Abs(got.Density-tt.wantDensity) > 1e-12 {
				t.Errorf("Density = %f, want %f", got.Density, tt.wantDensity)
			}
			if got.ZeroCrossingRate != tt.in.ZCRMean {
				t.Errorf("ZeroCrossingRate = %f, want %f", got.ZeroCrossingRate, tt.in.ZCRMean)
			}
		})
	}

	passthrough := NormalizeFeatures(FeatureVector{CentroidMean: 1234.5, RolloffMean: 6789})
	if passthrough.SpectralCentroid != 1234.5 || passthrough.SpectralRolloff != 6789 {
		t.Errorf("spectral descriptors not passed through: %+v", passthrough)
	}
}
