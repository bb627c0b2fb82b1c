// SPDX-License-Identifier: MIT
package classify

import (
	"reflect"
	"slices"
	"testing"

	"audioprofile/internal/analysis"
)

func features(energy, density, centroid, rolloff, zcr float64) analysis.FeaturesSummary {
	return analysis.FeaturesSummary{
		Energy:           energy,
		Density:          density,
		SpectralCentroid: centroid,
		SpectralRolloff:  rolloff,
		ZeroCrossingRate: zcr,
	}
}

func containsAll(t *testing.T, kind string, got []string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !slices.Contains(got, w) {
			t.Errorf("%s %v missing %q", kind, got, w)
		}
	}
}

func TestClassifyBallad(t *testing.T) {
	r := Classify(70, features(0.3, 0.2, 800, 3000, 0.05))
	containsAll(t, "styleTags", r.StyleTags, "ballad", "lofi")
	containsAll(t, "instruments", r.ProbableInstruments, "piano", "acoustic guitar")
}

func TestClassifyFastBand(t *testing.T) {
	tests := []struct {
		name        string
		f           analysis.FeaturesSummary
		tags        []string
		instruments []string
	}{
		{"Dense drum and bass", features(0.8, 0.75, 2500, 6000, 0.15), []string{"dnb", "drum and bass"}, []string{"kick", "bass"}},
		{"Noisy techno", features(0.8, 0.7, 2500, 6000, 0.16), []string{"techno", "industrial"}, []string{"kick", "bass"}},
		{"Density at threshold falls through", features(0.8, 0.7, 2500, 6000, 0.15), []string{"punk", "rock"}, []string{"electric guitar", "bass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(140, tt.f)
			containsAll(t, "styleTags", r.StyleTags, tt.tags...)
			containsAll(t, "instruments", r.ProbableInstruments, tt.instruments...)
		})
	}
}

func TestClassifyEnergeticRefinement(t *testing.T) {
	r := Classify(120, analysis.FeaturesSummary{Energy: 0.9})
	containsAll(t, "styleTags", r.StyleTags, "energetic")
	containsAll(t, "instruments", r.ProbableInstruments, "drums")
}

func TestClassifyBandBoundaries(t *testing.T) {
	// Features chosen so each band takes its last (default) branch and no
	// refinement fires.
	f := features(0.5, 0.5, 1500, 3000, 0.05)
	tests := []struct {
		bpm   int
		first string
	}{
		{59, ""},
		{60, "ambient"},
		{85, "ambient"},
		{86, "pop"},
		{110, "pop"},
		{111, "synthpop"},
		{130, "synthpop"},
		{131, "punk"},
		{160, "punk"},
		{161, "hardcore"},
		{200, "hardcore"},
	}
	for _, tt := range tests {
		r := Classify(tt.bpm, f)
		got := ""
		if len(r.StyleTags) > 0 {
			got = r.StyleTags[0]
		}
		if got != tt.first {
			t.Errorf("bpm %d: first tag = %q, want %q (tags %v)", tt.bpm, got, tt.first, r.StyleTags)
		}
	}
}

func TestClassifyTruncatesAndDeduplicates(t *testing.T) {
	// Every refinement fires: 2 band tags + 5 refinement tags.
	r := Classify(100, features(0.9, 0.9, 3500, 8000, 0.3))

	wantTags := []string{"hip-hop", "trap", "energetic", "bright", "dense"}
	if !reflect.DeepEqual(r.StyleTags, wantTags) {
		t.Errorf("StyleTags = %v, want %v", r.StyleTags, wantTags)
	}
	// "hi-hat" from the refinement is already present from the band rule.
	wantInstruments := []string{"kick", "snare", "bass", "hi-hat", "vocals", "drums"}
	if !reflect.DeepEqual(r.ProbableInstruments, wantInstruments) {
		t.Errorf("ProbableInstruments = %v, want %v", r.ProbableInstruments, wantInstruments)
	}
}

func TestClassifyLimitsHold(t *testing.T) {
	centroids := []float64{0, 400, 999, 1500, 2500, 3500}
	levels := []float64{0, 0.12, 0.18, 0.25, 0.65, 0.75, 0.85, 1}
	for bpm := 40; bpm <= 220; bpm += 5 {
		for _, c := range centroids {
			for _, l := range levels {
				r := Classify(bpm, features(l, l, c, c*2, l/2))
				if len(r.StyleTags) > MaxStyleTags {
					t.Fatalf("bpm %d: %d style tags", bpm, len(r.StyleTags))
				}
				if len(r.ProbableInstruments) > MaxInstruments {
					t.Fatalf("bpm %d: %d instruments", bpm, len(r.ProbableInstruments))
				}
				assertUnique(t, r.StyleTags)
				assertUnique(t, r.ProbableInstruments)
			}
		}
	}
}

func assertUnique(t *testing.T, items []string) {
	t.Helper()
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it] {
			t.Fatalf("duplicate %q in %v", it, items)
		}
		seen[it] = true
	}
}

func TestClassifyDeterministic(t *testing.T) {
	f := features(0.85, 0.65, 450, 5200, 0.22)
	first := Classify(118, f)
	second := Classifier{}.Classify(118, f)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestDescriptions(t *testing.T) {
	r := Classify(70, features(0.3, 0.2, 800, 3000, 0.05))
	if r.GenreDescription != "slow, emotive ballad, lo-fi with a warm, soft texture" {
		t.Errorf("GenreDescription = %q", r.GenreDescription)
	}
	if r.InstrumentDescription != "piano, acoustic guitar, soft, breathy vocals" {
		t.Errorf("InstrumentDescription = %q", r.InstrumentDescription)
	}
	if got := DescribeStyles([]string{"polka", "rock"}); got != "polka, guitar-driven rock" {
		t.Errorf("unknown tag should pass through, got %q", got)
	}
	if got := DescribeInstruments(nil); got != "" {
		t.Errorf("DescribeInstruments(nil) = %q, want empty", got)
	}
}
