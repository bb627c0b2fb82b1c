// SPDX-License-Identifier: MIT
/*
Package classify maps a tempo and a feature summary to style tags and
probable instruments using fixed, ordered rules.

Rule order:
  - one primary rule chosen by BPM band (first matching band wins)
  - additive refinements on energy, centroid, density and ZCR
  - de-duplication preserving first-seen order, then truncation

The classifier is stateless; equal inputs always give equal outputs.
*/
package classify

import "audioprofile/internal/analysis"

const (
	MaxStyleTags   = 5
	MaxInstruments = 6
)

// Result is the classifier output.
type Result struct {
	StyleTags             []string `json:"styleTags"`
	ProbableInstruments   []string `json:"probableInstruments"`
	GenreDescription      string   `json:"genreDescription"`
	InstrumentDescription string   `json:"instrumentDescription"`
}

// Classifier is the zero-size handle passed to the pipeline as stage B.
type Classifier struct{}

// Classify implements the stage B contract by delegating to Classify.
func (Classifier) Classify(bpm int, f analysis.FeaturesSummary) Result {
	return Classify(bpm, f)
}

// orderedSet keeps insertion order and ignores repeated values.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(values ...string) {
	for _, v := range values {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

// first returns a copy of at most n items.
func (s *orderedSet) first(n int) []string {
	out := make([]string, min(n, len(s.items)))
	copy(out, s.items)
	return out
}

// Classify evaluates the rules for bpm and f.
func Classify(bpm int, f analysis.FeaturesSummary) Result {
	tags := newOrderedSet()
	instruments := newOrderedSet()

	applyBandRule(bpm, f, tags, instruments)
	applyRefinements(f, tags, instruments)

	styleTags := tags.first(MaxStyleTags)
	probable := instruments.first(MaxInstruments)
	return Result{
		StyleTags:             styleTags,
		ProbableInstruments:   probable,
		GenreDescription:      DescribeStyles(styleTags),
		InstrumentDescription: DescribeInstruments(probable),
	}
}

// applyBandRule adds the primary tags for the first BPM band containing bpm.
// Bands share their boundaries; a boundary tempo belongs to the lower band.
// Tempos below 60 match no band.
func applyBandRule(bpm int, f analysis.FeaturesSummary, tags, instruments *orderedSet) {
	centroid, rolloff := f.SpectralCentroid, f.SpectralRolloff
	zcr, energy, density := f.ZeroCrossingRate, f.Energy, f.Density

	if bpm >= 60 && bpm <= 85 {
		switch {
		case centroid < 1000:
			tags.add("ballad", "lofi")
			instruments.add("piano", "acoustic guitar", "soft vocals")
		case energy > 0.7:
			tags.add("r&b", "soul")
			instruments.add("bass", "drums", "electric guitar", "vocals")
		default:
			tags.add("ambient", "chill")
			instruments.add("synth", "pad", "soft percussion")
		}
	} else if bpm >= 85 && bpm <= 110 {
		switch {
		case zcr > 0.1:
			tags.add("hip-hop", "trap")
			instruments.add("kick", "snare", "bass", "hi-hat", "vocals")
		case centroid > 2000:
			tags.add("pop", "indie")
			instruments.add("electric guitar", "bass", "drums", "vocals")
		default:
			tags.add("pop", "alternative")
			instruments.add("acoustic guitar", "bass", "drums", "vocals")
		}
	} else if bpm >= 110 && bpm <= 130 {
		if rolloff > 5000 {
			tags.add("house", "electronic")
			instruments.add("kick", "bass", "synth", "hi-hat")
		} else {
			tags.add("synthpop", "new wave")
			instruments.add("synth", "bass", "drums", "vocals")
		}
	} else if bpm >= 130 && bpm <= 160 {
		switch {
		case density > 0.7:
			tags.add("dnb", "drum and bass")
			instruments.add("kick", "snare", "bass", "hi-hat", "breakbeat")
		case zcr > 0.15:
			tags.add("techno", "industrial")
			instruments.add("kick", "bass", "synth", "percussion")
		default:
			tags.add("punk", "rock")
			instruments.add("electric guitar", "bass", "drums", "vocals")
		}
	} else if bpm > 160 {
		tags.add("hardcore", "speed")
		instruments.add("kick", "snare", "bass", "electric guitar", "vocals")
	}
}

// applyRefinements adds one tag and one instrument per satisfied feature
// condition, in fixed order.
func applyRefinements(f analysis.FeaturesSummary, tags, instruments *orderedSet) {
	if f.Energy > 0.8 {
		tags.add("energetic")
		instruments.add("drums")
	}
	if f.SpectralCentroid > 3000 {
		tags.add("bright")
		instruments.add("electric guitar")
	}
	if f.SpectralCentroid < 500 {
		tags.add("dark")
		instruments.add("bass")
	}
	if f.Density > 0.6 {
		tags.add("dense")
		instruments.add("percussion")
	}
	if f.ZeroCrossingRate > 0.2 {
		tags.add("percussive")
		instruments.add("hi-hat")
	}
}
