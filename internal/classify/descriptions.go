package classify

import "strings"

// styleDescriptions maps style tags to display text.
var styleDescriptions = map[string]string{
	"ballad":        "slow, emotive ballad",
	"lofi":          "lo-fi with a warm, soft texture",
	"r&b":           "smooth rhythm and blues",
	"soul":          "soulful, groove-driven",
	"ambient":       "spacious ambient",
	"chill":         "laid-back chill",
	"hip-hop":       "hip-hop with rhythmic vocals",
	"trap":          "trap with rolling hi-hats and heavy 808s",
	"pop":           "catchy pop",
	"indie":         "indie with a bright guitar edge",
	"alternative":   "alternative",
	"house":         "four-on-the-floor house",
	"electronic":    "electronic dance music",
	"synthpop":      "synth-driven pop",
	"new wave":      "new wave",
	"dnb":           "fast breakbeat drum and bass",
	"drum and bass": "drum and bass",
	"techno":        "driving techno",
	"industrial":    "harsh industrial",
	"punk":          "raw punk",
	"rock":          "guitar-driven rock",
	"hardcore":      "hardcore at full speed",
	"speed":         "very high tempo",
	"energetic":     "high energy",
	"bright":        "bright, treble-forward mix",
	"dark":          "dark, bass-heavy mix",
	"dense":         "dense arrangement",
	"percussive":    "strongly percussive",
}

// instrumentDescriptions maps instrument names to display text.
var instrumentDescriptions = map[string]string{
	"piano":           "piano",
	"acoustic guitar": "acoustic guitar",
	"soft vocals":     "soft, breathy vocals",
	"bass":            "bass",
	"drums":           "drum kit",
	"electric guitar": "electric guitar",
	"vocals":          "lead vocals",
	"synth":           "synthesizer",
	"pad":             "sustained synth pad",
	"soft percussion": "light percussion",
	"kick":            "kick drum",
	"snare":           "snare drum",
	"hi-hat":          "hi-hats",
	"breakbeat":       "chopped breakbeats",
	"percussion":      "percussion",
}

// describe maps each name through dict, passing unknown names through
// literally, and joins the results with ", ".
func describe(names []string, dict map[string]string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		if d, ok := dict[name]; ok {
			parts[i] = d
		} else {
			parts[i] = name
		}
	}
	return strings.Join(parts, ", ")
}

// DescribeStyles renders style tags as a human-readable genre description.
func DescribeStyles(tags []string) string {
	return describe(tags, styleDescriptions)
}

// DescribeInstruments renders instrument names as a human-readable list.
func DescribeInstruments(instruments []string) string {
	return describe(instruments, instrumentDescriptions)
}
