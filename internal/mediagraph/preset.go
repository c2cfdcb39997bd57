// Package mediagraph implements domain.Timeline for generated test
// patterns: labelled bars per frame and a sine tone per second. It lets the
// player run end to end without a decoder.
package mediagraph

import (
	"fmt"
	"slices"
	"strings"

	levenshtein "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Preset describes a generated timeline
type Preset struct {
	Name        string
	Description string
	Rate        float64 // frames per second
	Start       float64 // global start time in seconds
	Duration    float64 // seconds
	Layers      int     // video layers
	Width       int
	Height      int
	Audio       *domain.AudioFormat
	AudioLayers int
	ToneHz      float64
	Transitions bool // blend layer 0 into the next clip every clip boundary
}

var stereoF32 = domain.AudioFormat{Channels: 2, SampleRate: 48000, Format: domain.SampleFloat32}
var stereoS16 = domain.AudioFormat{Channels: 2, SampleRate: 48000, Format: domain.SampleInt16}

// Presets lists the built-in timelines
var Presets = []Preset{
	{
		Name:        "smpte-24",
		Description: "24 fps bars starting at 01:00:00:00 with a 440 Hz tone",
		Rate:        24, Start: 3600, Duration: 60,
		Layers: 1, Width: 64, Height: 36,
		Audio: &stereoF32, AudioLayers: 1, ToneHz: 440,
	},
	{
		Name:        "pal-25",
		Description: "25 fps bars with 16-bit audio",
		Rate:        25, Duration: 30,
		Layers: 1, Width: 64, Height: 36,
		Audio: &stereoS16, AudioLayers: 1, ToneHz: 1000,
	},
	{
		Name:        "ntsc-2997",
		Description: "29.97 fps bars",
		Rate:        30000.0 / 1001.0, Duration: 30,
		Layers: 1, Width: 64, Height: 36,
		Audio: &stereoF32, AudioLayers: 1, ToneHz: 440,
	},
	{
		Name:        "silent-30",
		Description: "30 fps bars without audio",
		Rate:        30, Duration: 20,
		Layers: 1, Width: 64, Height: 36,
	},
	{
		Name:        "multicam-24",
		Description: "four camera layers with dissolves and two audio tracks",
		Rate:        24, Duration: 120,
		Layers: 4, Width: 64, Height: 36,
		Audio: &stereoF32, AudioLayers: 2, ToneHz: 330,
		Transitions: true,
	},
}

// PresetNames returns the names of all built-in presets
func PresetNames() []string {
	names := make([]string, len(Presets))
	for i, p := range Presets {
		names[i] = p.Name
	}
	return names
}

// FindPreset returns the preset best matching name. An exact match wins;
// otherwise the highest scoring fuzzy match is used. When nothing matches,
// the error lists the closest names by edit distance.
func FindPreset(name string) (Preset, error) {
	name = strings.TrimSpace(name)
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}

	names := PresetNames()
	if name != "" {
		if matches := fuzzy.Find(strings.ToLower(name), names); len(matches) > 0 {
			return Presets[matches[0].Index], nil
		}
	}

	return Preset{}, fmt.Errorf("%w: %q (did you mean %s?)", domain.ErrPresetNotFound, name,
		strings.Join(suggest(name, names, 2), ", "))
}

// suggest returns the n names closest to query by Levenshtein distance
func suggest(query string, names []string, n int) []string {
	query = strings.ToLower(query)
	sorted := slices.Clone(names)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return levenshtein.LevenshteinDistance(query, a) - levenshtein.LevenshteinDistance(query, b)
	})
	return sorted[:min(n, len(sorted))]
}
