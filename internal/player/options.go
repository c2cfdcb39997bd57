package player

import (
	"log/slog"
	"time"

	"k8s.io/utils/clock"
)

// Defaults for Options fields left at zero
const (
	DefaultReadAhead         = 4 * time.Second
	DefaultReadBehind        = 400 * time.Millisecond
	DefaultAudioBufferFrames = 1024
	DefaultMuteTimeout       = 500 * time.Millisecond
	DefaultEnginePeriod      = 5 * time.Millisecond
)

// Options configures a Player
type Options struct {
	// ReadAhead and ReadBehind size the window kept resident around the
	// current time, oriented by playback direction.
	ReadAhead  time.Duration
	ReadBehind time.Duration

	// AudioBufferFrames is the sample-frame count requested per device callback
	AudioBufferFrames int

	// MuteTimeout silences audio after every clock reset while the cache
	// catches up with the new position.
	MuteTimeout time.Duration

	// EnginePeriod is the sleep between cache engine iterations
	EnginePeriod time.Duration

	Clock  clock.WithTicker
	Logger *slog.Logger

	// manualCache disables the background engine; tests drive iterations.
	manualCache bool
}

// DefaultOptions returns the options used for zero fields
func DefaultOptions() Options {
	return Options{
		ReadAhead:         DefaultReadAhead,
		ReadBehind:        DefaultReadBehind,
		AudioBufferFrames: DefaultAudioBufferFrames,
		MuteTimeout:       DefaultMuteTimeout,
		EnginePeriod:      DefaultEnginePeriod,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ReadAhead <= 0 {
		o.ReadAhead = d.ReadAhead
	}
	if o.ReadBehind < 0 {
		o.ReadBehind = d.ReadBehind
	}
	if o.AudioBufferFrames <= 0 {
		o.AudioBufferFrames = d.AudioBufferFrames
	}
	if o.MuteTimeout < 0 {
		o.MuteTimeout = d.MuteTimeout
	}
	if o.EnginePeriod <= 0 {
		o.EnginePeriod = d.EnginePeriod
	}
	if o.Clock == nil {
		o.Clock = clock.RealClock{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
