package domain

import (
	"fmt"

	"github.com/mmcdole/reel/internal/otime"
)

// SampleFormat identifies the encoding of one audio sample
type SampleFormat int

const (
	SampleNone SampleFormat = iota
	SampleInt16
	SampleInt32
	SampleFloat32
)

// ByteCount returns the size of one sample in bytes
func (f SampleFormat) ByteCount() int {
	switch f {
	case SampleInt16:
		return 2
	case SampleInt32, SampleFloat32:
		return 4
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case SampleInt16:
		return "s16"
	case SampleInt32:
		return "s32"
	case SampleFloat32:
		return "f32"
	default:
		return "none"
	}
}

// AudioFormat describes interleaved PCM data. Two layers can be mixed only
// when their formats are equal.
type AudioFormat struct {
	Channels   int
	SampleRate int
	Format     SampleFormat
}

// IsValid reports whether the format can carry samples
func (f AudioFormat) IsValid() bool {
	return f.Channels > 0 && f.SampleRate > 0 && f.Format.ByteCount() > 0
}

// FrameBytes returns the size of one sample frame (all channels)
func (f AudioFormat) FrameBytes() int {
	return f.Channels * f.Format.ByteCount()
}

func (f AudioFormat) String() string {
	return fmt.Sprintf("%dch %dHz %s", f.Channels, f.SampleRate, f.Format)
}

// Image is a decoded picture. The player treats it as opaque.
type Image struct {
	Width  int
	Height int
	Label  string
	Pixels []byte
}

// VideoLayer is one composited layer of a frame. ImageB is set while a
// transition blends two clips.
type VideoLayer struct {
	Image      *Image
	ImageB     *Image
	Transition float64
}

// VideoData is the decoded picture for one frame time
type VideoData struct {
	Time   otime.RationalTime
	Layers []VideoLayer
}

// Empty reports whether the media graph had nothing to show
func (v VideoData) Empty() bool { return len(v.Layers) == 0 }

// AudioLayer is one second of raw samples for one audio track
type AudioLayer struct {
	Format AudioFormat
	Data   []byte
}

// AudioData is the audio for one whole second of the timeline
type AudioData struct {
	Seconds int64
	Layers  []AudioLayer
}

// VideoInfo describes one video layer of the timeline
type VideoInfo struct {
	Name   string
	Width  int
	Height int
}

// AVInfo describes the streams a timeline provides. Audio is nil when the
// timeline has no audio.
type AVInfo struct {
	Video []VideoInfo
	Audio *AudioFormat
}
