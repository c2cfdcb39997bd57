// Package audio binds the player's real-time callback to an output device.
package audio

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
	"k8s.io/utils/clock"
)

// Callback renders frames sample frames of interleaved PCM into out. It runs
// on the device's own goroutine and must not block.
type Callback func(out []byte, frames int)

// StreamConfig describes the stream to open
type StreamConfig struct {
	Format       domain.AudioFormat
	BufferFrames int
}

// BufferBytes returns the size of one callback buffer
func (c StreamConfig) BufferBytes() int {
	return c.BufferFrames * c.Format.FrameBytes()
}

// Device is an audio output stream driven by a callback.
type Device interface {
	// Open prepares a stream; it does not start it
	Open(cfg StreamConfig, cb Callback) error

	Start() error

	// Abort stops the stream immediately, dropping queued buffers
	Abort() error

	// Close aborts the stream and releases the device
	Close() error

	IsRunning() bool

	// StreamTime returns the seconds of audio played since the last reset
	StreamTime() float64

	ResetStreamTime()
}

// Device kinds accepted by New
const (
	KindNull      = "null"
	KindVirtual   = "virtual"
	KindPortAudio = "portaudio"
)

// IsKind reports whether New accepts kind
func IsKind(kind string) bool {
	switch strings.ToLower(kind) {
	case "", KindNull, "none", KindVirtual, KindPortAudio:
		return true
	}
	return false
}

// New creates the device named by kind
func New(kind string, clk clock.WithTicker, logger *slog.Logger) (Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(kind) {
	case "", KindNull, "none":
		return Null{}, nil
	case KindVirtual:
		return NewVirtual(clk, nil), nil
	case KindPortAudio:
		return newPortAudio(logger)
	default:
		return nil, fmt.Errorf("unknown audio device %q", kind)
	}
}

// Null is a device that cannot be opened. Players using it run video-only.
type Null struct{}

func (Null) Open(StreamConfig, Callback) error { return domain.ErrAudioUnavailable }
func (Null) Start() error                       { return domain.ErrAudioUnavailable }
func (Null) Abort() error                       { return nil }
func (Null) Close() error                       { return nil }
func (Null) IsRunning() bool                    { return false }
func (Null) StreamTime() float64                { return 0 }
func (Null) ResetStreamTime()                   {}
