//go:build portaudio

package audio

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/mmcdole/reel/internal/domain"
)

// PortAudio plays through the default output device of the host API.
type PortAudio struct {
	logger *slog.Logger

	mu      sync.Mutex
	stream  *portaudio.Stream
	cb      Callback
	scratch []byte
	format  domain.AudioFormat

	running  atomic.Bool
	timeBase atomic.Int64 // stream time at the last reset, in nanoseconds
}

func newPortAudio(logger *slog.Logger) (Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAudioUnavailable, err)
	}
	return &PortAudio{logger: logger}, nil
}

func (p *PortAudio) Open(cfg StreamConfig, cb Callback) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAudioUnavailable, err)
	}
	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = cfg.Format.Channels
	params.SampleRate = float64(cfg.Format.SampleRate)
	params.FramesPerBuffer = cfg.BufferFrames

	p.cb = cb
	p.format = cfg.Format
	p.scratch = make([]byte, cfg.BufferBytes())

	var stream *portaudio.Stream
	switch cfg.Format.Format {
	case domain.SampleFloat32:
		stream, err = portaudio.OpenStream(params, p.processFloat32)
	case domain.SampleInt16:
		stream, err = portaudio.OpenStream(params, p.processInt16)
	default:
		return fmt.Errorf("%w: unsupported sample format %s", domain.ErrAudioUnavailable, cfg.Format.Format)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAudioUnavailable, err)
	}
	p.stream = stream

	p.logger.Info("audio stream opened",
		"device", dev.Name,
		"host", dev.HostApi.Name,
		"format", cfg.Format.String(),
		"bufferFrames", cfg.BufferFrames)
	return nil
}

func (p *PortAudio) processFloat32(out []float32) {
	buf := p.scratch
	if len(out)*4 > len(buf) {
		clear(out)
		return
	}
	buf = buf[:len(out)*4]
	p.cb(buf, len(out)/p.format.Channels)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
}

func (p *PortAudio) processInt16(out []int16) {
	buf := p.scratch
	if len(out)*2 > len(buf) {
		clear(out)
		return
	}
	buf = buf[:len(out)*2]
	p.cb(buf, len(out)/p.format.Channels)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
}

func (p *PortAudio) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return fmt.Errorf("%w: stream not open", domain.ErrAudioUnavailable)
	}
	if err := p.stream.Start(); err != nil {
		return err
	}
	p.running.Store(true)
	p.timeBase.Store(int64(p.stream.Time()))
	return nil
}

func (p *PortAudio) Abort() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil || !p.running.Load() {
		return nil
	}
	p.running.Store(false)
	return p.stream.Abort()
}

func (p *PortAudio) Close() error {
	if err := p.Abort(); err != nil {
		p.logger.Warn("audio abort failed", "error", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream != nil {
		if err := p.stream.Close(); err != nil {
			return err
		}
		p.stream = nil
	}
	return portaudio.Terminate()
}

func (p *PortAudio) IsRunning() bool { return p.running.Load() }

func (p *PortAudio) StreamTime() float64 {
	stream := p.stream
	if stream == nil {
		return 0
	}
	return (stream.Time() - time.Duration(p.timeBase.Load())).Seconds()
}

func (p *PortAudio) ResetStreamTime() {
	if stream := p.stream; stream != nil {
		p.timeBase.Store(int64(stream.Time()))
	}
}
