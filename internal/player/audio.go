package player

import (
	"math"

	"github.com/mmcdole/reel/internal/domain"
)

// renderAudio is the device callback. It never blocks on the cache engine,
// never allocates, and never logs. Output is silence unless playing forward
// at native speed with audio enabled.
func (p *Player) renderAudio(out []byte, frames int) {
	defer func() {
		if recover() != nil {
			clear(out)
		}
	}()
	clear(out)

	p.audioMu.Lock()
	a := p.audio
	p.audio.frameCounter += int64(frames)
	p.audioMu.Unlock()

	if a.playback != domain.Forward ||
		a.externalTime ||
		a.mute ||
		!nativeSpeed(a.speed, p.rate) ||
		p.clock.Now().Before(a.muteTimeout) {
		return
	}

	snap := p.audioSnap.Load()
	if snap == nil || len(snap.seconds) == 0 {
		return
	}

	format := p.format
	sampleRate := int64(format.SampleRate)
	frameBytes := format.FrameBytes()
	if sampleRate <= 0 || frameBytes <= 0 {
		return
	}
	frames = min(frames, len(out)/frameBytes)

	pos := int64(math.Round((a.anchorSeconds-a.audioOffset)*float64(sampleRate))) + a.frameCounter
	for written := 0; written < frames; {
		second := floorDiv(pos, sampleRate)
		offset := pos - second*sampleRate
		n := int(min(int64(frames-written), sampleRate-offset))
		if data, ok := snap.seconds[second]; ok {
			mix(out[written*frameBytes:(written+n)*frameBytes], data, int(offset), n, format, a.volume)
		}
		written += n
		pos += int64(n)
	}
}

// mix adds n frames of every layer matching format, starting at frame
// offset within the second, into out.
func mix(out []byte, data *domain.AudioData, offset, n int, format domain.AudioFormat, volume float64) {
	frameBytes := format.FrameBytes()
	sampleBytes := format.Format.ByteCount()
	for _, layer := range data.Layers {
		if layer.Format != format {
			continue
		}
		start := offset * frameBytes
		end := min((offset+n)*frameBytes, len(layer.Data))
		if start >= end {
			continue
		}
		src := layer.Data[start:end]
		for i := 0; i+sampleBytes <= len(src); i += sampleBytes {
			v := format.Format.Sample(out[i:]) + format.Format.Sample(src[i:])*volume
			format.Format.PutSample(out[i:], v)
		}
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
