package mediagraph

import (
	"fmt"
	"math"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
)

const (
	clipSeconds      = 5
	transitionFrames = 12
	toneAmplitude    = 0.25
)

// bars are the SMPTE color bar values (RGB)
var bars = [...][3]byte{
	{192, 192, 192}, {192, 192, 0}, {0, 192, 192}, {0, 192, 0},
	{192, 0, 192}, {192, 0, 0}, {0, 0, 192}, {16, 16, 16},
}

// generator renders frames and tone seconds for a preset
type generator struct {
	preset      Preset
	startFrame  float64
	frameCount  float64
	startSecond float64
}

func newGenerator(p Preset) generator {
	return generator{
		preset:      p,
		startFrame:  math.Round(p.Start * p.Rate),
		frameCount:  math.Round(p.Duration * p.Rate),
		startSecond: p.Start,
	}
}

func (g generator) video(t otime.RationalTime, layer int) domain.VideoData {
	out := domain.VideoData{Time: t}
	local := math.Floor(t.ValueRescaledTo(g.preset.Rate)) - g.startFrame
	if layer < 0 || layer >= g.preset.Layers || local < 0 || local >= g.frameCount {
		return out
	}

	vl := domain.VideoLayer{Image: g.image(t, int64(local), layer)}
	if g.preset.Transitions && g.preset.Layers > 1 {
		clip := math.Round(clipSeconds * g.preset.Rate)
		pos := math.Mod(local, clip)
		if pos >= clip-transitionFrames {
			vl.ImageB = g.image(t, int64(local), (layer+1)%g.preset.Layers)
			vl.Transition = (pos - (clip - transitionFrames) + 1) / transitionFrames
		}
	}
	out.Layers = []domain.VideoLayer{vl}
	return out
}

// image draws color bars with a white sweep line that moves one column per
// frame, so consecutive frames differ.
func (g generator) image(t otime.RationalTime, frame int64, layer int) *domain.Image {
	w, h := g.preset.Width, g.preset.Height
	pix := make([]byte, w*h*4)
	sweep := int(frame % int64(w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := bars[(x*len(bars)/w+layer)%len(bars)]
			if x == sweep {
				c = [3]byte{255, 255, 255}
			}
			i := (y*w + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c[0], c[1], c[2], 255
		}
	}
	return &domain.Image{
		Width:  w,
		Height: h,
		Label:  fmt.Sprintf("%s cam%d %s", g.preset.Name, layer+1, t.RescaledTo(g.preset.Rate)),
		Pixels: pix,
	}
}

func (g generator) audio(seconds int64) domain.AudioData {
	out := domain.AudioData{Seconds: seconds}
	if g.preset.Audio == nil {
		return out
	}
	s := float64(seconds)
	if s < math.Floor(g.startSecond) || s >= g.startSecond+g.preset.Duration {
		return out
	}
	for l := 0; l < g.preset.AudioLayers; l++ {
		out.Layers = append(out.Layers, domain.AudioLayer{
			Format: *g.preset.Audio,
			Data:   tone(*g.preset.Audio, seconds, g.preset.ToneHz*float64(l+1), toneAmplitude/float64(g.preset.AudioLayers)),
		})
	}
	return out
}

// tone renders one second of a sine wave, phase continuous across seconds
func tone(f domain.AudioFormat, seconds int64, hz, amp float64) []byte {
	frameBytes := f.FrameBytes()
	sampleBytes := f.Format.ByteCount()
	buf := make([]byte, f.SampleRate*frameBytes)
	for i := 0; i < f.SampleRate; i++ {
		cycles := hz * (float64(seconds) + float64(i)/float64(f.SampleRate))
		v := amp * math.Sin(2*math.Pi*(cycles-math.Floor(cycles)))
		for ch := 0; ch < f.Channels; ch++ {
			f.Format.PutSample(buf[i*frameBytes+ch*sampleBytes:], v)
		}
	}
	return buf
}
