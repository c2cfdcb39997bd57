package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/mmcdole/reel/internal/audio"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
)

const testRate = 24

var testFormat = domain.AudioFormat{Channels: 2, SampleRate: 48000, Format: domain.SampleFloat32}

type pendingVideo struct {
	time  otime.RationalTime
	layer int
	fut   *domain.Future[domain.VideoData]
}

type pendingAudio struct {
	seconds int64
	fut     *domain.Future[domain.AudioData]
}

// fakeTimeline answers requests instantly, or holds them until resolved
// when deferred is set.
type fakeTimeline struct {
	mu       sync.Mutex
	start    otime.RationalTime
	duration otime.RationalTime
	format   *domain.AudioFormat
	layers   int
	deferred bool

	// sample returns the constant sample value of one second
	sample func(seconds int64) float64
	// extraLayers are mixed into every second as-is
	extraLayers []domain.AudioLayer

	video   []pendingVideo
	audio   []pendingAudio
	cancels int
	active  []otime.TimeRange
}

func newFakeTimeline(frames float64) *fakeTimeline {
	format := testFormat
	return &fakeTimeline{
		start:    otime.New(0, testRate),
		duration: otime.New(frames, testRate),
		format:   &format,
		layers:   3,
		sample:   func(int64) float64 { return 0.25 },
	}
}

func videoFor(t otime.RationalTime, layer int) domain.VideoData {
	label := fmt.Sprintf("%d/%v", layer, t.Value)
	return domain.VideoData{Time: t, Layers: []domain.VideoLayer{{Image: &domain.Image{Label: label}}}}
}

func layerOf(v *domain.VideoData) string {
	layer, _, _ := strings.Cut(v.Layers[0].Image.Label, "/")
	return layer
}

func (f *fakeTimeline) audioFor(s int64) domain.AudioData {
	if f.format == nil {
		return domain.AudioData{Seconds: s}
	}
	data := make([]byte, f.format.SampleRate*f.format.FrameBytes())
	v := math.Float32bits(float32(f.sample(s)))
	for i := 0; i < len(data); i += 4 {
		binary.LittleEndian.PutUint32(data[i:], v)
	}
	layers := []domain.AudioLayer{{Format: *f.format, Data: data}}
	return domain.AudioData{Seconds: s, Layers: append(layers, f.extraLayers...)}
}

func (f *fakeTimeline) VideoAt(t otime.RationalTime, layer int) *domain.Future[domain.VideoData] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.deferred {
		return domain.Resolved(videoFor(t, layer))
	}
	fut := domain.NewFuture[domain.VideoData]()
	f.video = append(f.video, pendingVideo{time: t, layer: layer, fut: fut})
	return fut
}

func (f *fakeTimeline) AudioAt(s int64) *domain.Future[domain.AudioData] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.deferred {
		return domain.Resolved(f.audioFor(s))
	}
	fut := domain.NewFuture[domain.AudioData]()
	f.audio = append(f.audio, pendingAudio{seconds: s, fut: fut})
	return fut
}

func (f *fakeTimeline) SetActiveRanges(ranges []otime.TimeRange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = ranges
}

func (f *fakeTimeline) CancelRequests() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeTimeline) AVInfo() domain.AVInfo {
	info := domain.AVInfo{Audio: f.format}
	for i := 0; i < f.layers; i++ {
		info.Video = append(info.Video, domain.VideoInfo{Name: fmt.Sprintf("v%d", i), Width: 64, Height: 36})
	}
	return info
}

func (f *fakeTimeline) Duration() otime.RationalTime        { return f.duration }
func (f *fakeTimeline) GlobalStartTime() otime.RationalTime { return f.start }

// resolveVideo resolves the pending video requests keep selects
func (f *fakeTimeline) resolveVideo(keep func(pendingVideo) bool) int {
	f.mu.Lock()
	var rest, ready []pendingVideo
	for _, p := range f.video {
		if keep(p) {
			ready = append(ready, p)
		} else {
			rest = append(rest, p)
		}
	}
	f.video = rest
	f.mu.Unlock()
	for _, p := range ready {
		p.fut.Resolve(videoFor(p.time, p.layer))
	}
	return len(ready)
}

func (f *fakeTimeline) resolveAudio() {
	f.mu.Lock()
	ready := f.audio
	f.audio = nil
	f.mu.Unlock()
	for _, p := range ready {
		p.fut.Resolve(f.audioFor(p.seconds))
	}
}

func (f *fakeTimeline) setDeferred(d bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deferred = d
}

func (f *fakeTimeline) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancels
}

// fakeDevice is an audio device whose clock the test sets directly
type fakeDevice struct {
	mu         sync.Mutex
	cfg        audio.StreamConfig
	cb         audio.Callback
	openErr    error
	running    bool
	closed     bool
	streamTime float64
	resets     int
}

func (d *fakeDevice) Open(cfg audio.StreamConfig, cb audio.Callback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return d.openErr
	}
	d.cfg, d.cb = cfg, cb
	return nil
}

func (d *fakeDevice) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = true
	return nil
}

func (d *fakeDevice) Abort() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDevice) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *fakeDevice) StreamTime() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streamTime
}

func (d *fakeDevice) ResetStreamTime() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streamTime = 0
	d.resets++
}

func (d *fakeDevice) setStreamTime(s float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streamTime = s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestPlayer creates a player whose cache engine only runs when the
// test calls runCacheIteration.
func newTestPlayer(t *testing.T, tl domain.Timeline, dev audio.Device) (*Player, *testingclock.FakeClock) {
	t.Helper()
	clk := testingclock.NewFakeClock(time.Unix(1_000_000, 0))
	opts := DefaultOptions()
	opts.Clock = clk
	opts.Logger = discardLogger()
	opts.manualCache = true
	p, err := New(t.Context(), tl, dev, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, clk
}

// settle runs engine iterations until cond holds
func settle(t *testing.T, p *Player, cond func() bool) {
	t.Helper()
	for range 1000 {
		p.runCacheIteration()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("cache engine did not settle")
}

func frame(v float64) otime.RationalTime { return otime.New(v, testRate) }

func frameSpan(start, endInclusive float64) otime.TimeRange {
	return otime.RangeFromStartEndInclusive(frame(start), frame(endInclusive))
}
