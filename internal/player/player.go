// Package player plays a timeline: it keeps decoded video and audio
// resident around the current time, advances the playback clock, and feeds
// an audio device from a real-time callback.
//
// Three execution contexts share a Player: the caller's thread (setters
// and Tick), the cache engine goroutine, and the audio device callback.
// General state lives under mu, the scalars the callback reads live under
// audioMu, and decoded data reaches the other contexts as immutable
// snapshots.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/mmcdole/reel/internal/audio"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/observer"
	"github.com/mmcdole/reel/internal/otime"
)

// SpeedTolerance is the relative difference under which a speed counts as
// the timeline's native rate.
const SpeedTolerance = 1e-4

// sharedState is guarded by Player.mu
type sharedState struct {
	currentTime    otime.RationalTime
	inOutRange     otime.TimeRange
	videoLayer     int
	audioOffset    float64
	playback       domain.Playback
	cacheDirection domain.CacheDirection
	readAhead      time.Duration
	readBehind     time.Duration
	clearRequests  bool
	clearCache     bool
	anchorTime     otime.RationalTime
	anchorWall     time.Time
	externalTime   bool
}

// audioState is guarded by Player.audioMu. It mirrors the few general
// values the audio callback needs so the callback never takes mu.
type audioState struct {
	speed         float64
	volume        float64
	mute          bool
	muteTimeout   time.Time
	frameCounter  int64
	playback      domain.Playback
	anchorSeconds float64
	audioOffset   float64
	externalTime  bool
}

// Player plays one timeline
type Player struct {
	timeline  domain.Timeline
	device    audio.Device
	clock     clock.WithTicker
	logger    *slog.Logger
	opts      Options
	timeRange otime.TimeRange
	rate      float64
	avInfo    domain.AVInfo
	format    domain.AudioFormat
	audioOpen bool

	speed             *observer.Value[float64]
	playback          *observer.Value[domain.Playback]
	loop              *observer.Value[domain.Loop]
	currentTime       *observer.Value[otime.RationalTime]
	inOutRange        *observer.Value[otime.TimeRange]
	videoLayer        *observer.Value[int]
	currentVideo      *observer.Value[*domain.VideoData]
	volume            *observer.Value[float64]
	mute              *observer.Value[bool]
	audioOffset       *observer.Value[float64]
	cacheReadAhead    *observer.Value[time.Duration]
	cacheReadBehind   *observer.Value[time.Duration]
	cachePercentage   *observer.Value[float64]
	cachedVideoRanges *observer.List[otime.TimeRange]
	cachedAudioRanges *observer.List[otime.TimeRange]

	mu    sync.Mutex
	state sharedState

	audioMu sync.Mutex
	audio   audioState

	engine    *cacheEngine
	videoSnap atomic.Pointer[videoSnapshot]
	audioSnap atomic.Pointer[audioSnapshot]
	stats     atomic.Pointer[CacheStats]

	extMu       sync.Mutex
	master      *Player
	unsubscribe []func()

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a player for tl. A nil device, or one that fails to open,
// leaves the player video-only.
func New(ctx context.Context, tl domain.Timeline, device audio.Device, opts Options) (*Player, error) {
	if tl == nil {
		return nil, domain.ErrNoTimeline
	}
	duration := tl.Duration()
	if !duration.IsValid() || duration.Value <= 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidDuration, duration)
	}
	opts = opts.withDefaults()

	rate := duration.Rate
	start := tl.GlobalStartTime().RescaledTo(rate)
	timeRange := otime.NewRange(start, duration)

	p := &Player{
		timeline:  tl,
		device:    device,
		clock:     opts.Clock,
		logger:    opts.Logger.With("component", "player"),
		opts:      opts,
		timeRange: timeRange,
		rate:      rate,
		avInfo:    tl.AVInfo(),

		speed:             observer.NewValue(rate),
		playback:          observer.NewValue(domain.Stop),
		loop:              observer.NewValue(domain.LoopLoop),
		currentTime:       observer.NewValue(start),
		inOutRange:        observer.NewValue(timeRange),
		videoLayer:        observer.NewValue(0),
		currentVideo:      observer.NewValue[*domain.VideoData](nil),
		volume:            observer.NewValue(1.0),
		mute:              observer.NewValue(false),
		audioOffset:       observer.NewValue(0.0),
		cacheReadAhead:    observer.NewValue(opts.ReadAhead),
		cacheReadBehind:   observer.NewValue(opts.ReadBehind),
		cachePercentage:   observer.NewValue(0.0),
		cachedVideoRanges: observer.NewList(otime.TimeRange.Equal),
		cachedAudioRanges: observer.NewList(otime.TimeRange.Equal),
	}
	p.state = sharedState{
		currentTime:   start,
		inOutRange:    timeRange,
		readAhead:     opts.ReadAhead,
		readBehind:    opts.ReadBehind,
		anchorTime:    start,
		anchorWall:    p.clock.Now(),
		clearRequests: true,
	}
	p.audio = audioState{
		speed:         rate,
		volume:        1,
		anchorSeconds: start.Seconds(),
	}
	p.videoSnap.Store(&videoSnapshot{})
	p.audioSnap.Store(&audioSnapshot{})
	p.stats.Store(&CacheStats{})

	p.openAudio()

	ctx, p.cancel = context.WithCancel(ctx)
	p.engine = newCacheEngine(ctx, tl, rate, p.logger)
	if !opts.manualCache {
		p.wg.Add(1)
		go p.cacheLoop(ctx, opts.EnginePeriod)
	}

	p.logger.Debug("player created",
		"range", timeRange.String(),
		"rate", rate,
		"audio", p.audioOpen)
	return p, nil
}

func (p *Player) openAudio() {
	if p.avInfo.Audio == nil || p.device == nil {
		return
	}
	cfg := audio.StreamConfig{Format: *p.avInfo.Audio, BufferFrames: p.opts.AudioBufferFrames}
	if err := p.device.Open(cfg, p.renderAudio); err != nil {
		p.logger.Warn("audio unavailable, playing video only", "error", err)
		return
	}
	if err := p.device.Start(); err != nil {
		p.logger.Warn("audio stream failed to start, playing video only", "error", err)
		_ = p.device.Close()
		return
	}
	p.format = *p.avInfo.Audio
	p.audioOpen = true
}

// Close stops the cache engine, closes the audio stream and detaches from
// any external time source. It is safe to call more than once.
func (p *Player) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.SetExternalTime(nil)
		if p.audioOpen {
			if abortErr := p.device.Abort(); abortErr != nil {
				p.logger.Warn("abort audio stream", "error", abortErr)
			}
			err = p.device.Close()
		}
		p.cancel()
		p.wg.Wait()
		p.logger.Debug("player closed")
	})
	return err
}

// Timeline returns the timeline being played
func (p *Player) Timeline() domain.Timeline { return p.timeline }

// TimeRange returns the global time range of the timeline
func (p *Player) TimeRange() otime.TimeRange { return p.timeRange }

// Rate returns the native frame rate
func (p *Player) Rate() float64 { return p.rate }

// AVInfo describes the timeline streams
func (p *Player) AVInfo() domain.AVInfo { return p.avInfo }

// HasAudio reports whether an audio stream is running
func (p *Player) HasAudio() bool { return p.audioOpen }

// Observable state
func (p *Player) Speed() *observer.Value[float64] { return p.speed }
func (p *Player) Playback() *observer.Value[domain.Playback] { return p.playback }
func (p *Player) Loop() *observer.Value[domain.Loop] { return p.loop }
func (p *Player) CurrentTime() *observer.Value[otime.RationalTime] { return p.currentTime }
func (p *Player) InOutRange() *observer.Value[otime.TimeRange] { return p.inOutRange }
func (p *Player) VideoLayer() *observer.Value[int] { return p.videoLayer }
func (p *Player) CurrentVideo() *observer.Value[*domain.VideoData] { return p.currentVideo }
func (p *Player) Volume() *observer.Value[float64] { return p.volume }
func (p *Player) Mute() *observer.Value[bool] { return p.mute }
func (p *Player) AudioOffset() *observer.Value[float64] { return p.audioOffset }
func (p *Player) CacheReadAhead() *observer.Value[time.Duration] { return p.cacheReadAhead }
func (p *Player) CacheReadBehind() *observer.Value[time.Duration] { return p.cacheReadBehind }
func (p *Player) CachePercentage() *observer.Value[float64] { return p.cachePercentage }
func (p *Player) CachedVideoRanges() *observer.List[otime.TimeRange] { return p.cachedVideoRanges }
func (p *Player) CachedAudioRanges() *observer.List[otime.TimeRange] { return p.cachedAudioRanges }

// CacheStats returns the latest statistics published by the cache engine
func (p *Player) CacheStats() CacheStats { return *p.stats.Load() }

// SetSpeed changes the playback speed in frames per second
func (p *Player) SetSpeed(fps float64) {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return
	}
	if !p.speed.Set(fps) {
		return
	}
	p.audioMu.Lock()
	p.audio.speed = fps
	p.audioMu.Unlock()

	p.mu.Lock()
	playing := p.state.playback != domain.Stop
	p.state.clearRequests = true
	if playing {
		p.resetAnchorLocked(p.state.currentTime)
	}
	p.mu.Unlock()
	if playing {
		p.resetAudioTime()
	}
}

// SetPlayback changes the playback mode
func (p *Player) SetPlayback(mode domain.Playback) {
	if mode != domain.Stop && p.loop.Get() == domain.LoopOnce {
		// Starting from the far bound plays the range again.
		inOut := p.inOutRange.Get()
		current := p.currentTime.Get()
		switch {
		case mode == domain.Forward && current.Equal(inOut.EndInclusive()):
			p.Seek(inOut.Start)
		case mode == domain.Reverse && current.Equal(inOut.Start):
			p.Seek(inOut.EndInclusive())
		}
	}
	p.setPlayback(mode)
}

func (p *Player) setPlayback(mode domain.Playback) {
	if !p.playback.Set(mode) {
		return
	}
	p.mu.Lock()
	p.state.playback = mode
	p.state.clearRequests = true
	switch mode {
	case domain.Forward:
		p.state.cacheDirection = domain.CacheForward
	case domain.Reverse:
		p.state.cacheDirection = domain.CacheReverse
	}
	if mode != domain.Stop {
		p.resetAnchorLocked(p.state.currentTime)
	}
	p.mu.Unlock()

	p.audioMu.Lock()
	p.audio.playback = mode
	p.audioMu.Unlock()
	if mode != domain.Stop {
		p.resetAudioTime()
	}
}

// SetLoop changes what happens at the in/out bounds
func (p *Player) SetLoop(mode domain.Loop) { p.loop.Set(mode) }

// Seek moves the current time. t is rescaled to the native rate and wrapped
// into the global range.
func (p *Player) Seek(t otime.RationalTime) {
	if !t.IsValid() {
		return
	}
	t, _ = otime.Loop(t.RescaledTo(p.rate).Floor(), p.timeRange)
	if !p.currentTime.Set(t) {
		return
	}
	p.mu.Lock()
	p.state.currentTime = t
	p.state.clearRequests = true
	playing := p.state.playback != domain.Stop
	if playing {
		p.resetAnchorLocked(t)
	}
	p.mu.Unlock()
	if playing {
		p.resetAudioTime()
	}
}

// SetInOutRange sets the in/out range, limited to the global range
func (p *Player) SetInOutRange(r otime.TimeRange) {
	r = r.RescaledTo(p.rate)
	clipped, ok := r.Intersection(p.timeRange)
	if !ok {
		return
	}
	if !p.inOutRange.Set(clipped) {
		return
	}
	p.mu.Lock()
	p.state.inOutRange = clipped
	p.mu.Unlock()
}

// SetInPoint starts the in/out range at the current time
func (p *Player) SetInPoint() {
	end := p.inOutRange.Get().EndInclusive()
	current := p.currentTime.Get()
	if end.Less(current) {
		end = p.timeRange.EndInclusive()
	}
	p.SetInOutRange(otime.RangeFromStartEndInclusive(current, end))
}

// ResetInPoint moves the in point back to the start of the timeline
func (p *Player) ResetInPoint() {
	p.SetInOutRange(otime.RangeFromStartEndInclusive(p.timeRange.Start, p.inOutRange.Get().EndInclusive()))
}

// SetOutPoint ends the in/out range at the current time
func (p *Player) SetOutPoint() {
	start := p.inOutRange.Get().Start
	current := p.currentTime.Get()
	if current.Less(start) {
		start = p.timeRange.Start
	}
	p.SetInOutRange(otime.RangeFromStartEndInclusive(start, current))
}

// ResetOutPoint moves the out point to the end of the timeline
func (p *Player) ResetOutPoint() {
	p.SetInOutRange(otime.RangeFromStartEndInclusive(p.inOutRange.Get().Start, p.timeRange.EndInclusive()))
}

// SetVideoLayer switches the displayed layer. Cached and requested data
// belongs to the old layer, so both are dropped.
func (p *Player) SetVideoLayer(layer int) {
	if layer < 0 || !p.videoLayer.Set(layer) {
		return
	}
	p.mu.Lock()
	p.state.videoLayer = layer
	p.state.clearRequests = true
	p.state.clearCache = true
	p.mu.Unlock()
}

// ClearCache drops every cached frame and second and requests them again
func (p *Player) ClearCache() {
	p.mu.Lock()
	p.state.clearRequests = true
	p.state.clearCache = true
	p.mu.Unlock()
}

// SetVolume sets the output gain, clamped to [0, 1]
func (p *Player) SetVolume(v float64) {
	v = math.Max(0, math.Min(1, v))
	if !p.volume.Set(v) {
		return
	}
	p.audioMu.Lock()
	p.audio.volume = v
	p.audioMu.Unlock()
}

// SetMute silences audio output
func (p *Player) SetMute(mute bool) {
	if !p.mute.Set(mute) {
		return
	}
	p.audioMu.Lock()
	p.audio.mute = mute
	p.audioMu.Unlock()
}

// SetAudioOffset shifts audio relative to video, in seconds
func (p *Player) SetAudioOffset(seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || !p.audioOffset.Set(seconds) {
		return
	}
	p.mu.Lock()
	p.state.audioOffset = seconds
	p.mu.Unlock()

	p.audioMu.Lock()
	p.audio.audioOffset = seconds
	p.audio.muteTimeout = p.clock.Now().Add(p.opts.MuteTimeout)
	p.audioMu.Unlock()
}

// SetCacheReadAhead sets how far ahead of the current time data is kept
func (p *Player) SetCacheReadAhead(d time.Duration) {
	if d < 0 || !p.cacheReadAhead.Set(d) {
		return
	}
	p.mu.Lock()
	p.state.readAhead = d
	p.mu.Unlock()
}

// SetCacheReadBehind sets how far behind the current time data is kept
func (p *Player) SetCacheReadBehind(d time.Duration) {
	if d < 0 || !p.cacheReadBehind.Set(d) {
		return
	}
	p.mu.Lock()
	p.state.readBehind = d
	p.mu.Unlock()
}

// resetAnchorLocked restarts clock integration from t. mu must be held.
func (p *Player) resetAnchorLocked(t otime.RationalTime) {
	p.state.anchorTime = t
	p.state.anchorWall = p.clock.Now()
	p.audioMu.Lock()
	p.audio.anchorSeconds = t.Seconds()
	p.audioMu.Unlock()
}

// resetAudioTime restarts the audio frame counter and device clock and
// mutes output until the cache has caught up.
func (p *Player) resetAudioTime() {
	p.audioMu.Lock()
	p.audio.frameCounter = 0
	p.audio.muteTimeout = p.clock.Now().Add(p.opts.MuteTimeout)
	p.audioMu.Unlock()
	if p.audioOpen {
		p.device.ResetStreamTime()
	}
}

func nativeSpeed(speed, rate float64) bool {
	return math.Abs(speed-rate) <= SpeedTolerance*rate
}
