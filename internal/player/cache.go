package player

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
)

const completionQueueSize = 1024

// cacheRequest is what one engine iteration needs from the shared state
type cacheRequest struct {
	window
	videoLayer    int
	clearRequests bool
	clearCache    bool
}

// completion is a resolved fetch routed back to the engine
type completion struct {
	generation uint64
	layer      int
	isVideo    bool
	time       otime.RationalTime
	seconds    int64
	video      domain.VideoData
	audio      domain.AudioData
}

// videoSnapshot and audioSnapshot are immutable once published
type videoSnapshot struct {
	frames map[otime.RationalTime]*domain.VideoData
}

type audioSnapshot struct {
	seconds map[int64]*domain.AudioData
}

// CacheStats summarizes what the engine holds
type CacheStats struct {
	Percentage  float64
	VideoRanges []otime.TimeRange
	AudioRanges []otime.TimeRange
	Active      []otime.TimeRange
	Pending     int
}

// cacheEngine keeps decoded data for the active ranges resident. It is
// owned by a single goroutine; results reach it only through completions.
type cacheEngine struct {
	ctx      context.Context
	timeline domain.Timeline
	rate     float64
	hasAudio bool
	logger   *slog.Logger

	video         map[otime.RationalTime]*domain.VideoData
	audio         map[int64]*domain.AudioData
	videoRequests map[otime.RationalTime]uint64
	audioRequests map[int64]uint64
	generation    uint64
	layer         int
	active        []otime.TimeRange
	completions   chan completion

	videoDirty bool
	audioDirty bool
}

func newCacheEngine(ctx context.Context, tl domain.Timeline, rate float64, logger *slog.Logger) *cacheEngine {
	return &cacheEngine{
		ctx:           ctx,
		timeline:      tl,
		rate:          rate,
		hasAudio:      tl.AVInfo().Audio != nil,
		logger:        logger,
		video:         make(map[otime.RationalTime]*domain.VideoData),
		audio:         make(map[int64]*domain.AudioData),
		videoRequests: make(map[otime.RationalTime]uint64),
		audioRequests: make(map[int64]uint64),
		completions:   make(chan completion, completionQueueSize),
		videoDirty:    true,
		audioDirty:    true,
	}
}

// step runs one iteration and reports whether the snapshots changed
func (e *cacheEngine) step(req cacheRequest) (videoChanged, audioChanged bool) {
	if req.clearRequests {
		e.timeline.CancelRequests()
		clear(e.videoRequests)
		clear(e.audioRequests)
		e.generation++
	}
	if req.clearCache {
		clear(e.video)
		clear(e.audio)
		e.videoDirty, e.audioDirty = true, true
	}
	e.layer = req.videoLayer

	ranges := activeRanges(req.window)
	if !slices.Equal(ranges, e.active) {
		e.timeline.SetActiveRanges(ranges)
		e.active = ranges
	}

	e.evict()
	e.requestVideo()
	if e.hasAudio {
		e.requestAudio()
	}
	e.drain()

	videoChanged, audioChanged = e.videoDirty, e.audioDirty
	e.videoDirty, e.audioDirty = false, false
	return videoChanged, audioChanged
}

func (e *cacheEngine) evict() {
	for t := range e.video {
		if !inRanges(t, e.active) {
			delete(e.video, t)
			e.videoDirty = true
		}
	}
	for s := range e.audio {
		if !secondInRanges(s, e.active) {
			delete(e.audio, s)
			e.audioDirty = true
		}
	}
	maps.DeleteFunc(e.videoRequests, func(t otime.RationalTime, _ uint64) bool {
		return !inRanges(t, e.active)
	})
	maps.DeleteFunc(e.audioRequests, func(s int64, _ uint64) bool {
		return !secondInRanges(s, e.active)
	})
}

func (e *cacheEngine) requestVideo() {
	for _, r := range e.active {
		for t := range r.Frames() {
			if _, ok := e.video[t]; ok {
				continue
			}
			if _, ok := e.videoRequests[t]; ok {
				continue
			}
			fut := e.timeline.VideoAt(t, e.layer)
			if v, ok := fut.Value(); ok {
				e.storeVideo(t, v)
				continue
			}
			e.videoRequests[t] = e.generation
			go e.await(fut.Done(), func() completion {
				v, _ := fut.Value()
				return completion{isVideo: true, time: t, video: v}
			}, e.generation, e.layer)
		}
	}
}

func (e *cacheEngine) requestAudio() {
	seen := make(map[int64]struct{})
	for _, r := range e.active {
		for s := range r.Seconds() {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			if _, ok := e.audio[s]; ok {
				continue
			}
			if _, ok := e.audioRequests[s]; ok {
				continue
			}
			fut := e.timeline.AudioAt(s)
			if a, ok := fut.Value(); ok {
				e.storeAudio(s, a)
				continue
			}
			e.audioRequests[s] = e.generation
			go e.await(fut.Done(), func() completion {
				a, _ := fut.Value()
				return completion{seconds: s, audio: a}
			}, e.generation, e.layer)
		}
	}
}

// await waits for one fetch and queues its result, stamped with the
// generation and layer it was requested under.
func (e *cacheEngine) await(done <-chan struct{}, result func() completion, gen uint64, layer int) {
	select {
	case <-done:
	case <-e.ctx.Done():
		return
	}
	c := result()
	c.generation, c.layer = gen, layer
	select {
	case e.completions <- c:
	case <-e.ctx.Done():
	}
}

// drain applies every queued completion without blocking
func (e *cacheEngine) drain() {
	for {
		select {
		case c := <-e.completions:
			if c.isVideo {
				e.completeVideo(c)
			} else {
				e.completeAudio(c)
			}
		default:
			return
		}
	}
}

func (e *cacheEngine) completeVideo(c completion) {
	if gen, ok := e.videoRequests[c.time]; ok && gen == c.generation {
		delete(e.videoRequests, c.time)
		e.storeVideo(c.time, c.video)
		return
	}
	// Abandoned request: keep it only when it is still useful.
	if c.video.Empty() || c.layer != e.layer || !inRanges(c.time, e.active) {
		return
	}
	if _, ok := e.video[c.time]; ok {
		return
	}
	delete(e.videoRequests, c.time)
	e.storeVideo(c.time, c.video)
}

func (e *cacheEngine) completeAudio(c completion) {
	if gen, ok := e.audioRequests[c.seconds]; ok && gen == c.generation {
		delete(e.audioRequests, c.seconds)
		e.storeAudio(c.seconds, c.audio)
		return
	}
	if len(c.audio.Layers) == 0 || !secondInRanges(c.seconds, e.active) {
		return
	}
	if _, ok := e.audio[c.seconds]; ok {
		return
	}
	delete(e.audioRequests, c.seconds)
	e.storeAudio(c.seconds, c.audio)
}

func (e *cacheEngine) storeVideo(t otime.RationalTime, v domain.VideoData) {
	e.video[t] = &v
	e.videoDirty = true
}

func (e *cacheEngine) storeAudio(s int64, a domain.AudioData) {
	e.audio[s] = &a
	e.audioDirty = true
}

func (e *cacheEngine) videoSnapshot() *videoSnapshot {
	return &videoSnapshot{frames: maps.Clone(e.video)}
}

func (e *cacheEngine) audioSnapshot() *audioSnapshot {
	return &audioSnapshot{seconds: maps.Clone(e.audio)}
}

func (e *cacheEngine) stats() *CacheStats {
	return &CacheStats{
		Percentage:  fillPercentage(e.video, e.active),
		VideoRanges: coalesceFrames(e.video, e.rate),
		AudioRanges: coalesceSeconds(e.audio, e.rate),
		Active:      slices.Clone(e.active),
		Pending:     len(e.videoRequests) + len(e.audioRequests),
	}
}

// runCacheIteration performs one engine pass against the player state
func (p *Player) runCacheIteration() {
	p.mu.Lock()
	req := cacheRequest{
		window: window{
			current:     p.state.currentTime,
			direction:   p.state.cacheDirection,
			readAhead:   p.state.readAhead,
			readBehind:  p.state.readBehind,
			audioOffset: p.state.audioOffset,
			inOut:       p.state.inOutRange,
			global:      p.timeRange,
		},
		videoLayer:    p.state.videoLayer,
		clearRequests: p.state.clearRequests,
		clearCache:    p.state.clearCache,
	}
	p.state.clearRequests = false
	p.state.clearCache = false
	p.mu.Unlock()

	videoChanged, audioChanged := p.engine.step(req)
	if videoChanged {
		p.videoSnap.Store(p.engine.videoSnapshot())
	}
	if audioChanged {
		p.audioSnap.Store(p.engine.audioSnapshot())
	}
	p.stats.Store(p.engine.stats())
}

func (p *Player) cacheLoop(ctx context.Context, period time.Duration) {
	defer p.wg.Done()
	ticker := p.clock.NewTicker(period)
	defer ticker.Stop()
	for {
		p.runCacheIteration()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
		}
	}
}
