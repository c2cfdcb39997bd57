package player

import (
	"math"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
)

// motion is what the loop state machine decides for one clock step
type motion struct {
	time        otime.RationalTime
	playback    domain.Playback
	resetAnchor bool
}

type loopState struct {
	playback domain.Playback
	loop     domain.Loop
}

// boundRule resolves a candidate time against the in/out range
type boundRule func(candidate otime.RationalTime, r otime.TimeRange) motion

// loopTable holds one rule per moving (Playback, Loop) pair
var loopTable = map[loopState]boundRule{
	{domain.Forward, domain.LoopLoop}:     wrapRule(domain.Forward),
	{domain.Reverse, domain.LoopLoop}:     wrapRule(domain.Reverse),
	{domain.Forward, domain.LoopOnce}:     onceRule(domain.Forward),
	{domain.Reverse, domain.LoopOnce}:     onceRule(domain.Reverse),
	{domain.Forward, domain.LoopPingPong}: pingPongRule(domain.Forward),
	{domain.Reverse, domain.LoopPingPong}: pingPongRule(domain.Reverse),
}

// wrapRule continues from the opposite bound, carrying the overshoot
func wrapRule(pb domain.Playback) boundRule {
	return func(candidate otime.RationalTime, r otime.TimeRange) motion {
		t, looped := otime.Loop(candidate, r)
		return motion{time: t, playback: pb, resetAnchor: looped}
	}
}

// onceRule clamps and stops on reaching the bound in the direction of travel
func onceRule(pb domain.Playback) boundRule {
	return func(candidate otime.RationalTime, r otime.TimeRange) motion {
		t := otime.Clamp(candidate, r)
		if (pb == domain.Forward && t.Equal(r.EndInclusive())) ||
			(pb == domain.Reverse && t.Equal(r.Start)) {
			return motion{time: t, playback: domain.Stop}
		}
		return motion{time: t, playback: pb}
	}
}

// pingPongRule clamps and turns around at the bound in the direction of travel
func pingPongRule(pb domain.Playback) boundRule {
	return func(candidate otime.RationalTime, r otime.TimeRange) motion {
		t := otime.Clamp(candidate, r)
		switch {
		case pb == domain.Forward && t.Equal(r.EndInclusive()):
			return motion{time: t, playback: domain.Reverse, resetAnchor: true}
		case pb == domain.Reverse && t.Equal(r.Start):
			return motion{time: t, playback: domain.Forward, resetAnchor: true}
		}
		return motion{time: t, playback: pb}
	}
}

// advance resolves a clock step. Stopped playback never moves.
func advance(pb domain.Playback, loop domain.Loop, candidate otime.RationalTime, r otime.TimeRange) motion {
	rule, ok := loopTable[loopState{pb, loop}]
	if !ok {
		return motion{time: candidate, playback: pb}
	}
	return rule(candidate, r)
}

// Tick advances the playback clock and publishes the current frame and the
// cache statistics to observers. Call it once per display frame.
func (p *Player) Tick() {
	p.mu.Lock()
	pb := p.state.playback
	external := p.state.externalTime
	anchor := p.state.anchorTime
	anchorWall := p.state.anchorWall
	inOut := p.state.inOutRange
	p.mu.Unlock()

	if pb != domain.Stop && !external {
		candidate := anchor.Add(p.elapsedFrames(pb, anchorWall))
		m := advance(pb, p.loop.Get(), candidate, inOut)
		p.applyMotion(m, pb)
	}

	p.publishVideo()
	p.publishStats()
}

// elapsedFrames is the whole number of frames played since the anchor,
// negative in reverse. The audio device clock is used at native speed.
func (p *Player) elapsedFrames(pb domain.Playback, anchorWall time.Time) otime.RationalTime {
	speed := p.speed.Get()
	var seconds float64
	if p.audioOpen && nativeSpeed(speed, p.rate) && p.device.IsRunning() {
		seconds = p.device.StreamTime()
	} else {
		seconds = p.clock.Since(anchorWall).Seconds() * speed / p.rate
	}
	frames := math.Floor(math.Max(0, seconds) * p.rate)
	if pb == domain.Reverse {
		frames = -frames
	}
	return otime.New(frames, p.rate)
}

func (p *Player) applyMotion(m motion, from domain.Playback) {
	p.mu.Lock()
	p.state.currentTime = m.time
	if m.resetAnchor && m.playback == from {
		p.resetAnchorLocked(m.time)
	}
	p.mu.Unlock()
	p.currentTime.Set(m.time)

	switch {
	case m.playback != from:
		// setPlayback re-anchors at the new time.
		p.setPlayback(m.playback)
	case m.resetAnchor:
		p.resetAudioTime()
	}
}

func (p *Player) publishVideo() {
	current := p.currentTime.Get()
	if v, ok := p.videoSnap.Load().frames[current]; ok && !v.Empty() {
		p.currentVideo.Set(v)
	}
}

func (p *Player) publishStats() {
	s := p.stats.Load()
	p.cachePercentage.Set(s.Percentage)
	p.cachedVideoRanges.Set(s.VideoRanges)
	p.cachedAudioRanges.Set(s.AudioRanges)
}

// TimeAction is a transport step
type TimeAction int

const (
	ActionStart TimeAction = iota
	ActionEnd
	ActionFramePrev
	ActionFrameNext
	ActionFramePrevX10
	ActionFrameNextX10
	ActionJumpBack
	ActionJumpForward
)

// TimeAction stops playback and steps the current time
func (p *Player) TimeAction(a TimeAction) {
	p.SetPlayback(domain.Stop)
	inOut := p.inOutRange.Get()
	current := p.currentTime.Get()
	switch a {
	case ActionStart:
		p.Seek(inOut.Start)
	case ActionEnd:
		p.Seek(inOut.EndInclusive())
	case ActionFramePrev:
		p.Seek(current.Sub(otime.New(1, p.rate)))
	case ActionFrameNext:
		p.Seek(current.Add(otime.New(1, p.rate)))
	case ActionFramePrevX10:
		p.Seek(current.Sub(otime.New(10, p.rate)))
	case ActionFrameNextX10:
		p.Seek(current.Add(otime.New(10, p.rate)))
	case ActionJumpBack:
		p.Seek(current.Sub(otime.New(1, 1)))
	case ActionJumpForward:
		p.Seek(current.Add(otime.New(1, 1)))
	}
}

// Start seeks to the in point
func (p *Player) Start() { p.TimeAction(ActionStart) }

// End seeks to the out point
func (p *Player) End() { p.TimeAction(ActionEnd) }

// FramePrev steps back one frame
func (p *Player) FramePrev() { p.TimeAction(ActionFramePrev) }

// FrameNext steps forward one frame
func (p *Player) FrameNext() { p.TimeAction(ActionFrameNext) }
