package player

import (
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
)

// SetExternalTime makes the player follow master's playback mode and
// current time instead of its own clock. A nil master detaches.
func (p *Player) SetExternalTime(master *Player) {
	if master == p {
		master = nil
	}

	p.extMu.Lock()
	for _, cancel := range p.unsubscribe {
		cancel()
	}
	p.unsubscribe = nil
	p.master = master
	if master != nil {
		p.unsubscribe = []func(){
			master.playback.Observe(p.followPlayback),
			master.currentTime.Observe(func(t otime.RationalTime) { p.followTime(master, t) }),
		}
	}
	p.extMu.Unlock()

	following := master != nil
	p.mu.Lock()
	changed := p.state.externalTime != following
	p.state.externalTime = following
	if !following && changed && p.state.playback != domain.Stop {
		p.resetAnchorLocked(p.state.currentTime)
	}
	p.mu.Unlock()

	p.audioMu.Lock()
	p.audio.externalTime = following
	p.audioMu.Unlock()

	if following {
		p.followPlayback(master.playback.Get())
		p.followTime(master, master.currentTime.Get())
		p.logger.Debug("following external time", "master", master.timeRange.String())
	}
}

func (p *Player) followPlayback(pb domain.Playback) {
	p.setPlayback(pb)
}

// followTime maps master's time onto this timeline: the offset from the
// master's global start is rescaled and added to our global start.
// Unlike Seek, following keeps pending requests alive.
func (p *Player) followTime(master *Player, t otime.RationalTime) {
	t, _ = otime.Loop(externalTime(t, master.timeRange.Start, p.timeRange.Start, p.rate), p.timeRange)
	if !p.currentTime.Set(t) {
		return
	}
	p.mu.Lock()
	p.state.currentTime = t
	p.mu.Unlock()
}

func externalTime(t, masterStart, start otime.RationalTime, rate float64) otime.RationalTime {
	return start.Add(t.Sub(masterStart).RescaledTo(rate).Floor())
}
