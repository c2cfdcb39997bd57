package player

import (
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
)

// Settings captures the user adjustable state of the player
func (p *Player) Settings() domain.PlayerSettings {
	return domain.PlayerSettings{
		Volume:      p.volume.Get(),
		Mute:        p.mute.Get(),
		AudioOffset: p.audioOffset.Get(),
		Loop:        p.loop.Get().String(),
		ReadAhead:   p.cacheReadAhead.Get(),
		ReadBehind:  p.cacheReadBehind.Get(),
		VideoLayer:  p.videoLayer.Get(),
		Position:    p.currentTime.Get().Sub(p.timeRange.Start).Seconds(),
	}
}

// ApplySettings restores previously captured settings. Values that do not
// fit this timeline are ignored.
func (p *Player) ApplySettings(s domain.PlayerSettings) {
	p.SetVolume(s.Volume)
	p.SetMute(s.Mute)
	p.SetAudioOffset(s.AudioOffset)
	if loop, err := domain.ParseLoop(s.Loop); err == nil {
		p.SetLoop(loop)
	} else if s.Loop != "" {
		p.logger.Warn("ignoring stored loop mode", "loop", s.Loop, "error", err)
	}
	if s.ReadAhead > 0 {
		p.SetCacheReadAhead(s.ReadAhead)
	}
	if s.ReadBehind > 0 {
		p.SetCacheReadBehind(s.ReadBehind)
	}
	if s.VideoLayer >= 0 && s.VideoLayer < len(p.avInfo.Video) {
		p.SetVideoLayer(s.VideoLayer)
	}
	if s.Position > 0 {
		p.Seek(p.timeRange.Start.Add(otime.FromSeconds(s.Position, p.rate)))
	}
}
