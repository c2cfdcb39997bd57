package tui

import (
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/player"
)

// playbackWatch adapts the player's playback observable to a channel for
// Bubble Tea. Changes are dropped when the channel is full.
type playbackWatch struct {
	ch     <-chan domain.Playback
	cancel func()
}

func watchPlayback(p *player.Player) playbackWatch {
	ch, cancel := p.Playback().Chan(8)
	return playbackWatch{ch: ch, cancel: cancel}
}
