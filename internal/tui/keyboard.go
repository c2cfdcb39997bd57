package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/player"
)

const (
	volumeStep = 0.1
	offsetStep = 0.01
	minSpeed   = 1.0
	maxSpeed   = 960.0
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.Player

	if m.State == StateHelp {
		if key.Matches(msg, Keys.Help, Keys.Quit) {
			m.State = StateViewing
			m.help.ShowAll = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		m.help.ShowAll = true
		return m, nil

	// Transport
	case key.Matches(msg, Keys.PlayStop):
		if p.Playback().Get() == domain.Stop {
			p.SetPlayback(domain.Forward)
		} else {
			p.SetPlayback(domain.Stop)
		}
	case key.Matches(msg, Keys.Reverse):
		if p.Playback().Get() == domain.Reverse {
			p.SetPlayback(domain.Stop)
		} else {
			p.SetPlayback(domain.Reverse)
		}
	case key.Matches(msg, Keys.FramePrev):
		p.FramePrev()
	case key.Matches(msg, Keys.FrameNext):
		p.FrameNext()
	case key.Matches(msg, Keys.JumpBack):
		p.TimeAction(player.ActionJumpBack)
	case key.Matches(msg, Keys.JumpAhead):
		p.TimeAction(player.ActionJumpForward)
	case key.Matches(msg, Keys.Start):
		p.Start()
	case key.Matches(msg, Keys.End):
		p.End()

	// Range
	case key.Matches(msg, Keys.Loop):
		loop := p.Loop().Get().Next()
		p.SetLoop(loop)
		return m.setStatus("Loop: "+loop.String(), false)
	case key.Matches(msg, Keys.SetIn):
		p.SetInPoint()
	case key.Matches(msg, Keys.SetOut):
		p.SetOutPoint()
	case key.Matches(msg, Keys.ResetIn):
		p.ResetInPoint()
	case key.Matches(msg, Keys.ResetOut):
		p.ResetOutPoint()
	case key.Matches(msg, Keys.ClearCache):
		p.ClearCache()
		return m.setStatus("Cache cleared", false)
	case key.Matches(msg, Keys.Layer):
		layer := int(msg.String()[0] - '1')
		if layer >= len(p.AVInfo().Video) {
			return m.setStatus(fmt.Sprintf("No video layer %d", layer+1), true)
		}
		p.SetVideoLayer(layer)

	// Speed and audio
	case key.Matches(msg, Keys.SpeedDown):
		p.SetSpeed(max(minSpeed, p.Speed().Get()/2))
	case key.Matches(msg, Keys.SpeedUp):
		p.SetSpeed(min(maxSpeed, p.Speed().Get()*2))
	case key.Matches(msg, Keys.SpeedNative):
		p.SetSpeed(p.Rate())
	case key.Matches(msg, Keys.VolumeDown):
		p.SetVolume(p.Volume().Get() - volumeStep)
	case key.Matches(msg, Keys.VolumeUp):
		p.SetVolume(p.Volume().Get() + volumeStep)
	case key.Matches(msg, Keys.Mute):
		p.SetMute(!p.Mute().Get())
	case key.Matches(msg, Keys.OffsetEarlier):
		p.SetAudioOffset(p.AudioOffset().Get() - offsetStep)
	case key.Matches(msg, Keys.OffsetLater):
		p.SetAudioOffset(p.AudioOffset().Get() + offsetStep)
	}
	return m, nil
}
