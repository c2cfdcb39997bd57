package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
)

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// WaitForPlaybackCmd waits for the next playback change on ch. The model
// re-issues it after every message to keep listening.
func WaitForPlaybackCmd(ch <-chan domain.Playback) tea.Cmd {
	return func() tea.Msg {
		pb, ok := <-ch
		if !ok {
			return nil
		}
		return PlaybackChangedMsg{Playback: pb}
	}
}
