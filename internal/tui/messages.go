package tui

import "github.com/mmcdole/reel/internal/domain"

// Message types for the TUI

// TickMsg advances the player clock once per display frame
type TickMsg struct{}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct{}

// PlaybackChangedMsg reports a playback mode change made by the player
// itself, such as stopping at the out point.
type PlaybackChangedMsg struct {
	Playback domain.Playback
}
