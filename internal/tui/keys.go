package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the viewer
type KeyMap struct {
	// Transport
	PlayStop  key.Binding
	Reverse   key.Binding
	FramePrev key.Binding
	FrameNext key.Binding
	JumpBack  key.Binding
	JumpAhead key.Binding
	Start     key.Binding
	End       key.Binding

	// Range
	Loop          key.Binding
	SetIn         key.Binding
	SetOut        key.Binding
	ResetIn       key.Binding
	ResetOut      key.Binding
	ClearCache    key.Binding
	Layer         key.Binding
	SpeedDown     key.Binding
	SpeedUp       key.Binding
	SpeedNative   key.Binding
	VolumeDown    key.Binding
	VolumeUp      key.Binding
	Mute          key.Binding
	OffsetEarlier key.Binding
	OffsetLater   key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Transport
		PlayStop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/stop"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reverse"),
		),
		FramePrev: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "prev frame"),
		),
		FrameNext: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next frame"),
		),
		JumpBack: key.NewBinding(
			key.WithKeys("shift+left", "down"),
			key.WithHelp("↓", "back 1s"),
		),
		JumpAhead: key.NewBinding(
			key.WithKeys("shift+right", "up"),
			key.WithHelp("↑", "ahead 1s"),
		),
		Start: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "in point"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "out point"),
		),

		// Range
		Loop: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "loop mode"),
		),
		SetIn: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "set in"),
		),
		SetOut: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "set out"),
		),
		ResetIn: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "reset in"),
		),
		ResetOut: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "reset out"),
		),
		ClearCache: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear cache"),
		),
		Layer: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "video layer"),
		),
		SpeedDown: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "slower"),
		),
		SpeedUp: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "faster"),
		),
		SpeedNative: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "native speed"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "volume down"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "volume up"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		OffsetEarlier: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "audio earlier"),
		),
		OffsetLater: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "audio later"),
		),

		// Application
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayStop, k.Reverse, k.FramePrev, k.FrameNext, k.Loop, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayStop, k.Reverse, k.FramePrev, k.FrameNext, k.JumpBack, k.JumpAhead, k.Start, k.End},
		{k.Loop, k.SetIn, k.SetOut, k.ResetIn, k.ResetOut, k.ClearCache, k.Layer},
		{k.SpeedDown, k.SpeedUp, k.SpeedNative, k.VolumeDown, k.VolumeUp, k.Mute, k.OffsetEarlier, k.OffsetLater},
		{k.Help, k.Quit},
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()
