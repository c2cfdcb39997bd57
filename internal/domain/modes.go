package domain

import (
	"fmt"
	"strings"
)

// Playback is the transport state of a player
type Playback int

const (
	Stop Playback = iota
	Forward
	Reverse
)

var playbackNames = [...]string{"Stop", "Forward", "Reverse"}

func (p Playback) String() string {
	if p < 0 || int(p) >= len(playbackNames) {
		return fmt.Sprintf("Playback(%d)", int(p))
	}
	return playbackNames[p]
}

// ParsePlayback converts a case-insensitive name to a Playback
func ParsePlayback(s string) (Playback, error) {
	for i, name := range playbackNames {
		if strings.EqualFold(name, s) {
			return Playback(i), nil
		}
	}
	return Stop, fmt.Errorf("unknown playback mode %q", s)
}

// Loop is the edge behavior applied when playback reaches the in/out range
type Loop int

const (
	LoopLoop Loop = iota
	LoopOnce
	LoopPingPong
)

var loopNames = [...]string{"Loop", "Once", "PingPong"}

func (l Loop) String() string {
	if l < 0 || int(l) >= len(loopNames) {
		return fmt.Sprintf("Loop(%d)", int(l))
	}
	return loopNames[l]
}

// Next returns the following loop mode, wrapping around (used by key bindings)
func (l Loop) Next() Loop {
	return Loop((int(l) + 1) % len(loopNames))
}

// ParseLoop converts a case-insensitive name to a Loop
func ParseLoop(s string) (Loop, error) {
	for i, name := range loopNames {
		if strings.EqualFold(name, s) {
			return Loop(i), nil
		}
	}
	return LoopLoop, fmt.Errorf("unknown loop mode %q", s)
}

// CacheDirection selects which side of the current time is prefetched
type CacheDirection int

const (
	CacheForward CacheDirection = iota
	CacheReverse
)

func (d CacheDirection) String() string {
	if d == CacheReverse {
		return "Reverse"
	}
	return "Forward"
}
