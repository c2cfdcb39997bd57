package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNoTimeline indicates a player was created without a media graph
	ErrNoTimeline = errors.New("no timeline")

	// ErrInvalidDuration indicates the timeline reported an empty or invalid duration
	ErrInvalidDuration = errors.New("timeline duration is invalid")

	// ErrAudioUnavailable indicates no audio device could be opened
	ErrAudioUnavailable = errors.New("audio device unavailable")

	// ErrInvalidConfig indicates a configuration value out of range
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPresetNotFound indicates no test pattern preset matched a name
	ErrPresetNotFound = errors.New("preset not found")
)
