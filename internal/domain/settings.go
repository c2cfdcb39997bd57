package domain

import "time"

// PlayerSettings are the user adjustable player values worth keeping
// between sessions.
type PlayerSettings struct {
	Volume      float64       `json:"volume"`
	Mute        bool          `json:"mute"`
	AudioOffset float64       `json:"audio_offset"`
	Loop        string        `json:"loop"`
	ReadAhead   time.Duration `json:"read_ahead"`
	ReadBehind  time.Duration `json:"read_behind"`
	VideoLayer  int           `json:"video_layer"`
	Position    float64       `json:"position"` // seconds from the global start
}
