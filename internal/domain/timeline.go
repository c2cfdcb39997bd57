package domain

import "github.com/mmcdole/reel/internal/otime"

// Timeline is the media graph the player pulls decoded data from.
//
// Fetches never fail: a frame or second that cannot be produced resolves
// with an empty payload. The player simply asks again while the time stays
// in its active range.
type Timeline interface {
	// VideoAt requests the frame at t for the given video layer
	VideoAt(t otime.RationalTime, layer int) *Future[VideoData]

	// AudioAt requests one whole second of audio
	AudioAt(seconds int64) *Future[AudioData]

	// SetActiveRanges hints which ranges the player keeps resident
	SetActiveRanges(ranges []otime.TimeRange)

	// CancelRequests resolves or drops every pending request (best effort)
	CancelRequests()

	AVInfo() AVInfo
	Duration() otime.RationalTime
	GlobalStartTime() otime.RationalTime
}
