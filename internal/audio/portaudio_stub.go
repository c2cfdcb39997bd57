//go:build !portaudio

package audio

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/reel/internal/domain"
)

func newPortAudio(*slog.Logger) (Device, error) {
	return nil, fmt.Errorf("%w: built without portaudio support (use -tags portaudio)", domain.ErrAudioUnavailable)
}
