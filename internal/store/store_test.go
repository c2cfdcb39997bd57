package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

func sampleSettings() domain.PlayerSettings {
	return domain.PlayerSettings{
		Volume:      0.7,
		Mute:        true,
		AudioOffset: 0.04,
		Loop:        "Once",
		ReadAhead:   2 * time.Second,
		ReadBehind:  250 * time.Millisecond,
		VideoLayer:  2,
		Position:    12.5,
	}
}

func TestMemoryStore(t *testing.T) {
	s, err := NewSettingsStore("")
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Load("smpte-24")
	assert.False(t, ok)

	require.NoError(t, s.Save("SMPTE-24", sampleSettings()))
	got, ok := s.Load("smpte-24")
	require.True(t, ok)
	assert.Equal(t, sampleSettings(), got)

	names, err := s.Presets()
	require.NoError(t, err)
	assert.Equal(t, []string{"smpte-24"}, names)

	last, ok := s.LastPreset()
	require.True(t, ok)
	assert.Equal(t, "SMPTE-24", last)
}

func TestPersistentStore(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSettingsStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("pal-25", sampleSettings()))
	require.NoError(t, s.Close())

	s, err = NewSettingsStore(dir)
	require.NoError(t, err)
	defer s.Close()

	got, ok := s.Load("pal-25")
	require.True(t, ok)
	assert.Equal(t, sampleSettings(), got)

	last, ok := s.LastPreset()
	require.True(t, ok)
	assert.Equal(t, "pal-25", last)

	names, err := s.Presets()
	require.NoError(t, err)
	assert.Equal(t, []string{"pal-25"}, names)

	require.NoError(t, s.Forget("pal-25"))
	_, ok = s.Load("pal-25")
	assert.False(t, ok)
}
