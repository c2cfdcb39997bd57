package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/adapter"
	"github.com/mmcdole/reel/internal/audio"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/mediagraph"
	"github.com/mmcdole/reel/internal/player"
)

func newTestModel(t *testing.T, presetName string) Model {
	t.Helper()
	preset, err := mediagraph.FindPreset(presetName)
	require.NoError(t, err)
	graph := mediagraph.New(preset, mediagraph.WithLogger(adapter.NullLogger()))
	t.Cleanup(func() { _ = graph.Close() })

	opts := player.DefaultOptions()
	opts.Logger = adapter.NullLogger()
	p, err := player.New(t.Context(), graph, audio.Null{}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	m := NewModel(p, preset.Name, 30, adapter.NullLogger())
	t.Cleanup(m.Close)
	return update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(m Model, keys string) Model {
	return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
}

func TestPlayStopToggle(t *testing.T) {
	m := newTestModel(t, "smpte-24")

	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, domain.Forward, m.Player.Playback().Get())

	m = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, domain.Stop, m.Player.Playback().Get())

	m = press(m, "r")
	assert.Equal(t, domain.Reverse, m.Player.Playback().Get())
}

func TestFrameStepKeys(t *testing.T) {
	m := newTestModel(t, "smpte-24")
	start := m.Player.CurrentTime().Get()

	m = update(m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(m, tea.KeyMsg{Type: tea.KeyRight})
	m = update(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, start.Value+1, m.Player.CurrentTime().Get().Value)

	update(m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, m.Player.InOutRange().Get().EndInclusive(), m.Player.CurrentTime().Get())
}

func TestLoopAndRangeKeys(t *testing.T) {
	m := newTestModel(t, "smpte-24")

	m = press(m, "l")
	assert.Equal(t, domain.LoopOnce, m.Player.Loop().Get())
	assert.Equal(t, "Loop: Once", m.StatusMsg)

	for range 10 {
		m = update(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	m = press(m, "i")
	assert.Equal(t, m.Player.CurrentTime().Get(), m.Player.InOutRange().Get().Start)

	m = press(m, "I")
	assert.Equal(t, m.Player.TimeRange().Start, m.Player.InOutRange().Get().Start)
}

func TestAudioKeys(t *testing.T) {
	m := newTestModel(t, "smpte-24")

	m = press(m, "-")
	assert.InDelta(t, 0.9, m.Player.Volume().Get(), 1e-9)
	m = press(m, "m")
	assert.True(t, m.Player.Mute().Get())
	m = press(m, "]")
	assert.InDelta(t, 0.01, m.Player.AudioOffset().Get(), 1e-9)
	m = press(m, ".")
	assert.Equal(t, 48.0, m.Player.Speed().Get())
	press(m, "/")
	assert.Equal(t, 24.0, m.Player.Speed().Get())
}

func TestLayerKeys(t *testing.T) {
	m := newTestModel(t, "multicam-24")

	m = press(m, "3")
	assert.Equal(t, 2, m.Player.VideoLayer().Get())

	m = press(m, "9")
	assert.Equal(t, 2, m.Player.VideoLayer().Get())
	assert.True(t, m.StatusIsErr)
}

func TestQuitAndHelp(t *testing.T) {
	m := newTestModel(t, "smpte-24")

	m = press(m, "?")
	assert.Equal(t, StateHelp, m.State)
	m = press(m, "?")
	assert.Equal(t, StateViewing, m.State)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestTickAndView(t *testing.T) {
	m := newTestModel(t, "smpte-24")

	_, cmd := m.Update(TickMsg{})
	assert.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "smpte-24")
	assert.Contains(t, view, "01:00:00:00")
	assert.Contains(t, view, "Stop")
}

func TestPlaybackChangedStatus(t *testing.T) {
	m := newTestModel(t, "smpte-24")
	m.Player.SetLoop(domain.LoopOnce)

	m = update(m, PlaybackChangedMsg{Playback: domain.Stop})
	assert.Contains(t, m.StatusMsg, "Stopped at")

	m = update(m, ClearStatusMsg{})
	assert.Empty(t, m.StatusMsg)
}
