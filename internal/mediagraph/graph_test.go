package mediagraph

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPreset(t *testing.T, name string) Preset {
	t.Helper()
	p, err := FindPreset(name)
	require.NoError(t, err)
	return p
}

func waitVideo(t *testing.T, f *domain.Future[domain.VideoData]) domain.VideoData {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("video request never resolved")
	}
	v, ok := f.Value()
	require.True(t, ok)
	return v
}

func waitAudio(t *testing.T, f *domain.Future[domain.AudioData]) domain.AudioData {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("audio request never resolved")
	}
	v, ok := f.Value()
	require.True(t, ok)
	return v
}

func TestFindPreset(t *testing.T) {
	p, err := FindPreset("PAL-25")
	require.NoError(t, err)
	assert.Equal(t, "pal-25", p.Name)

	p, err = FindPreset("ntsc")
	require.NoError(t, err)
	assert.Equal(t, "ntsc-2997", p.Name)

	p, err = FindPreset("multi")
	require.NoError(t, err)
	assert.Equal(t, "multicam-24", p.Name)

	_, err = FindPreset("zzzz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPresetNotFound))
	assert.Contains(t, err.Error(), "did you mean")
}

func TestGraphTimelineInfo(t *testing.T) {
	g := New(mustPreset(t, "smpte-24"))
	defer g.Close()

	assert.Equal(t, otime.New(60*24, 24), g.Duration())
	assert.Equal(t, otime.New(3600*24, 24), g.GlobalStartTime())
	info := g.AVInfo()
	require.Len(t, info.Video, 1)
	require.NotNil(t, info.Audio)
	assert.Equal(t, domain.SampleFloat32, info.Audio.Format)
}

func TestGraphRendersVideo(t *testing.T) {
	g := New(mustPreset(t, "smpte-24"))
	defer g.Close()

	t0 := g.GlobalStartTime().Add(otime.New(100, 24))
	v := waitVideo(t, g.VideoAt(t0, 0))
	require.Len(t, v.Layers, 1)
	assert.Equal(t, t0, v.Time)
	assert.Contains(t, v.Layers[0].Image.Label, "01:00:04:04")
	assert.Len(t, v.Layers[0].Image.Pixels, 64*36*4)

	// Before the global start and for unknown layers the payload is empty.
	assert.True(t, waitVideo(t, g.VideoAt(otime.New(0, 24), 0)).Empty())
	assert.True(t, waitVideo(t, g.VideoAt(t0, 3)).Empty())
}

func TestGraphTransitions(t *testing.T) {
	g := New(mustPreset(t, "multicam-24"))
	defer g.Close()

	// The last frames of each five second clip blend into the next camera.
	v := waitVideo(t, g.VideoAt(otime.New(5*24-1, 24), 0))
	require.Len(t, v.Layers, 1)
	require.NotNil(t, v.Layers[0].ImageB)
	assert.InDelta(t, 1.0, v.Layers[0].Transition, 1e-9)

	v = waitVideo(t, g.VideoAt(otime.New(10, 24), 0))
	assert.Nil(t, v.Layers[0].ImageB)
}

func TestGraphRendersTone(t *testing.T) {
	g := New(mustPreset(t, "pal-25"))
	defer g.Close()

	a := waitAudio(t, g.AudioAt(2))
	require.Len(t, a.Layers, 1)
	layer := a.Layers[0]
	assert.Equal(t, domain.SampleInt16, layer.Format.Format)
	assert.Len(t, layer.Data, 48000*4)

	peak := 0.0
	for i := 0; i < 48000; i++ {
		peak = math.Max(peak, math.Abs(layer.Format.Format.Sample(layer.Data[i*4:])))
	}
	assert.InDelta(t, toneAmplitude, peak, 0.01)

	assert.Empty(t, waitAudio(t, g.AudioAt(30)).Layers)
	assert.Empty(t, waitAudio(t, g.AudioAt(-1)).Layers)
}

func TestGraphSilentPreset(t *testing.T) {
	g := New(mustPreset(t, "silent-30"))
	defer g.Close()
	assert.Nil(t, g.AVInfo().Audio)
	assert.Empty(t, waitAudio(t, g.AudioAt(0)).Layers)
}

func TestGraphDropsRequestsOutsideActiveRanges(t *testing.T) {
	g := New(mustPreset(t, "smpte-24"), WithWorkers(1), WithLatency(20*time.Millisecond))
	defer g.Close()

	start := g.GlobalStartTime()
	g.SetActiveRanges([]otime.TimeRange{otime.NewRange(start, otime.New(10, 24))})

	far := waitVideo(t, g.VideoAt(start.Add(otime.New(500, 24)), 0))
	assert.True(t, far.Empty())
	near := waitVideo(t, g.VideoAt(start.Add(otime.New(5, 24)), 0))
	assert.False(t, near.Empty())
	assert.GreaterOrEqual(t, g.Stats().Dropped, int64(1))
}

func TestGraphCancelAndClose(t *testing.T) {
	g := New(mustPreset(t, "smpte-24"), WithWorkers(1), WithLatency(50*time.Millisecond))

	start := g.GlobalStartTime()
	var futures []*domain.Future[domain.VideoData]
	for i := 0; i < 20; i++ {
		futures = append(futures, g.VideoAt(start.Add(otime.New(float64(i), 24)), 0))
	}
	g.CancelRequests()
	require.NoError(t, g.Close())

	for _, f := range futures {
		_, ok := f.Value()
		assert.True(t, ok, "future left unresolved after close")
	}

	// Requests after close resolve immediately with an empty payload.
	v, ok := g.VideoAt(start, 0).Value()
	require.True(t, ok)
	assert.True(t, v.Empty())
	assert.NoError(t, g.Close())
}
