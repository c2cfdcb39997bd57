package audio

import (
	"bytes"
	"testing"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

var testFormat = domain.AudioFormat{Channels: 2, SampleRate: 48000, Format: domain.SampleFloat32}

func TestVirtualPumpCountsFrames(t *testing.T) {
	var sink bytes.Buffer
	dev := NewVirtual(testingclock.NewFakeClock(time.Unix(0, 0)), &sink)

	calls := 0
	err := dev.Open(StreamConfig{Format: testFormat, BufferFrames: 480}, func(out []byte, frames int) {
		calls++
		assert.Equal(t, 480, frames)
		assert.Len(t, out, 480*8)
		for i := range out {
			out[i] = 1
		}
	})
	require.NoError(t, err)

	dev.Pump(10)
	assert.Equal(t, 10, calls)
	assert.InDelta(t, 0.1, dev.StreamTime(), 1e-9)
	assert.Equal(t, 10*480*8, sink.Len())
	assert.Equal(t, byte(1), dev.LastBuffer()[0])

	dev.ResetStreamTime()
	assert.Zero(t, dev.StreamTime())
}

func TestVirtualTickerDrivesCallback(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Unix(0, 0))
	dev := NewVirtual(clk, nil)

	called := make(chan struct{}, 16)
	require.NoError(t, dev.Open(StreamConfig{Format: testFormat, BufferFrames: 480}, func([]byte, int) {
		select {
		case called <- struct{}{}:
		default:
		}
	}))
	require.NoError(t, dev.Start())
	assert.True(t, dev.IsRunning())

	require.Eventually(t, clk.HasWaiters, time.Second, time.Millisecond)
	clk.Step(10 * time.Millisecond)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("callback not invoked after ticker fired")
	}

	require.NoError(t, dev.Close())
	assert.False(t, dev.IsRunning())
}

func TestVirtualRejectsInvalidConfig(t *testing.T) {
	dev := NewVirtual(nil, nil)
	assert.Error(t, dev.Open(StreamConfig{BufferFrames: 10}, func([]byte, int) {}))
	assert.Error(t, dev.Start())
}

func TestNullDeviceIsUnavailable(t *testing.T) {
	dev, err := New("null", nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, dev.Open(StreamConfig{}, nil), domain.ErrAudioUnavailable)
	assert.False(t, dev.IsRunning())

	_, err = New("bogus", nil, nil)
	assert.Error(t, err)
}
