package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureResolvesOnce(t *testing.T) {
	f := NewFuture[int]()
	_, ok := f.Value()
	assert.False(t, ok)

	var wg sync.WaitGroup
	wins := make(chan int, 8)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.Resolve(i) {
				wins <- i
			}
		}()
	}
	wg.Wait()
	close(wins)

	require.Len(t, wins, 1)
	winner := <-wins
	<-f.Done()
	v, ok := f.Value()
	assert.True(t, ok)
	assert.Equal(t, winner, v)

	r := Resolved("ready")
	v2, ok := r.Value()
	assert.True(t, ok)
	assert.Equal(t, "ready", v2)
	assert.False(t, r.Resolve("late"))
}

func TestSampleRoundTrip(t *testing.T) {
	for _, f := range []SampleFormat{SampleInt16, SampleInt32, SampleFloat32} {
		t.Run(f.String(), func(t *testing.T) {
			b := make([]byte, f.ByteCount())
			f.PutSample(b, 0.5)
			assert.InDelta(t, 0.5, f.Sample(b), 1e-4)

			f.PutSample(b, 3)
			assert.InDelta(t, 1, f.Sample(b), 1e-4, "clipped high")
			f.PutSample(b, -3)
			assert.InDelta(t, -1, f.Sample(b), 1e-4, "clipped low")
		})
	}
	assert.Zero(t, SampleNone.ByteCount())
}

func TestAudioFormat(t *testing.T) {
	f := AudioFormat{Channels: 2, SampleRate: 48000, Format: SampleFloat32}
	assert.True(t, f.IsValid())
	assert.Equal(t, 8, f.FrameBytes())
	assert.Equal(t, "2ch 48000Hz f32", f.String())
	assert.False(t, AudioFormat{Channels: 2, SampleRate: 48000}.IsValid())
}

func TestModes(t *testing.T) {
	pb, err := ParsePlayback("reverse")
	require.NoError(t, err)
	assert.Equal(t, Reverse, pb)
	_, err = ParsePlayback("sideways")
	assert.Error(t, err)

	loop, err := ParseLoop("pingpong")
	require.NoError(t, err)
	assert.Equal(t, LoopPingPong, loop)
	assert.Equal(t, LoopLoop, loop.Next())
	assert.Equal(t, "Once", LoopOnce.String())
	assert.Equal(t, "Loop(9)", Loop(9).String())
}
