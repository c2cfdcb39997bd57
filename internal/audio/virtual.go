package audio

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"
)

// Virtual is a software audio device. A ticker paced by the configured clock
// invokes the callback once per buffer period; rendered buffers go to an
// optional sink. Stream time is the number of frames delivered.
type Virtual struct {
	clock clock.WithTicker
	sink  io.Writer

	mu   sync.Mutex
	cfg  StreamConfig
	cb   Callback
	buf  []byte
	stop chan struct{}
	wg   sync.WaitGroup

	running atomic.Bool
	frames  atomic.Int64
}

// NewVirtual creates a virtual device paced by clk. A nil clock uses the
// wall clock; a nil sink discards output.
func NewVirtual(clk clock.WithTicker, sink io.Writer) *Virtual {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Virtual{clock: clk, sink: sink}
}

func (v *Virtual) Open(cfg StreamConfig, cb Callback) error {
	if !cfg.Format.IsValid() || cfg.BufferFrames <= 0 {
		return errors.New("virtual audio: invalid stream config")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cfg = cfg
	v.cb = cb
	v.buf = make([]byte, cfg.BufferBytes())
	return nil
}

func (v *Virtual) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cb == nil {
		return errors.New("virtual audio: stream not open")
	}
	if v.running.Load() {
		return nil
	}

	period := time.Duration(float64(v.cfg.BufferFrames) / float64(v.cfg.Format.SampleRate) * float64(time.Second))
	ticker := v.clock.NewTicker(period)
	v.stop = make(chan struct{})
	v.running.Store(true)

	v.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer v.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				v.render()
			}
		}
	}(v.stop)
	return nil
}

// Pump renders n buffers synchronously on the calling goroutine.
func (v *Virtual) Pump(n int) {
	for i := 0; i < n; i++ {
		v.render()
	}
}

func (v *Virtual) render() {
	if v.cb == nil {
		return
	}
	v.cb(v.buf, v.cfg.BufferFrames)
	v.frames.Add(int64(v.cfg.BufferFrames))
	if v.sink != nil {
		v.sink.Write(v.buf)
	}
}

// LastBuffer returns a copy of the most recently rendered buffer
func (v *Virtual) LastBuffer() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]byte, len(v.buf))
	copy(out, v.buf)
	return out
}

func (v *Virtual) Abort() error {
	v.mu.Lock()
	if !v.running.Load() {
		v.mu.Unlock()
		return nil
	}
	close(v.stop)
	v.running.Store(false)
	v.mu.Unlock()

	v.wg.Wait()
	return nil
}

func (v *Virtual) Close() error {
	return v.Abort()
}

func (v *Virtual) IsRunning() bool { return v.running.Load() }

func (v *Virtual) StreamTime() float64 {
	if v.cfg.Format.SampleRate == 0 {
		return 0
	}
	return float64(v.frames.Load()) / float64(v.cfg.Format.SampleRate)
}

func (v *Virtual) ResetStreamTime() { v.frames.Store(0) }
