package mediagraph

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/otime"
	"github.com/sourcegraph/conc/pool"
)

const defaultWorkers = 4

// Option configures a Graph
type Option func(*Graph)

// WithLatency delays every render, simulating decode time
func WithLatency(d time.Duration) Option {
	return func(g *Graph) { g.latency = d }
}

// WithWorkers bounds the number of concurrent renders
func WithWorkers(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// Stats counts requests handled by a Graph
type Stats struct {
	Requested int64
	Rendered  int64
	Dropped   int64
}

type request struct {
	time    otime.RationalTime
	layer   int
	seconds int64
	video   *domain.Future[domain.VideoData]
	audio   *domain.Future[domain.AudioData]
}

// Graph serves a preset's frames and audio asynchronously. Requests are
// queued and handed to a bounded worker pool by a dispatcher goroutine, so
// VideoAt and AudioAt never block the caller.
type Graph struct {
	preset  Preset
	gen     generator
	logger  *slog.Logger
	latency time.Duration
	workers int
	pool    *pool.Pool

	mu     sync.Mutex
	queue  []*request
	active []otime.TimeRange
	closed bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	requested atomic.Int64
	rendered  atomic.Int64
	dropped   atomic.Int64
}

var _ domain.Timeline = (*Graph)(nil)

// New creates a Graph for p and starts its dispatcher
func New(p Preset, opts ...Option) *Graph {
	g := &Graph{
		preset:  p,
		gen:     newGenerator(p),
		logger:  slog.Default(),
		workers: defaultWorkers,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.pool = pool.New().WithMaxGoroutines(g.workers)

	g.wg.Add(1)
	go g.dispatchLoop()

	g.logger.Debug("media graph created", "preset", p.Name, "rate", p.Rate, "workers", g.workers)
	return g
}

// Preset returns the preset the graph renders
func (g *Graph) Preset() Preset { return g.preset }

func (g *Graph) VideoAt(t otime.RationalTime, layer int) *domain.Future[domain.VideoData] {
	f := domain.NewFuture[domain.VideoData]()
	if !g.enqueue(&request{time: t, layer: layer, video: f}) {
		f.Resolve(domain.VideoData{Time: t})
	}
	return f
}

func (g *Graph) AudioAt(seconds int64) *domain.Future[domain.AudioData] {
	f := domain.NewFuture[domain.AudioData]()
	if !g.enqueue(&request{seconds: seconds, audio: f}) {
		f.Resolve(domain.AudioData{Seconds: seconds})
	}
	return f
}

func (g *Graph) enqueue(r *request) bool {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return false
	}
	g.queue = append(g.queue, r)
	g.mu.Unlock()

	g.requested.Add(1)
	select {
	case g.wake <- struct{}{}:
	default:
	}
	return true
}

// SetActiveRanges drops queued requests outside ranges before they render
func (g *Graph) SetActiveRanges(ranges []otime.TimeRange) {
	g.mu.Lock()
	g.active = slices.Clone(ranges)
	g.mu.Unlock()
}

// CancelRequests resolves every queued request with an empty payload.
// Renders already running complete normally.
func (g *Graph) CancelRequests() {
	g.mu.Lock()
	queue := g.queue
	g.queue = nil
	g.mu.Unlock()

	for _, r := range queue {
		g.resolveEmpty(r)
	}
	if len(queue) > 0 {
		g.logger.Debug("cancelled requests", "count", len(queue))
	}
}

func (g *Graph) AVInfo() domain.AVInfo {
	info := domain.AVInfo{Audio: g.preset.Audio}
	for i := 0; i < g.preset.Layers; i++ {
		info.Video = append(info.Video, domain.VideoInfo{
			Name:   "cam" + string(rune('1'+i)),
			Width:  g.preset.Width,
			Height: g.preset.Height,
		})
	}
	return info
}

func (g *Graph) Duration() otime.RationalTime {
	return otime.New(math.Round(g.preset.Duration*g.preset.Rate), g.preset.Rate)
}

func (g *Graph) GlobalStartTime() otime.RationalTime {
	return otime.New(math.Round(g.preset.Start*g.preset.Rate), g.preset.Rate)
}

// Stats returns request counters
func (g *Graph) Stats() Stats {
	return Stats{
		Requested: g.requested.Load(),
		Rendered:  g.rendered.Load(),
		Dropped:   g.dropped.Load(),
	}
}

// Close stops the dispatcher, resolves queued requests and waits for
// running renders.
func (g *Graph) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.mu.Unlock()

	close(g.done)
	g.wg.Wait()
	g.CancelRequests()
	g.pool.Wait()
	return nil
}

func (g *Graph) dispatchLoop() {
	defer g.wg.Done()
	for {
		select {
		case <-g.done:
			return
		case <-g.wake:
		}

		for {
			r, active := g.pop()
			if r == nil {
				break
			}
			if !wanted(r, active) {
				g.dropped.Add(1)
				g.resolveEmpty(r)
				continue
			}
			g.pool.Go(func() { g.render(r) })

			select {
			case <-g.done:
				return
			default:
			}
		}
	}
}

func (g *Graph) pop() (*request, []otime.TimeRange) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queue) == 0 {
		return nil, nil
	}
	r := g.queue[0]
	g.queue[0] = nil
	g.queue = g.queue[1:]
	return r, g.active
}

// wanted reports whether r still lies in the active ranges; with no ranges
// every request is wanted.
func wanted(r *request, active []otime.TimeRange) bool {
	if len(active) == 0 {
		return true
	}
	for _, ar := range active {
		if r.video != nil && ar.Contains(r.time) {
			return true
		}
		if r.audio != nil && ar.Intersects(otime.SecondRange(r.seconds)) {
			return true
		}
	}
	return false
}

func (g *Graph) render(r *request) {
	if g.latency > 0 {
		time.Sleep(g.latency)
	}
	if r.video != nil {
		r.video.Resolve(g.gen.video(r.time, r.layer))
	} else {
		r.audio.Resolve(g.gen.audio(r.seconds))
	}
	g.rendered.Add(1)
}

func (g *Graph) resolveEmpty(r *request) {
	if r.video != nil {
		r.video.Resolve(domain.VideoData{Time: r.time})
	} else {
		r.audio.Resolve(domain.AudioData{Seconds: r.seconds})
	}
}
