// internal/plot/plotter.go
package plot

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"serial-plotter/internal/stream"
)

const (
	DefaultChannels   = 2
	DefaultBufferSize = 300
)

// Options configures a Plotter
type Options struct {
	Channels   int
	BufferSize int
	MaxFPS     int
	Policy     MissingPolicy
	// Encoding is a text encoding label understood by stream.NewTextDecoder
	Encoding string
	Clock    clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Channels <= 0 {
		o.Channels = DefaultChannels
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.MaxFPS == 0 {
		o.MaxFPS = DefaultMaxFPS
	}
	if o.Policy == "" {
		o.Policy = PolicyHold
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Renderer receives a channel snapshot whenever the rate limiter allows a redraw
type Renderer interface {
	Render(s Snapshot)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(s Snapshot)

// Render calls f(s)
func (f RendererFunc) Render(s Snapshot) {
	f(s)
}

// Stats counts pipeline activity
type Stats struct {
	Lines         uint64 `json:"lines"`
	Samples       uint64 `json:"samples"`
	SkippedChunks uint64 `json:"skipped_chunks"`
	SkippedFields uint64 `json:"skipped_fields"`
	Renders       uint64 `json:"renders"`
}

// Plotter turns raw chunks into per-channel plot buffers. Feed and Reset
// must be called from one goroutine; snapshots may be read from any.
type Plotter struct {
	opts     Options
	logger   *zap.Logger
	decoder  *stream.LineDecoder
	buffers  *Buffers
	limiter  *RateLimiter
	renderer atomic.Pointer[Renderer]

	lines         atomic.Uint64
	samples       atomic.Uint64
	skippedChunks atomic.Uint64
	skippedFields atomic.Uint64
	renders       atomic.Uint64
}

// New creates a plotter with empty buffers
func New(opts Options, logger *zap.Logger) (*Plotter, error) {
	opts = opts.withDefaults()

	if _, err := ParseMissingPolicy(string(opts.Policy)); err != nil {
		return nil, err
	}

	text, err := stream.NewTextDecoder(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to create plotter: %w", err)
	}

	return &Plotter{
		opts:    opts,
		logger:  logger.With(zap.String("component", "plotter")),
		decoder: stream.NewLineDecoder(text),
		buffers: NewBuffers(opts.Channels, opts.BufferSize),
		limiter: NewRateLimiter(opts.Channels, opts.MaxFPS, opts.Clock.Now()),
	}, nil
}

// SetRenderer installs the redraw target. nil disables rendering.
func (p *Plotter) SetRenderer(r Renderer) {
	if r == nil {
		p.renderer.Store(nil)
		return
	}
	p.renderer.Store(&r)
}

// Feed processes one chunk and returns the lines it completed
func (p *Plotter) Feed(chunk []byte) []string {
	lines, err := p.decoder.Feed(chunk)
	if err != nil {
		if errors.Is(err, stream.ErrUndecodable) {
			p.skippedChunks.Add(1)
			p.logger.Debug("Dropped undecodable chunk", zap.Int("bytes", len(chunk)), zap.Error(err))
			return nil
		}
		p.logger.Warn("Failed to decode chunk", zap.Error(err))
		return nil
	}

	for _, line := range lines {
		p.feedLine(line)
	}
	return lines
}

func (p *Plotter) feedLine(line string) {
	p.lines.Add(1)

	rec := stream.Parse(line, p.opts.Channels)
	p.samples.Add(uint64(len(rec.Samples)))
	p.skippedFields.Add(uint64(rec.Skipped()))

	now := p.opts.Clock.Now()
	for ch := 0; ch < rec.Width; ch++ {
		v, ok := rec.Value(ch)
		if !p.buffers.Step(ch, v, ok, p.opts.Policy) {
			continue
		}
		if p.limiter.ShouldRender(ch, now) {
			p.render(ch, now)
		}
	}
}

func (p *Plotter) render(ch int, now time.Time) {
	r := p.renderer.Load()
	if r == nil {
		return
	}

	snap, err := p.buffers.Snapshot(ch)
	if err != nil {
		return
	}
	snap.RenderedAt = now

	p.renders.Add(1)
	(*r).Render(snap)
}

// Reset discards any partial line. Buffers are kept.
func (p *Plotter) Reset() {
	p.decoder.Reset()
}

// Clear empties the plot buffers
func (p *Plotter) Clear() {
	p.buffers.Reset()
}

// Snapshot copies channel ch along with its last render time
func (p *Plotter) Snapshot(ch int) (Snapshot, error) {
	snap, err := p.buffers.Snapshot(ch)
	if err != nil {
		return Snapshot{}, err
	}
	snap.RenderedAt = p.limiter.LastRender(ch)
	return snap, nil
}

// Snapshots copies every channel
func (p *Plotter) Snapshots() []Snapshot {
	snaps := p.buffers.Snapshots()
	for i := range snaps {
		snaps[i].RenderedAt = p.limiter.LastRender(i)
	}
	return snaps
}

// Channels returns the number of plots
func (p *Plotter) Channels() int {
	return p.opts.Channels
}

// BufferSize returns the number of points per plot
func (p *Plotter) BufferSize() int {
	return p.opts.BufferSize
}

// Policy returns the missing value policy
func (p *Plotter) Policy() MissingPolicy {
	return p.opts.Policy
}

// Stats returns a snapshot of the counters
func (p *Plotter) Stats() Stats {
	return Stats{
		Lines:         p.lines.Load(),
		Samples:       p.samples.Load(),
		SkippedChunks: p.skippedChunks.Load(),
		SkippedFields: p.skippedFields.Load(),
		Renders:       p.renders.Load(),
	}
}
