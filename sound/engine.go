// SPDX-License-Identifier: EPL-2.0

// Package sound is the playback core: samples, their playbacks, mixing
// groups and effect chains on top of a graph backend.
//
// An Engine is bound to one graph.Context and one event loop. Every method
// of the package must be called from that loop; use eventloop.Loop.Do from
// other goroutines. Buffers are decoded on their own goroutines and handed
// back through the loop.
package sound

import (
	"context"
	"log/slog"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/eventloop"
	"github.com/ik5/audgraph/formats"
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/loader"
)

type Options struct {
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Metrics defaults to unregistered collectors.
	Metrics *Metrics
	// Decoders defaults to formats.DefaultRegistry. Its registration order
	// is the preference order for URLByExtension sources.
	Decoders *audio.Registry
	// Fetcher defaults to loader.NewDefault.
	Fetcher loader.Fetcher
	// FadeDuration is the declick ramp length, DefaultFadeDuration when
	// zero.
	FadeDuration time.Duration
}

type Engine struct {
	ctx   graph.Context
	sched eventloop.Scheduler

	bg     context.Context
	cancel context.CancelFunc

	decoders *audio.Registry
	buffers  *BufferRegistry
	log      *slog.Logger
	metrics  *Metrics
	fade     time.Duration

	root    *Group
	samples *orderedmap.OrderedMap[*Sample, struct{}]
	sounds  *orderedmap.OrderedMap[string, *Sample]
	closed  bool
}

// New creates an engine rendering into ctx and scheduling on sched.
func New(ctx graph.Context, sched eventloop.Scheduler, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Decoders == nil {
		opts.Decoders = formats.DefaultRegistry()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = loader.NewDefault()
	}
	if opts.FadeDuration <= 0 {
		opts.FadeDuration = DefaultFadeDuration
	}

	e := &Engine{
		ctx:      ctx,
		sched:    sched,
		decoders: opts.Decoders,
		log:      opts.Logger.With("component", "sound"),
		metrics:  opts.Metrics,
		fade:     opts.FadeDuration,
		samples:  orderedmap.New[*Sample, struct{}](),
		sounds:   orderedmap.New[string, *Sample](),
	}
	e.bg, e.cancel = context.WithCancel(context.Background())
	e.buffers = newBufferRegistry(e, opts.Fetcher)

	e.root = newGroup(e)
	e.root.OutputNode().Connect(ctx.Destination())

	e.log.Info("engine started", "sample_rate", ctx.SampleRate(),
		"fade", e.fade, "formats", e.decoders.Formats())

	return e
}

func (e *Engine) Context() graph.Context      { return e.ctx }
func (e *Engine) Root() *Group                { return e.root }
func (e *Engine) Buffers() *BufferRegistry    { return e.buffers }
func (e *Engine) FadeDuration() time.Duration { return e.fade }

// Supports reports whether a decoder is registered for the format or
// extension.
func (e *Engine) Supports(format string) bool {
	return e.decoders.Supports(format)
}

// Close destroys every sample and group and cancels pending loads. The
// engine cannot create anything afterwards.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.cancel()

	for _, s := range keys(e.samples) {
		s.Destroy()
	}
	for _, g := range e.root.Subgroups() {
		g.destroy()
	}
	e.root.destroyed = true
	e.root.release()
	e.sounds = orderedmap.New[string, *Sample]()

	e.log.Info("engine closed")
}

func (e *Engine) Closed() bool { return e.closed }

// forget drops a destroyed sample from the engine's bookkeeping.
func (e *Engine) forget(s *Sample) {
	e.samples.Delete(s)
	for pair := e.sounds.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == s {
			e.sounds.Delete(pair.Key)
			return
		}
	}
}

// Register creates a sample under a name. Registering a name again with
// the same source returns the existing sample; with a different source it
// fails with ErrAlreadyRegistered.
func (e *Engine) Register(name string, src Source, opts SampleOptions) (*Sample, error) {
	if s, ok := e.sounds.Get(name); ok {
		if e.sameSource(s.src, src) {
			return s, nil
		}
		return nil, ErrAlreadyRegistered
	}

	s, err := e.NewSample(src, opts)
	if err != nil {
		return nil, err
	}
	e.sounds.Set(name, s)
	return s, nil
}

func (e *Engine) sameSource(a, b Source) bool {
	ra, err := resolve(a, e.decoders)
	if err != nil {
		return false
	}
	rb, err := resolve(b, e.decoders)
	if err != nil {
		return false
	}
	return ra.id == rb.id
}

func (e *Engine) Lookup(name string) (*Sample, bool) {
	return e.sounds.Get(name)
}

// Unregister destroys the named sample.
func (e *Engine) Unregister(name string) error {
	s, ok := e.sounds.Get(name)
	if !ok {
		return ErrUnknownSound
	}
	s.Destroy()
	return nil
}

// Names lists the registered names in registration order.
func (e *Engine) Names() []string { return keys(e.sounds) }

// Play plays the named sample. See Sample.Play.
func (e *Engine) Play(name string, params *PlayParams) (*Playback, error) {
	s, ok := e.sounds.Get(name)
	if !ok {
		return nil, ErrUnknownSound
	}
	return s.Play(params)
}
