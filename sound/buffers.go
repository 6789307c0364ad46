// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/eventloop"
	"github.com/ik5/audgraph/loader"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

// BufferResult is the outcome of a buffer request. ID is the canonical id
// the source resolved to.
type BufferResult struct {
	Buffer *audio.Buffer
	ID     string
	Err    error
}

// BufferRegistry turns sources into decoded buffers. Every distinct source
// identity is decoded at most once at a time: concurrent requests share the
// in-flight decode, later ones are served from the cache. Failed loads are
// not cached.
type BufferRegistry struct {
	sched      eventloop.Scheduler
	decoders   *audio.Registry
	fetcher    loader.Fetcher
	sampleRate int
	log        *slog.Logger
	metrics    *Metrics

	cache    *xsync.MapOf[string, *audio.Buffer]
	inflight singleflight.Group
}

func newBufferRegistry(e *Engine, fetcher loader.Fetcher) *BufferRegistry {
	return &BufferRegistry{
		sched:      e.sched,
		decoders:   e.decoders,
		fetcher:    fetcher,
		sampleRate: e.ctx.SampleRate(),
		log:        e.log,
		metrics:    e.metrics,
		cache:      xsync.NewMapOf[string, *audio.Buffer](),
	}
}

// Request resolves src and delivers the result to cb on the event loop.
// Resolution errors are delivered the same way.
func (r *BufferRegistry) Request(ctx context.Context, src Source, cb func(BufferResult)) {
	req, err := resolve(src, r.decoders)
	if err != nil {
		r.sched.Post(func() { cb(BufferResult{Err: err}) })
		return
	}
	r.request(ctx, req, cb)
}

func (r *BufferRegistry) request(ctx context.Context, req request, cb func(BufferResult)) {
	// nothing to wait for: complete without a goroutine
	if req.buffer != nil {
		res := r.load(ctx, req)
		r.sched.Post(func() { cb(res) })
		return
	}
	if buf, ok := r.cache.Load(req.id); ok {
		r.metrics.cacheHits.Inc()
		r.sched.Post(func() { cb(BufferResult{Buffer: buf, ID: req.id}) })
		return
	}

	go func() {
		res := r.load(ctx, req)
		r.sched.Post(func() { cb(res) })
	}()
}

// Load is the blocking form of Request. It is safe to call from any
// goroutine.
func (r *BufferRegistry) Load(ctx context.Context, src Source) BufferResult {
	req, err := resolve(src, r.decoders)
	if err != nil {
		return BufferResult{Err: err}
	}
	return r.load(ctx, req)
}

func (r *BufferRegistry) load(ctx context.Context, req request) BufferResult {
	if buf, ok := r.cache.Load(req.id); ok {
		r.metrics.cacheHits.Inc()
		return BufferResult{Buffer: buf, ID: req.id}
	}

	if req.buffer != nil {
		buf, _ := r.cache.LoadOrStore(req.id, req.buffer)
		return BufferResult{Buffer: buf, ID: req.id}
	}

	v, err, shared := r.inflight.Do(req.id, func() (any, error) {
		if buf, ok := r.cache.Load(req.id); ok {
			return buf, nil
		}

		buf, err := r.decode(ctx, req)
		if err != nil {
			r.metrics.failures.Inc()
			return nil, err
		}

		r.metrics.decodes.Inc()
		r.cache.Store(req.id, buf)
		r.log.Debug("buffer decoded", "id", req.id, "format", req.format,
			"channels", buf.NumberOfChannels(), "duration", buf.Duration())
		return buf, nil
	})
	if err != nil {
		return BufferResult{ID: req.id, Err: err}
	}
	if shared {
		r.log.Debug("buffer decode shared", "id", req.id)
	}

	return BufferResult{Buffer: v.(*audio.Buffer), ID: req.id}
}

func (r *BufferRegistry) decode(ctx context.Context, req request) (*audio.Buffer, error) {
	data, format := req.data, req.format
	if req.url != "" {
		res, err := r.fetcher.Fetch(ctx, req.url)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", req.url, err)
		}
		data = res.Data
		if f, ok := audio.FormatForMIME(res.MIME); ok && !r.decoders.Supports(format) {
			format = f
		}
	}

	if !r.decoders.Supports(format) {
		if sniffed, ok := audio.Sniff(data); ok {
			format = sniffed
		}
	}

	src, err := r.decoders.Decode(format, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", req.id, err)
	}
	defer src.Close()

	buf, err := audio.Collect(src, r.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", req.id, err)
	}

	return buf, nil
}

// Cached returns the decoded buffer for a canonical id.
func (r *BufferRegistry) Cached(id string) (*audio.Buffer, bool) {
	return r.cache.Load(id)
}

// Evict drops a decoded buffer from the cache. Samples already holding it
// keep playing it.
func (r *BufferRegistry) Evict(id string) {
	r.cache.Delete(id)
}

func (r *BufferRegistry) Len() int {
	return r.cache.Size()
}
