// SPDX-License-Identifier: EPL-2.0

// Package soft is a pure Go implementation of the graph backend.
//
// Rendering is pull based: Render asks the destination for audio, which
// asks its inputs, and so on up the graph. Audio is processed in quanta of
// Quantum frames, always as two channels internally. The audio clock only
// advances as frames are rendered, so tests can step time exactly.
//
// All node state is guarded by the context's mutex. Render may run on an
// audio goroutine while the engine mutates the graph from its event loop.
package soft

import (
	"math"
	"sync"

	"github.com/ik5/audgraph/graph"
)

// Quantum is the number of frames processed per render step.
const Quantum = 128

const defaultSampleRate = 44100

type Options struct {
	SampleRate int
	// Dispatch receives ended callbacks after the render lock is released,
	// typically eventloop.Scheduler.Post. nil calls them directly.
	Dispatch func(fn func())
}

type Context struct {
	mtx        sync.Mutex
	sampleRate int
	frame      int64
	dispatch   func(fn func())

	dest    *destination
	active  map[*BufferSource]struct{}
	pending []func()

	// rendered destination quantum not yet handed out by Render
	out    bus
	outPos int
}

var _ graph.Context = (*Context)(nil)

func New(opts Options) *Context {
	if opts.SampleRate <= 0 {
		opts.SampleRate = defaultSampleRate
	}

	c := &Context{
		sampleRate: opts.SampleRate,
		dispatch:   opts.Dispatch,
		active:     make(map[*BufferSource]struct{}),
		outPos:     Quantum,
	}
	c.dest = &destination{}
	c.dest.init(c, c.dest)

	return c
}

func (c *Context) SampleRate() int { return c.sampleRate }

func (c *Context) CurrentTime() float64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now()
}

// now is CurrentTime with c.mtx held.
func (c *Context) now() float64 {
	return float64(c.frame) / float64(c.sampleRate)
}

func (c *Context) Frames() int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.frame
}

func (c *Context) Destination() graph.Node { return c.dest }

// toFrame converts a context time to a frame index, rounding to nearest.
func (c *Context) toFrame(t float64) int64 {
	return int64(math.Round(t * float64(c.sampleRate)))
}

// Render fills dst with interleaved stereo frames and advances the clock.
// len(dst) must be even.
func (c *Context) Render(dst []float32) {
	c.mtx.Lock()
	for i := 0; i+1 < len(dst); i += 2 {
		if c.outPos == Quantum {
			c.renderQuantum()
			c.outPos = 0
		}
		dst[i] = c.out[0][c.outPos]
		dst[i+1] = c.out[1][c.outPos]
		c.outPos++
	}
	pending := c.pending
	c.pending = nil
	c.mtx.Unlock()

	c.fire(pending)
}

// RenderFrames renders n frames and discards them.
func (c *Context) RenderFrames(n int) {
	if n <= 0 {
		return
	}
	c.Render(make([]float32, 2*n))
}

func (c *Context) fire(callbacks []func()) {
	for _, fn := range callbacks {
		if c.dispatch != nil {
			c.dispatch(fn)
			continue
		}
		fn()
	}
}

func (c *Context) renderQuantum() {
	q := c.frame / Quantum
	c.out = *c.dest.pull(q)

	// sources keep their own time even when nothing downstream listens
	for src := range c.active {
		src.pull(q)
	}

	c.frame += Quantum
}

// ended is called with c.mtx held by a source that finished.
func (c *Context) ended(src *BufferSource) {
	delete(c.active, src)
	if src.onEnded != nil {
		c.pending = append(c.pending, src.onEnded)
	}
}

type bus [2][Quantum]float32

func (b *bus) clear() { *b = bus{} }

func (b *bus) add(o *bus) {
	for ch := range b {
		for i := range b[ch] {
			b[ch][i] += o[ch][i]
		}
	}
}

// processor is the per-kind part of a node.
type processor interface {
	// process renders one quantum starting at frame start. in holds the sum
	// of every input.
	process(in, out *bus, start int64)
}

// node carries the wiring shared by every node kind.
type node struct {
	ctx       *Context
	self      processor
	inputs    []*node
	outputs   []*node
	in, out   bus
	rendered  int64
	rendering bool
}

func (n *node) init(ctx *Context, self processor) {
	n.ctx = ctx
	n.self = self
	n.rendered = -1
}

func (n *node) base() *node { return n }

type baser interface{ base() *node }

func (n *node) Context() graph.Context { return n.ctx }

func (n *node) Connect(dst graph.Node) {
	b, ok := dst.(baser)
	if !ok {
		return
	}
	d := b.base()
	if d.ctx != n.ctx {
		return
	}

	n.ctx.mtx.Lock()
	defer n.ctx.mtx.Unlock()

	for _, o := range n.outputs {
		if o == d {
			return
		}
	}
	n.outputs = append(n.outputs, d)
	d.inputs = append(d.inputs, n)
}

func (n *node) Disconnect(dst graph.Node) {
	n.ctx.mtx.Lock()
	defer n.ctx.mtx.Unlock()

	if dst == nil {
		for _, o := range n.outputs {
			o.inputs = removeNode(o.inputs, n)
		}
		n.outputs = nil
		return
	}

	b, ok := dst.(baser)
	if !ok {
		return
	}
	d := b.base()
	n.outputs = removeNode(n.outputs, d)
	d.inputs = removeNode(d.inputs, n)
}

func removeNode(list []*node, n *node) []*node {
	for i, o := range list {
		if o == n {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// pull renders quantum q at most once. A cycle sees the previous quantum.
func (n *node) pull(q int64) *bus {
	if n.rendered == q || n.rendering {
		return &n.out
	}
	n.rendering = true

	n.in.clear()
	for _, in := range n.inputs {
		n.in.add(in.pull(q))
	}
	n.self.process(&n.in, &n.out, q*Quantum)

	n.rendered = q
	n.rendering = false
	return &n.out
}

// destination passes its input to Render.
type destination struct {
	node
}

func (d *destination) process(in, out *bus, _ int64) { *out = *in }
