// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"math"
	"sort"

	"github.com/ik5/audgraph/graph"
)

type eventKind int

const (
	setEvent eventKind = iota
	rampEvent
)

type paramEvent struct {
	kind eventKind
	v    float64
	t    float64
}

// Param is sample-accurate: automation is evaluated per frame.
type Param struct {
	ctx    *Context
	value  float64
	min    float64
	max    float64
	events []paramEvent

	// per-frame values of the quantum being rendered
	frames [Quantum]float64
}

var _ graph.Param = (*Param)(nil)

func newParam(ctx *Context, v, lo, hi float64) *Param {
	return &Param{ctx: ctx, value: v, min: lo, max: hi}
}

func (p *Param) Value() float64 {
	p.ctx.mtx.Lock()
	defer p.ctx.mtx.Unlock()
	return p.clamp(p.valueAt(p.ctx.now()))
}

func (p *Param) SetValue(v float64) {
	p.ctx.mtx.Lock()
	defer p.ctx.mtx.Unlock()

	p.events = nil
	p.value = v
}

func (p *Param) SetValueAtTime(v, t float64) {
	p.ctx.mtx.Lock()
	defer p.ctx.mtx.Unlock()

	p.insert(paramEvent{kind: setEvent, v: v, t: t})
}

func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.ctx.mtx.Lock()
	defer p.ctx.mtx.Unlock()

	if len(p.events) == 0 {
		now := p.ctx.now()
		p.events = append(p.events, paramEvent{kind: setEvent, v: p.value, t: now})
	}
	p.insert(paramEvent{kind: rampEvent, v: v, t: t})
}

func (p *Param) CancelScheduledValues(t float64) {
	p.ctx.mtx.Lock()
	defer p.ctx.mtx.Unlock()

	keep := p.events[:0]
	for _, e := range p.events {
		if e.t < t {
			keep = append(keep, e)
		}
	}
	p.events = keep
}

// insert keeps events sorted by time; equal times keep insertion order.
func (p *Param) insert(e paramEvent) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].t > e.t })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) valueAt(t float64) float64 {
	v := p.value
	prev := math.Inf(-1)

	for _, e := range p.events {
		if e.t <= t {
			v = e.v
			prev = e.t
			continue
		}
		if e.kind == rampEvent && !math.IsInf(prev, -1) && e.t > prev {
			return v + (e.v-v)*(t-prev)/(e.t-prev)
		}
		break
	}

	return v
}

func (p *Param) clamp(v float64) float64 {
	return math.Max(p.min, math.Min(p.max, v))
}

// fill computes the per-frame values for the quantum at start and drops
// events that can no longer influence the future.
func (p *Param) fill(start int64) {
	rate := float64(p.ctx.sampleRate)

	if len(p.events) == 0 {
		v := p.clamp(p.value)
		for i := range p.frames {
			p.frames[i] = v
		}
		return
	}

	for i := range p.frames {
		p.frames[i] = p.clamp(p.valueAt(float64(start+int64(i)) / rate))
	}

	t0 := float64(start) / rate
	for len(p.events) > 0 && p.events[0].t <= t0 && (len(p.events) == 1 || p.events[1].t <= t0) {
		p.value = p.events[0].v
		p.events = p.events[1:]
	}
}

// constant reports whether the last fill produced a single value.
func (p *Param) constant() (float64, bool) {
	v := p.frames[0]
	for _, f := range p.frames[1:] {
		if f != v {
			return 0, false
		}
	}
	return v, true
}
