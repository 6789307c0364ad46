// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"github.com/ik5/audgraph/graph"
)

// Inlet is anything audio can be connected into.
type Inlet interface {
	InputNode() graph.Node
}

// NodeInlet lets a raw graph node be used where an Inlet is expected.
type NodeInlet struct {
	graph.Node
}

func (n NodeInlet) InputNode() graph.Node { return n.Node }

// Effect is a processing stage with a wet path, a dry path and a bypass.
//
//	input -> bus -> (processing) -> wet -> output
//	input -> dry -> output
//
// Disabling an effect routes input straight to output. An effect can belong
// to at most one chain at a time.
type Effect interface {
	Inlet
	OutputNode() graph.Node
	Connect(dst Inlet)
	// Disconnect removes the edge to dst, or every outgoing edge when dst
	// is nil.
	Disconnect(dst Inlet)
	Enable()
	Disable()
	Enabled() bool
	Wet() graph.Param
	Dry() graph.Param
	// SetMix sets wet to w and dry to 1-w.
	SetMix(w float64)
	Owned() bool

	base() *effectBase
}

type effectBase struct {
	input  graph.GainNode
	bus    graph.GainNode
	wet    graph.GainNode
	dry    graph.GainNode
	output graph.GainNode

	enabled bool
	owner   *wrapper
}

// init builds the fixed wiring. The variant connects bus to its processing
// and that to wet.
func (b *effectBase) init(ctx graph.Context) {
	b.input = ctx.CreateGain()
	b.bus = ctx.CreateGain()
	b.wet = ctx.CreateGain()
	b.dry = ctx.CreateGain()
	b.output = ctx.CreateGain()

	b.dry.Gain().SetValue(0)

	b.wet.Connect(b.output)
	b.dry.Connect(b.output)

	b.input.Connect(b.bus)
	b.input.Connect(b.dry)
	b.enabled = true
}

func (b *effectBase) base() *effectBase      { return b }
func (b *effectBase) InputNode() graph.Node  { return b.input }
func (b *effectBase) OutputNode() graph.Node { return b.output }
func (b *effectBase) Enabled() bool          { return b.enabled }
func (b *effectBase) Owned() bool            { return b.owner != nil }
func (b *effectBase) Wet() graph.Param       { return b.wet.Gain() }
func (b *effectBase) Dry() graph.Param       { return b.dry.Gain() }
func (b *effectBase) Connect(dst Inlet)      { b.output.Connect(dst.InputNode()) }

func (b *effectBase) Disconnect(dst Inlet) {
	if dst == nil {
		b.output.Disconnect(nil)
		return
	}
	b.output.Disconnect(dst.InputNode())
}

func (b *effectBase) SetMix(w float64) {
	w = clamp(w, 0, 1)
	b.wet.Gain().SetValue(w)
	b.dry.Gain().SetValue(1 - w)
}

func (b *effectBase) Enable() {
	if b.enabled {
		return
	}
	b.input.Disconnect(b.output)
	b.input.Connect(b.bus)
	b.input.Connect(b.dry)
	b.enabled = true
}

func (b *effectBase) Disable() {
	if !b.enabled {
		return
	}
	b.input.Disconnect(b.bus)
	b.input.Disconnect(b.dry)
	b.input.Connect(b.output)
	b.enabled = false
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
