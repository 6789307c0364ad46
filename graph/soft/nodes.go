// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"math"

	"github.com/ik5/audgraph/graph"
)

type GainNode struct {
	node
	gain *Param
}

var _ graph.GainNode = (*GainNode)(nil)

func (c *Context) CreateGain() graph.GainNode {
	g := &GainNode{gain: newParam(c, 1, math.Inf(-1), math.Inf(1))}
	g.init(c, g)
	return g
}

func (g *GainNode) Gain() graph.Param { return g.gain }

func (g *GainNode) process(in, out *bus, start int64) {
	g.gain.fill(start)

	if v, ok := g.gain.constant(); ok {
		for ch := range out {
			for i := range out[ch] {
				out[ch][i] = in[ch][i] * float32(v)
			}
		}
		return
	}

	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = in[ch][i] * float32(g.gain.frames[i])
		}
	}
}

// StereoPannerNode uses the equal-power law for stereo input.
type StereoPannerNode struct {
	node
	pan *Param
}

var _ graph.StereoPannerNode = (*StereoPannerNode)(nil)

func (c *Context) CreateStereoPanner() graph.StereoPannerNode {
	p := &StereoPannerNode{pan: newParam(c, 0, -1, 1)}
	p.init(c, p)
	return p
}

func (p *StereoPannerNode) Pan() graph.Param { return p.pan }

func (p *StereoPannerNode) process(in, out *bus, start int64) {
	p.pan.fill(start)

	for i := range Quantum {
		pan := p.pan.frames[i]
		l, r := in[0][i], in[1][i]

		if pan <= 0 {
			x := (pan + 1) * math.Pi / 2
			out[0][i] = l + r*float32(math.Cos(x))
			out[1][i] = r * float32(math.Sin(x))
			continue
		}

		x := pan * math.Pi / 2
		out[0][i] = l * float32(math.Cos(x))
		out[1][i] = r + l*float32(math.Sin(x))
	}
}
