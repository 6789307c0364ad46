// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"math"

	"github.com/ik5/audgraph/graph"
)

// BiquadFilterNode implements the RBJ audio EQ cookbook filters.
// Coefficients are recomputed once per quantum.
type BiquadFilterNode struct {
	node
	kind      graph.FilterType
	frequency *Param
	q         *Param
	gain      *Param
	detune    *Param

	b0, b1, b2, a1, a2 float64
	state              [2]biquadState
}

type biquadState struct {
	x1, x2, y1, y2 float64
}

var _ graph.BiquadFilterNode = (*BiquadFilterNode)(nil)

func (c *Context) CreateBiquadFilter() graph.BiquadFilterNode {
	nyquist := float64(c.sampleRate) / 2
	f := &BiquadFilterNode{
		kind:      graph.LowPass,
		frequency: newParam(c, 350, 0, nyquist),
		q:         newParam(c, 1, 1e-4, 1000),
		gain:      newParam(c, 0, -40, 40),
		detune:    newParam(c, 0, -153600, 153600),
	}
	f.init(c, f)
	return f
}

func (f *BiquadFilterNode) Type() graph.FilterType {
	f.ctx.mtx.Lock()
	defer f.ctx.mtx.Unlock()
	return f.kind
}

func (f *BiquadFilterNode) SetType(t graph.FilterType) {
	f.ctx.mtx.Lock()
	defer f.ctx.mtx.Unlock()
	f.kind = t
}

func (f *BiquadFilterNode) Frequency() graph.Param { return f.frequency }
func (f *BiquadFilterNode) Q() graph.Param         { return f.q }
func (f *BiquadFilterNode) Gain() graph.Param      { return f.gain }
func (f *BiquadFilterNode) Detune() graph.Param    { return f.detune }

func (f *BiquadFilterNode) coefficients(start int64) {
	f.frequency.fill(start)
	f.q.fill(start)
	f.gain.fill(start)
	f.detune.fill(start)

	rate := float64(f.ctx.sampleRate)
	freq := f.frequency.frames[0] * math.Pow(2, f.detune.frames[0]/1200)
	freq = math.Max(1, math.Min(freq, rate/2*0.999))
	q := f.q.frames[0]
	a := math.Pow(10, f.gain.frames[0]/40)

	w0 := 2 * math.Pi * freq / rate
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)
	alpha := sinw / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch f.kind {
	case graph.LowPass:
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
		a0, a1, a2 = 1+alpha, -2*cosw, 1-alpha
	case graph.HighPass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
		a0, a1, a2 = 1+alpha, -2*cosw, 1-alpha
	case graph.BandPass:
		b0, b1, b2 = alpha, 0, -alpha
		a0, a1, a2 = 1+alpha, -2*cosw, 1-alpha
	case graph.Notch:
		b0, b1, b2 = 1, -2*cosw, 1
		a0, a1, a2 = 1+alpha, -2*cosw, 1-alpha
	case graph.AllPass:
		b0, b1, b2 = 1-alpha, -2*cosw, 1+alpha
		a0, a1, a2 = 1+alpha, -2*cosw, 1-alpha
	case graph.Peaking:
		b0, b1, b2 = 1+alpha*a, -2*cosw, 1-alpha*a
		a0, a1, a2 = 1+alpha/a, -2*cosw, 1-alpha/a
	case graph.LowShelf, graph.HighShelf:
		// shelf slope S = 1
		sa := 2 * math.Sqrt(a) * sinw / 2 * math.Sqrt2
		if f.kind == graph.LowShelf {
			b0 = a * ((a + 1) - (a-1)*cosw + sa)
			b1 = 2 * a * ((a - 1) - (a+1)*cosw)
			b2 = a * ((a + 1) - (a-1)*cosw - sa)
			a0 = (a + 1) + (a-1)*cosw + sa
			a1 = -2 * ((a - 1) + (a+1)*cosw)
			a2 = (a + 1) + (a-1)*cosw - sa
		} else {
			b0 = a * ((a + 1) + (a-1)*cosw + sa)
			b1 = -2 * a * ((a - 1) + (a+1)*cosw)
			b2 = a * ((a + 1) + (a-1)*cosw - sa)
			a0 = (a + 1) - (a-1)*cosw + sa
			a1 = 2 * ((a - 1) - (a+1)*cosw)
			a2 = (a + 1) - (a-1)*cosw - sa
		}
	default:
		b0, a0 = 1, 1
	}

	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = a1/a0, a2/a0
}

func (f *BiquadFilterNode) process(in, out *bus, start int64) {
	f.coefficients(start)

	for ch := range out {
		s := &f.state[ch]
		for i := range Quantum {
			x := float64(in[ch][i])
			y := f.b0*x + f.b1*s.x1 + f.b2*s.x2 - f.a1*s.y1 - f.a2*s.y2
			s.x2, s.x1 = s.x1, x
			s.y2, s.y1 = s.y1, y
			out[ch][i] = float32(y)
		}
	}
}
