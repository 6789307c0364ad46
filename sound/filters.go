// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"github.com/ik5/audgraph/graph"
)

// BiquadFilter is an effect with a single biquad on its wet path.
type BiquadFilter struct {
	effectBase
	filter graph.BiquadFilterNode
}

func NewBiquadFilter(e *Engine, typ graph.FilterType, frequency, q float64) *BiquadFilter {
	f := &BiquadFilter{filter: e.ctx.CreateBiquadFilter()}
	f.init(e.ctx)

	f.filter.SetType(typ)
	f.filter.Frequency().SetValue(frequency)
	f.filter.Q().SetValue(q)

	f.bus.Connect(f.filter)
	f.filter.Connect(f.wet)

	return f
}

// NewLowPassFilter is a 12 dB/octave lowpass at frequency.
func NewLowPassFilter(e *Engine, frequency, q float64) *BiquadFilter {
	return NewBiquadFilter(e, graph.LowPass, frequency, q)
}

// NewHighPassFilter is a 12 dB/octave highpass at frequency.
func NewHighPassFilter(e *Engine, frequency, q float64) *BiquadFilter {
	return NewBiquadFilter(e, graph.HighPass, frequency, q)
}

func (f *BiquadFilter) Type() graph.FilterType     { return f.filter.Type() }
func (f *BiquadFilter) SetType(t graph.FilterType) { f.filter.SetType(t) }
func (f *BiquadFilter) Frequency() graph.Param     { return f.filter.Frequency() }
func (f *BiquadFilter) Q() graph.Param             { return f.filter.Q() }
func (f *BiquadFilter) Gain() graph.Param          { return f.filter.Gain() }
func (f *BiquadFilter) Detune() graph.Param        { return f.filter.Detune() }
