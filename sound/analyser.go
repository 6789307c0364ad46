// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"github.com/ik5/audgraph/graph"
)

// Analyser passes audio through unchanged and exposes the analysis data of
// what flows through its wet path.
type Analyser struct {
	effectBase
	node graph.AnalyserNode
}

func NewAnalyser(e *Engine) *Analyser {
	a := &Analyser{node: e.ctx.CreateAnalyser()}
	a.init(e.ctx)

	a.bus.Connect(a.node)
	a.node.Connect(a.wet)

	return a
}

// Node gives access to the analyser settings (fft size, smoothing, decibel
// range).
func (a *Analyser) Node() graph.AnalyserNode { return a.node }

func (a *Analyser) FrequencyBinCount() int { return a.node.FrequencyBinCount() }

func (a *Analyser) FloatFrequencyData(dst []float32) { a.node.FloatFrequencyData(dst) }
func (a *Analyser) ByteFrequencyData(dst []byte)     { a.node.ByteFrequencyData(dst) }
func (a *Analyser) FloatTimeDomainData(dst []float32) {
	a.node.FloatTimeDomainData(dst)
}
func (a *Analyser) ByteTimeDomainData(dst []byte) { a.node.ByteTimeDomainData(dst) }
