// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"math"
	"math/cmplx"

	"github.com/ik5/audgraph/graph"
	"github.com/madelynnblue/go-dsp/fft"
)

const (
	maxFFTSize = 32768
	minFFTSize = 32
)

// AnalyserNode passes audio through unchanged and keeps the most recent
// fftSize frames, downmixed to mono, for inspection.
type AnalyserNode struct {
	node
	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	ring     []float32
	writePos int
	// smoothed magnitudes, fftSize/2 bins
	magnitudes []float64
}

var _ graph.AnalyserNode = (*AnalyserNode)(nil)

func (c *Context) CreateAnalyser() graph.AnalyserNode {
	a := &AnalyserNode{
		smoothing: 0.8,
		minDB:     -100,
		maxDB:     -30,
	}
	a.init(c, a)
	a.resize(2048)
	return a
}

func (a *AnalyserNode) resize(n int) {
	a.fftSize = n
	a.ring = make([]float32, maxFFTSize)
	a.writePos = 0
	a.magnitudes = make([]float64, n/2)
}

func (a *AnalyserNode) FFTSize() int {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()
	return a.fftSize
}

func (a *AnalyserNode) SetFFTSize(n int) error {
	if n < minFFTSize || n > maxFFTSize || n&(n-1) != 0 {
		return graph.ErrBadFFTSize
	}

	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()
	if n != a.fftSize {
		a.resize(n)
	}
	return nil
}

func (a *AnalyserNode) FrequencyBinCount() int { return a.FFTSize() / 2 }

func (a *AnalyserNode) SmoothingTimeConstant() float64 {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()
	return a.smoothing
}

func (a *AnalyserNode) SetSmoothingTimeConstant(v float64) {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()
	a.smoothing = math.Max(0, math.Min(1, v))
}

func (a *AnalyserNode) MinDecibels() float64 {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()
	return a.minDB
}

func (a *AnalyserNode) MaxDecibels() float64 {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()
	return a.maxDB
}

func (a *AnalyserNode) SetDecibelRange(minDB, maxDB float64) error {
	if minDB >= maxDB {
		return graph.ErrBadDecibelRange
	}

	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()
	a.minDB, a.maxDB = minDB, maxDB
	return nil
}

func (a *AnalyserNode) process(in, out *bus, _ int64) {
	*out = *in

	for i := range Quantum {
		a.ring[a.writePos] = (in[0][i] + in[1][i]) / 2
		a.writePos = (a.writePos + 1) % len(a.ring)
	}
}

// recent copies the last n frames, oldest first. Caller holds the lock.
func (a *AnalyserNode) recent(n int) []float32 {
	out := make([]float32, n)
	start := a.writePos - n
	for i := range n {
		out[i] = a.ring[(start+i+len(a.ring))%len(a.ring)]
	}
	return out
}

func (a *AnalyserNode) FloatTimeDomainData(dst []float32) {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()

	copy(dst, a.recent(a.fftSize))
}

func (a *AnalyserNode) ByteTimeDomainData(dst []byte) {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()

	for i, v := range a.recent(min(len(dst), a.fftSize)) {
		dst[i] = clampByte(128 * (1 + float64(v)))
	}
}

// spectrum updates the smoothed magnitudes. Caller holds the lock.
func (a *AnalyserNode) spectrum() {
	n := a.fftSize
	frames := a.recent(n)

	windowed := make([]float64, n)
	const alpha = 0.16
	a0, a1, a2 := (1-alpha)/2, 0.5, alpha/2
	for i, v := range frames {
		x := float64(i) / float64(n)
		w := a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
		windowed[i] = float64(v) * w
	}

	bins := fft.FFTReal(windowed)
	for k := range a.magnitudes {
		mag := cmplx.Abs(bins[k]) / float64(n)
		a.magnitudes[k] = a.smoothing*a.magnitudes[k] + (1-a.smoothing)*mag
	}
}

func (a *AnalyserNode) FloatFrequencyData(dst []float32) {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()

	a.spectrum()
	for i := range min(len(dst), len(a.magnitudes)) {
		dst[i] = float32(toDecibels(a.magnitudes[i]))
	}
}

func (a *AnalyserNode) ByteFrequencyData(dst []byte) {
	a.ctx.mtx.Lock()
	defer a.ctx.mtx.Unlock()

	a.spectrum()
	span := a.maxDB - a.minDB
	for i := range min(len(dst), len(a.magnitudes)) {
		db := toDecibels(a.magnitudes[i])
		dst[i] = clampByte(255 * (db - a.minDB) / span)
	}
}

func toDecibels(mag float64) float64 {
	if mag <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(mag)
}

func clampByte(v float64) byte {
	if math.IsNaN(v) {
		return 0
	}
	return byte(math.Max(0, math.Min(255, v)))
}
