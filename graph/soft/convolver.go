// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"math"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/graph"
	"github.com/madelynnblue/go-dsp/fft"
)

const (
	// partition size equals the render quantum, FFT size is twice that
	partitionSize = Quantum
	fftSize       = 2 * partitionSize

	normGainCalibration = 0.00125
	normMinPower        = 0.000125
	normCalibrationRate = 44100
)

// ConvolverNode performs uniformly partitioned overlap-save convolution. A
// mono impulse is applied to both channels, a multi-channel one per channel.
type ConvolverNode struct {
	node
	buffer    *audio.Buffer
	normalize bool

	// frequency-domain partitions per channel
	partitions [2][][]complex128
	// frequency delay line per channel, newest first
	fdl  [2][][]complex128
	prev [2][partitionSize]float64
}

var _ graph.ConvolverNode = (*ConvolverNode)(nil)

func (c *Context) CreateConvolver() graph.ConvolverNode {
	n := &ConvolverNode{normalize: true}
	n.init(c, n)
	return n
}

func (n *ConvolverNode) Buffer() *audio.Buffer {
	n.ctx.mtx.Lock()
	defer n.ctx.mtx.Unlock()
	return n.buffer
}

func (n *ConvolverNode) Normalize() bool {
	n.ctx.mtx.Lock()
	defer n.ctx.mtx.Unlock()
	return n.normalize
}

// SetNormalize takes effect on the next SetBuffer.
func (n *ConvolverNode) SetNormalize(on bool) {
	n.ctx.mtx.Lock()
	defer n.ctx.mtx.Unlock()
	n.normalize = on
}

func (n *ConvolverNode) SetBuffer(b *audio.Buffer) {
	var parts [2][][]complex128
	if b != nil && b.Length() > 0 {
		scale := 1.0
		n.ctx.mtx.Lock()
		normalize := n.normalize
		n.ctx.mtx.Unlock()
		if normalize {
			scale = normalizationScale(b, n.ctx.sampleRate)
		}
		for ch := range 2 {
			data, err := b.Channel(min(ch, b.NumberOfChannels()-1))
			if err != nil {
				continue
			}
			parts[ch] = partition(data, scale)
		}
	}

	n.ctx.mtx.Lock()
	defer n.ctx.mtx.Unlock()

	n.buffer = b
	n.partitions = parts
	n.fdl = [2][][]complex128{}
	n.prev = [2][partitionSize]float64{}
}

func partition(ir []float32, scale float64) [][]complex128 {
	count := (len(ir) + partitionSize - 1) / partitionSize
	parts := make([][]complex128, count)

	block := make([]float64, fftSize)
	for p := range count {
		clear(block)
		for i := range partitionSize {
			j := p*partitionSize + i
			if j >= len(ir) {
				break
			}
			block[i] = float64(ir[j]) * scale
		}
		parts[p] = fft.FFTReal(block)
	}

	return parts
}

// normalizationScale matches the loudness calibration browsers use for
// convolution reverbs, so impulses of different energy sound comparable.
func normalizationScale(b *audio.Buffer, sampleRate int) float64 {
	var power float64
	for ch := range b.NumberOfChannels() {
		data, _ := b.Channel(ch)
		for _, v := range data {
			power += float64(v) * float64(v)
		}
	}
	power = math.Sqrt(power / float64(b.NumberOfChannels()*b.Length()))
	power = math.Max(power, normMinPower)

	scale := normGainCalibration / power
	scale *= float64(normCalibrationRate) / float64(sampleRate)

	return scale
}

func (n *ConvolverNode) process(in, out *bus, _ int64) {
	if len(n.partitions[0]) == 0 {
		out.clear()
		return
	}

	block := make([]float64, fftSize)
	acc := make([]complex128, fftSize)

	for ch := range 2 {
		parts := n.partitions[ch]

		copy(block, n.prev[ch][:])
		for i := range partitionSize {
			block[partitionSize+i] = float64(in[ch][i])
			n.prev[ch][i] = float64(in[ch][i])
		}

		spectrum := fft.FFTReal(block)
		fdl := append([][]complex128{spectrum}, n.fdl[ch]...)
		if len(fdl) > len(parts) {
			fdl = fdl[:len(parts)]
		}
		n.fdl[ch] = fdl

		clear(acc)
		for p, x := range fdl {
			h := parts[p]
			for k := range acc {
				acc[k] += x[k] * h[k]
			}
		}

		y := fft.IFFT(acc)
		for i := range partitionSize {
			out[ch][i] = float32(real(y[partitionSize+i]))
		}
	}
}
