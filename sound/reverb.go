// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"math"
	"math/rand/v2"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/graph"
)

// Reverb convolves its wet path with an impulse response.
type Reverb struct {
	effectBase
	engine    *Engine
	convolver graph.ConvolverNode
}

// NewReverb creates a reverb with a generated impulse of the given length in
// seconds. A non-positive length leaves the convolver without an impulse
// until SetImpulse or LoadImpulse is called.
func NewReverb(e *Engine, seconds float64) *Reverb {
	r := &Reverb{engine: e, convolver: e.ctx.CreateConvolver()}
	r.init(e.ctx)

	r.bus.Connect(r.convolver)
	r.convolver.Connect(r.wet)

	if seconds > 0 {
		r.convolver.SetBuffer(GenerateImpulse(seconds, e.ctx.SampleRate(), nil))
	}

	return r
}

// GenerateImpulse returns a mono buffer of exponentially decaying white
// noise. rng may be nil for a randomly seeded generator; pass a seeded one
// for repeatable output.
func GenerateImpulse(seconds float64, sampleRate int, rng *rand.Rand) *audio.Buffer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n := max(0, int(seconds*float64(sampleRate)))
	buf := audio.NewBuffer(1, n, sampleRate)
	ch, _ := buf.Channel(0)
	for i := range ch {
		decay := math.Pow(1-float64(i)/float64(n), 3)
		ch[i] = float32((rng.Float64()*2 - 1) * decay)
	}

	return buf
}

// SetImpulse replaces the impulse response. Multichannel impulses are mixed
// down to mono.
func (r *Reverb) SetImpulse(buf *audio.Buffer) error {
	if buf == nil {
		return ErrNilSource
	}
	mono, err := buf.Mono()
	if err != nil {
		return err
	}
	r.convolver.SetBuffer(mono)
	return nil
}

// Impulse is the current impulse response, nil when none is set.
func (r *Reverb) Impulse() *audio.Buffer { return r.convolver.Buffer() }

// LoadImpulse loads an impulse through the engine's buffer registry and
// installs it when ready. cb, when not nil, receives the outcome on the
// event loop.
func (r *Reverb) LoadImpulse(src Source, cb func(error)) {
	r.engine.buffers.Request(r.engine.bg, src, func(res BufferResult) {
		err := res.Err
		if err == nil {
			err = r.SetImpulse(res.Buffer)
		}
		if err != nil {
			r.engine.log.Warn("reverb impulse load failed", "id", res.ID, "error", err)
		}
		if cb != nil {
			cb(err)
		}
	})
}

func (r *Reverb) Normalize() bool      { return r.convolver.Normalize() }
func (r *Reverb) SetNormalize(on bool) { r.convolver.SetNormalize(on) }
