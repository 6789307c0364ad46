// SPDX-License-Identifier: EPL-2.0

package output

import (
	"io"
	"time"

	"github.com/ik5/audgraph/formats/wav"
	"github.com/ik5/audgraph/graph/soft"
	"github.com/ik5/audgraph/utils"
)

// Render renders d of ctx as interleaved stereo. After every quantum step,
// when not nil, is called with the audio time just rendered so an event
// loop can keep pace with the audio clock.
func Render(ctx *soft.Context, d time.Duration, step func(time.Duration)) []float32 {
	rate := ctx.SampleRate()
	frames := int(int64(d) * int64(rate) / int64(time.Second))
	quantum := time.Duration(soft.Quantum) * time.Second / time.Duration(rate)

	out := make([]float32, 2*frames)
	for pos := 0; pos < frames; pos += soft.Quantum {
		n := min(soft.Quantum, frames-pos)
		ctx.Render(out[2*pos : 2*(pos+n)])
		if step != nil {
			step(quantum)
		}
	}
	return out
}

// RenderWAV renders d of ctx and writes it to w as 16-bit stereo WAV.
func RenderWAV(w io.Writer, ctx *soft.Context, d time.Duration, step func(time.Duration)) error {
	samples := Render(ctx, d, step)

	pcm := make([]int16, len(samples))
	for i, v := range samples {
		pcm[i] = utils.Float32ToInt16(v)
	}

	return wav.WriteWAV16(w, ctx.SampleRate(), 2, pcm)
}
