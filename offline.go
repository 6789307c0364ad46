// SPDX-License-Identifier: EPL-2.0

package audgraph

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/eventloop"
	"github.com/ik5/audgraph/formats/wav"
	"github.com/ik5/audgraph/graph/soft"
	"github.com/ik5/audgraph/output"
	"github.com/ik5/audgraph/sound"
	"github.com/ik5/audgraph/utils"
)

// Offline is an engine on a manual clock. Nothing runs between calls:
// rendering advances the audio clock and the timers together.
type Offline struct {
	Engine  *sound.Engine
	Context *soft.Context
	Clock   *eventloop.Manual
}

func NewOffline(sampleRate int, opts sound.Options) *Offline {
	clock := eventloop.NewManual(time.Unix(0, 0))
	ctx := soft.New(soft.Options{SampleRate: sampleRate, Dispatch: clock.Post})

	return &Offline{
		Engine:  sound.New(ctx, clock, opts),
		Context: ctx,
		Clock:   clock,
	}
}

// Wait runs posted work until s has loaded or failed. The load error, if
// any, is returned.
func (o *Offline) Wait(ctx context.Context, s *sound.Sample) error {
	for !s.Ready() && s.Err() == nil {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("waiting for sample: %w", err)
		}
		o.Clock.WaitAndRun(50 * time.Millisecond)
	}
	return s.Err()
}

// Render returns d of interleaved stereo output.
func (o *Offline) Render(d time.Duration) []float32 {
	return output.Render(o.Context, d, o.Clock.Advance)
}

// RenderBuffer renders d of output into a planar stereo buffer.
func (o *Offline) RenderBuffer(d time.Duration) *audio.Buffer {
	data := o.Render(d)
	buf := audio.NewBuffer(2, len(data)/2, o.Context.SampleRate())

	left, _ := buf.Channel(0)
	right, _ := buf.Channel(1)
	for i := range left {
		left[i] = data[2*i]
		right[i] = data[2*i+1]
	}
	return buf
}

// RenderWAV writes d of output as 16-bit stereo WAV.
func (o *Offline) RenderWAV(w io.Writer, d time.Duration) error {
	return output.RenderWAV(w, o.Context, d, o.Clock.Advance)
}

// RenderMono16WAV writes d of output as 16-bit mono WAV at targetRate.
func (o *Offline) RenderMono16WAV(w io.Writer, d time.Duration, targetRate int) error {
	pcm, rate, err := Mono16(o.RenderBuffer(d), targetRate)
	if err != nil {
		return err
	}
	return wav.WriteWAV16(w, rate, 1, pcm)
}

func (o *Offline) Close() { o.Engine.Close() }

// Mono16 downmixes buf, resamples it to targetRate with cubic interpolation
// and converts it to 16-bit PCM. A targetRate <= 0 keeps the buffer's rate.
// The rate of the returned samples is reported alongside them.
func Mono16(buf *audio.Buffer, targetRate int) ([]int16, int, error) {
	var src audio.Source = buf.Source()
	rate := buf.SampleRate()
	if targetRate > 0 && targetRate != rate {
		src = audio.NewResampler(src, targetRate)
		rate = targetRate
	}
	mono := audio.NewMonoMixer(src)

	estimate := int(buf.Duration()*float64(rate)) + 1
	pcm := make([]int16, 0, estimate)
	tmp := make([]float32, 4096)

	for {
		n, err := mono.ReadSamples(tmp)
		for _, v := range tmp[:n] {
			pcm = append(pcm, utils.Float32ToInt16(v))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rate, fmt.Errorf("mono16: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return pcm, rate, nil
}
