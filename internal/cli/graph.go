// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/ik5/audgraph/sound"
)

// playFlags are the per-sample settings shared by play and render.
type playFlags struct {
	loops    int
	delay    float64
	offset   float64
	duration float64
	volume   float64
	pan      float64
	lowpass  float64
	highpass float64
	q        float64
	reverb   float64
}

func (f *playFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.loops, "loops", "l", 0, "extra repetitions, -1 loops forever")
	fs.Float64Var(&f.delay, "delay", 0, "seconds to wait before starting")
	fs.Float64Var(&f.offset, "offset", 0, "start position in seconds")
	fs.Float64Var(&f.duration, "duration", 0, "seconds to play from the offset, 0 plays to the end")
	fs.Float64Var(&f.volume, "volume", 1, "sample volume (linear gain)")
	fs.Float64Var(&f.pan, "pan", 0, "stereo pan from -1 (left) to 1 (right)")
	fs.Float64Var(&f.lowpass, "lowpass", 0, "low-pass cutoff in Hz, 0 disables")
	fs.Float64Var(&f.highpass, "highpass", 0, "high-pass cutoff in Hz, 0 disables")
	fs.Float64Var(&f.q, "q", 1, "filter resonance")
	fs.Float64Var(&f.reverb, "reverb", 0, "reverb length in seconds, 0 disables")
}

func (f *playFlags) params() sound.PlayParams {
	return sound.PlayParams{
		Loops:    f.loops,
		Delay:    f.delay,
		Offset:   f.offset,
		Duration: f.duration,
	}
}

// effects builds a fresh chain for one sample. Effects cannot be shared, so
// every sample gets its own.
func (f *playFlags) effects(e *sound.Engine) []sound.Effect {
	var fx []sound.Effect
	if f.highpass > 0 {
		fx = append(fx, sound.NewHighPassFilter(e, f.highpass, f.q))
	}
	if f.lowpass > 0 {
		fx = append(fx, sound.NewLowPassFilter(e, f.lowpass, f.q))
	}
	if f.reverb > 0 {
		rv := sound.NewReverb(e, f.reverb)
		rv.SetMix(0.3)
		fx = append(fx, rv)
	}
	return fx
}

// newSample creates a sample for src with the flag settings applied.
func (f *playFlags) newSample(e *sound.Engine, src string, autoplay bool) (*sound.Sample, error) {
	s, err := e.NewSample(sound.URL(src), sound.SampleOptions{
		Params:   f.params(),
		Autoplay: autoplay,
	})
	if err != nil {
		return nil, err
	}

	s.SetVolume(f.volume)
	s.SetPan(f.pan)
	if err := s.SetEffects(f.effects(e)); err != nil {
		s.Destroy()
		return nil, err
	}
	return s, nil
}

// playLength is how long one play of s with p lasts, declick tail
// included. ok is false for endless loops.
func playLength(s *sound.Sample, p sound.PlayParams, fade time.Duration) (time.Duration, bool) {
	if p.Loops < 0 {
		return 0, false
	}
	total, _ := s.Duration()

	window := max(0, total-p.Offset)
	if p.Duration > 0 {
		window = min(window, p.Duration)
	}

	secs := p.Delay + window*float64(p.Loops+1)
	return time.Duration(secs*float64(time.Second)) + fade, true
}
