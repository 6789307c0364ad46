// SPDX-License-Identifier: EPL-2.0

// Package output drives a software graph context: live through the system
// speaker, or offline into a WAV file.
package output

import (
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/ik5/audgraph/graph/soft"
)

// Speaker plays a soft.Context through the system audio device. The
// context is rendered on the speaker's goroutine.
type Speaker struct {
	ctx        *soft.Context
	bufferSize int
	buf        []float32

	volume *effects.Volume
	ctrl   *beep.Ctrl
}

var _ beep.Streamer = (*Speaker)(nil)

// NewSpeaker wraps ctx. bufferSize is the device buffer in frames.
func NewSpeaker(ctx *soft.Context, bufferSize int) *Speaker {
	s := &Speaker{ctx: ctx, bufferSize: bufferSize}
	s.volume = &effects.Volume{Streamer: s, Base: 2}
	s.ctrl = &beep.Ctrl{Streamer: s.volume}
	return s
}

// Stream renders len(samples) frames of the context. It never ends.
func (s *Speaker) Stream(samples [][2]float64) (n int, ok bool) {
	if cap(s.buf) < 2*len(samples) {
		s.buf = make([]float32, 2*len(samples))
	}
	buf := s.buf[:2*len(samples)]
	s.ctx.Render(buf)

	for i := range samples {
		samples[i][0] = float64(buf[2*i])
		samples[i][1] = float64(buf[2*i+1])
	}
	return len(samples), true
}

func (s *Speaker) Err() error { return nil }

// Streamer is the full output chain: master volume and pause control over
// the rendered context.
func (s *Speaker) Streamer() beep.Streamer { return s.ctrl }

// Start opens the audio device at the context's sample rate and begins
// playback.
func (s *Speaker) Start() error {
	rate := beep.SampleRate(s.ctx.SampleRate())
	if err := speaker.Init(rate, s.bufferSize); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	speaker.Play(s.ctrl)
	return nil
}

// SetVolume sets the master volume in base-2 log units: 0 is unity, -1
// halves the amplitude.
func (s *Speaker) SetVolume(v float64) {
	speaker.Lock()
	s.volume.Volume = v
	speaker.Unlock()
}

// Close stops playback and releases the device.
func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
}
