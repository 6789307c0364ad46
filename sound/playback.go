// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/event"
	"github.com/ik5/audgraph/graph"
)

// PlaybackState is where a Playback is in its lifecycle.
type PlaybackState int

const (
	StatePlaying PlaybackState = iota
	// StatePausing is a fade-out in flight that ends in StatePaused.
	StatePausing
	StatePaused
	// StateStopping is a fade-out in flight that ends in StateDestroyed.
	StateStopping
	StateDestroyed
)

func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePausing:
		return "pausing"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// PlaybackEvent names what a Playback's Events hub emits.
type PlaybackEvent int

const (
	// PlaybackEnd fires at every loop boundary and once more when the
	// playback is destroyed.
	PlaybackEnd PlaybackEvent = iota
	PlaybackStop
	PlaybackStopped
	PlaybackPaused
	PlaybackResumed
	PlaybackDestroyed
)

// Playback is one rendering of a Sample's buffer. Every start, loop and
// resume uses a fresh source node.
//
// Position bookkeeping: startTime is the context time the current source
// node begins at, positionOffset the buffer position it begins from.
// remainingDelay is set while paused before the start was reached.
type Playback struct {
	wrapper

	sample *Sample
	buffer *audio.Buffer
	source graph.BufferSourceNode

	offset         float64
	duration       float64
	remainingLoops int

	startTime      float64
	positionOffset float64
	remainingDelay float64

	state  PlaybackState
	events event.Hub[PlaybackEvent, *Playback]
}

func newPlayback(s *Sample, params PlayParams) (*Playback, error) {
	p := &Playback{
		sample:         s,
		buffer:         s.buffer,
		offset:         max(0, params.Offset),
		duration:       max(0, params.Duration),
		remainingLoops: max(-1, params.Loops),
	}
	p.initWrapper(s.engine)
	p.holdsFade = func() bool {
		return p.state == StatePausing || p.state == StateStopping
	}
	p.declicker.Events().On(FadeOutComplete, p.onFadeOut)

	if err := p.play(max(0, params.Delay), p.offset, p.duration); err != nil {
		p.release()
		return nil, err
	}
	p.output.Connect(s.InputNode())
	s.engine.metrics.active.Inc()

	return p, nil
}

func (p *Playback) Events() *event.Hub[PlaybackEvent, *Playback] { return &p.events }

func (p *Playback) Sample() *Sample       { return p.sample }
func (p *Playback) State() PlaybackState  { return p.state }
func (p *Playback) RemainingLoops() int   { return p.remainingLoops }
func (p *Playback) Offset() float64       { return p.offset }
func (p *Playback) Buffer() *audio.Buffer { return p.buffer }

// Playing is true until the playback is paused or destroyed. A pausing
// playback is still audible and counts as playing.
func (p *Playback) Playing() bool {
	return p.state != StatePaused && p.state != StateDestroyed
}

func (p *Playback) Paused() bool { return p.state == StatePaused }

// Duration is the length of one pass in seconds: the requested play
// duration, or what is left of the buffer after the offset.
func (p *Playback) Duration() float64 {
	if p.duration > 0 {
		return p.duration
	}
	return max(0, p.buffer.Duration()-p.offset)
}

// Elapsed is the time played since the offset in seconds. It is negative
// while a start delay is still pending.
func (p *Playback) Elapsed() float64 {
	switch p.state {
	case StatePaused:
		return p.positionOffset - p.offset - p.remainingDelay
	case StateDestroyed:
		return p.positionOffset - p.offset
	}
	now := p.engine.ctx.CurrentTime()
	return now - p.startTime + p.positionOffset - p.offset
}

// Position is the playhead in buffer seconds. It never reads below the
// offset.
func (p *Playback) Position() float64 {
	return p.offset + max(0, p.Elapsed())
}

// play starts a new source node delay seconds from now, reading dur seconds
// of the buffer from position from. dur <= 0 reads to the end.
func (p *Playback) play(delay, from, dur float64) error {
	ctx := p.engine.ctx
	src := ctx.CreateBufferSource()
	src.SetBuffer(p.buffer)
	src.SetOnEnded(func() { p.onEnded(src) })

	now := ctx.CurrentTime()
	if err := src.Start(now+delay, from, dur); err != nil {
		src.SetOnEnded(nil)
		return err
	}
	src.Connect(p.fxBus)

	p.source = src
	p.startTime = now + delay
	p.positionOffset = from
	p.remainingDelay = 0
	return nil
}

func (p *Playback) stopSource() {
	src := p.source
	if src == nil {
		return
	}
	p.source = nil
	src.SetOnEnded(nil)
	_ = src.Stop(0)
	src.Disconnect(nil)
}

// Pause fades out and then suspends the playback, keeping its position.
// Pausing anything but a playing playback does nothing.
func (p *Playback) Pause() error {
	switch p.state {
	case StateDestroyed:
		return ErrDestroyed
	case StatePlaying:
	default:
		return nil
	}

	p.state = StatePausing
	p.fadeOut()
	return nil
}

// fadeOut starts the declick fade-out, or rides one already running.
func (p *Playback) fadeOut() {
	d := p.declicker
	if d.IsFadingIn() {
		d.CancelFade()
	}
	if !d.IsFadingOut() {
		d.FadeOut()
	}
}

func (p *Playback) onFadeOut(*Declicker) {
	switch p.state {
	case StatePausing:
		p.pauseCore()
	case StateStopping:
		p.finishStop()
	}
}

func (p *Playback) pauseCore() {
	now := p.engine.ctx.CurrentTime()
	if now < p.startTime {
		p.remainingDelay = p.startTime - now
	} else {
		p.remainingDelay = 0
		p.positionOffset += now - p.startTime
	}
	p.stopSource()

	p.state = StatePaused
	p.events.Emit(PlaybackPaused, p)
}

// Resume continues a paused playback from where it stopped, or cancels a
// pause still fading out.
func (p *Playback) Resume() error {
	switch p.state {
	case StateDestroyed:
		return ErrDestroyed
	case StatePausing:
		p.state = StatePlaying
		if !p.muting {
			p.declicker.CancelFade()
		}
		p.events.Emit(PlaybackResumed, p)
		return nil
	case StatePaused:
	default:
		return nil
	}

	var dur float64
	if p.duration > 0 {
		// a tiny positive window still ends the pass right away
		dur = max(p.offset+p.duration-p.positionOffset, 1e-9)
	}
	if err := p.play(p.remainingDelay, p.positionOffset, dur); err != nil {
		return err
	}

	p.state = StatePlaying
	p.declicker.FadeIn()
	p.events.Emit(PlaybackResumed, p)
	return nil
}

// Stop fades out and destroys the playback. A paused playback is silent
// already and is destroyed at once.
func (p *Playback) Stop() error {
	switch p.state {
	case StateDestroyed:
		return ErrDestroyed
	case StateStopping:
		return nil
	case StatePaused:
		p.events.Emit(PlaybackStop, p)
		p.finishStop()
		return nil
	}

	p.state = StateStopping
	p.events.Emit(PlaybackStop, p)
	p.fadeOut()
	return nil
}

func (p *Playback) finishStop() {
	p.events.Emit(PlaybackStopped, p)
	p.Destroy()
}

func (p *Playback) onEnded(src graph.BufferSourceNode) {
	if src != p.source || p.state == StatePaused || p.state == StateDestroyed {
		return
	}
	p.source = nil
	src.Disconnect(nil)

	if p.state == StateStopping {
		p.finishStop()
		return
	}

	if p.remainingLoops != 0 {
		if p.remainingLoops > 0 {
			p.remainingLoops--
		}
		if err := p.play(0, p.offset, p.duration); err != nil {
			p.engine.log.Warn("playback loop failed", "source", p.sample.id, "error", err)
			p.Destroy()
			return
		}
		p.events.Emit(PlaybackEnd, p)
		return
	}

	p.Destroy()
}

// Destroy tears the playback down. It emits PlaybackEnd then
// PlaybackDestroyed exactly once, however the playback got here; later
// calls do nothing.
func (p *Playback) Destroy() {
	if p.state == StateDestroyed {
		return
	}
	if p.state != StatePaused {
		p.positionOffset = p.Position()
	}
	p.state = StateDestroyed
	p.stopSource()
	p.engine.metrics.active.Dec()

	p.events.Emit(PlaybackEnd, p)
	p.events.Emit(PlaybackDestroyed, p)
	p.events.Clear()

	p.release()
}
