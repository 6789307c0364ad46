// SPDX-License-Identifier: EPL-2.0

package sound

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/event"
)

// PlayParams are the per-play settings. Loops is the number of extra
// passes, -1 loops forever. Delay, Offset and Duration are in seconds; a
// zero Duration plays to the end of the buffer.
type PlayParams struct {
	Loops    int
	Delay    float64
	Offset   float64
	Duration float64
}

type SampleOptions struct {
	// Group the sample joins. nil means the engine's root group.
	Group *Group
	// Params are the defaults used by Play(nil).
	Params PlayParams
	// Autoplay plays the sample with its defaults as soon as it is ready.
	Autoplay bool
}

type SampleEvent int

const (
	SampleReady SampleEvent = iota
	SampleLoadError
	SamplePlaybackEnd
	SamplePlaybackStop
	SamplePlaybackDestroyed
	SampleDestroyed
)

// SampleNotice is the payload of a sample event. Playback is set for the
// re-dispatched playback events, Err for SampleLoadError.
type SampleNotice struct {
	Sample   *Sample
	Playback *Playback
	Err      error
}

// Sample is a logical sound bound to one buffer. It may be played before the
// buffer has loaded: the last such request is kept and honored once, when the
// buffer arrives. Every Play after that starts a new, independent Playback.
type Sample struct {
	wrapper

	src    Source
	id     string
	buffer *audio.Buffer
	err    error

	params  PlayParams
	pending *PlayParams

	playbacks *orderedmap.OrderedMap[*Playback, struct{}]
	parent    *Group
	destroyed bool

	events event.Hub[SampleEvent, SampleNotice]
}

// NewSample creates a sample and requests its buffer. Load failures are
// reported through SampleLoadError, never here.
func (e *Engine) NewSample(src Source, opts SampleOptions) (*Sample, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	if src == nil {
		return nil, ErrNilSource
	}

	s := &Sample{
		src:       src,
		params:    opts.Params,
		playbacks: orderedmap.New[*Playback, struct{}](),
	}
	// resolution errors surface through SampleLoadError
	if req, err := resolve(src, e.decoders); err == nil {
		s.id = req.id
	}
	s.initWrapper(e)

	group := opts.Group
	if group == nil {
		group = e.root
	}
	if err := group.Add(s); err != nil {
		s.release()
		return nil, err
	}
	e.samples.Set(s, struct{}{})

	if opts.Autoplay {
		params := s.params
		s.pending = &params
	}
	e.buffers.Request(e.bg, src, s.onBuffer)

	return s, nil
}

func (s *Sample) onBuffer(res BufferResult) {
	if s.destroyed {
		return
	}
	if res.ID != "" {
		s.id = res.ID
	}

	if res.Err != nil {
		s.err = res.Err
		s.pending = nil
		s.engine.log.Warn("sample load failed", "source", res.ID, "error", res.Err)
		s.events.Emit(SampleLoadError, SampleNotice{Sample: s, Err: res.Err})
		return
	}

	s.buffer = res.Buffer
	s.events.Emit(SampleReady, SampleNotice{Sample: s})

	if s.pending != nil && !s.destroyed {
		params := *s.pending
		s.pending = nil
		if _, err := s.play(params); err != nil {
			s.engine.log.Warn("deferred play failed", "source", s.id, "error", err)
		}
	}
}

func (s *Sample) Events() *event.Hub[SampleEvent, SampleNotice] { return &s.events }

// Play starts a new Playback with params, or the sample's defaults when
// params is nil. Before the buffer is ready it records the request and
// returns a nil Playback.
func (s *Sample) Play(params *PlayParams) (*Playback, error) {
	if s.destroyed {
		return nil, ErrDestroyed
	}

	pp := s.params
	if params != nil {
		pp = *params
	}
	if s.buffer == nil {
		s.pending = &pp
		return nil, nil
	}

	return s.play(pp)
}

func (s *Sample) play(params PlayParams) (*Playback, error) {
	p, err := newPlayback(s, params)
	if err != nil {
		return nil, err
	}
	s.playbacks.Set(p, struct{}{})

	ev := p.Events()
	ev.On(PlaybackEnd, func(p *Playback) {
		s.events.Emit(SamplePlaybackEnd, SampleNotice{Sample: s, Playback: p})
	})
	ev.On(PlaybackStop, func(p *Playback) {
		s.events.Emit(SamplePlaybackStop, SampleNotice{Sample: s, Playback: p})
	})
	ev.On(PlaybackDestroyed, func(p *Playback) {
		s.playbacks.Delete(p)
		s.events.Emit(SamplePlaybackDestroyed, SampleNotice{Sample: s, Playback: p})
	})

	return p, nil
}

// Playbacks returns the live playbacks, oldest first.
func (s *Sample) Playbacks() []*Playback {
	return keys(s.playbacks)
}

func (s *Sample) newest() *Playback {
	if pair := s.playbacks.Newest(); pair != nil {
		return pair.Key
	}
	return nil
}

func (s *Sample) Pause() error {
	if s.destroyed {
		return ErrDestroyed
	}
	for _, p := range s.Playbacks() {
		_ = p.Pause()
	}
	return nil
}

func (s *Sample) Resume() error {
	if s.destroyed {
		return ErrDestroyed
	}
	for _, p := range s.Playbacks() {
		if err := p.Resume(); err != nil {
			s.engine.log.Warn("resume failed", "source", s.id, "error", err)
		}
	}
	return nil
}

// Stop stops every playback and drops a play still waiting for the buffer.
func (s *Sample) Stop() error {
	if s.destroyed {
		return ErrDestroyed
	}
	s.pending = nil
	for _, p := range s.Playbacks() {
		_ = p.Stop()
	}
	return nil
}

// Destroy destroys every playback, leaves the parent group and disables the
// sample for good. Further calls do nothing.
func (s *Sample) Destroy() {
	if s.destroyed {
		return
	}
	s.pending = nil
	for _, p := range s.Playbacks() {
		p.Destroy()
	}
	s.destroyed = true

	s.events.Emit(SampleDestroyed, SampleNotice{Sample: s})
	s.events.Clear()

	if s.parent != nil {
		_ = s.parent.removeSample(s)
	}
	s.engine.forget(s)
	s.release()
}

func (s *Sample) Destroyed() bool { return s.destroyed }

// Clone creates a sample with the same source, defaults, volume, pan and
// group. The buffer is shared.
func (s *Sample) Clone() (*Sample, error) {
	if s.destroyed {
		return nil, ErrDestroyed
	}

	c, err := s.engine.NewSample(s.src, SampleOptions{Group: s.parent, Params: s.params})
	if err != nil {
		return nil, err
	}
	c.SetVolume(s.Volume())
	c.SetPan(s.Pan())
	return c, nil
}

// Duration of the buffer in seconds. ok is false until it has loaded.
func (s *Sample) Duration() (seconds float64, ok bool) {
	if s.buffer == nil {
		return 0, false
	}
	return s.buffer.Duration(), true
}

// Paused is true when there is at least one playback and all are paused.
func (s *Sample) Paused() bool {
	if s.playbacks.Len() == 0 {
		return false
	}
	for pair := s.playbacks.Oldest(); pair != nil; pair = pair.Next() {
		if !pair.Key.Paused() {
			return false
		}
	}
	return true
}

// Elapsed reports the most recent playback, 0 when there is none.
func (s *Sample) Elapsed() float64 {
	if p := s.newest(); p != nil {
		return p.Elapsed()
	}
	return 0
}

func (s *Sample) Position() float64 {
	if p := s.newest(); p != nil {
		return p.Position()
	}
	return 0
}

// Source is the canonical buffer id. It is known from construction and is
// replaced by the registry's id once the buffer resolves.
func (s *Sample) Source() string        { return s.id }
func (s *Sample) Ready() bool           { return s.buffer != nil }
func (s *Sample) Buffer() *audio.Buffer { return s.buffer }

// Err is the load error, if loading failed.
func (s *Sample) Err() error     { return s.err }
func (s *Sample) Parent() *Group { return s.parent }

func (s *Sample) Params() PlayParams { return s.params }

func (s *Sample) Loops() int            { return s.params.Loops }
func (s *Sample) SetLoops(n int)        { s.params.Loops = max(-1, n) }
func (s *Sample) Delay() float64        { return s.params.Delay }
func (s *Sample) SetDelay(v float64)    { s.params.Delay = max(0, v) }
func (s *Sample) Offset() float64       { return s.params.Offset }
func (s *Sample) SetOffset(v float64)   { s.params.Offset = max(0, v) }
func (s *Sample) PlayDuration() float64 { return s.params.Duration }
func (s *Sample) SetPlayDuration(v float64) {
	s.params.Duration = max(0, v)
}

func (s *Sample) setParent(g *Group) { s.parent = g }
