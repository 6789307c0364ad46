// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"time"

	"github.com/ik5/audgraph/event"
	"github.com/ik5/audgraph/eventloop"
	"github.com/ik5/audgraph/graph"
)

// DefaultFadeDuration is the ramp length used when Options.FadeDuration is
// not positive.
const DefaultFadeDuration = 20 * time.Millisecond

type FadeEvent int

const (
	FadeInComplete FadeEvent = iota
	FadeOutComplete
)

type fadeDirection int

const (
	notFading fadeDirection = iota
	fadingIn
	fadingOut
)

// Declicker owns one gain node and moves it between 0 and 1 with short
// linear ramps. Only one fade runs at a time; a fade requested while
// another is running is dropped.
//
// The ramp runs on the audio clock. Completion is signalled by a wall-clock
// timer armed for 110% of the fade, on the event loop.
type Declicker struct {
	ctx      graph.Context
	sched    eventloop.Scheduler
	gain     graph.GainNode
	duration time.Duration

	fading fadeDirection
	timer  eventloop.Timer
	// bumped on every fade start and cancel so a stale timer is ignored
	gen uint64

	events event.Hub[FadeEvent, *Declicker]
}

// NewDeclicker returns an idle declicker at gain 1 using the engine's fade
// duration.
func NewDeclicker(e *Engine) *Declicker {
	return &Declicker{
		ctx:      e.ctx,
		sched:    e.sched,
		gain:     e.ctx.CreateGain(),
		duration: e.fade,
	}
}

func (d *Declicker) Node() graph.Node                          { return d.gain }
func (d *Declicker) Events() *event.Hub[FadeEvent, *Declicker] { return &d.events }
func (d *Declicker) Duration() time.Duration                   { return d.duration }
func (d *Declicker) IsFading() bool                            { return d.fading != notFading }
func (d *Declicker) IsFadingIn() bool                          { return d.fading == fadingIn }
func (d *Declicker) IsFadingOut() bool                         { return d.fading == fadingOut }

func (d *Declicker) FadeOut() { d.fade(1, 0, fadingOut, FadeOutComplete) }
func (d *Declicker) FadeIn()  { d.fade(0, 1, fadingIn, FadeInComplete) }

func (d *Declicker) fade(from, to float64, dir fadeDirection, done FadeEvent) {
	if d.fading != notFading {
		return
	}

	p := d.gain.Gain()
	now := d.ctx.CurrentTime()
	p.SetValue(from)
	p.LinearRampToValueAtTime(to, now+d.duration.Seconds())

	d.fading = dir
	d.gen++
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.duration*110/100, func() {
		if d.gen != gen {
			return
		}
		d.fading = notFading
		d.timer = nil
		d.events.Emit(done, d)
	})
}

// CancelFade drops the running fade and snaps the gain to 1, whichever way
// the fade was going. No completion event fires.
func (d *Declicker) CancelFade() {
	if d.fading == notFading {
		return
	}

	p := d.gain.Gain()
	p.CancelScheduledValues(0)
	p.SetValue(1)

	d.stopTimer()
	d.fading = notFading
}

func (d *Declicker) stopTimer() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// dispose stops any pending completion and removes every subscriber.
func (d *Declicker) dispose() {
	d.stopTimer()
	d.fading = notFading
	d.events.Clear()
	d.gain.Disconnect(nil)
}
