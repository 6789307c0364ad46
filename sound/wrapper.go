// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"slices"

	"github.com/ik5/audgraph/graph"
)

// wrapper is the node sub-graph shared by Playback, Sample and Group:
//
//	fxBus -> effects... -> postFx -> declicker -> muter -> volume -> pan -> output
//
// The fixed nodes are created once. Only the effect chain between fxBus and
// postFx is ever rewired.
type wrapper struct {
	engine *Engine

	fxBus     graph.GainNode
	postFx    graph.GainNode
	declicker *Declicker
	muter     graph.GainNode
	volume    graph.GainNode
	pan       graph.StereoPannerNode
	output    graph.GainNode

	effects []Effect

	muted  bool
	muting bool

	// holdsFade reports whether the embedding type is using the declicker
	// for a transition of its own, in which case unmute must leave it alone.
	holdsFade func() bool

	offFade func()
}

func (w *wrapper) initWrapper(e *Engine) {
	ctx := e.ctx
	w.engine = e
	w.fxBus = ctx.CreateGain()
	w.postFx = ctx.CreateGain()
	w.declicker = NewDeclicker(e)
	w.muter = ctx.CreateGain()
	w.volume = ctx.CreateGain()
	w.pan = ctx.CreateStereoPanner()
	w.output = ctx.CreateGain()

	w.fxBus.Connect(w.postFx)
	w.postFx.Connect(w.declicker.Node())
	w.declicker.Node().Connect(w.muter)
	w.muter.Connect(w.volume)
	w.volume.Connect(w.pan)
	w.pan.Connect(w.output)

	w.offFade = w.declicker.Events().On(FadeOutComplete, func(*Declicker) {
		if !w.muting {
			return
		}
		w.muting = false
		w.muted = true
		w.muter.Gain().SetValue(0)
	})
}

// InputNode is where upstream audio enters the chain.
func (w *wrapper) InputNode() graph.Node  { return w.fxBus }
func (w *wrapper) OutputNode() graph.Node { return w.output }

func (w *wrapper) Declicker() *Declicker { return w.declicker }

func (w *wrapper) Volume() float64 { return w.volume.Gain().Value() }

func (w *wrapper) SetVolume(v float64) {
	w.volume.Gain().SetValue(max(0, v))
}

func (w *wrapper) Pan() float64 { return w.pan.Pan().Value() }

// SetPan sets the stereo position, clamped to [-1, 1].
func (w *wrapper) SetPan(v float64) {
	w.pan.Pan().SetValue(clamp(v, -1, 1))
}

// Muted reports whether the chain is muted or on its way to it.
func (w *wrapper) Muted() bool { return w.muted || w.muting }

// Mute fades the output out and then holds it silent.
func (w *wrapper) Mute() {
	if w.muted || w.muting {
		return
	}
	w.muting = true
	w.declicker.FadeOut()
}

// Unmute restores the output. A mute still fading is cancelled outright; a
// settled mute is lifted with a fade-in.
func (w *wrapper) Unmute() {
	switch {
	case w.muting:
		w.muting = false
		if w.holdsFade == nil || !w.holdsFade() {
			w.declicker.CancelFade()
		}
	case w.muted:
		w.muted = false
		w.muter.Gain().SetValue(1)
		w.declicker.FadeIn()
	}
}

// Effects returns a copy of the current chain.
func (w *wrapper) Effects() []Effect { return slices.Clone(w.effects) }

// SetEffects replaces the chain. Every effect is checked before anything is
// rewired: one owned by another chain, or listed twice, fails the call with
// an *OwnershipError and the current chain stays as it was.
func (w *wrapper) SetEffects(effects []Effect) error {
	seen := make(map[Effect]struct{}, len(effects))
	for i, fx := range effects {
		if fx == nil {
			return &OwnershipError{Index: i}
		}
		if o := fx.base().owner; o != nil && o != w {
			return &OwnershipError{Index: i}
		}
		if _, dup := seen[fx]; dup {
			return &OwnershipError{Index: i}
		}
		seen[fx] = struct{}{}
	}

	w.fxBus.Disconnect(nil)
	for _, fx := range w.effects {
		fx.base().owner = nil
		fx.Disconnect(nil)
	}

	prev := graph.Node(w.fxBus)
	for _, fx := range effects {
		fx.base().owner = w
		prev.Connect(fx.InputNode())
		prev = fx.OutputNode()
	}
	prev.Connect(w.postFx)

	w.effects = slices.Clone(effects)
	return nil
}

// release drops every effect and the fade subscription and unhooks the
// fixed nodes from the graph.
func (w *wrapper) release() {
	for _, fx := range w.effects {
		fx.base().owner = nil
		fx.Disconnect(nil)
	}
	w.effects = nil
	if w.offFade != nil {
		w.offFade()
	}
	w.declicker.dispose()
	w.output.Disconnect(nil)
	w.fxBus.Disconnect(nil)
}
