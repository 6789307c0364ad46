// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"math"
	"testing"
	"time"
)

func TestDeclicker_FadeOutCompletes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	d := NewDeclicker(h.engine)

	var done int
	d.Events().On(FadeOutComplete, func(*Declicker) { done++ })

	d.FadeOut()
	if !d.IsFading() || !d.IsFadingOut() || d.IsFadingIn() {
		t.Fatal("FadeOut() did not enter the fading-out state")
	}

	h.advance(10 * time.Millisecond)
	if v := d.gain.Gain().Value(); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("gain halfway through the fade = %v, want 0.5", v)
	}

	h.advance(10 * time.Millisecond)
	if done != 0 {
		t.Error("completion fired before 110% of the fade")
	}
	if v := d.gain.Gain().Value(); v != 0 {
		t.Errorf("gain at the end of the ramp = %v, want 0", v)
	}

	h.advance(10 * time.Millisecond)
	if done != 1 {
		t.Errorf("FadeOutComplete fired %d times, want 1", done)
	}
	if d.IsFading() {
		t.Error("IsFading() = true after completion")
	}
}

func TestDeclicker_OverlappingFadeIsDropped(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	d := NewDeclicker(h.engine)

	var in, out int
	d.Events().On(FadeInComplete, func(*Declicker) { in++ })
	d.Events().On(FadeOutComplete, func(*Declicker) { out++ })

	d.FadeOut()
	d.FadeIn()
	d.FadeOut()

	if h.loop.Pending() != 1 {
		t.Errorf("armed timers = %d, want 1", h.loop.Pending())
	}
	h.advance(50 * time.Millisecond)

	if in != 0 || out != 1 {
		t.Errorf("completions in=%d out=%d, want 0 and 1", in, out)
	}
}

func TestDeclicker_CancelThenFadeOutIsFresh(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	d := NewDeclicker(h.engine)

	var out int
	d.Events().On(FadeOutComplete, func(*Declicker) { out++ })

	d.FadeIn()
	h.advance(10 * time.Millisecond)
	d.CancelFade()

	if d.IsFading() {
		t.Fatal("IsFading() = true after CancelFade")
	}
	if v := d.gain.Gain().Value(); v != 1 {
		t.Fatalf("gain after CancelFade = %v, want 1", v)
	}
	if h.loop.Pending() != 0 {
		t.Fatalf("armed timers after CancelFade = %d, want 0", h.loop.Pending())
	}

	d.FadeOut()
	h.advance(10 * time.Millisecond)
	if v := d.gain.Gain().Value(); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("gain halfway through the fresh fade = %v, want 0.5", v)
	}
	h.advance(20 * time.Millisecond)
	if out != 1 {
		t.Errorf("FadeOutComplete fired %d times, want 1", out)
	}
}

func TestDeclicker_CancelWhenIdle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	d := NewDeclicker(h.engine)

	d.gain.Gain().SetValue(0.25)
	d.CancelFade()
	if v := d.gain.Gain().Value(); v != 0.25 {
		t.Errorf("CancelFade() while idle changed the gain to %v", v)
	}
}

func TestDeclicker_CustomDuration(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{FadeDuration: 100 * time.Millisecond})
	d := NewDeclicker(h.engine)
	if d.Duration() != 100*time.Millisecond {
		t.Fatalf("Duration() = %v, want 100ms", d.Duration())
	}

	var out int
	d.Events().On(FadeOutComplete, func(*Declicker) { out++ })
	d.FadeOut()

	h.advance(100 * time.Millisecond)
	if out != 0 {
		t.Error("completion fired before 110ms")
	}
	h.advance(20 * time.Millisecond)
	if out != 1 {
		t.Errorf("FadeOutComplete fired %d times, want 1", out)
	}
}
