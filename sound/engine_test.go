// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"encoding/base64"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestEngine_RootFeedsDestination(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	s := h.sample(time.Second, SampleOptions{})
	if s.Parent() != h.engine.Root() {
		t.Fatal("sample not added to the root group by default")
	}

	play(t, s, nil)
	if p := peak(h, 20*time.Millisecond); p < 0.1 {
		t.Errorf("output peak = %v, want audible", p)
	}
}

func TestEngine_RegisterConflicts(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	buf := constBuffer(time.Second, 0.5)

	s1, err := h.engine.Register("beep", Decoded{Buffer: buf}, SampleOptions{})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	s2, err := h.engine.Register("beep", Decoded{Buffer: buf}, SampleOptions{})
	if err != nil || s2 != s1 {
		t.Errorf("re-Register() with the same source = (%p, %v), want the existing sample", s2, err)
	}

	_, err = h.engine.Register("beep", Decoded{Buffer: constBuffer(time.Second, 0.1)}, SampleOptions{})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Register() with another source error = %v, want ErrAlreadyRegistered", err)
	}

	if got, ok := h.engine.Lookup("beep"); !ok || got != s1 {
		t.Error("Lookup() did not return the registered sample")
	}
	if !slices.Equal(h.engine.Names(), []string{"beep"}) {
		t.Errorf("Names() = %v", h.engine.Names())
	}
}

func TestEngine_PlayAndUnregister(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	s, _ := h.engine.Register("click", Decoded{Buffer: constBuffer(time.Second, 0.5)}, SampleOptions{})
	h.settle()

	p, err := h.engine.Play("click", nil)
	if err != nil || p == nil {
		t.Fatalf("Play() = (%v, %v)", p, err)
	}

	if _, err := h.engine.Play("nope", nil); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("Play(unknown) error = %v, want ErrUnknownSound", err)
	}

	if err := h.engine.Unregister("click"); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if !s.Destroyed() || p.State() != StateDestroyed {
		t.Error("Unregister() did not destroy the sample")
	}
	if _, ok := h.engine.Lookup("click"); ok {
		t.Error("Lookup() still finds an unregistered sound")
	}
	if err := h.engine.Unregister("click"); !errors.Is(err, ErrUnknownSound) {
		t.Errorf("second Unregister() error = %v, want ErrUnknownSound", err)
	}
}

func TestEngine_DataURL(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	url := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(wavBytes(200*time.Millisecond))

	s, err := h.engine.NewSample(URL(url), SampleOptions{Autoplay: true})
	if err != nil {
		t.Fatalf("NewSample() error = %v", err)
	}
	h.waitFor(func() bool { return s.Ready() || s.Err() != nil })

	if s.Err() != nil {
		t.Fatalf("load error = %v", s.Err())
	}
	if d, _ := s.Duration(); d < 0.199 || d > 0.201 {
		t.Errorf("Duration() = %v, want 0.2", d)
	}
	if len(s.Playbacks()) != 1 {
		t.Error("autoplay did not start")
	}
	if got := s.Source(); len(got) < len("data:") || got[:5] != "data:" {
		t.Errorf("Source() = %q, want a data: content id", got)
	}
}

func TestEngine_CloseDestroysEverything(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	g := mkGroup(t, h)
	s := h.sample(time.Second, SampleOptions{Group: g})
	p := play(t, s, nil)

	h.engine.Close()
	h.engine.Close()

	if !s.Destroyed() || !g.Destroyed() || p.State() != StateDestroyed {
		t.Error("Close() left objects alive")
	}
	if _, err := h.engine.NewSample(Decoded{Buffer: constBuffer(time.Second, 0)}, SampleOptions{}); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("NewSample() after Close error = %v, want ErrEngineClosed", err)
	}
	if _, err := h.engine.NewGroup(); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("NewGroup() after Close error = %v, want ErrEngineClosed", err)
	}
}

// gauge reads a gauge value from reg, failing when it is not registered.
func gauge(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestEngine_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	h := newHarness(t, Options{Metrics: NewMetrics(reg)})

	s := h.sample(time.Second, SampleOptions{})
	p1 := play(t, s, nil)
	play(t, s, nil)
	if got := gauge(t, reg, "audgraph_active_playbacks"); got != 2 {
		t.Errorf("active playbacks = %v, want 2", got)
	}
	p1.Destroy()
	if got := gauge(t, reg, "audgraph_active_playbacks"); got != 1 {
		t.Errorf("active playbacks after destroy = %v, want 1", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(mfs) != 4 {
		t.Errorf("registered metric families = %d, want 4", len(mfs))
	}
}

func TestEngine_Supports(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	for _, ext := range []string{"wav", ".mp3", "OGG", "aiff"} {
		if !h.engine.Supports(ext) {
			t.Errorf("Supports(%q) = false", ext)
		}
	}
	if h.engine.Supports("flac") {
		t.Error("Supports(flac) = true")
	}
}
