// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audgraph/loader"
)

func mkGroup(t *testing.T, h *harness) *Group {
	t.Helper()

	g, err := h.engine.NewGroup()
	if err != nil {
		t.Fatalf("NewGroup() error = %v", err)
	}
	return g
}

func TestGroup_ReparentDetaches(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	g1 := mkGroup(t, h)
	g2 := mkGroup(t, h)
	s := h.sample(time.Second, SampleOptions{Group: g1})

	if err := g2.Add(s); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !slices.Contains(g2.Samples(), s) || slices.Contains(g1.Samples(), s) {
		t.Fatalf("membership: g1=%v g2=%v", g1.Samples(), g2.Samples())
	}
	if s.Parent() != g2 {
		t.Error("Parent() is not the new group")
	}

	// with g2 silenced, any sound left must come through g1
	g2.SetVolume(0)
	play(t, s, nil)
	if p := peak(h, 50*time.Millisecond); p != 0 {
		t.Errorf("output peak = %v, want silence: sample still feeds its old group", p)
	}

	g2.SetVolume(1)
	if p := peak(h, 50*time.Millisecond); p == 0 {
		t.Error("no output through the new group")
	}
}

func TestGroup_DestroyedSampleLeaves(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	g := mkGroup(t, h)
	s := h.sample(time.Second, SampleOptions{Group: g})

	var got []*Sample
	g.Events().On(GroupSampleDestroyed, func(n GroupNotice) { got = append(got, n.Sample) })

	s.Destroy()
	if len(got) != 1 || got[0] != s {
		t.Errorf("GroupSampleDestroyed = %v, want [s]", got)
	}
	if len(g.Samples()) != 0 {
		t.Error("destroyed sample still listed")
	}
}

func TestGroup_PlayPauseResumeStopRecurse(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	top := mkGroup(t, h)
	sub := mkGroup(t, h)
	if err := top.Add(sub); err != nil {
		t.Fatalf("Add(sub) error = %v", err)
	}
	a := h.sample(time.Second, SampleOptions{Group: top})
	b := h.sample(time.Second, SampleOptions{Group: sub})

	if err := top.Play(); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if len(a.Playbacks()) != 1 || len(b.Playbacks()) != 1 {
		t.Fatal("Play() did not reach every descendant")
	}

	_ = top.Pause()
	h.advance(30 * time.Millisecond)
	if !a.Paused() || !b.Paused() {
		t.Error("Pause() did not reach every descendant")
	}

	_ = top.Resume()
	if a.Paused() || b.Paused() {
		t.Error("Resume() did not reach every descendant")
	}

	_ = top.Stop()
	h.advance(30 * time.Millisecond)
	if len(a.Playbacks())+len(b.Playbacks()) != 0 {
		t.Error("Stop() did not reach every descendant")
	}
}

func TestGroup_DescendantQueries(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	top := mkGroup(t, h)
	sub := mkGroup(t, h)
	_ = top.Add(sub)

	shared := Decoded{Buffer: constBuffer(time.Second, 0.5)}
	a, _ := h.engine.NewSample(shared, SampleOptions{Group: top})
	b, _ := h.engine.NewSample(shared, SampleOptions{Group: sub})
	c := h.sample(time.Second, SampleOptions{Group: sub})
	h.settle()

	all := top.AllSamples()
	if want := []*Sample{a, b, c}; !slices.Equal(all, want) {
		t.Errorf("AllSamples() = %v, want %v", all, want)
	}

	bySrc := top.SamplesBySource(a.Source())
	if want := []*Sample{a, b}; !slices.Equal(bySrc, want) {
		t.Errorf("SamplesBySource() = %v, want %v", bySrc, want)
	}

	if got := top.SamplesBySource("nope"); len(got) != 0 {
		t.Errorf("SamplesBySource(nope) = %v", got)
	}
}

func TestGroup_SamplesBySourceWhileLoading(t *testing.T) {
	t.Parallel()

	hold := make(chan struct{})
	fetch := loader.FetcherFunc(func(ctx context.Context, _ string) (*loader.Resource, error) {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &loader.Resource{Data: wavBytes(50 * time.Millisecond), MIME: "audio/wav"}, nil
	})
	h := newHarness(t, Options{Fetcher: fetch})
	release := sync.OnceFunc(func() { close(hold) })
	t.Cleanup(release)

	g := mkGroup(t, h)
	s, err := h.engine.NewSample(URL("sounds/a.wav"), SampleOptions{Group: g})
	if err != nil {
		t.Fatalf("NewSample() error = %v", err)
	}

	if s.Ready() {
		t.Fatal("sample ready while the fetch is held")
	}
	if s.Source() != "sounds/a.wav" {
		t.Errorf("Source() while loading = %q, want sounds/a.wav", s.Source())
	}
	if got := g.SamplesBySource("sounds/a.wav"); !slices.Equal(got, []*Sample{s}) {
		t.Errorf("SamplesBySource() while loading = %v, want [%v]", got, s)
	}

	release()
	h.waitFor(s.Ready)
	if got := g.SamplesBySource("sounds/a.wav"); !slices.Equal(got, []*Sample{s}) {
		t.Errorf("SamplesBySource() after load = %v, want [%v]", got, s)
	}
}

func TestGroup_AddRules(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	g := mkGroup(t, h)

	if err := g.Add(h.engine.Root()); !errors.Is(err, ErrRootGroup) {
		t.Errorf("Add(root) error = %v, want ErrRootGroup", err)
	}

	if err := g.Add(nil); err != nil {
		t.Errorf("Add(nil) error = %v, want nil", err)
	}
	var nilSample *Sample
	if err := g.Add(nilSample); err != nil {
		t.Errorf("Add(nil sample) error = %v, want nil", err)
	}

	s := h.sample(time.Second, SampleOptions{})
	s.Destroy()
	if err := g.Add(s); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Add(destroyed) error = %v, want ErrDestroyed", err)
	}

	other := mkGroup(t, h)
	if err := g.removeGroup(other); !errors.Is(err, ErrNotChild) {
		t.Errorf("removeGroup(stranger) error = %v, want ErrNotChild", err)
	}
}

func TestGroup_ReparentGroup(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	g1 := mkGroup(t, h)
	g2 := mkGroup(t, h)
	child := mkGroup(t, h)

	_ = g1.Add(child)
	_ = g2.Add(child)

	if slices.Contains(g1.Subgroups(), child) || !slices.Contains(g2.Subgroups(), child) {
		t.Error("subgroup not moved")
	}
	if slices.Contains(h.engine.Root().Subgroups(), child) {
		t.Error("subgroup still under root")
	}
	if child.Parent() != g2 {
		t.Error("Parent() not updated")
	}
}

func TestGroup_Destroy(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	g := mkGroup(t, h)
	sub := mkGroup(t, h)
	_ = g.Add(sub)
	s := h.sample(time.Second, SampleOptions{Group: sub})
	play(t, s, nil)

	if err := h.engine.Root().Destroy(); !errors.Is(err, ErrRootGroup) {
		t.Errorf("root Destroy() error = %v, want ErrRootGroup", err)
	}

	if err := g.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if !g.Destroyed() || !sub.Destroyed() || !s.Destroyed() {
		t.Error("Destroy() did not reach every descendant")
	}
	if slices.Contains(h.engine.Root().Subgroups(), g) {
		t.Error("destroyed group still under root")
	}
	if err := g.Play(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Play() on destroyed group error = %v, want ErrDestroyed", err)
	}
	if err := g.Add(h.sample(time.Second, SampleOptions{})); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Add() on destroyed group error = %v, want ErrDestroyed", err)
	}
}
