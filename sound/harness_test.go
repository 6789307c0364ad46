// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/eventloop"
	"github.com/ik5/audgraph/graph/soft"
	"github.com/ik5/audgraph/internal/audiotest"
)

// At this rate one render quantum is exactly 10ms, so audio and wall time
// can be stepped together.
const (
	testRate = 12800
	step     = 10 * time.Millisecond
)

type harness struct {
	t      *testing.T
	loop   *eventloop.Manual
	ctx    *soft.Context
	engine *Engine
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	loop := eventloop.NewManual(time.Unix(0, 0))
	ctx := soft.New(soft.Options{SampleRate: testRate, Dispatch: loop.Post})
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h := &harness{t: t, loop: loop, ctx: ctx}
	h.engine = New(ctx, loop, opts)
	t.Cleanup(h.engine.Close)
	return h
}

// advance renders and moves the wall clock in 10ms lockstep.
func (h *harness) advance(d time.Duration) {
	for range d / step {
		h.ctx.RenderFrames(soft.Quantum)
		h.loop.Advance(step)
	}
}

// settle runs callbacks already posted to the loop.
func (h *harness) settle() { h.loop.RunPending() }

// waitFor runs the loop until cond holds, for loads completing on other
// goroutines.
func (h *harness) waitFor(cond func() bool) {
	h.t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatal("timed out waiting for the event loop")
		}
		h.loop.WaitAndRun(50 * time.Millisecond)
	}
}

// sample creates a sample on a constant buffer of d and waits until ready.
func (h *harness) sample(d time.Duration, opts SampleOptions) *Sample {
	h.t.Helper()

	s, err := h.engine.NewSample(Decoded{Buffer: constBuffer(d, 0.5)}, opts)
	if err != nil {
		h.t.Fatalf("NewSample() error = %v", err)
	}
	h.settle()
	if !s.Ready() {
		h.t.Fatal("sample not ready after settle")
	}
	return s
}

func constBuffer(d time.Duration, v float32) *audio.Buffer {
	frames := int(d.Seconds() * testRate)
	buf := audio.NewBuffer(2, frames, testRate)
	for c := range 2 {
		ch, _ := buf.Channel(c)
		for i := range ch {
			ch[i] = v
		}
	}
	return buf
}

// countingDecoder counts decodes and blocks each one until release is
// closed.
type countingDecoder struct {
	calls   atomic.Int32
	release chan struct{}
}

func newCountingDecoder() *countingDecoder {
	return &countingDecoder{release: make(chan struct{})}
}

func (d *countingDecoder) Decode(r io.Reader) (audio.Source, error) {
	d.calls.Add(1)
	<-d.release
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	return audiotest.NewConstantSource(testRate, 1, testRate/10, 0.25), nil
}

func countingRegistry(d *countingDecoder) *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("cnt", d)
	return reg
}

func wavBytes(d time.Duration) []byte {
	frames := int(d.Seconds() * testRate)
	return audiotest.WAVBytes(testRate, 1, audiotest.ConstantPCM(frames, 1, 8000))
}
