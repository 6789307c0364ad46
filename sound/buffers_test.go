// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audgraph/loader"
)

func TestBufferRegistry_ConcurrentRequestsDecodeOnce(t *testing.T) {
	t.Parallel()

	dec := newCountingDecoder()
	h := newHarness(t, Options{Decoders: countingRegistry(dec)})
	src := Bytes{Data: []byte("payload"), Format: "cnt"}

	var results []BufferResult
	for range 3 {
		h.engine.Buffers().Request(context.Background(), src, func(res BufferResult) {
			results = append(results, res)
		})
	}

	// let the requests pile up on the blocked decode
	time.Sleep(20 * time.Millisecond)
	close(dec.release)
	h.waitFor(func() bool { return len(results) == 3 })

	if n := dec.calls.Load(); n != 1 {
		t.Errorf("decodes = %d, want 1", n)
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("result %d error = %v", i, res.Err)
		}
		if res.Buffer != results[0].Buffer || res.ID != results[0].ID {
			t.Errorf("result %d differs from the first", i)
		}
	}
	if h.engine.Buffers().Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.engine.Buffers().Len())
	}
}

func TestBufferRegistry_SamplesShareDecode(t *testing.T) {
	t.Parallel()

	dec := newCountingDecoder()
	h := newHarness(t, Options{Decoders: countingRegistry(dec)})
	src := Bytes{Data: []byte("shared"), Format: "cnt"}

	a, _ := h.engine.NewSample(src, SampleOptions{})
	b, _ := h.engine.NewSample(src, SampleOptions{})
	_, _ = a.Play(nil)
	_, _ = b.Play(nil)

	close(dec.release)
	h.waitFor(func() bool { return a.Ready() && b.Ready() })

	if n := dec.calls.Load(); n != 1 {
		t.Errorf("decodes = %d, want 1", n)
	}
	if a.Buffer() != b.Buffer() {
		t.Error("samples hold different buffers")
	}
	if len(a.Playbacks()) != 1 || len(b.Playbacks()) != 1 {
		t.Error("deferred plays did not fire")
	}
}

func TestBufferRegistry_LoadFromGoroutines(t *testing.T) {
	t.Parallel()

	dec := newCountingDecoder()
	h := newHarness(t, Options{Decoders: countingRegistry(dec)})
	src := Bytes{Data: []byte("blocking"), Format: "cnt"}

	var wg sync.WaitGroup
	results := make([]BufferResult, 8)
	for i := range results {
		wg.Go(func() {
			results[i] = h.engine.Buffers().Load(context.Background(), src)
		})
	}
	time.Sleep(20 * time.Millisecond)
	close(dec.release)
	wg.Wait()

	if n := dec.calls.Load(); n != 1 {
		t.Errorf("decodes = %d, want 1", n)
	}
	for i, res := range results {
		if res.Err != nil || res.Buffer != results[0].Buffer {
			t.Errorf("result %d = %+v", i, res)
		}
	}
}

func TestBufferRegistry_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	var calls int
	fetch := loader.FetcherFunc(func(ctx context.Context, url string) (*loader.Resource, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return &loader.Resource{Data: wavBytes(100 * time.Millisecond), MIME: "audio/wav"}, nil
	})
	h := newHarness(t, Options{Fetcher: fetch})
	reg := h.engine.Buffers()

	res := reg.Load(context.Background(), URL("https://example.invalid/a.wav"))
	if res.Err == nil {
		t.Fatal("first Load() succeeded, want the fetch error")
	}
	if _, ok := reg.Cached(res.ID); ok {
		t.Error("failed load was cached")
	}

	res = reg.Load(context.Background(), URL("https://example.invalid/a.wav"))
	if res.Err != nil {
		t.Fatalf("retry Load() error = %v", res.Err)
	}
	if res.ID != "https://example.invalid/a.wav" {
		t.Errorf("ID = %q", res.ID)
	}
	if _, ok := reg.Cached(res.ID); !ok {
		t.Error("successful load not cached")
	}

	reg.Evict(res.ID)
	if reg.Len() != 0 {
		t.Errorf("Len() after Evict = %d, want 0", reg.Len())
	}
}

func TestBufferRegistry_MIMEOverridesUnknownExtension(t *testing.T) {
	t.Parallel()

	fetch := loader.FetcherFunc(func(context.Context, string) (*loader.Resource, error) {
		return &loader.Resource{Data: wavBytes(50 * time.Millisecond), MIME: "audio/x-wav"}, nil
	})
	h := newHarness(t, Options{Fetcher: fetch})

	res := h.engine.Buffers().Load(context.Background(), URL("https://example.invalid/stream?id=7"))
	if res.Err != nil {
		t.Fatalf("Load() error = %v", res.Err)
	}
	if res.Buffer.Length() != testRate/20 {
		t.Errorf("Length() = %d, want %d", res.Buffer.Length(), testRate/20)
	}
}

func TestBufferRegistry_ResolveErrorIsDelivered(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{})
	var got error
	h.engine.Buffers().Request(context.Background(), URLCandidates{"a.flac"}, func(res BufferResult) {
		got = res.Err
	})
	if got != nil {
		t.Fatal("callback ran synchronously")
	}
	h.settle()
	if !errors.Is(got, ErrNoSupportedSource) {
		t.Errorf("error = %v, want ErrNoSupportedSource", got)
	}
}
