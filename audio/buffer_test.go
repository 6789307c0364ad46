// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audgraph/internal/audiotest"
)

func TestBuffer_Metadata(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(2, 22050, 44100)

	if buf.NumberOfChannels() != 2 {
		t.Errorf("NumberOfChannels() = %d, want 2", buf.NumberOfChannels())
	}
	if buf.Length() != 22050 {
		t.Errorf("Length() = %d, want 22050", buf.Length())
	}
	if math.Abs(buf.Duration()-0.5) > 1e-9 {
		t.Errorf("Duration() = %v, want 0.5", buf.Duration())
	}

	if _, err := buf.Channel(2); !errors.Is(err, ErrBadChannel) {
		t.Errorf("Channel(2) error = %v, want ErrBadChannel", err)
	}
}

func TestNewBufferFromChannels_LengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := NewBufferFromChannels(8000, make([]float32, 10), make([]float32, 9))
	if !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("NewBufferFromChannels() error = %v, want ErrInvalidDstSize", err)
	}

	if _, err := NewBufferFromChannels(8000); !errors.Is(err, ErrEmptySource) {
		t.Errorf("NewBufferFromChannels() with no channels error = %v, want ErrEmptySource", err)
	}
}

func TestBuffer_SourceInterleaves(t *testing.T) {
	t.Parallel()

	left := []float32{0.1, 0.2, 0.3}
	right := []float32{-0.1, -0.2, -0.3}
	buf, err := NewBufferFromChannels(8000, left, right)
	if err != nil {
		t.Fatalf("NewBufferFromChannels() error = %v", err)
	}

	src := buf.Source()
	dst := make([]float32, 4)
	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	want := []float32{0.1, -0.1, 0.2, -0.2}
	if n != len(want) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(want))
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	n, err = src.ReadSamples(dst)
	if n != 2 || err != io.EOF {
		t.Errorf("second ReadSamples() = (%d, %v), want (2, io.EOF)", n, err)
	}

	if _, err := src.ReadSamples(make([]float32, 3)); err != ErrInvalidDstSize && err != io.EOF {
		t.Errorf("ReadSamples(odd) error = %v", err)
	}
}

func TestBuffer_Mono(t *testing.T) {
	t.Parallel()

	left := []float32{0.4, 0.4, 0.4}
	right := []float32{0.6, 0.6, 0.6}
	buf, _ := NewBufferFromChannels(8000, left, right)

	mono, err := buf.Mono()
	if err != nil {
		t.Fatalf("Mono() error = %v", err)
	}
	if mono.NumberOfChannels() != 1 {
		t.Fatalf("Mono() channels = %d, want 1", mono.NumberOfChannels())
	}
	if mono.Length() != 3 {
		t.Fatalf("Mono() length = %d, want 3", mono.Length())
	}
	ch, _ := mono.Channel(0)
	for i, v := range ch {
		if math.Abs(float64(v-0.5)) > 1e-6 {
			t.Errorf("mono[%d] = %v, want 0.5", i, v)
		}
	}

	same, _ := mono.Mono()
	if same != mono {
		t.Error("Mono() of a mono buffer should return the buffer itself")
	}
}

func TestCollect_SameRate(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 2, 5000, 0.25)

	buf, err := Collect(src, 8000)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if buf.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", buf.SampleRate())
	}
	if buf.Length() != 5000 {
		t.Errorf("Length() = %d, want 5000", buf.Length())
	}
	for c := range 2 {
		ch, _ := buf.Channel(c)
		if ch[4999] != 0.25 {
			t.Errorf("channel %d last sample = %v, want 0.25", c, ch[4999])
		}
	}
}

func TestCollect_Resamples(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSineSource(16000, 1, 16000, 440.0)

	buf, err := Collect(src, 8000)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if buf.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", buf.SampleRate())
	}
	if d := buf.Duration(); math.Abs(d-1.0) > 0.01 {
		t.Errorf("Duration() = %v, want ≈1.0", d)
	}
}

func TestCollect_Empty(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 1, 0)
	if _, err := Collect(src, 0); !errors.Is(err, ErrEmptySource) {
		t.Errorf("Collect() error = %v, want ErrEmptySource", err)
	}
}

func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   []byte
		want   string
		wantOK bool
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), "wav", true},
		{"aiff", []byte("FORM\x00\x00\x00\x00AIFFCOMM"), "aiff", true},
		{"aifc", []byte("FORM\x00\x00\x00\x00AIFCCOMM"), "aiff", true},
		{"ogg", []byte("OggS\x00\x02"), "ogg", true},
		{"mp3 id3", []byte("ID3\x04\x00"), "mp3", true},
		{"mp3 sync", []byte{0xFF, 0xFB, 0x90, 0x00}, "mp3", true},
		{"riff not wave", []byte("RIFF\x00\x00\x00\x00AVI LIST"), "", false},
		{"short", []byte("R"), "", false},
		{"text", []byte("hello world"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Sniff(tt.data)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Sniff() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormatForMIME(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"audio/wav":  "wav",
		"AUDIO/MPEG": "mp3",
		"audio/ogg":  "ogg",
		"audio/aiff": "aiff",
	}
	for mime, want := range tests {
		got, ok := FormatForMIME(mime)
		if !ok || got != want {
			t.Errorf("FormatForMIME(%q) = (%q, %v), want (%q, true)", mime, got, ok, want)
		}
	}

	if _, ok := FormatForMIME("text/plain"); ok {
		t.Error("FormatForMIME(text/plain) ok = true, want false")
	}
}
