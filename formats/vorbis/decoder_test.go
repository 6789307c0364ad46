// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audgraph/audio"
)

// mockOggVorbisReader behaves like oggvorbis.Reader: Read returns the
// number of interleaved values copied.
type mockOggVorbisReader struct {
	sampleRate int
	channels   int
	samples    []float32
	failAfter  int
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.failAfter < 0 {
		return 0, errors.New("corrupt packet")
	}
	if len(m.samples) == 0 {
		return 0, io.EOF
	}
	n := copy(buf, m.samples)
	m.samples = m.samples[n:]
	m.failAfter--
	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := map[string][]byte{
		"text":  []byte("This is not Vorbis data"),
		"empty": {},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := (Decoder{}).Decode(bytes.NewReader(data)); !errors.Is(err, ErrNotVorbisFile) {
				t.Errorf("Decode() error = %v, want ErrNotVorbisFile", err)
			}
		})
	}
}

func TestSource_ReadSamplesCountsValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		total    int
		chunk    int
	}{
		{"mono", 1, 10, 4},
		{"stereo", 2, 12, 4},
		{"surround", 6, 24, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float32, tt.total)
			for i := range data {
				data[i] = float32(i) / float32(tt.total)
			}
			src := &source{
				dec:        &mockOggVorbisReader{sampleRate: 48000, channels: tt.channels, samples: data, failAfter: 1 << 20},
				sampleRate: 48000,
				channels:   tt.channels,
			}

			var got []float32
			buf := make([]float32, tt.chunk)
			for {
				n, err := src.ReadSamples(buf)
				got = append(got, buf[:n]...)
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("ReadSamples() error = %v", err)
				}
			}

			if len(got) != tt.total {
				t.Fatalf("read %d values, want %d", len(got), tt.total)
			}
			for i := range data {
				if got[i] != data[i] {
					t.Errorf("value %d = %v, want %v", i, got[i], data[i])
				}
			}
		})
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:        &mockOggVorbisReader{channels: 2, samples: make([]float32, 8), failAfter: -1},
		sampleRate: 44100,
		channels:   2,
	}

	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples(3) error = %v, want ErrInvalidDstSize", err)
	}
	if _, err := src.ReadSamples(make([]float32, 4)); err == nil || err == io.EOF {
		t.Errorf("ReadSamples() error = %v, want decoder error", err)
	}
}
