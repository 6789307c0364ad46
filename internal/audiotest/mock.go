// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds synthetic sources and encoded fixtures for tests.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of channel ch at frame i.
type Waveform func(i, ch int) float32

// MockSource generates frames from a Waveform. It satisfies audio.Source
// without importing the audio package.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	wave       Waveform

	// MaxFrames, when positive, caps the frames returned per read so
	// consumers see short reads.
	MaxFrames int
	closed    bool
}

// NewMockSource creates a source of frames frames per channel.
func NewMockSource(sampleRate, channels, frames int, wave func(i, ch int) float32) *MockSource {
	return &MockSource{sampleRate: sampleRate, channels: channels, frames: frames, wave: wave}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

// NewSineSource produces the same sine on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * frequency * float64(i) / float64(sampleRate)))
	})
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds to the first frame.
func (m *MockSource) Reset() { m.pos = 0 }

// ReadSamples fills dst with whole frames and returns io.EOF together with
// the last of them.
func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.pos)
	if m.MaxFrames > 0 {
		n = min(n, m.MaxFrames)
	}
	for f := range n {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.wave(m.pos+f, ch)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}
