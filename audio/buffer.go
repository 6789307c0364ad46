// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Buffer is a fully decoded, planar PCM buffer. Channel data is shared by
// every reader of the buffer and must be treated as read-only once the
// buffer has been handed to a playback graph.
type Buffer struct {
	sampleRate int
	channels   [][]float32
}

// NewBuffer allocates a silent buffer of length frames per channel.
func NewBuffer(channels, length, sampleRate int) *Buffer {
	if channels < 1 {
		channels = 1
	}
	data := make([][]float32, channels)
	for i := range data {
		data[i] = make([]float32, length)
	}

	return &Buffer{sampleRate: sampleRate, channels: data}
}

// NewBufferFromChannels wraps existing planar data. All channels must have
// the same length.
func NewBufferFromChannels(sampleRate int, channels ...[]float32) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, ErrEmptySource
	}
	n := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != n {
			return nil, fmt.Errorf("channel %d has %d frames, want %d: %w", i+1, len(ch), n, ErrInvalidDstSize)
		}
	}

	return &Buffer{sampleRate: sampleRate, channels: channels}, nil
}

func (b *Buffer) SampleRate() int       { return b.sampleRate }
func (b *Buffer) NumberOfChannels() int { return len(b.channels) }

// Length is the number of frames per channel.
func (b *Buffer) Length() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	if b.sampleRate <= 0 {
		return 0
	}
	return float64(b.Length()) / float64(b.sampleRate)
}

// Channel returns the sample slice for channel i.
func (b *Buffer) Channel(i int) ([]float32, error) {
	if i < 0 || i >= len(b.channels) {
		return nil, fmt.Errorf("%w: %d of %d", ErrBadChannel, i, len(b.channels))
	}
	return b.channels[i], nil
}

// Source returns a Source that reads the buffer as interleaved samples.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

// Mono returns the buffer itself when it already has one channel, otherwise
// a new single-channel buffer produced by averaging the channels.
func (b *Buffer) Mono() (*Buffer, error) {
	if len(b.channels) == 1 {
		return b, nil
	}

	mixer := NewMonoMixer(b.Source())
	out := make([]float32, 0, b.Length())
	tmp := make([]float32, 4096)
	for {
		n, err := mixer.ReadSamples(tmp)
		out = append(out, tmp[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("mono downmix: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return &Buffer{sampleRate: b.sampleRate, channels: [][]float32{out}}, nil
}

type bufferSource struct {
	buf *Buffer
	pos int
}

func (s *bufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *bufferSource) Channels() int   { return len(s.buf.channels) }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	channels := len(s.buf.channels)
	if channels == 0 {
		return 0, io.EOF
	}
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	length := s.buf.Length()
	if s.pos >= length {
		return 0, io.EOF
	}

	frames := min(len(dst)/channels, length-s.pos)
	for f := range frames {
		for c := range channels {
			dst[f*channels+c] = s.buf.channels[c][s.pos+f]
		}
	}
	s.pos += frames

	if s.pos >= length {
		return frames * channels, io.EOF
	}
	return frames * channels, nil
}
