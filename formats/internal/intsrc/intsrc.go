// SPDX-License-Identifier: EPL-2.0

// Package intsrc adapts go-audio decoders, which hand out integer PCM, to
// the float32 audio.Source interface.
package intsrc

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

// PCMReader is the part of the go-audio wav and aiff decoders a Source needs.
type PCMReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source reads integer PCM from a go-audio decoder and normalises it to
// [-1, 1] according to the bit depth.
type Source struct {
	dec        PCMReader
	sampleRate int
	channels   int
	bitDepth   int
	unsigned8  bool
	intBuf     *goaudio.IntBuffer
}

// New wraps dec. unsigned8 marks 8-bit data stored as unsigned bytes (WAV),
// as opposed to signed 8-bit (AIFF).
func New(dec PCMReader, bitDepth int, unsigned8 bool) (*Source, error) {
	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate < 1 {
		return nil, fmt.Errorf("invalid PCM format %+v", format)
	}

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	return &Source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		unsigned8:  unsigned8,
	}, nil
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Close() error    { return nil }
func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *Source) scale() float32 {
	switch s.bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         s.dec.Format(),
			SourceBitDepth: s.bitDepth,
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	maxVal := s.scale()
	for i := range n {
		v := s.intBuf.Data[i]
		if s.unsigned8 && s.bitDepth == 8 {
			v -= 128
		}
		dst[i] = float32(v) / maxVal
	}

	if n < len(dst) && err == nil {
		return n, io.EOF
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}

	return n, err
}
