// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Collect drains src into a planar Buffer at targetRate. When targetRate is
// zero or already matches the source rate the samples are copied as-is,
// otherwise the stream goes through a Resampler first.
//
// The pipeline is:
//  1. Resample src to targetRate using cubic interpolation (if needed)
//  2. Read interleaved blocks of BufSize samples
//  3. Deinterleave into one slice per channel
//
// Collect does not close src.
func Collect(src Source, targetRate int) (*Buffer, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, fmt.Errorf("collect: %d channels: %w", channels, ErrInvalidDstSize)
	}

	var stream Source = src
	rate := src.SampleRate()
	if targetRate > 0 && targetRate != rate {
		stream = NewResampler(src, targetRate)
		rate = targetRate
	}

	blockFrames := src.BufSize() / channels
	if blockFrames <= 0 {
		blockFrames = 1024
	}
	buf := make([]float32, blockFrames*channels)

	data := make([][]float32, channels)
	for {
		n, err := stream.ReadSamples(buf)
		frames := n / channels
		for f := range frames {
			for c := range channels {
				data[c] = append(data[c], buf[f*channels+c])
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
		if n == 0 {
			// no progress and no EOF: treat as end of stream
			break
		}
	}

	if len(data[0]) == 0 {
		return nil, ErrEmptySource
	}

	return &Buffer{sampleRate: rate, channels: data}, nil
}
