// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio decoding on top of
// github.com/jfreymuth/oggvorbis.
//
// The decoder yields interleaved float32 samples with the channel count and
// sample rate of the stream:
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // errors.Is(err, vorbis.ErrNotVorbisFile)
//	}
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// dst passed to ReadSamples must hold a whole number of frames.
package vorbis
