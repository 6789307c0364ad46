// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio decoding on top of
// github.com/hajimehoshi/go-mp3.
//
// The decoder always yields interleaved stereo float32 samples in the range
// [-1.0, 1.0] at the stream's native sample rate. Use audio.Collect to turn
// a stream into a planar buffer at a different rate:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // errors.Is(err, mp3.ErrNotMP3File)
//	}
//	buf, err := audio.Collect(src, 48000)
//
// Encoding is not supported.
package mp3
