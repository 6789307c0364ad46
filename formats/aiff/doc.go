// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF audio decoding on top of
// github.com/go-audio/aiff.
//
// Uncompressed big-endian PCM at 8, 16, 24 and 32 bits is supported. Samples
// are normalised to float32 in [-1.0, 1.0]:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // ...
//	}
//
// AIFF-C compressed variants are rejected by go-audio.
package aiff
