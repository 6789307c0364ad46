// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding uses github.com/go-audio/wav and accepts integer PCM at 8, 16,
// 24 and 32 bits, any channel count and any sample rate. Samples come out as
// float32 values in the range [-1.0, 1.0].
//
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // ErrNotWavFile, ErrOnlyPCMSupported, ErrUnsupportedWavLayout ...
//	}
//
// # Writing WAV Files
//
// WriteWAV16 writes interleaved 16-bit samples with a canonical 44-byte
// header, WriteBuffer writes a planar audio.Buffer the same way:
//
//	err := wav.WriteWAV16(file, 8000, 1, samples)
//	err = wav.WriteBuffer(file, rendered)
//
// Writing goes out in fixed-size chunks so large renders do not need one
// contiguous byte slice.
package wav
