// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM primitives the rest of audgraph is built
// on.
//
// # Sources
//
// Decoders produce a Source, a pull-based stream of interleaved float32
// samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// ReadSamples returns io.EOF, possibly together with the last samples, when
// the stream ends. Sources chain: NewResampler changes the rate with cubic
// interpolation and NewMonoMixer averages the channels.
//
// # Buffers
//
// A Buffer is a fully decoded planar clip. Collect drains a Source into one,
// optionally resampling on the way:
//
//	buf, err := audio.Collect(src, 44100)
//	left, _ := buf.Channel(0)
//
// Buffers are shared between every playback of a sound and must not be
// modified once handed to a graph.
//
// # Formats
//
// A Registry maps format keys ("wav", "ogg", ...) to decoders and keeps
// their registration order, which callers use as a preference order. Sniff
// recognizes a format from the first bytes of encoded data and
// FormatForMIME from a Content-Type.
//
// Samples are float32 in [-1.0, 1.0]; 0 is silence.
package audio
