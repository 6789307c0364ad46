// SPDX-License-Identifier: EPL-2.0

// Package graph defines the audio-graph backend the sound engine drives.
//
// The model follows the familiar node graph: nodes are created by a
// Context, wired with Connect/Disconnect, and expose automatable Params
// whose values are scheduled on the context clock. A node's output may feed
// any number of inputs and an input sums every node connected to it.
//
// Package graph/soft provides a pure Go implementation.
package graph

import "github.com/ik5/audgraph/audio"

type Node interface {
	// Connect routes this node's output into dst's input.
	Connect(dst Node)
	// Disconnect removes the edge to dst. A nil dst removes every outgoing edge.
	Disconnect(dst Node)
	Context() Context
}

// Param is an automatable value. Times are on the context clock, in seconds.
type Param interface {
	Value() float64
	// SetValue discards scheduled automation and holds v from now on.
	SetValue(v float64)
	SetValueAtTime(v, t float64)
	// LinearRampToValueAtTime ramps from the previous scheduled event, or from
	// the current value when nothing is scheduled, to v at time t.
	LinearRampToValueAtTime(v, t float64)
	// CancelScheduledValues removes every event at or after t.
	CancelScheduledValues(t float64)
}

type Context interface {
	SampleRate() int
	// CurrentTime is the monotonic audio clock in seconds.
	CurrentTime() float64
	Destination() Node

	CreateGain() GainNode
	CreateStereoPanner() StereoPannerNode
	CreateBiquadFilter() BiquadFilterNode
	CreateConvolver() ConvolverNode
	CreateAnalyser() AnalyserNode
	CreateBufferSource() BufferSourceNode
}

type GainNode interface {
	Node
	Gain() Param
}

type StereoPannerNode interface {
	Node
	// Pan in [-1, 1].
	Pan() Param
}

type BiquadFilterNode interface {
	Node
	Type() FilterType
	SetType(t FilterType)
	// Frequency in Hz.
	Frequency() Param
	Q() Param
	// Gain in dB, used by the shelf and peaking types.
	Gain() Param
	// Detune in cents.
	Detune() Param
}

type ConvolverNode interface {
	Node
	SetBuffer(b *audio.Buffer)
	Buffer() *audio.Buffer
	SetNormalize(on bool)
	Normalize() bool
}

type AnalyserNode interface {
	Node
	FFTSize() int
	// SetFFTSize accepts powers of two in [32, 32768].
	SetFFTSize(n int) error
	FrequencyBinCount() int
	SmoothingTimeConstant() float64
	SetSmoothingTimeConstant(v float64)
	MinDecibels() float64
	MaxDecibels() float64
	SetDecibelRange(minDB, maxDB float64) error

	FloatTimeDomainData(dst []float32)
	ByteTimeDomainData(dst []byte)
	FloatFrequencyData(dst []float32)
	ByteFrequencyData(dst []byte)
}

// BufferSourceNode renders one buffer once. It is single use: a second
// Start fails and a stopped node cannot be restarted.
type BufferSourceNode interface {
	Node
	SetBuffer(b *audio.Buffer)
	Buffer() *audio.Buffer
	// Start schedules playback at context time when, beginning offset seconds
	// into the buffer. duration <= 0 plays to the end of the buffer.
	Start(when, offset, duration float64) error
	Stop(when float64) error
	// SetOnEnded installs the callback fired once when rendering finishes,
	// either naturally or because of Stop.
	SetOnEnded(fn func())
}
