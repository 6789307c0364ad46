// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"math"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/utils"
)

// BufferSource plays a buffer once. Buffers at a different rate than the
// context are resampled on the fly with cubic interpolation.
type BufferSource struct {
	node
	buffer  *audio.Buffer
	onEnded func()

	started    bool
	ended      bool
	startFrame int64
	stopFrame  int64
	// read window in buffer frames
	offset float64
	end    float64
	step   float64
}

var _ graph.BufferSourceNode = (*BufferSource)(nil)

func (c *Context) CreateBufferSource() graph.BufferSourceNode {
	s := &BufferSource{stopFrame: math.MaxInt64}
	s.init(c, s)
	return s
}

func (s *BufferSource) SetBuffer(b *audio.Buffer) {
	s.ctx.mtx.Lock()
	defer s.ctx.mtx.Unlock()
	s.buffer = b
}

func (s *BufferSource) Buffer() *audio.Buffer {
	s.ctx.mtx.Lock()
	defer s.ctx.mtx.Unlock()
	return s.buffer
}

func (s *BufferSource) SetOnEnded(fn func()) {
	s.ctx.mtx.Lock()
	defer s.ctx.mtx.Unlock()
	s.onEnded = fn
}

func (s *BufferSource) Start(when, offset, duration float64) error {
	s.ctx.mtx.Lock()
	defer s.ctx.mtx.Unlock()

	if s.started {
		return graph.ErrAlreadyStarted
	}
	if s.buffer == nil {
		return graph.ErrNoBuffer
	}

	rate := float64(s.buffer.SampleRate())
	length := float64(s.buffer.Length())

	s.started = true
	s.startFrame = max(s.ctx.toFrame(when), s.ctx.frame)
	s.step = rate / float64(s.ctx.sampleRate)
	s.offset = snap(math.Max(0, offset) * rate)
	s.end = length
	if duration > 0 {
		s.end = math.Min(length, snap(s.offset+duration*rate))
	}

	s.ctx.active[s] = struct{}{}
	return nil
}

func (s *BufferSource) Stop(when float64) error {
	s.ctx.mtx.Lock()
	defer s.ctx.mtx.Unlock()

	if !s.started {
		return graph.ErrNotStarted
	}
	if s.ended {
		return nil
	}

	s.stopFrame = max(s.ctx.toFrame(when), s.ctx.frame)
	return nil
}

func (s *BufferSource) finish() {
	s.ended = true
	s.ctx.ended(s)
}

func (s *BufferSource) process(_, out *bus, start int64) {
	out.clear()
	if !s.started || s.ended {
		return
	}

	left, _ := s.buffer.Channel(0)
	right := left
	if s.buffer.NumberOfChannels() > 1 {
		right, _ = s.buffer.Channel(1)
	}

	for i := range Quantum {
		f := start + int64(i)
		if f < s.startFrame {
			continue
		}
		if f >= s.stopFrame {
			s.finish()
			return
		}

		pos := s.offset + float64(f-s.startFrame)*s.step
		if pos >= s.end {
			s.finish()
			return
		}

		out[0][i] = sampleAt(left, pos)
		out[1][i] = sampleAt(right, pos)
	}

	// a window ending exactly on the quantum boundary ends now
	next := s.offset + float64(start+Quantum-s.startFrame)*s.step
	if start+Quantum > s.startFrame && (next >= s.end || start+Quantum >= s.stopFrame) {
		s.finish()
	}
}

// snap removes float noise from frame positions computed from seconds.
func snap(frames float64) float64 {
	if r := math.Round(frames); math.Abs(frames-r) < 1e-6 {
		return r
	}
	return frames
}

func sampleAt(data []float32, pos float64) float32 {
	idx := int(pos)
	frac := pos - float64(idx)
	if frac == 0 {
		return data[idx]
	}

	at := func(i int) float32 {
		if i < 0 || i >= len(data) {
			return 0
		}
		return data[i]
	}

	return utils.CubicInterpolate(at(idx-1), at(idx), at(idx+1), at(idx+2), float32(frac))
}
