// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audgraph/utils"
)

// Resampler converts a Source to another sample rate with Catmull-Rom
// interpolation, preserving the channel count. When downsampling, a
// one-pole low-pass runs ahead of the interpolator to tame aliasing.
//
// Collect uses it to bring decoded files to the rate of the graph context
// they will be played on.
type Resampler struct {
	src      Source
	channels int
	dstRate  int
	step     float64 // source frames per output frame

	// taps at source frames base-1, base, base+1, base+2; output is taken
	// between base and base+1 at fraction pos
	taps [4][]float32
	base int
	pos  float64

	in      []float32
	inPos   int
	inLen   int
	read    int // source frames consumed
	srcDone bool
	primed  bool

	lowpass bool
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(1, src.Channels())
	block := max(src.BufSize()/channels, 256)

	r := &Resampler{
		src:      src,
		channels: channels,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		in:       make([]float32, block*channels),
		state:    make([]float32, channels),
	}
	r.lowpass = r.step > 1
	for i := range r.taps {
		r.taps[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// next reads one source frame into dst. ok is false once the source is
// exhausted.
func (r *Resampler) next(dst []float32) (ok bool, err error) {
	for r.inPos >= r.inLen {
		if r.srcDone {
			return false, nil
		}
		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels
		if err == io.EOF {
			r.srcDone = true
		} else if err != nil {
			return false, fmt.Errorf("resampler: %w", err)
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		// start the filter on the first frame so there is no fade-in
		if r.read == 0 {
			copy(r.state, dst)
		}
		for c, v := range dst {
			r.state[c] = 0.5*v + 0.5*r.state[c]
			dst[c] = r.state[c]
		}
	}
	r.read++

	return true, nil
}

// prime fills the taps, duplicating the edge frames where the source has
// none.
func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.next(r.taps[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.taps[0], r.taps[1])

	for i := 2; i < 4; i++ {
		if ok, err = r.next(r.taps[i]); err != nil {
			return err
		}
		if !ok {
			copy(r.taps[i], r.taps[i-1])
		}
	}
	return nil
}

func (r *Resampler) advance() error {
	first := r.taps[0]
	copy(r.taps[:3], r.taps[1:])
	r.taps[3] = first

	ok, err := r.next(r.taps[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.taps[3], r.taps[2])
	}
	r.base++
	return nil
}

// done is true once the output position has passed the last source frame.
// The slack absorbs drift from accumulating a fractional step.
func (r *Resampler) done() bool {
	return r.srcDone && r.inPos >= r.inLen && float64(r.base)+r.pos > float64(r.read-1)+1e-9
}

// ReadSamples produces interleaved samples at the destination rate. dst
// must hold whole frames.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}
	if r.read == 0 {
		return 0, io.EOF
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.pos >= 1 {
			r.pos--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if r.done() {
			return written * r.channels, io.EOF
		}

		out := dst[written*r.channels : (written+1)*r.channels]
		x := float32(r.pos)
		for c := range out {
			out[c] = utils.CubicInterpolate(r.taps[0][c], r.taps[1][c], r.taps[2][c], r.taps[3][c], x)
		}
		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
