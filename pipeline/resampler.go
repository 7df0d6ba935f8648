// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"io"
)

const (
	// chunkFrames is the number of source frames read per refill.
	chunkFrames = 1024
	// smoothing is the coefficient of the one-pole low-pass filter applied
	// to the input when downsampling.
	smoothing = 0.5
)

// Resampler converts a Source to another sample rate with Catmull-Rom
// cubic interpolation. The channel count is preserved. When downsampling,
// the input goes through a one-pole low-pass filter first.
type Resampler struct {
	src      Source
	rate     int
	channels int
	// step is the number of source frames per output frame.
	step float64

	// window holds the frames at t-1, t, t+1 and t+2; pos is the
	// fractional position between window[1] and window[2].
	window [4][]float32
	real   [4]bool
	pos    float64
	primed bool

	chunk  []float32
	buf    []float32
	off    int
	srcErr error

	smooth bool
	state  []float32

	err error
}

// NewResampler returns a Resampler reading from src and producing rate
// frames per second. If either rate is not positive, every read fails with
// ErrInvalidRate.
func NewResampler(src Source, rate int) *Resampler {
	ch := src.Channels()
	var err error
	step := 1.0
	if rate <= 0 || src.SampleRate() <= 0 {
		err = fmt.Errorf("%w: %d Hz to %d Hz", ErrInvalidRate, src.SampleRate(), rate)
	} else {
		step = float64(src.SampleRate()) / float64(rate)
	}

	r := &Resampler{
		src:      src,
		rate:     rate,
		channels: ch,
		step:     step,
		chunk:    make([]float32, chunkFrames*ch),
		smooth:   step > 1,
		state:    make([]float32, ch),
		err:      err,
	}
	r.buf = r.chunk[:0]
	for i := range r.window {
		r.window[i] = make([]float32, ch)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }

// ReadSamples fills dst with resampled frames. dst must hold a multiple of
// Channels() samples.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			r.err = err
			return 0, err
		}
		r.primed = true
	}

	n := 0
	for n < len(dst) {
		for r.pos >= 1 {
			r.pos--
			if err := r.advance(); err != nil {
				r.err = err
				break
			}
		}
		if r.err != nil {
			break
		}
		// The last source frame is only reached exactly.
		if !r.real[2] && !(r.real[1] && r.pos == 0) {
			r.err = r.end()
			break
		}

		x := float32(r.pos)
		for c := range r.channels {
			dst[n+c] = catmullRom(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}
		n += r.channels
		r.pos += r.step
	}

	if n > 0 {
		return n, nil
	}
	return 0, r.err
}

// prime loads the first frames. The frame before the start repeats the
// first one.
func (r *Resampler) prime() error {
	if err := r.pull(r.window[1]); err != nil {
		return err
	}
	r.real[1] = true
	copy(r.window[0], r.window[1])
	if err := r.load(2); err != nil {
		return err
	}
	return r.load(3)
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = first
	copy(r.real[:], r.real[1:])
	if !r.real[1] {
		return r.end()
	}
	return r.load(3)
}

// load reads the next source frame into window[i], repeating window[i-1]
// past the end of the source.
func (r *Resampler) load(i int) error {
	err := r.pull(r.window[i])
	switch {
	case err == nil:
		r.real[i] = true
	case errors.Is(err, io.EOF):
		r.real[i] = false
		copy(r.window[i], r.window[i-1])
	default:
		return err
	}
	return nil
}

func (r *Resampler) pull(frame []float32) error {
	if r.off == len(r.buf) {
		if err := r.fill(); err != nil {
			return err
		}
	}
	copy(frame, r.buf[r.off:r.off+r.channels])
	r.off += r.channels

	if r.smooth {
		if !r.primed && !r.real[1] {
			copy(r.state, frame)
		}
		for c, v := range frame {
			frame[c] = smoothing*v + (1-smoothing)*r.state[c]
			r.state[c] = frame[c]
		}
	}
	return nil
}

func (r *Resampler) fill() error {
	if r.srcErr != nil {
		return r.srcErr
	}
	n, err := r.src.ReadSamples(r.chunk)
	n -= n % r.channels
	if err != nil {
		r.srcErr = err
	}
	if n == 0 {
		if err == nil {
			err = io.ErrNoProgress
			r.srcErr = err
		}
		return err
	}
	r.buf, r.off = r.chunk[:n], 0
	return nil
}

// end returns the error the source ended with.
func (r *Resampler) end() error {
	if r.srcErr != nil {
		return r.srcErr
	}
	return io.EOF
}

// catmullRom interpolates between y1 and y2 at x in [0, 1).
func catmullRom(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	return ((a0*x+a1)*x+a2)*x + y1
}
