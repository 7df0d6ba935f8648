// SPDX-License-Identifier: EPL-2.0

package audread

import (
	"errors"
	"iter"

	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/sample"
)

// readAllLimit caps the capacity ReadAll reserves up front from the frame
// count a header declares. Longer streams grow by append.
const readAllLimit = 1 << 16

// NextSamples pulls the next decoded unit from r, converts it to S and
// appends the interleaved samples to dst. On error dst is returned
// unchanged.
//
// Integer targets are rescaled from the native width (widening is exact,
// narrowing rounds and saturates); float targets are in [-1, 1].
func NextSamples[S sample.Type](r *Reader, dst []S) ([]S, error) {
	f, err := r.NextFrame()
	if err != nil {
		return dst, err
	}
	return sample.AppendFrame(dst, f, r.desc.SampleFormat), nil
}

// Samples returns an iterator over the interleaved samples of r, converted
// to S. The sequence ends at the end of the stream; a failure is yielded
// once, with a zero sample, and ends it.
//
// Example:
//
//	for v, err := range audread.Samples[float32](r) {
//	    if err != nil {
//	        return err
//	    }
//	    process(v)
//	}
func Samples[S sample.Type](r *Reader) iter.Seq2[S, error] {
	return func(yield func(S, error) bool) {
		var buf []S
		for {
			var err error
			buf, err = NextSamples(r, buf[:0])
			if err != nil {
				if !errors.Is(err, audio.ErrExhausted) {
					var zero S
					yield(zero, err)
				}
				return
			}
			for _, v := range buf {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// Frames returns an iterator over the time instants of r: each slice holds
// one sample per channel, converted to S. The slice is reused between
// iterations; copy it to keep it. Failures are reported as in Samples.
func Frames[S sample.Type](r *Reader) iter.Seq2[[]S, error] {
	return func(yield func([]S, error) bool) {
		ch := r.desc.Channels
		var buf []S
		for {
			var err error
			buf, err = NextSamples(r, buf[:0])
			if err != nil {
				if !errors.Is(err, audio.ErrExhausted) {
					yield(nil, err)
				}
				return
			}
			for i := 0; i+ch <= len(buf); i += ch {
				if !yield(buf[i:i+ch:i+ch], nil) {
					return
				}
			}
		}
	}
}

// ReadAll reads r to the end and returns every sample, converted to S. It
// returns the samples decoded before a failure together with that
// failure; reaching the end is not an error.
func ReadAll[S sample.Type](r *Reader) ([]S, error) {
	var out []S
	if n := r.desc.Frames * int64(r.desc.Channels); n > 0 {
		out = make([]S, 0, min(n, readAllLimit))
	}
	for {
		var err error
		out, err = NextSamples(r, out)
		if errors.Is(err, audio.ErrExhausted) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
