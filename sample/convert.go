// SPDX-License-Identifier: EPL-2.0

package sample

import (
	"math"

	"github.com/ik5/audread/audio"
)

// Type is the set of caller-facing sample representations.
type Type interface {
	int8 | int16 | int32 | float32 | float64
}

// Bits returns the integer width of S, or 0 for float types.
func Bits[S Type]() int {
	var zero S
	switch any(zero).(type) {
	case int8:
		return 8
	case int16:
		return 16
	case int32:
		return 32
	default:
		return 0
	}
}

// Rescale maps a signed value of width from onto width to.
//
// Widening shifts left and is exact. Narrowing rounds to the nearest value
// (halves round up) and saturates at the top of the target range; the
// dropped low bits are expected precision loss, not an error.
func Rescale(v int64, from, to int) int64 {
	if to >= from {
		return v << (to - from)
	}
	shift := from - to
	r := (v + 1<<(shift-1)) >> shift
	if hi := int64(1)<<(to-1) - 1; r > hi {
		return hi
	}
	return r
}

// FromInt converts a signed native sample of the given width.
func FromInt[S Type](v int32, bits int) S {
	var zero S
	switch any(zero).(type) {
	case float32:
		return S(float32(float64(v) / scale(bits)))
	case float64:
		return S(float64(v) / scale(bits))
	default:
		return S(Rescale(int64(v), bits, Bits[S]()))
	}
}

// FromUint converts an offset-binary native sample of the given width, as
// used by 8-bit WAV. The midpoint maps to zero.
func FromUint[S Type](v uint32, bits int) S {
	return FromInt[S](int32(int64(v)-int64(1)<<(bits-1)), bits)
}

// FromFloat converts a native float sample. Integer targets clamp the input
// to [-1, 1] and saturate instead of wrapping; NaN maps to zero.
func FromFloat[S Type](v float64) S {
	var zero S
	switch any(zero).(type) {
	case float32:
		return S(float32(v))
	case float64:
		return S(v)
	default:
		return S(floatToInt(v, Bits[S]()))
	}
}

// AppendFrame converts every sample of f, as described by sf, and appends
// them to dst in interleaved order.
func AppendFrame[S Type](dst []S, f audio.Frame, sf audio.SampleFormat) []S {
	switch sf.Encoding {
	case audio.Float:
		for _, v := range f.Floats {
			dst = append(dst, FromFloat[S](v))
		}
	case audio.Unsigned:
		for _, v := range f.Ints {
			dst = append(dst, FromUint[S](uint32(v), sf.Bits))
		}
	default:
		for _, v := range f.Ints {
			dst = append(dst, FromInt[S](v, sf.Bits))
		}
	}
	return dst
}

// scale is the reference amplitude of a signed integer width.
func scale(bits int) float64 {
	return float64(int64(1) << (bits - 1))
}

func floatToInt(v float64, bits int) int64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	r := int64(math.Round(v * scale(bits)))
	hi := int64(1)<<(bits-1) - 1
	lo := -int64(1) << (bits - 1)
	if r > hi {
		return hi
	}
	if r < lo {
		return lo
	}
	return r
}
