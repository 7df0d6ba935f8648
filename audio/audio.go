// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
)

// Encoding is the numeric representation of a native sample.
type Encoding int

const (
	// Signed is two's complement integer PCM.
	Signed Encoding = iota + 1
	// Unsigned is offset-binary integer PCM (e.g. 8-bit WAV).
	Unsigned
	// Float is IEEE 754 floating point.
	Float
)

func (e Encoding) String() string {
	switch e {
	case Signed:
		return "signed"
	case Unsigned:
		return "unsigned"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// SampleFormat describes how a backend represents one sample natively.
type SampleFormat struct {
	Encoding Encoding
	// Bits is the significant width of a sample: 1-32 for integers,
	// 32 or 64 for floats.
	Bits int
}

// IsFloat reports whether samples are delivered in Frame.Floats.
func (f SampleFormat) IsFloat() bool { return f.Encoding == Float }

func (f SampleFormat) String() string {
	switch f.Encoding {
	case Signed:
		return fmt.Sprintf("s%d", f.Bits)
	case Unsigned:
		return fmt.Sprintf("u%d", f.Bits)
	case Float:
		return fmt.Sprintf("f%d", f.Bits)
	default:
		return f.Encoding.String()
	}
}

// Valid reports whether the format is one the sample conversion can handle.
func (f SampleFormat) Valid() bool {
	switch f.Encoding {
	case Signed, Unsigned:
		return f.Bits >= 1 && f.Bits <= 32
	case Float:
		return f.Bits == 32 || f.Bits == 64
	default:
		return false
	}
}

// Description is the normalized metadata of an opened stream.
// It is fixed once a backend has been constructed.
type Description struct {
	Format       Format
	SampleRate   int
	Channels     int
	SampleFormat SampleFormat
	// Frames is the total number of per-channel frames declared by the
	// container, or -1 when the container does not say.
	Frames int64
}

// Validate checks the structural invariants every backend must honor.
func (d Description) Validate() error {
	if d.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidSampleRate, d.SampleRate)
	}
	if d.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrInvalidChannels, d.Channels)
	}
	if !d.SampleFormat.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSampleFormat, d.SampleFormat)
	}
	return nil
}

// Frame is one decoded unit from a backend: a FLAC block, a run of Vorbis
// PCM, a slice of WAV data or one ALAC packet.
//
// Samples are interleaved by channel. Integer formats fill Ints, float
// formats fill Floats. The slices belong to the backend and are only valid
// until the next call to NextFrame.
type Frame struct {
	Ints   []int32
	Floats []float64
	// Len is the number of per-channel frames (time instants) in the unit.
	Len int
}

// Samples returns the number of interleaved samples held by the frame.
func (f Frame) Samples() int {
	if f.Floats != nil {
		return len(f.Floats)
	}
	return len(f.Ints)
}

// Backend is the contract every codec adapter implements.
//
// A Backend is single-use: it decodes exactly one stream, from the position
// it was opened at to the end, and owns that stream until Close.
type Backend interface {
	// Description returns the stream metadata parsed at open time.
	Description() Description
	// NextFrame decodes the next unit. It returns io.EOF, and only io.EOF,
	// when the stream ended normally.
	NextFrame() (Frame, error)
	// Close releases the decoder and the underlying stream.
	Close() error
}
