// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"strings"
)

// Kind classifies every error that crosses the public API.
type Kind int

const (
	// KindUnrecognizedFormat means no signature matched the stream.
	KindUnrecognizedFormat Kind = iota + 1
	// KindMalformedHeader means headers or metadata failed validation.
	KindMalformedHeader
	// KindUnsupportedConfiguration means the stream is well formed but uses
	// a layout the backend cannot translate.
	KindUnsupportedConfiguration
	// KindIO means reading or seeking the underlying stream failed, or the
	// stream ended before the container said it would.
	KindIO
	// KindDecode means the codec reported a bitstream error mid-stream.
	KindDecode
	// KindExhausted is the terminal end-of-stream signal. It is not a
	// failure.
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindUnrecognizedFormat:
		return "unrecognized format"
	case KindMalformedHeader:
		return "malformed header"
	case KindUnsupportedConfiguration:
		return "unsupported configuration"
	case KindIO:
		return "i/o failure"
	case KindDecode:
		return "decode failure"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown error"
	}
}

// Error is the only error type returned by the public API.
type Error struct {
	Kind   Kind
	Format Format
	// Op is the operation that failed, e.g. "open" or "read".
	Op string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("audio: ")
	if e.Format != FormatUnknown {
		b.WriteString(strings.ToLower(e.Format.String()))
		b.WriteString(": ")
	}
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels (an *Error without a cause) against any error
// of the same kind. ErrExhausted also matches io.EOF so that loops written
// against io.Reader conventions keep working.
func (e *Error) Is(target error) bool {
	if target == io.EOF {
		return e.Kind == KindExhausted
	}
	t, ok := target.(*Error)
	if !ok || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels, for use with errors.Is.
var (
	ErrUnrecognizedFormat       = &Error{Kind: KindUnrecognizedFormat}
	ErrMalformedHeader          = &Error{Kind: KindMalformedHeader}
	ErrUnsupportedConfiguration = &Error{Kind: KindUnsupportedConfiguration}
	ErrIO                       = &Error{Kind: KindIO}
	ErrDecode                   = &Error{Kind: KindDecode}
	ErrExhausted                = &Error{Kind: KindExhausted}

	// ErrClosed is returned by every pull on a closed reader.
	ErrClosed = &Error{Kind: KindIO, Op: "read", Err: errors.New("reader is closed")}
)

// Structural validation failures reported by Description.Validate.
var (
	ErrInvalidSampleRate   = errors.New("invalid sample rate")
	ErrInvalidChannels     = errors.New("invalid channel count")
	ErrInvalidSampleFormat = errors.New("invalid sample format")
)

// NewError builds an *Error. A nil cause is allowed.
func NewError(kind Kind, format Format, op string, err error) *Error {
	return &Error{Kind: kind, Format: format, Op: op, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Classify maps a backend failure that has no adapter-specific meaning to a
// kind. Source failures recorded by the stream and premature ends are I/O
// failures; anything else is a header problem while opening and a decode
// problem once samples are flowing.
func Classify(s *Stream, err error, opening bool) Kind {
	if s != nil && s.Err() != nil {
		return KindIO
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return KindIO
	}
	if opening {
		return KindMalformedHeader
	}
	return KindDecode
}
