// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"

	"github.com/ik5/audread/audio"
)

var (
	ErrNotOggVorbis  = errors.New("not an Ogg Vorbis stream")
	ErrInvalidHeader = errors.New("invalid Vorbis identification header")
	// ErrMissingEndOfStream means the last complete page is not flagged as
	// the end of the logical stream.
	ErrMissingEndOfStream = errors.New("stream ends before its end-of-stream page")
)

// translate maps an error leaving the decoder to the unified taxonomy.
func translate(s *audio.Stream, op string, err error) error {
	var kind audio.Kind
	switch {
	case errors.Is(err, ErrNotOggVorbis):
		kind = audio.KindUnrecognizedFormat
	case errors.Is(err, ErrInvalidHeader):
		kind = audio.KindMalformedHeader
	case errors.Is(err, ErrMissingEndOfStream):
		kind = audio.KindIO
	default:
		kind = audio.Classify(s, err, op == opOpen)
	}
	return audio.NewError(kind, audio.FormatOggVorbis, op, err)
}
