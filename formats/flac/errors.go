// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"

	"github.com/ik5/audread/audio"
)

var (
	ErrNotFlacFile         = errors.New("not a FLAC file")
	ErrInvalidStreamInfo   = errors.New("invalid FLAC stream info")
	ErrUnsupportedBitDepth = errors.New("unsupported FLAC bit depth")
	ErrChannelMismatch     = errors.New("FLAC frame channel count differs from stream info")
)

// translate maps an error leaving the decoder to the unified taxonomy.
func translate(s *audio.Stream, op string, err error) error {
	var kind audio.Kind
	switch {
	case errors.Is(err, ErrNotFlacFile):
		kind = audio.KindUnrecognizedFormat
	case errors.Is(err, ErrInvalidStreamInfo):
		kind = audio.KindMalformedHeader
	case errors.Is(err, ErrUnsupportedBitDepth):
		kind = audio.KindUnsupportedConfiguration
	case errors.Is(err, ErrChannelMismatch):
		kind = audio.KindDecode
	default:
		kind = audio.Classify(s, err, op == opOpen)
	}
	return audio.NewError(kind, audio.FormatFLAC, op, err)
}
