// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"

	"github.com/ik5/audread/audio"
)

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrMissingFormatChunk  = errors.New("missing fmt chunk")
	ErrMissingDataChunk    = errors.New("missing data chunk")
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
	ErrInvalidHeader       = errors.New("invalid WAV header")
)

// translate maps an error leaving the decoder to the unified taxonomy. It is
// applied once, at the Decode and NextFrame boundary.
func translate(s *audio.Stream, op string, err error) error {
	var kind audio.Kind
	switch {
	case errors.Is(err, ErrNotWavFile):
		kind = audio.KindUnrecognizedFormat
	case errors.Is(err, ErrMissingFormatChunk),
		errors.Is(err, ErrMissingDataChunk),
		errors.Is(err, ErrInvalidHeader):
		kind = audio.KindMalformedHeader
	case errors.Is(err, ErrUnsupportedEncoding),
		errors.Is(err, ErrUnsupportedBitDepth):
		kind = audio.KindUnsupportedConfiguration
	default:
		kind = audio.Classify(s, err, op == opOpen)
	}
	return audio.NewError(kind, audio.FormatWAV, op, err)
}
