// SPDX-License-Identifier: EPL-2.0

package caf

import (
	"errors"

	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/internal/caf"
)

var (
	ErrNotALAC             = errors.New("CAF file does not carry ALAC")
	ErrMissingCookie       = errors.New("missing ALAC magic cookie")
	ErrInvalidCookie       = errors.New("invalid ALAC magic cookie")
	ErrUnsupportedBitDepth = errors.New("unsupported ALAC bit depth")
	ErrUnsupportedChannels = errors.New("unsupported ALAC channel count")
	ErrUnsupportedCookie   = errors.New("unsupported ALAC encoder parameters")
	ErrCorruptPacket       = errors.New("corrupt ALAC packet")
)

// translate maps an error leaving the decoder to the unified taxonomy.
func translate(s *audio.Stream, op string, err error) error {
	var kind audio.Kind
	switch {
	case errors.Is(err, caf.ErrNotCAF), errors.Is(err, ErrNotALAC):
		kind = audio.KindUnrecognizedFormat
	case errors.Is(err, caf.ErrMissingDescription),
		errors.Is(err, caf.ErrMissingData),
		errors.Is(err, caf.ErrInvalidChunk),
		errors.Is(err, caf.ErrInvalidPacketTable),
		errors.Is(err, ErrMissingCookie),
		errors.Is(err, ErrInvalidCookie):
		kind = audio.KindMalformedHeader
	case errors.Is(err, caf.ErrUnsupportedVersion),
		errors.Is(err, ErrUnsupportedBitDepth),
		errors.Is(err, ErrUnsupportedChannels),
		errors.Is(err, ErrUnsupportedCookie):
		kind = audio.KindUnsupportedConfiguration
	case errors.Is(err, ErrCorruptPacket):
		kind = audio.KindDecode
	default:
		kind = audio.Classify(s, err, op == opOpen)
	}
	return audio.NewError(kind, audio.FormatCAFALAC, op, err)
}
