// SPDX-License-Identifier: EPL-2.0

package caf

import (
	"encoding/binary"
	"fmt"
)

const cookieSize = 24

// Rice coding parameters the decoder library is hard-wired to. Every
// encoder Apple ships writes these.
const (
	ricePB     = 40
	riceMB     = 10
	riceKB     = 14
	riceMaxRun = 255
)

// cookie is the ALACSpecificConfig carried in the kuki chunk.
type cookie struct {
	FrameLength       uint32
	CompatibleVersion uint8
	BitDepth          uint8
	PB, MB, KB        uint8
	NumChannels       uint8
	MaxRun            uint16
	MaxFrameBytes     uint32
	AvgBitRate        uint32
	SampleRate        uint32
}

// parseCookie decodes the ALACSpecificConfig, skipping the frma and alac
// atoms some writers wrap it in.
func parseCookie(b []byte) (cookie, error) {
	if len(b) >= 12 && string(b[4:8]) == "frma" {
		b = b[12:]
	}
	if len(b) >= 12 && string(b[4:8]) == "alac" {
		b = b[12:]
	}
	if len(b) < cookieSize {
		return cookie{}, fmt.Errorf("%w: %d bytes", ErrInvalidCookie, len(b))
	}

	c := cookie{
		FrameLength:       binary.BigEndian.Uint32(b[0:4]),
		CompatibleVersion: b[4],
		BitDepth:          b[5],
		PB:                b[6],
		MB:                b[7],
		KB:                b[8],
		NumChannels:       b[9],
		MaxRun:            binary.BigEndian.Uint16(b[10:12]),
		MaxFrameBytes:     binary.BigEndian.Uint32(b[12:16]),
		AvgBitRate:        binary.BigEndian.Uint32(b[16:20]),
		SampleRate:        binary.BigEndian.Uint32(b[20:24]),
	}
	if c.CompatibleVersion != 0 {
		return cookie{}, fmt.Errorf("%w: version %d", ErrUnsupportedCookie, c.CompatibleVersion)
	}
	if c.FrameLength == 0 || c.NumChannels == 0 {
		return cookie{}, fmt.Errorf("%w: %d frames, %d channels", ErrInvalidCookie, c.FrameLength, c.NumChannels)
	}
	return c, nil
}

// check reports whether the decoder library can handle c.
func (c cookie) check() error {
	switch c.BitDepth {
	case 16, 24:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, c.BitDepth)
	}
	if c.NumChannels > 2 {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, c.NumChannels)
	}
	if c.PB != ricePB || c.MB != riceMB || c.KB != riceKB || c.MaxRun != riceMaxRun {
		return fmt.Errorf("%w: pb=%d mb=%d kb=%d maxRun=%d", ErrUnsupportedCookie, c.PB, c.MB, c.KB, c.MaxRun)
	}
	return nil
}
