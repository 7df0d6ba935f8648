// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// WAV format tags.
const (
	WAVFormatPCM        = 1
	WAVFormatFloat      = 3
	WAVFormatExtensible = 0xFFFE
)

// WAVSpec describes the fmt chunk of a generated WAV file.
type WAVSpec struct {
	SampleRate int
	Channels   int
	Bits       int
	// Format is the fmt chunk format tag. Zero means WAVFormatPCM.
	Format uint16
	// SubFormat is the tag carried in the sub-format GUID of an extensible
	// fmt chunk. Zero means WAVFormatPCM.
	SubFormat uint16
}

// subFormatGUIDTail follows the tag in every KSDATAFORMAT_SUBTYPE GUID.
var subFormatGUIDTail = []byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// WriteWAV writes a canonical header followed by data, which must already
// be in the on-disk sample layout. The header takes 44 bytes, or 68 for
// WAVFormatExtensible.
func WriteWAV(w io.Writer, spec WAVSpec, data []byte) error {
	format := spec.Format
	if format == 0 {
		format = WAVFormatPCM
	}
	blockAlign := uint16(spec.Channels * spec.Bits / 8)
	byteRate := uint32(spec.SampleRate) * uint32(blockAlign)
	dataSize := uint32(len(data))

	fmtBody := binary.LittleEndian.AppendUint16(nil, format)
	fmtBody = binary.LittleEndian.AppendUint16(fmtBody, uint16(spec.Channels))
	fmtBody = binary.LittleEndian.AppendUint32(fmtBody, uint32(spec.SampleRate))
	fmtBody = binary.LittleEndian.AppendUint32(fmtBody, byteRate)
	fmtBody = binary.LittleEndian.AppendUint16(fmtBody, blockAlign)
	fmtBody = binary.LittleEndian.AppendUint16(fmtBody, uint16(spec.Bits))
	if format == WAVFormatExtensible {
		sub := spec.SubFormat
		if sub == 0 {
			sub = WAVFormatPCM
		}
		// cbSize, valid bits, channel mask, then the sub-format GUID.
		fmtBody = binary.LittleEndian.AppendUint16(fmtBody, 22)
		fmtBody = binary.LittleEndian.AppendUint16(fmtBody, uint16(spec.Bits))
		fmtBody = binary.LittleEndian.AppendUint32(fmtBody, 0)
		fmtBody = binary.LittleEndian.AppendUint16(fmtBody, sub)
		fmtBody = append(fmtBody, subFormatGUIDTail...)
	}

	header := []byte("RIFF")
	header = binary.LittleEndian.AppendUint32(header, uint32(4+8+len(fmtBody)+8)+dataSize)
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(fmtBody)))
	header = append(header, fmtBody...)
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WAV returns a complete integer PCM WAV file. Samples are interleaved
// native values: unsigned for 8-bit, signed otherwise.
func WAV(spec WAVSpec, samples []int32) []byte {
	bps := spec.Bits / 8
	data := make([]byte, len(samples)*bps)
	for i, s := range samples {
		b := data[i*bps : (i+1)*bps]
		switch bps {
		case 1:
			b[0] = byte(s)
		case 2:
			binary.LittleEndian.PutUint16(b, uint16(s))
		case 3:
			b[0], b[1], b[2] = byte(s), byte(s>>8), byte(s>>16)
		default:
			binary.LittleEndian.PutUint32(b, uint32(s))
		}
	}

	buf := new(bytes.Buffer)
	_ = WriteWAV(buf, spec, data)
	return buf.Bytes()
}

// WAVFloat returns a complete 32-bit IEEE float WAV file.
func WAVFloat(sampleRate, channels int, samples []float32) []byte {
	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}

	buf := new(bytes.Buffer)
	_ = WriteWAV(buf, WAVSpec{
		SampleRate: sampleRate,
		Channels:   channels,
		Bits:       32,
		Format:     WAVFormatFloat,
	}, data)
	return buf.Bytes()
}
