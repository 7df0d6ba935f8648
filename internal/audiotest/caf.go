// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math"
)

// CAFSpec describes a generated CAF file carrying ALAC packets.
type CAFSpec struct {
	SampleRate      int
	Channels        int
	Bits            int
	FramesPerPacket int
	// ValidFrames is written to the packet table. Zero means
	// FramesPerPacket * number of packets.
	ValidFrames int64
	// PrimingFrames is written to the packet table.
	PrimingFrames int
	// FormatID defaults to "alac".
	FormatID string
	// NoCookie omits the kuki chunk.
	NoCookie bool
	// WrapCookie wraps the ALAC config in frma/alac atoms, as iTunes does.
	WrapCookie bool
	// NoPacketTable omits the pakt chunk.
	NoPacketTable bool
	// FreeChunk inserts a free chunk before the data chunk.
	FreeChunk bool
	// OpenData writes the data chunk size as -1 (extends to end of file).
	OpenData bool
}

// ALACCookie returns the 24-byte ALACSpecificConfig for the given layout.
func ALACCookie(framesPerPacket, bits, channels, sampleRate int) []byte {
	c := make([]byte, 24)
	binary.BigEndian.PutUint32(c[0:4], uint32(framesPerPacket))
	c[4] = 0 // compatible version
	c[5] = byte(bits)
	c[6] = 40 // pb
	c[7] = 10 // mb
	c[8] = 14 // kb
	c[9] = byte(channels)
	binary.BigEndian.PutUint16(c[10:12], 255)
	binary.BigEndian.PutUint32(c[12:16], 0)
	binary.BigEndian.PutUint32(c[16:20], 0)
	binary.BigEndian.PutUint32(c[20:24], uint32(sampleRate))
	return c
}

// CAF returns a CAF file with a desc, kuki, pakt and data chunk holding
// packets verbatim.
func CAF(spec CAFSpec, packets [][]byte) []byte {
	formatID := spec.FormatID
	if formatID == "" {
		formatID = "alac"
	}

	out := []byte("caff")
	out = binary.BigEndian.AppendUint16(out, 1)
	out = binary.BigEndian.AppendUint16(out, 0)

	desc := make([]byte, 32)
	binary.BigEndian.PutUint64(desc[0:8], math.Float64bits(float64(spec.SampleRate)))
	copy(desc[8:12], formatID)
	binary.BigEndian.PutUint32(desc[12:16], alacFlags(spec.Bits))
	binary.BigEndian.PutUint32(desc[16:20], 0) // variable bytes per packet
	binary.BigEndian.PutUint32(desc[20:24], uint32(spec.FramesPerPacket))
	binary.BigEndian.PutUint32(desc[24:28], uint32(spec.Channels))
	binary.BigEndian.PutUint32(desc[28:32], 0)
	out = appendChunk(out, "desc", desc)

	if !spec.NoCookie {
		cookie := ALACCookie(spec.FramesPerPacket, spec.Bits, spec.Channels, spec.SampleRate)
		if spec.WrapCookie {
			var wrapped []byte
			wrapped = binary.BigEndian.AppendUint32(wrapped, 12)
			wrapped = append(wrapped, "frma"...)
			wrapped = append(wrapped, "alac"...)
			wrapped = binary.BigEndian.AppendUint32(wrapped, 36)
			wrapped = append(wrapped, "alac"...)
			wrapped = binary.BigEndian.AppendUint32(wrapped, 0)
			cookie = append(wrapped, cookie...)
		}
		out = appendChunk(out, "kuki", cookie)
	}

	if !spec.NoPacketTable {
		valid := spec.ValidFrames
		if valid == 0 {
			valid = int64(spec.FramesPerPacket*len(packets) - spec.PrimingFrames)
		}
		var pakt []byte
		pakt = binary.BigEndian.AppendUint64(pakt, uint64(len(packets)))
		pakt = binary.BigEndian.AppendUint64(pakt, uint64(valid))
		pakt = binary.BigEndian.AppendUint32(pakt, uint32(spec.PrimingFrames))
		pakt = binary.BigEndian.AppendUint32(pakt,
			uint32(int64(spec.FramesPerPacket*len(packets)-spec.PrimingFrames)-valid))
		for _, p := range packets {
			pakt = AppendVarint(pakt, uint64(len(p)))
		}
		out = appendChunk(out, "pakt", pakt)
	}

	if spec.FreeChunk {
		out = appendChunk(out, "free", make([]byte, 16))
	}

	data := make([]byte, 4) // edit count
	for _, p := range packets {
		data = append(data, p...)
	}
	if spec.OpenData {
		out = append(out, "data"...)
		out = binary.BigEndian.AppendUint64(out, math.MaxUint64)
		return append(out, data...)
	}
	return appendChunk(out, "data", data)
}

// AppendVarint appends v in the CAF packet table encoding: 7 bits per
// byte, most significant group first, high bit set on all but the last.
func AppendVarint(out []byte, v uint64) []byte {
	var groups [10]byte
	n := 0
	for {
		groups[n] = byte(v & 0x7F)
		n++
		v >>= 7
		if v == 0 {
			break
		}
	}
	for i := n - 1; i > 0; i-- {
		out = append(out, groups[i]|0x80)
	}
	return append(out, groups[0])
}

func appendChunk(out []byte, typ string, body []byte) []byte {
	out = append(out, typ...)
	out = binary.BigEndian.AppendUint64(out, uint64(len(body)))
	return append(out, body...)
}

// alacFlags is the desc format flags value Apple writes for a source depth.
func alacFlags(bits int) uint32 {
	switch bits {
	case 16:
		return 1
	case 20:
		return 2
	case 24:
		return 3
	case 32:
		return 4
	default:
		return 0
	}
}

// ALACPacket encodes one uncompressed 16-bit ALAC frame (escape mode)
// holding samples, interleaved when channels is 2.
func ALACPacket(channels int, samples []int32) []byte {
	var w bitWriter
	w.write(uint64(channels-1), 3) // element: 0 mono, 1 stereo pair
	w.write(0, 4)                  // element instance tag
	w.write(0, 12)                 // unused
	w.write(1, 1)                  // sample count present
	w.write(0, 2)                  // no shifted bytes
	w.write(1, 1)                  // not compressed
	w.write(uint64(len(samples)/channels), 32)
	for _, v := range samples {
		w.write(uint64(uint16(int16(v))), 16)
	}
	w.write(7, 3) // end element
	w.flush()
	// Trailing slack for decoders that read ahead.
	return append(w.buf, 0, 0, 0, 0)
}

type bitWriter struct {
	buf  []byte
	acc  uint64
	bits int
}

func (w *bitWriter) write(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | (v>>i)&1
		w.bits++
		if w.bits == 8 {
			w.buf = append(w.buf, byte(w.acc))
			w.acc, w.bits = 0, 0
		}
	}
}

func (w *bitWriter) flush() {
	if w.bits > 0 {
		w.buf = append(w.buf, byte(w.acc<<(8-w.bits)))
		w.acc, w.bits = 0, 0
	}
}
