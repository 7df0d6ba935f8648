// SPDX-License-Identifier: EPL-2.0

package caf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	ErrNotCAF             = errors.New("not a CAF file")
	ErrUnsupportedVersion = errors.New("unsupported CAF version")
	ErrMissingDescription = errors.New("first chunk is not an audio description")
	ErrMissingData        = errors.New("missing data chunk")
	ErrInvalidChunk       = errors.New("invalid CAF chunk")
	ErrInvalidPacketTable = errors.New("invalid packet table")
)

const (
	fileHeaderSize  = 8
	chunkHeaderSize = 12
	descSize        = 32
	paktHeaderSize  = 24
	editCountSize   = 4
)

// Description is the audio description (desc) chunk.
type Description struct {
	SampleRate       float64
	FormatID         string
	FormatFlags      uint32
	BytesPerPacket   uint32
	FramesPerPacket  uint32
	ChannelsPerFrame uint32
	BitsPerChannel   uint32
}

// PacketTable is the packet table (pakt) chunk.
type PacketTable struct {
	Packets         int64
	ValidFrames     int64
	PrimingFrames   int32
	RemainderFrames int32
	// Sizes holds the byte size of every packet. It is empty for streams
	// with a constant packet size.
	Sizes []int64
}

// File is the parsed chunk layout of a CAF file.
type File struct {
	Desc Description
	// Cookie is the body of the magic cookie (kuki) chunk, nil if absent.
	Cookie []byte
	// Table is nil when the file has no pakt chunk.
	Table *PacketTable

	// dataOffset is the offset of the first packet byte.
	dataOffset int64
	// dataSize is the number of packet bytes actually present.
	dataSize int64
}

// IsCAF reports whether header starts like a CAF file.
func IsCAF(header []byte) bool {
	return len(header) >= 4 && string(header[:4]) == "caff"
}

// PeekFormat returns the format ID of the desc chunk from the first bytes
// of a file. ok is false when header is too short or not a CAF file.
func PeekFormat(header []byte) (id string, ok bool) {
	const end = fileHeaderSize + chunkHeaderSize + 12
	if !IsCAF(header) || len(header) < end {
		return "", false
	}
	if string(header[8:12]) != "desc" {
		return "", false
	}
	return string(header[end-4 : end]), true
}

// Parse reads the chunk layout of r from its start. Samples are not read;
// use NewPacketReader for that. The read position of r is unspecified
// afterwards.
func Parse(r io.ReadSeeker) (*File, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	header := make([]byte, fileHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrNotCAF
		}
		return nil, err
	}
	if !IsCAF(header) {
		return nil, ErrNotCAF
	}
	if v := binary.BigEndian.Uint16(header[4:6]); v != 1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	f := &File{dataOffset: -1}
	pos := int64(fileHeaderSize)
	first := true
	for pos < size {
		typ, chunkSize, err := readChunkHeader(r)
		if err != nil {
			return nil, err
		}
		pos += chunkHeaderSize
		if first && typ != "desc" {
			return nil, ErrMissingDescription
		}
		first = false

		if chunkSize == -1 {
			if typ != "data" {
				return nil, fmt.Errorf("%w: %q has no size", ErrInvalidChunk, typ)
			}
			chunkSize = size - pos
		}
		if chunkSize < 0 {
			return nil, fmt.Errorf("%w: %q has size %d", ErrInvalidChunk, typ, chunkSize)
		}

		switch typ {
		case "desc":
			body, err := readBody(r, chunkSize, size-pos)
			if err != nil {
				return nil, err
			}
			if err := f.parseDesc(body); err != nil {
				return nil, err
			}
		case "kuki":
			body, err := readBody(r, chunkSize, size-pos)
			if err != nil {
				return nil, err
			}
			f.Cookie = body
		case "pakt":
			body, err := readBody(r, chunkSize, size-pos)
			if err != nil {
				return nil, err
			}
			if f.Table, err = parsePacketTable(body); err != nil {
				return nil, err
			}
		case "data":
			if chunkSize < editCountSize {
				return nil, fmt.Errorf("%w: data chunk of %d bytes", ErrInvalidChunk, chunkSize)
			}
			f.dataOffset = pos + editCountSize
			f.dataSize = min(chunkSize, size-pos) - editCountSize
			if _, err := r.Seek(pos+chunkSize, io.SeekStart); err != nil {
				return nil, err
			}
		default:
			// free, info, chan and everything else.
			if _, err := r.Seek(pos+chunkSize, io.SeekStart); err != nil {
				return nil, err
			}
		}
		pos += chunkSize
	}

	if first {
		return nil, ErrMissingDescription
	}
	if f.dataOffset < 0 {
		return nil, ErrMissingData
	}
	if f.Desc.BytesPerPacket == 0 && (f.Table == nil || int64(len(f.Table.Sizes)) != f.Table.Packets) {
		return nil, fmt.Errorf("%w: variable packet sizes need a size for every packet", ErrInvalidPacketTable)
	}
	return f, nil
}

func readChunkHeader(r io.Reader) (string, int64, error) {
	var h [chunkHeaderSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return "", 0, noEOF(err)
	}
	return string(h[:4]), int64(binary.BigEndian.Uint64(h[4:])), nil
}

// readBody reads a chunk body of n bytes when at least that many are left.
func readBody(r io.Reader, n, left int64) ([]byte, error) {
	if n > left {
		return nil, io.ErrUnexpectedEOF
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, noEOF(err)
	}
	return body, nil
}

func (f *File) parseDesc(b []byte) error {
	if len(b) < descSize {
		return fmt.Errorf("%w: desc chunk of %d bytes", ErrInvalidChunk, len(b))
	}
	f.Desc = Description{
		SampleRate:       math.Float64frombits(binary.BigEndian.Uint64(b[0:8])),
		FormatID:         string(b[8:12]),
		FormatFlags:      binary.BigEndian.Uint32(b[12:16]),
		BytesPerPacket:   binary.BigEndian.Uint32(b[16:20]),
		FramesPerPacket:  binary.BigEndian.Uint32(b[20:24]),
		ChannelsPerFrame: binary.BigEndian.Uint32(b[24:28]),
		BitsPerChannel:   binary.BigEndian.Uint32(b[28:32]),
	}
	return nil
}

func parsePacketTable(b []byte) (*PacketTable, error) {
	if len(b) < paktHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidPacketTable, len(b))
	}
	t := &PacketTable{
		Packets:         int64(binary.BigEndian.Uint64(b[0:8])),
		ValidFrames:     int64(binary.BigEndian.Uint64(b[8:16])),
		PrimingFrames:   int32(binary.BigEndian.Uint32(b[16:20])),
		RemainderFrames: int32(binary.BigEndian.Uint32(b[20:24])),
	}
	if t.Packets < 0 || t.ValidFrames < 0 || t.PrimingFrames < 0 || t.RemainderFrames < 0 {
		return nil, fmt.Errorf("%w: negative counts", ErrInvalidPacketTable)
	}

	rest := b[paktHeaderSize:]
	if len(rest) == 0 {
		return t, nil
	}
	// Every entry takes at least one byte.
	if t.Packets > int64(len(rest)) {
		return nil, fmt.Errorf("%w: %d packets in %d bytes", ErrInvalidPacketTable, t.Packets, len(rest))
	}
	t.Sizes = make([]int64, 0, t.Packets)
	for int64(len(t.Sizes)) < t.Packets {
		v, n, err := Varint(rest)
		if err != nil {
			return nil, err
		}
		t.Sizes = append(t.Sizes, v)
		rest = rest[n:]
	}
	return t, nil
}

// Varint decodes one packet table entry: 7 bits per byte, most
// significant group first, high bit set on every byte but the last. It
// returns the value and the number of bytes used.
func Varint(b []byte) (int64, int, error) {
	var v int64
	for i, c := range b {
		if i == 9 {
			break
		}
		v = v<<7 | int64(c&0x7F)
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: truncated or oversized size entry", ErrInvalidPacketTable)
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
