// SPDX-License-Identifier: EPL-2.0

package caf

import (
	"fmt"
	"io"
)

// PacketReader yields the packets of the data chunk in order.
type PacketReader struct {
	r     io.Reader
	sizes []int64
	// fixed is the constant packet size, zero for variable sizes.
	fixed int64
	next  int
	left  int64 // packet bytes not read yet
	buf   []byte
}

// NewPacketReader positions r at the first packet of f.
func NewPacketReader(r io.ReadSeeker, f *File) (*PacketReader, error) {
	if _, err := r.Seek(f.dataOffset, io.SeekStart); err != nil {
		return nil, err
	}
	p := &PacketReader{
		r:     r,
		fixed: int64(f.Desc.BytesPerPacket),
		left:  f.dataSize,
	}
	if p.fixed == 0 {
		p.sizes = f.Table.Sizes
	}
	return p, nil
}

// Next returns the next packet. The slice is reused by the following call.
// It returns io.EOF after the last packet and io.ErrUnexpectedEOF when the
// data chunk holds fewer bytes than the packet sizes require.
func (p *PacketReader) Next() ([]byte, error) {
	var n int64
	if p.fixed > 0 {
		if p.left == 0 {
			return nil, io.EOF
		}
		n = p.fixed
	} else {
		if p.next == len(p.sizes) {
			return nil, io.EOF
		}
		n = p.sizes[p.next]
	}
	if n > p.left {
		return nil, fmt.Errorf("packet %d needs %d bytes, %d left: %w", p.next, n, p.left, io.ErrUnexpectedEOF)
	}

	if int64(cap(p.buf)) < n {
		p.buf = make([]byte, n)
	}
	p.buf = p.buf[:n]
	if _, err := io.ReadFull(p.r, p.buf); err != nil {
		return nil, noEOF(err)
	}
	p.next++
	p.left -= n
	return p.buf, nil
}
