// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audread/audio"
)

const (
	opOpen = "open"
	opRead = "read"

	// DefaultFrameSize is the number of per-channel frames per pull.
	DefaultFrameSize = 4096

	pageHeaderSize = 27
	maxPageSize    = pageHeaderSize + 255 + 255*255
	flagEOS        = 0x04
)

var (
	capturePattern = []byte("OggS")
	vorbisIdent    = []byte("\x01vorbis")
)

// oggReader is the part of oggvorbis.Reader the backend uses, so tests can
// script it.
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type backend struct {
	s    *audio.Stream
	dec  oggReader
	desc audio.Description

	buf    []float32
	floats []float64

	// truncated is set when the source lacks a final end-of-stream page,
	// so the reader's plain io.EOF must not pass for a normal end.
	truncated bool
	// pending holds an error that arrived together with samples; it is
	// reported on the next pull.
	pending error
	err     error
}

func (b *backend) Description() audio.Description { return b.desc }

func (b *backend) Close() error { return b.s.Close() }

func (b *backend) NextFrame() (audio.Frame, error) {
	if b.err != nil {
		return audio.Frame{}, b.err
	}
	if b.pending != nil {
		return audio.Frame{}, b.finish(b.pending)
	}

	n, err := b.dec.Read(b.buf)
	n -= n % b.desc.Channels
	if n == 0 {
		if err == nil {
			return b.NextFrame()
		}
		return audio.Frame{}, b.finish(err)
	}
	b.pending = err

	b.floats = b.floats[:n]
	for i, v := range b.buf[:n] {
		b.floats[i] = float64(v)
	}
	return audio.Frame{Floats: b.floats, Len: n / b.desc.Channels}, nil
}

// finish records the terminal state for err.
func (b *backend) finish(err error) error {
	switch {
	case err != io.EOF:
		b.err = translate(b.s, opRead, err)
	case b.s.Err() != nil:
		b.err = translate(b.s, opRead, b.s.Err())
	case b.truncated:
		b.err = translate(b.s, opRead, fmt.Errorf("%w: %w", ErrMissingEndOfStream, io.ErrUnexpectedEOF))
	default:
		b.err = io.EOF
	}
	return b.err
}

// Decoder opens Ogg Vorbis streams.
type Decoder struct {
	// FrameSize is the number of per-channel frames returned per pull.
	// Zero means DefaultFrameSize.
	FrameSize int
}

func (d Decoder) Decode(s *audio.Stream) (audio.Backend, error) {
	b, err := d.open(s)
	if err != nil {
		return nil, translate(s, opOpen, err)
	}
	return b, nil
}

func (d Decoder) open(s *audio.Stream) (*backend, error) {
	if err := checkIdentification(s); err != nil {
		return nil, err
	}
	complete, err := endsWithEOS(s)
	if err != nil {
		return nil, err
	}

	dec, err := oggvorbis.NewReader(s)
	if err == io.EOF && !complete {
		// The source ran out before the first audio packet.
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return d.newBackend(s, dec, !complete)
}

func (d Decoder) newBackend(s *audio.Stream, dec oggReader, truncated bool) (*backend, error) {
	desc := audio.Description{
		Format:       audio.FormatOggVorbis,
		SampleRate:   dec.SampleRate(),
		Channels:     dec.Channels(),
		SampleFormat: audio.SampleFormat{Encoding: audio.Float, Bits: 32},
		Frames:       dec.Length(),
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if desc.Frames <= 0 {
		desc.Frames = -1
	}

	frameSize := d.FrameSize
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	n := frameSize * desc.Channels
	return &backend{
		s:         s,
		dec:       dec,
		desc:      desc,
		buf:       make([]float32, n),
		floats:    make([]float64, n),
		truncated: truncated,
	}, nil
}

// checkIdentification verifies that the first page starts a Vorbis stream
// and rewinds s.
func checkIdentification(s *audio.Stream) error {
	header := make([]byte, pageHeaderSize)
	if _, err := io.ReadFull(s, header); err != nil {
		return notVorbis(err)
	}
	if !bytes.Equal(header[:4], capturePattern) {
		return ErrNotOggVorbis
	}
	rest := make([]byte, int(header[26])+len(vorbisIdent))
	if _, err := io.ReadFull(s, rest); err != nil {
		return notVorbis(err)
	}
	if !bytes.Equal(rest[header[26]:], vorbisIdent) {
		return fmt.Errorf("%w: first packet is not a Vorbis identification header", ErrNotOggVorbis)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func notVorbis(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrNotOggVorbis
	}
	return fmt.Errorf("%w", err)
}

// endsWithEOS reports whether the last bytes of s form a complete page
// carrying the end-of-stream flag. s is rewound.
func endsWithEOS(s *audio.Stream) (bool, error) {
	size, err := s.Size()
	if err != nil {
		return false, fmt.Errorf("%w", err)
	}
	n := min(size, maxPageSize)
	if _, err := s.Seek(size-n, io.SeekStart); err != nil {
		return false, fmt.Errorf("%w", err)
	}
	tail := make([]byte, n)
	if _, err := io.ReadFull(s, tail); err != nil {
		return false, fmt.Errorf("%w", err)
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return false, fmt.Errorf("%w", err)
	}
	return lastPageIsEOS(tail), nil
}

// lastPageIsEOS searches tail backwards for a page ending exactly at the
// end of tail and reports its end-of-stream flag.
func lastPageIsEOS(tail []byte) bool {
	for i := len(tail) - pageHeaderSize; i >= 0; i-- {
		if !bytes.Equal(tail[i:i+4], capturePattern) || tail[i+4] != 0 {
			continue
		}
		segments := int(tail[i+26])
		table := i + pageHeaderSize
		if table+segments > len(tail) {
			continue
		}
		end := table + segments
		for _, v := range tail[table : table+segments] {
			end += int(v)
		}
		if end == len(tail) {
			return tail[i+5]&flagEOS != 0
		}
	}
	return false
}
