// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/ik5/audread/audio"
)

const (
	opOpen = "open"
	opRead = "read"
)

// frameParser is the part of flac.Stream used by the backend, to allow
// testing.
type frameParser interface {
	ParseNext() (*frameData, error)
	Close() error
}

// frameData is one decoded FLAC frame: per-channel samples and the frame's
// bit depth.
type frameData struct {
	channels [][]int32
	bits     int
}

// streamParser adapts *flac.Stream to frameParser.
type streamParser struct {
	stream *flac.Stream
	frame  frameData
}

func (p *streamParser) ParseNext() (*frameData, error) {
	f, err := p.stream.ParseNext()
	if err != nil {
		return nil, err
	}
	p.frame.channels = p.frame.channels[:0]
	for _, sub := range f.Subframes {
		p.frame.channels = append(p.frame.channels, sub.Samples)
	}
	p.frame.bits = int(f.BitsPerSample)
	return &p.frame, nil
}

func (p *streamParser) Close() error { return p.stream.Close() }

type backend struct {
	s      *audio.Stream
	parser frameParser
	desc   audio.Description

	buf      []int32
	produced int64
	err      error
}

func (b *backend) Description() audio.Description { return b.desc }

func (b *backend) Close() error {
	err := b.parser.Close()
	if cerr := b.s.Close(); err == nil {
		err = cerr
	}
	return err
}

func (b *backend) NextFrame() (audio.Frame, error) {
	if b.err != nil {
		return audio.Frame{}, b.err
	}

	f, err := b.parser.ParseNext()
	if err == io.EOF {
		return audio.Frame{}, b.finish()
	}
	if err != nil {
		b.err = translate(b.s, opRead, err)
		return audio.Frame{}, b.err
	}

	ch := b.desc.Channels
	if len(f.channels) != ch {
		b.err = translate(b.s, opRead, fmt.Errorf("%w: %d, want %d", ErrChannelMismatch, len(f.channels), ch))
		return audio.Frame{}, b.err
	}

	n := len(f.channels[0])
	if cap(b.buf) < n*ch {
		b.buf = make([]int32, n*ch)
	}
	b.buf = b.buf[:n*ch]

	// A frame may declare a narrower depth than STREAMINFO; scale it up so
	// every sample has the width of the description.
	shift := b.desc.SampleFormat.Bits - f.bits
	for c, samples := range f.channels {
		for i, v := range samples {
			if shift > 0 {
				v <<= shift
			}
			b.buf[i*ch+c] = v
		}
	}
	b.produced += int64(n)

	return audio.Frame{Ints: b.buf, Len: n}, nil
}

// finish turns a clean EOF into a truncation error when STREAMINFO
// promised more samples.
func (b *backend) finish() error {
	if err := b.s.Err(); err != nil {
		b.err = translate(b.s, opRead, err)
		return b.err
	}
	if b.desc.Frames > 0 && b.produced < b.desc.Frames {
		b.err = translate(b.s, opRead, fmt.Errorf("stream ends after %d of %d samples: %w",
			b.produced, b.desc.Frames, io.ErrUnexpectedEOF))
		return b.err
	}
	return io.EOF
}

// Decoder opens native FLAC streams.
type Decoder struct{}

func (Decoder) Decode(s *audio.Stream) (audio.Backend, error) {
	b, err := open(s)
	if err != nil {
		return nil, translate(s, opOpen, err)
	}
	return b, nil
}

func open(s *audio.Stream) (*backend, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(s, magic); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrNotFlacFile
		}
		return nil, fmt.Errorf("%w", err)
	}
	// mewkiz/flac skips a leading ID3v2 tag itself.
	if !bytes.Equal(magic, []byte("fLaC")) && !bytes.Equal(magic[:3], []byte("ID3")) {
		return nil, ErrNotFlacFile
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	stream, err := flac.New(s)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return newBackend(s, &streamParser{stream: stream}, stream.Info.SampleRate,
		int(stream.Info.NChannels), int(stream.Info.BitsPerSample), stream.Info.NSamples)
}

func newBackend(s *audio.Stream, p frameParser, rate uint32, channels, bits int, total uint64) (*backend, error) {
	desc := audio.Description{
		Format:       audio.FormatFLAC,
		SampleRate:   int(rate),
		Channels:     channels,
		SampleFormat: audio.SampleFormat{Encoding: audio.Signed, Bits: bits},
		Frames:       int64(total),
	}
	if bits < 4 || bits > 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStreamInfo, err)
	}
	if total == 0 {
		// STREAMINFO leaves the length unknown.
		desc.Frames = -1
	}

	return &backend{s: s, parser: p, desc: desc}, nil
}
