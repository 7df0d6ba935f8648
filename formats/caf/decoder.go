// SPDX-License-Identifier: EPL-2.0

package caf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/llehouerou/alac"

	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/internal/caf"
)

const (
	opOpen = "open"
	opRead = "read"

	formatALAC = "alac"
)

// packetDecoder decodes one ALAC packet into interleaved little-endian PCM.
type packetDecoder interface {
	Decode([]byte) []byte
}

type packetSource interface {
	Next() ([]byte, error)
}

func newALAC(cfg alac.Config) (packetDecoder, error) {
	return alac.NewWithConfig(cfg)
}

type backend struct {
	s       *audio.Stream
	packets packetSource
	dec     packetDecoder
	desc    audio.Description

	bytesPerSample int
	ints           []int32
	// skip is the number of priming frames still to drop.
	skip int64
	// left is the number of valid frames still to deliver, -1 if unknown.
	left int64
	err  error
}

func (b *backend) Description() audio.Description { return b.desc }

func (b *backend) Close() error { return b.s.Close() }

func (b *backend) NextFrame() (audio.Frame, error) {
	for b.err == nil {
		if b.left == 0 {
			b.err = io.EOF
			break
		}
		pkt, err := b.packets.Next()
		if err == io.EOF {
			b.err = io.EOF
			break
		}
		if err != nil {
			b.err = translate(b.s, opRead, err)
			break
		}

		pcm, err := b.decode(pkt)
		if err != nil {
			b.err = translate(b.s, opRead, err)
			break
		}
		if n := b.convert(pcm); n > 0 {
			return audio.Frame{Ints: b.ints, Len: n}, nil
		}
	}
	return audio.Frame{}, b.err
}

// decode runs the codec on pkt. The codec indexes its bit reader without
// bounds checks and panics on corrupt input.
func (b *backend) decode(pkt []byte) (pcm []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			pcm, err = nil, fmt.Errorf("%w: %v", ErrCorruptPacket, r)
		}
	}()

	pcm = b.dec.Decode(pkt)
	frameBytes := b.bytesPerSample * b.desc.Channels
	if len(pcm) == 0 || len(pcm)%frameBytes != 0 {
		return nil, fmt.Errorf("%w: %d output bytes", ErrCorruptPacket, len(pcm))
	}
	return pcm, nil
}

// convert unpacks pcm into b.ints, dropping priming frames and frames past
// the valid count. It returns the number of frames kept.
func (b *backend) convert(pcm []byte) int {
	ch := b.desc.Channels
	frameBytes := b.bytesPerSample * ch
	frames := int64(len(pcm) / frameBytes)

	drop := min(b.skip, frames)
	b.skip -= drop
	pcm = pcm[drop*int64(frameBytes):]
	frames -= drop
	if b.left >= 0 {
		frames = min(frames, b.left)
		b.left -= frames
	}

	n := int(frames) * ch
	if cap(b.ints) < n {
		b.ints = make([]int32, n)
	}
	b.ints = b.ints[:n]
	for i := range b.ints {
		p := pcm[i*b.bytesPerSample:]
		if b.bytesPerSample == 2 {
			b.ints[i] = int32(int16(binary.LittleEndian.Uint16(p)))
		} else {
			b.ints[i] = goaudio.Int24LETo32(p)
		}
	}
	return int(frames)
}

// Decoder opens Apple Lossless streams in a CAF container.
type Decoder struct {
	newDecoder func(alac.Config) (packetDecoder, error)
}

func (d Decoder) Decode(s *audio.Stream) (audio.Backend, error) {
	b, err := d.open(s)
	if err != nil {
		return nil, translate(s, opOpen, err)
	}
	return b, nil
}

func (d Decoder) open(s *audio.Stream) (*backend, error) {
	f, err := caf.Parse(s)
	if err != nil {
		return nil, err
	}
	if f.Desc.FormatID != formatALAC {
		return nil, fmt.Errorf("%w: format %q", ErrNotALAC, f.Desc.FormatID)
	}
	if f.Cookie == nil {
		return nil, ErrMissingCookie
	}
	c, err := parseCookie(f.Cookie)
	if err != nil {
		return nil, err
	}
	if uint32(c.NumChannels) != f.Desc.ChannelsPerFrame || c.FrameLength != f.Desc.FramesPerPacket {
		return nil, fmt.Errorf("%w: cookie says %d channels and %d frames per packet, desc says %d and %d",
			ErrInvalidCookie, c.NumChannels, c.FrameLength, f.Desc.ChannelsPerFrame, f.Desc.FramesPerPacket)
	}
	if err := c.check(); err != nil {
		return nil, err
	}

	desc := audio.Description{
		Format:       audio.FormatCAFALAC,
		SampleRate:   int(math.Round(f.Desc.SampleRate)),
		Channels:     int(c.NumChannels),
		SampleFormat: audio.SampleFormat{Encoding: audio.Signed, Bits: int(c.BitDepth)},
		Frames:       -1,
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", caf.ErrInvalidChunk, err)
	}
	var priming int64
	if t := f.Table; t != nil && (t.ValidFrames > 0 || t.Packets == 0) {
		desc.Frames = t.ValidFrames
		priming = int64(t.PrimingFrames)
	}

	packets, err := caf.NewPacketReader(s, f)
	if err != nil {
		return nil, err
	}

	newDecoder := d.newDecoder
	if newDecoder == nil {
		newDecoder = newALAC
	}
	dec, err := newDecoder(alac.Config{
		SampleRate:  desc.SampleRate,
		SampleSize:  int(c.BitDepth),
		NumChannels: int(c.NumChannels),
		FrameSize:   int(c.FrameLength),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedCookie, err)
	}

	return &backend{
		s:              s,
		packets:        packets,
		dec:            dec,
		desc:           desc,
		bytesPerSample: int(c.BitDepth) / 8,
		skip:           priming,
		left:           desc.Frames,
	}, nil
}
