// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"

	"github.com/ik5/audread/audio"
)

const (
	opOpen = "open"
	opRead = "read"

	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE

	fmtSize           = 16
	extensibleFmtSize = 40
	chunkHeaderSize   = 8

	// DefaultFrameSize is the number of per-channel frames per pull.
	DefaultFrameSize = 4096

	// maxPullSamples bounds the per-pull buffers whatever the header claims.
	maxPullSamples = 1 << 16
)

// subFormatSuffix is the common tail of the KSDATAFORMAT_SUBTYPE GUIDs.
// The first two bytes of a sub-format GUID hold the plain format tag.
var subFormatSuffix = []byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// fullReader turns short reads into full ones. go-audio/wav decodes each
// buffer it reads independently, so a read ending mid-sample would lose
// the partial sample.
type fullReader struct {
	io.ReadSeeker
}

func (r fullReader) Read(p []byte) (int, error) {
	n, err := io.ReadFull(r.ReadSeeker, p)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

type backend struct {
	s    *audio.Stream
	dec  *wav.Decoder
	desc audio.Description

	pcm     *goaudio.IntBuffer
	raw     []int
	ints    []int32
	floats  []float64
	pending int // samples carried over from the previous pull

	bytesPerSample int
	consumed       int64 // samples decoded so far
	err            error
}

func (b *backend) Description() audio.Description { return b.desc }

func (b *backend) Close() error { return b.s.Close() }

func (b *backend) NextFrame() (audio.Frame, error) {
	if b.err != nil {
		return audio.Frame{}, b.err
	}

	ch := b.desc.Channels
	// Move the partial trailing sample frame of the last pull to the front.
	if b.pending > 0 {
		copy(b.ints, b.ints[len(b.ints)-b.pending:])
	}
	b.ints = b.ints[:cap(b.ints)]

	b.pcm.Data = b.raw[:len(b.ints)-b.pending]
	n, err := b.dec.PCMBuffer(b.pcm)
	if err != nil {
		b.err = translate(b.s, opRead, err)
		return audio.Frame{}, b.err
	}
	if n == 0 {
		return audio.Frame{}, b.finish()
	}
	b.consumed += int64(n)

	for i, v := range b.pcm.Data[:n] {
		b.ints[b.pending+i] = int32(v)
	}
	total := b.pending + n
	frames := total / ch
	b.pending = total % ch
	b.ints = b.ints[:total]

	if frames == 0 {
		return b.NextFrame()
	}

	whole := b.ints[:frames*ch]
	if b.desc.SampleFormat.IsFloat() {
		b.floats = b.floats[:len(whole)]
		for i, v := range whole {
			b.floats[i] = float64(math.Float32frombits(uint32(v)))
		}
		return audio.Frame{Floats: b.floats, Len: frames}, nil
	}
	return audio.Frame{Ints: whole, Len: frames}, nil
}

// finish decides between a normal end and a truncated data chunk.
func (b *backend) finish() error {
	if err := b.s.Err(); err != nil {
		b.err = translate(b.s, opRead, err)
		return b.err
	}
	missing := b.dec.PCMLen() - b.consumed*int64(b.bytesPerSample)
	// One byte short is the RIFF pad byte of an odd-sized chunk.
	if b.pending > 0 || missing > 1 {
		b.err = translate(b.s, opRead, fmt.Errorf("data chunk ends %d bytes early: %w", missing, io.ErrUnexpectedEOF))
		return b.err
	}
	return io.EOF
}

// Decoder opens RIFF/WAVE streams.
type Decoder struct {
	// FrameSize is the number of per-channel frames returned per pull.
	// Zero means DefaultFrameSize. Pulls of very wide streams are smaller.
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
	header := make([]byte, 12)
	if _, err := io.ReadFull(s, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrNotWavFile
		}
		return nil, fmt.Errorf("%w", err)
	}
	if !bytes.Equal(header[:4], []byte("RIFF")) || !bytes.Equal(header[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}
	size, err := s.Size()
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	// The RIFF size covers everything after its own 8-byte header.
	truncated := int64(binary.LittleEndian.Uint32(header[4:8]))+chunkHeaderSize > size

	var tag uint16
	body, err := readFmtChunk(s, size)
	if err == nil {
		tag, err = formatTag(body)
	}
	if err != nil {
		if truncated && (errors.Is(err, ErrMissingFormatChunk) || errors.Is(err, ErrInvalidHeader)) {
			return nil, fmt.Errorf("fmt chunk cut short (%v): %w", err, io.ErrUnexpectedEOF)
		}
		return nil, err
	}

	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	dec := wav.NewDecoder(fullReader{s})
	fwdErr := dec.FwdToPCM()
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if dec.NumChans == 0 {
		return nil, ErrMissingFormatChunk
	}
	if fwdErr != nil || dec.Err() != nil || dec.PCMChunk == nil {
		if truncated {
			return nil, fmt.Errorf("stream ends before the data chunk: %w", io.ErrUnexpectedEOF)
		}
		return nil, ErrMissingDataChunk
	}
	if err := checkDataHeader(s, dec.PCMLen()); err != nil {
		return nil, err
	}

	sf, err := sampleFormat(tag, int(dec.BitDepth))
	if err != nil {
		return nil, err
	}

	desc := audio.Description{
		Format:       audio.FormatWAV,
		SampleRate:   int(dec.SampleRate),
		Channels:     int(dec.NumChans),
		SampleFormat: sf,
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	bps := int(dec.BitDepth) / 8
	desc.Frames = dec.PCMLen() / int64(bps*desc.Channels)

	n := pullFrames(d.FrameSize, desc.Channels, desc.Frames) * desc.Channels

	b := &backend{
		s:              s,
		dec:            dec,
		desc:           desc,
		pcm:            &goaudio.IntBuffer{Format: dec.Format(), SourceBitDepth: int(dec.BitDepth)},
		raw:            make([]int, n),
		ints:           make([]int32, n),
		bytesPerSample: bps,
	}
	if sf.IsFloat() {
		b.floats = make([]float64, n)
	}
	return b, nil
}

// pullFrames sizes the per-pull buffers: the requested frame size, capped
// by maxPullSamples and by the frames the data chunk declares, and never
// less than one frame.
func pullFrames(frameSize, channels int, declared int64) int {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	n := min(frameSize, maxPullSamples/channels)
	if declared < int64(n) {
		n = int(declared)
	}
	return max(n, 1)
}

// readFmtChunk walks the chunks of s up to the data chunk and returns the
// body of the fmt chunk. Every chunk before the data chunk must fit in s,
// since the wav decoder allocates fmt and LIST bodies at their declared
// size.
func readFmtChunk(s *audio.Stream, size int64) ([]byte, error) {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	p := riff.New(fullReader{s})
	if err := p.ParseHeaders(); err != nil {
		return nil, ErrNotWavFile
	}

	var body []byte
	for {
		ch, err := p.NextChunk()
		if err != nil {
			if err := s.Err(); err != nil {
				return nil, fmt.Errorf("%w", err)
			}
			break
		}
		if ch.ID == riff.DataFormatID {
			break
		}
		pos, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if int64(ch.Size) > size-pos {
			return nil, fmt.Errorf("%w: %q chunk of %d bytes at offset %d runs past the end", ErrInvalidHeader, ch.ID[:], ch.Size, pos)
		}

		if ch.ID == riff.FmtID && body == nil {
			body = make([]byte, ch.Size)
			if _, err := io.ReadFull(ch, body); err != nil {
				return nil, fmt.Errorf("%w", err)
			}
			continue
		}
		if _, err := s.Seek(pos+int64(ch.Size), io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}
	if body == nil {
		return nil, ErrMissingFormatChunk
	}
	return body, nil
}

// formatTag returns the format tag of a fmt chunk body, resolving
// WAVE_FORMAT_EXTENSIBLE to the tag of its sub-format.
func formatTag(body []byte) (uint16, error) {
	if len(body) < fmtSize {
		return 0, fmt.Errorf("%w: fmt chunk of %d bytes", ErrInvalidHeader, len(body))
	}
	tag := binary.LittleEndian.Uint16(body[0:2])
	if tag != formatExtensible {
		return tag, nil
	}
	if len(body) < extensibleFmtSize {
		return 0, fmt.Errorf("%w: extensible fmt chunk of %d bytes", ErrInvalidHeader, len(body))
	}
	guid := body[24:40]
	if !bytes.Equal(guid[2:], subFormatSuffix) {
		return 0, fmt.Errorf("%w: sub-format %x", ErrUnsupportedEncoding, guid)
	}
	return binary.LittleEndian.Uint16(guid[:2]), nil
}

// checkDataHeader makes sure the 8 bytes before the current position are
// the complete data chunk header. A stream cut inside the size field still
// lets the wav decoder find the chunk, with a size of zero.
func checkDataHeader(s *audio.Stream, pcmLen int64) error {
	payload, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if payload < chunkHeaderSize {
		return fmt.Errorf("data chunk header: %w", io.ErrUnexpectedEOF)
	}
	if _, err := s.Seek(payload-chunkHeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	h := make([]byte, chunkHeaderSize)
	if _, err := io.ReadFull(s, h); err != nil {
		return fmt.Errorf("data chunk header: %w", noEOF(err))
	}
	declared := int64(binary.LittleEndian.Uint32(h[4:]))
	// The wav decoder rounds odd sizes up to the pad byte.
	if !bytes.Equal(h[:4], riff.DataFormatID[:]) || declared+declared%2 != pcmLen {
		return fmt.Errorf("data chunk header cut short: %w", io.ErrUnexpectedEOF)
	}
	return nil
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func sampleFormat(tag uint16, bits int) (audio.SampleFormat, error) {
	switch tag {
	case formatPCM:
		switch bits {
		case 8:
			return audio.SampleFormat{Encoding: audio.Unsigned, Bits: 8}, nil
		case 16, 24, 32:
			return audio.SampleFormat{Encoding: audio.Signed, Bits: bits}, nil
		}
		return audio.SampleFormat{}, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedBitDepth, bits)
	case formatFloat:
		if bits == 32 {
			return audio.SampleFormat{Encoding: audio.Float, Bits: 32}, nil
		}
		return audio.SampleFormat{}, fmt.Errorf("%w: %d-bit float", ErrUnsupportedBitDepth, bits)
	default:
		return audio.SampleFormat{}, fmt.Errorf("%w: format tag %#x", ErrUnsupportedEncoding, tag)
	}
}
