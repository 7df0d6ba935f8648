// SPDX-License-Identifier: EPL-2.0

package audread

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/formats/caf"
	"github.com/ik5/audread/formats/flac"
	"github.com/ik5/audread/formats/vorbis"
	"github.com/ik5/audread/formats/wav"
	"github.com/ik5/audread/sample"
)

const (
	opOpen  = "open"
	opRead  = "read"
	opClose = "close"
)

type decoder interface {
	Decode(s *audio.Stream) (audio.Backend, error)
}

// Reader reads the samples of one audio stream of any supported format.
//
// A Reader is not safe for concurrent use. It owns its stream: Close
// releases it, and so does a failed open.
type Reader struct {
	backend audio.Backend
	desc    audio.Description
	log     *slog.Logger

	// pending is the undelivered tail of the last frame, left over by
	// ReadSamples.
	pending audio.Frame
	pos     int64
	err     error
	closed  bool
}

// Open opens the file at path and prepares it for reading. The file
// extension is used as a fallback when no signature matches; see
// WithExtensionHint.
func Open(path string, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	o.hint = filepath.Ext(path)
	for _, opt := range opts {
		opt(o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, audio.NewError(audio.KindIO, audio.FormatUnknown, opOpen, err)
	}
	return newReader(f, f, o)
}

// NewReader prepares rs for reading, starting at its current position.
//
// Ownership of rs passes to the Reader: if rs implements io.Closer it is
// closed by Reader.Close, or before NewReader returns an error.
func NewReader(rs io.ReadSeeker, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	closer, _ := rs.(io.Closer)
	return newReader(rs, closer, o)
}

func newReader(rs io.ReadSeeker, closer io.Closer, o *options) (*Reader, error) {
	format, skip, err := identify(rs, o.hint)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}
	o.logger.Debug("identified stream", "format", format.String(), "skip", skip)

	if skip > 0 {
		if _, err := rs.Seek(skip, io.SeekCurrent); err != nil {
			closeQuietly(closer)
			return nil, audio.NewError(audio.KindIO, format, opOpen, err)
		}
	}
	s, err := audio.NewStream(rs, closer)
	if err != nil {
		closeQuietly(closer)
		return nil, audio.NewError(audio.KindIO, format, opOpen, err)
	}

	backend, err := decoderFor(format, o).Decode(s)
	if err != nil {
		s.Close()
		o.logger.Debug("open failed", "format", format.String(), "error", err)
		return nil, asError(audio.KindMalformedHeader, format, opOpen, err)
	}

	return fromBackend(backend, o), nil
}

func fromBackend(b audio.Backend, o *options) *Reader {
	desc := b.Description()
	o.logger.Debug("opened stream",
		"format", desc.Format.String(),
		"rate", desc.SampleRate,
		"channels", desc.Channels,
		"sample_format", desc.SampleFormat.String(),
		"frames", desc.Frames,
	)
	return &Reader{backend: b, desc: desc, log: o.logger}
}

func decoderFor(f audio.Format, o *options) decoder {
	switch f {
	case audio.FormatFLAC:
		return flac.Decoder{}
	case audio.FormatOggVorbis:
		return vorbis.Decoder{FrameSize: o.frameSize}
	case audio.FormatWAV:
		return wav.Decoder{FrameSize: o.frameSize}
	default:
		return caf.Decoder{}
	}
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// asError makes sure err is an *audio.Error, using kind k for foreign
// errors.
func asError(k audio.Kind, f audio.Format, op string, err error) error {
	var e *audio.Error
	if errors.As(err, &e) {
		return err
	}
	return audio.NewError(k, f, op, err)
}

// Format returns the format of the stream.
func (r *Reader) Format() audio.Format { return r.desc.Format }

// Description returns the stream metadata. It does not change during the
// life of the Reader.
func (r *Reader) Description() audio.Description { return r.desc }

// SampleRate returns the number of frames per second.
func (r *Reader) SampleRate() int { return r.desc.SampleRate }

// Channels returns the number of interleaved channels.
func (r *Reader) Channels() int { return r.desc.Channels }

// Position returns the number of per-channel frames delivered so far.
func (r *Reader) Position() int64 { return r.pos }

// NextFrame returns the next decoded unit in its native representation.
// The slices of the frame are only valid until the next pull.
//
// At the end of the stream NextFrame returns an error matching
// audio.ErrExhausted (and io.EOF), and keeps returning it. A failure is
// returned again on every following call. After Close it returns
// audio.ErrClosed.
func (r *Reader) NextFrame() (audio.Frame, error) {
	f, err := r.pull()
	if err != nil {
		return audio.Frame{}, err
	}
	r.pos += int64(f.Len)
	return f, nil
}

// pull returns the pending tail of the last frame, or the next frame of
// the backend.
func (r *Reader) pull() (audio.Frame, error) {
	if r.closed {
		return audio.Frame{}, audio.ErrClosed
	}
	if r.pending.Len > 0 {
		f := r.pending
		r.pending = audio.Frame{}
		return f, nil
	}
	if r.err != nil {
		return audio.Frame{}, r.err
	}

	f, err := r.backend.NextFrame()
	switch {
	case err == io.EOF:
		r.err = audio.NewError(audio.KindExhausted, r.desc.Format, opRead, nil)
		r.log.Debug("stream exhausted", "format", r.desc.Format.String(), "frames", r.pos)
		return audio.Frame{}, r.err
	case err != nil:
		r.err = asError(audio.KindDecode, r.desc.Format, opRead, err)
		return audio.Frame{}, r.err
	}
	return f, nil
}

// ReadSamples fills dst with interleaved samples scaled to [-1, 1] and
// returns how many it wrote. It writes whole frames only, so dst must
// hold at least Channels() samples; a shorter dst reads nothing.
//
// At the end of the stream ReadSamples returns 0 and an error matching
// io.EOF.
func (r *Reader) ReadSamples(dst []float32) (int, error) {
	ch := r.desc.Channels
	if len(dst) < ch {
		return 0, nil
	}

	f, err := r.pull()
	if err != nil {
		return 0, err
	}
	k := min(f.Len, len(dst)/ch)
	head, tail := splitFrame(f, k, ch)
	r.pending = tail

	out := sample.AppendFrame(dst[:0], head, r.desc.SampleFormat)
	r.pos += int64(k)
	return len(out), nil
}

// splitFrame cuts f after k frames.
func splitFrame(f audio.Frame, k, ch int) (head, tail audio.Frame) {
	head.Len, tail.Len = k, f.Len-k
	if f.Ints != nil {
		head.Ints, tail.Ints = f.Ints[:k*ch], f.Ints[k*ch:]
	}
	if f.Floats != nil {
		head.Floats, tail.Floats = f.Floats[:k*ch], f.Floats[k*ch:]
	}
	return head, tail
}

// Close releases the backend and the stream. It is safe to call more than
// once; later calls return nil.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.pending = audio.Frame{}
	r.log.Debug("closing stream", "format", r.desc.Format.String(), "frames", r.pos)
	if err := r.backend.Close(); err != nil {
		return asError(audio.KindIO, r.desc.Format, opClose, err)
	}
	return nil
}
