// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"errors"
	"io"
	"math"

	"github.com/ik5/audread/audio"
)

// FakeBackend is an audio.Backend that generates integer samples from a
// waveform function. It can be told to fail after a number of frames.
type FakeBackend struct {
	desc      audio.Description
	frameLen  int
	generated int
	waveform  func(frame, channel int) int32
	buf       []int32

	// FailAfter makes NextFrame return FailErr once this many per-channel
	// frames were produced. Zero disables the failure.
	FailAfter int
	FailErr   error

	// Pulls counts NextFrame calls, including the ones returning io.EOF.
	Pulls  int
	Closed int
}

// NewFakeBackend creates a backend producing total per-channel frames of
// 16-bit signed samples, frameLen frames per pull.
func NewFakeBackend(sampleRate, channels, total, frameLen int, waveform func(frame, channel int) int32) *FakeBackend {
	return &FakeBackend{
		desc: audio.Description{
			Format:       audio.FormatWAV,
			SampleRate:   sampleRate,
			Channels:     channels,
			SampleFormat: audio.SampleFormat{Encoding: audio.Signed, Bits: 16},
			Frames:       int64(total),
		},
		frameLen: frameLen,
		waveform: waveform,
		buf:      make([]int32, frameLen*channels),
	}
}

// NewRampBackend counts up from 0 across all samples.
func NewRampBackend(sampleRate, channels, total, frameLen int) *FakeBackend {
	return NewFakeBackend(sampleRate, channels, total, frameLen, func(frame, channel int) int32 {
		return int32(frame*channels + channel)
	})
}

// NewSineBackend generates a full-scale 16-bit sine wave.
func NewSineBackend(sampleRate, channels, total, frameLen int, frequency float64) *FakeBackend {
	return NewFakeBackend(sampleRate, channels, total, frameLen, func(frame, channel int) int32 {
		t := float64(frame) / float64(sampleRate)
		return int32(math.Round(math.Sin(2*math.Pi*frequency*t) * math.MaxInt16))
	})
}

func (f *FakeBackend) Description() audio.Description { return f.desc }

// Total returns the number of per-channel frames the backend produces when
// it does not fail.
func (f *FakeBackend) Total() int { return int(f.desc.Frames) }

func (f *FakeBackend) NextFrame() (audio.Frame, error) {
	f.Pulls++
	if f.FailAfter > 0 && f.generated >= f.FailAfter {
		return audio.Frame{}, f.FailErr
	}
	total := int(f.desc.Frames)
	if f.generated >= total {
		return audio.Frame{}, io.EOF
	}

	n := min(f.frameLen, total-f.generated)
	if f.FailAfter > 0 {
		n = min(n, f.FailAfter-f.generated)
	}
	ch := f.desc.Channels
	for i := range n {
		for c := range ch {
			f.buf[i*ch+c] = f.waveform(f.generated+i, c)
		}
	}
	f.generated += n

	return audio.Frame{Ints: f.buf[:n*ch], Len: n}, nil
}

func (f *FakeBackend) Close() error {
	f.Closed++
	return nil
}

// CountingCloser wraps a byte slice as an io.ReadSeekCloser and records how
// often it was closed.
type CountingCloser struct {
	io.ReadSeeker
	Closed int
}

// NewCountingCloser returns a CountingCloser over b.
func NewCountingCloser(b []byte) *CountingCloser {
	return &CountingCloser{ReadSeeker: bytes.NewReader(b)}
}

func (c *CountingCloser) Close() error {
	c.Closed++
	return nil
}

// FailingReader serves the first n bytes of b, then fails every read with
// Err. Seeks always succeed.
type FailingReader struct {
	b   []byte
	n   int64
	pos int64
	Err error
}

// NewFailingReader returns a reader that fails once it reaches offset n.
func NewFailingReader(b []byte, n int64, err error) *FailingReader {
	return &FailingReader{b: b, n: n, Err: err}
}

func (r *FailingReader) Read(p []byte) (int, error) {
	if r.pos >= r.n {
		return 0, r.Err
	}
	end := min(r.n, int64(len(r.b)))
	if r.pos >= end {
		return 0, io.EOF
	}
	k := copy(p, r.b[r.pos:end])
	r.pos += int64(k)
	return k, nil
}

func (r *FailingReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.pos + offset
	case io.SeekEnd:
		abs = int64(len(r.b)) + offset
	}
	if abs < 0 {
		return 0, errors.New("audiotest: negative position")
	}
	r.pos = abs
	return abs, nil
}
