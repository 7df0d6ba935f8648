// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/internal/audiotest"
)

func newStream(t testing.TB, b []byte) *audio.Stream {
	t.Helper()

	s, err := audio.NewStream(bytes.NewReader(b), nil)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}
	return s
}

func drain(src audio.Backend) ([]int32, []int, error) {
	var out []int32
	var lens []int
	for {
		f, err := src.NextFrame()
		if err != nil {
			return out, lens, err
		}
		out = append(out, f.Ints...)
		lens = append(lens, f.Len)
	}
}

func ramp(n int, scale int32) []int32 {
	s := make([]int32, n)
	for i := range s {
		s[i] = int32(i-n/2) * scale
	}
	return s
}

func TestDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    audiotest.FLACSpec
		samples []int32
		lens    []int
	}{
		{
			name:    "16-bit mono",
			spec:    audiotest.FLACSpec{SampleRate: 44100, Channels: 1, Bits: 16, BlockSize: 16},
			samples: ramp(40, 100),
			lens:    []int{16, 16, 8},
		},
		{
			name:    "16-bit stereo",
			spec:    audiotest.FLACSpec{SampleRate: 48000, Channels: 2, Bits: 16, BlockSize: 32},
			samples: ramp(64, 7),
			lens:    []int{32},
		},
		{
			name:    "24-bit mono",
			spec:    audiotest.FLACSpec{SampleRate: 32000, Channels: 1, Bits: 24, BlockSize: 16},
			samples: append(ramp(14, 4096), -8388608, 8388607),
			lens:    []int{16},
		},
		{
			name:    "8-bit stereo",
			spec:    audiotest.FLACSpec{SampleRate: 8000, Channels: 2, Bits: 8, BlockSize: 20},
			samples: append(ramp(38, 3), -128, 127),
			lens:    []int{20},
		},
		{
			name:    "large block",
			spec:    audiotest.FLACSpec{SampleRate: 22050, Channels: 1, Bits: 16, BlockSize: 300},
			samples: ramp(310, 1),
			lens:    []int{300, 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(newStream(t, audiotest.FLAC(tt.spec, tt.samples)))
			if err != nil {
				t.Fatalf("Decode() error = %v, want nil", err)
			}
			defer src.Close()

			desc := src.Description()
			if desc.Format != audio.FormatFLAC {
				t.Errorf("Format = %v, want FLAC", desc.Format)
			}
			if desc.SampleRate != tt.spec.SampleRate || desc.Channels != tt.spec.Channels {
				t.Errorf("Description = %d Hz / %d ch, want %d Hz / %d ch",
					desc.SampleRate, desc.Channels, tt.spec.SampleRate, tt.spec.Channels)
			}
			if want := (audio.SampleFormat{Encoding: audio.Signed, Bits: tt.spec.Bits}); desc.SampleFormat != want {
				t.Errorf("SampleFormat = %v, want %v", desc.SampleFormat, want)
			}
			if want := int64(len(tt.samples) / tt.spec.Channels); desc.Frames != want {
				t.Errorf("Frames = %d, want %d", desc.Frames, want)
			}

			got, lens, err := drain(src)
			if err != io.EOF {
				t.Fatalf("final error = %v, want io.EOF", err)
			}
			if len(got) != len(tt.samples) {
				t.Fatalf("got %d samples, want %d", len(got), len(tt.samples))
			}
			for i := range got {
				if got[i] != tt.samples[i] {
					t.Fatalf("sample[%d] = %d, want %d", i, got[i], tt.samples[i])
				}
			}
			if len(lens) != len(tt.lens) {
				t.Fatalf("frame lengths = %v, want %v", lens, tt.lens)
			}
			for i := range lens {
				if lens[i] != tt.lens[i] {
					t.Errorf("frame lengths = %v, want %v", lens, tt.lens)
					break
				}
			}

			if _, err := src.NextFrame(); err != io.EOF {
				t.Errorf("NextFrame() after end = %v, want io.EOF", err)
			}
		})
	}
}

func TestDecoder_Truncated(t *testing.T) {
	t.Parallel()

	spec := audiotest.FLACSpec{SampleRate: 44100, Channels: 1, Bits: 16, BlockSize: 16}
	full := audiotest.FLAC(spec, ramp(40, 100))
	// Byte length of the last frame (8 samples).
	last := len(full) - len(audiotest.FLAC(spec, ramp(32, 100)))

	tests := []struct {
		name string
		cut  int
		want int
	}{
		{name: "whole frame missing", cut: last, want: 32},
		{name: "mid frame", cut: 10, want: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(newStream(t, full[:len(full)-tt.cut]))
			if err != nil {
				t.Fatalf("Decode() error = %v, want nil", err)
			}
			defer src.Close()

			got, _, err := drain(src)
			if len(got) != tt.want {
				t.Errorf("got %d samples, want %d", len(got), tt.want)
			}
			if !errors.Is(err, audio.ErrIO) && !errors.Is(err, audio.ErrDecode) {
				t.Fatalf("final error = %v, want I/O or decode failure", err)
			}
			if errors.Is(err, io.EOF) {
				t.Error("truncation must not look like the end of stream")
			}
			if _, again := src.NextFrame(); again != err {
				t.Errorf("NextFrame() after failure = %v, want the same error", again)
			}
		})
	}
}

func TestDecoder_OpenErrors(t *testing.T) {
	t.Parallel()

	zeroInfo := append([]byte("fLaC\x80\x00\x00\x22"), make([]byte, 34)...)

	tests := []struct {
		name  string
		input []byte
		kinds []audio.Kind
	}{
		{name: "empty", input: nil, kinds: []audio.Kind{audio.KindUnrecognizedFormat}},
		{name: "wrong magic", input: []byte("OggS0000000000000000"), kinds: []audio.Kind{audio.KindUnrecognizedFormat}},
		// A header cut short may surface as a truncation.
		{name: "magic only", input: []byte("fLaC"), kinds: []audio.Kind{audio.KindMalformedHeader, audio.KindIO}},
		{name: "zeroed stream info", input: zeroInfo, kinds: []audio.Kind{audio.KindMalformedHeader}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(newStream(t, tt.input))
			if err == nil {
				t.Fatal("Decode() error = nil, want error")
			}
			if k := audio.KindOf(err); !slices.Contains(tt.kinds, k) {
				t.Errorf("Kind = %v, want one of %v (%v)", k, tt.kinds, err)
			}
		})
	}
}

// fakeParser scripts frames for the backend.
type fakeParser struct {
	frames []frameData
	err    error
	closed int
}

func (p *fakeParser) ParseNext() (*frameData, error) {
	if len(p.frames) == 0 {
		if p.err != nil {
			return nil, p.err
		}
		return nil, io.EOF
	}
	f := p.frames[0]
	p.frames = p.frames[1:]
	return &f, nil
}

func (p *fakeParser) Close() error {
	p.closed++
	return nil
}

func TestBackend_ScalesNarrowFrames(t *testing.T) {
	t.Parallel()

	p := &fakeParser{frames: []frameData{
		{channels: [][]int32{{1, -1}, {2, -2}}, bits: 16},
		{channels: [][]int32{{1, -1}, {2, -2}}, bits: 12},
	}}
	b, err := newBackend(newStream(t, nil), p, 44100, 2, 16, 4)
	if err != nil {
		t.Fatalf("newBackend() error = %v", err)
	}

	got, _, err := drain(b)
	if err != io.EOF {
		t.Fatalf("final error = %v, want io.EOF", err)
	}
	want := []int32{1, 2, -1, -2, 16, 32, -16, -32}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("samples = %v, want %v", got, want)
		}
	}
}

func TestBackend_ChannelMismatch(t *testing.T) {
	t.Parallel()

	p := &fakeParser{frames: []frameData{{channels: [][]int32{{1}}, bits: 16}}}
	b, err := newBackend(newStream(t, nil), p, 44100, 2, 16, 0)
	if err != nil {
		t.Fatalf("newBackend() error = %v", err)
	}

	_, err = b.NextFrame()
	if !errors.Is(err, audio.ErrDecode) || !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("NextFrame() error = %v, want decode failure", err)
	}
}

func TestBackend_ParserError(t *testing.T) {
	t.Parallel()

	p := &fakeParser{
		frames: []frameData{{channels: [][]int32{{1, 2}}, bits: 16}},
		err:    errors.New("frame.Frame.Parse: CRC-16 checksum mismatch"),
	}
	b, err := newBackend(newStream(t, nil), p, 44100, 1, 16, 0)
	if err != nil {
		t.Fatalf("newBackend() error = %v", err)
	}

	got, _, err := drain(b)
	if len(got) != 2 {
		t.Errorf("got %d samples before the failure, want 2", len(got))
	}
	if !errors.Is(err, audio.ErrDecode) {
		t.Errorf("final error = %v, want decode failure", err)
	}
}

func TestBackend_UnknownLength(t *testing.T) {
	t.Parallel()

	b, err := newBackend(newStream(t, nil), &fakeParser{}, 44100, 1, 16, 0)
	if err != nil {
		t.Fatalf("newBackend() error = %v", err)
	}
	if b.Description().Frames != -1 {
		t.Errorf("Frames = %d, want -1", b.Description().Frames)
	}
	if _, err := b.NextFrame(); err != io.EOF {
		t.Errorf("NextFrame() = %v, want io.EOF", err)
	}
}

func TestBackend_InvalidStreamInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     uint32
		channels int
		bits     int
		kind     audio.Kind
	}{
		{name: "zero rate", rate: 0, channels: 1, bits: 16, kind: audio.KindMalformedHeader},
		{name: "zero channels", rate: 8000, channels: 0, bits: 16, kind: audio.KindMalformedHeader},
		{name: "tiny depth", rate: 8000, channels: 1, bits: 2, kind: audio.KindUnsupportedConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newBackend(nil, &fakeParser{}, tt.rate, tt.channels, tt.bits, 0)
			if k := audio.KindOf(translate(nil, opOpen, err)); k != tt.kind {
				t.Errorf("kind = %v, want %v (%v)", k, tt.kind, err)
			}
		})
	}
}

func TestBackend_Close(t *testing.T) {
	t.Parallel()

	rc := audiotest.NewCountingCloser(nil)
	s, err := audio.NewStream(rc, rc)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}
	p := &fakeParser{}
	b, err := newBackend(s, p, 44100, 1, 16, 0)
	if err != nil {
		t.Fatalf("newBackend() error = %v", err)
	}

	b.Close()
	b.Close()
	if rc.Closed != 1 {
		t.Errorf("source closed %d times, want 1", rc.Closed)
	}
	if p.closed == 0 {
		t.Error("parser was not closed")
	}
}

func TestTranslate_Sentinels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want audio.Kind
	}{
		{ErrNotFlacFile, audio.KindUnrecognizedFormat},
		{ErrInvalidStreamInfo, audio.KindMalformedHeader},
		{ErrUnsupportedBitDepth, audio.KindUnsupportedConfiguration},
		{ErrChannelMismatch, audio.KindDecode},
	}

	for _, tt := range tests {
		if k := audio.KindOf(translate(nil, opOpen, tt.err)); k != tt.want {
			t.Errorf("translate(%v) kind = %v, want %v", tt.err, k, tt.want)
		}
	}
}
