// SPDX-License-Identifier: EPL-2.0

package caf

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audread/internal/audiotest"
)

var alacSpec = audiotest.CAFSpec{SampleRate: 44100, Channels: 2, Bits: 16, FramesPerPacket: 4096}

func packets(sizes ...int) [][]byte {
	out := make([][]byte, len(sizes))
	for i, n := range sizes {
		out[i] = bytes.Repeat([]byte{byte(i + 1)}, n)
	}
	return out
}

// readAll returns every packet up to the first error.
func readAll(t *testing.T, b []byte) ([][]byte, error) {
	t.Helper()

	r := bytes.NewReader(b)
	f, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p, err := NewPacketReader(r, f)
	if err != nil {
		t.Fatalf("NewPacketReader() error = %v", err)
	}
	var out [][]byte
	for {
		pkt, err := p.Next()
		if err != nil {
			return out, err
		}
		out = append(out, bytes.Clone(pkt))
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	spec := alacSpec
	spec.ValidFrames = 9000
	f, err := Parse(bytes.NewReader(audiotest.CAF(spec, packets(10, 20, 30))))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := Description{
		SampleRate:       44100,
		FormatID:         "alac",
		FormatFlags:      1,
		FramesPerPacket:  4096,
		ChannelsPerFrame: 2,
	}
	if f.Desc != want {
		t.Errorf("Desc = %+v, want %+v", f.Desc, want)
	}
	if len(f.Cookie) != 24 {
		t.Errorf("len(Cookie) = %d, want 24", len(f.Cookie))
	}
	if f.Table == nil {
		t.Fatal("Table = nil, want a packet table")
	}
	if f.Table.Packets != 3 || f.Table.ValidFrames != 9000 || f.Table.RemainderFrames != 3*4096-9000 {
		t.Errorf("Table = %+v", f.Table)
	}
	if got := f.Table.Sizes; len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Errorf("Sizes = %v, want [10 20 30]", got)
	}
	if f.dataSize != 60 {
		t.Errorf("dataSize = %d, want 60", f.dataSize)
	}
}

func TestPacketReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec audiotest.CAFSpec
	}{
		{name: "plain", spec: alacSpec},
		{name: "free chunk", spec: audiotest.CAFSpec{SampleRate: 8000, Channels: 1, Bits: 16, FramesPerPacket: 16, FreeChunk: true}},
		{name: "open data chunk", spec: audiotest.CAFSpec{SampleRate: 8000, Channels: 1, Bits: 24, FramesPerPacket: 16, OpenData: true}},
		{name: "wrapped cookie", spec: audiotest.CAFSpec{SampleRate: 48000, Channels: 2, Bits: 24, FramesPerPacket: 16, WrapCookie: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := packets(1, 200, 3, 130)
			got, err := readAll(t, audiotest.CAF(tt.spec, in))
			if err != io.EOF {
				t.Fatalf("final error = %v, want io.EOF", err)
			}
			if len(got) != len(in) {
				t.Fatalf("read %d packets, want %d", len(got), len(in))
			}
			for i := range in {
				if !bytes.Equal(got[i], in[i]) {
					t.Errorf("packet %d = %x, want %x", i, got[i], in[i])
				}
			}
		})
	}
}

func TestPacketReader_Truncated(t *testing.T) {
	t.Parallel()

	full := audiotest.CAF(alacSpec, packets(10, 20, 30))
	for _, cut := range []int{1, 15, 31} {
		got, err := readAll(t, full[:len(full)-cut])
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("cut %d: error = %v, want io.ErrUnexpectedEOF", cut, err)
		}
		want := 2
		if cut > 30 {
			want = 1
		}
		if len(got) != want {
			t.Errorf("cut %d: read %d packets, want %d", cut, len(got), want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	valid := audiotest.CAF(alacSpec, packets(10))
	badVersion := bytes.Clone(valid)
	badVersion[5] = 2

	noDesc := []byte("caff\x00\x01\x00\x00")
	noDesc = append(noDesc, "free\x00\x00\x00\x00\x00\x00\x00\x00"...)

	noData := valid[:bytes.Index(valid, []byte("data"))]

	noTable := audiotest.CAF(audiotest.CAFSpec{
		SampleRate: 44100, Channels: 1, Bits: 16, FramesPerPacket: 16, NoPacketTable: true,
	}, packets(10))

	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{name: "empty", input: nil, want: ErrNotCAF},
		{name: "wrong magic", input: []byte("RIFF\x00\x00\x00\x00WAVE"), want: ErrNotCAF},
		{name: "version", input: badVersion, want: ErrUnsupportedVersion},
		{name: "header only", input: valid[:8], want: ErrMissingDescription},
		{name: "desc not first", input: noDesc, want: ErrMissingDescription},
		{name: "no data chunk", input: noData, want: ErrMissingData},
		{name: "no packet table", input: noTable, want: ErrInvalidPacketTable},
		{name: "cut in chunk header", input: valid[:14], want: io.ErrUnexpectedEOF},
		{name: "cut in desc", input: valid[:30], want: io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(bytes.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVarint(t *testing.T) {
	t.Parallel()

	for _, v := range []uint64{0, 1, 127, 128, 255, 4096, 1<<21 - 1, 1 << 35} {
		enc := audiotest.AppendVarint(nil, v)
		got, n, err := Varint(append(enc, 0xAA))
		if err != nil {
			t.Errorf("Varint(%x) error = %v", enc, err)
			continue
		}
		if uint64(got) != v || n != len(enc) {
			t.Errorf("Varint(%x) = %d, %d; want %d, %d", enc, got, n, v, len(enc))
		}
	}

	if _, _, err := Varint([]byte{0x81, 0x82}); !errors.Is(err, ErrInvalidPacketTable) {
		t.Errorf("unterminated entry: error = %v, want %v", err, ErrInvalidPacketTable)
	}
	if _, _, err := Varint(bytes.Repeat([]byte{0xFF}, 12)); !errors.Is(err, ErrInvalidPacketTable) {
		t.Errorf("oversized entry: error = %v, want %v", err, ErrInvalidPacketTable)
	}
}

func TestPeekFormat(t *testing.T) {
	t.Parallel()

	valid := audiotest.CAF(alacSpec, packets(10))
	aac := audiotest.CAF(audiotest.CAFSpec{SampleRate: 44100, Channels: 2, Bits: 16, FramesPerPacket: 1024, FormatID: "aac "}, packets(10))

	tests := []struct {
		name   string
		header []byte
		id     string
		ok     bool
	}{
		{name: "alac", header: valid, id: "alac", ok: true},
		{name: "aac", header: aac, id: "aac ", ok: true},
		{name: "short", header: valid[:20], ok: false},
		{name: "not caf", header: []byte("fLaC0000000000000000000000000000"), ok: false},
	}

	for _, tt := range tests {
		id, ok := PeekFormat(tt.header)
		if id != tt.id || ok != tt.ok {
			t.Errorf("%s: PeekFormat() = %q, %v; want %q, %v", tt.name, id, ok, tt.id, tt.ok)
		}
	}
}
