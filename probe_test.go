// SPDX-License-Identifier: EPL-2.0

package audread

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/internal/audiotest"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.wav", audiotest.WAV(audiotest.WAVSpec{SampleRate: 8000, Channels: 1, Bits: 16}, ramp(80))),
		writeFile(t, dir, "b.flac", audiotest.FLAC(audiotest.FLACSpec{SampleRate: 44100, Channels: 2, Bits: 16, BlockSize: 32}, ramp(64))),
		writeFile(t, dir, "c.ogg", audiotest.OggVorbis()),
		writeFile(t, dir, "d.caf", cafFixture()),
	}

	descs, err := Probe(context.Background(), paths)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	want := []struct {
		format audio.Format
		rate   int
		frames int64
	}{
		{audio.FormatWAV, 8000, 80},
		{audio.FormatFLAC, 44100, 32},
		{audio.FormatOggVorbis, audiotest.OggVorbisRate, audiotest.OggVorbisFrames},
		{audio.FormatCAFALAC, 48000, 32},
	}
	if len(descs) != len(want) {
		t.Fatalf("Probe() returned %d descriptions, want %d", len(descs), len(want))
	}
	for i, w := range want {
		d := descs[i]
		if d.Format != w.format || d.SampleRate != w.rate || d.Frames != w.frames {
			t.Errorf("descs[%d] = %+v, want %v at %d Hz with %d frames", i, d, w.format, w.rate, w.frames)
		}
	}
}

func TestProbe_Failure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.wav", audiotest.WAV(audiotest.WAVSpec{SampleRate: 8000, Channels: 1, Bits: 16}, ramp(8)))
	bad := writeFile(t, dir, "bad.bin", []byte("definitely not audio"))

	descs, err := Probe(context.Background(), []string{good, bad})
	if !errors.Is(err, audio.ErrUnrecognizedFormat) {
		t.Fatalf("Probe() error = %v, want unrecognized format", err)
	}
	if !strings.Contains(err.Error(), bad) {
		t.Errorf("Probe() error = %q does not name %s", err, bad)
	}
	var aerr *audio.Error
	if !errors.As(err, &aerr) {
		t.Errorf("Probe() error = %T, want it to wrap *audio.Error", err)
	}
	if descs != nil {
		t.Errorf("Probe() = %v, want nil on failure", descs)
	}
}

func TestProbe_Canceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.wav", audiotest.WAV(audiotest.WAVSpec{SampleRate: 8000, Channels: 1, Bits: 16}, ramp(8)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Probe(ctx, []string{path, path, path})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Probe() error = %v, want context.Canceled", err)
	}
	var aerr *audio.Error
	if errors.As(err, &aerr) {
		t.Errorf("Probe() error = %v, want the bare context error", err)
	}
}

func TestProbe_NoPaths(t *testing.T) {
	t.Parallel()

	descs, err := Probe(context.Background(), nil)
	if descs != nil || err != nil {
		t.Errorf("Probe() = %v, %v, want nil, nil", descs, err)
	}
}
