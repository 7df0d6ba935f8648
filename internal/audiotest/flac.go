// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// FLACSpec describes a generated FLAC stream.
type FLACSpec struct {
	SampleRate int
	Channels   int // 1-8, coded as independent channels
	Bits       int // 8, 16 or 24
	BlockSize  int // per-channel frames per FLAC frame, >= 16
}

// FLAC returns a native FLAC stream holding samples (interleaved) in
// VERBATIM subframes, with a STREAMINFO block declaring the total length.
// The last frame may be shorter than BlockSize. Every frame of a given
// length encodes to the same number of bytes.
func FLAC(spec FLACSpec, samples []int32) []byte {
	total := len(samples) / spec.Channels

	info := &meta.StreamInfo{
		BlockSizeMin:  uint16(spec.BlockSize),
		BlockSizeMax:  uint16(spec.BlockSize),
		SampleRate:    uint32(spec.SampleRate),
		NChannels:     uint8(spec.Channels),
		BitsPerSample: uint8(spec.Bits),
		NSamples:      uint64(total),
	}

	buf := new(bytes.Buffer)
	enc, err := flac.NewEncoder(buf, info)
	if err != nil {
		panic(fmt.Sprintf("audiotest: FLAC stream info: %v", err))
	}
	// Keep VERBATIM subframes so frame sizes do not depend on the samples.
	enc.EnablePredictionAnalysis(false)

	for start := 0; start < total; start += spec.BlockSize {
		n := min(spec.BlockSize, total-start)
		if err := enc.WriteFrame(flacFrame(spec, samples[start*spec.Channels:(start+n)*spec.Channels], n)); err != nil {
			panic(fmt.Sprintf("audiotest: FLAC frame at %d: %v", start, err))
		}
	}
	if err := enc.Close(); err != nil {
		panic(fmt.Sprintf("audiotest: close FLAC encoder: %v", err))
	}
	return buf.Bytes()
}

// flacFrame deinterleaves n frames of samples into one subframe per
// channel.
func flacFrame(spec FLACSpec, samples []int32, n int) *frame.Frame {
	f := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(n),
			SampleRate:        uint32(spec.SampleRate),
			Channels:          frame.ChannelsMono + frame.Channels(spec.Channels-1),
			BitsPerSample:     uint8(spec.Bits),
		},
	}
	for ch := range spec.Channels {
		sub := &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   make([]int32, n),
			NSamples:  n,
		}
		for i := range n {
			sub.Samples[i] = samples[i*spec.Channels+ch]
		}
		f.Subframes = append(f.Subframes, sub)
	}
	return f
}
