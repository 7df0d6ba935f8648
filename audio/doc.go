// SPDX-License-Identifier: EPL-2.0

// Package audio defines the contract shared by every codec adapter.
//
// This package contains the building blocks the format adapters and the
// unified reader agree on:
//   - Backend, the interface each adapter implements
//   - Frame, one decoded unit in the adapter's native representation
//   - Description and SampleFormat, the normalized stream metadata
//   - Format, the closed set of supported container/codec pairs
//   - Stream, the byte source handle owned by an adapter
//   - Error and Kind, the single error taxonomy of the public API
//
// # Backend Interface
//
//	type Backend interface {
//	    Description() Description
//	    NextFrame() (Frame, error)
//	    Close() error
//	}
//
// NextFrame returns io.EOF when the stream ended normally. Any other error
// is a failure and is translated into an *Error by the adapter before it
// reaches a caller.
//
// # Native Samples
//
// A Frame carries interleaved samples in the adapter's native layout:
// integers (signed or unsigned, 1-32 bits) in Frame.Ints, IEEE floats in
// Frame.Floats. The sample package converts them to the representation the
// caller asked for.
//
// # Error Handling
//
// Every error has a Kind. Use errors.Is with the kind sentinels:
//
//	if errors.Is(err, audio.ErrExhausted) {
//	    // normal end of stream
//	}
//	if errors.Is(err, audio.ErrDecode) {
//	    // the codec rejected the bitstream
//	}
//
// ErrExhausted also matches io.EOF.
package audio
