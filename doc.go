// SPDX-License-Identifier: EPL-2.0

// Package audread reads audio streams of several formats through one
// pull-based interface.
//
// A stream is identified by its leading bytes, handed to the matching
// codec adapter and then read frame by frame in the codec's native sample
// representation, or converted on the way out to the sample type the
// caller asks for.
//
// # Supported Formats
//
//   - FLAC (optionally behind an ID3v2 tag) via formats/flac
//   - Ogg Vorbis via formats/vorbis
//   - WAV (integer and IEEE float PCM) via formats/wav
//   - Apple Lossless in CAF via formats/caf
//
// # Quick Start
//
//	r, err := audread.Open("speech.flac")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	samples, err := audread.ReadAll[int16](r)
//
// # Pulling Frames
//
// NextFrame returns one decoded unit in its native representation; the
// generic functions convert it:
//
//	for {
//	    buf, err = audread.NextSamples(r, buf[:0])
//	    if errors.Is(err, audio.ErrExhausted) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    process(buf)
//	}
//
// Samples and Frames offer the same as range-over-func iterators, and
// ReadSamples fills a caller buffer with float32 samples.
//
// # Conversion
//
// Widening integer conversions are exact. Narrowing rounds to nearest and
// saturates. Float output is in [-1, 1]; float input is clamped before it
// is converted to integers.
//
// # Errors
//
// Every error returned by this package is or wraps an *audio.Error. The
// one exception is Probe, which returns the context error unchanged when
// its context is done. The end of the stream is reported as
// audio.ErrExhausted, which also matches io.EOF, and repeats on every
// further pull. Failures repeat as well. A truncated file is reported as
// audio.ErrIO, never as a normal end.
//
// # Concurrency
//
// A Reader is not safe for concurrent use. Distinct readers are
// independent; Probe opens many in parallel.
package audread
