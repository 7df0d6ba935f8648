// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides the Ogg Vorbis backend.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis
// streams. Vorbis is a lossy codec; its native samples are 32-bit floats
// in [-1.0, 1.0] and are delivered in audio.Frame.Floats.
//
// # Supported Formats
//
//   - Single logical Vorbis stream in an Ogg container (.ogg, .oga)
//   - Any channel count and sample rate the codec allows
//   - Variable bitrates
//
// Chained streams and Ogg files carrying other codecs (Opus, FLAC, Speex)
// are not supported; the latter are reported as unrecognized.
//
// # Decoding Vorbis Files
//
//	s, _ := audio.NewStream(file, file)
//	b, err := vorbis.Decoder{}.Decode(s)
//	if err != nil {
//	    // err is an *audio.Error
//	}
//	defer b.Close()
//
//	for {
//	    f, err := b.NextFrame()
//	    if err == io.EOF {
//	        break
//	    }
//	    // f.Floats holds interleaved samples
//	}
//
// # Truncation
//
// The Ogg reader reports a plain end of file when the source stops at a
// page boundary. Before decoding, the backend checks that the source ends
// with a complete page flagged as end-of-stream; when it does not, the end
// of the samples is reported as an I/O failure wrapping
// ErrMissingEndOfStream and io.ErrUnexpectedEOF.
//
// Samples the reader returns together with an error are delivered first;
// the error follows on the next pull.
package vorbis
