// SPDX-License-Identifier: EPL-2.0

// Package wav provides the RIFF/WAVE backend.
//
// Decoding is delegated to github.com/go-audio/wav; this package maps its
// header fields onto audio.Description and its PCM buffers onto
// audio.Frame.
//
// # Supported Formats
//
//   - PCM 8-bit (unsigned), 16, 24 and 32-bit (signed)
//   - IEEE float 32-bit
//   - WAVE_FORMAT_EXTENSIBLE with integer samples
//   - Any channel count and sample rate
//
// 64-bit float, ADPCM and the companded formats are reported as
// audio.ErrUnsupportedConfiguration.
//
// # Decoding WAV Files
//
//	s, _ := audio.NewStream(file, file)
//	b, err := wav.Decoder{}.Decode(s)
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
//	    // f.Ints holds interleaved native samples
//	}
//
// # Error Handling
//
// Every error returned by Decode and NextFrame is an *audio.Error whose
// cause is one of the package sentinels or the go-audio error:
//   - ErrNotWavFile: no RIFF/WAVE header (unrecognized format)
//   - ErrMissingFormatChunk, ErrMissingDataChunk, ErrInvalidHeader:
//     malformed header
//   - ErrUnsupportedEncoding, ErrUnsupportedBitDepth: unsupported
//     configuration
//
// A data chunk that ends before its declared size is an I/O failure
// wrapping io.ErrUnexpectedEOF.
package wav
