// SPDX-License-Identifier: EPL-2.0

// Package caf provides the Apple Lossless (ALAC) in Core Audio Format
// backend.
//
// The container is parsed by internal/caf; packets are decoded by
// github.com/llehouerou/alac, configured from the ALAC magic cookie
// (ALACSpecificConfig) in the kuki chunk.
//
// # Supported Formats
//
//   - ALAC, 16 and 24-bit
//   - Mono and stereo
//   - Cookies stored bare or wrapped in frma/alac atoms
//
// Other bit depths, more than two channels and encoders that use
// non-default Rice parameters are reported as
// audio.ErrUnsupportedConfiguration. CAF files carrying other codecs are
// unrecognized.
//
// # Frame Counts
//
// Each pull decodes one packet. Priming frames listed in the packet table
// are dropped from the start and the output stops at the table's valid
// frame count, so Description().Frames matches what is delivered.
//
// # Error Handling
//
//   - ErrNotALAC: CAF without ALAC (unrecognized format)
//   - ErrMissingCookie, ErrInvalidCookie: malformed header
//   - ErrUnsupportedBitDepth, ErrUnsupportedChannels, ErrUnsupportedCookie:
//     unsupported configuration
//   - ErrCorruptPacket: the codec rejected a packet (decode failure)
//
// A data chunk holding fewer bytes than the packet table requires is an
// I/O failure wrapping io.ErrUnexpectedEOF.
package caf
