// SPDX-License-Identifier: EPL-2.0

// Package flac provides the native FLAC backend, built on
// github.com/mewkiz/flac.
//
// Each FLAC frame becomes one audio.Frame with its subframes interleaved.
// Samples are signed integers of the STREAMINFO bit depth.
//
// A stream that ends cleanly before the sample count announced in
// STREAMINFO is reported as an I/O failure wrapping io.ErrUnexpectedEOF,
// never as a normal end.
package flac
