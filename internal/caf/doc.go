// SPDX-License-Identifier: EPL-2.0

// Package caf parses Core Audio Format containers: the file header, the
// desc, kuki, pakt and data chunks, and the packets of the data chunk.
// Codec payloads are returned as they are stored; decoding them is up to
// the caller.
//
// All integers in a CAF file are big-endian. Chunk sizes are signed 64-bit
// values; a data chunk may declare -1 to mean that it runs to the end of
// the file.
package caf
