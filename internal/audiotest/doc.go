// SPDX-License-Identifier: EPL-2.0

// Package audiotest builds in-memory audio fixtures for tests: generated
// WAV, FLAC and CAF/ALAC byte streams, an embedded Ogg Vorbis sine, a
// scriptable audio.Backend and readers that count closes or fail on
// demand.
package audiotest
