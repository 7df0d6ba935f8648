// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	_ "embed"
)

//go:embed testdata/sine.ogg
var sineOgg []byte

// Facts about the embedded Ogg Vorbis fixture.
const (
	OggVorbisRate     = 44100
	OggVorbisChannels = 1
	OggVorbisFrames   = 44100
	// OggVorbisLastPage is the offset of the final (end-of-stream) page.
	OggVorbisLastPage = 3932
)

// OggVorbis returns a copy of a one second mono 44.1 kHz Ogg Vorbis
// stream made of three pages.
func OggVorbis() []byte {
	return append([]byte(nil), sineOgg...)
}
