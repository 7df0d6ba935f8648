// SPDX-License-Identifier: EPL-2.0

package audread

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audread/audio"
	"github.com/ik5/audread/internal/caf"
)

const (
	opIdentify = "identify"

	// sniffSize covers the largest signature: an Ogg page header with a
	// full segment table followed by the Vorbis packet type and tag.
	sniffSize = 27 + 255 + 7

	id3HeaderSize = 10
	id3FooterFlag = 0x10
)

var (
	magicFLAC   = []byte("fLaC")
	magicID3    = []byte("ID3")
	magicOgg    = []byte("OggS")
	magicRIFF   = []byte("RIFF")
	magicWAVE   = []byte("WAVE")
	vorbisIdent = []byte("\x01vorbis")
)

var errNoSignature = errors.New("no known signature")

// Identify reports the format of the stream at the current position of
// rs by its leading bytes. The position is restored before returning,
// also on failure.
//
// Signatures are checked in a fixed order: FLAC (optionally behind an
// ID3v2 tag), Ogg Vorbis, WAV, then ALAC in CAF. A stream that matches
// none is reported with audio.ErrUnrecognizedFormat.
func Identify(rs io.ReadSeeker) (audio.Format, error) {
	f, _, err := identify(rs, "")
	return f, err
}

// identify sniffs rs and falls back to the extension hint when nothing
// matches. skip is the number of bytes before the audio data (an ID3v2 tag
// in front of FLAC).
func identify(rs io.ReadSeeker, hint string) (f audio.Format, skip int64, err error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return audio.FormatUnknown, 0, audio.NewError(audio.KindIO, audio.FormatUnknown, opIdentify, err)
	}
	defer func() {
		if _, serr := rs.Seek(start, io.SeekStart); serr != nil && err == nil {
			f, skip = audio.FormatUnknown, 0
			err = audio.NewError(audio.KindIO, audio.FormatUnknown, opIdentify, serr)
		}
	}()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return audio.FormatUnknown, 0, audio.NewError(audio.KindIO, audio.FormatUnknown, opIdentify, err)
	}
	head = head[:n]

	f = sniff(head)
	if f == audio.FormatUnknown && bytes.HasPrefix(head, magicID3) {
		f, skip, err = sniffTagged(rs, start, head)
		if err != nil {
			return audio.FormatUnknown, 0, audio.NewError(audio.KindIO, audio.FormatUnknown, opIdentify, err)
		}
	}
	if f == audio.FormatUnknown && hint != "" {
		f = audio.FormatFromExtension(hint)
	}
	if f == audio.FormatUnknown {
		return f, 0, audio.NewError(audio.KindUnrecognizedFormat, audio.FormatUnknown, opIdentify, errNoSignature)
	}
	return f, skip, nil
}

// sniff matches the signatures that sit at offset 0.
func sniff(head []byte) audio.Format {
	switch {
	case bytes.HasPrefix(head, magicFLAC):
		return audio.FormatFLAC
	case isOggVorbis(head):
		return audio.FormatOggVorbis
	case len(head) >= 12 && bytes.Equal(head[:4], magicRIFF) && bytes.Equal(head[8:12], magicWAVE):
		return audio.FormatWAV
	}
	if id, ok := caf.PeekFormat(head); ok && id == "alac" {
		return audio.FormatCAFALAC
	}
	return audio.FormatUnknown
}

// isOggVorbis checks that the first Ogg packet is a Vorbis identification
// header. Ogg carrying another codec is not a match.
func isOggVorbis(head []byte) bool {
	if len(head) < 27 || !bytes.Equal(head[:4], magicOgg) {
		return false
	}
	packet := 27 + int(head[26])
	return len(head) >= packet+len(vorbisIdent) &&
		bytes.Equal(head[packet:packet+len(vorbisIdent)], vorbisIdent)
}

// sniffTagged looks for FLAC behind the ID3v2 tag at the start of head.
func sniffTagged(rs io.ReadSeeker, start int64, head []byte) (audio.Format, int64, error) {
	size, ok := id3Size(head)
	if !ok {
		return audio.FormatUnknown, 0, nil
	}
	if _, err := rs.Seek(start+size, io.SeekStart); err != nil {
		return audio.FormatUnknown, 0, fmt.Errorf("skip ID3v2 tag: %w", err)
	}
	magic := make([]byte, len(magicFLAC))
	if _, err := io.ReadFull(rs, magic); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return audio.FormatUnknown, 0, nil
		}
		return audio.FormatUnknown, 0, err
	}
	if !bytes.Equal(magic, magicFLAC) {
		return audio.FormatUnknown, 0, nil
	}
	return audio.FormatFLAC, size, nil
}

// id3Size returns the total size of the ID3v2 tag at the start of head,
// header and footer included.
func id3Size(head []byte) (int64, bool) {
	if len(head) < id3HeaderSize || !bytes.HasPrefix(head, magicID3) {
		return 0, false
	}
	var size int64
	for _, b := range head[6:10] {
		if b&0x80 != 0 {
			return 0, false
		}
		size = size<<7 | int64(b)
	}
	size += id3HeaderSize
	if head[5]&id3FooterFlag != 0 {
		size += id3HeaderSize
	}
	return size, true
}
