// SPDX-License-Identifier: EPL-2.0

package audio

import "strings"

// Format identifies the container/codec pair of a stream.
type Format int

const (
	// FormatUnknown is the zero value; no backend handles it.
	FormatUnknown Format = iota
	// FormatFLAC is native FLAC ("fLaC").
	FormatFLAC
	// FormatOggVorbis is Vorbis in an Ogg container.
	FormatOggVorbis
	// FormatWAV is RIFF/WAVE PCM or IEEE float.
	FormatWAV
	// FormatCAFALAC is Apple Lossless in a Core Audio Format container.
	FormatCAFALAC
)

// Formats lists every supported format in identification priority order.
var Formats = []Format{FormatFLAC, FormatOggVorbis, FormatWAV, FormatCAFALAC}

func (f Format) String() string {
	switch f {
	case FormatFLAC:
		return "FLAC"
	case FormatOggVorbis:
		return "Ogg Vorbis"
	case FormatWAV:
		return "WAV"
	case FormatCAFALAC:
		return "CAF/ALAC"
	default:
		return "Unknown"
	}
}

// Extension returns the most common file extension of the format, without
// the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatFLAC:
		return "flac"
	case FormatOggVorbis:
		return "ogg"
	case FormatWAV:
		return "wav"
	case FormatCAFALAC:
		return "caf"
	default:
		return ""
	}
}

// FormatFromExtension maps a file extension to a format. The extension may
// carry a leading dot and is matched case-insensitively.
func FormatFromExtension(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "flac":
		return FormatFLAC
	case "ogg", "oga":
		return FormatOggVorbis
	case "wav", "wave":
		return FormatWAV
	case "caf":
		return FormatCAFALAC
	default:
		return FormatUnknown
	}
}
