// SPDX-License-Identifier: EPL-2.0

package audread

import (
	"log/slog"
)

// DefaultFrameSize is the number of per-channel frames a WAV or Vorbis
// reader decodes per pull unless WithFrameSize says otherwise. FLAC and
// ALAC always deliver one codec block or packet per pull.
const DefaultFrameSize = 4096

// Option configures a Reader.
//
// Example:
//
//	r, err := audread.Open("song.flac",
//	    audread.WithLogger(logger),
//	    audread.WithFrameSize(1024),
//	)
type Option func(*options)

type options struct {
	logger    *slog.Logger
	frameSize int
	hint      string
}

func defaultOptions() *options {
	return &options{
		logger:    slog.New(slog.DiscardHandler),
		frameSize: DefaultFrameSize,
	}
}

// WithLogger sets the logger that receives debug records about
// identification, opening, the end of the stream and closing. By default
// nothing is logged. A nil logger restores the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}

// WithFrameSize sets the number of per-channel frames WAV and Vorbis
// readers decode per pull. Values below 1 restore DefaultFrameSize.
func WithFrameSize(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = DefaultFrameSize
		}
		o.frameSize = n
	}
}

// WithExtensionHint supplies a file extension ("wav", ".flac", ...) that
// selects the format when no signature matches. Open uses the extension
// of its path unless this option is given; an empty ext disables the
// hint.
func WithExtensionHint(ext string) Option {
	return func(o *options) {
		o.hint = ext
	}
}
