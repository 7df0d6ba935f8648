// SPDX-License-Identifier: EPL-2.0

package pipeline

import "errors"

var (
	// ErrInvalidDstSize is returned when a buffer does not hold whole frames.
	ErrInvalidDstSize = errors.New("dst size must be a multiple of channels")
	// ErrInvalidRate is returned for a sample rate that is not positive.
	ErrInvalidRate = errors.New("sample rate must be positive")
)

// Source streams interleaved float32 samples. *audread.Reader implements
// it.
type Source interface {
	SampleRate() int
	Channels() int
	// ReadSamples fills dst with whole frames and returns the number of
	// samples written. The end of the stream is an error matching io.EOF.
	ReadSamples(dst []float32) (int, error)
}
