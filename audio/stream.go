// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// ErrNegativePosition is returned when a seek would move before the start
// of the stream.
var ErrNegativePosition = errors.New("seek to negative position")

// Stream is the byte source handed to a backend.
//
// It presents the source as starting at offset 0 (the position it had when
// the stream was created), remembers the first read failure so that backends
// can tell I/O failures apart from codec failures, and owns an optional
// closer that is released exactly once.
//
// Seek failures are returned but not recorded: codec libraries probe with
// seeks that are allowed to fail (e.g. seeking before the start of a short
// file).
type Stream struct {
	rs     io.ReadSeeker
	base   int64
	closer io.Closer
	err    error
	closed bool
}

// NewStream wraps rs. The current position of rs becomes offset 0. If
// closer is non-nil it is closed by Close.
func NewStream(rs io.ReadSeeker, closer io.Closer) (*Stream, error) {
	base, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locate stream start: %w", err)
	}
	return &Stream{rs: rs, base: base, closer: closer}, nil
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.rs.Read(p)
	if err != nil && err != io.EOF {
		s.record(err)
	}
	return n, err
}

// Seek implements io.Seeker relative to the stream start.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekStart {
		if offset < 0 {
			return 0, ErrNegativePosition
		}
		offset += s.base
	}
	abs, err := s.rs.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	if abs < s.base {
		// A relative seek went past the stream start; clamp back.
		if _, err := s.rs.Seek(s.base, io.SeekStart); err != nil {
			return 0, err
		}
		return 0, ErrNegativePosition
	}
	return abs - s.base, nil
}

// Size returns the number of bytes from the stream start to the end of the
// source. The read position is preserved.
func (s *Stream) Size() (int64, error) {
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// Err returns the first read failure of the source, if any.
func (s *Stream) Err() error { return s.err }

func (s *Stream) record(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Close releases the owned closer. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
