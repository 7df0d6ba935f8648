// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

// brokenReader fails every read after the first n bytes.
type brokenReader struct {
	*bytes.Reader
	n   int64
	err error
}

func (r *brokenReader) Read(p []byte) (int, error) {
	pos, _ := r.Seek(0, io.SeekCurrent)
	if pos >= r.n {
		return 0, r.err
	}
	return r.Reader.Read(p[:min(int64(len(p)), r.n-pos)])
}

func TestStream_Offsets(t *testing.T) {
	t.Parallel()

	rs := bytes.NewReader([]byte("skipHELLO"))
	if _, err := rs.Seek(4, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	s, err := NewStream(rs, nil)
	if err != nil {
		t.Fatalf("NewStream() error = %v", err)
	}

	size, err := s.Size()
	if err != nil || size != 5 {
		t.Fatalf("Size() = %d, %v, want 5", size, err)
	}

	buf := make([]byte, 2)
	if _, err := io.ReadFull(s, buf); err != nil || string(buf) != "HE" {
		t.Fatalf("Read() = %q, %v, want HE", buf, err)
	}
	if pos, err := s.Seek(0, io.SeekCurrent); err != nil || pos != 2 {
		t.Errorf("Seek(0, current) = %d, %v, want 2", pos, err)
	}

	if pos, err := s.Seek(0, io.SeekStart); err != nil || pos != 0 {
		t.Errorf("Seek(0, start) = %d, %v, want 0", pos, err)
	}
	if _, err := io.ReadFull(s, buf); err != nil || string(buf) != "HE" {
		t.Errorf("Read() after rewind = %q, %v, want HE", buf, err)
	}

	if pos, err := s.Seek(-1, io.SeekEnd); err != nil || pos != 4 {
		t.Errorf("Seek(-1, end) = %d, %v, want 4", pos, err)
	}
}

func TestStream_NegativeSeek(t *testing.T) {
	t.Parallel()

	rs := bytes.NewReader([]byte("skipHELLO"))
	if _, err := rs.Seek(4, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	s, err := NewStream(rs, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Seek(-1, io.SeekStart); !errors.Is(err, ErrNegativePosition) {
		t.Errorf("Seek(-1, start) error = %v, want ErrNegativePosition", err)
	}
	if _, err := s.Seek(-100, io.SeekEnd); err == nil {
		t.Error("Seek(-100, end) succeeded")
	}
	if _, err := s.Seek(-7, io.SeekEnd); !errors.Is(err, ErrNegativePosition) {
		t.Errorf("Seek(-7, end) error = %v, want ErrNegativePosition", err)
	}
	if pos, _ := s.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("position after a failed seek = %d, want 0", pos)
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v, seek failures must not be recorded", s.Err())
	}
}

func TestStream_RecordsReadFailure(t *testing.T) {
	t.Parallel()

	first := errors.New("EIO")
	rs := &brokenReader{Reader: bytes.NewReader(make([]byte, 64)), n: 8, err: first}
	s, err := NewStream(rs, nil)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 16)
	n, err := s.Read(buf)
	if n != 8 || err != nil {
		t.Fatalf("Read() = %d, %v, want 8, nil", n, err)
	}
	if s.Err() != nil {
		t.Fatalf("Err() = %v before any failure", s.Err())
	}

	if _, err := s.Read(buf); err != first {
		t.Fatalf("Read() error = %v, want %v", err, first)
	}
	rs.err = errors.New("second failure")
	_, _ = s.Read(buf)
	if s.Err() != first {
		t.Errorf("Err() = %v, want the first failure", s.Err())
	}
}

func TestStream_EOFIsNotAFailure(t *testing.T) {
	t.Parallel()

	s, err := NewStream(bytes.NewReader([]byte("ab")), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.ReadAll(s); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v after a clean end", s.Err())
	}
}

func TestStream_Close(t *testing.T) {
	t.Parallel()

	c := &closeCounter{}
	s, err := NewStream(bytes.NewReader(nil), c)
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
	if c.n != 1 {
		t.Errorf("closer called %d times, want 1", c.n)
	}

	s, err = NewStream(bytes.NewReader(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() without closer error = %v", err)
	}
}
