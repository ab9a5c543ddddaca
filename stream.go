// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/fsh

package fsh

import (
	"errors"
	"fmt"
	"io"
)

// source is random access to the file structures: either the stream the
// decoder was opened on, or the payload of a RefPack-wrapped file.
//
// readAt fails with ErrEndOfFile when no byte at off exists and with
// ErrIO when fewer than n bytes are available.
type source interface {
	readAt(off int64, n int) ([]byte, error)
	size() int64
}

// memSource serves reads from a decompressed file.
type memSource []byte

func (m memSource) size() int64 {
	return int64(len(m))
}

func (m memSource) readAt(off int64, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if off < 0 || off >= int64(len(m)) {
		return nil, fmt.Errorf("%w: offset %d of %d", ErrEndOfFile, off, len(m))
	}
	if int64(n) > int64(len(m))-off {
		return nil, fmt.Errorf("%w: short read at %d: want %d, have %d", ErrIO, off, n, int64(len(m))-off)
	}

	return m[off : off+int64(n)], nil
}

// streamSource serves reads from a seekable stream.
type streamSource struct {
	r io.ReadSeeker
	n int64
}

func newStreamSource(r io.ReadSeeker) (*streamSource, error) {
	n, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: seek end: %v", ErrIO, err)
	}

	return &streamSource{r: r, n: n}, nil
}

func (s *streamSource) size() int64 {
	return s.n
}

func (s *streamSource) readAt(off int64, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if off < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", ErrEndOfFile, off)
	}
	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek %d: %v", ErrIO, off, err)
	}

	buf := make([]byte, n)
	got, err := io.ReadFull(s.r, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.EOF):
		return nil, fmt.Errorf("%w: offset %d", ErrEndOfFile, off)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: short read at %d: want %d, have %d", ErrIO, off, n, got)
	default:
		return nil, fmt.Errorf("%w: read at %d: %v", ErrIO, off, err)
	}
}

// writeAll writes b to w, treating a short write as an error.
func writeAll(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if n != len(b) {
		return fmt.Errorf("%w: %v: wrote %d of %d", ErrWrite, io.ErrShortWrite, n, len(b))
	}

	return nil
}
