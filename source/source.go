// seehuhn.de/go/cos - the object layer of PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package source provides random access to the bytes of a PDF file.
//
// A [Source] keeps track of a current position and buffers a window of the
// input around this position.  Parsers read the input byte by byte and use
// [Source.Mark] and [Source.Reset] to look ahead and backtrack.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/cos"
)

const windowSize = 4096

// Source is a random-access byte source with a current position.
//
// A Source must not be used concurrently from different goroutines.
type Source struct {
	r    io.ReaderAt
	size int64
	pos  int64

	// buf holds the bytes at offsets bufStart, ..., bufStart+len(buf)-1.
	buf      []byte
	bufStart int64
	fixed    bool

	closer io.Closer
}

// Mark records a position in a Source.
type Mark struct {
	pos int64
}

// New returns a source which reads size bytes from r.
func New(r io.ReaderAt, size int64) (*Source, error) {
	if r == nil {
		return nil, cos.ErrNilSource
	}
	if size < 0 {
		return nil, fmt.Errorf("invalid source size %d", size)
	}
	if br, ok := r.(*bytes.Reader); ok && br.Size() == size {
		data := make([]byte, size)
		_, err := br.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return nil, err
		}
		return FromBytes(data), nil
	}
	return &Source{
		r:    r,
		size: size,
		buf:  make([]byte, 0, windowSize),
	}, nil
}

// FromBytes returns a source which reads from data.  The slice must not be
// modified while the source is in use.
func FromBytes(data []byte) *Source {
	return &Source{
		r:     bytes.NewReader(data),
		size:  int64(len(data)),
		buf:   data,
		fixed: true,
	}
}

// Size returns the total number of bytes in the source.
func (s *Source) Size() int64 {
	return s.size
}

// Pos returns the current position.
func (s *Source) Pos() int64 {
	return s.pos
}

// Seek moves the current position to the absolute offset pos.  Valid
// positions range from 0 to Size(), inclusive.
func (s *Source) Seek(pos int64) error {
	if pos < 0 || pos > s.size {
		return fmt.Errorf("seek to %d: position outside [0, %d]", pos, s.size)
	}
	s.pos = pos
	return nil
}

// Mark returns a record of the current position.
func (s *Source) Mark() Mark {
	return Mark{pos: s.pos}
}

// Reset restores the position recorded in m.
func (s *Source) Reset(m Mark) {
	s.pos = m.pos
}

// ReadByte reads and returns the next byte.  At the end of the input,
// io.EOF is returned.
func (s *Source) ReadByte() (byte, error) {
	c, err := s.PeekByte()
	if err != nil {
		return 0, err
	}
	s.pos++
	return c, nil
}

// PeekByte returns the next byte without advancing the position.
func (s *Source) PeekByte() (byte, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}
	if err := s.fill(s.pos, 1); err != nil {
		return 0, err
	}
	return s.buf[s.pos-s.bufStart], nil
}

// UnreadByte moves the position back by one byte.
func (s *Source) UnreadByte() error {
	if s.pos <= 0 {
		return errUnread
	}
	s.pos--
	return nil
}

// Peek returns the next n bytes without advancing the position.  Near the
// end of the input fewer than n bytes are returned.  The returned slice is
// only valid until the next call to a method of s.
func (s *Source) Peek(n int) ([]byte, error) {
	if int64(n) > s.size-s.pos {
		n = int(s.size - s.pos)
	}
	if n <= 0 {
		return nil, nil
	}
	if n > windowSize && !s.fixed {
		res := make([]byte, n)
		_, err := s.ReadAt(res, s.pos)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	if err := s.fill(s.pos, n); err != nil {
		return nil, err
	}
	start := s.pos - s.bufStart
	return s.buf[start : start+int64(n)], nil
}

// Skip advances the position by n bytes, stopping at the end of the input.
func (s *Source) Skip(n int64) {
	s.pos = min(s.pos+n, s.size)
}

// Read implements the [io.Reader] interface.
func (s *Source) Read(p []byte) (int, error) {
	if s.pos >= s.size {
		return 0, io.EOF
	}
	if int64(len(p)) > s.size-s.pos {
		p = p[:s.size-s.pos]
	}
	n, err := s.ReadAt(p, s.pos)
	s.pos += int64(n)
	return n, err
}

// ReadAt implements the [io.ReaderAt] interface.  The current position is
// not changed.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("read at negative offset %d", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}
	if s.fixed {
		n := copy(p, s.buf[off:])
		if n < len(p) {
			return n, io.EOF
		}
		return n, nil
	}

	short := false
	if int64(len(p)) > s.size-off {
		p = p[:s.size-off]
		short = true
	}
	n, err := s.r.ReadAt(p, off)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	if err == nil && short {
		err = io.EOF
	}
	return n, err
}

// Close releases the resources held by the source.  For sources obtained
// from [Open], this unmaps the file.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// fill makes sure that the bytes at offsets pos, ..., pos+n-1 are in the
// window.  The caller must ensure pos+n <= s.size and n <= windowSize.
func (s *Source) fill(pos int64, n int) error {
	if pos >= s.bufStart && pos+int64(n) <= s.bufStart+int64(len(s.buf)) {
		return nil
	}
	if s.fixed {
		return io.ErrUnexpectedEOF
	}

	// Keep a little context before pos, so that short backtracking does
	// not require a new read.
	start := max(pos-windowSize/8, 0)
	if pos+int64(n) > start+windowSize {
		start = pos
	}
	end := min(start+windowSize, s.size)

	buf := s.buf[:end-start]
	k, err := s.r.ReadAt(buf, start)
	if k < len(buf) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		s.buf = s.buf[:0]
		s.bufStart = 0
		return err
	}
	s.buf = buf
	s.bufStart = start
	return nil
}

var errUnread = errors.New("unread before start of input")
