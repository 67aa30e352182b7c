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

package cos

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrClosed is returned when a write operation is attempted on a writer
	// which has already been closed.
	ErrClosed = errors.New("writer is closed")

	// ErrNilSource is returned when a parser is constructed without an
	// input.
	ErrNilSource = errors.New("missing byte source")

	// ErrTruncated indicates that the input ended in the middle of an
	// object.  It is wrapped inside a MalformedFileError together with
	// io.ErrUnexpectedEOF.
	ErrTruncated = errors.New("unexpected end of input")

	// ErrTruncatedStream indicates that no endstream keyword was found
	// before the end of the input.
	ErrTruncatedStream = errors.New("missing endstream")

	// ErrMalformedReference indicates an "N G R" construct where N or G
	// is not a valid object or generation number.
	ErrMalformedReference = errors.New("malformed reference")

	// ErrCycle is returned when an object graph which contains a cycle is
	// written without breaking the cycle through an indirect object.
	ErrCycle = errors.New("cycle in direct object")

	errVersion = errors.New("unsupported PDF version")
)

// truncated combines ErrTruncated with io.ErrUnexpectedEOF, so that
// errors.Is works for both.
type truncated struct {
	err error
}

func (t truncated) Error() string {
	return t.err.Error()
}

func (t truncated) Is(target error) bool {
	return target == io.ErrUnexpectedEOF || target == t.err
}

func (t truncated) Unwrap() error {
	return t.err
}

// Truncated returns a MalformedFileError for input which ends at pos in the
// middle of an object.  The returned error matches both err and
// io.ErrUnexpectedEOF under errors.Is.  If err is nil, ErrTruncated is used.
func Truncated(pos int64, err error) error {
	if err == nil {
		err = ErrTruncated
	}
	return &MalformedFileError{Pos: pos, Err: truncated{err}}
}

// IsTruncated reports whether err indicates truncated input.
func IsTruncated(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// MalformedFileError indicates that a PDF file could not be parsed.
//
// Truncated input is reported as a MalformedFileError which wraps
// [io.ErrUnexpectedEOF].
type MalformedFileError struct {
	Pos int64
	Err error
	Loc []string
}

func (err *MalformedFileError) Error() string {
	parts := make([]string, 0, 4)
	parts = append(parts, "not a valid PDF file")
	for i := len(err.Loc) - 1; i >= 0; i-- {
		parts = append(parts, err.Loc[i])
	}
	if err.Err != nil {
		parts = append(parts, err.Err.Error())
	}
	msg := strings.Join(parts, ": ")
	if err.Pos > 0 {
		msg += " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return msg
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}

// Wrap adds location information to err, if err is a MalformedFileError.
// Other errors are returned unchanged.
func Wrap(err error, loc string) error {
	var mfe *MalformedFileError
	if !errors.As(err, &mfe) {
		return err
	}
	res := &MalformedFileError{
		Pos: mfe.Pos,
		Err: mfe.Err,
		Loc: append(mfe.Loc[:len(mfe.Loc):len(mfe.Loc)], loc),
	}
	return res
}

// IsMalformed reports whether err indicates a problem with the input
// data, rather than an I/O problem.
func IsMalformed(err error) bool {
	var mfe *MalformedFileError
	return errors.As(err, &mfe)
}
