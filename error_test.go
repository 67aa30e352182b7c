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
	"testing"
)

func TestTruncated(t *testing.T) {
	err := Truncated(10, nil)
	if !errors.Is(err, ErrTruncated) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("wrong error chain: %v", err)
	}
	if !IsTruncated(err) || !IsMalformed(err) {
		t.Error("truncated input not recognised")
	}
	if s := err.Error(); s != "not a valid PDF file: unexpected end of input (at byte 10)" {
		t.Errorf("got %q", s)
	}

	err = Truncated(0, ErrTruncatedStream)
	if !errors.Is(err, ErrTruncatedStream) || !IsTruncated(err) {
		t.Errorf("wrong error chain: %v", err)
	}
	if errors.Is(err, ErrTruncated) {
		t.Error("unexpected match")
	}
	if s := err.Error(); s != "not a valid PDF file: missing endstream" {
		t.Errorf("got %q", s)
	}
}

func TestMalformed(t *testing.T) {
	base := &MalformedFileError{Pos: 5, Err: ErrMalformedReference}
	if IsTruncated(base) {
		t.Error("malformed reported as truncated")
	}
	if !errors.Is(base, ErrMalformedReference) {
		t.Error("Unwrap")
	}
	if IsMalformed(io.EOF) || IsMalformed(nil) {
		t.Error("I/O error reported as malformed")
	}
}

func TestWrap(t *testing.T) {
	base := &MalformedFileError{Pos: 5, Err: ErrMalformedReference}
	inner := Wrap(base, "object 7")
	outer := Wrap(inner, "xref stream")

	want := "not a valid PDF file: xref stream: object 7: malformed reference (at byte 5)"
	if s := outer.Error(); s != want {
		t.Errorf("got %q", s)
	}
	if s := inner.Error(); s != "not a valid PDF file: object 7: malformed reference (at byte 5)" {
		t.Errorf("got %q", s)
	}
	if len(base.Loc) != 0 {
		t.Error("Wrap modified its argument")
	}
	if !errors.Is(outer, ErrMalformedReference) {
		t.Error("wrapped error lost")
	}

	if Wrap(io.EOF, "x") != io.EOF {
		t.Error("non-malformed error changed")
	}
	if Wrap(nil, "x") != nil {
		t.Error("nil error changed")
	}
}
