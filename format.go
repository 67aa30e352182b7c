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
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// An Encoder writes the PDF representation of objects to an output stream.
//
// Nested containers can be replaced by references: for every child which is
// an [*Array], [*Dict], [*Stream], [*Indirect], or [Reference], the encoder
// calls the ref function supplied to [NewEncoder].  If this returns true, the
// returned reference is written instead of the child.  The top-level object
// passed to [Encoder.Encode] is never replaced.
type Encoder struct {
	w   io.Writer
	ref func(Object) (Reference, bool)

	buf    []byte
	active map[Object]bool
}

// NewEncoder returns a new encoder which writes to w.  The function ref may
// be nil, in which case all containers are written inline and references are
// written unchanged.
func NewEncoder(w io.Writer, ref func(Object) (Reference, bool)) *Encoder {
	return &Encoder{
		w:      w,
		ref:    ref,
		active: make(map[Object]bool),
	}
}

// Encode writes the PDF representation of obj.  A nil object is written
// as "null".
//
// If a container occurs inside itself without being replaced by a
// reference, Encode returns an error wrapping [ErrCycle].
func (e *Encoder) Encode(obj Object) error {
	e.buf = e.buf[:0]
	err := e.encode(obj, true)
	if err != nil {
		return err
	}
	_, err = e.w.Write(e.buf)
	return err
}

func (e *Encoder) encode(obj Object, top bool) error {
	if !top && e.ref != nil {
		switch obj.(type) {
		case *Array, *Dict, *Stream, *Indirect, Reference:
			if ref, ok := e.ref(obj); ok {
				e.buf = appendReference(e.buf, ref)
				return nil
			}
		}
	}

	switch x := obj.(type) {
	case nil:
		e.buf = append(e.buf, "null"...)
	case *Array, *Dict, *Stream, *Indirect:
		if isNilPointer(x) {
			e.buf = append(e.buf, "null"...)
			return nil
		}
	}

	switch x := obj.(type) {
	case nil:
	case Bool:
		e.buf = strconv.AppendBool(e.buf, bool(x))
	case Integer:
		e.buf = strconv.AppendInt(e.buf, int64(x), 10)
	case Real:
		e.buf = append(e.buf, x.String()...)
	case Name:
		e.buf = appendName(e.buf, x)
	case String:
		e.buf = appendString(e.buf, x)
	case Reference:
		if x>>48 != 0 {
			return fmt.Errorf("invalid reference: 0x%016x", uint64(x))
		}
		e.buf = appendReference(e.buf, x)
	case *Array:
		if err := e.enter(x); err != nil {
			return err
		}
		defer delete(e.active, x)

		e.buf = append(e.buf, '[')
		for i, elem := range x.elems {
			if i > 0 {
				e.buf = append(e.buf, ' ')
			}
			if err := e.encode(elem, false); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, ']')
	case *Dict:
		if err := e.enter(x); err != nil {
			return err
		}
		defer delete(e.active, x)

		return e.encodeDict(x, -1)
	case *Stream:
		if err := e.enter(x); err != nil {
			return err
		}
		defer delete(e.active, x)

		if err := e.encodeDict(x.Dict, int64(len(x.data))); err != nil {
			return err
		}
		e.buf = append(e.buf, "\nstream\n"...)
		e.buf = append(e.buf, x.data...)
		e.buf = append(e.buf, "\nendstream"...)
	case *Indirect:
		if err := e.enter(x); err != nil {
			return err
		}
		defer delete(e.active, x)

		return e.encode(x.Obj, top)
	default:
		return fmt.Errorf("unsupported object type %T", obj)
	}
	return nil
}

// encodeDict writes a dictionary.  If length is non-negative, the /Length
// entry is replaced by this value.
func (e *Encoder) encodeDict(d *Dict, length int64) error {
	e.buf = append(e.buf, "<<"...)
	for key, val := range d.All() {
		e.buf = append(e.buf, ' ')
		e.buf = appendName(e.buf, key)
		e.buf = append(e.buf, ' ')
		if key == "Length" && length >= 0 {
			e.buf = strconv.AppendInt(e.buf, length, 10)
			length = -1
			continue
		}
		if err := e.encode(val, false); err != nil {
			return err
		}
	}
	if length >= 0 {
		e.buf = append(e.buf, " /Length "...)
		e.buf = strconv.AppendInt(e.buf, length, 10)
	}
	e.buf = append(e.buf, " >>"...)
	return nil
}

func (e *Encoder) enter(obj Object) error {
	if e.active[obj] {
		return fmt.Errorf("%T: %w", obj, ErrCycle)
	}
	e.active[obj] = true
	return nil
}

func isNilPointer(obj Object) bool {
	switch x := obj.(type) {
	case *Array:
		return x == nil
	case *Dict:
		return x == nil
	case *Stream:
		return x == nil
	case *Indirect:
		return x == nil
	}
	return false
}

func appendReference(buf []byte, ref Reference) []byte {
	buf = strconv.AppendUint(buf, uint64(ref.Number()), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendUint(buf, uint64(ref.Generation()), 10)
	return append(buf, " R"...)
}

// Format returns the PDF representation of obj as a string.  All containers
// are written inline.  If obj cannot be represented, for example because it
// contains a cycle, the result is an error marker of the form "<error: ...>".
func Format(obj Object) string {
	buf := &bytes.Buffer{}
	err := NewEncoder(buf, nil).Encode(obj)
	if err != nil {
		return "<error: " + err.Error() + ">"
	}
	return buf.String()
}
