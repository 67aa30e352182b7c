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
	"math"
	"strconv"
	"strings"
)

// Object represents an object in a PDF file.  There are ten types of
// objects, which implement this interface: [Bool], [Integer], [Real],
// [Name], [String], [*Array], [*Dict], [*Stream], [Reference] and
// [*Indirect].  The PDF null object is represented by a nil Object.
//
// The set of object types is closed; code which processes objects
// uses a type switch over the types listed above.
type Object interface {
	// PDF writes the PDF file representation of the object to w.
	// Containers are written inline, including their children.
	PDF(w io.Writer) error

	isObject()
}

// Bool represents a boolean value in a PDF file.
type Bool bool

// PDF implements the [Object] interface.
func (x Bool) PDF(w io.Writer) error {
	var s string
	if x {
		s = "true"
	} else {
		s = "false"
	}
	_, err := w.Write([]byte(s))
	return err
}

func (x Bool) isObject() {}

// Integer represents an integer constant in a PDF file.
type Integer int64

// PDF implements the [Object] interface.
func (x Integer) PDF(w io.Writer) error {
	s := strconv.FormatInt(int64(x), 10)
	_, err := w.Write([]byte(s))
	return err
}

func (x Integer) isObject() {}

// Real represents a real number in a PDF file.
//
// Values obtained from the parser are always finite and their magnitude is
// either zero or lies between the smallest normal and the largest finite
// 32-bit float.  Use [NewReal] to apply the same clamping to computed values.
//
// A Real holds a binary float64, not the decimal text found in the file.
// Inputs with more than 17 significant digits are rounded to the nearest
// float64 and are written back in the shortest form which denotes that
// value.
type Real float64

const smallestNormal32 = 0x1p-126

// NewReal converts x to a Real.  Magnitudes larger than the largest
// finite 32-bit float are replaced by that value, and non-zero magnitudes
// smaller than the smallest normal 32-bit float are replaced by the smallest
// normal value.  The sign of x is kept.  NaN is mapped to zero.
func NewReal(x float64) Real {
	switch {
	case math.IsNaN(x):
		return 0
	case x > math.MaxFloat32:
		return math.MaxFloat32
	case x < -math.MaxFloat32:
		return -math.MaxFloat32
	case x > 0 && x < smallestNormal32:
		return smallestNormal32
	case x < 0 && x > -smallestNormal32:
		return -smallestNormal32
	}
	return Real(x)
}

// PDF implements the [Object] interface.
func (x Real) PDF(w io.Writer) error {
	_, err := w.Write([]byte(x.String()))
	return err
}

// String returns the shortest decimal representation of x which parses back
// to the same value.  The result always contains a decimal point, so that
// it is not mistaken for an integer.
func (x Real) String() string {
	s := strconv.FormatFloat(float64(NewReal(float64(x))), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += "."
	}
	return s
}

func (x Real) isObject() {}

// Name represents a name object in a PDF file.
type Name string

// PDF implements the [Object] interface.
func (x Name) PDF(w io.Writer) error {
	_, err := w.Write(appendName(nil, x))
	return err
}

func (x Name) isObject() {}

// appendName appends the PDF representation of x to buf.  Bytes outside the
// printable ASCII range, white space, delimiters, and '#' are written as
// #xx escapes.
func appendName(buf []byte, x Name) []byte {
	buf = append(buf, '/')
	for i := 0; i < len(x); i++ {
		c := x[i]
		if c < 0x21 || c > 0x7e || c == '#' || isDelimiter(c) {
			buf = append(buf, '#', hexDigits[c>>4], hexDigits[c&15])
		} else {
			buf = append(buf, c)
		}
	}
	return buf
}

// String represents a string object in a PDF file.  The character set
// encoding, if any, is determined by the context.
//
// Hex selects the hexadecimal form when the string is written.  The flag
// does not take part in comparisons.
type String struct {
	Value []byte
	Hex   bool
}

// LiteralString returns a String which is written in literal form.
func LiteralString(s string) String {
	return String{Value: []byte(s)}
}

// HexString returns a String which is written in hexadecimal form.
func HexString(b []byte) String {
	return String{Value: b, Hex: true}
}

// PDF implements the [Object] interface.
func (x String) PDF(w io.Writer) error {
	_, err := w.Write(appendString(nil, x))
	return err
}

// Equal reports whether x and y contain the same bytes.
func (x String) Equal(y String) bool {
	return bytes.Equal(x.Value, y.Value)
}

func (x String) isObject() {}

func appendString(buf []byte, x String) []byte {
	l := x.Value
	if x.Hex {
		buf = append(buf, '<')
		for _, c := range l {
			buf = append(buf, hexDigits[c>>4], hexDigits[c&15])
		}
		return append(buf, '>')
	}

	level := 0
	for _, c := range l {
		if c == '(' {
			level++
		} else if c == ')' {
			level--
			if level < 0 {
				break
			}
		}
	}
	balanced := level == 0

	buf = append(buf, '(')
	for _, c := range l {
		switch {
		case c == '\r':
			buf = append(buf, '\\', 'r')
		case c == '\n':
			buf = append(buf, '\\', 'n')
		case c == '\t':
			buf = append(buf, '\\', 't')
		case c == '\b':
			buf = append(buf, '\\', 'b')
		case c == '\f':
			buf = append(buf, '\\', 'f')
		case c == '\\':
			buf = append(buf, '\\', '\\')
		case !balanced && (c == '(' || c == ')'):
			buf = append(buf, '\\', c)
		case c < 32:
			buf = append(buf, '\\', '0'+(c>>6), '0'+(c>>3)&7, '0'+c&7)
		default:
			buf = append(buf, c)
		}
	}
	return append(buf, ')')
}

const hexDigits = "0123456789ABCDEF"

// Reference represents a reference to an indirect object in a PDF file.
// The lower 32 bits represent the object number, the next 16 bits the
// generation number.
type Reference uint64

// NewReference returns the reference with the given object number and
// generation number.
func NewReference(number uint32, generation uint16) Reference {
	return Reference(uint64(number) | uint64(generation)<<32)
}

// Number returns the object number of the reference.
func (x Reference) Number() uint32 {
	return uint32(x)
}

// Generation returns the generation number of the reference.
func (x Reference) Generation() uint16 {
	return uint16(x >> 32)
}

func (x Reference) String() string {
	res := []string{
		"obj_",
		strconv.FormatInt(int64(x.Number()), 10),
	}
	gen := x.Generation()
	if gen > 0 {
		res = append(res, "@", strconv.FormatUint(uint64(gen), 10))
	}
	return strings.Join(res, "")
}

// PDF implements the [Object] interface.
func (x Reference) PDF(w io.Writer) error {
	if x>>48 != 0 {
		return fmt.Errorf("invalid reference: 0x%016x", uint64(x))
	}

	_, err := fmt.Fprintf(w, "%d %d R", x.Number(), x.Generation())
	return err
}

func (x Reference) isObject() {}

// Indirect marks an object as an indirect object.
//
// The parser returns an Indirect for every "N G obj ... endobj" construct,
// with Ref set to the object and generation numbers found in the input.  When
// writing, an Indirect is always stored as a separate object in the output
// file, and all occurrences are replaced by references.  The writer assigns
// its own numbers and ignores Ref.
type Indirect struct {
	Obj Object
	Ref Reference
}

// NewIndirect returns a new Indirect wrapping obj.
func NewIndirect(obj Object) *Indirect {
	return &Indirect{Obj: obj}
}

// PDF implements the [Object] interface.  The wrapped object is written
// inline.
func (x *Indirect) PDF(w io.Writer) error {
	return NewEncoder(w, nil).Encode(x)
}

// Equal reports whether x and y wrap structurally equal objects.
func (x *Indirect) Equal(y *Indirect) bool {
	if x == nil || y == nil {
		return x == y
	}
	return Equal(x.Obj, y.Obj)
}

func (x *Indirect) isObject() {}
