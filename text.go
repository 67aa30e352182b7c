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
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var (
	utf16BOM = []byte{0xFE, 0xFF}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// AsTextString decodes x as a PDF text string.
//
// Strings which start with a UTF-16BE byte order mark are decoded as
// UTF-16BE, strings which start with a UTF-8 byte order mark are decoded as
// UTF-8, and all other strings are decoded using PDFDocEncoding.
func (x String) AsTextString() string {
	s := x.Value
	switch {
	case bytes.HasPrefix(s, utf16BOM):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		res, err := dec.Bytes(s)
		if err == nil {
			return string(res)
		}
	case bytes.HasPrefix(s, utf8BOM) && utf8.Valid(s[3:]):
		return string(s[3:])
	}
	return pdfDocDecode(s)
}

// TextString encodes s as a PDF text string.  PDFDocEncoding is used if
// possible, and UTF-16BE with a byte order mark otherwise.
func TextString(s string) String {
	if b, ok := pdfDocEncode(s); ok {
		return String{Value: b}
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		// Only invalid UTF-8 gets here.  The encoder has replaced the
		// invalid bytes by U+FFFD.
		b, _ = enc.Bytes([]byte(string([]rune(s))))
	}
	return String{Value: b}
}

func pdfDocDecode(s []byte) string {
	for _, c := range s {
		if c >= 0x80 || pdfDocRunes[c] != rune(c) {
			goto Decode
		}
	}
	return string(s)

Decode:
	r := make([]rune, len(s))
	for i, c := range s {
		r[i] = pdfDocRunes[c]
	}
	return string(r)
}

func pdfDocEncode(s string) ([]byte, bool) {
	res := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := pdfDocBytes[r]
		if !ok {
			return nil, false
		}
		res = append(res, c)
	}
	return res, true
}

// pdfDocRunes maps PDFDocEncoding bytes to unicode.  Undefined codes map to
// U+FFFD.
var pdfDocRunes [256]rune

// pdfDocBytes is the inverse of pdfDocRunes.
var pdfDocBytes map[rune]byte

func init() {
	for i := range pdfDocRunes {
		pdfDocRunes[i] = rune(i)
	}
	for i, r := range []rune{
		'˘', 'ˇ', 'ˆ', '˙', '˝', '˛', '˚', '˜',
	} {
		pdfDocRunes[0x18+i] = r
	}
	for i, r := range []rune{
		'•', '†', '‡', '…', '—', '–', 'ƒ', '⁄',
		'‹', '›', '−', '‰', '„', '“', '”', '‘',
		'’', '‚', '™', 'ﬁ', 'ﬂ', 'Ł', 'Œ', 'Š',
		'Ÿ', 'Ž', 'ı', 'ł', 'œ', 'š', 'ž', '�',
		'€',
	} {
		pdfDocRunes[0x80+i] = r
	}
	pdfDocRunes[0x7F] = utf8.RuneError
	pdfDocRunes[0xAD] = utf8.RuneError

	pdfDocBytes = make(map[rune]byte, 256)
	for i, r := range pdfDocRunes {
		if r == utf8.RuneError {
			continue
		}
		pdfDocBytes[r] = byte(i)
	}
}
