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

import "unique"

// IsSpace reports whether c is a PDF white-space character.
func IsSpace(c byte) bool {
	return charClass[c] == classSpace
}

// IsDelimiter reports whether c is a PDF delimiter character.
func IsDelimiter(c byte) bool {
	return charClass[c] == classDelimiter
}

// IsRegular reports whether c is a regular character, i.e. neither white
// space nor a delimiter.
func IsRegular(c byte) bool {
	return charClass[c] == classRegular
}

func isDelimiter(c byte) bool {
	return charClass[c] == classDelimiter
}

type characterClass byte

const (
	classRegular characterClass = iota
	classSpace
	classDelimiter
)

var charClass [256]characterClass

func init() {
	for _, c := range []byte{0, '\t', '\n', '\f', '\r', ' '} {
		charClass[c] = classSpace
	}
	for _, c := range []byte("()<>[]{}/%") {
		charClass[c] = classDelimiter
	}
}

// InternName returns the name with the given bytes.  Names which occur
// frequently in PDF files share their storage.
func InternName(b []byte) Name {
	if name, ok := commonNames[string(b)]; ok {
		return name
	}
	return Name(unique.Make(string(b)).Value())
}

var commonNames = map[string]Name{}

func init() {
	for _, name := range []Name{
		"BitsPerComponent", "BBox", "ColorSpace", "Contents", "Count",
		"DecodeParms", "Filter", "First", "Font", "Height", "ID", "Info",
		"Kids", "Length", "MediaBox", "N", "Page", "Pages", "Parent",
		"Prev", "ProcSet", "Resources", "Root", "Size", "Subtype", "Type",
		"W", "Width", "XObject", "XRef",
	} {
		commonNames[string(name)] = name
	}
}
