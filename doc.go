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

// Package cos implements the object layer of PDF files.
//
// PDF files are made up of "COS" objects: booleans, numbers, names, strings,
// arrays, dictionaries, streams, and references to indirect objects.  This
// package provides Go types for these objects, see [Object].  Sub-packages
// read and write objects:
//
//   - [seehuhn.de/go/cos/source] provides random access to the input bytes,
//   - [seehuhn.de/go/cos/parser] reads objects from a byte source,
//   - [seehuhn.de/go/cos/content] splits content streams into operands and
//     operators,
//   - [seehuhn.de/go/cos/writer] writes graphs of objects as numbered
//     indirect objects.
//
// Objects are used as follows:
//
//	page := cos.NewDict()
//	page.Set("Type", cos.Name("Page"))
//	page.Set("MediaBox", cos.NewArray(cos.Integer(0), cos.Integer(0),
//		cos.Integer(595), cos.Integer(842)))
//	fmt.Println(cos.Format(page))
//
// The PDF null object is represented by a nil [Object].
package cos
