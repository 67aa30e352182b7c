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

// Package content splits PDF content streams into operands and operators.
//
// A [Tokenizer] reads a content stream and returns a sequence of [Token]
// values.  Operands are represented by PDF objects, operators are looked up
// in an [OperatorTable].  Inline images are returned as a single operator,
// with the image parameters and the image data attached.
//
// [Write] converts a token sequence back into content stream syntax, and
// [Validate] checks that all operators are valid for a given PDF version.
package content
