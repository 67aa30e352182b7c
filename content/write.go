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

package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/cos"
)

// ErrInlineImageData is returned by [Write] if inline image data contains a
// byte sequence which would be read as the end of the image.
var ErrInlineImageData = errors.New("inline image data contains end marker")

// Write writes the tokens to w in content stream format.  Every operator
// is followed by a newline.
func Write(w io.Writer, tokens []Token) error {
	enc := cos.NewEncoder(w, nil)
	for _, tok := range tokens {
		op := tok.Op
		if op == nil {
			if err := enc.Encode(tok.Operand); err != nil {
				return err
			}
			if _, err := w.Write([]byte(" ")); err != nil {
				return err
			}
			continue
		}

		if op.Name == OpBeginInlineImage {
			if err := writeInlineImage(w, enc, op); err != nil {
				return err
			}
			continue
		}

		if _, err := w.Write([]byte(op.Name)); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}

func writeInlineImage(w io.Writer, enc *cos.Encoder, op *Operator) error {
	if containsEndMarker(op.ImageData) {
		return ErrInlineImageData
	}

	if _, err := w.Write([]byte("BI\n")); err != nil {
		return err
	}
	for key, val := range op.ImageParams.All() {
		if err := enc.Encode(key); err != nil {
			return err
		}
		if _, err := w.Write([]byte(" ")); err != nil {
			return err
		}
		if err := enc.Encode(val); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte("ID\n")); err != nil {
		return err
	}
	if _, err := w.Write(op.ImageData); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\nEI\n")); err != nil {
		return err
	}
	return nil
}

// containsEndMarker reports whether a tokenizer would stop reading the
// image data before the "\nEI\n" written after data.
func containsEndMarker(data []byte) bool {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')
	for i := 0; ; {
		k := bytes.Index(buf[i:], []byte("EI"))
		if k < 0 {
			return false
		}
		i += k
		if i+2 >= len(buf) || cos.IsSpace(buf[i+2]) {
			return true
		}
		i++
	}
}

// String returns the content stream representation of the tokens.
func String(tokens []Token) string {
	buf := &bytes.Buffer{}
	err := Write(buf, tokens)
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	return buf.String()
}
