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

package writer

import (
	"fmt"

	"seehuhn.de/go/cos"
)

// WriteHeader writes the PDF file header for the given version.  This must
// be called before any objects are written.
func (w *ObjectWriter) WriteHeader(v cos.Version) error {
	verString, err := v.ToString()
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}
	_, err = fmt.Fprintf(w.w, "%%PDF-%s\n%%\x80\x80\x80\x80\n", verString)
	if err != nil {
		w.err = err
	}
	return err
}

// WriteXRefTrailer writes a cross-reference table for all objects written
// so far, followed by the trailer dictionary, the startxref line and the
// end-of-file marker.  The /Size entry of the trailer is set automatically.
// Containers in the trailer which have object numbers are written as
// references.
func (w *ObjectWriter) WriteXRefTrailer(trailer *cos.Dict) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}

	size := w.ctx.Size()
	byNumber := make(map[uint32]cos.Reference, len(w.offsets))
	for ref := range w.offsets {
		byNumber[ref.Number()] = ref
	}

	xrefDict := cos.NewDict()
	for key, val := range trailer.All() {
		xrefDict.Set(key, val)
	}
	xrefDict.Set("Size", cos.Integer(size))

	w.body.Reset()
	err := w.enc.Encode(xrefDict)
	if err != nil {
		return err
	}

	xRefPos := w.w.pos
	_, err = fmt.Fprintf(w.w, "xref\n0 %d\n", size)
	for i := uint32(0); i < size && err == nil; i++ {
		ref, ok := byNumber[i]
		if ok {
			_, err = fmt.Fprintf(w.w, "%010d %05d n\r\n", w.offsets[ref], ref.Generation())
		} else {
			// free object
			_, err = w.w.Write([]byte("0000000000 65535 f\r\n"))
		}
	}
	if err == nil {
		_, err = w.w.Write([]byte("trailer\n"))
	}
	if err == nil {
		_, err = w.w.Write(w.body.Bytes())
	}
	if err == nil {
		_, err = fmt.Fprintf(w.w, "\nstartxref\n%d\n%%%%EOF\n", xRefPos)
	}
	if err != nil {
		w.err = err
	}
	return err
}
