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

// Package writer serializes graphs of PDF objects as indirect objects.
//
// An [ObjectWriter] writes single objects in the form "N G obj ... endobj".
// A [BodyWriter] traverses an object graph, decides which objects are
// written as indirect objects, and writes each of them exactly once.  An
// [AsyncWriter] does the same with the output written by a background
// goroutine.  Object numbers are managed by a [Context].
package writer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"maps"
	"sync"

	"seehuhn.de/go/cos"
)

// An ObjectWriter writes indirect objects to an output stream.
//
// The methods of an ObjectWriter can be called concurrently, but the
// output is only meaningful if objects are written in a well-defined
// order.
type ObjectWriter struct {
	mu      sync.Mutex
	dest    io.Writer
	bw      *bufio.Writer
	w       *posWriter
	body    *bytes.Buffer
	enc     *cos.Encoder
	ctx     *Context
	offsets map[cos.Reference]int64
	err     error
}

// NewObjectWriter returns a new ObjectWriter which writes to w.  Object
// numbers are taken from ctx.  If ctx is nil, a new context is used.
func NewObjectWriter(w io.Writer, ctx *Context) *ObjectWriter {
	if ctx == nil {
		ctx = NewContext(nil)
	}
	bw := bufio.NewWriter(w)
	body := &bytes.Buffer{}
	return &ObjectWriter{
		dest:    w,
		bw:      bw,
		w:       &posWriter{w: bw},
		body:    body,
		enc:     cos.NewEncoder(body, ctx.Lookup),
		ctx:     ctx,
		offsets: make(map[cos.Reference]int64),
	}
}

// Context returns the write context used to assign object numbers.
func (w *ObjectWriter) Context() *Context {
	return w.ctx
}

// WriteObjectIfNotWritten writes obj as an indirect object, unless it has
// already been written in this session.  An object number is allocated if
// needed.
//
// Nested containers which have object numbers are written as references,
// all other nested values are written inline.
func (w *ObjectWriter) WriteObjectIfNotWritten(obj cos.Object) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}
	if w.ctx.IsWritten(obj) {
		return nil
	}

	ref, err := w.ctx.AssignOrGet(obj)
	if err != nil {
		return err
	}

	w.body.Reset()
	err = w.enc.Encode(w.ctx.object(obj))
	if err != nil {
		return fmt.Errorf("object %d: %w", ref.Number(), err)
	}

	pos := w.w.pos
	_, err = fmt.Fprintf(w.w, "%d %d obj\n", ref.Number(), ref.Generation())
	if err == nil {
		_, err = w.w.Write(w.body.Bytes())
	}
	if err == nil {
		_, err = w.w.Write([]byte("\nendobj\n"))
	}
	if err != nil {
		w.err = err
		return err
	}

	w.offsets[ref] = pos
	w.ctx.MarkWritten(obj)
	return nil
}

// Offsets returns the byte offsets of all objects written so far.
func (w *ObjectWriter) Offsets() map[cos.Reference]int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return maps.Clone(w.offsets)
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *ObjectWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.flush()
}

func (w *ObjectWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	err := w.bw.Flush()
	if err != nil {
		w.err = err
	}
	return err
}

// Close flushes the output.  If the underlying io.Writer has a Close
// method, it is also closed.
func (w *ObjectWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err == cos.ErrClosed {
		return nil
	}

	err := w.flush()
	if closer, ok := w.dest.(io.Closer); ok {
		closeErr := closer.Close()
		if err == nil {
			err = closeErr
		}
	}
	w.err = cos.ErrClosed
	return err
}

// posWriter keeps track of the number of bytes written.
type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}
