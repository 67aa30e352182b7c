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
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/cos"
)

var errSink = errors.New("sink failure")

// failingWriter fails on every write.
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errSink
}

// closeRecorder records calls to Close.
type closeRecorder struct {
	bytes.Buffer
	closed int
}

func (w *closeRecorder) Close() error {
	w.closed++
	return nil
}

func TestWriteObject(t *testing.T) {
	withLength := cos.NewDict()
	withLength.Set("Length", cos.Integer(99))
	withLength.Set("Filter", cos.Name("ASCIIHexDecode"))

	inner := cos.NewDict()
	inner.Set("B", cos.Bool(true))
	outer := cos.NewDict()
	outer.Set("Kid", inner)

	cases := []struct {
		name string
		obj  cos.Object
		want string
	}{
		{"dict", cos.DictFromMap(map[cos.Name]cos.Object{"A": cos.Integer(1)}), "1 0 obj\n<< /A 1 >>\nendobj\n"},
		{"array", cos.NewArray(cos.Integer(1), nil, cos.LiteralString("x")), "1 0 obj\n[1 null (x)]\nendobj\n"},
		{"nested", outer, "1 0 obj\n<< /Kid << /B true >> >>\nendobj\n"},
		{"stream", cos.NewStream(withLength, []byte("616263>")), "1 0 obj\n<< /Length 7 /Filter /ASCIIHexDecode >>\nstream\n616263>\nendstream\nendobj\n"},
		{"indirect", cos.NewIndirect(cos.Real(0.5)), "1 0 obj\n0.5\nendobj\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			ow := NewObjectWriter(buf, nil)
			if err := ow.WriteObjectIfNotWritten(tc.obj); err != nil {
				t.Fatal(err)
			}
			if err := ow.Flush(); err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.want, buf.String()); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestWriteObjectOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	ow := NewObjectWriter(buf, nil)
	d := cos.NewDict()
	d.Set("A", cos.Integer(1))

	for range 3 {
		if err := ow.WriteObjectIfNotWritten(d); err != nil {
			t.Fatal(err)
		}
	}
	ow.Flush()
	if d := cmp.Diff("1 0 obj\n<< /A 1 >>\nendobj\n", buf.String()); d != "" {
		t.Error(d)
	}
	if !ow.Context().IsWritten(d) {
		t.Error("object not marked as written")
	}
}

func TestWriteTrackedChild(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := NewContext(nil)
	ow := NewObjectWriter(buf, ctx)

	inner := cos.NewDict()
	inner.Set("B", cos.Bool(true))
	outer := cos.NewDict()
	outer.Set("Kid", inner)
	outer.Set("Kids", cos.NewArray(inner, inner))

	ctx.AssignOrGet(outer)
	ctx.AssignOrGet(inner)
	ow.WriteObjectIfNotWritten(outer)
	ow.WriteObjectIfNotWritten(inner)
	ow.Flush()

	want := "1 0 obj\n<< /Kid 2 0 R /Kids [2 0 R 2 0 R] >>\nendobj\n" +
		"2 0 obj\n<< /B true >>\nendobj\n"
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Error(d)
	}

	offsets := ow.Offsets()
	wantOffsets := map[cos.Reference]int64{
		cos.NewReference(1, 0): 0,
		cos.NewReference(2, 0): int64(len("1 0 obj\n<< /Kid 2 0 R /Kids [2 0 R 2 0 R] >>\nendobj\n")),
	}
	if d := cmp.Diff(wantOffsets, offsets); d != "" {
		t.Error(d)
	}
}

func TestWriteObjectCycle(t *testing.T) {
	buf := &bytes.Buffer{}
	ow := NewObjectWriter(buf, nil)

	b := cos.NewDict()
	b.Set("B", b)
	a := cos.NewDict()
	a.Set("B", b)

	err := ow.WriteObjectIfNotWritten(a)
	if !errors.Is(err, cos.ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	if ow.Context().IsWritten(a) {
		t.Error("failed object marked as written")
	}

	// the writer is still usable
	err = ow.WriteObjectIfNotWritten(cos.NewArray())
	if err != nil {
		t.Fatal(err)
	}
	ow.Flush()
	if got := buf.String(); got != "2 0 obj\n[]\nendobj\n" {
		t.Errorf("got %q", got)
	}
}

func TestUntrackedObject(t *testing.T) {
	ow := NewObjectWriter(&bytes.Buffer{}, nil)
	err := ow.WriteObjectIfNotWritten(cos.Integer(1))
	if !errors.Is(err, ErrNotTrackable) {
		t.Errorf("got %v", err)
	}
}

func TestSinkError(t *testing.T) {
	ow := NewObjectWriter(failingWriter{}, nil)

	// The output is buffered, so the error shows up when flushing.
	err := ow.WriteObjectIfNotWritten(cos.NewDict())
	if err != nil {
		t.Fatal(err)
	}
	err = ow.Flush()
	if !errors.Is(err, errSink) {
		t.Fatalf("flush: got %v", err)
	}

	err = ow.WriteObjectIfNotWritten(cos.NewDict())
	if !errors.Is(err, errSink) {
		t.Errorf("write after failure: got %v", err)
	}
	err = ow.Close()
	if !errors.Is(err, errSink) {
		t.Errorf("close: got %v", err)
	}
}

func TestSinkErrorLargeObject(t *testing.T) {
	ow := NewObjectWriter(failingWriter{}, nil)
	stm := cos.NewStream(nil, make([]byte, 10000))
	err := ow.WriteObjectIfNotWritten(stm)
	if !errors.Is(err, errSink) {
		t.Fatalf("got %v", err)
	}
	if ow.Context().IsWritten(stm) {
		t.Error("failed object marked as written")
	}
}

func TestClose(t *testing.T) {
	w := &closeRecorder{}
	ow := NewObjectWriter(w, nil)
	ow.WriteObjectIfNotWritten(cos.NewArray(cos.Integer(7)))

	if err := ow.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ow.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if w.closed != 1 {
		t.Errorf("underlying writer closed %d times", w.closed)
	}
	if got := w.String(); got != "1 0 obj\n[7]\nendobj\n" {
		t.Errorf("got %q", got)
	}

	err := ow.WriteObjectIfNotWritten(cos.NewArray())
	if !errors.Is(err, cos.ErrClosed) {
		t.Errorf("write after close: got %v", err)
	}
}

func TestHeader(t *testing.T) {
	buf := &bytes.Buffer{}
	ow := NewObjectWriter(buf, nil)
	if err := ow.WriteHeader(cos.V1_7); err != nil {
		t.Fatal(err)
	}
	ow.Flush()
	if got := buf.String(); got != "%PDF-1.7\n%\x80\x80\x80\x80\n" {
		t.Errorf("got %q", got)
	}

	if err := ow.WriteHeader(cos.Version(0)); err == nil {
		t.Error("invalid version accepted")
	}
}
