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

package parser

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/cos"
	"seehuhn.de/go/cos/source"
)

func readAll(in []byte) ([]cos.Object, error) {
	p, err := New(source.FromBytes(in), nil)
	if err != nil {
		return nil, err
	}
	var res []cos.Object
	for {
		obj, err := p.NextParsedToken()
		if err == io.EOF {
			return res, nil
		} else if err != nil {
			return nil, err
		}
		res = append(res, obj)
	}
}

func TestRoundTrip(t *testing.T) {
	dict := cos.NewDict()
	dict.Set("Type", cos.Name("Test"))
	dict.Set("Kids", cos.NewArray(cos.NewReference(3, 0), cos.NewReference(4, 1)))
	stmDict := cos.NewDict()
	stmDict.Set("Filter", cos.Name("FlateDecode"))
	stmDict.Set("Length", cos.Integer(999))
	holes := cos.NewArray(cos.Integer(1))
	holes.Set(3, cos.Integer(4))

	cases := []cos.Object{
		cos.Integer(0),
		cos.Integer(-1234567890123),
		cos.Real(1.5),
		cos.Real(-0.001),
		cos.NewReal(1e-50),
		cos.NewReal(-1e-50),
		cos.NewReal(1e300),
		cos.Bool(true),
		cos.Name("Name"),
		cos.Name("A B#C/D(E)\x00\xff"),
		cos.Name(""),
		cos.LiteralString("hello (world)"),
		cos.LiteralString("unbalanced ) ("),
		cos.LiteralString("\x00\x01\r\n\t\b\f\\\xff"),
		cos.HexString([]byte{0, 1, 2, 0xfe, 0xff}),
		cos.HexString(nil),
		cos.NewReference(1, 0),
		cos.NewReference(0xffffffff, 0xffff),
		cos.NewArray(),
		holes,
		dict,
		cos.NewStream(stmDict, []byte("some\nbinary\x00data endstream")),
		cos.NewStream(nil, nil),
	}
	for _, obj := range cases {
		in := cos.Format(obj)
		t.Run(in, func(t *testing.T) {
			got, err := readAll([]byte(in))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 {
				t.Fatalf("got %d objects", len(got))
			}
			if d := cmp.Diff(obj, got[0]); d != "" {
				t.Error(d)
			}
			if s, ok := obj.(cos.String); ok {
				if got[0].(cos.String).Hex != s.Hex {
					t.Error("string form changed")
				}
			}
		})
	}
}

func TestSubnormalReal(t *testing.T) {
	got, err := readAll([]byte("0.000000000000000000000000000000000000000000001"))
	if err != nil {
		t.Fatal(err)
	}
	x, ok := got[0].(cos.Real)
	if !ok || x <= 0 || x != cos.NewReal(1e-45) {
		t.Errorf("got %v", got[0])
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add("1 2 3 R")
	f.Add("<< /A [1 2.5 (x) <0a>] /B << /C null >> >>")
	f.Add("/N#20ame (str\\)ing) true")
	f.Add("<< /Length 3 >> stream\nabc\nendstream")
	f.Add("[10 (A String) invalid (valid)]")
	f.Fuzz(func(t *testing.T, in string) {
		objs, err := readAll([]byte(in))
		if err != nil {
			return
		}

		var buf []byte
		for _, obj := range objs {
			s := cos.Format(obj)
			buf = append(buf, s...)
			buf = append(buf, '\n')
		}

		objs2, err := readAll(buf)
		if err != nil {
			t.Fatalf("%q: %v", buf, err)
		}
		if d := cmp.Diff(objs, objs2); d != "" {
			t.Errorf("%q: %s", buf, d)
		}
	})
}
