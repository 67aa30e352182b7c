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

import "testing"

func TestEqual(t *testing.T) {
	withLength := func(n int, data string) *Stream {
		d := NewDict()
		d.Set("Length", Integer(n))
		d.Set("Filter", Name("FlateDecode"))
		return NewStream(d, []byte(data))
	}

	cases := []struct {
		name string
		a, b Object
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil vs int", nil, Integer(0), false},
		{"int", Integer(1), Integer(1), true},
		{"int vs real", Integer(1), Real(1), false},
		{"real", Real(0.5), Real(0.5), true},
		{"name", Name("A"), Name("B"), false},
		{"string forms", LiteralString("ab"), HexString([]byte("ab")), true},
		{"string bytes", LiteralString("ab"), LiteralString("ac"), false},
		{"string vs name", LiteralString("A"), Name("A"), false},
		{"reference", NewReference(1, 0), NewReference(1, 0), true},
		{"reference gen", NewReference(1, 0), NewReference(1, 1), false},
		{"array", NewArray(Integer(1), nil), NewArray(Integer(1), nil), true},
		{"array length", NewArray(Integer(1)), NewArray(Integer(1), nil), false},
		{"array vs dict", NewArray(), NewDict(), false},
		{
			"dict order",
			DictFromMap(map[Name]Object{"A": Integer(1), "B": Integer(2)}),
			func() Object {
				d := NewDict()
				d.Set("B", Integer(2))
				d.Set("A", Integer(1))
				return d
			}(),
			true,
		},
		{
			"dict value",
			DictFromMap(map[Name]Object{"A": Integer(1)}),
			DictFromMap(map[Name]Object{"A": Integer(2)}),
			false,
		},
		{
			"dict keys",
			DictFromMap(map[Name]Object{"A": Integer(1)}),
			DictFromMap(map[Name]Object{"A": Integer(1), "B": Integer(1)}),
			false,
		},
		{
			"empty name key",
			DictFromMap(map[Name]Object{"": Integer(1)}),
			DictFromMap(map[Name]Object{"": Integer(1)}),
			true,
		},
		{
			"empty name value",
			DictFromMap(map[Name]Object{"": Integer(1)}),
			DictFromMap(map[Name]Object{"": Integer(2)}),
			false,
		},
		{"empty name missing", DictFromMap(map[Name]Object{"": Integer(2)}), NewDict(), false},
		{
			"empty name in stream",
			NewStream(DictFromMap(map[Name]Object{"": Integer(1), "Length": Integer(3)}), []byte("abc")),
			NewStream(DictFromMap(map[Name]Object{"": Integer(2)}), []byte("abc")),
			false,
		},
		{"stream length", withLength(1, "abc"), withLength(99, "abc"), true},
		{"stream missing length", withLength(3, "abc"), func() Object {
			s := withLength(3, "abc")
			s.Dict.Delete("Length")
			return s
		}(), true},
		{"stream data", withLength(3, "abc"), withLength(3, "abd"), false},
		{"indirect", NewIndirect(Integer(3)), NewIndirect(Integer(3)), true},
		{"indirect vs direct", NewIndirect(Integer(3)), Integer(3), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal(%s, %s) = %t", Format(tc.a), Format(tc.b), got)
			}
			if got := Equal(tc.b, tc.a); got != tc.want {
				t.Errorf("Equal is not symmetric")
			}
		})
	}
}

func TestEqualCycles(t *testing.T) {
	a := NewArray()
	a.Append(Integer(1), a)
	b := NewArray()
	b.Append(Integer(1), b)
	if !Equal(a, b) {
		t.Error("equal cyclic arrays reported as different")
	}

	d1 := NewDict()
	d1.Set("Self", d1)
	d1.Set("X", Integer(1))
	d2 := NewDict()
	d2.Set("Self", d2)
	d2.Set("X", Integer(2))
	if Equal(d1, d2) {
		t.Error("different cyclic dicts reported as equal")
	}

	// a cycle of length two against a cycle of length one
	p := NewDict()
	q := NewDict()
	p.Set("Next", q)
	q.Set("Next", p)
	r := NewDict()
	r.Set("Next", r)
	if !Equal(p, r) {
		t.Error("unrolled cycles reported as different")
	}
}

func TestEqualMethods(t *testing.T) {
	if !NewDict().Equal(NewDict()) {
		t.Error("Dict.Equal")
	}
	if !NewArray(Name("a")).Equal(NewArray(Name("a"))) {
		t.Error("Array.Equal")
	}
	if !NewStream(nil, []byte("x")).Equal(NewStream(nil, []byte("x"))) {
		t.Error("Stream.Equal")
	}
	if !LiteralString("x").Equal(HexString([]byte("x"))) {
		t.Error("String.Equal")
	}
	var nilIndirect *Indirect
	if nilIndirect.Equal(NewIndirect(nil)) || !nilIndirect.Equal(nil) {
		t.Error("Indirect.Equal with nil")
	}
}
