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

import "bytes"

// Equal reports whether a and b are structurally equal.
//
// Containers are compared by content, not by identity.  For strings, only
// the bytes are compared and the Hex flag is ignored.  The /Length entry of
// stream dictionaries is ignored, since it is recomputed when a stream is
// written.  An Integer is never equal to a Real.  Equal terminates on cyclic
// object graphs.
func Equal(a, b Object) bool {
	c := &comparer{seen: make(map[pair]bool)}
	return c.equal(a, b)
}

type pair struct {
	a, b Object
}

type comparer struct {
	// seen holds the pairs of containers which are currently being
	// compared, or which have been found equal.
	seen map[pair]bool
}

func (c *comparer) equal(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch a := a.(type) {
	case Bool, Integer, Real, Name, Reference:
		return a == b
	case String:
		b, ok := b.(String)
		return ok && bytes.Equal(a.Value, b.Value)
	case *Array:
		b, ok := b.(*Array)
		if !ok {
			return false
		}
		if a == b || c.enter(a, b) {
			return true
		}
		if a.Len() != b.Len() {
			return false
		}
		for i, elem := range a.elems {
			if !c.equal(elem, b.elems[i]) {
				return false
			}
		}
		return true
	case *Dict:
		b, ok := b.(*Dict)
		if !ok {
			return false
		}
		if a == b || c.enter(a, b) {
			return true
		}
		return c.equalDict(a, b, false)
	case *Stream:
		b, ok := b.(*Stream)
		if !ok {
			return false
		}
		if a == b || c.enter(a, b) {
			return true
		}
		return bytes.Equal(a.data, b.data) && c.equalDict(a.Dict, b.Dict, true)
	case *Indirect:
		b, ok := b.(*Indirect)
		if !ok {
			return false
		}
		if a == b || c.enter(a, b) {
			return true
		}
		return c.equal(a.Obj, b.Obj)
	default:
		return false
	}
}

// enter records that the containers a and b are being compared.  If the
// pair has been seen before, enter returns true and the caller treats the
// pair as equal.  Any difference is then found on the path which entered
// the pair first.
func (c *comparer) enter(a, b Object) bool {
	p := pair{a, b}
	if c.seen[p] {
		return true
	}
	c.seen[p] = true
	return false
}

// equalDict compares two dictionaries.  If skipLength is set, the /Length
// entries are ignored.
func (c *comparer) equalDict(a, b *Dict, skipLength bool) bool {
	count := 0
	for key, val := range a.All() {
		if skipLength && key == "Length" {
			continue
		}
		count++
		if !c.equal(val, b.Get(key)) {
			return false
		}
	}
	other := b.Len()
	if skipLength && b.Has("Length") {
		other--
	}
	return count == other
}
