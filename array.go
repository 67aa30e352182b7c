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

import (
	"io"
	"iter"
	"slices"
	"strconv"
)

// Array represents an array object in a PDF file.
//
// Elements may be nil, which represents the PDF null object.
type Array struct {
	elems []Object
}

// NewArray returns a new array holding the given elements.
func NewArray(elems ...Object) *Array {
	return &Array{elems: slices.Clone(elems)}
}

// Len returns the number of elements in the array.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.elems)
}

// Get returns the element at index i.  Indices outside the array return
// nil.
func (a *Array) Get(i int) Object {
	if a == nil || i < 0 || i >= len(a.elems) {
		return nil
	}
	return a.elems[i]
}

// Set replaces the element at index i.  The array is grown if needed;
// the new slots are filled with null.
func (a *Array) Set(i int, val Object) {
	if i < 0 {
		panic("negative array index")
	}
	a.GrowToSize(i + 1)
	a.elems[i] = val
}

// Append adds elements at the end of the array.
func (a *Array) Append(vals ...Object) {
	a.elems = append(a.elems, vals...)
}

// GrowToSize makes sure that the array has at least n elements, padding
// with null as needed.
func (a *Array) GrowToSize(n int) {
	if n <= len(a.elems) {
		return
	}
	a.elems = append(a.elems, make([]Object, n-len(a.elems))...)
}

// Remove deletes the element at index i, shifting later elements down.
func (a *Array) Remove(i int) {
	if i < 0 || i >= len(a.elems) {
		return
	}
	a.elems = slices.Delete(a.elems, i, i+1)
}

// Elements returns a copy of the array elements.
func (a *Array) Elements() []Object {
	if a == nil {
		return nil
	}
	return slices.Clone(a.elems)
}

// All iterates over the index/element pairs of the array.
func (a *Array) All() iter.Seq2[int, Object] {
	return func(yield func(int, Object) bool) {
		if a == nil {
			return
		}
		for i, elem := range a.elems {
			if !yield(i, elem) {
				return
			}
		}
	}
}

func (a *Array) String() string {
	return "<Array, " + strconv.Itoa(a.Len()) + " elements>"
}

// PDF implements the [Object] interface.
func (a *Array) PDF(w io.Writer) error {
	return NewEncoder(w, nil).Encode(a)
}

// Equal reports whether a and other have the same length and structurally
// equal elements.
func (a *Array) Equal(other *Array) bool {
	return Equal(a, other)
}

func (a *Array) isObject() {}
