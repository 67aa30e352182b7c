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
	"strings"
)

// Dict represents a dictionary object in a PDF file.
//
// Keys are unique.  The order in which keys were first inserted is kept, and
// is used when the dictionary is written.  A Dict must be created using
// [NewDict] or [DictFromMap]; its identity (the pointer) is what the writer
// uses to recognise shared dictionaries.
type Dict struct {
	keys []Name
	vals map[Name]Object
}

// NewDict returns a new, empty dictionary.
func NewDict() *Dict {
	return &Dict{vals: make(map[Name]Object)}
}

// DictFromMap returns a new dictionary holding the entries of m.  The keys
// are inserted in sorted order.  Entries with a nil value are omitted.
func DictFromMap(m map[Name]Object) *Dict {
	d := &Dict{vals: make(map[Name]Object, len(m))}
	keys := make([]Name, 0, len(m))
	for key, val := range m {
		if val != nil {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	for _, key := range keys {
		d.Set(key, m[key])
	}
	return d
}

// Len returns the number of entries in the dictionary.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Get returns the value stored under key, or nil if the key is not present.
func (d *Dict) Get(key Name) Object {
	if d == nil {
		return nil
	}
	return d.vals[key]
}

// Has reports whether the dictionary contains key.
func (d *Dict) Has(key Name) bool {
	if d == nil {
		return false
	}
	_, ok := d.vals[key]
	return ok
}

// Set stores val under key.  Setting a key to nil (the PDF null object)
// removes the key, since the two are equivalent in PDF.
func (d *Dict) Set(key Name, val Object) {
	if val == nil {
		d.Delete(key)
		return
	}
	if d.vals == nil {
		d.vals = make(map[Name]Object)
	}
	if _, seen := d.vals[key]; !seen {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = val
}

// Delete removes key from the dictionary.
func (d *Dict) Delete(key Name) {
	if d == nil {
		return
	}
	if _, seen := d.vals[key]; !seen {
		return
	}
	delete(d.vals, key)
	d.keys = slices.DeleteFunc(d.keys, func(k Name) bool { return k == key })
}

// Keys returns the keys of the dictionary, in insertion order.
func (d *Dict) Keys() []Name {
	if d == nil {
		return nil
	}
	return slices.Clone(d.keys)
}

// All iterates over the entries of the dictionary, in insertion order.
func (d *Dict) All() iter.Seq2[Name, Object] {
	return func(yield func(Name, Object) bool) {
		if d == nil {
			return
		}
		for _, key := range d.keys {
			if !yield(key, d.vals[key]) {
				return
			}
		}
	}
}

// GetInt returns the integer stored under key.  The second return value
// indicates whether an integer was found.
func (d *Dict) GetInt(key Name) (Integer, bool) {
	x, ok := d.Get(key).(Integer)
	return x, ok
}

// GetName returns the name stored under key, or the empty name.
func (d *Dict) GetName(key Name) Name {
	x, _ := d.Get(key).(Name)
	return x
}

// GetDict returns the dictionary stored under key, or nil.
func (d *Dict) GetDict(key Name) *Dict {
	x, _ := d.Get(key).(*Dict)
	return x
}

// GetArray returns the array stored under key, or nil.
func (d *Dict) GetArray(key Name) *Array {
	x, _ := d.Get(key).(*Array)
	return x
}

func (d *Dict) String() string {
	res := []string{}
	tp, ok := d.Get("Type").(Name)
	if ok {
		res = append(res, string(tp)+" Dict")
	} else {
		res = append(res, "Dict")
	}
	if n := d.Len(); n != 1 {
		res = append(res, strconv.Itoa(n)+" entries")
	} else {
		res = append(res, "1 entry")
	}
	return "<" + strings.Join(res, ", ") + ">"
}

// PDF implements the [Object] interface.
func (d *Dict) PDF(w io.Writer) error {
	return NewEncoder(w, nil).Encode(d)
}

// Equal reports whether d and other have the same keys, mapped to
// structurally equal values.  The order of the keys is not compared.
func (d *Dict) Equal(other *Dict) bool {
	return Equal(d, other)
}

func (d *Dict) isObject() {}
