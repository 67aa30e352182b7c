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
	"bytes"
	"io"
	"strconv"
	"strings"
)

// Stream represents a stream object in a PDF file.
//
// The payload is held in memory, exactly as stored in the file (i.e. still
// encoded by the filters listed in the stream dictionary).  The /Length entry
// of the dictionary is not trusted: when the stream is written, /Length is
// set to the length of the payload.
type Stream struct {
	Dict *Dict
	data []byte
}

// NewStream returns a new stream with the given dictionary and payload.
// If dict is nil, an empty dictionary is used.
func NewStream(dict *Dict, data []byte) *Stream {
	if dict == nil {
		dict = NewDict()
	}
	return &Stream{Dict: dict, data: data}
}

// Data returns the payload of the stream.  The returned slice must not be
// modified.
func (x *Stream) Data() []byte {
	return x.data
}

// SetData replaces the payload of the stream.
func (x *Stream) SetData(data []byte) {
	x.data = data
}

// Len returns the length of the payload in bytes.
func (x *Stream) Len() int {
	return len(x.data)
}

// Reader returns a reader for the payload.
func (x *Stream) Reader() io.Reader {
	return bytes.NewReader(x.data)
}

// Filters returns the names listed in the /Filter entry of the stream
// dictionary.
func (x *Stream) Filters() []Name {
	switch f := x.Dict.Get("Filter").(type) {
	case Name:
		return []Name{f}
	case *Array:
		var res []Name
		for _, elem := range f.All() {
			if name, ok := elem.(Name); ok {
				res = append(res, name)
			}
		}
		return res
	}
	return nil
}

func (x *Stream) String() string {
	res := []string{}
	tp, ok := x.Dict.Get("Type").(Name)
	if ok {
		res = append(res, string(tp)+" Stream")
	} else {
		res = append(res, "Stream")
	}
	res = append(res, strconv.Itoa(len(x.data))+" bytes")
	for _, name := range x.Filters() {
		res = append(res, string(name))
	}
	return "<" + strings.Join(res, ", ") + ">"
}

// PDF implements the [Object] interface.
func (x *Stream) PDF(w io.Writer) error {
	return NewEncoder(w, nil).Encode(x)
}

// Equal reports whether x and other have equal dictionaries (ignoring
// /Length) and identical payloads.
func (x *Stream) Equal(other *Stream) bool {
	return Equal(x, other)
}

func (x *Stream) isObject() {}
