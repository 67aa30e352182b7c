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

package source

import (
	"golang.org/x/exp/mmap"
)

// Open memory-maps the named file and returns a source for its contents.
// The source must be closed after use.
func Open(path string) (*Source, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	s, err := New(m, int64(m.Len()))
	if err != nil {
		m.Close()
		return nil, err
	}
	s.closer = m
	return s, nil
}
