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
	"bytes"
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/cos"
)

var (
	endstreamKeyword = []byte("endstream")
	endobjKeyword    = []byte("endobj")
)

// NextStream reads the "stream" keyword, followed by the stream data, and
// returns a stream with the given dictionary.
//
// If the /Length entry of dict gives the correct data length, it is used.
// Otherwise, for example if /Length is missing or wrong, the data extends up
// to the next "endstream" keyword.  If no endstream keyword is present, a
// following "endobj" keyword is also accepted as the end of the stream data;
// in this case the endobj keyword is not consumed.
//
// The stream data are copied.  The /Length entry of dict is not modified.
func (p *Parser) NextStream(dict *cos.Dict) (*cos.Stream, error) {
	if dict == nil {
		dict = cos.NewDict()
	}

	err := p.SkipSpaces()
	if err != nil {
		return nil, err
	}
	pos := p.Pos()
	tok, err := p.NextToken()
	if err != nil {
		return nil, err
	}
	if string(tok) != "stream" {
		p.Seek(pos)
		if tok == nil {
			return nil, cos.Truncated(pos, nil)
		}
		return nil, p.errorf(pos, "expected stream keyword")
	}

	length, err := p.streamLength(dict, pos)
	if err != nil {
		return nil, err
	}

	err = p.skipStreamEOL()
	if err != nil {
		return nil, err
	}
	start := p.Pos()

	if length >= 0 {
		data, ok, err := p.readDeclaredLength(start, length)
		if err != nil {
			return nil, err
		}
		if ok {
			return cos.NewStream(dict, data), nil
		}
		p.recovered(start, fmt.Errorf("stream /Length %d is wrong", length))
		err = p.Seek(start)
		if err != nil {
			return nil, err
		}
	}

	data, err := p.scanForEnd(start)
	if err != nil {
		return nil, err
	}
	return cos.NewStream(dict, data), nil
}

// streamLength returns the declared length of the stream data, or -1 if no
// usable length is given.
func (p *Parser) streamLength(dict *cos.Dict, pos int64) (int64, error) {
	obj := dict.Get("Length")
	if ref, isRef := obj.(cos.Reference); isRef {
		if p.resolve == nil {
			return -1, nil
		}
		resolved, err := p.resolve(ref)
		if err != nil {
			if cos.IsMalformed(err) {
				p.recovered(pos, err)
				return -1, nil
			}
			return 0, err
		}
		obj = resolved
		if ind, ok := obj.(*cos.Indirect); ok {
			obj = ind.Obj
		}
	}

	switch x := obj.(type) {
	case nil:
		return -1, nil
	case cos.Integer:
		if x < 0 {
			p.recovered(pos, fmt.Errorf("negative stream /Length %d", x))
			return -1, nil
		}
		return int64(x), nil
	default:
		return 0, p.errorf(pos, "invalid stream /Length %s", cos.Format(obj))
	}
}

// skipStreamEOL skips the end-of-line marker after the stream keyword.
// Spaces and tabs before the EOL are also skipped.  If no EOL is found,
// nothing is consumed.
func (p *Parser) skipStreamEOL() error {
	m := p.Mark()
	for {
		c, err := p.src.ReadByte()
		if err == io.EOF {
			p.Reset(m)
			return nil
		} else if err != nil {
			return err
		}
		switch c {
		case ' ', '\t':
			continue
		case '\n':
			return nil
		case '\r':
			c, err := p.PeekByte()
			if err == nil && c == '\n' {
				p.src.Skip(1)
			} else if err != nil && err != io.EOF {
				return err
			}
			return nil
		default:
			p.Reset(m)
			return nil
		}
	}
}

// readDeclaredLength reads length bytes starting at start and checks that
// the data are followed by the endstream keyword.  On success the keyword is
// consumed.
func (p *Parser) readDeclaredLength(start, length int64) ([]byte, bool, error) {
	size := p.src.Size()
	if length > size-start {
		return nil, false, nil
	}

	data := make([]byte, length)
	_, err := p.src.ReadAt(data, start)
	if err != nil && !(err == io.EOF && start+length == size) {
		return nil, false, err
	}
	err = p.Seek(start + length)
	if err != nil {
		return nil, false, err
	}

	err = p.SkipSpaces()
	if err != nil {
		return nil, false, err
	}
	tok, err := p.NextToken()
	if err != nil {
		return nil, false, err
	}
	if !bytes.Equal(tok, endstreamKeyword) {
		return nil, false, nil
	}
	return data, true, nil
}

// scanForEnd reads forward from start until the endstream keyword is found.
// If there is no endstream keyword, endobj is also accepted.  A single
// end-of-line marker before the keyword is not part of the data.
func (p *Parser) scanForEnd(start int64) ([]byte, error) {
	data, endPos, ok, err := p.findKeyword(start, endstreamKeyword)
	if err != nil {
		return nil, err
	}
	if ok {
		err = p.Seek(endPos + int64(len(endstreamKeyword)))
		if err != nil {
			return nil, err
		}
		return trimEOL(data), nil
	}

	data, endPos, ok, err = p.findKeyword(start, endobjKeyword)
	if err != nil {
		return nil, err
	}
	if ok {
		p.recovered(endPos, errors.New("stream terminated by endobj"))
		err = p.Seek(endPos)
		if err != nil {
			return nil, err
		}
		return trimEOL(data), nil
	}

	return nil, cos.Truncated(start, cos.ErrTruncatedStream)
}

// findKeyword searches for kw, starting at start.  The keyword must be
// preceded by a non-regular character, or be located at start.  On success,
// the data before the keyword and the position of the keyword are returned.
func (p *Parser) findKeyword(start int64, kw []byte) ([]byte, int64, bool, error) {
	err := p.Seek(start)
	if err != nil {
		return nil, 0, false, err
	}

	var buf []byte
	for {
		c, err := p.src.ReadByte()
		if err == io.EOF {
			return nil, 0, false, nil
		} else if err != nil {
			return nil, 0, false, err
		}
		buf = append(buf, c)

		if c != kw[len(kw)-1] || !bytes.HasSuffix(buf, kw) {
			continue
		}
		n := len(buf) - len(kw)
		if n > 0 && cos.IsRegular(buf[n-1]) {
			continue
		}
		return buf[:n], start + int64(n), true, nil
	}
}

// trimEOL removes a single trailing end-of-line marker from data.
func trimEOL(data []byte) []byte {
	switch {
	case bytes.HasSuffix(data, []byte("\r\n")):
		return data[:len(data)-2]
	case bytes.HasSuffix(data, []byte("\n")), bytes.HasSuffix(data, []byte("\r")):
		return data[:len(data)-1]
	}
	return data
}
