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
	"errors"
	"io"
	"math"

	"seehuhn.de/go/cos"
)

// NextIndirectObject reads an indirect object of the form
// "N G obj ... endobj".  A missing endobj keyword is tolerated.
func (p *Parser) NextIndirectObject() (*cos.Indirect, error) {
	err := p.SkipSpaces()
	if err != nil {
		return nil, err
	}
	pos := p.Pos()

	number, err := p.nextUnsigned(math.MaxUint32)
	if err != nil {
		return nil, err
	}
	generation, err := p.nextUnsigned(math.MaxUint16)
	if err != nil {
		return nil, err
	}
	tok, err := p.NextToken()
	if err != nil {
		return nil, err
	}
	if string(tok) != "obj" {
		if tok == nil {
			return nil, cos.Truncated(pos, nil)
		}
		return nil, p.errorf(pos, "expected obj keyword")
	}
	ref := cos.NewReference(uint32(number), uint16(generation))

	obj, err := p.NextParsedToken()
	if err == io.EOF {
		return nil, cos.Truncated(pos, nil)
	} else if errors.Is(err, ErrNoMatch) {
		tok, err2 := p.peekToken()
		if err2 != nil {
			return nil, err2
		}
		if string(tok) != "endobj" {
			return nil, cos.Wrap(p.errorf(p.Pos(), "unexpected token %q", tok), ref.String())
		}
		// an empty object is read as null
		p.recovered(p.Pos(), errors.New("missing object body"))
		obj, err = nil, nil
	}
	if err != nil {
		return nil, cos.Wrap(err, ref.String())
	}

	tok, err = p.peekToken()
	if err != nil {
		return nil, err
	}
	if string(tok) == "endobj" {
		_, err = p.NextToken()
		if err != nil {
			return nil, err
		}
	} else {
		p.recovered(p.Pos(), errors.New("missing endobj"))
	}

	return &cos.Indirect{Obj: obj, Ref: ref}, nil
}

func (p *Parser) nextUnsigned(limit int64) (int64, error) {
	pos := p.Pos()
	obj, err := p.NextNumber()
	if err != nil {
		return 0, err
	}
	x, ok := obj.(cos.Integer)
	if !ok || x < 0 || int64(x) > limit {
		return 0, p.errorf(pos, "invalid object header")
	}
	return int64(x), nil
}
