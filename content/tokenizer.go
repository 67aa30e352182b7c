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

package content

import (
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/cos"
	"seehuhn.de/go/cos/parser"
	"seehuhn.de/go/cos/source"
)

// Token is an element of a content stream.  If Op is nil, the token is the
// operand Operand (which is nil for the PDF null object).  Otherwise the
// token is the operator Op.
type Token struct {
	Operand cos.Object
	Op      *Operator
}

// IsOperator reports whether t is an operator.
func (t Token) IsOperator() bool {
	return t.Op != nil
}

func (t Token) String() string {
	if t.Op != nil {
		return t.Op.String()
	}
	return cos.Format(t.Operand)
}

// Tokenizer reads the tokens of a content stream.
//
// Operands which cannot be parsed are skipped.  Keywords which are not
// operands are returned as operators, even if the operator table does not
// list them.
type Tokenizer struct {
	p     *parser.Parser
	src   *source.Source
	table OperatorTable

	begin, data, end OpName
}

// NewTokenizer returns a tokenizer which reads from src.  If table is nil,
// [DefaultOperators] is used.
func NewTokenizer(src *source.Source, table OperatorTable) (*Tokenizer, error) {
	p, err := parser.New(src, nil)
	if err != nil {
		return nil, err
	}
	if table == nil {
		table = DefaultOperators
	}
	t := &Tokenizer{
		p:     p,
		src:   src,
		table: table,
	}
	t.begin, t.data, t.end = table.InlineImageMarkers()
	return t, nil
}

// Parse splits the content stream data into tokens.
func Parse(data []byte) ([]Token, error) {
	t, err := NewTokenizer(source.FromBytes(data), nil)
	if err != nil {
		return nil, err
	}
	return t.Tokens()
}

// Tokens reads all remaining tokens.
func (t *Tokenizer) Tokens() ([]Token, error) {
	var res []Token
	for {
		tok, err := t.Next()
		if err == io.EOF {
			return res, nil
		} else if err != nil {
			return res, err
		}
		res = append(res, tok)
	}
}

// Next returns the next token.  At the end of the content stream, io.EOF is
// returned.
func (t *Tokenizer) Next() (Token, error) {
	for {
		pos := t.p.Pos()
		obj, err := t.p.NextParsedToken()
		switch {
		case err == nil:
			return Token{Operand: obj}, nil
		case errors.Is(err, parser.ErrNoMatch):
			op, err := t.nextOperator()
			if err != nil {
				return Token{}, err
			}
			return Token{Op: op}, nil
		case cos.IsMalformed(err) && !cos.IsTruncated(err):
			// skip the malformed operand
			if t.p.Pos() == pos {
				t.src.Skip(1)
			}
		default:
			return Token{}, err
		}
	}
}

func (t *Tokenizer) nextOperator() (*Operator, error) {
	tok, err := t.p.NextToken()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, io.EOF
	}

	name := OpName(tok)
	op := &Operator{
		Name: name,
		Info: t.table.Lookup(name),
	}
	if name == t.begin {
		err := t.readInlineImage(op)
		if err != nil {
			return nil, err
		}
	}
	return op, nil
}

// readInlineImage reads the image parameters and the image data of an
// inline image.  On entry, the BI operator has been consumed.  On success,
// the input is positioned after the EI operator.
func (t *Tokenizer) readInlineImage(op *Operator) error {
	start := t.p.Pos()

	params := cos.NewDict()
	for {
		m := t.p.Mark()
		obj, err := t.p.NextParsedToken()
		key, isName := obj.(cos.Name)
		if err != nil || !isName {
			t.p.Reset(m)
			if err != nil && err != io.EOF && !errors.Is(err, parser.ErrNoMatch) {
				return err
			}
			break
		}

		m = t.p.Mark()
		val, err := t.p.NextParsedToken()
		if err != nil {
			t.p.Reset(m)
			if err != io.EOF && !errors.Is(err, parser.ErrNoMatch) {
				return err
			}
			break
		}
		params.Set(key, val)
	}

	pos := t.p.Pos()
	tok, err := t.p.NextToken()
	if err != nil {
		return err
	}
	if tok == nil {
		return cos.Truncated(start, errors.New("unterminated inline image"))
	}
	if OpName(tok) != t.data {
		return &cos.MalformedFileError{
			Pos: pos,
			Err: fmt.Errorf("expected %s, found %q", t.data, tok),
		}
	}

	// A single white-space character follows the ID operator.
	c, err := t.src.ReadByte()
	if err == nil && !cos.IsSpace(c) {
		t.src.UnreadByte()
	} else if err != nil && err != io.EOF {
		return err
	}

	data, err := t.readImageData(start)
	if err != nil {
		return err
	}

	op.ImageParams = params
	op.ImageData = data
	return nil
}

// readImageData reads bytes up to the end marker of the inline image.  A
// candidate end marker must be followed by white space or the end of the
// input.  If the end marker is preceded by white space, this white space is
// not part of the image data.
func (t *Tokenizer) readImageData(start int64) ([]byte, error) {
	end := []byte(t.end)
	if len(end) == 0 {
		return nil, errors.New("empty inline image end marker")
	}

	var data []byte
	for {
		c, err := t.src.ReadByte()
		if err == io.EOF {
			return nil, cos.Truncated(start, fmt.Errorf("missing %s", t.end))
		} else if err != nil {
			return nil, err
		}
		pos := t.src.Pos()

		if c == end[0] {
			ok, err := t.isEndMarkerAt(pos-1, end)
			if err != nil {
				return nil, err
			}
			if ok {
				t.src.Seek(pos - 1)
				break
			}
		} else if cos.IsSpace(c) {
			ok, err := t.isEndMarkerAt(pos, end)
			if err != nil {
				return nil, err
			}
			if ok {
				break
			}
		}
		data = append(data, c)
	}

	t.src.Skip(int64(len(end)))
	return data, nil
}

// isEndMarkerAt checks whether the end marker, followed by white space or
// the end of input, is found at position pos.  The current position is not
// changed.
func (t *Tokenizer) isEndMarkerAt(pos int64, end []byte) (bool, error) {
	m := t.src.Mark()
	defer t.src.Reset(m)

	err := t.src.Seek(pos)
	if err != nil {
		return false, nil
	}
	for _, want := range end {
		c, err := t.src.ReadByte()
		if err == io.EOF {
			return false, nil
		} else if err != nil {
			return false, err
		}
		if c != want {
			return false, nil
		}
	}
	c, err := t.src.PeekByte()
	if err == io.EOF {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return cos.IsSpace(c), nil
}

// Validate checks that all operators in the token sequence are valid for
// the given PDF version.  Within BX/EX compatibility sections, unknown
// operators are allowed.
func Validate(tokens []Token, v cos.Version) error {
	compatLevel := 0 // nesting depth of BX/EX sections
	for i, tok := range tokens {
		op := tok.Op
		if op == nil {
			continue
		}
		switch op.Name {
		case OpBeginCompatibility:
			compatLevel++
		case OpEndCompatibility:
			if compatLevel > 0 {
				compatLevel--
			}
		}

		err := op.Check(v)
		if err == nil {
			continue
		}
		if (err == ErrUnknown || err == ErrVersion) && compatLevel > 0 {
			// Operators introduced in later PDF versions are effectively
			// "unknown" in earlier versions.
			continue
		}
		return fmt.Errorf("token %d (%s): %w", i, op.Name, err)
	}
	return nil
}
