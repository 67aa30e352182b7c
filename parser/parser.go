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

// Package parser reads PDF objects from a byte source.
//
// The parser is permissive: where possible, malformed elements inside
// arrays and dictionaries are skipped and parsing continues.  Truncated input
// and unexpected object types at the strict entry points (for example
// [Parser.NextName]) are reported as a [*cos.MalformedFileError].
package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"seehuhn.de/go/cos"
	"seehuhn.de/go/cos/source"
)

// ErrNoMatch is returned by [Parser.NextParsedToken] when the input at the
// current position is not the start of a PDF object.  No input is consumed
// in this case.
var ErrNoMatch = errors.New("not a PDF object")

// Options control the behaviour of a [Parser].
// A nil *Options is equivalent to the zero value.
type Options struct {
	// Resolve, if set, is used to look up indirect objects.  The parser
	// only uses this for stream /Length values given as references.
	Resolve func(cos.Reference) (cos.Object, error)

	// OnRecover, if set, is called every time the parser skips malformed
	// input and continues.
	OnRecover func(pos int64, err error)
}

// Parser reads PDF objects from a byte source.
//
// A Parser must not be used concurrently from different goroutines.
type Parser struct {
	*Lexer

	resolve   func(cos.Reference) (cos.Object, error)
	onRecover func(pos int64, err error)
}

// New returns a new parser which reads from src.
func New(src *source.Source, opt *Options) (*Parser, error) {
	lex, err := NewLexer(src)
	if err != nil {
		return nil, err
	}
	if opt == nil {
		opt = &Options{}
	}
	return &Parser{
		Lexer:     lex,
		resolve:   opt.Resolve,
		onRecover: opt.OnRecover,
	}, nil
}

// NextParsedToken reads the next PDF object.
//
// If the input at the current position does not start a PDF object, for
// example because it is a keyword other than true, false, or null, the
// error ErrNoMatch is returned and the position is left unchanged (after
// skipping white space).  The PDF null object is returned as (nil, nil).
// At the end of the input, io.EOF is returned.
func (p *Parser) NextParsedToken() (cos.Object, error) {
	err := p.SkipSpaces()
	if err != nil {
		return nil, err
	}
	c, err := p.PeekByte()
	if err != nil {
		return nil, err
	}

	switch {
	case c == '/':
		return asObject(p.NextName())
	case c == '(':
		return asObject(p.NextLiteralString())
	case c == '<':
		buf, err := p.src.Peek(2)
		if err != nil {
			return nil, err
		}
		if len(buf) < 2 || buf[1] != '<' {
			return asObject(p.NextHexString())
		}
		dict, err := p.NextDictionary()
		if err != nil {
			return nil, err
		}
		return p.streamOrDict(dict)
	case c == '[':
		return asObject(p.NextArray())
	case c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.':
		return p.NextNumberOrIndirectReference()
	case c == 't' || c == 'f' || c == 'n':
		m := p.Mark()
		tok, err := p.NextToken()
		if err != nil {
			return nil, err
		}
		switch string(tok) {
		case "true":
			return cos.Bool(true), nil
		case "false":
			return cos.Bool(false), nil
		case "null":
			return nil, nil
		}
		p.Reset(m)
	}
	return nil, ErrNoMatch
}

// streamOrDict checks whether dict is followed by the "stream" keyword.
// If so, the stream data is read and the stream is returned.
func (p *Parser) streamOrDict(dict *cos.Dict) (cos.Object, error) {
	tok, err := p.peekToken()
	if err != nil {
		return nil, err
	}
	if string(tok) != "stream" {
		return dict, nil
	}
	return asObject(p.NextStream(dict))
}

// asObject converts the result of one of the typed Next* methods.  On
// error, the returned object is nil, never a typed nil pointer or a zero
// value.
func asObject[T cos.Object](x T, err error) (cos.Object, error) {
	if err != nil {
		return nil, err
	}
	return x, nil
}

// NextNumber reads an integer or a real number.
func (p *Parser) NextNumber() (cos.Object, error) {
	err := p.SkipSpaces()
	if err != nil {
		return nil, err
	}
	pos := p.Pos()

	var buf []byte
	for {
		c, err := p.PeekByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if !(c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			break
		}
		p.src.Skip(1)
		buf = append(buf, c)
	}
	if len(buf) == 0 {
		return nil, p.errorf(pos, "expected a number")
	}

	x := parseNumber(buf)
	if x == nil {
		return nil, p.errorf(pos, "malformed number %q", buf)
	}
	return x, nil
}

// parseNumber tries to interpret s as a number.
// The function returns [cos.Integer] or [cos.Real] in case s is a valid
// number, and nil otherwise.
func parseNumber(s []byte) cos.Object {
	x, err := strconv.ParseInt(string(s), 10, 64)
	if err == nil {
		return cos.Integer(x)
	}

	// Some writers produce double signs ("--5"), or signs in the middle
	// of a number ("0.00-5").  Such numbers are read as negative numbers.
	neg := false
	digits := make([]byte, 0, len(s))
	dots := 0
	for i, c := range s {
		switch c {
		case '+':
			if i > 0 {
				return nil
			}
		case '-':
			neg = true
		case '.':
			dots++
			digits = append(digits, c)
		default:
			digits = append(digits, c)
		}
	}
	if dots > 1 || len(digits) == dots {
		return nil
	}

	if dots == 0 {
		x, err := strconv.ParseInt(string(digits), 10, 64)
		if err == nil {
			if neg {
				x = -x
			}
			return cos.Integer(x)
		}
	}

	// Integers which are too large for int64 are read as reals.
	y, err := strconv.ParseFloat(string(digits), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	if neg {
		y = -y
	}
	return cos.NewReal(y)
}

// NextNumberOrIndirectReference reads a number.  If the number is followed
// by a second integer and the keyword "R", the three tokens are read as an
// indirect reference.  Otherwise, only the first number is consumed.
func (p *Parser) NextNumberOrIndirectReference() (cos.Object, error) {
	first, err := p.NextNumber()
	if err != nil {
		return nil, err
	}
	pos := p.Pos()

	m := p.Mark()
	gen, ok, err := p.tryGenerationAndR()
	if err != nil {
		return nil, err
	}
	if !ok {
		p.Reset(m)
		return first, nil
	}

	number, isInt := first.(cos.Integer)
	if !isInt || number < 0 || number > math.MaxUint32 {
		return nil, &cos.MalformedFileError{
			Pos: pos,
			Err: fmt.Errorf("%w: object number %s", cos.ErrMalformedReference, cos.Format(first)),
		}
	}
	if gen > math.MaxUint16 {
		return nil, &cos.MalformedFileError{
			Pos: pos,
			Err: fmt.Errorf("%w: generation %d", cos.ErrMalformedReference, gen),
		}
	}
	return cos.NewReference(uint32(number), uint16(gen)), nil
}

// tryGenerationAndR checks whether the input continues with an unsigned
// integer followed by the keyword R.  On success, both tokens are consumed.
func (p *Parser) tryGenerationAndR() (uint64, bool, error) {
	tok, err := p.NextToken()
	if err != nil || len(tok) == 0 {
		return 0, false, err
	}
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, false, nil
		}
	}
	r, err := p.NextToken()
	if err != nil || string(r) != "R" {
		return 0, false, err
	}

	gen, err := strconv.ParseUint(string(tok), 10, 64)
	if err != nil {
		gen = math.MaxUint64
	}
	return gen, true, nil
}

// NextName reads a name object.
func (p *Parser) NextName() (cos.Name, error) {
	err := p.SkipSpaces()
	if err != nil {
		return "", err
	}
	pos := p.Pos()
	c, err := p.src.ReadByte()
	if err == io.EOF {
		return "", cos.Truncated(pos, nil)
	} else if err != nil {
		return "", err
	}
	if c != '/' {
		p.src.UnreadByte()
		return "", p.errorf(pos, "expected a name")
	}

	var name []byte
	for {
		c, err := p.PeekByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return "", err
		}

		if c == '#' {
			if b, ok := p.tryHex(); ok {
				name = append(name, b)
				continue
			}
		} else if !cos.IsRegular(c) {
			break
		}
		name = append(name, c)
		p.src.Skip(1)
	}
	return cos.InternName(name), nil
}

// tryHex decodes a #xx escape in a name.  If the input does not contain
// two hex digits after the '#', nothing is consumed.
func (p *Parser) tryHex() (byte, bool) {
	digits, err := p.src.Peek(3)
	if err != nil || len(digits) != 3 {
		return 0, false
	}
	high := hexDigit(digits[1])
	low := hexDigit(digits[2])
	if high == 255 || low == 255 {
		return 0, false
	}
	p.src.Skip(3)
	return high<<4 | low, true
}

// NextString reads a literal or hexadecimal string.
func (p *Parser) NextString() (cos.String, error) {
	err := p.SkipSpaces()
	if err != nil {
		return cos.String{}, err
	}
	c, err := p.PeekByte()
	if err == io.EOF {
		return cos.String{}, cos.Truncated(p.Pos(), nil)
	} else if err != nil {
		return cos.String{}, err
	}
	switch c {
	case '(':
		return p.NextLiteralString()
	case '<':
		return p.NextHexString()
	}
	return cos.String{}, p.errorf(p.Pos(), "expected a string")
}

// NextLiteralString reads a string enclosed in parentheses.
func (p *Parser) NextLiteralString() (cos.String, error) {
	err := p.SkipSpaces()
	if err != nil {
		return cos.String{}, err
	}
	pos := p.Pos()
	if err := p.expectByte('('); err != nil {
		return cos.String{}, err
	}

	var res []byte
	bracketLevel := 1
	ignoreLF := false
	for {
		b, err := p.readByteInObject(pos)
		if err != nil {
			return cos.String{}, err
		}
		if ignoreLF && b == '\n' {
			ignoreLF = false
			continue
		}
		ignoreLF = false
		switch b {
		case '(':
			bracketLevel++
			res = append(res, b)
		case ')':
			bracketLevel--
			if bracketLevel == 0 {
				return cos.String{Value: res}, nil
			}
			res = append(res, b)
		case '\r':
			// An unescaped end-of-line marker is read as a single LF.
			res = append(res, '\n')
			ignoreLF = true
		case '\\':
			b, err = p.readByteInObject(pos)
			if err != nil {
				return cos.String{}, err
			}
			switch b {
			case 'n':
				res = append(res, '\n')
			case 'r':
				res = append(res, '\r')
			case 't':
				res = append(res, '\t')
			case 'b':
				res = append(res, '\b')
			case 'f':
				res = append(res, '\f')
			case '\n':
				// line continuation
			case '\r':
				ignoreLF = true
			case '0', '1', '2', '3', '4', '5', '6', '7':
				oct := b - '0'
				for range 2 {
					b, err = p.PeekByte()
					if err == io.EOF {
						break
					} else if err != nil {
						return cos.String{}, err
					}
					if b < '0' || b > '7' {
						break
					}
					p.src.Skip(1)
					oct = oct*8 + (b - '0')
				}
				res = append(res, oct)
			default:
				// includes \( \) and \\
				res = append(res, b)
			}
		default:
			res = append(res, b)
		}
	}
}

// NextHexString reads a string enclosed in angle brackets.  White space
// and invalid characters between the brackets are ignored.  An odd number
// of hex digits is padded with a zero digit.
func (p *Parser) NextHexString() (cos.String, error) {
	err := p.SkipSpaces()
	if err != nil {
		return cos.String{}, err
	}
	pos := p.Pos()
	if err := p.expectByte('<'); err != nil {
		return cos.String{}, err
	}

	var res []byte
	first := true
	var hi byte
	for {
		b, err := p.readByteInObject(pos)
		if err != nil {
			return cos.String{}, err
		}
		if b == '>' {
			break
		}
		lo := hexDigit(b)
		if lo == 255 {
			if !cos.IsSpace(b) {
				p.recovered(p.Pos()-1, fmt.Errorf("invalid character %q in hex string", b))
			}
			continue
		}
		if first {
			hi = lo << 4
			first = false
		} else {
			res = append(res, hi|lo)
			first = true
		}
	}
	if !first {
		res = append(res, hi)
	}
	return cos.String{Value: res, Hex: true}, nil
}

// NextBoolean reads the keyword true or false.
func (p *Parser) NextBoolean() (cos.Bool, error) {
	tok, pos, err := p.nextKeyword()
	if err != nil {
		return false, err
	}
	switch string(tok) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	p.Seek(pos)
	return false, p.errorf(pos, "expected a boolean")
}

// NextNull reads the keyword null.  The null object is represented by a nil
// [cos.Object], so on success the function just returns nil.
func (p *Parser) NextNull() error {
	tok, pos, err := p.nextKeyword()
	if err != nil {
		return err
	}
	if string(tok) != "null" {
		p.Seek(pos)
		return p.errorf(pos, "expected null")
	}
	return nil
}

func (p *Parser) nextKeyword() ([]byte, int64, error) {
	err := p.SkipSpaces()
	if err != nil {
		return nil, 0, err
	}
	pos := p.Pos()
	tok, err := p.NextToken()
	if err != nil {
		return nil, pos, err
	}
	if tok == nil {
		return nil, pos, cos.Truncated(pos, nil)
	}
	return tok, pos, nil
}

// NextArray reads an array.
//
// Elements which cannot be parsed are skipped.  If the keyword endobj or
// endstream is found before the closing bracket, the array is returned as
// read so far and the keyword is not consumed.
func (p *Parser) NextArray() (*cos.Array, error) {
	err := p.SkipSpaces()
	if err != nil {
		return nil, err
	}
	start := p.Pos()
	if err := p.expectByte('['); err != nil {
		return nil, err
	}

	arr := cos.NewArray()
	for {
		err := p.SkipSpaces()
		if err != nil {
			return nil, err
		}
		pos := p.Pos()
		c, err := p.PeekByte()
		if err == io.EOF {
			return nil, cos.Truncated(pos, errors.New("unterminated array"))
		} else if err != nil {
			return nil, err
		}
		if c == ']' {
			p.src.Skip(1)
			return arr, nil
		}

		obj, err := p.NextParsedToken()
		if err == nil {
			arr.Append(obj)
			continue
		}

		stop, err := p.skipMalformed(pos, err)
		if err != nil {
			return nil, cos.Wrap(err, fmt.Sprintf("array at byte %d", start))
		}
		if stop {
			p.recovered(pos, errors.New("array terminated by keyword"))
			return arr, nil
		}
	}
}

// NextDictionary reads a dictionary.
//
// Entries with a malformed key or value are skipped.  If the keyword endobj
// or endstream is found before the closing ">>", the dictionary is returned
// as read so far and the keyword is not consumed.  If the input ends after
// malformed input has been skipped, the entries read so far are returned.
func (p *Parser) NextDictionary() (*cos.Dict, error) {
	err := p.SkipSpaces()
	if err != nil {
		return nil, err
	}
	start := p.Pos()
	buf, err := p.src.Peek(2)
	if err != nil {
		return nil, err
	}
	if string(buf) != "<<" {
		if len(buf) < 2 {
			return nil, cos.Truncated(start, nil)
		}
		return nil, p.errorf(start, "expected a dictionary")
	}
	p.src.Skip(2)

	dict := cos.NewDict()
	skipped := false
	for {
		err := p.SkipSpaces()
		if err != nil {
			return nil, err
		}
		pos := p.Pos()
		c, err := p.PeekByte()
		if err == io.EOF {
			if skipped {
				p.recovered(pos, errors.New("unterminated dictionary"))
				return dict, nil
			}
			return nil, cos.Truncated(pos, errors.New("unterminated dictionary"))
		} else if err != nil {
			return nil, err
		}

		if c == '>' {
			buf, err := p.src.Peek(2)
			if err != nil {
				return nil, err
			}
			if string(buf) == ">>" {
				p.src.Skip(2)
				return dict, nil
			}
		}

		if c != '/' {
			// not a key
			obj, err := p.NextParsedToken()
			if err == nil {
				err = p.errorf(pos, "unexpected %s as dictionary key", cos.Format(obj))
			}
			stop, err := p.skipMalformed(pos, err)
			if err != nil {
				return nil, cos.Wrap(err, fmt.Sprintf("dict at byte %d", start))
			}
			if stop {
				p.recovered(pos, errors.New("dictionary terminated by keyword"))
				return dict, nil
			}
			skipped = true
			continue
		}

		key, err := p.NextName()
		if err != nil {
			return nil, err
		}

		err = p.SkipSpaces()
		if err != nil {
			return nil, err
		}
		pos = p.Pos()
		if c, err := p.PeekByte(); err == io.EOF {
			if skipped {
				p.recovered(pos, errors.New("unterminated dictionary"))
				return dict, nil
			}
			return nil, cos.Truncated(pos, errors.New("unterminated dictionary"))
		} else if err != nil {
			return nil, err
		} else if c == '>' {
			if buf, _ := p.src.Peek(2); string(buf) == ">>" {
				p.recovered(pos, fmt.Errorf("missing value for /%s", key))
				continue
			}
		}

		val, err := p.NextParsedToken()
		if err == nil {
			dict.Set(key, val)
			continue
		}
		stop, err := p.skipMalformed(pos, err)
		if err != nil {
			return nil, cos.Wrap(err, fmt.Sprintf("dict at byte %d", start))
		}
		if stop {
			p.recovered(pos, errors.New("dictionary terminated by keyword"))
			return dict, nil
		}
		skipped = true
	}
}

// skipMalformed handles an error returned by NextParsedToken inside an
// array or dictionary.  If err is recoverable, the offending input is
// skipped and a nil error is returned.  If the input at pos is the keyword
// endobj or endstream, stop is set and nothing is consumed.
func (p *Parser) skipMalformed(pos int64, err error) (stop bool, _ error) {
	switch {
	case errors.Is(err, ErrNoMatch):
		tok, err := p.peekToken()
		if err != nil {
			return false, err
		}
		if isObjectEnd(tok) {
			return true, nil
		}
		p.recovered(pos, fmt.Errorf("skipping unexpected token %q", tok))
		_, err = p.NextToken()
		return false, err
	case isRecoverable(err):
		p.recovered(pos, err)
		if p.Pos() == pos {
			p.src.Skip(1)
		}
		return false, nil
	default:
		return false, err
	}
}

func isObjectEnd(tok []byte) bool {
	return string(tok) == "endobj" || string(tok) == "endstream"
}

// isRecoverable reports whether err indicates a malformed element which can
// be skipped by the enclosing container.
func isRecoverable(err error) bool {
	return cos.IsMalformed(err) && !cos.IsTruncated(err)
}

func (p *Parser) expectByte(want byte) error {
	pos := p.Pos()
	c, err := p.src.ReadByte()
	if err == io.EOF {
		return cos.Truncated(pos, nil)
	} else if err != nil {
		return err
	}
	if c != want {
		p.src.UnreadByte()
		return p.errorf(pos, "expected %q, found %q", want, c)
	}
	return nil
}

// readByteInObject reads the next byte of an object which started at
// start.  End of input is reported as a truncation error.
func (p *Parser) readByteInObject(start int64) (byte, error) {
	c, err := p.src.ReadByte()
	if err == io.EOF {
		return 0, cos.Truncated(start, nil)
	}
	return c, err
}

func (p *Parser) recovered(pos int64, err error) {
	if p.onRecover != nil {
		p.onRecover(pos, err)
	}
}

func (p *Parser) errorf(pos int64, format string, args ...any) error {
	return &cos.MalformedFileError{
		Pos: pos,
		Err: fmt.Errorf(format, args...),
	}
}

func hexDigit(c byte) byte {
	if c >= '0' && c <= '9' {
		return c - '0'
	} else if c >= 'A' && c <= 'F' {
		return c - 'A' + 10
	} else if c >= 'a' && c <= 'f' {
		return c - 'a' + 10
	} else {
		return 255
	}
}
