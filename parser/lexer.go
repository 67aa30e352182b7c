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
	"io"

	"seehuhn.de/go/cos"
	"seehuhn.de/go/cos/source"
)

// Lexer splits PDF input into tokens.
//
// A token is either a maximal run of regular characters, or a single
// delimiter character.  White space and comments separate tokens and are
// never returned.  Lexing does not fail on malformed input; only errors from
// the underlying source are reported.
type Lexer struct {
	src *source.Source
}

// NewLexer returns a new lexer which reads from src.
func NewLexer(src *source.Source) (*Lexer, error) {
	if src == nil {
		return nil, cos.ErrNilSource
	}
	return &Lexer{src: src}, nil
}

// Source returns the underlying byte source.
func (l *Lexer) Source() *source.Source {
	return l.src
}

// Pos returns the current position in the input.
func (l *Lexer) Pos() int64 {
	return l.src.Pos()
}

// Seek moves to the absolute position pos.
func (l *Lexer) Seek(pos int64) error {
	return l.src.Seek(pos)
}

// Mark returns a record of the current position, for use with [Lexer.Reset].
func (l *Lexer) Mark() source.Mark {
	return l.src.Mark()
}

// Reset moves back to a position recorded by [Lexer.Mark].
func (l *Lexer) Reset(m source.Mark) {
	l.src.Reset(m)
}

// PeekByte returns the next byte without consuming it.  At the end of the
// input, io.EOF is returned.
func (l *Lexer) PeekByte() (byte, error) {
	return l.src.PeekByte()
}

// SkipSpaces skips white space and comments.  A comment extends from a
// '%' character to the end of the line.
func (l *Lexer) SkipSpaces() error {
	for {
		c, err := l.src.PeekByte()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		switch {
		case cos.IsSpace(c):
			l.src.Skip(1)
		case c == '%':
			if err := l.skipComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) skipComment() error {
	for {
		c, err := l.src.ReadByte()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if c == '\n' || c == '\r' {
			return nil
		}
	}
}

// NextToken skips white space and comments and then returns the next token.
// At the end of the input, NextToken returns (nil, nil).
func (l *Lexer) NextToken() ([]byte, error) {
	err := l.SkipSpaces()
	if err != nil {
		return nil, err
	}

	c, err := l.src.ReadByte()
	if err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	if !cos.IsRegular(c) {
		return []byte{c}, nil
	}

	tok := []byte{c}
	for {
		c, err := l.src.PeekByte()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if !cos.IsRegular(c) {
			break
		}
		l.src.Skip(1)
		tok = append(tok, c)
	}
	return tok, nil
}

// peekToken returns the next token without consuming it.
func (l *Lexer) peekToken() ([]byte, error) {
	m := l.src.Mark()
	tok, err := l.NextToken()
	l.src.Reset(m)
	return tok, err
}
