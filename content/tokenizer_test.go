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
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seehuhn.de/go/cos"
	"seehuhn.de/go/cos/source"
)

// ops returns the operator names in tokens, with operands replaced by "_".
func ops(tokens []Token) []string {
	var res []string
	for _, tok := range tokens {
		if tok.Op == nil {
			res = append(res, "_")
		} else {
			res = append(res, string(tok.Op.Name))
		}
	}
	return res
}

func TestTokens(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"q Q", []string{"q", "Q"}},
		{"q\n1 0 0 1 100 200 cm\nQ", []string{"q", "_", "_", "_", "_", "_", "_", "cm", "Q"}},
		{"% comment\nq%another\nQ", []string{"q", "Q"}},
		{"BT /F1 12 Tf (Hello) Tj ET", []string{"BT", "_", "_", "Tf", "_", "Tj", "ET"}},
		{"[(a) -10 (b)] TJ", []string{"_", "TJ"}},
		{"<</MCID 0>> BDC EMC", []string{"_", "BDC", "EMC"}},
		{"true false null n", []string{"_", "_", "_", "n"}},
		{"1.2.3 q", []string{"q"}},
		{"- q", []string{"q"}},
		{"1 2 foo", []string{"_", "_", "foo"}},
		{"/Im1 Do", []string{"_", "Do"}},
		{"0 0 m 10 10 l S", []string{"_", "_", "m", "_", "_", "l", "S"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			tokens, err := Parse([]byte(tc.in))
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tc.want, ops(tokens)); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestOperands(t *testing.T) {
	tokens, err := Parse([]byte("1 2.5 /N (s) <41> [1] null true 3 0 R x"))
	if err != nil {
		t.Fatal(err)
	}
	var got []cos.Object
	for _, tok := range tokens[:len(tokens)-1] {
		got = append(got, tok.Operand)
	}
	want := []cos.Object{
		cos.Integer(1),
		cos.Real(2.5),
		cos.Name("N"),
		cos.LiteralString("s"),
		cos.HexString([]byte("A")),
		cos.NewArray(cos.Integer(1)),
		nil,
		cos.Bool(true),
		cos.NewReference(3, 0),
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Error(d)
	}
	if op := tokens[len(tokens)-1].Op; op == nil || op.Name != "x" {
		t.Errorf("last token is %v", tokens[len(tokens)-1])
	}
}

func TestUnknownOperator(t *testing.T) {
	tokens, err := Parse([]byte("foo q"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens", len(tokens))
	}
	if tokens[0].Op.IsKnown() {
		t.Error("foo is known")
	}
	if !tokens[1].Op.IsKnown() {
		t.Error("q is unknown")
	}
}

func TestInlineImage(t *testing.T) {
	type testCase struct {
		name   string
		in     string
		params map[cos.Name]cos.Object
		data   string
		after  []string
	}
	cases := []testCase{
		{
			name:   "one byte",
			in:     "BI /W 1 /H 1 /BPC 8 /CS /G ID \x80 EI Q",
			params: map[cos.Name]cos.Object{"W": cos.Integer(1), "H": cos.Integer(1), "BPC": cos.Integer(8), "CS": cos.Name("G")},
			data:   "\x80",
			after:  []string{"Q"},
		},
		{
			name:   "newlines",
			in:     "BI\n/W 10\n/H 10\nID\nimagedata\nEI\n",
			params: map[cos.Name]cos.Object{"W": cos.Integer(10), "H": cos.Integer(10)},
			data:   "imagedata",
		},
		{
			name:   "no white space before EI",
			in:     "BI\n/W 10\n/H 10\n/L 4\nID\ndataEI\nq",
			params: map[cos.Name]cos.Object{"W": cos.Integer(10), "H": cos.Integer(10), "L": cos.Integer(4)},
			data:   "data",
			after:  []string{"q"},
		},
		{
			name:   "leading white space in data",
			in:     "BI\n/F /A85\nID\n   data~>\nEI\n",
			params: map[cos.Name]cos.Object{"F": cos.Name("A85")},
			data:   "   data~>",
		},
		{
			name:  "EI inside data",
			in:    "BI ID xEIy EIE EI Q",
			data:  "xEIy EIE",
			after: []string{"Q"},
		},
		{
			name: "EI at end of input",
			in:   "BI ID ab EI",
			data: "ab",
		},
		{
			name: "empty data",
			in:   "BI ID EI",
			data: "",
		},
		{
			name:   "array parameter",
			in:     "BI /D [1 0] /IM true ID \x00\xff EI",
			params: map[cos.Name]cos.Object{"D": cos.NewArray(cos.Integer(1), cos.Integer(0)), "IM": cos.Bool(true)},
			data:   "\x00\xff",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tokens, err := Parse([]byte(tc.in))
			if err != nil {
				t.Fatal(err)
			}
			if len(tokens) == 0 || tokens[0].Op == nil || tokens[0].Op.Name != OpBeginInlineImage {
				t.Fatalf("got %v", tokens)
			}
			op := tokens[0].Op
			if d := cmp.Diff(tc.data, string(op.ImageData)); d != "" {
				t.Error(d)
			}
			want := cos.DictFromMap(tc.params)
			if !cos.Equal(op.ImageParams, want) {
				t.Errorf("params: got %v, want %v", op.ImageParams, want)
			}
			if d := cmp.Diff(tc.after, ops(tokens[1:])); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestInlineImageErrors(t *testing.T) {
	_, err := Parse([]byte("BI /W 1 ID abc"))
	if !cos.IsTruncated(err) {
		t.Errorf("missing EI: got %v", err)
	}

	_, err = Parse([]byte("BI /W 1 q"))
	if !cos.IsMalformed(err) {
		t.Errorf("missing ID: got %v", err)
	}

	_, err = Parse([]byte("BI /W 1"))
	if !cos.IsTruncated(err) {
		t.Errorf("truncated parameters: got %v", err)
	}
}

func TestTruncatedOperand(t *testing.T) {
	tokens, err := Parse([]byte("q [1 2"))
	if !cos.IsTruncated(err) {
		t.Errorf("expected truncation error, got %v", err)
	}
	if d := cmp.Diff([]string{"q"}, ops(tokens)); d != "" {
		t.Error(d)
	}
}

type customTable struct{}

func (customTable) Lookup(name OpName) *OpInfo {
	if name == "go" {
		return &OpInfo{Since: cos.V1_0}
	}
	return nil
}

func (customTable) InlineImageMarkers() (begin, data, end OpName) {
	return "BIMG", "DATA", "END"
}

func TestCustomTable(t *testing.T) {
	in := "go BIMG /X 1 DATA payload END go BI"
	tok, err := NewTokenizer(source.FromBytes([]byte(in)), customTable{})
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := tok.Tokens()
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"go", "BIMG", "go", "BI"}, ops(tokens)); d != "" {
		t.Fatal(d)
	}
	if got := string(tokens[1].Op.ImageData); got != "payload" {
		t.Errorf("image data %q", got)
	}
	if !tokens[0].Op.IsKnown() || tokens[3].Op.IsKnown() {
		t.Error("wrong operator table")
	}
}

func TestNilSource(t *testing.T) {
	_, err := NewTokenizer(nil, nil)
	if !errors.Is(err, cos.ErrNilSource) {
		t.Errorf("got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		in      string
		v       cos.Version
		wantErr error
	}{
		{"q 1 0 0 1 0 0 cm Q", cos.V1_0, nil},
		{"foo", cos.V2_0, ErrUnknown},
		{"BX foo EX", cos.V2_0, nil},
		{"BX BX foo EX foo EX", cos.V2_0, nil},
		{"BX EX foo", cos.V2_0, ErrUnknown},
		{"/Sh1 sh", cos.V1_2, ErrVersion},
		{"BX /Sh1 sh EX", cos.V1_2, nil},
		{"/Sh1 sh", cos.V1_3, nil},
		{"F", cos.V1_7, nil},
		{"F", cos.V2_0, ErrDeprecated},
		{"BX F EX", cos.V2_0, ErrDeprecated},
	}
	for _, tc := range cases {
		tokens, err := Parse([]byte(tc.in))
		if err != nil {
			t.Fatal(err)
		}
		err = Validate(tokens, tc.v)
		if !errors.Is(err, tc.wantErr) || (err == nil) != (tc.wantErr == nil) {
			t.Errorf("%q %s: got %v, want %v", tc.in, tc.v, err, tc.wantErr)
		}
	}
}

var roundTripTestCases = []struct {
	name   string
	stream string
}{
	{name: "simple operators", stream: "q\n1 0 0 1 100 200 cm\nQ\n"},
	{name: "path operators", stream: "100 100 m\n200 200 l\nS\n"},
	{name: "text operators", stream: "BT\n/F1 12 Tf\n(Hello) Tj\nET\n"},
	{name: "arrays and dicts", stream: "[1 2 3] 0 d\n<</Type /XObject>> gs\n"},
	{name: "comments", stream: "% this is a comment\nq\nQ\n"},
	{name: "inline image", stream: "BI\n/W 10\n/H 10\nID\nimagedata\nEI\n"},
	{name: "binary inline image", stream: "BI /W 2 /H 1 /BPC 8 /CS /G ID \x00E\xffI EI Q"},
	{name: "mixed content", stream: "q\n% save state\n1 0 0 1 0 0 cm\nBT\n/F1 12 Tf\n(Text) Tj\nET\nQ\n"},
	{name: "unknown operators", stream: "BX 1 2 foo ] } EX"},
}

func TestWriteRoundTrip(t *testing.T) {
	for _, tt := range roundTripTestCases {
		t.Run(tt.name, func(t *testing.T) {
			tokens1, err := Parse([]byte(tt.stream))
			if err != nil {
				t.Fatalf("first read: %v", err)
			}

			buf := &bytes.Buffer{}
			if err := Write(buf, tokens1); err != nil {
				t.Fatalf("write: %v", err)
			}

			tokens2, err := Parse(buf.Bytes())
			if err != nil {
				t.Fatalf("second read: %v", err)
			}

			if diff := cmp.Diff(tokens1, tokens2, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip failed (-first +second):\n%s", diff)
			}
		})
	}
}

func TestWriteInlineImageEndMarker(t *testing.T) {
	tokens := []Token{{Op: &Operator{
		Name:        OpBeginInlineImage,
		ImageParams: cos.NewDict(),
		ImageData:   []byte("abcEI"),
	}}}
	err := Write(&bytes.Buffer{}, tokens)
	if !errors.Is(err, ErrInlineImageData) {
		t.Errorf("got %v", err)
	}
}

func FuzzWriteRoundTrip(f *testing.F) {
	for _, tc := range roundTripTestCases {
		f.Add([]byte(tc.stream))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		tokens1, err := Parse(data)
		if err != nil {
			return
		}

		buf := &bytes.Buffer{}
		err = Write(buf, tokens1)
		if errors.Is(err, ErrInlineImageData) {
			return
		} else if err != nil {
			t.Fatalf("write failed: %v", err)
		}

		tokens2, err := Parse(buf.Bytes())
		if err != nil {
			t.Fatalf("second read failed: %v", err)
		}

		if diff := cmp.Diff(tokens1, tokens2, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("round trip failed (-first +second):\n%s", diff)
		}
	})
}
