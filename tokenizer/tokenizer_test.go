package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Span
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "no quotes",
			input: "What is your name?",
			want:  []Span{{Kind: Translatable, Text: "What is your name?"}},
		},
		{
			name:  "double quoted",
			input: `He said "hello world" to me`,
			want: []Span{
				{Kind: Translatable, Text: "He said "},
				{Kind: Literal, Text: `"hello world"`},
				{Kind: Translatable, Text: " to me"},
			},
		},
		{
			name:  "single quoted",
			input: "call me 'Gray'",
			want: []Span{
				{Kind: Translatable, Text: "call me "},
				{Kind: Literal, Text: "'Gray'"},
			},
		},
		{
			name:  "adjacent quotes",
			input: `a""b`,
			want: []Span{
				{Kind: Translatable, Text: "a"},
				{Kind: Literal, Text: `""`},
				{Kind: Translatable, Text: "b"},
			},
		},
		{
			name:  "other quote inside literal",
			input: `"it's" fine`,
			want: []Span{
				{Kind: Literal, Text: `"it's"`},
				{Kind: Translatable, Text: " fine"},
			},
		},
		{
			name:  "unmatched quote",
			input: `name "Gray is`,
			want: []Span{
				{Kind: Translatable, Text: "name "},
				{Kind: Literal, Text: `"Gray is`},
			},
		},
		{
			name:  "lone quote",
			input: `'`,
			want:  []Span{{Kind: Literal, Text: `'`}},
		},
		{
			name:  "consecutive literals",
			input: `"a"'b'`,
			want: []Span{
				{Kind: Literal, Text: `"a"`},
				{Kind: Literal, Text: `'b'`},
			},
		},
		{
			name:  "katakana",
			input: `ﾅﾆ "ﾅﾏｴ" ｶ`,
			want: []Span{
				{Kind: Translatable, Text: "ﾅﾆ "},
				{Kind: Literal, Text: `"ﾅﾏｴ"`},
				{Kind: Translatable, Text: " ｶ"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenize_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		`""`,
		`''`,
		`"`,
		`'''`,
		`a "b" c 'd' e`,
		`"unterminated 'nested" rest'`,
		"line one\n\"line two\"\n",
		"ﾋｮｳｼﾞｭﾝｺﾞﾊﾜｶﾙｶ?",
		"\xff\xfe \"broken utf8\"",
	}

	for _, in := range inputs {
		if got := Join(Tokenize(in)); got != in {
			t.Errorf("Join(Tokenize(%q)) = %q", in, got)
		}
	}
}

func TestSpan_Content(t *testing.T) {
	tests := []struct {
		span   Span
		want   string
		closed bool
	}{
		{Span{Kind: Literal, Text: `"hello"`}, "hello", true},
		{Span{Kind: Literal, Text: `""`}, "", true},
		{Span{Kind: Literal, Text: `'open`}, "open", false},
		{Span{Kind: Literal, Text: `"`}, "", false},
		{Span{Kind: Translatable, Text: "plain"}, "plain", false},
	}

	for _, tt := range tests {
		if got := tt.span.Content(); got != tt.want {
			t.Errorf("Content(%q) = %q, want %q", tt.span.Text, got, tt.want)
		}
		if got := tt.span.Closed(); got != tt.closed {
			t.Errorf("Closed(%q) = %v, want %v", tt.span.Text, got, tt.closed)
		}
	}
}

func TestKind_String(t *testing.T) {
	if Translatable.String() != "translatable" {
		t.Errorf("unexpected %q", Translatable.String())
	}
	if Literal.String() != "literal" {
		t.Errorf("unexpected %q", Literal.String())
	}
}
