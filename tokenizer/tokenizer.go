// Package tokenizer splits raw text into translatable and quoted spans.
//
// Text inside matching single or double quotes is protected: it is emitted as
// a Literal span (quotes included) and is never handed to the rule engine.
package tokenizer

import "strings"

// Kind classifies a span.
type Kind int

const (
	// Translatable spans are rewritten by the rule engine.
	Translatable Kind = iota
	// Literal spans are quoted text copied to the output verbatim.
	Literal
)

// String returns "translatable" or "literal".
func (k Kind) String() string {
	if k == Literal {
		return "literal"
	}
	return "translatable"
}

// Span is a contiguous piece of the input.
type Span struct {
	Kind Kind
	Text string // Exact input bytes, including the quotes of a literal
}

// Content returns the text of a literal without its quote characters.
// An unterminated literal only loses its opening quote.
func (s Span) Content() string {
	if s.Kind != Literal || s.Text == "" {
		return s.Text
	}
	q := s.Text[0]
	inner := s.Text[1:]
	if len(inner) > 0 && inner[len(inner)-1] == q {
		inner = inner[:len(inner)-1]
	}
	return inner
}

// Closed reports whether a literal span ends with its closing quote.
func (s Span) Closed() bool {
	return s.Kind == Literal && len(s.Text) >= 2 && s.Text[len(s.Text)-1] == s.Text[0]
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}

// Tokenize splits input into spans. Concatenating the Text of the returned
// spans yields input exactly. An unmatched quote turns the rest of the input
// into a single literal span. Empty input yields no spans.
func Tokenize(input string) []Span {
	var spans []Span
	start := 0

	for i := 0; i < len(input); {
		if !isQuote(input[i]) {
			i++
			continue
		}

		if i > start {
			spans = append(spans, Span{Kind: Translatable, Text: input[start:i]})
		}

		// Quotes are ASCII so the byte search never splits a rune.
		end := strings.IndexByte(input[i+1:], input[i])
		if end < 0 {
			spans = append(spans, Span{Kind: Literal, Text: input[i:]})
			return spans
		}

		stop := i + 1 + end
		spans = append(spans, Span{Kind: Literal, Text: input[i : stop+1]})
		i = stop + 1
		start = i
	}

	if start < len(input) {
		spans = append(spans, Span{Kind: Translatable, Text: input[start:]})
	}
	return spans
}

// Join concatenates span texts in order.
func Join(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
