package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Engine applies a Table to text. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	table *Table
}

// NewEngine returns an engine for table t.
func NewEngine(t *Table) *Engine {
	return &Engine{table: t}
}

// Table returns the engine's rule table.
func (e *Engine) Table() *Table {
	return e.table
}

// piece is a run of text during rewriting. Pieces produced by a rule are done
// and are never matched again; the others still map onto the input at offset.
type piece struct {
	text   string
	offset int
	done   bool
}

// Apply rewrites text in direction dir, treating the start of text as the
// start of a sentence.
func (e *Engine) Apply(text string, dir Direction) string {
	return e.ApplySpan(text, dir, true)
}

// ApplySpan rewrites text in direction dir. Rules run in table order; each
// replaces every non-overlapping match left to right in text that no earlier
// rule has replaced. Text no rule matches is kept verbatim. sentenceStart says
// whether text begins a sentence, which decides capitalisation of English
// output. A non-concrete direction returns text unchanged.
func (e *Engine) ApplySpan(text string, dir Direction, sentenceStart bool) string {
	if text == "" || !dir.Concrete() || e.table == nil {
		return text
	}

	var starts map[int]bool
	if dir == TaraliansToEnglish {
		starts = sentenceStarts(text, sentenceStart)
	}

	pieces := []piece{{text: text}}
	for _, r := range e.table.Rules(dir) {
		pattern, replacement := r.Oriented(dir)
		next := make([]piece, 0, len(pieces))
		for _, p := range pieces {
			if p.done {
				next = append(next, p)
				continue
			}
			next = rewrite(next, p, text, pattern, replacement, r.Word, starts)
		}
		pieces = next
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, p := range pieces {
		b.WriteString(p.text)
	}
	return b.String()
}

// rewrite splits p around every match of pattern and appends the result to out.
func rewrite(out []piece, p piece, input, pattern, replacement string, word bool, starts map[int]bool) []piece {
	rest, base := p.text, p.offset
	for {
		i := indexFold(rest, pattern)
		for i >= 0 && word && !wordBounded(input, base+i, base+i+len(pattern)) {
			_, size := utf8.DecodeRuneInString(rest[i:])
			j := indexFold(rest[i+size:], pattern)
			if j < 0 {
				i = -1
				break
			}
			i += size + j
		}
		if i < 0 {
			break
		}

		if i > 0 {
			out = append(out, piece{text: rest[:i], offset: base})
		}
		rep := replacement
		if starts[base+i] {
			rep = capitalize(rep)
		}
		out = append(out, piece{text: rep, done: true})

		rest = rest[i+len(pattern):]
		base += i + len(pattern)
	}
	if rest != "" {
		out = append(out, piece{text: rest, offset: base})
	}
	return out
}

// indexFold returns the byte index of the first case-insensitive match of sub
// in s, or -1. Only equal-length matches are found.
func indexFold(s, sub string) int {
	n := len(sub)
	if n == 0 {
		return -1
	}
	for i := 0; i+n <= len(s); {
		if strings.EqualFold(s[i:i+n], sub) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// wordBounded reports whether input[start:end] is not glued to a neighbouring
// word. An edge of the match that is not itself a word character needs no
// boundary.
func wordBounded(input string, start, end int) bool {
	if start > 0 {
		first, _ := utf8.DecodeRuneInString(input[start:])
		prev, _ := utf8.DecodeLastRuneInString(input[:start])
		if isWordRune(first) && isWordRune(prev) {
			return false
		}
	}
	if end < len(input) {
		last, _ := utf8.DecodeLastRuneInString(input[:end])
		next, _ := utf8.DecodeRuneInString(input[end:])
		if isWordRune(last) && isWordRune(next) {
			return false
		}
	}
	return true
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '?', '!', '｡', '？', '！', '。':
		return true
	}
	return false
}

// sentenceStarts returns the byte offsets in text where a sentence begins.
func sentenceStarts(text string, first bool) map[int]bool {
	starts := make(map[int]bool)
	expect := first
	for i, r := range text {
		if isTerminator(r) {
			expect = true
			continue
		}
		if expect && !unicode.IsSpace(r) {
			starts[i] = true
			expect = false
		}
	}
	return starts
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
