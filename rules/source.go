package rules

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Rule source format, one rule per line:
//
//	word "what" <> "ﾅﾆ" @10   # both ways, whole words only
//	text "."    <> "｡"        # anywhere, priority 0
//	word "are"  >  "ﾃﾞｱﾙ"     # English to Taralians only
//	word "is"   <  "ﾃﾞｽ"      # Taralians to English only
//
// The English text is always on the left of the arrow.
type sourceFile struct {
	Entries []*sourceEntry `parser:"@@*"`
}

type sourceEntry struct {
	Pos      lexer.Position
	Kind     string `parser:"@(\"word\" | \"text\")"`
	English  string `parser:"@String"`
	Arrow    string `parser:"@Arrow"`
	Taralian string `parser:"@String"`
	Priority *int   `parser:"( \"@\" @Int )?"`
}

var sourceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Arrow", Pattern: `<>|<|>`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "At", Pattern: `@`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var sourceParser = participle.MustBuild[sourceFile](
	participle.Lexer(sourceLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// Parse reads rules from src. name is used in error messages and in each
// rule's Origin.
func Parse(name string, src []byte) ([]Rule, error) {
	file, err := sourceParser.ParseBytes(name, src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			return nil, &ParseError{
				Name:   name,
				Line:   pos.Line,
				Column: pos.Column,
				Cause:  errors.New(perr.Message()),
			}
		}
		return nil, &ParseError{Name: name, Cause: err}
	}

	rs := make([]Rule, 0, len(file.Entries))
	for _, e := range file.Entries {
		r := Rule{
			Word:   e.Kind == "word",
			Origin: fmt.Sprintf("%s:%d", name, e.Pos.Line),
		}
		if e.Priority != nil {
			r.Priority = *e.Priority
		}
		switch e.Arrow {
		case "<>":
			r.Direction = Bidirectional
			r.Source, r.Replacement = e.English, e.Taralian
		case ">":
			r.Direction = EnglishToTaralians
			r.Source, r.Replacement = e.English, e.Taralian
		case "<":
			r.Direction = TaraliansToEnglish
			r.Source, r.Replacement = e.Taralian, e.English
		}
		rs = append(rs, r)
	}
	return rs, nil
}

// ParseTable parses src and builds a validated table from it.
func ParseTable(name string, src []byte) (*Table, error) {
	rs, err := Parse(name, src)
	if err != nil {
		return nil, err
	}
	return NewTable(rs)
}
