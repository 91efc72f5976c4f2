package rules

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	src := `
# greetings
word "hello"  <> "ｺﾝﾆﾁﾊ" @10
text "."      <> "｡"
word "are"    >  "ﾃﾞｱﾙ"  @-2
word "is"     <  "ﾃﾞｽ"   @+4   # reverse only
word "say \"hi\"" <> "ﾔｱ"
`
	rs, err := Parse("test.rules", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rs) != 5 {
		t.Fatalf("expected 5 rules, got %d", len(rs))
	}

	want := []Rule{
		{Source: "hello", Replacement: "ｺﾝﾆﾁﾊ", Direction: Bidirectional, Priority: 10, Word: true, Origin: "test.rules:3"},
		{Source: ".", Replacement: "｡", Direction: Bidirectional, Origin: "test.rules:4"},
		{Source: "are", Replacement: "ﾃﾞｱﾙ", Direction: EnglishToTaralians, Priority: -2, Word: true, Origin: "test.rules:5"},
		{Source: "ﾃﾞｽ", Replacement: "is", Direction: TaraliansToEnglish, Priority: 4, Word: true, Origin: "test.rules:6"},
		{Source: `say "hi"`, Replacement: "ﾔｱ", Direction: Bidirectional, Word: true, Origin: "test.rules:7"},
	}
	for i := range want {
		if rs[i] != want[i] {
			t.Errorf("rule %d = %+v, want %+v", i, rs[i], want[i])
		}
	}
}

func TestParse_Empty(t *testing.T) {
	rs, err := Parse("empty.rules", []byte("# nothing here\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rs) != 0 {
		t.Errorf("expected no rules, got %d", len(rs))
	}
}

func TestParse_SyntaxError(t *testing.T) {
	src := "word \"a\" <> \"b\"\nword \"c\" => \"d\"\n"
	_, err := Parse("bad.rules", []byte(src))

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Line != 2 {
		t.Errorf("Line = %d, want 2", perr.Line)
	}
	if !strings.Contains(err.Error(), "bad.rules:2:") {
		t.Errorf("error should carry the position: %v", err)
	}
}

func TestParse_UnknownKind(t *testing.T) {
	_, err := Parse("kind.rules", []byte(`phrase "a" <> "b"`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseTable_Ambiguous(t *testing.T) {
	src := `
word "what" <> "ﾅﾆ"
word "what" >  "ﾅﾝﾀﾞ"
`
	_, err := ParseTable("dup.rules", []byte(src))
	var amb *AmbiguousRuleError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousRuleError, got %v", err)
	}
	if !strings.Contains(err.Error(), "dup.rules:3") || !strings.Contains(err.Error(), "dup.rules:2") {
		t.Errorf("error should name both rules: %v", err)
	}
}

func TestParse_RuleStringRoundTrip(t *testing.T) {
	rs, err := Parse("default", DefaultSource())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var b strings.Builder
	for _, r := range rs {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}

	again, err := Parse("printed", []byte(b.String()))
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if len(again) != len(rs) {
		t.Fatalf("got %d rules, want %d", len(again), len(rs))
	}
	for i := range rs {
		a, b := rs[i], again[i]
		a.Origin, b.Origin = "", ""
		if a != b {
			t.Errorf("rule %d: %+v != %+v", i, a, b)
		}
	}
}
