// Package rules holds the substitution rules that drive translation between
// English and Taralians, the immutable table they are compiled into, and the
// engine that applies them.
package rules

import (
	"fmt"
	"strings"
	"unicode"
)

// Direction says which way a rule (or a translation) rewrites text.
type Direction int

const (
	// EnglishToTaralians rewrites English into Taralians.
	EnglishToTaralians Direction = iota + 1
	// TaraliansToEnglish rewrites Taralians into English.
	TaraliansToEnglish
	// Bidirectional rules apply both ways: Source to Replacement going to
	// Taralians, Replacement back to Source going to English.
	Bidirectional
)

// String returns the wire name of the direction.
func (d Direction) String() string {
	switch d {
	case EnglishToTaralians:
		return "englishToTaralians"
	case TaraliansToEnglish:
		return "taraliansToEnglish"
	case Bidirectional:
		return "bidirectional"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Concrete reports whether d names one translation direction. Only concrete
// directions may be passed to the engine.
func (d Direction) Concrete() bool {
	return d == EnglishToTaralians || d == TaraliansToEnglish
}

// Inverse returns the opposite concrete direction. Other values are returned
// unchanged.
func (d Direction) Inverse() Direction {
	switch d {
	case EnglishToTaralians:
		return TaraliansToEnglish
	case TaraliansToEnglish:
		return EnglishToTaralians
	default:
		return d
	}
}

// Rule is one lexical or grammatical substitution.
type Rule struct {
	Source      string
	Replacement string
	Direction   Direction
	Priority    int  // Higher runs first
	Word        bool // Only match whole words
	Origin      string
}

// AppliesTo reports whether the rule takes part in translations going dir.
func (r Rule) AppliesTo(dir Direction) bool {
	return r.Direction == Bidirectional || r.Direction == dir
}

// Oriented returns the pattern and replacement the rule uses when
// translating in dir. Bidirectional rules are flipped for TaraliansToEnglish.
func (r Rule) Oriented(dir Direction) (pattern, replacement string) {
	if r.Direction == Bidirectional && dir == TaraliansToEnglish {
		return r.Replacement, r.Source
	}
	return r.Source, r.Replacement
}

func (r Rule) String() string {
	arrow := "<>"
	switch r.Direction {
	case EnglishToTaralians:
		arrow = ">"
	case TaraliansToEnglish:
		arrow = "<"
	}
	kind := "text"
	if r.Word {
		kind = "word"
	}
	english, taralian := r.Source, r.Replacement
	if r.Direction == TaraliansToEnglish {
		english, taralian = r.Replacement, r.Source
	}
	return fmt.Sprintf("%s %q %s %q @%d", kind, english, arrow, taralian, r.Priority)
}

// foldKey is the key used to detect ambiguous patterns. Each rune becomes the
// smallest rune of its simple case-folding orbit, so two patterns share a key
// exactly when strings.EqualFold, which the engine matches with, equates them.
func foldKey(pattern string) string {
	return strings.Map(foldRune, pattern)
}

func foldRune(r rune) rune {
	least := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < least {
			least = f
		}
	}
	return least
}
