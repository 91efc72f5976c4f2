package gotara

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ZaguanLabs/gotara/rules"
)

// directionAliases maps accepted spellings (lower-cased) to directions.
var directionAliases = map[string]TranslationDirection{
	"auto":               DirectionAuto,
	"":                   DirectionAuto,
	"englishtotaralians": DirectionEnglishToTaralians,
	"en":                 DirectionEnglishToTaralians,
	"e2t":                DirectionEnglishToTaralians,
	"en2ta":              DirectionEnglishToTaralians,
	"taralianstoenglish": DirectionTaraliansToEnglish,
	"ta":                 DirectionTaraliansToEnglish,
	"t2e":                DirectionTaraliansToEnglish,
	"ta2en":              DirectionTaraliansToEnglish,
}

// ParseDirection converts a user-supplied name into a direction. Matching is
// case-insensitive; an empty string means auto.
func ParseDirection(s string) (TranslationDirection, error) {
	if d, ok := directionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return "", &DirectionError{Direction: s}
}

// Valid reports whether d is auto or a concrete direction.
func (d TranslationDirection) Valid() bool {
	switch d {
	case DirectionAuto, DirectionEnglishToTaralians, DirectionTaraliansToEnglish:
		return true
	}
	return false
}

// Inverse returns the opposite concrete direction. Auto and invalid values
// are returned unchanged.
func (d TranslationDirection) Inverse() TranslationDirection {
	switch d {
	case DirectionEnglishToTaralians:
		return DirectionTaraliansToEnglish
	case DirectionTaraliansToEnglish:
		return DirectionEnglishToTaralians
	}
	return d
}

// SourceLangTag returns the language tag of the text d translates from.
func (d TranslationDirection) SourceLangTag() string {
	if d == DirectionTaraliansToEnglish {
		return TaraliansLangTag
	}
	return EnglishLangTag
}

// TargetLangTag returns the language tag of the text d translates to.
func (d TranslationDirection) TargetLangTag() string {
	if d == DirectionTaraliansToEnglish {
		return EnglishLangTag
	}
	return TaraliansLangTag
}

// DetectDirection guesses the direction from raw input: if the first
// non-whitespace character is an ASCII letter, an ASCII digit or a quote, the
// input is taken to be English; anything else, blank input included, is
// taken to be Taralians. This is a best-effort heuristic and is easily fooled
// by mixed-script text.
func DetectDirection(raw string) TranslationDirection {
	i := strings.IndexFunc(raw, func(r rune) bool { return !unicode.IsSpace(r) })
	if i < 0 {
		return DirectionTaraliansToEnglish
	}
	if r := raw[i]; r < utf8.RuneSelf && (isASCIILetter(r) || '0' <= r && r <= '9' || r == '"' || r == '\'') {
		return DirectionEnglishToTaralians
	}
	return DirectionTaraliansToEnglish
}

func isASCIILetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// ResolveDirection returns the concrete direction to use for raw. Auto is
// resolved with DetectDirection; invalid directions yield a DirectionError.
func ResolveDirection(raw string, d TranslationDirection) (TranslationDirection, error) {
	switch d {
	case DirectionAuto:
		return DetectDirection(raw), nil
	case DirectionEnglishToTaralians, DirectionTaraliansToEnglish:
		return d, nil
	}
	return "", &DirectionError{Direction: string(d)}
}

// ruleDirection maps a concrete direction to the engine's direction.
func ruleDirection(d TranslationDirection) (rules.Direction, error) {
	switch d {
	case DirectionEnglishToTaralians:
		return rules.EnglishToTaralians, nil
	case DirectionTaraliansToEnglish:
		return rules.TaraliansToEnglish, nil
	}
	return 0, &DirectionError{Direction: string(d)}
}
