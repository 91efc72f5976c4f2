// Package processor splits documents into the text nodes a gotara.Translator
// rewrites, and puts the translations back without disturbing markup or
// layout.
package processor

import (
	"strings"
	"unicode"

	"github.com/ZaguanLabs/gotara"
)

// ContentProcessor is an alias to the main package interface.
type ContentProcessor = gotara.ContentProcessor

// TextNode is an alias to the main package type.
type TextNode = gotara.TextNode

// preserveWhitespace carries the leading and trailing whitespace of original
// over to translated. Extraction trims with unicode.IsSpace, so the
// ideographic space used in Taralians layouts survives too.
func preserveWhitespace(original, translated string) string {
	body := strings.TrimLeftFunc(original, unicode.IsSpace)
	if body == "" {
		return original + translated
	}
	leading := original[:len(original)-len(body)]
	trailing := body[len(strings.TrimRightFunc(body, unicode.IsSpace)):]
	return leading + translated + trailing
}
