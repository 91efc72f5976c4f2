// Package gotara translates between English and Taralians.
package gotara

import "github.com/ZaguanLabs/gotara/tokenizer"

// TranslationDirection selects the source and target language of a call.
type TranslationDirection string

const (
	// DirectionAuto guesses the source language from the input. It is
	// resolved with DetectDirection before any rule runs.
	DirectionAuto TranslationDirection = "auto"
	// DirectionEnglishToTaralians translates English into Taralians.
	DirectionEnglishToTaralians TranslationDirection = "englishToTaralians"
	// DirectionTaraliansToEnglish translates Taralians into English.
	DirectionTaraliansToEnglish TranslationDirection = "taraliansToEnglish"
)

// Span is a piece of input classified by the tokenizer.
type Span = tokenizer.Span

// Span kinds.
const (
	SpanTranslatable = tokenizer.Translatable
	SpanLiteral      = tokenizer.Literal
)

// TextNode represents a translatable unit of a document.
type TextNode struct {
	ID       string            // Position-based identifier, stable across versions
	Text     string            // Original text content (trimmed)
	Hash     string            // SHA-256 hash of Text
	NodeType string            // Content type: "html_text", "text_line", etc.
	Context  string            // Where the node was found, for diagnostics
	Metadata map[string]string // Additional info (parent tag, line number, etc.)
}

// ProcessedContent is the result of a document translation.
type ProcessedContent struct {
	Content         string               // Translated content
	Direction       TranslationDirection // Direction actually used
	TranslatedCount int                  // Number of nodes run through the rule engine
	CachedCount     int                  // Number of cache hits
	TotalNodes      int                  // Total translatable nodes found
}

// Language tags written to the <html lang> attribute of translated pages.
const (
	EnglishLangTag   = "en"
	TaraliansLangTag = "x-taralians"
)

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
