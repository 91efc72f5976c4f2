package gotara

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/text/width"

	"github.com/ZaguanLabs/gotara/rules"
	"github.com/ZaguanLabs/gotara/tokenizer"
)

// Translator is a configurable English/Taralians translator. It is safe for
// concurrent use as long as its cache is.
type Translator struct {
	engine            *rules.Engine
	cache             TranslationCache
	processors        map[string]ContentProcessor
	foldWidth         bool
	parallelThreshold int
	variant           string
	log               zerolog.Logger
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor is the interface for content processing.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextNode, error)
	Apply(parsed interface{}, nodes []TextNode, translations map[string]string) (string, error)
	ContentType() string
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithRuleTable replaces the built-in rule table.
func WithRuleTable(table *rules.Table) TranslatorOption {
	return func(t *Translator) {
		if table != nil {
			t.engine = rules.NewEngine(table)
		}
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithWidthFolding makes Taralians input accept full-width katakana and
// full-width ASCII by narrowing it before the rules run.
func WithWidthFolding(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.foldWidth = enabled
	}
}

// WithParallelLookup sets the minimum number of document nodes for which
// cache lookups run concurrently. Zero disables parallel lookups.
func WithParallelLookup(threshold int) TranslatorOption {
	return func(t *Translator) {
		t.parallelThreshold = threshold
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.log = log
	}
}

// NewTranslator creates a Translator backed by the built-in rule table.
func NewTranslator(opts ...TranslatorOption) *Translator {
	t := &Translator{
		engine:            rules.NewEngine(rules.Default()),
		processors:        make(map[string]ContentProcessor),
		parallelThreshold: 5,
		log:               zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(t)
	}
	t.variant = CacheVariant(t.engine.Table().Fingerprint(), t.foldWidth)

	return t
}

// Table returns the rule table in use.
func (t *Translator) Table() *rules.Table {
	return t.engine.Table()
}

// CacheKey returns the key under which the translation of the text hashed to
// hash is cached. Keys include the rule table fingerprint and the width
// folding setting, so translators configured differently can share a cache.
func (t *Translator) CacheKey(hash string, dir TranslationDirection) string {
	return CacheKey(hash, string(dir), t.variant)
}

// Translate tokenizes raw, rewrites every translatable span in the resolved
// direction and returns the concatenation. Quoted spans are copied through
// unchanged. An invalid direction fails before any work is done.
func (t *Translator) Translate(raw string, dir TranslationDirection) (string, error) {
	result, err := t.TranslateResult(raw, dir)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// TranslateResult is Translate with accounting: raw counts as one node, and
// the result says whether it was translated or served from the cache.
func (t *Translator) TranslateResult(raw string, dir TranslationDirection) (*ProcessedContent, error) {
	dir, err := ResolveDirection(raw, dir)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return &ProcessedContent{Direction: dir}, nil
	}

	key := t.CacheKey(HashText(raw), dir)
	if t.cache != nil {
		if cached, ok := t.cache.Get(key); ok {
			return &ProcessedContent{Content: cached, Direction: dir, CachedCount: 1, TotalNodes: 1}, nil
		}
	}

	out, err := t.TranslateSpans(tokenizer.Tokenize(raw), dir)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if err := t.cache.Set(key, out); err != nil {
			t.log.Warn().Err(err).Str("direction", string(dir)).Msg("cache set failed")
		}
	}
	return &ProcessedContent{Content: out, Direction: dir, TranslatedCount: 1, TotalNodes: 1}, nil
}

// TranslateSpans rewrites the translatable spans of an already tokenized
// input. dir must be concrete.
func (t *Translator) TranslateSpans(spans []Span, dir TranslationDirection) (string, error) {
	rd, err := ruleDirection(dir)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, s := range spans {
		if s.Kind == tokenizer.Literal {
			b.WriteString(s.Text)
			continue
		}
		text := s.Text
		if t.foldWidth && rd == rules.TaraliansToEnglish {
			text = width.Narrow.String(text)
		}
		b.WriteString(t.engine.ApplySpan(text, rd, startsSentence(b.String())))
	}

	t.log.Debug().Str("direction", string(dir)).Int("spans", len(spans)).Msg("translated")
	return b.String(), nil
}

// startsSentence reports whether text following out begins a sentence.
func startsSentence(out string) bool {
	out = strings.TrimRightFunc(out, unicode.IsSpace)
	if out == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(out)
	switch r {
	case '.', '?', '!', '｡', '？', '！', '。':
		return true
	}
	return false
}

// Process translates content of the specified type. With DirectionAuto the
// direction is detected from the first text node.
func (t *Translator) Process(ctx context.Context, content string, contentType string, dir TranslationDirection) (*ProcessedContent, error) {
	if !dir.Valid() {
		return nil, &DirectionError{Direction: string(dir)}
	}

	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	if dir == DirectionAuto {
		var first string
		if len(nodes) > 0 {
			first = nodes[0].Text
		}
		dir = DetectDirection(first)
	}

	if len(nodes) == 0 {
		return &ProcessedContent{
			Content:   content,
			Direction: dir,
		}, nil
	}

	translations, cachedCount, translatedCount, err := t.translateNodes(ctx, nodes, dir)
	if err != nil {
		return nil, err
	}

	result, err := processor.Apply(parsed, nodes, translations)
	if err != nil {
		return nil, err
	}

	if contentType == "html" {
		result = t.setHTMLAttributes(result, dir)
	}

	t.log.Debug().
		Str("content_type", contentType).
		Str("direction", string(dir)).
		Int("nodes", len(nodes)).
		Int("cached", cachedCount).
		Msg("processed")

	return &ProcessedContent{
		Content:         result,
		Direction:       dir,
		TranslatedCount: translatedCount,
		CachedCount:     cachedCount,
		TotalNodes:      len(nodes),
	}, nil
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Translator) ProcessHTML(ctx context.Context, html string, dir TranslationDirection) (*ProcessedContent, error) {
	return t.Process(ctx, html, "html", dir)
}

// ProcessText is a convenience method for processing plain text, line by line.
func (t *Translator) ProcessText(ctx context.Context, text string, dir TranslationDirection) (*ProcessedContent, error) {
	return t.Process(ctx, text, "text", dir)
}

// translateNodes translates nodes keyed by hash, using the cache where
// possible. Each distinct text is translated once.
func (t *Translator) translateNodes(ctx context.Context, nodes []TextNode, dir TranslationDirection) (map[string]string, int, int, error) {
	var (
		translations map[string]string
		misses       []TextNode
	)
	if t.cache != nil && t.parallelThreshold > 0 && len(nodes) >= t.parallelThreshold {
		translations, misses = ParallelCacheLookup(t.cache, nodes, dir, t.variant)
	} else {
		translations, misses = t.sequentialCacheLookup(nodes, dir)
	}
	cachedCount := len(translations)

	translatedCount := 0
	for _, node := range misses {
		if err := ctx.Err(); err != nil {
			return nil, 0, 0, &TranslationError{
				Message:   fmt.Sprintf("interrupted after %d of %d nodes", translatedCount, len(misses)),
				Direction: dir,
				Cause:     err,
			}
		}
		out, err := t.TranslateSpans(tokenizer.Tokenize(node.Text), dir)
		if err != nil {
			return nil, 0, 0, err
		}
		translations[node.Hash] = out
		if t.cache != nil {
			if err := t.cache.Set(t.CacheKey(node.Hash, dir), out); err != nil {
				t.log.Warn().Err(err).Str("node", node.ID).Msg("cache set failed")
			}
		}
		translatedCount++
	}

	return translations, cachedCount, translatedCount, nil
}

func (t *Translator) sequentialCacheLookup(nodes []TextNode, dir TranslationDirection) (map[string]string, []TextNode) {
	translations := make(map[string]string)
	var misses []TextNode
	seen := make(map[string]bool)

	for _, node := range nodes {
		if seen[node.Hash] {
			continue
		}
		seen[node.Hash] = true

		if t.cache != nil {
			if cached, ok := t.cache.Get(t.CacheKey(node.Hash, dir)); ok {
				translations[node.Hash] = cached
				continue
			}
		}
		misses = append(misses, node)
	}

	return translations, misses
}

// setHTMLAttributes sets the lang attribute on the <html> tag.
func (t *Translator) setHTMLAttributes(html string, dir TranslationDirection) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	htmlTag := doc.Find("html")
	if htmlTag.Length() > 0 {
		htmlTag.SetAttr("lang", dir.TargetLangTag())
	}

	result, err := doc.Html()
	if err != nil {
		return html
	}

	return result
}
