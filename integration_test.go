package gotara_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/ZaguanLabs/gotara"
	"github.com/ZaguanLabs/gotara/cache"
	"github.com/ZaguanLabs/gotara/processor"
	"github.com/ZaguanLabs/gotara/rules"
)

// Integration tests using all real components

func newHTMLTranslator(opts ...gotara.TranslatorOption) *gotara.Translator {
	opts = append([]gotara.TranslatorOption{gotara.WithProcessor(processor.NewHTMLProcessor())}, opts...)
	return gotara.NewTranslator(opts...)
}

func TestIntegration_BasicTranslation(t *testing.T) {
	translator := newHTMLTranslator(gotara.WithCache(cache.NewInMemoryCache(3600)))

	html := `<div><p>Hello</p></div>`
	result, err := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)

	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}

	if !strings.Contains(result.Content, "ｺﾝﾆﾁﾊ") {
		t.Errorf("Expected 'ｺﾝﾆﾁﾊ' in result, got: %s", result.Content)
	}

	if result.TranslatedCount != 1 {
		t.Errorf("Expected TranslatedCount 1, got %d", result.TranslatedCount)
	}
}

func TestIntegration_CacheHit(t *testing.T) {
	translator := newHTMLTranslator(gotara.WithCache(cache.NewInMemoryCache(3600)))

	html := `<p>Hello</p>`

	// First call
	result1, _ := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)
	if result1.TranslatedCount != 1 || result1.CachedCount != 0 {
		t.Errorf("First call: expected 1 translated, 0 cached; got %d, %d",
			result1.TranslatedCount, result1.CachedCount)
	}

	// Second call - should use cache
	result2, _ := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)
	if result2.TranslatedCount != 0 || result2.CachedCount != 1 {
		t.Errorf("Second call: expected 0 translated, 1 cached; got %d, %d",
			result2.TranslatedCount, result2.CachedCount)
	}

	// The other direction has its own entries
	result3, _ := translator.ProcessHTML(context.Background(), html, gotara.DirectionTaraliansToEnglish)
	if result3.CachedCount != 0 {
		t.Errorf("Other direction should miss the cache, got %d cached", result3.CachedCount)
	}
}

func TestIntegration_IgnoredTags(t *testing.T) {
	translator := newHTMLTranslator()

	html := `<div>
		<p>Hello</p>
		<script>console.log("Hello");</script>
		<style>.hello { color: red; }</style>
		<code>Hello</code>
	</div>`

	result, err := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}

	// Only the <p> content should be translated
	if result.TotalNodes != 1 {
		t.Errorf("Expected 1 translatable node, got %d", result.TotalNodes)
	}

	// Script content should remain unchanged
	if !strings.Contains(result.Content, `console.log("Hello")`) {
		t.Error("Script content should not be translated")
	}
	if !strings.Contains(result.Content, "<code>Hello</code>") {
		t.Error("Code content should not be translated")
	}
}

func TestIntegration_DataNoTranslate(t *testing.T) {
	translator := newHTMLTranslator()

	html := `<div>
		<p data-no-translate>Hello</p>
		<p>World</p>
	</div>`

	result, err := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}

	// Only "World" should be translated
	if result.TotalNodes != 1 {
		t.Errorf("Expected 1 translatable node, got %d", result.TotalNodes)
	}

	// The data-no-translate content should remain
	if !strings.Contains(result.Content, ">Hello<") {
		t.Error("data-no-translate content should not be translated")
	}

	if !strings.Contains(result.Content, "ｾｶｲ") {
		t.Error("World should be translated to ｾｶｲ")
	}
}

func TestIntegration_LangAttribute(t *testing.T) {
	translator := newHTMLTranslator()

	html := `<html><body><p>Hello</p></body></html>`
	there, err := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}
	if !strings.Contains(there.Content, `lang="x-taralians"`) {
		t.Errorf("Expected lang='x-taralians', got: %s", there.Content)
	}

	back, err := translator.ProcessHTML(context.Background(), there.Content, gotara.DirectionAuto)
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}
	if back.Direction != gotara.DirectionTaraliansToEnglish {
		t.Errorf("Detected direction %s", back.Direction)
	}
	if !strings.Contains(back.Content, `lang="en"`) || !strings.Contains(back.Content, "<p>Hello</p>") {
		t.Errorf("Expected English page back, got: %s", back.Content)
	}
}

func TestIntegration_Deduplication(t *testing.T) {
	translator := newHTMLTranslator()

	// Same text appears 3 times
	html := `<div><p>Hello</p><p>Hello</p><p>Hello</p></div>`
	result, err := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}

	// Should only translate once (deduplication)
	if result.TotalNodes != 3 || result.TranslatedCount != 1 {
		t.Errorf("Expected 3 nodes and 1 translation, got %d and %d", result.TotalNodes, result.TranslatedCount)
	}

	// But all instances should be translated in output
	count := strings.Count(result.Content, "ｺﾝﾆﾁﾊ")
	if count != 3 {
		t.Errorf("Expected 3 instances of 'ｺﾝﾆﾁﾊ', got %d", count)
	}
}

func TestIntegration_EmptyContent(t *testing.T) {
	translator := newHTMLTranslator()

	html := `<div></div>`
	result, err := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}

	if result.TotalNodes != 0 || result.TranslatedCount != 0 {
		t.Errorf("Expected 0 nodes for empty content, got %+v", result)
	}
}

func TestIntegration_WhitespacePreserved(t *testing.T) {
	translator := newHTMLTranslator()

	html := `<p>  Hello  </p>`
	result, err := translator.ProcessHTML(context.Background(), html, gotara.DirectionEnglishToTaralians)
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}

	// Whitespace should be preserved
	if !strings.Contains(result.Content, "  ｺﾝﾆﾁﾊ  ") {
		t.Errorf("Whitespace not preserved, got: %s", result.Content)
	}
}

func TestIntegration_TextWithSQLiteCache(t *testing.T) {
	c, err := cache.NewSQLiteCache(":memory:", 3600)
	if err != nil {
		t.Fatalf("NewSQLiteCache failed: %v", err)
	}
	defer c.Close()

	translator := gotara.NewTranslator(
		gotara.WithProcessor(processor.NewTextProcessor()),
		gotara.WithCache(c),
	)

	text := "Good morning\n  my friend\n"
	first, err := translator.ProcessText(context.Background(), text, gotara.DirectionAuto)
	if err != nil {
		t.Fatalf("ProcessText failed: %v", err)
	}
	if first.Content != "ｵﾊﾖｳ\n  ﾜﾀｼﾉ ﾄﾓ\n" {
		t.Errorf("content = %q", first.Content)
	}

	second, _ := translator.ProcessText(context.Background(), text, gotara.DirectionAuto)
	if second.CachedCount != 2 || second.TranslatedCount != 0 {
		t.Errorf("second run: %+v", second)
	}

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	key := translator.CacheKey(gotara.HashText("Good morning"), gotara.DirectionEnglishToTaralians)
	if entries[key] != "ｵﾊﾖｳ" {
		t.Errorf("entries = %v", entries)
	}
}

func TestIntegration_RedisCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	translator := newHTMLTranslator(gotara.WithCache(cache.NewRedisCacheFromClient(db, 60, "")))

	key := cache.DefaultRedisPrefix + translator.CacheKey(gotara.HashText("friend"), gotara.DirectionEnglishToTaralians)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, "ﾄﾓ", 60*time.Second).SetVal("OK")

	result, err := translator.ProcessHTML(context.Background(), `<p>friend</p>`, gotara.DirectionEnglishToTaralians)
	if err != nil {
		t.Fatalf("ProcessHTML failed: %v", err)
	}
	if !strings.Contains(result.Content, "<p>ﾄﾓ</p>") {
		t.Errorf("got: %s", result.Content)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestIntegration_SharedCacheAcrossRuleTables(t *testing.T) {
	shared := cache.NewInMemoryCache(0)
	table, err := rules.ParseTable("greetings.rules", []byte(`word "hello" <> "ﾔｱ" @10`))
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}

	builtin := gotara.NewTranslator(gotara.WithCache(shared))
	custom := gotara.NewTranslator(gotara.WithCache(shared), gotara.WithRuleTable(table))

	for _, tc := range []struct {
		tr   *gotara.Translator
		want string
	}{
		{builtin, "ｺﾝﾆﾁﾊ"},
		{custom, "ﾔｱ"},
		{builtin, "ｺﾝﾆﾁﾊ"},
	} {
		got, err := tc.tr.Translate("hello", gotara.DirectionEnglishToTaralians)
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		if got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
	if shared.Len() != 2 {
		t.Errorf("cache holds %d entries, want one per table", shared.Len())
	}

	// Width folding changes the output too, so it is part of the key
	narrow := gotara.NewTranslator(gotara.WithCache(shared))
	folding := gotara.NewTranslator(gotara.WithCache(shared), gotara.WithWidthFolding(true))
	if got, _ := narrow.Translate("トモ", gotara.DirectionTaraliansToEnglish); got != "トモ" {
		t.Errorf("without folding got %q", got)
	}
	if got, _ := folding.Translate("トモ", gotara.DirectionTaraliansToEnglish); got != "Friend" {
		t.Errorf("with folding got %q", got)
	}
}

func TestIntegration_ExportImport(t *testing.T) {
	src := cache.NewInMemoryCache(0)
	translator := gotara.NewTranslator(gotara.WithCache(src))
	for _, s := range []string{"friend", "Hello, my friend."} {
		if _, err := translator.Translate(s, gotara.DirectionEnglishToTaralians); err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
	}

	var buf strings.Builder
	if err := cache.NewExporter(src).Export(&buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst, err := cache.NewSQLiteCache(":memory:", 0)
	if err != nil {
		t.Fatalf("NewSQLiteCache failed: %v", err)
	}
	defer dst.Close()

	result, err := cache.NewImporter(dst).Import(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Imported = %d, want 2", result.Imported)
	}

	// A translator on the imported cache answers from it
	warm := gotara.NewTranslator(gotara.WithCache(dst))
	got, _ := warm.Translate("friend", gotara.DirectionEnglishToTaralians)
	if got != "ﾄﾓ" {
		t.Errorf("got %q", got)
	}
}
