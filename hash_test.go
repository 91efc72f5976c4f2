package gotara

import "testing"

func TestHashText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple text",
			input:    "Hello World",
			expected: "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "katakana",
			input: "ﾅﾆ ﾃﾞｱﾙ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashText(tt.input)
			if tt.expected != "" && result != tt.expected {
				t.Errorf("HashText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			// SHA-256 = 64 hex chars
			if len(result) != 64 {
				t.Errorf("HashText(%q) length = %d, want 64", tt.input, len(result))
			}
		})
	}
}

func TestHashText_WhitespaceIsSignificant(t *testing.T) {
	if HashText("Hello World") == HashText("  Hello World") {
		t.Error("leading whitespace should change the hash")
	}
}

const testVariant = "0123456789abcdef"

func TestCacheKey(t *testing.T) {
	hash := "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e"

	result := CacheKey(hash, string(DirectionEnglishToTaralians), testVariant)
	expected := "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e:englishToTaralians:0123456789abcdef"

	if result != expected {
		t.Errorf("CacheKey() = %q, want %q", result, expected)
	}
}

func TestCacheVariant(t *testing.T) {
	fp := HashText("table")

	if v := CacheVariant(fp, false); v != fp[:16] {
		t.Errorf("CacheVariant(fp, false) = %q", v)
	}
	if v := CacheVariant(fp, true); v != fp[:16]+"w" {
		t.Errorf("CacheVariant(fp, true) = %q", v)
	}
	if CacheVariant(HashText("other table"), false) == CacheVariant(fp, false) {
		t.Error("different fingerprints should give different variants")
	}
}

func TestParseCacheKey(t *testing.T) {
	hash := HashText("friend")

	for _, variant := range []string{testVariant, testVariant + "w"} {
		parts, ok := ParseCacheKey(CacheKey(hash, string(DirectionTaraliansToEnglish), variant))
		if !ok || parts.Hash != hash || parts.Direction != DirectionTaraliansToEnglish || parts.Variant != variant {
			t.Errorf("round trip = %+v, %v", parts, ok)
		}
	}

	bad := []string{
		"",
		hash,
		hash + ":englishToTaralians",
		hash + ":auto:" + testVariant,
		hash + ":sideways:" + testVariant,
		hash + ":englishToTaralians:abc",
		hash + ":englishToTaralians:" + testVariant + "x",
		hash + ":englishToTaralians:" + testVariant + "ww",
		"hash1:englishToTaralians:" + testVariant,
		"zz" + hash[2:] + ":englishToTaralians:" + testVariant,
	}
	for _, key := range bad {
		if _, ok := ParseCacheKey(key); ok {
			t.Errorf("ParseCacheKey(%q) should fail", key)
		}
	}
}
