package gotara

import "sync"

var defaultTranslator = sync.OnceValue(func() *Translator {
	return NewTranslator()
})

// TranslateEnglishToTaralians rewrites English text into Taralians using the
// built-in rules. Quoted passages are kept as they are.
func TranslateEnglishToTaralians(text string) string {
	out, _ := defaultTranslator().Translate(text, DirectionEnglishToTaralians)
	return out
}

// TranslateTaraliansToEnglish rewrites Taralians text into English using the
// built-in rules. Quoted passages are kept as they are.
func TranslateTaraliansToEnglish(text string) string {
	out, _ := defaultTranslator().Translate(text, DirectionTaraliansToEnglish)
	return out
}

// Translate translates raw in direction dir with the built-in rules. Auto is
// resolved with DetectDirection. Any other value that is not a known
// direction yields a *DirectionError.
func Translate(raw string, dir TranslationDirection) (string, error) {
	return defaultTranslator().Translate(raw, dir)
}
