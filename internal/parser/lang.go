package parser

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// Language detection looks at a prefix of the text; short texts are "unknown".
const (
	langSampleChars = 1000
	langMinChars    = 100
)

var detector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.Bengali, lingua.Arabic, lingua.Hindi, lingua.Urdu,
			lingua.French, lingua.German, lingua.Spanish, lingua.Portuguese, lingua.Persian,
		).
		Build()
})

// DetectLanguage returns the ISO 639-1 code of the dominant language in the
// first 1000 characters of text, or "unknown".
func DetectLanguage(text string) string {
	if utf8.RuneCountInString(text) <= langMinChars {
		return "unknown"
	}
	lang, ok := detector().DetectLanguageOf(prefix(text, langSampleChars))
	if !ok {
		return "unknown"
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
