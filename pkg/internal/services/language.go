package services

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	languageDetector     lingua.LanguageDetector
	languageDetectorOnce sync.Once
)

func detector() lingua.LanguageDetector {
	languageDetectorOnce.Do(func() {
		languageDetector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Vietnamese).
			Build()
	})
	return languageDetector
}

// DetectLanguage returns the ISO 639-1 code of the text, or "unknown".
func DetectLanguage(parts ...string) string {
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if len(text) == 0 {
		return "unknown"
	}
	if lang, ok := detector().DetectLanguageOf(text); ok {
		return strings.ToLower(lang.IsoCode639_1().String())
	}
	return "unknown"
}
