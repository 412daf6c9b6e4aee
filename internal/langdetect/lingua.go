// Package langdetect classifies the language of story titles.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// Titles shorter than this carry too little signal to classify.
const minTitleLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns the two-letter language code of the title, or ""
// when the title is empty, too short, or the detector has no confident
// answer. Callers store "" as the undetermined language.
func DetectISO6391(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	letters := 0
	for _, r := range title {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minTitleLetters {
		return ""
	}

	detected, exists := titleDetector().DetectLanguageOf(title)
	if !exists {
		return ""
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func titleDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
