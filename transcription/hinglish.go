package transcription

import (
	"strings"
	"unicode"
)

// DefaultCodeMixThreshold is the Latin-token ratio at which a text hint is
// treated as code-mixed.
const DefaultCodeMixThreshold = 0.2

// LatinTokenRatio returns the fraction of whitespace tokens containing
// Latin letters, plus whether the text contains at least one Latin and one
// Indic-script token.
func LatinTokenRatio(text string) (ratio float64, mixedScripts bool) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return 0, false
	}

	latin, indic := 0, 0
	for _, tok := range tokens {
		hasLatin, hasIndic := false, false
		for _, r := range tok {
			switch {
			case unicode.Is(unicode.Latin, r):
				hasLatin = true
			case r >= 0x0900 && r <= 0x0DFF, r >= 0x0600 && r <= 0x06FF:
				// Indic blocks (Devanagari through Sinhala) and Arabic
				// script used by Urdu/Kashmiri/Sindhi.
				hasIndic = true
			}
		}
		if hasLatin {
			latin++
		}
		if hasIndic {
			indic++
		}
	}

	return float64(latin) / float64(len(tokens)), latin > 0 && indic > 0
}

// IsCodeMixed reports whether the text hint looks like code-mixed speech:
// both scripts present and the Latin-token ratio at or above threshold.
func IsCodeMixed(text string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultCodeMixThreshold
	}
	ratio, mixed := LatinTokenRatio(text)
	return mixed && ratio >= threshold
}
