package textnorm

import (
	"strings"
	"unicode"
)

// runeRange is an inclusive Unicode block.
type runeRange struct {
	lo, hi rune
}

// scriptRanges maps a language code to its script blocks. Languages sharing
// a script point at the same block (hi/mr/ne/sa use Devanagari).
var scriptRanges = map[string][]runeRange{
	"hi": {{0x0900, 0x097F}},                 // Devanagari
	"mr": {{0x0900, 0x097F}},                 // Devanagari
	"ne": {{0x0900, 0x097F}},                 // Devanagari
	"sa": {{0x0900, 0x097F}},                 // Devanagari
	"bn": {{0x0980, 0x09FF}},                 // Bengali
	"as": {{0x0980, 0x09FF}},                 // Bengali script
	"pa": {{0x0A00, 0x0A7F}},                 // Gurmukhi
	"gu": {{0x0A80, 0x0AFF}},                 // Gujarati
	"or": {{0x0B00, 0x0B7F}},                 // Odia
	"ta": {{0x0B80, 0x0BFF}},                 // Tamil
	"te": {{0x0C00, 0x0C7F}},                 // Telugu
	"kn": {{0x0C80, 0x0CFF}},                 // Kannada
	"ml": {{0x0D00, 0x0D7F}},                 // Malayalam
	"sd": {{0x0900, 0x097F}, {0x0600, 0x06FF}}, // Devanagari or Arabic
	"ur": {{0x0600, 0x06FF}},                 // Arabic
	"ks": {{0x0600, 0x06FF}},                 // Arabic
	"mni": {{0xABC0, 0xABFF}},                // Meetei Mayek
	"sat": {{0x1C50, 0x1C7F}},                // Ol Chiki
}

// danda and double danda are sentence terminators kept during normalization.
const (
	danda       = '।'
	doubleDanda = '॥'
)

// Supported reports whether the language has a known script block.
func Supported(language string) bool {
	_, ok := scriptRanges[language]
	return ok
}

// Normalize cleans text for the given language. Unknown languages get
// whitespace normalization only.
func Normalize(text, language string) string {
	ranges, ok := scriptRanges[language]
	if !ok {
		return collapseSpaces(text)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case inRanges(r, ranges):
			b.WriteRune(r)
		case r == danda || r == doubleDanda:
			b.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case r == '\'' || r == '-':
			b.WriteRune(r)
		}
	}
	return collapseSpaces(b.String())
}

func inRanges(r rune, ranges []runeRange) bool {
	for _, rr := range ranges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
