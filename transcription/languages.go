package transcription

// Language routing constants.
const (
	// LanguageAuto asks the selector to route from the text hint.
	LanguageAuto = "auto"
	// LanguageEnglish routes directly to whisper.
	LanguageEnglish = "en"
	// DefaultLanguage is assumed when a request declares none.
	DefaultLanguage = "hi"
)

// IndicLanguages lists the 22 scheduled-language codes served by the
// conformer backends.
var IndicLanguages = []string{
	"as", "bn", "brx", "doi", "gu", "hi", "kn", "ks", "kok", "mai",
	"ml", "mni", "mr", "ne", "or", "pa", "sa", "sat", "sd", "ta",
	"te", "ur",
}

// CodeMixedFamilies lists the languages whose speakers commonly code-mix
// with English; auto routing only considers these as the Indic side.
var CodeMixedFamilies = []string{"hi", "mr", "ta", "bn"}

var supported = func() map[string]bool {
	m := make(map[string]bool, len(IndicLanguages)+2)
	for _, l := range IndicLanguages {
		m[l] = true
	}
	m[LanguageEnglish] = true
	m[LanguageAuto] = true
	return m
}()

// IsSupported reports whether the language code can be routed.
func IsSupported(language string) bool {
	return supported[language]
}

// SupportedLanguages returns every routable code: the Indic set, English,
// and auto.
func SupportedLanguages() []string {
	out := make([]string, 0, len(IndicLanguages)+2)
	out = append(out, IndicLanguages...)
	out = append(out, LanguageEnglish, LanguageAuto)
	return out
}

// IsIndic reports whether the code belongs to the conformer-served set.
func IsIndic(language string) bool {
	for _, l := range IndicLanguages {
		if l == language {
			return true
		}
	}
	return false
}
