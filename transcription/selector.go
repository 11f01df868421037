package transcription

// Selector maps a request's language to an ordered list of backend
// candidates. It is a pure routing table: no I/O, no model state.
type Selector struct {
	codeMixThreshold float64
}

// NewSelector creates a selector. threshold <= 0 uses the default
// code-mix ratio.
func NewSelector(threshold float64) *Selector {
	if threshold <= 0 {
		threshold = DefaultCodeMixThreshold
	}
	return &Selector{codeMixThreshold: threshold}
}

// Select returns the backend kinds to try, in order. hint is only
// consulted under auto routing.
//
//	en            -> whisper
//	indic         -> conformer-onnx, then conformer-hf
//	auto + mixed  -> whisper, then conformer-onnx
//	auto          -> same as the default language's route
func (s *Selector) Select(language, hint string) []Kind {
	switch {
	case language == LanguageEnglish:
		return []Kind{KindWhisper}
	case language == LanguageAuto:
		if hint != "" && IsCodeMixed(hint, s.codeMixThreshold) {
			return []Kind{KindWhisper, KindConformerONNX}
		}
		return []Kind{KindConformerONNX, KindConformerHF}
	default:
		return []Kind{KindConformerONNX, KindConformerHF}
	}
}

// ResolveLanguage maps auto routing onto a concrete language for model
// keys and normalization: code-mixed hints resolve to the default
// language, as does a missing declaration.
func (s *Selector) ResolveLanguage(language, hint string) string {
	if language == "" || language == LanguageAuto {
		return DefaultLanguage
	}
	return language
}
