package transcription

// DefaultLanguage is used when a project has no usable language setting.
const DefaultLanguage = "es"

// supportedLanguages is the set of ISO 639-1 codes the widget offers.
var supportedLanguages = map[string]struct{}{
	"es": {},
	"en": {},
	"pt": {},
	"fr": {},
	"de": {},
	"it": {},
	"ja": {},
	"ko": {},
	"zh": {},
}

// NormalizeLanguage maps a project language setting to a supported code,
// falling back to the default for unknown or empty values.
func NormalizeLanguage(lang string) string {
	if _, ok := supportedLanguages[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

// SupportedLanguage reports whether lang is a supported ISO 639-1 code.
func SupportedLanguage(lang string) bool {
	_, ok := supportedLanguages[lang]
	return ok
}
