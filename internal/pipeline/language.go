package pipeline

// Supported conversational languages. Detection falls back to hindi for
// anything outside this set.
const DefaultLanguage = "hindi"

var supportedLanguages = map[string]bool{
	"hindi":    true,
	"bengali":  true,
	"tamil":    true,
	"telugu":   true,
	"gujarati": true,
	"marathi":  true,
}

// speechLocale maps a language name to the BCP-47 locale speech providers
// expect.
var speechLocale = map[string]string{
	"hindi":    "hi-IN",
	"bengali":  "bn-IN",
	"tamil":    "ta-IN",
	"telugu":   "te-IN",
	"gujarati": "gu-IN",
	"marathi":  "mr-IN",
}

// ttsLang maps a language name to the two-letter code the web TTS endpoint
// takes.
var ttsLang = map[string]string{
	"hindi":    "hi",
	"bengali":  "bn",
	"tamil":    "ta",
	"telugu":   "te",
	"gujarati": "gu",
	"marathi":  "mr",
}

func localeFor(language string) string {
	if l, ok := speechLocale[language]; ok {
		return l
	}
	return speechLocale[DefaultLanguage]
}

func ttsLangFor(language string) string {
	if l, ok := ttsLang[language]; ok {
		return l
	}
	return ttsLang[DefaultLanguage]
}
