package model

// Language is the closed set of languages the assistant speaks.
type Language string

const (
	LangFrench  Language = "fr"
	LangEnglish Language = "en"
	LangKirundi Language = "rn"
	LangSwahili Language = "sw"

	// DefaultLanguage is used whenever detection is inconclusive or fails.
	DefaultLanguage = LangFrench
)

// AllLanguages in the order detectors consider them.
var AllLanguages = []Language{LangFrench, LangEnglish, LangKirundi, LangSwahili}

// Valid reports whether code is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case LangFrench, LangEnglish, LangKirundi, LangSwahili:
		return true
	}
	return false
}

// FullName returns the French name of the language, used inside generation
// prompts ("Réponds UNIQUEMENT en <langue>").
func (l Language) FullName() string {
	switch l {
	case LangEnglish:
		return "anglais"
	case LangKirundi:
		return "kirundi"
	case LangSwahili:
		return "swahili"
	default:
		return "français"
	}
}
