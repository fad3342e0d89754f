package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"cjk-assistant/internal/domain/model"
)

//go:embed locales
var LocalesFS embed.FS

// Keys every locale file must define. The engine composes replies from these
// fixed strings; a hole here would surface as a raw key in a user reply.
var requiredKeys = []string{"greeting", "empathy", "contact_closer", "apology"}

// Translator resolves fixed conversational strings for one language.
type Translator struct {
	translations map[string]string
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("parse translation file: %w", err)
	}
	for _, k := range requiredKeys {
		if translations[k] == "" {
			return nil, fmt.Errorf("translation file missing key %q", k)
		}
	}
	return &Translator{translations: translations}, nil
}

// NewTranslator reads locales/<lang>.yaml from the given filesystem.
func NewTranslator(fsys fs.FS, lang model.Language) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", lang))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read translation file %s: %w", filePath, err)
	}
	return newTranslatorFromBytes(data)
}

// T translates key, formatting args when given. Unknown keys come back as-is.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Bundle holds one Translator per supported language.
type Bundle struct {
	byLang map[model.Language]*Translator
}

// NewBundle loads all supported locales from fsys (use LocalesFS in prod).
func NewBundle(fsys fs.FS) (*Bundle, error) {
	byLang := make(map[model.Language]*Translator, len(model.AllLanguages))
	for _, lang := range model.AllLanguages {
		tr, err := NewTranslator(fsys, lang)
		if err != nil {
			return nil, err
		}
		byLang[lang] = tr
	}
	return &Bundle{byLang: byLang}, nil
}

// For returns the translator for lang, falling back to the default language.
func (b *Bundle) For(lang model.Language) *Translator {
	if tr, ok := b.byLang[lang]; ok {
		return tr
	}
	return b.byLang[model.DefaultLanguage]
}
