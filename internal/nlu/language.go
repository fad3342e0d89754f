package nlu

import (
	"context"
	"fmt"
	"strings"

	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/adapter"
)

// Detector is one strategy in the language-detection chain. It returns a
// definite language or no opinion; it never fails the exchange.
type Detector interface {
	Detect(ctx context.Context, text string) (model.Language, bool)
}

// languageKeywords drive the fast heuristic tier. Substring match on the
// lowercased raw text, languages checked in model.AllLanguages order.
var languageKeywords = map[model.Language][]string{
	model.LangFrench:  {"bonjour", "salut", "bonsoir", "merci", "s'il", "plaît", "plait", "pourquoi", "comment"},
	model.LangEnglish: {"hello", "thanks", "thank", "please", "how are"},
	model.LangKirundi: {"mwaramutse", "mwiriwe", "murakoze", "urakoze", "amahoro", "amakuru"},
	model.LangSwahili: {"habari", "asante", "tafadhali", "jambo", "karibu", "nataka"},
}

// KeywordDetector is the first, purely local tier.
type KeywordDetector struct{}

var _ Detector = KeywordDetector{}

func (KeywordDetector) Detect(_ context.Context, text string) (model.Language, bool) {
	lower := strings.ToLower(text)
	for _, lang := range model.AllLanguages {
		for _, kw := range languageKeywords[lang] {
			if strings.Contains(lower, kw) {
				return lang, true
			}
		}
	}
	return "", false
}

// GenerativeDetector asks the generation backend to name the language from
// the closed set. Any failure or unparseable answer is "no opinion".
type GenerativeDetector struct {
	client adapter.GenerationClient
}

var _ Detector = (*GenerativeDetector)(nil)

func NewGenerativeDetector(client adapter.GenerationClient) *GenerativeDetector {
	return &GenerativeDetector{client: client}
}

func (g *GenerativeDetector) Detect(ctx context.Context, text string) (model.Language, bool) {
	prompt := fmt.Sprintf(
		"What is the language of this sentence: '%s'? Respond with only one word: 'French', 'English', 'Kirundi', or 'Swahili'.",
		text,
	)
	reply, err := g.client.Complete(ctx, adapter.CompletionRequest{
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   8,
	})
	if err != nil {
		return "", false
	}
	return ParseLanguageName(reply)
}

// ParseLanguageName extracts the first supported language named in reply,
// case- and accent-insensitively (accepts French and English spellings).
func ParseLanguageName(reply string) (model.Language, bool) {
	lower := strings.ToLower(reply)
	lower = strings.NewReplacer("ç", "c", "é", "e", "è", "e", "ê", "e", "à", "a").Replace(lower)
	switch {
	case strings.Contains(lower, "french"), strings.Contains(lower, "francais"):
		return model.LangFrench, true
	case strings.Contains(lower, "kirundi"):
		return model.LangKirundi, true
	case strings.Contains(lower, "english"), strings.Contains(lower, "anglais"):
		return model.LangEnglish, true
	case strings.Contains(lower, "swahili"):
		return model.LangSwahili, true
	}
	return "", false
}

// DetectorChain runs detectors in order and short-circuits at the first
// definite answer. Inconclusive detection resolves to the default language;
// it is not an error.
type DetectorChain struct {
	detectors []Detector
}

func NewDetectorChain(detectors ...Detector) *DetectorChain {
	return &DetectorChain{detectors: detectors}
}

func (c *DetectorChain) Detect(ctx context.Context, text string) model.Language {
	lang, _ := c.DetectWithTier(ctx, text)
	return lang
}

// DetectWithTier additionally names the tier that produced the answer
// ("keyword", "generative", or "default"), for observability.
func (c *DetectorChain) DetectWithTier(ctx context.Context, text string) (model.Language, string) {
	for _, d := range c.detectors {
		if lang, ok := d.Detect(ctx, text); ok {
			return lang, detectorTier(d)
		}
	}
	return model.DefaultLanguage, "default"
}

func detectorTier(d Detector) string {
	switch d.(type) {
	case KeywordDetector:
		return "keyword"
	case *GenerativeDetector:
		return "generative"
	default:
		return "custom"
	}
}

// DetectLocal runs only the non-remote tiers (those before any generation-
// backed detector). The greeting short-circuit uses it so a pure "Bonjour"
// never costs a generation call.
func (c *DetectorChain) DetectLocal(ctx context.Context, text string) model.Language {
	for _, d := range c.detectors {
		if _, remote := d.(*GenerativeDetector); remote {
			break
		}
		if lang, ok := d.Detect(ctx, text); ok {
			return lang
		}
	}
	return model.DefaultLanguage
}
