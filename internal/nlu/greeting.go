package nlu

import (
	"strings"
	"unicode"
)

// Fixed multilingual greeting vocabulary. The filter is deliberately exact /
// whole-token: a false positive here skips language detection and intent
// resolution entirely, so no fuzzy matching is allowed.
var greetingPhrases = map[string]struct{}{
	"bonjour":        {},
	"bonsoir":        {},
	"salut":          {},
	"coucou":         {},
	"hello":          {},
	"hi":             {},
	"hey":            {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
	"mwaramutse":     {},
	"mwiriwe":        {},
	"amahoro":        {},
	"habari":         {},
	"jambo":          {},
	"mambo":          {},
	"salama":         {},
}

// greetingTokens covers greeting words plus "how are you"-style openers in all
// four languages; an input is greeting-only when every token belongs here.
var greetingTokens = map[string]struct{}{
	// fr
	"bonjour": {}, "bonsoir": {}, "salut": {}, "coucou": {},
	"comment": {}, "ça": {}, "ca": {}, "va": {}, "vas": {}, "tu": {}, "vous": {}, "allez": {},
	// en
	"hello": {}, "hi": {}, "hey": {}, "good": {}, "morning": {}, "afternoon": {}, "evening": {},
	"how": {}, "are": {}, "you": {}, "doing": {},
	// rn
	"mwaramutse": {}, "mwiriwe": {}, "amahoro": {}, "bite": {}, "amakuru": {},
	// sw
	"habari": {}, "jambo": {}, "mambo": {}, "salama": {}, "gani": {}, "yako": {}, "zenu": {},
}

// NormalizeGreeting lowercases, strips everything but letters, digits,
// underscores and apostrophes, and collapses whitespace.
func NormalizeGreeting(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'' || r == '’':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IsGreetingOnly reports whether text is pure greeting/small talk: either the
// normalized string equals a known greeting phrase, or every token belongs to
// the greeting vocabulary. An empty normalized string never matches.
func IsGreetingOnly(text string) bool {
	norm := NormalizeGreeting(text)
	if norm == "" {
		return false
	}
	if _, ok := greetingPhrases[norm]; ok {
		return true
	}
	for _, tok := range strings.Fields(norm) {
		if _, ok := greetingTokens[tok]; !ok {
			return false
		}
	}
	return true
}

// IsGreetingToken reports whether a single normalized token belongs to the
// greeting/small-talk vocabulary of the whole-input classifier.
func IsGreetingToken(tok string) bool {
	_, ok := greetingTokens[tok]
	return ok
}

// leadingGreetingWords are the only words StripLeadingGreeting may drop from
// the front of generated text. Deliberately narrower than greetingTokens:
// filler like "vous", "comment" or "you" opens real sentences and must
// survive ("good" is handled separately, as part of "good morning" only).
var leadingGreetingWords = map[string]struct{}{
	"bonjour": {}, "bonsoir": {}, "salut": {}, "coucou": {},
	"hello": {}, "hi": {}, "hey": {},
	"mwaramutse": {}, "mwiriwe": {}, "amahoro": {},
	"habari": {}, "jambo": {}, "mambo": {}, "salama": {},
}

func isLeadingGreetingWord(tok string) bool {
	_, ok := leadingGreetingWords[tok]
	return ok
}
