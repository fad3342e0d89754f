package nlu

import (
	"regexp"
	"strings"
)

// Transform is one pure text normalization step. Generated text runs through
// a fixed ordered pipeline of these so each step stays unit-testable.
type Transform func(string) string

// Pipeline composes transforms left to right.
func Pipeline(steps ...Transform) Transform {
	return func(s string) string {
		for _, step := range steps {
			s = step(s)
		}
		return s
	}
}

var leadingWordRe = regexp.MustCompile(`^[\s,.!:;¡¿-]*([\p{L}'’]+)`)

// StripLeadingGreeting removes greeting words (and trailing punctuation) from
// the front of generated text. Models love to open with "Bonjour !" even when
// told not to. Only actual greeting words are dropped; small-talk filler like
// "Vous"/"Comment"/"You" legitimately starts answers and stays.
func StripLeadingGreeting(s string) string {
	for {
		m := leadingWordRe.FindStringSubmatchIndex(s)
		if m == nil {
			return strings.TrimSpace(s)
		}
		word := strings.ToLower(s[m[2]:m[3]])
		rest := s[m[3]:]
		if word == "good" {
			m2 := leadingWordRe.FindStringSubmatchIndex(rest)
			if m2 == nil {
				return strings.TrimSpace(s)
			}
			switch strings.ToLower(rest[m2[2]:m2[3]]) {
			case "morning", "afternoon", "evening":
				s = strings.TrimLeft(rest[m2[3]:], " \t\r\n,.!:;-")
				continue
			}
			return strings.TrimSpace(s)
		}
		if !isLeadingGreetingWord(word) {
			return strings.TrimSpace(s)
		}
		s = strings.TrimLeft(rest, " \t\r\n,.!:;-")
	}
}

// StripPhrase removes every occurrence of phrase, case-insensitively. Used to
// drop an accidental duplicate of the canned empathy line.
func StripPhrase(phrase string) Transform {
	phrase = strings.TrimSpace(phrase)
	return func(s string) string {
		if phrase == "" {
			return s
		}
		lowerS, lowerP := strings.ToLower(s), strings.ToLower(phrase)
		var b strings.Builder
		for {
			i := strings.Index(lowerS, lowerP)
			if i < 0 {
				b.WriteString(s)
				return b.String()
			}
			b.WriteString(s[:i])
			s, lowerS = s[i+len(phrase):], lowerS[i+len(phrase):]
		}
	}
}

var sentenceRe = regexp.MustCompile(`[^.!?…]+[.!?…]*`)

// LimitSentences truncates to at most n sentences, splitting on terminal
// punctuation runs.
func LimitSentences(n int) Transform {
	return func(s string) string {
		if n <= 0 {
			return ""
		}
		parts := sentenceRe.FindAllString(s, -1)
		if len(parts) <= n {
			return strings.TrimSpace(s)
		}
		return strings.TrimSpace(strings.Join(parts[:n], ""))
	}
}

// CollapseWhitespace folds all whitespace runs into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanGeneratedText is the standard pipeline applied to every generated
// body, in this exact order: strip a leading greeting, drop a duplicated
// empathy line, cap at two sentences, collapse whitespace.
func CleanGeneratedText(empathyLine string) Transform {
	return Pipeline(
		StripLeadingGreeting,
		StripPhrase(empathyLine),
		LimitSentences(2),
		CollapseWhitespace,
	)
}
