package nlu

import (
	"strings"

	"cjk-assistant/internal/domain/model"
)

// Intent matcher thresholds. The disambiguation pass is stricter because it
// overrides the declared response-key order of one intent.
const (
	disambiguationCutoff = 0.8
	matchCutoff          = 0.6
)

// The one intent whose phrase list bundles two sub-responses (greeting vs
// thanks), and the fallback returned when nothing matches.
const (
	SupportGeneralIntent = "support_general"
	GeneralInquiryIntent = "general_inquiry"

	GreetingResponseKey = "greeting"
	ThanksResponseKey   = "thanks"
)

var (
	supportGreetingWords = []string{"bonjour", "salut", "hello", "mwaramutse", "habari"}
	supportThanksWords   = []string{"merci", "murakoze", "urakoze", "thank", "asante"}
)

// Match maps input text to an intent and an optional response key.
//
// Pass A disambiguates support_general: a fuzzy hit on one of its phrases
// plus a greeting or thanks keyword picks the matching sub-response. Pass B
// walks intents and phrases in dataset order and takes the FIRST phrase
// scoring >= 0.6, returning the intent's first declared response key. The
// first-above-threshold rule is intentional: curated dataset ordering is an
// observable tie-break and must be preserved.
func Match(ds *model.Dataset, text string) (intentName, responseKey string) {
	lower := strings.ToLower(text)

	if in := ds.Find(SupportGeneralIntent); in != nil {
		for _, phrase := range in.TrainingPhrases {
			if Ratio(lower, strings.ToLower(phrase)) < disambiguationCutoff {
				continue
			}
			if containsAny(lower, supportGreetingWords) {
				return SupportGeneralIntent, GreetingResponseKey
			}
			if containsAny(lower, supportThanksWords) {
				return SupportGeneralIntent, ThanksResponseKey
			}
		}
	}

	for i := range ds.Intents {
		in := &ds.Intents[i]
		for _, phrase := range in.TrainingPhrases {
			if Ratio(lower, strings.ToLower(phrase)) >= matchCutoff {
				return in.Name, in.Responses.FirstKey()
			}
		}
	}

	return GeneralInquiryIntent, ""
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
