package nlu

import (
	"encoding/json"
	"testing"

	"cjk-assistant/internal/domain/model"
)

func mustDataset(t *testing.T, raw string) *model.Dataset {
	t.Helper()
	var ds model.Dataset
	if err := json.Unmarshal([]byte(raw), &ds); err != nil {
		t.Fatalf("unmarshal dataset: %v", err)
	}
	return &ds
}

const matcherDataset = `{
  "intents": [
    {
      "intent_name": "support_general",
      "training_phrases": ["bonjour", "merci beaucoup", "j'ai besoin d'aide"],
      "responses": {
        "greeting": {"fr": "Bienvenue !"},
        "thanks": {"fr": "Avec plaisir !"},
        "default": {"fr": "Nous sommes là pour vous aider."}
      }
    },
    {
      "intent_name": "hours_inquiry",
      "training_phrases": ["quelles sont vos heures d'ouverture", "quand etes-vous ouverts"],
      "responses": {
        "default": {"fr": "Nous sommes ouverts de 8h a 17h."}
      }
    },
    {
      "intent_name": "hours_duplicate",
      "training_phrases": ["quelles sont vos heures d'ouverture"],
      "responses": {
        "default": {"fr": "Jamais atteint."}
      }
    },
    {
      "intent_name": "ordered_keys",
      "training_phrases": ["phrase avec cle speciale"],
      "responses": {
        "special": {"fr": "Variante spéciale."},
        "default": {"fr": "Variante par défaut."}
      }
    }
  ]
}`

func TestMatch(t *testing.T) {
	ds := mustDataset(t, matcherDataset)

	cases := []struct {
		name       string
		text       string
		wantIntent string
		wantKey    string
	}{
		{"support greeting", "Bonjour", SupportGeneralIntent, GreetingResponseKey},
		{"support thanks", "Merci beaucoup", SupportGeneralIntent, ThanksResponseKey},
		{"exact phrase", "quelles sont vos heures d'ouverture", "hours_inquiry", "default"},
		{"fuzzy phrase", "quelles sont vos heures douverture", "hours_inquiry", "default"},
		{"first declared key wins", "phrase avec cle speciale", "ordered_keys", "special"},
		{"no match", "xyzzy plugh 12345", GeneralInquiryIntent, ""},
		{"empty", "", GeneralInquiryIntent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intent, key := Match(ds, tc.text)
			if intent != tc.wantIntent || key != tc.wantKey {
				t.Errorf("Match(%q) = (%q, %q), want (%q, %q)", tc.text, intent, key, tc.wantIntent, tc.wantKey)
			}
		})
	}
}

func TestMatchDatasetOrderBreaksTies(t *testing.T) {
	ds := mustDataset(t, matcherDataset)

	// hours_inquiry and hours_duplicate share a training phrase; the earlier
	// intent must win.
	intent, _ := Match(ds, "quelles sont vos heures d'ouverture")
	if intent != "hours_inquiry" {
		t.Errorf("tie broken to %q, want hours_inquiry", intent)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	ds := mustDataset(t, matcherDataset)

	wantIntent, wantKey := Match(ds, "quand etes-vous ouverts")
	for i := 0; i < 50; i++ {
		intent, key := Match(ds, "quand etes-vous ouverts")
		if intent != wantIntent || key != wantKey {
			t.Fatalf("run %d: Match = (%q, %q), want (%q, %q)", i, intent, key, wantIntent, wantKey)
		}
	}
}

func TestMatchSupportDisambiguationNeedsKeyword(t *testing.T) {
	ds := mustDataset(t, matcherDataset)

	// Close to a support phrase but with neither a greeting nor a thanks
	// keyword: pass A stands down and pass B picks the first declared key.
	intent, key := Match(ds, "j'ai besoin d'aide")
	if intent != SupportGeneralIntent {
		t.Fatalf("intent = %q, want %q", intent, SupportGeneralIntent)
	}
	if key != "greeting" {
		t.Errorf("key = %q, want first declared key %q", key, "greeting")
	}
}
