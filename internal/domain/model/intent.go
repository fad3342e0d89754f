package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Intent is one labeled category of user requests: example phrases to match
// against, plus canned answers per response key and language. Intents are
// built once per dataset load and immutable afterwards.
type Intent struct {
	Name            string      `json:"intent_name"`
	TrainingPhrases []string    `json:"training_phrases"`
	Responses       ResponseSet `json:"responses"`
}

// Response resolves the canned text for a response key and language.
// A present key wins even when its text for lang is empty; otherwise the
// "default" key is the fallback. Returns "" when nothing applies.
func (i *Intent) Response(key string, lang Language) string {
	if key != "" {
		if texts, ok := i.Responses.Get(key); ok {
			return texts[lang]
		}
	}
	if texts, ok := i.Responses.Get(DefaultResponseKey); ok {
		return texts[lang]
	}
	return ""
}

// DefaultResponseKey selects the fallback answer variant of an intent.
const DefaultResponseKey = "default"

// ResponseSet maps response keys to per-language canned texts. JSON object
// key order is preserved: the intent matcher returns the first declared key,
// so iteration order is load-bearing and must survive decoding.
type ResponseSet struct {
	keys  []string
	texts map[string]map[Language]string
}

// Add appends a key with its texts, keeping declaration order.
func (r *ResponseSet) Add(key string, texts map[Language]string) {
	if r.texts == nil {
		r.texts = make(map[string]map[Language]string)
	}
	if _, dup := r.texts[key]; !dup {
		r.keys = append(r.keys, key)
	}
	r.texts[key] = texts
}

// Get returns the per-language texts for key.
func (r *ResponseSet) Get(key string) (map[Language]string, bool) {
	texts, ok := r.texts[key]
	return texts, ok
}

// FirstKey returns the first declared response key, or "" for an empty set.
func (r *ResponseSet) FirstKey() string {
	if len(r.keys) == 0 {
		return ""
	}
	return r.keys[0]
}

// Keys returns response keys in declaration order.
func (r *ResponseSet) Keys() []string { return append([]string(nil), r.keys...) }

// Len returns the number of response keys.
func (r *ResponseSet) Len() int { return len(r.keys) }

// UnmarshalJSON decodes the JSON object token-by-token so that key order is
// retained (encoding/json maps would scramble it).
func (r *ResponseSet) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("responses: expected object, got %v", tok)
	}
	r.keys = nil
	r.texts = make(map[string]map[Language]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("responses: non-string key %v", keyTok)
		}
		var texts map[Language]string
		if err := dec.Decode(&texts); err != nil {
			return fmt.Errorf("responses[%s]: %w", key, err)
		}
		r.Add(key, texts)
	}
	return nil
}

// MarshalJSON emits keys in declaration order.
func (r ResponseSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.texts[key])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Dataset is the immutable phrase catalog loaded from the curated resource.
type Dataset struct {
	Intents []Intent `json:"intents"`
}

// Find returns the intent named name, or nil.
func (d *Dataset) Find(name string) *Intent {
	for i := range d.Intents {
		if d.Intents[i].Name == name {
			return &d.Intents[i]
		}
	}
	return nil
}

// Response resolves the canned answer for an intent/key/language triple.
// Unknown intents (such as the general-inquiry fallback) resolve to "".
func (d *Dataset) Response(intentName, key string, lang Language) string {
	in := d.Find(intentName)
	if in == nil {
		return ""
	}
	return in.Response(key, lang)
}
