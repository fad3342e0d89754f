// File: internal/usecase/assistant_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/adapter"
	"cjk-assistant/internal/domain/ports/repository"
	"cjk-assistant/internal/infra/i18n"
	"cjk-assistant/internal/infra/logging"
	"cjk-assistant/internal/infra/metrics"
	"cjk-assistant/internal/nlu"
)

// Compile-time check
var _ AssistantUseCase = (*assistantUC)(nil)

// AssistantUseCase is the engine boundary. HandleMessage is synchronous and
// never fails past itself: every internal error degrades to a localized
// apology string.
type AssistantUseCase interface {
	HandleMessage(ctx context.Context, text, sessionKey string) string
}

// Options tune the two composer branches and the history window.
type Options struct {
	HistoryLimit        int
	RephraseTemperature float64
	FreeformTemperature float64
	RephraseMaxTokens   int
	FreeformMaxTokens   int
	GenerationTimeout   time.Duration
}

func (o *Options) fillDefaults() {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 6
	}
	if o.RephraseTemperature <= 0 {
		o.RephraseTemperature = 0.2
	}
	if o.FreeformTemperature <= 0 {
		o.FreeformTemperature = 0.7
	}
	if o.RephraseMaxTokens <= 0 {
		o.RephraseMaxTokens = 150
	}
	if o.FreeformMaxTokens <= 0 {
		o.FreeformMaxTokens = 400
	}
	if o.GenerationTimeout <= 0 {
		o.GenerationTimeout = 20 * time.Second
	}
}

// persona is the fixed system preamble for every generation call.
const persona = "Tu es l'assistant virtuel du Centre Jeunes Kamenge (CJK), un centre social au Burundi."

type assistantUC struct {
	dataset  repository.DatasetRepository
	sessions repository.SessionStore
	gen      adapter.GenerationClient
	detector *nlu.DetectorChain
	contexts ContextUseCase
	loc      *i18n.Bundle
	log      *zerolog.Logger
	opts     Options
}

func NewAssistantUseCase(
	dataset repository.DatasetRepository,
	sessions repository.SessionStore,
	gen adapter.GenerationClient,
	detector *nlu.DetectorChain,
	contexts ContextUseCase,
	loc *i18n.Bundle,
	logger *zerolog.Logger,
	opts Options,
) *assistantUC {
	opts.fillDefaults()
	return &assistantUC{
		dataset:  dataset,
		sessions: sessions,
		gen:      gen,
		detector: detector,
		contexts: contexts,
		loc:      loc,
		log:      logger,
		opts:     opts,
	}
}

func (a *assistantUC) HandleMessage(ctx context.Context, text, sessionKey string) string {
	log := logging.With(ctx, a.log)
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.Message("apology", string(model.DefaultLanguage))
		return a.loc.For(model.DefaultLanguage).T("apology")
	}

	ds := a.dataset.Current()
	if ds == nil {
		log.Error().Msg("no dataset snapshot loaded")
		metrics.Message("apology", string(model.DefaultLanguage))
		return a.loc.For(model.DefaultLanguage).T("apology")
	}

	// Pure greeting short-circuits everything, including generation. Language
	// comes from the local tier only so "Bonjour" stays free of remote calls.
	if nlu.IsGreetingOnly(text) {
		lang := a.detector.DetectLocal(ctx, text)
		reply := a.loc.For(lang).T("greeting")
		a.recordExchange(ctx, sessionKey, text, reply)
		metrics.Message("greeting", string(lang))
		log.Debug().Str("language", string(lang)).Msg("greeting short-circuit")
		return reply
	}

	lang, tier := a.detector.DetectWithTier(ctx, text)
	metrics.LanguageDetection(string(lang), tier)

	intentName, responseKey := nlu.Match(ds, text)
	metrics.IntentMatch(intentName)
	log.Debug().
		Str("language", string(lang)).
		Str("intent", intentName).
		Str("response_key", responseKey).
		Msg("message classified")

	if answer := ds.Response(intentName, responseKey, lang); answer != "" {
		body := a.rephrase(ctx, text, answer, lang)
		reply := a.loc.For(lang).T("empathy") + " " + body
		a.recordExchange(ctx, sessionKey, text, reply)
		metrics.Message("dataset", string(lang))
		return reply
	}

	body, err := a.freeform(ctx, sessionKey, text, lang)
	if err != nil {
		// Degrade the exchange; no turns recorded, so the next attempt sees
		// the history exactly as it was.
		log.Warn().Err(err).Msg("free-form generation failed")
		metrics.Message("apology", string(lang))
		return a.loc.For(lang).T("apology")
	}
	reply := a.loc.For(lang).T("empathy") + " " + body + "\n\n" + a.loc.For(lang).T("contact_closer")
	a.recordExchange(ctx, sessionKey, text, reply)
	metrics.Message("freeform", string(lang))
	return reply
}

// rephrase asks the model to restate a canned dataset answer in the detected
// language. History is deliberately empty: rephrasing must not drift via
// prior turns. Every failure falls back to the canned answer verbatim.
func (a *assistantUC) rephrase(ctx context.Context, userText, answer string, lang model.Language) string {
	prompt := fmt.Sprintf(
		"L'utilisateur a écrit : %q. Voici la réponse de référence du Centre Jeunes Kamenge : %q. "+
			"Reformule cette réponse de manière professionnelle et empathique, UNIQUEMENT en %s, "+
			"sans salutation et sans poser de question, en 1 ou 2 phrases maximum.",
		userText, answer, lang.FullName(),
	)
	out, err := a.generate(ctx, "rephrase", adapter.CompletionRequest{
		Prompt:      prompt,
		Preamble:    persona,
		Temperature: a.opts.RephraseTemperature,
		MaxTokens:   a.opts.RephraseMaxTokens,
	})
	if err != nil {
		logging.With(ctx, a.log).Warn().Err(err).Msg("rephrase failed; using canned answer")
		return answer
	}
	body := nlu.CleanGeneratedText(a.loc.For(lang).T("empathy"))(out)
	if body == "" {
		return answer
	}
	return body
}

// freeform answers without a canned response, grounding the model with the
// content snapshot and the recent session history.
func (a *assistantUC) freeform(ctx context.Context, sessionKey, userText string, lang model.Language) (string, error) {
	snap := a.contexts.Snapshot(ctx)

	history, err := a.sessions.Recent(ctx, sessionKey, a.opts.HistoryLimit)
	if err != nil {
		logging.With(ctx, a.log).Warn().Err(err).Msg("session history unavailable")
		history = nil
	}
	msgs := make([]adapter.Message, 0, len(history))
	for _, t := range history {
		msgs = append(msgs, adapter.Message{Role: t.Role, Content: t.Content})
	}

	out, err := a.generate(ctx, "freeform", adapter.CompletionRequest{
		Prompt:      freeformPrompt(userText, lang, snap),
		Preamble:    persona,
		History:     msgs,
		Temperature: a.opts.FreeformTemperature,
		MaxTokens:   a.opts.FreeformMaxTokens,
	})
	if err != nil {
		return "", err
	}
	body := nlu.CleanGeneratedText(a.loc.For(lang).T("empathy"))(out)
	if body == "" {
		return "", fmt.Errorf("empty generation after cleaning")
	}
	return body, nil
}

// freeformPrompt condenses the snapshot into a natural-language context
// block; empty categories are omitted entirely.
func freeformPrompt(userText string, lang model.Language, snap model.ContextSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "L'utilisateur a posé la question suivante en %s : %q.\n", lang.FullName(), userText)
	if !snap.Empty() {
		b.WriteString("Contexte actuel du centre :\n")
		if snap.ActiveMembers > 0 {
			fmt.Fprintf(&b, "- Nombre de membres actifs : %d\n", snap.ActiveMembers)
		}
		if len(snap.Articles) > 0 {
			parts := make([]string, 0, len(snap.Articles))
			for _, art := range snap.Articles {
				parts = append(parts, fmt.Sprintf("%s (par %s, %s)", art.Title, art.Author, art.Category))
			}
			fmt.Fprintf(&b, "- Derniers articles : %s\n", strings.Join(parts, "; "))
		}
		if len(snap.Activities) > 0 {
			parts := make([]string, 0, len(snap.Activities))
			for _, act := range snap.Activities {
				parts = append(parts, fmt.Sprintf("%s (%s, %s)", act.Title, act.Type, act.Date))
			}
			fmt.Fprintf(&b, "- Dernières activités : %s\n", strings.Join(parts, "; "))
		}
	}
	fmt.Fprintf(&b,
		"Réponds de manière utile et concise, UNIQUEMENT en %s, sans salutation. "+
			"Si tu ne sais pas, propose de contacter le centre.", lang.FullName())
	return b.String()
}

// generate runs one bounded generation call with latency/token metrics.
func (a *assistantUC) generate(ctx context.Context, purpose string, req adapter.CompletionRequest) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, a.opts.GenerationTimeout)
	defer cancel()

	tokens := 0
	if a.log.GetLevel() <= zerolog.DebugLevel {
		if n, err := a.gen.CountTokens(cctx, req.Prompt); err == nil {
			tokens = n
		}
	}

	start := time.Now()
	out, err := a.gen.Complete(cctx, req)
	metrics.ObserveGeneration(purpose, tokens, int(time.Since(start).Milliseconds()), err == nil)
	return out, err
}

// recordExchange appends the user/assistant pair atomically. A store failure
// is logged, not surfaced: the reply already exists and belongs to the caller.
func (a *assistantUC) recordExchange(ctx context.Context, sessionKey, userText, reply string) {
	err := a.sessions.Append(ctx, sessionKey,
		model.Turn{Role: model.RoleUser, Content: userText},
		model.Turn{Role: model.RoleAssistant, Content: reply},
	)
	if err != nil {
		logging.With(ctx, a.log).Warn().Err(err).Msg("session append failed")
	}
}
