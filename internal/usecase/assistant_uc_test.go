package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/adapter"
	"cjk-assistant/internal/domain/ports/repository"
	"cjk-assistant/internal/infra/i18n"
	"cjk-assistant/internal/nlu"
)

// ---- fakes ----

type fakeDataset struct{ ds *model.Dataset }

var _ repository.DatasetRepository = (*fakeDataset)(nil)

func (f *fakeDataset) Load(_ context.Context) (*model.Dataset, error) { return f.ds, nil }
func (f *fakeDataset) Current() *model.Dataset                        { return f.ds }

type fakeSessions struct {
	mu        sync.Mutex
	turns     map[string][]model.Turn
	appendErr error
}

var _ repository.SessionStore = (*fakeSessions)(nil)

func newFakeSessions() *fakeSessions {
	return &fakeSessions{turns: make(map[string][]model.Turn)}
}

func (f *fakeSessions) GetOrCreate(_ context.Context, key string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess := model.NewSession(key)
	sess.Turns = append(sess.Turns, f.turns[key]...)
	return sess, nil
}

func (f *fakeSessions) Append(_ context.Context, key string, turns ...model.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.turns[key] = append(f.turns[key], turns...)
	return nil
}

func (f *fakeSessions) Recent(_ context.Context, key string, n int) ([]model.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.turns[key]
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	out := make([]model.Turn, len(all))
	copy(out, all)
	return out, nil
}

func (f *fakeSessions) Len(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turns), nil
}

func (f *fakeSessions) turnCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turns[key])
}

type scriptedGen struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
	reqs  []adapter.CompletionRequest
}

var _ adapter.GenerationClient = (*scriptedGen)(nil)

func (g *scriptedGen) Complete(_ context.Context, req adapter.CompletionRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.reqs = append(g.reqs, req)
	return g.reply, g.err
}

func (g *scriptedGen) CountTokens(_ context.Context, text string) (int, error) {
	return len(text), nil
}

type fakeContexts struct{ snap model.ContextSnapshot }

var _ ContextUseCase = (*fakeContexts)(nil)

func (f *fakeContexts) Snapshot(_ context.Context) model.ContextSnapshot { return f.snap }

// ---- fixtures ----

const engineDataset = `{
  "intents": [
    {
      "intent_name": "support_general",
      "training_phrases": ["bonjour", "merci beaucoup"],
      "responses": {
        "greeting": {"fr": "Bienvenue au centre !"},
        "thanks": {"fr": "Avec plaisir !"},
        "default": {"fr": "Nous sommes là pour vous aider."}
      }
    },
    {
      "intent_name": "hours_inquiry",
      "training_phrases": ["quelles sont vos heures d'ouverture"],
      "responses": {
        "default": {"fr": "Nous sommes ouverts de 8h a 17h."}
      }
    }
  ]
}`

type engineFixture struct {
	uc       AssistantUseCase
	sessions *fakeSessions
	gen      *scriptedGen
}

func newEngineFixture(t *testing.T, gen *scriptedGen) *engineFixture {
	t.Helper()
	var ds model.Dataset
	if err := json.Unmarshal([]byte(engineDataset), &ds); err != nil {
		t.Fatalf("unmarshal dataset: %v", err)
	}
	bundle, err := i18n.NewBundle(i18n.LocalesFS)
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	sessions := newFakeSessions()
	logger := zerolog.Nop()
	uc := NewAssistantUseCase(
		&fakeDataset{ds: &ds},
		sessions,
		gen,
		nlu.NewDetectorChain(nlu.KeywordDetector{}, nlu.NewGenerativeDetector(gen)),
		&fakeContexts{},
		bundle,
		&logger,
		Options{},
	)
	return &engineFixture{uc: uc, sessions: sessions, gen: gen}
}

const (
	frGreeting = "Bonjour ! Bienvenue au Centre Jeunes Kamenge. Comment puis-je vous aider ?"
	frEmpathy  = "Merci pour votre message, nous sommes là pour vous."
	frApology  = "Désolé, une erreur est survenue. Veuillez réessayer dans un instant."
	frCloser   = "Pour aller plus loin, vous pouvez contacter directement l'équipe du Centre Jeunes Kamenge."
)

// ---- tests ----

func TestHandleMessageGreetingShortCircuit(t *testing.T) {
	fx := newEngineFixture(t, &scriptedGen{err: errors.New("must not be called")})

	reply := fx.uc.HandleMessage(context.Background(), "Bonjour !", "s1")
	if reply != frGreeting {
		t.Errorf("reply = %q, want the greeting", reply)
	}
	if fx.gen.calls != 0 {
		t.Errorf("generation backend called %d times, want 0", fx.gen.calls)
	}
	if n := fx.sessions.turnCount("s1"); n != 2 {
		t.Errorf("recorded %d turns, want 2", n)
	}
}

func TestHandleMessageEmptyInput(t *testing.T) {
	fx := newEngineFixture(t, &scriptedGen{})

	if reply := fx.uc.HandleMessage(context.Background(), "   ", "s1"); reply != frApology {
		t.Errorf("reply = %q, want the apology", reply)
	}
	if n := fx.sessions.turnCount("s1"); n != 0 {
		t.Errorf("recorded %d turns, want 0", n)
	}
}

func TestHandleMessageDatasetBranch(t *testing.T) {
	gen := &scriptedGen{reply: "Le centre vous accueille de 8h à 17h."}
	fx := newEngineFixture(t, gen)

	reply := fx.uc.HandleMessage(context.Background(), "quelles sont vos heures d'ouverture", "s1")
	want := frEmpathy + " Le centre vous accueille de 8h à 17h."
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
	if n := fx.sessions.turnCount("s1"); n != 2 {
		t.Errorf("recorded %d turns, want 2", n)
	}

	// The rephrase call must not carry conversation history.
	last := gen.reqs[len(gen.reqs)-1]
	if len(last.History) != 0 {
		t.Errorf("rephrase carried %d history turns, want 0", len(last.History))
	}
	if !strings.Contains(last.Prompt, "Nous sommes ouverts de 8h a 17h.") {
		t.Errorf("rephrase prompt missing canned answer: %q", last.Prompt)
	}
}

func TestHandleMessageRephraseFailureFallsBackToCanned(t *testing.T) {
	fx := newEngineFixture(t, &scriptedGen{err: errors.New("backend down")})

	reply := fx.uc.HandleMessage(context.Background(), "quelles sont vos heures d'ouverture", "s1")
	want := frEmpathy + " Nous sommes ouverts de 8h a 17h."
	if reply != want {
		t.Errorf("reply = %q, want canned fallback %q", reply, want)
	}
	if n := fx.sessions.turnCount("s1"); n != 2 {
		t.Errorf("recorded %d turns, want 2", n)
	}
}

func TestHandleMessageFreeformBranch(t *testing.T) {
	gen := &scriptedGen{reply: "Le centre propose plusieurs formations."}
	fx := newEngineFixture(t, gen)

	reply := fx.uc.HandleMessage(context.Background(), "parlez-moi des formations professionnelles", "s1")
	if !strings.HasPrefix(reply, frEmpathy+" ") {
		t.Errorf("freeform reply missing empathy prefix: %q", reply)
	}
	if !strings.HasSuffix(reply, "\n\n"+frCloser) {
		t.Errorf("freeform reply missing contact closer: %q", reply)
	}
	if !strings.Contains(reply, "Le centre propose plusieurs formations.") {
		t.Errorf("freeform reply missing generated body: %q", reply)
	}
	if n := fx.sessions.turnCount("s1"); n != 2 {
		t.Errorf("recorded %d turns, want 2", n)
	}
}

func TestHandleMessageFreeformFailureRecordsNothing(t *testing.T) {
	fx := newEngineFixture(t, &scriptedGen{err: errors.New("backend down")})

	reply := fx.uc.HandleMessage(context.Background(), "parlez-moi des formations professionnelles", "s1")
	if reply != frApology {
		t.Errorf("reply = %q, want the apology", reply)
	}
	if n := fx.sessions.turnCount("s1"); n != 0 {
		t.Errorf("recorded %d turns, want 0 so a retry sees unchanged history", n)
	}
}

func TestHandleMessageFreeformEmptyAfterCleaning(t *testing.T) {
	// A generation that cleans down to nothing (pure greeting) counts as a
	// failure on the free-form branch.
	fx := newEngineFixture(t, &scriptedGen{reply: "Bonjour !"})

	reply := fx.uc.HandleMessage(context.Background(), "parlez-moi des formations professionnelles", "s1")
	if reply != frApology {
		t.Errorf("reply = %q, want the apology", reply)
	}
	if n := fx.sessions.turnCount("s1"); n != 0 {
		t.Errorf("recorded %d turns, want 0", n)
	}
}

func TestHandleMessageFreeformSendsHistory(t *testing.T) {
	gen := &scriptedGen{reply: "Bien sûr, avec plaisir."}
	fx := newEngineFixture(t, gen)

	_ = fx.sessions.Append(context.Background(), "s1",
		model.Turn{Role: model.RoleUser, Content: "première question"},
		model.Turn{Role: model.RoleAssistant, Content: "première réponse"},
	)

	_ = fx.uc.HandleMessage(context.Background(), "parlez-moi des formations professionnelles", "s1")
	last := gen.reqs[len(gen.reqs)-1]
	if len(last.History) != 2 {
		t.Fatalf("freeform carried %d history turns, want 2", len(last.History))
	}
	if last.History[0].Content != "première question" {
		t.Errorf("history[0] = %+v", last.History[0])
	}
}

func TestHandleMessageSupportDisambiguation(t *testing.T) {
	gen := &scriptedGen{reply: "Tout le plaisir est pour nous."}
	fx := newEngineFixture(t, gen)

	reply := fx.uc.HandleMessage(context.Background(), "merci beaucoup", "s1")
	want := frEmpathy + " Tout le plaisir est pour nous."
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
	// The rephrase prompt must carry the thanks variant, not the greeting one.
	last := gen.reqs[len(gen.reqs)-1]
	if !strings.Contains(last.Prompt, "Avec plaisir !") {
		t.Errorf("prompt = %q, want the thanks response", last.Prompt)
	}
}
