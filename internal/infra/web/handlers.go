package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"cjk-assistant/internal/domain/ports/repository"
	"cjk-assistant/internal/infra/logging"
	"cjk-assistant/internal/usecase"
)

// defaultSessionKey groups anonymous callers that send no session_key.
const defaultSessionKey = "default"

type chatRequest struct {
	Message    string `json:"message"`
	SessionKey string `json:"session_key"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// chatbotHandler is the public conversation endpoint.
func chatbotHandler(assistant usecase.AssistantUseCase, dev bool, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Requête JSON invalide")
			return
		}
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "Message requis")
			return
		}
		if req.SessionKey == "" {
			req.SessionKey = defaultSessionKey
		}

		ctx := logging.WithSessionKey(r.Context(), req.SessionKey)
		logging.With(ctx, log).Info().
			Str("message", logging.Redact(req.Message, dev)).
			Msg("chat message received")

		reply := assistant.HandleMessage(ctx, req.Message, req.SessionKey)
		writeJSON(w, http.StatusOK, chatResponse{Response: reply})
	}
}

func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := statsUC.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to retrieve stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// reloadHandler swaps in a fresh dataset snapshot from disk. In-flight
// exchanges keep the snapshot they started with.
func reloadHandler(dataset repository.DatasetRepository, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := dataset.Load(r.Context())
		if err != nil {
			logging.With(r.Context(), log).Error().Err(err).Msg("dataset reload failed")
			writeError(w, http.StatusInternalServerError, "Dataset reload failed")
			return
		}
		logging.With(r.Context(), log).Info().Int("intents", len(ds.Intents)).Msg("dataset reloaded")
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "intents": len(ds.Intents)})
	}
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

// loginHandler exchanges the static admin API key for a short-lived session
// JWT, set as a cookie and returned in the body.
func loginHandler(auth *AuthManager, apiKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if apiKey == "" {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Requête JSON invalide")
			return
		}
		if req.APIKey != apiKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		token, err := auth.Mint(w)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to mint token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}
