package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"cjk-assistant/internal/domain/ports/repository"
	"cjk-assistant/internal/infra/logging"
	"cjk-assistant/internal/usecase"
)

type Server struct {
	assistant usecase.AssistantUseCase
	statsUC   usecase.StatsUseCase
	dataset   repository.DatasetRepository
	auth      *AuthManager
	apiKey    string
	dev       bool
	log       *zerolog.Logger

	srv *http.Server
}

func NewServer(
	assistant usecase.AssistantUseCase,
	statsUC usecase.StatsUseCase,
	dataset repository.DatasetRepository,
	auth *AuthManager,
	apiKey string,
	dev bool,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		assistant: assistant,
		statsUC:   statsUC,
		dataset:   dataset,
		auth:      auth,
		apiKey:    apiKey,
		dev:       dev,
		log:       logger,
	}
}

// Router builds the full route tree: the public chatbot endpoint, health and
// metrics, and the admin API behind auth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestContext)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	chat := chatbotHandler(s.assistant, s.dev, s.log)
	r.Post("/api/chatbot", chat)
	r.Post("/api/chatbot/", chat)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", loginHandler(s.auth, s.apiKey))
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/stats", statsHandler(s.statsUC))
			r.Post("/dataset/reload", reloadHandler(s.dataset, s.log))
		})
	})

	return r
}

// requestContext tags every request with an id carried through the logger
// context and echoed back to the client.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := logging.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

// authMiddleware admits either the static admin API key as a bearer token or
// a session JWT minted by the login endpoint.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if bearerToken(r) == s.apiKey {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func (s *Server) Start(port int) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", port).Msg("HTTP server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
