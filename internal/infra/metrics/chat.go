package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		messagesTotal,
		intentMatches,
		languageDetections,
		generationLatencyMs,
		generationTokensIn,
	)
}

var (
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_messages_total",
			Help: "Handled messages per composer branch and reply language.",
		},
		[]string{"branch", "language"},
	)

	intentMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_intent_matches_total",
			Help: "Intent matcher outcomes per intent id.",
		},
		[]string{"intent"},
	)

	languageDetections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_language_detections_total",
			Help: "Language detections per language and detector tier.",
		},
		[]string{"language", "tier"},
	)

	generationLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_generation_latency_ms",
			Help:    "Generation call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"purpose", "success"},
	)

	generationTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_generation_tokens_in",
			Help: "Best-effort prompt token counts per call purpose.",
		},
		[]string{"purpose"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Message counts one finished exchange (branch: greeting|dataset|freeform|apology).
func Message(branch, language string) {
	messagesTotal.WithLabelValues(norm(branch), norm(language)).Inc()
}

func IntentMatch(intent string) {
	intentMatches.WithLabelValues(norm(intent)).Inc()
}

// LanguageDetection counts one detection (tier: keyword|generative|default).
func LanguageDetection(language, tier string) {
	languageDetections.WithLabelValues(norm(language), norm(tier)).Inc()
}

// ObserveGeneration records one generation call (purpose: rephrase|freeform|langdetect).
func ObserveGeneration(purpose string, tokensIn, latencyMs int, success bool) {
	if tokensIn > 0 {
		generationTokensIn.WithLabelValues(norm(purpose)).Add(float64(tokensIn))
	}
	generationLatencyMs.WithLabelValues(norm(purpose), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
