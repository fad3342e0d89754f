package repository

import (
	"context"

	"cjk-assistant/internal/domain/model"
)

// ContentRepository is the read-only view over the centre's published content
// that feeds the context snapshot. All methods may return empty results; they
// are the only collaborators allowed to fail without failing the exchange.
type ContentRepository interface {
	RecentPublishedArticles(ctx context.Context, limit int) ([]model.ArticleSummary, error)
	RecentPublishedActivities(ctx context.Context, limit int) ([]model.ActivitySummary, error)
	ActiveMemberCount(ctx context.Context) (int, error)
}
