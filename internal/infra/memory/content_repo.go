package memory

import (
	"context"

	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/repository"
)

// ContentRepo serves a fixed content snapshot. It stands in for the database
// in dev mode and when no database URL is configured.
type ContentRepo struct {
	Articles   []model.ArticleSummary
	Activities []model.ActivitySummary
	Members    int
}

var _ repository.ContentRepository = (*ContentRepo)(nil)

func NewContentRepo() *ContentRepo {
	return &ContentRepo{}
}

func (r *ContentRepo) RecentPublishedArticles(_ context.Context, limit int) ([]model.ArticleSummary, error) {
	if limit > 0 && len(r.Articles) > limit {
		return r.Articles[:limit], nil
	}
	return r.Articles, nil
}

func (r *ContentRepo) RecentPublishedActivities(_ context.Context, limit int) ([]model.ActivitySummary, error) {
	if limit > 0 && len(r.Activities) > limit {
		return r.Activities[:limit], nil
	}
	return r.Activities, nil
}

func (r *ContentRepo) ActiveMemberCount(_ context.Context) (int, error) {
	return r.Members, nil
}
