package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/repository"
)

// snapshotLimit bounds every category of the context snapshot.
const snapshotLimit = 5

// ContextUseCase aggregates a bounded snapshot of the centre's public content
// for free-form generation prompts. It never fails the request: a collaborator
// error degrades that category to empty.
type ContextUseCase interface {
	Snapshot(ctx context.Context) model.ContextSnapshot
}

var _ ContextUseCase = (*contextUC)(nil)

type contextUC struct {
	content repository.ContentRepository
	log     *zerolog.Logger
}

func NewContextUseCase(content repository.ContentRepository, logger *zerolog.Logger) *contextUC {
	return &contextUC{content: content, log: logger}
}

func (c *contextUC) Snapshot(ctx context.Context) model.ContextSnapshot {
	var snap model.ContextSnapshot

	articles, err := c.content.RecentPublishedArticles(ctx, snapshotLimit)
	if err != nil {
		c.log.Warn().Err(err).Msg("context: articles unavailable")
	} else {
		snap.Articles = capArticles(articles)
	}

	activities, err := c.content.RecentPublishedActivities(ctx, snapshotLimit)
	if err != nil {
		c.log.Warn().Err(err).Msg("context: activities unavailable")
	} else {
		snap.Activities = capActivities(activities)
	}

	count, err := c.content.ActiveMemberCount(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("context: member count unavailable")
	} else {
		snap.ActiveMembers = count
	}

	return snap
}

func capArticles(in []model.ArticleSummary) []model.ArticleSummary {
	if len(in) > snapshotLimit {
		return in[:snapshotLimit]
	}
	return in
}

func capActivities(in []model.ActivitySummary) []model.ActivitySummary {
	if len(in) > snapshotLimit {
		return in[:snapshotLimit]
	}
	return in
}
