package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/repository"
)

type fakeContent struct {
	articles      []model.ArticleSummary
	activities    []model.ActivitySummary
	members       int
	articlesErr   error
	activitiesErr error
	membersErr    error
}

var _ repository.ContentRepository = (*fakeContent)(nil)

func (f *fakeContent) RecentPublishedArticles(_ context.Context, limit int) ([]model.ArticleSummary, error) {
	if f.articlesErr != nil {
		return nil, f.articlesErr
	}
	if limit > 0 && len(f.articles) > limit {
		return f.articles[:limit], nil
	}
	return f.articles, nil
}

func (f *fakeContent) RecentPublishedActivities(_ context.Context, limit int) ([]model.ActivitySummary, error) {
	if f.activitiesErr != nil {
		return nil, f.activitiesErr
	}
	if limit > 0 && len(f.activities) > limit {
		return f.activities[:limit], nil
	}
	return f.activities, nil
}

func (f *fakeContent) ActiveMemberCount(_ context.Context) (int, error) {
	return f.members, f.membersErr
}

func TestContextSnapshot(t *testing.T) {
	logger := zerolog.Nop()
	content := &fakeContent{
		articles:   []model.ArticleSummary{{Title: "Tournoi de football", Author: "Aline", Category: "Sport"}},
		activities: []model.ActivitySummary{{Title: "Atelier couture", Type: "Formation", Date: "12/08/2026"}},
		members:    240,
	}
	uc := NewContextUseCase(content, &logger)

	snap := uc.Snapshot(context.Background())
	if snap.Empty() {
		t.Fatal("snapshot should not be empty")
	}
	if snap.ActiveMembers != 240 || len(snap.Articles) != 1 || len(snap.Activities) != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestContextSnapshotDegradesPerCategory(t *testing.T) {
	logger := zerolog.Nop()
	content := &fakeContent{
		articles:      []model.ArticleSummary{{Title: "A"}},
		activitiesErr: errors.New("db down"),
		members:       12,
	}
	uc := NewContextUseCase(content, &logger)

	snap := uc.Snapshot(context.Background())
	if len(snap.Articles) != 1 {
		t.Errorf("articles should survive an activities failure: %+v", snap)
	}
	if len(snap.Activities) != 0 {
		t.Errorf("failed category must degrade to empty: %+v", snap)
	}
	if snap.ActiveMembers != 12 {
		t.Errorf("member count should survive: %+v", snap)
	}
}

func TestContextSnapshotAllFailuresYieldEmpty(t *testing.T) {
	logger := zerolog.Nop()
	boom := errors.New("db down")
	uc := NewContextUseCase(&fakeContent{articlesErr: boom, activitiesErr: boom, membersErr: boom}, &logger)

	if snap := uc.Snapshot(context.Background()); !snap.Empty() {
		t.Errorf("snapshot should be empty, got %+v", snap)
	}
}

func TestContextSnapshotBoundsCategories(t *testing.T) {
	logger := zerolog.Nop()
	content := &fakeContent{}
	for i := 0; i < 20; i++ {
		content.articles = append(content.articles, model.ArticleSummary{Title: "t"})
		content.activities = append(content.activities, model.ActivitySummary{Title: "t"})
	}
	uc := NewContextUseCase(content, &logger)

	snap := uc.Snapshot(context.Background())
	if len(snap.Articles) > 5 || len(snap.Activities) > 5 {
		t.Errorf("snapshot categories not bounded: %d articles, %d activities",
			len(snap.Articles), len(snap.Activities))
	}
}
