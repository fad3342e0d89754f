package usecase

import (
	"context"
	"time"

	"cjk-assistant/internal/domain/ports/repository"
)

// Stats is the operational summary served by the admin API.
type Stats struct {
	ActiveSessions int           `json:"active_sessions"`
	DatasetIntents int           `json:"dataset_intents"`
	Uptime         time.Duration `json:"uptime"`
}

type StatsUseCase interface {
	Snapshot(ctx context.Context) (Stats, error)
}

var _ StatsUseCase = (*statsUC)(nil)

type statsUC struct {
	sessions repository.SessionStore
	dataset  repository.DatasetRepository
	started  time.Time
}

func NewStatsUseCase(sessions repository.SessionStore, dataset repository.DatasetRepository) *statsUC {
	return &statsUC{sessions: sessions, dataset: dataset, started: time.Now()}
}

func (s *statsUC) Snapshot(ctx context.Context) (Stats, error) {
	n, err := s.sessions.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	intents := 0
	if ds := s.dataset.Current(); ds != nil {
		intents = len(ds.Intents)
	}
	return Stats{
		ActiveSessions: n,
		DatasetIntents: intents,
		Uptime:         time.Since(s.started),
	}, nil
}
