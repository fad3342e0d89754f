package repository

import (
	"context"

	"cjk-assistant/internal/domain/model"
)

// DatasetRepository loads the curated phrase dataset. Load performs a full
// parse-and-validate pass and swaps the cached snapshot atomically; Current
// hands out the latest immutable snapshot lock-free.
type DatasetRepository interface {
	Load(ctx context.Context) (*model.Dataset, error)
	Current() *model.Dataset
}
