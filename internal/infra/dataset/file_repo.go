package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"

	"cjk-assistant/internal/domain"
	"cjk-assistant/internal/domain/model"
	"cjk-assistant/internal/domain/ports/repository"
)

var _ repository.DatasetRepository = (*FileRepository)(nil)

// FileRepository loads the curated phrase dataset from a JSON file and caches
// it as an atomically-swapped immutable snapshot, so concurrent readers never
// observe a torn reload.
type FileRepository struct {
	path string
	cur  atomic.Pointer[model.Dataset]
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load re-reads and validates the backing file, swapping the snapshot on
// success. A missing or malformed file is a hard failure; the previous
// snapshot (if any) stays in place.
func (r *FileRepository) Load(ctx context.Context) (*model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrDatasetUnavailable, r.path, err)
	}
	var ds model.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrDatasetUnavailable, r.path, err)
	}
	if err := validate(&ds); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}
	r.cur.Store(&ds)
	return &ds, nil
}

// Current returns the latest snapshot, or nil before the first Load.
func (r *FileRepository) Current() *model.Dataset {
	return r.cur.Load()
}

// validate rejects structurally broken datasets outright: no partial or
// best-effort parse is allowed.
func validate(ds *model.Dataset) error {
	if len(ds.Intents) == 0 {
		return fmt.Errorf("dataset has no intents")
	}
	seen := make(map[string]struct{}, len(ds.Intents))
	for i := range ds.Intents {
		in := &ds.Intents[i]
		if in.Name == "" {
			return fmt.Errorf("intent %d: missing intent_name", i)
		}
		if _, dup := seen[in.Name]; dup {
			return fmt.Errorf("intent %q declared twice", in.Name)
		}
		seen[in.Name] = struct{}{}
		if len(in.TrainingPhrases) == 0 {
			return fmt.Errorf("intent %q: no training phrases", in.Name)
		}
		for _, p := range in.TrainingPhrases {
			if p == "" {
				return fmt.Errorf("intent %q: empty training phrase", in.Name)
			}
		}
		for _, key := range in.Responses.Keys() {
			texts, _ := in.Responses.Get(key)
			if len(texts) == 0 {
				return fmt.Errorf("intent %q: response key %q has no texts", in.Name, key)
			}
			for lang := range texts {
				if !lang.Valid() {
					return fmt.Errorf("intent %q: response key %q: unknown language %q", in.Name, key, lang)
				}
			}
		}
	}
	return nil
}
