package repository

import (
	"context"

	"rss-monitor/internal/domain/entity"
)

// StateRepository persists the seen-state between runs.
//
// Load returns an empty state when nothing was saved yet. Save replaces the
// stored state as a whole; a partial write must never be observable.
type StateRepository interface {
	Load(ctx context.Context) (entity.SeenState, error)
	Save(ctx context.Context, state entity.SeenState) error
}
