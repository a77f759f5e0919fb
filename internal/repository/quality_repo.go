package repository

import (
	"context"

	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/store"
)

// QualityFlagRepository persists near-duplicate findings. Flags are only
// created here; review happens outside the pipeline.
type QualityFlagRepository struct {
	store store.Store
}

// NewQualityFlagRepository creates a new QualityFlagRepository.
func NewQualityFlagRepository(s store.Store) *QualityFlagRepository {
	return &QualityFlagRepository{store: s}
}

// Create inserts a flag with pending status.
func (r *QualityFlagRepository) Create(ctx context.Context, f *domain.QualityFlag) error {
	f.ID = newID(f.ID)
	f.CreatedAt = stamp(f.CreatedAt)
	if f.Status == "" {
		f.Status = domain.QualityFlagPending
	}
	return r.store.CreateItem(ctx, CollectionFlags, f)
}

// ByQueue lists the flags raised for a queue.
func (r *QualityFlagRepository) ByQueue(ctx context.Context, queueID string) ([]domain.QualityFlag, error) {
	var flags []domain.QualityFlag
	q := store.Query{}.Eq("queue_id", queueID).OrderBy("created_at", "id")
	if err := r.store.ReadItems(ctx, CollectionFlags, q, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}
