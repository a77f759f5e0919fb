package repository

import (
	"context"
	"time"

	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/store"
)

// QueueRepository handles production queue records.
type QueueRepository struct {
	store store.Store
}

// NewQueueRepository creates a new QueueRepository.
// Parameters:
//   - s: item store backing the repository.
// Returns:
//   - *QueueRepository: repository instance bound to s.
func NewQueueRepository(s store.Store) *QueueRepository {
	return &QueueRepository{store: s}
}

// Create inserts a new queue.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - q: queue to persist; ID and timestamps are filled when empty.
// Returns:
//   - error: non-nil if the insert fails.
func (r *QueueRepository) Create(ctx context.Context, q *domain.ProductionQueue) error {
	q.ID = newID(q.ID)
	q.CreatedAt = stamp(q.CreatedAt)
	q.UpdatedAt = stamp(q.UpdatedAt)
	if q.Status == "" {
		q.Status = domain.QueueStatusQueued
	}
	return r.store.CreateItem(ctx, CollectionQueues, q)
}

// GetByID retrieves a queue by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: queue ID.
// Returns:
//   - *domain.ProductionQueue: queue if found.
//   - error: wraps store.ErrNotFound when missing.
func (r *QueueRepository) GetByID(ctx context.Context, id string) (*domain.ProductionQueue, error) {
	return store.FindOne[domain.ProductionQueue](ctx, r.store, CollectionQueues, store.Query{}.Eq("id", id))
}

// Update applies patch and returns the stored queue.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: queue ID.
//   - patch: column name to new value; updated_at is always refreshed.
// Returns:
//   - *domain.ProductionQueue: queue after the update.
//   - error: non-nil if the update fails.
func (r *QueueRepository) Update(ctx context.Context, id string, patch map[string]any) (*domain.ProductionQueue, error) {
	patch["updated_at"] = time.Now().UTC()
	var q domain.ProductionQueue
	if err := r.store.UpdateItem(ctx, CollectionQueues, id, patch, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// LatestPending returns the newest queue of a campaign that still awaits
// approval.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - campaignID: campaign the queue belongs to.
// Returns:
//   - *domain.ProductionQueue: newest queued or test_batch queue.
//   - error: wraps store.ErrNotFound when there is none.
func (r *QueueRepository) LatestPending(ctx context.Context, campaignID string) (*domain.ProductionQueue, error) {
	q := store.Query{}.
		Eq("campaign_id", campaignID).
		In("status", []string{string(domain.QueueStatusQueued), string(domain.QueueStatusTestBatch)}).
		OrderBy("-created_at", "-id")
	return store.FindOne[domain.ProductionQueue](ctx, r.store, CollectionQueues, q)
}
