package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/timmy/contentfactory/internal/store"
	"gorm.io/gorm"
)

// ItemStore implements store.Store on top of a relational database.
type ItemStore struct {
	db *gorm.DB
}

var (
	_ store.Store       = (*ItemStore)(nil)
	_ store.Incrementer = (*ItemStore)(nil)
)

// NewItemStore creates a new ItemStore.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ItemStore: store bound to db.
func NewItemStore(db *gorm.DB) *ItemStore {
	return &ItemStore{db: db}
}

// ReadItems loads the items of collection matching q into out.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - collection: table name.
//   - q: filter, sort and pagination.
//   - out: pointer to a slice of the item type.
// Returns:
//   - error: non-nil if the query is invalid or fails.
func (s *ItemStore) ReadItems(ctx context.Context, collection string, q store.Query, out any) error {
	tx, err := s.scoped(ctx, collection, q.Filter)
	if err != nil {
		return err
	}
	for _, key := range q.Sort {
		field, desc := store.SortKey(key)
		if err := store.ValidateField(field); err != nil {
			return err
		}
		if desc {
			field += " DESC"
		}
		tx = tx.Order(field)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if err := tx.Find(out).Error; err != nil {
		return fmt.Errorf("read %s: %w", collection, err)
	}
	return nil
}

// CreateItem inserts item into collection.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - collection: table name.
//   - item: pointer to the record; defaults written by the database are filled back.
// Returns:
//   - error: non-nil if the insert fails.
func (s *ItemStore) CreateItem(ctx context.Context, collection string, item any) error {
	if err := store.ValidateField(collection); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Table(collection).Create(item).Error; err != nil {
		return fmt.Errorf("create %s: %w", collection, err)
	}
	return nil
}

// UpdateItem applies patch to the item with the given id and reloads it into out.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - collection: table name.
//   - id: primary key of the item.
//   - patch: column name to value.
//   - out: optional pointer to a struct receiving the updated item.
// Returns:
//   - error: store.ErrNotFound if no item has id, otherwise non-nil on failure.
func (s *ItemStore) UpdateItem(ctx context.Context, collection, id string, patch map[string]any, out any) error {
	if err := store.ValidateField(collection); err != nil {
		return err
	}
	for field := range patch {
		if err := store.ValidateField(field); err != nil {
			return err
		}
	}

	res := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, store.ErrNotFound)
	}
	if out == nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Take(out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("reload %s/%s: %w", collection, id, store.ErrNotFound)
		}
		return fmt.Errorf("reload %s/%s: %w", collection, id, err)
	}
	return nil
}

// Increment adds delta to a numeric column in a single statement.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - collection: table name.
//   - id: primary key of the item.
//   - field: numeric column to bump.
//   - delta: amount to add.
// Returns:
//   - error: store.ErrNotFound if no item has id.
func (s *ItemStore) Increment(ctx context.Context, collection, id, field string, delta int) error {
	if err := store.ValidateField(collection); err != nil {
		return err
	}
	if err := store.ValidateField(field); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).
		UpdateColumn(field, gorm.Expr(field+" + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("increment %s/%s: %w", collection, id, store.ErrNotFound)
	}
	return nil
}

func (s *ItemStore) scoped(ctx context.Context, collection string, filter []store.Condition) (*gorm.DB, error) {
	if err := store.ValidateField(collection); err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Table(collection)
	for _, c := range filter {
		if err := store.ValidateField(c.Field); err != nil {
			return nil, err
		}
		switch c.Op {
		case store.OpEq:
			tx = tx.Where(c.Field+" = ?", c.Value)
		case store.OpIn, store.OpNotIn:
			if isEmptySlice(c.Value) {
				if c.Op == store.OpIn {
					tx = tx.Where("1 = 0")
				}
				continue
			}
			if c.Op == store.OpIn {
				tx = tx.Where(c.Field+" IN ?", c.Value)
			} else {
				tx = tx.Where(c.Field+" NOT IN ?", c.Value)
			}
		case store.OpNull:
			tx = tx.Where(c.Field + " IS NULL")
		case store.OpNotNull:
			tx = tx.Where(c.Field + " IS NOT NULL")
		default:
			return nil, fmt.Errorf("unsupported filter operator %q", c.Op)
		}
	}
	return tx, nil
}

func isEmptySlice(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.Len() == 0
}
