// Package store defines the item-store port the pipeline persists through.
// Collections are addressed by name and items are plain structs tagged with
// json and gorm column names that agree with each other.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ErrNotFound is returned when a lookup matches no item.
var ErrNotFound = errors.New("item not found")

// Op is a filter operator.
type Op string

const (
	OpEq      Op = "_eq"
	OpIn      Op = "_in"
	OpNotIn   Op = "_nin"
	OpNull    Op = "_null"
	OpNotNull Op = "_nnull"
)

// Condition restricts one field.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Query describes a read. Conditions are combined with AND. Sort entries are
// field names, prefixed with "-" for descending order. A zero Limit means no limit.
type Query struct {
	Filter []Condition
	Sort   []string
	Limit  int
	Offset int
}

// Eq appends an equality condition and returns q.
func (q Query) Eq(field string, value any) Query {
	return q.with(Condition{Field: field, Op: OpEq, Value: value})
}

// In appends a membership condition.
func (q Query) In(field string, values any) Query {
	return q.with(Condition{Field: field, Op: OpIn, Value: values})
}

// NotIn appends a non-membership condition.
func (q Query) NotIn(field string, values any) Query {
	return q.with(Condition{Field: field, Op: OpNotIn, Value: values})
}

// IsNull appends a null check.
func (q Query) IsNull(field string) Query {
	return q.with(Condition{Field: field, Op: OpNull, Value: true})
}

// NotNull appends a not-null check.
func (q Query) NotNull(field string) Query {
	return q.with(Condition{Field: field, Op: OpNotNull, Value: true})
}

// OrderBy appends sort keys.
func (q Query) OrderBy(keys ...string) Query {
	q.Sort = append(slices.Clip(q.Sort), keys...)
	return q
}

// Page sets limit and offset.
func (q Query) Page(limit, offset int) Query {
	q.Limit, q.Offset = limit, offset
	return q
}

func (q Query) with(c Condition) Query {
	q.Filter = append(slices.Clip(q.Filter), c)
	return q
}

// Store is the external item store. out arguments are pointers to a slice
// (ReadItems) or a struct (UpdateItem).
type Store interface {
	ReadItems(ctx context.Context, collection string, q Query, out any) error
	CreateItem(ctx context.Context, collection string, item any) error
	UpdateItem(ctx context.Context, collection, id string, patch map[string]any, out any) error
}

// Incrementer is implemented by stores that can bump a numeric field atomically.
type Incrementer interface {
	Increment(ctx context.Context, collection, id, field string, delta int) error
}

// FindOne reads the first item matching q.
func FindOne[T any](ctx context.Context, s Store, collection string, q Query) (*T, error) {
	var items []T
	q.Limit = 1
	if err := s.ReadItems(ctx, collection, q, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", collection, ErrNotFound)
	}
	return &items[0], nil
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateField rejects names that are not plain snake_case identifiers.
func ValidateField(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid field name %q", name)
	}
	return nil
}

// SortKey splits a sort entry into field name and direction.
func SortKey(key string) (field string, desc bool) {
	if strings.HasPrefix(key, "-") {
		return key[1:], true
	}
	return key, false
}
