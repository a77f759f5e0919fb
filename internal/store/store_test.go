package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilders(t *testing.T) {
	base := Query{}
	q := base.Eq("site_id", "s1").In("module_type", []string{"intro"}).IsNull("indexed_at").OrderBy("usage_count", "-id").Page(10, 20)

	assert.Empty(t, base.Filter, "builders must not mutate the receiver")
	assert.Equal(t, []Condition{
		{Field: "site_id", Op: OpEq, Value: "s1"},
		{Field: "module_type", Op: OpIn, Value: []string{"intro"}},
		{Field: "indexed_at", Op: OpNull, Value: true},
	}, q.Filter)
	assert.Equal(t, []string{"usage_count", "-id"}, q.Sort)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 20, q.Offset)
}

func TestValidateField(t *testing.T) {
	for _, ok := range []string{"id", "site_id", "_x", "a1"} {
		assert.NoError(t, ValidateField(ok), ok)
	}
	for _, bad := range []string{"", "Site", "1a", "id; drop table", "a-b", "a.b"} {
		assert.Error(t, ValidateField(bad), bad)
	}
}

func TestSortKey(t *testing.T) {
	f, desc := SortKey("-date_published")
	assert.Equal(t, "date_published", f)
	assert.True(t, desc)

	f, desc = SortKey("id")
	assert.Equal(t, "id", f)
	assert.False(t, desc)
}
