package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/repository"
	"github.com/timmy/contentfactory/internal/store"
	"github.com/timmy/contentfactory/internal/testutil"
)

func TestItemStore_ReadItems(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	locations := repository.NewLocationRepository(s)

	for _, l := range []domain.Location{
		{ID: "l1", City: "Austin", State: "Texas"},
		{ID: "l2", City: "Dallas", State: "Texas"},
		{ID: "l3", City: "Tulsa", State: "Oklahoma"},
		{ID: "l4", City: "Houston", State: "Texas"},
	} {
		l := l
		require.NoError(t, locations.Create(ctx, &l))
	}

	tests := []struct {
		name string
		q    store.Query
		want []string
	}{
		{"eq", store.Query{}.Eq("state", "Texas").OrderBy("id"), []string{"l1", "l2", "l4"}},
		{"in", store.Query{}.In("city", []string{"Tulsa", "Austin"}).OrderBy("id"), []string{"l1", "l3"}},
		{"not in", store.Query{}.NotIn("id", []string{"l1", "l2"}).OrderBy("id"), []string{"l3", "l4"}},
		{"empty in matches nothing", store.Query{}.In("id", []string{}), []string{}},
		{"descending", store.Query{}.OrderBy("-id"), []string{"l4", "l3", "l2", "l1"}},
		{"page", store.Query{}.OrderBy("id").Page(2, 1), []string{"l2", "l3"}},
		{"offset only", store.Query{}.OrderBy("id").Page(0, 3), []string{"l4"}},
		{"null", store.Query{}.IsNull("state_code"), []string{}},
		{"not null", store.Query{}.NotNull("state_code").OrderBy("id").Page(1, 0), []string{"l1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []domain.Location
			require.NoError(t, s.ReadItems(ctx, repository.CollectionLocations, tt.q, &got))
			ids := []string{}
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("invalid field", func(t *testing.T) {
		var got []domain.Location
		err := s.ReadItems(ctx, repository.CollectionLocations, store.Query{}.Eq("state; --", "x"), &got)
		assert.Error(t, err)
	})
}

func TestItemStore_UpdateItem(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	queues := repository.NewQueueRepository(s)

	q := &domain.ProductionQueue{SiteID: "s1", CampaignID: "c1", TotalScheduled: 3}
	require.NoError(t, queues.Create(ctx, q))
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, domain.QueueStatusQueued, q.Status)

	updated, err := queues.Update(ctx, q.ID, map[string]any{
		"status":          string(domain.QueueStatusApproved),
		"completed_count": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatusApproved, updated.Status)
	assert.Equal(t, 2, updated.CompletedCount)
	assert.Equal(t, 3, updated.TotalScheduled)

	_, err = queues.Update(ctx, "missing", map[string]any{"status": "done"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = queues.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestQueueRepository_ScheduleRoundTrip(t *testing.T) {
	ctx := context.Background()
	queues := repository.NewQueueRepository(testutil.NewStore(t))

	publish := time.Date(2023, 5, 1, 14, 30, 0, 0, time.UTC)
	modified := time.Date(2024, 5, 28, 10, 0, 0, 0, time.UTC)
	q := &domain.ProductionQueue{
		SiteID:       "s1",
		CampaignID:   "c1",
		ScheduleData: domain.ScheduleData{{PublishDate: publish, ModifiedDate: modified}},
	}
	require.NoError(t, queues.Create(ctx, q))

	got, err := queues.GetByID(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.ScheduleData, 1)
	assert.True(t, got.ScheduleData[0].PublishDate.Equal(publish))
	assert.True(t, got.ScheduleData[0].ModifiedDate.Equal(modified))
}

func TestQueueRepository_LatestPending(t *testing.T) {
	ctx := context.Background()
	queues := repository.NewQueueRepository(testutil.NewStore(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, status := range []domain.QueueStatus{domain.QueueStatusQueued, domain.QueueStatusTestBatch, domain.QueueStatusRunning} {
		require.NoError(t, queues.Create(ctx, &domain.ProductionQueue{
			ID:         []string{"q1", "q2", "q3"}[i],
			SiteID:     "s1",
			CampaignID: "c1",
			Status:     status,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := queues.LatestPending(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "q2", got.ID)

	_, err = queues.LatestPending(ctx, "other")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestModuleRepository_LeastUsed(t *testing.T) {
	ctx := context.Background()
	modules := repository.NewModuleRepository(testutil.NewStore(t))

	for _, m := range []domain.ContentModule{
		{ID: "m3", SiteID: "s1", ModuleType: "intro", UsageCount: 1, IsActive: true},
		{ID: "m2", SiteID: "s1", ModuleType: "intro", UsageCount: 1, IsActive: true},
		{ID: "m1", SiteID: "s1", ModuleType: "intro", UsageCount: 0, IsActive: false},
		{ID: "m4", SiteID: "s2", ModuleType: "intro", UsageCount: 0, IsActive: true},
		{ID: "m5", SiteID: "s1", ModuleType: "outro", UsageCount: 0, IsActive: true},
	} {
		m := m
		require.NoError(t, modules.Create(ctx, &m))
	}

	got, err := modules.LeastUsed(ctx, "s1", "intro")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "m2", got.ID, "inactive modules are skipped and ties break by id")

	require.NoError(t, modules.IncrementUsage(ctx, got))
	assert.Equal(t, 2, got.UsageCount)

	got, err = modules.LeastUsed(ctx, "s1", "intro")
	require.NoError(t, err)
	assert.Equal(t, "m3", got.ID)

	none, err := modules.LeastUsed(ctx, "s1", "faq")
	require.NoError(t, err)
	assert.Nil(t, none)
}

// readWriteStore hides the atomic Increment of the wrapped store.
type readWriteStore struct {
	store.Store
}

func TestModuleRepository_IncrementUsageWithoutIncrementer(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	var plain store.Store = readWriteStore{s}
	_, atomic := plain.(store.Incrementer)
	require.False(t, atomic)

	modules := repository.NewModuleRepository(plain)
	require.NoError(t, modules.Create(ctx, &domain.ContentModule{ID: "m1", SiteID: "s1", ModuleType: "intro", UsageCount: 3, IsActive: true}))

	for want := 4; want <= 6; want++ {
		m, err := modules.LeastUsed(ctx, "s1", "intro")
		require.NoError(t, err)
		require.NoError(t, modules.IncrementUsage(ctx, m))
		assert.Equal(t, want, m.UsageCount)

		stored, err := store.FindOne[domain.ContentModule](ctx, s, repository.CollectionModules, store.Query{}.Eq("id", "m1"))
		require.NoError(t, err)
		assert.Equal(t, want, stored.UsageCount)
	}
}

func TestItemStore_Increment(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	modules := repository.NewModuleRepository(s)

	m := &domain.ContentModule{ID: "m1", SiteID: "s1", ModuleType: "intro", IsActive: true}
	require.NoError(t, modules.Create(ctx, m))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Increment(ctx, repository.CollectionModules, "m1", "usage_count", 1))
	}
	got, err := store.FindOne[domain.ContentModule](ctx, s, repository.CollectionModules, store.Query{}.Eq("id", "m1"))
	require.NoError(t, err)
	assert.Equal(t, 3, got.UsageCount)

	err = s.Increment(ctx, repository.CollectionModules, "missing", "usage_count", 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestArticleRepository_GhostsAndIndexed(t *testing.T) {
	ctx := context.Background()
	articles := repository.NewArticleRepository(testutil.NewStore(t))
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }

	for _, a := range []domain.GeneratedArticle{
		{ID: "a1", SiteID: "s1", DatePublished: day(1), LocationState: "Texas"},
		{ID: "a2", SiteID: "s1", DatePublished: day(3), LocationState: "Ohio"},
		{ID: "a3", SiteID: "s1", DatePublished: day(2), LocationState: "Texas"},
		{ID: "a4", SiteID: "s2", DatePublished: day(5)},
	} {
		a := a
		require.NoError(t, articles.Create(ctx, &a))
	}

	ghosts, err := articles.Ghosts(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, ghosts, 2)
	assert.Equal(t, "a2", ghosts[0].ID)
	assert.Equal(t, "a3", ghosts[1].ID)

	at := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, articles.MarkIndexed(ctx, "a3", at))
	require.NoError(t, articles.MarkIndexed(ctx, "a2", at))

	texas, err := articles.Indexed(ctx, "s1", "Texas", 10)
	require.NoError(t, err)
	require.Len(t, texas, 1)
	assert.Equal(t, "a3", texas[0].ID)
	assert.Equal(t, domain.SitemapStatusIndexed, texas[0].SitemapStatus)
	require.NotNil(t, texas[0].IndexedAt)
	assert.True(t, texas[0].IndexedAt.Equal(at))

	all, err := articles.Indexed(ctx, "s1", "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestHeadlineRepository(t *testing.T) {
	ctx := context.Background()
	headlines := repository.NewHeadlineRepository(testutil.NewStore(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, headlines.Create(ctx, &domain.HeadlineInventory{
			ID:           text,
			CampaignID:   "c1",
			HeadlineText: text,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, headlines.MarkUsed(ctx, "first", base))

	got, err := headlines.Unused(ctx, "c1", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].ID)
	assert.Equal(t, "third", got[1].ID)
}
