package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/timmy/contentfactory/internal/config"
	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/random"
	"github.com/timmy/contentfactory/internal/repository"
	"github.com/timmy/contentfactory/internal/spintax"
	"github.com/timmy/contentfactory/internal/store"
	"github.com/timmy/contentfactory/internal/testutil"
)

var testProductionConfig = config.ProductionConfig{
	ChunkSize:           50,
	MaxChunkSize:        100,
	DefaultBackdateDays: 365,
	TestBatchSize:       5,
	MaxTestBatchSize:    50,
	MaxArticles:         10000,
}

// flakyStore fails article inserts once failAfter of them have succeeded.
// It also rejects the next rejectCursor queue updates that advance the
// cursor without failing the queue.
type flakyStore struct {
	*repository.ItemStore
	failAfter    int
	created      int
	broken       bool
	rejectCursor int
}

func (f *flakyStore) CreateItem(ctx context.Context, collection string, item any) error {
	if collection == repository.CollectionArticles && f.broken {
		if f.created >= f.failAfter {
			return errors.New("store unavailable")
		}
		f.created++
	}
	return f.ItemStore.CreateItem(ctx, collection, item)
}

func (f *flakyStore) UpdateItem(ctx context.Context, collection, id string, patch map[string]any, out any) error {
	_, advances := patch["completed_count"]
	if collection == repository.CollectionQueues && advances && f.rejectCursor > 0 &&
		patch["status"] != string(domain.QueueStatusFailed) {
		f.rejectCursor--
		return errors.New("cursor write rejected")
	}
	return f.ItemStore.UpdateItem(ctx, collection, id, patch, out)
}

type fixture struct {
	ctx      context.Context
	store    *flakyStore
	repos    *repository.Repositories
	site     *domain.Site
	campaign *domain.Campaign
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := &flakyStore{ItemStore: testutil.NewStore(t)}
	repos := repository.NewRepositories(s)

	site := &domain.Site{ID: "site-1", Name: "Roof Pros", URL: "https://roof.example.com/"}
	require.NoError(t, repos.Sites.Create(ctx, site))

	campaign := &domain.Campaign{
		ID:     "camp-1",
		SiteID: site.ID,
		Name:   "Roofing",
		Recipe: domain.StringArray{"intro", "benefits", "conclusion"},
	}
	require.NoError(t, repos.Campaigns.Create(ctx, campaign))

	return &fixture{ctx: ctx, store: s, repos: repos, site: site, campaign: campaign}
}

func (f *fixture) addModule(t *testing.T, id, moduleType, content string, usage int) {
	t.Helper()
	require.NoError(t, f.repos.Modules.Create(f.ctx, &domain.ContentModule{
		ID:         id,
		SiteID:     f.site.ID,
		ModuleType: moduleType,
		Content:    content,
		UsageCount: usage,
		IsActive:   true,
	}))
}

func (f *fixture) addStandardModules(t *testing.T) {
	f.addModule(t, "mod-intro", "intro", "<p>Welcome to {City}, {State}. Serving {County} since {Last_Year}.</p>", 0)
	f.addModule(t, "mod-benefits", "benefits", "<p>{Fast|Quick|Reliable} roof repair in {City}.</p>", 0)
	f.addModule(t, "mod-conclusion", "conclusion", "<p>Call us in {Current_Year}.</p>", 0)
}

func (f *fixture) addLocations(t *testing.T, state string, n int) []domain.Location {
	t.Helper()
	out := make([]domain.Location, 0, n)
	for i := 0; i < n; i++ {
		l := domain.Location{
			ID:     fmt.Sprintf("loc-%s-%03d", state, i),
			City:   fmt.Sprintf("City%d", i),
			State:  state,
			County: fmt.Sprintf("County%d", i),
		}
		require.NoError(t, f.repos.Locations.Create(f.ctx, &l))
		out = append(out, l)
	}
	return out
}

func schedule(n int) domain.ScheduleData {
	base := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)
	out := make(domain.ScheduleData, n)
	for i := range out {
		p := base.AddDate(0, 0, i)
		out[i] = domain.ScheduleEntry{PublishDate: p, ModifiedDate: p.Add(time.Hour)}
	}
	return out
}

func (f *fixture) addQueue(t *testing.T, status domain.QueueStatus, slots int) *domain.ProductionQueue {
	t.Helper()
	q := &domain.ProductionQueue{
		SiteID:         f.site.ID,
		CampaignID:     f.campaign.ID,
		ScheduleData:   schedule(slots),
		TotalScheduled: slots,
		Status:         status,
	}
	require.NoError(t, f.repos.Queues.Create(f.ctx, q))
	return q
}

func (f *fixture) assembler() *ArticleAssembler {
	return NewArticleAssembler(f.repos.Modules, spintax.New(random.NewSeeded(1)))
}

func (f *fixture) runner() *ProductionRunner {
	return NewProductionRunner(f.repos, f.assembler(), testProductionConfig)
}

func (f *fixture) articlesOf(t *testing.T, queueID string) []domain.GeneratedArticle {
	t.Helper()
	articles, err := f.repos.Articles.ByQueue(f.ctx, queueID, 0)
	require.NoError(t, err)
	return articles
}

func (f *fixture) queue(t *testing.T, id string) *domain.ProductionQueue {
	t.Helper()
	q, err := f.repos.Queues.GetByID(f.ctx, id)
	require.NoError(t, err)
	return q
}

func (f *fixture) module(t *testing.T, id string) *domain.ContentModule {
	t.Helper()
	m, err := store.FindOne[domain.ContentModule](f.ctx, f.store, repository.CollectionModules, store.Query{}.Eq("id", id))
	require.NoError(t, err)
	return m
}

var _ store.Incrementer = (*flakyStore)(nil)
