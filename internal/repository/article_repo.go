package repository

import (
	"context"
	"time"

	"github.com/timmy/contentfactory/internal/domain"
	"github.com/timmy/contentfactory/internal/store"
)

// ArticleRepository handles generated articles.
type ArticleRepository struct {
	store store.Store
}

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(s store.Store) *ArticleRepository {
	return &ArticleRepository{store: s}
}

// Create inserts an article.
func (r *ArticleRepository) Create(ctx context.Context, a *domain.GeneratedArticle) error {
	a.ID = newID(a.ID)
	a.CreatedAt = stamp(a.CreatedAt)
	a.UpdatedAt = stamp(a.UpdatedAt)
	if a.SitemapStatus == "" {
		a.SitemapStatus = domain.SitemapStatusGhost
	}
	return r.store.CreateItem(ctx, CollectionArticles, a)
}

// Ghosts returns up to limit unindexed articles of a site, newest publish date first.
func (r *ArticleRepository) Ghosts(ctx context.Context, siteID string, limit int) ([]domain.GeneratedArticle, error) {
	q := store.Query{}.
		Eq("site_id", siteID).
		Eq("sitemap_status", string(domain.SitemapStatusGhost)).
		OrderBy("-date_published", "id").
		Page(limit, 0)
	return r.read(ctx, q)
}

// MarkIndexed promotes an article to the sitemap.
func (r *ArticleRepository) MarkIndexed(ctx context.Context, id string, at time.Time) error {
	return r.store.UpdateItem(ctx, CollectionArticles, id, map[string]any{
		"sitemap_status": string(domain.SitemapStatusIndexed),
		"indexed_at":     at,
		"updated_at":     at,
	}, nil)
}

// Indexed returns indexed articles of a site, newest first. A non-empty
// state filters on the article's location state; a zero limit returns all.
func (r *ArticleRepository) Indexed(ctx context.Context, siteID, state string, limit int) ([]domain.GeneratedArticle, error) {
	q := store.Query{}.
		Eq("site_id", siteID).
		Eq("sitemap_status", string(domain.SitemapStatusIndexed)).
		OrderBy("-date_published", "id").
		Page(limit, 0)
	if state != "" {
		q = q.Eq("location_state", state)
	}
	return r.read(ctx, q)
}

// ByQueue returns up to limit articles produced by a queue in publish order.
func (r *ArticleRepository) ByQueue(ctx context.Context, queueID string, limit int) ([]domain.GeneratedArticle, error) {
	q := store.Query{}.Eq("queue_id", queueID).OrderBy("date_published", "id").Page(limit, 0)
	return r.read(ctx, q)
}

// ByIDs returns the articles with the given IDs in ID order.
func (r *ArticleRepository) ByIDs(ctx context.Context, ids []string, limit int) ([]domain.GeneratedArticle, error) {
	q := store.Query{}.In("id", ids).OrderBy("id").Page(limit, 0)
	return r.read(ctx, q)
}

func (r *ArticleRepository) read(ctx context.Context, q store.Query) ([]domain.GeneratedArticle, error) {
	var articles []domain.GeneratedArticle
	if err := r.store.ReadItems(ctx, CollectionArticles, q, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// HubRepository handles hub pages.
type HubRepository struct {
	store store.Store
}

// NewHubRepository creates a new HubRepository.
func NewHubRepository(s store.Store) *HubRepository {
	return &HubRepository{store: s}
}

// Create inserts a hub page.
func (r *HubRepository) Create(ctx context.Context, h *domain.HubPage) error {
	h.ID = newID(h.ID)
	h.CreatedAt = stamp(h.CreatedAt)
	h.UpdatedAt = stamp(h.UpdatedAt)
	if h.SitemapStatus == "" {
		h.SitemapStatus = domain.SitemapStatusGhost
	}
	return r.store.CreateItem(ctx, CollectionHubs, h)
}

// Ghosts returns up to limit unindexed hubs of a site, oldest first.
func (r *HubRepository) Ghosts(ctx context.Context, siteID string, limit int) ([]domain.HubPage, error) {
	q := store.Query{}.
		Eq("site_id", siteID).
		Eq("sitemap_status", string(domain.SitemapStatusGhost)).
		OrderBy("created_at", "id").
		Page(limit, 0)
	var hubs []domain.HubPage
	if err := r.store.ReadItems(ctx, CollectionHubs, q, &hubs); err != nil {
		return nil, err
	}
	return hubs, nil
}

// Indexed returns every indexed hub of a site.
func (r *HubRepository) Indexed(ctx context.Context, siteID string) ([]domain.HubPage, error) {
	q := store.Query{}.
		Eq("site_id", siteID).
		Eq("sitemap_status", string(domain.SitemapStatusIndexed)).
		OrderBy("id")
	var hubs []domain.HubPage
	if err := r.store.ReadItems(ctx, CollectionHubs, q, &hubs); err != nil {
		return nil, err
	}
	return hubs, nil
}

// MarkIndexed promotes a hub page to the sitemap.
func (r *HubRepository) MarkIndexed(ctx context.Context, id string, at time.Time) error {
	return r.store.UpdateItem(ctx, CollectionHubs, id, map[string]any{
		"sitemap_status": string(domain.SitemapStatusIndexed),
		"indexed_at":     at,
		"updated_at":     at,
	}, nil)
}
